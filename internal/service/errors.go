package service

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidPeriod  = errors.New("invalid period")
	ErrUnknownBroker  = errors.New("unknown broker")
)

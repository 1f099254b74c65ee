package http

import (
	"context"
	"errors"
	"net/http"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"golang-papertrade/internal/dto"
	"golang-papertrade/internal/engine"
	"golang-papertrade/internal/service"
	"golang-papertrade/internal/strategy"
	"golang-papertrade/pkg/logger"
)

type HttpAPIHandler struct {
	ctx       context.Context
	echo      *echo.Echo
	validator *goValidator.Validate
	log       *logger.Logger
	service   *service.Service
	gatherer  prometheus.Gatherer
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, validator *goValidator.Validate, log *logger.Logger, service *service.Service, gatherer prometheus.Gatherer) *HttpAPIHandler {
	return &HttpAPIHandler{
		ctx:       ctx,
		echo:      echo,
		validator: validator,
		log:       log,
		service:   service,
		gatherer:  gatherer,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	base := h.echo.Group("/api")
	h.SetupStrategies(base)
	h.SetupBacktest(base)
	h.SetupMonteCarlo(base)
	h.SetupSizing(base)

	if h.gatherer != nil {
		h.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}

// bindAndValidate decodes the JSON body into req and runs the struct validation.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) *dto.BaseResponse {
	if err := c.Bind(req); err != nil {
		return dto.NewBadRequestResponse("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return dto.NewBadRequestResponse(err.Error())
	}
	return nil
}

// errorResponse maps service errors to an HTTP status. Anything not caused by
// the request itself is logged and hidden behind a generic message.
func (h *HttpAPIHandler) errorResponse(c echo.Context, err error, fallback string) *dto.BaseResponse {
	var dataErr *engine.DataUnavailableError
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInvalidPeriod),
		errors.Is(err, service.ErrUnknownBroker),
		errors.Is(err, strategy.ErrUnknownStrategy),
		errors.Is(err, engine.ErrInvalidCapital),
		errors.Is(err, engine.ErrInvalidStopLoss),
		errors.Is(err, engine.ErrInvalidWindow),
		errors.Is(err, engine.ErrInvalidHorizon),
		errors.Is(err, engine.ErrInvalidSimulations),
		errors.Is(err, engine.ErrInvalidSizing):
		return dto.NewBadRequestResponse(err.Error())
	case errors.Is(err, engine.ErrDegenerateInput), errors.As(err, &dataErr):
		return dto.NewErrorResponse(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return dto.NewErrorResponse(http.StatusServiceUnavailable, "request cancelled")
	}

	h.log.ErrorContext(c.Request().Context(), fallback,
		logger.StringField("path", c.Path()),
		logger.ErrorField(err),
	)
	return dto.NewErrorResponse(http.StatusInternalServerError, fallback)
}

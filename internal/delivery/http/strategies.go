package http

import (
	"github.com/labstack/echo/v4"

	"golang-papertrade/internal/dto"
)

func (h *HttpAPIHandler) SetupStrategies(base *echo.Group) {
	base.GET("/strategies", h.listStrategies)
}

func (h *HttpAPIHandler) listStrategies(c echo.Context) error {
	resp := dto.NewSuccessResponse("OK", h.service.Strategies.List())
	return c.JSON(resp.Code, resp)
}

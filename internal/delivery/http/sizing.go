package http

import (
	"github.com/labstack/echo/v4"

	"golang-papertrade/internal/dto"
)

func (h *HttpAPIHandler) SetupSizing(base *echo.Group) {
	sizingGroup := base.Group("/sizing")
	sizingGroup.POST("", h.calculateSizing)
}

func (h *HttpAPIHandler) calculateSizing(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.SizingRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	result, err := h.service.SizingService.Calculate(ctx, *req)
	if err != nil {
		resp := h.errorResponse(c, err, "failed to calculate position size")
		return c.JSON(resp.Code, resp)
	}

	resp := dto.NewSuccessResponse("Position sized", result)
	return c.JSON(resp.Code, resp)
}

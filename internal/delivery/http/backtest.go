package http

import (
	"github.com/labstack/echo/v4"

	"golang-papertrade/internal/dto"
)

func (h *HttpAPIHandler) SetupBacktest(base *echo.Group) {
	backtestGroup := base.Group("/backtest")
	backtestGroup.POST("", h.runBacktest)
}

func (h *HttpAPIHandler) runBacktest(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.BacktestRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	result, err := h.service.BacktestService.RunBacktest(ctx, *req)
	if err != nil {
		resp := h.errorResponse(c, err, "failed to run backtest")
		return c.JSON(resp.Code, resp)
	}

	resp := dto.NewSuccessResponse("Backtest completed", result)
	return c.JSON(resp.Code, resp)
}

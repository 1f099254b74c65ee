package http

import (
	"github.com/labstack/echo/v4"

	"golang-papertrade/internal/dto"
)

func (h *HttpAPIHandler) SetupMonteCarlo(base *echo.Group) {
	base.POST("/montecarlo", h.runMonteCarlo)
}

func (h *HttpAPIHandler) runMonteCarlo(c echo.Context) error {
	req := new(dto.MonteCarloRequest)
	if resp := h.bindAndValidate(c, req); resp != nil {
		return c.JSON(resp.Code, resp)
	}

	report, err := h.service.MonteCarloService.Run(c.Request().Context(), *req)
	if err != nil {
		resp := h.errorResponse(c, err, "failed to run Monte Carlo analysis")
		return c.JSON(resp.Code, resp)
	}

	resp := dto.NewSuccessResponse("Monte Carlo analysis completed", report)
	return c.JSON(resp.Code, resp)
}

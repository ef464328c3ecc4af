package handler

import (
	"github.com/gin-gonic/gin"

	"voxform/internal/service"
)

// ProviderHandler exposes provider availability.
type ProviderHandler struct {
	formService service.FormService
}

// NewProviderHandler creates a new ProviderHandler.
func NewProviderHandler(formService service.FormService) *ProviderHandler {
	return &ProviderHandler{formService: formService}
}

// Status handles GET /api/v1/providers/status
// @Summary Provider availability
// @Description Probes every configured provider of both chains without running an extraction.
// @Tags providers
// @Produce json
// @Success 200 {object} Response{data=domain.StatusReport} "Provider status"
// @Router /providers/status [get]
func (h *ProviderHandler) Status(c *gin.Context) {
	report, err := h.formService.ProviderStatus(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, report)
}

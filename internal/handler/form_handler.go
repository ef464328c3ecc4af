package handler

import (
	"github.com/gin-gonic/gin"

	"voxform/internal/middleware"
	"voxform/internal/service"
)

// FormHandler handles the session form endpoints.
type FormHandler struct {
	formService service.FormService
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(formService service.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

// Get handles GET /api/v1/form
// @Summary Get the session form
// @Tags form
// @Produce json
// @Success 200 {object} Response{data=domain.ProcessResult} "Current form"
// @Router /form [get]
func (h *FormHandler) Get(c *gin.Context) {
	res, err := h.formService.GetForm(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}

// Reset handles POST /api/v1/form/reset
// @Summary Clear the session form
// @Tags form
// @Produce json
// @Success 200 {object} Response{data=domain.ProcessResult} "Cleared form"
// @Router /form/reset [post]
func (h *FormHandler) Reset(c *gin.Context) {
	res, err := h.formService.Reset(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}

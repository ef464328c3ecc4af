package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voxform/internal/domain"
	"voxform/internal/logger"
	"voxform/internal/service"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// RespondResult sends an extraction result. When every provider failed the
// envelope reports EXTRACTION_FAILED but the status stays 200 and the
// unchanged form is still returned.
func RespondResult(c *gin.Context, res *domain.ProcessResult) {
	c.JSON(http.StatusOK, ResultEnvelope(res))
}

// ResultEnvelope wraps res in the standard envelope.
func ResultEnvelope(res *domain.ProcessResult) APIResponse {
	if res.Success {
		return APIResponse{Success: true, Data: res}
	}
	return APIResponse{
		Success: false,
		Data:    res,
		Error:   &APIError{Code: "EXTRACTION_FAILED", Message: service.ExhaustedMessage},
	}
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", "input is empty"
	case errors.Is(err, domain.ErrInputTooLong):
		return http.StatusBadRequest, "INPUT_TOO_LONG", "input exceeds maximum allowed length"
	case errors.Is(err, domain.ErrAudioTooLarge):
		return http.StatusRequestEntityTooLarge, "AUDIO_TOO_LARGE", "audio exceeds maximum allowed size"
	case errors.Is(err, domain.ErrUnsupportedAudio):
		return http.StatusBadRequest, "UNSUPPORTED_AUDIO", "unsupported audio format; allowed: wav, mp3, webm, ogg, m4a"
	case errors.Is(err, domain.ErrUnknownBackend):
		return http.StatusBadRequest, "UNKNOWN_BACKEND", err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED", "too many requests"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		logger.Error(c.Request.Context(), "internal error", "error", err)
	}
	RespondError(c, status, code, msg)
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

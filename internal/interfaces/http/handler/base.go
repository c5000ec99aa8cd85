package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/markethub/backend/internal/domain/dropship"
	"github.com/markethub/backend/internal/interfaces/http/dto"
)

// RequestIDKey is the context key for request ID
const RequestIDKey = "X-Request-ID"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	if id := c.GetHeader(RequestIDKey); id != "" {
		return id
	}
	return ""
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// UnprocessableEntity sends a 422 unprocessable entity response
func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError converts a gin binding failure into an error response.
// Field-level validator failures become a validation response with details.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]dto.ValidationDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Message: fe.Tag(),
			})
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed",
			getRequestID(c),
			details,
		))
		return
	}
	h.BadRequest(c, err.Error())
}

// sentinel to status/code mapping for the dropship domain
var domainErrorCodes = []struct {
	target error
	status int
	code   string
}{
	{dropship.ErrSupplierNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
	{dropship.ErrSupplierOrderNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
	{dropship.ErrLinkNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
	{dropship.ErrOrderNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
	{dropship.ErrLinkAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
	{dropship.ErrWebhookSignatureInvalid, http.StatusUnauthorized, dto.ErrCodeSignatureInvalid},
	{dropship.ErrWebhookMissingOrderID, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrSupplierOrderNotRetryable, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
	{dropship.ErrSupplierNotConfigured, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
	{dropship.ErrSupplierInvalidName, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrSupplierInvalidKind, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrSupplierInvalidBaseURL, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrSupplierMissingConfig, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrCustomConfigInvalidAuthType, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrCustomConfigMissingHeader, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrCustomConfigMissingParam, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrCustomConfigMissingEndpoint, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrCustomConfigInvalidMethod, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrCustomConfigInvalidTemplate, http.StatusBadRequest, dto.ErrCodeInvalidInput},
	{dropship.ErrCustomConfigMissingOrderPath, http.StatusBadRequest, dto.ErrCodeInvalidInput},
}

// HandleError converts domain errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	for _, m := range domainErrorCodes {
		if errors.Is(err, m.target) {
			h.Error(c, m.status, m.code, err.Error())
			return
		}
	}

	h.InternalError(c, "An unexpected error occurred")
}

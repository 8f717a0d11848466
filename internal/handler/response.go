package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/scheduling-api/pkg/errors"
	"github.com/jwalitptl/scheduling-api/pkg/validator"
)

type Response struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data,omitempty"`
	Errors  []validator.FieldError `json:"errors,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// StatusFor maps an application error to its HTTP status.
func StatusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrValidation, apperrors.ErrBadRequest:
		return http.StatusBadRequest
	case apperrors.ErrUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return http.StatusForbidden
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrSlotConflict, apperrors.ErrInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError records err on the context for the error middleware and
// writes the error envelope. Server-side failures are not echoed back.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	} else if appErr, ok := asAppError(err); ok {
		message = appErr.Message
	}
	c.AbortWithStatusJSON(status, NewErrorResponse(message))
}

// RespondValidation writes a 400 with per-field messages.
func RespondValidation(c *gin.Context, err error) {
	resp := NewErrorResponse("invalid request")
	resp.Errors = validator.Describe(err)
	if len(resp.Errors) == 0 {
		resp.Message = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

func asAppError(err error) (*apperrors.AppError, bool) {
	var appErr *apperrors.AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

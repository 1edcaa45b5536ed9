package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fatture/internal/core"
	"fatture/internal/log"
	"fatture/internal/store"
)

// Business codes carried in every response envelope.
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeNotFound     = 40401
	CodeServerErr    = 50001
)

// Success writes {"code":0,"data":...}.
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error writes {"code":N,"message":...}.
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// fail maps a service error onto the envelope. Store failures are logged and
// reported with a generic message.
func (h *Handler) fail(c *gin.Context, op string, err error, generic string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		Error(c, http.StatusUnprocessableEntity, CodeInvalidParam, ve.Message)
	case errors.Is(err, store.ErrNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, "Invoice not found")
	default:
		h.logger.ErrorContext(c.Request.Context(), "API request failed",
			log.NewFields().WithOperation(op).WithError(err, log.ErrorTypeDatabase).ToSlice()...)
		Error(c, http.StatusInternalServerError, CodeServerErr, generic)
	}
}

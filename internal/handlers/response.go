package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clarivo/clarivo-backend/internal/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// RespondError resolves the typed api error from a wrap chain and writes
// the envelope. Untyped errors become a plain 500.
func RespondError(c *gin.Context, err error) {
	ae := apierr.Resolve(err)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(ae.Status, ErrorEnvelope{
		Success: false,
		Error: APIError{
			Message: msg,
			Code:    ae.Code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": payload})
}

func RespondList(c *gin.Context, count int, payload any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "data": payload})
}

package router

import (
	"net/http"

	"github.com/chipp-ai/dispatch/engine/core"
	"github.com/gin-gonic/gin"
)

// Response is the envelope every action endpoint returns.
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    any         `json:"data,omitempty"`
	Error   *core.Error `json:"error,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

func respondError(c *gin.Context, status int, err *core.Error) {
	c.JSON(status, Response{
		Status: status,
		Error:  err,
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SystemHandler struct {
	terminal  string
	storeName string
	cacheKind string
}

func NewSystemHandler(terminal, storeName, cacheKind string) *SystemHandler {
	return &SystemHandler{terminal: terminal, storeName: storeName, cacheKind: cacheKind}
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "online"})
}

// Status tells the till which terminal id its sales are stamped with.
func (h *SystemHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"terminal":      h.terminal,
		"store_name":    h.storeName,
		"session_cache": h.cacheKind,
	})
}

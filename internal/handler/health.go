package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Store is the slice of the record store the health endpoint needs.
type Store interface {
	LastSaveErr() error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	data := gin.H{"status": "healthy"}
	if err := h.store.LastSaveErr(); err != nil {
		data["persistence"] = err.Error()
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   data,
	})
}

package backup

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-records/internal/handler"
	"github.com/jwalitptl/patient-records/internal/model"
	"github.com/jwalitptl/patient-records/internal/store"
)

type Handler struct {
	store *store.Store
}

func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	backup := r.Group("/backup")
	{
		backup.GET("/export", h.Export)
		backup.POST("/import", h.Import)
		backup.POST("/clear", h.Clear)
	}
}

// Export returns both collections verbatim.
func (h *Handler) Export(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.store.Export()))
}

// Import replaces both collections with the uploaded payload.
func (h *Handler) Import(c *gin.Context) {
	var payload model.Backup
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	h.store.Import(c.Request.Context(), payload)
	c.JSON(http.StatusOK, handler.Respond(h.store, gin.H{
		"patients": len(payload.Patients),
		"visits":   len(payload.Visits),
	}))
}

// Clear removes every record and both storage keys.
func (h *Handler) Clear(c *gin.Context) {
	h.store.Clear(c.Request.Context())
	c.JSON(http.StatusOK, handler.Respond(h.store, gin.H{"cleared": true}))
}

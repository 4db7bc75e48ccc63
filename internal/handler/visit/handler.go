package visit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-records/internal/handler"
	"github.com/jwalitptl/patient-records/internal/model"
	"github.com/jwalitptl/patient-records/internal/query"
	"github.com/jwalitptl/patient-records/internal/store"
	"github.com/jwalitptl/patient-records/pkg/validator"
)

type Handler struct {
	store     *store.Store
	validator validator.Validator
}

func NewHandler(s *store.Store, v validator.Validator) *Handler {
	return &Handler{store: s, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	visits := r.Group("/visits")
	{
		visits.POST("", h.CreateVisit)
		visits.GET("/:id", h.GetVisit)
		visits.PUT("/:id", h.UpdateVisit)
		visits.DELETE("/:id", h.DeleteVisit)
	}

	r.GET("/patients/:id/visits", h.ListPatientVisits)
}

// CreateVisit checks patient existence here at the boundary; the store
// trusts its caller on referential validity.
func (h *Handler) CreateVisit(c *gin.Context) {
	var req model.CreateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if _, ok := h.store.GetPatient(req.PatientID); !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
		return
	}

	visit := h.store.AddVisit(c.Request.Context(), model.VisitFields{
		PatientID:    req.PatientID,
		Date:         req.Date,
		Procedures:   h.fillLineItemIDs(req.Procedures),
		Products:     h.fillLineItemIDs(req.Products),
		SoldProducts: h.fillLineItemIDs(req.SoldProducts),
		Notes:        req.Notes,
		Photos:       req.Photos,
	})

	c.JSON(http.StatusCreated, handler.Respond(h.store, visit))
}

func (h *Handler) GetVisit(c *gin.Context) {
	visit, ok := h.store.GetVisit(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("visit not found"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(visit))
}

func (h *Handler) UpdateVisit(c *gin.Context) {
	var req model.UpdateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	update := model.VisitUpdate{
		Date:  req.Date,
		Notes: req.Notes,
	}
	if req.Procedures != nil {
		items := h.fillLineItemIDs(*req.Procedures)
		update.Procedures = &items
	}
	if req.Products != nil {
		items := h.fillLineItemIDs(*req.Products)
		update.Products = &items
	}
	if req.SoldProducts != nil {
		items := h.fillLineItemIDs(*req.SoldProducts)
		update.SoldProducts = &items
	}
	if req.Photos != nil {
		update.Photos = req.Photos
	}

	visit, ok := h.store.UpdateVisit(c.Request.Context(), c.Param("id"), update)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("visit not found"))
		return
	}
	c.JSON(http.StatusOK, handler.Respond(h.store, visit))
}

func (h *Handler) DeleteVisit(c *gin.Context) {
	if ok := h.store.DeleteVisit(c.Request.Context(), c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("visit not found"))
		return
	}
	c.JSON(http.StatusOK, handler.Respond(h.store, gin.H{"deleted": true}))
}

// ListPatientVisits returns the patient's visits, newest first, optionally
// restricted to one calendar day.
func (h *Handler) ListPatientVisits(c *gin.Context) {
	patientID := c.Param("id")
	if _, ok := h.store.GetPatient(patientID); !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
		return
	}

	var filters model.VisitFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.ValidateDate(filters.Date); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	visits := query.PatientVisits(h.store.Visits(), patientID, filters)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(visits))
}

// fillLineItemIDs stamps id and createdAt on items the client sent without
// them, using the store's providers so tests stay deterministic.
func (h *Handler) fillLineItemIDs(items []model.LineItem) []model.LineItem {
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = h.store.NewID()
		}
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = h.store.Now()
		}
	}
	return items
}

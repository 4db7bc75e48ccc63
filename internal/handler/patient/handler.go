package patient

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
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)

		patients.POST("/:id/questionnaire", h.AddQuestion)
		patients.DELETE("/:id/questionnaire/:questionId", h.RemoveQuestion)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patient := h.store.AddPatient(c.Request.Context(), model.PatientFields{
		Name:          req.Name,
		Surname:       req.Surname,
		Email:         req.Email,
		Phone:         req.Phone,
		DateOfBirth:   req.DateOfBirth,
		Questionnaire: model.RenumberQuestions(req.Questionnaire),
		Notes:         req.Notes,
		Photo:         req.Photo,
	})

	c.JSON(http.StatusCreated, handler.Respond(h.store, patient))
}

// ListPatients applies the search filters from the query string. Filter
// dates are validated at this boundary; the query engine itself treats an
// unparseable date as a non-match.
func (h *Handler) ListPatients(c *gin.Context) {
	var filters model.SearchFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.ValidateDate(filters.VisitDate); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patients := query.FilterPatients(h.store.Patients(), h.store.Visits(), filters)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) GetPatient(c *gin.Context) {
	patient, ok := h.store.GetPatient(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	update := model.PatientUpdate{
		Name:        req.Name,
		Surname:     req.Surname,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Notes:       req.Notes,
		Photo:       req.Photo,
	}
	if req.Questionnaire != nil {
		renumbered := model.RenumberQuestions(*req.Questionnaire)
		update.Questionnaire = &renumbered
	}

	patient, ok := h.store.UpdatePatient(c.Request.Context(), c.Param("id"), update)
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
		return
	}
	c.JSON(http.StatusOK, handler.Respond(h.store, patient))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	if ok := h.store.DeletePatient(c.Request.Context(), c.Param("id")); !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
		return
	}
	c.JSON(http.StatusOK, handler.Respond(h.store, gin.H{"deleted": true}))
}

type addQuestionRequest struct {
	QuestionText string `json:"questionText" binding:"required"`
	Answer       string `json:"answer"`
}

func (h *Handler) AddQuestion(c *gin.Context) {
	var req addQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patient, ok := h.store.GetPatient(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
		return
	}

	qs := model.AppendQuestion(patient.Questionnaire, h.store.NewID(), req.QuestionText)
	if req.Answer != "" {
		qs[len(qs)-1].Answer = req.Answer
	}

	updated, _ := h.store.UpdatePatient(c.Request.Context(), patient.ID, model.PatientUpdate{
		Questionnaire: &qs,
	})
	c.JSON(http.StatusOK, handler.Respond(h.store, updated))
}

func (h *Handler) RemoveQuestion(c *gin.Context) {
	patient, ok := h.store.GetPatient(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
		return
	}

	qs := model.RemoveQuestion(patient.Questionnaire, c.Param("questionId"))
	updated, _ := h.store.UpdatePatient(c.Request.Context(), patient.ID, model.PatientUpdate{
		Questionnaire: &qs,
	})
	c.JSON(http.StatusOK, handler.Respond(h.store, updated))
}

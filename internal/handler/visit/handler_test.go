package visit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/patient-records/internal/handler"
	"github.com/jwalitptl/patient-records/internal/model"
	"github.com/jwalitptl/patient-records/internal/storage"
	"github.com/jwalitptl/patient-records/internal/store"
	"github.com/jwalitptl/patient-records/pkg/logger"
	"github.com/jwalitptl/patient-records/pkg/metrics"
	"github.com/jwalitptl/patient-records/pkg/validator"
)

func setupTest(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.New(storage.NewMemoryStorage(), logger.NewLogger(nil), metrics.NewTestMetrics("test"))
	r := gin.New()
	NewHandler(s, validator.New()).RegisterRoutes(r.Group("/api/v1"))
	return r, s
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if out != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
}

func TestCreateVisit(t *testing.T) {
	r, s := setupTest(t)
	patient := s.AddPatient(context.Background(), model.PatientFields{Name: "Ana"})

	w := doJSON(r, http.MethodPost, "/api/v1/visits", `{
		"patientId": "`+patient.ID+`",
		"date": "2024-01-10T09:30:00Z",
		"procedures": [{"name": "cleaning"}],
		"notes": "first visit"
	}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var created model.Visit
	decodeData(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, patient.ID, created.PatientID)
	require.Len(t, created.Procedures, 1)
	assert.NotEmpty(t, created.Procedures[0].ID, "line items get ids stamped server side")
	assert.False(t, created.Procedures[0].CreatedAt.IsZero())
}

func TestCreateVisitUnknownPatient(t *testing.T) {
	r, s := setupTest(t)

	w := doJSON(r, http.MethodPost, "/api/v1/visits", `{
		"patientId": "nope",
		"date": "2024-01-10T09:30:00Z"
	}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, s.Visits())
}

func TestCreateVisitRejectsTooManyPhotos(t *testing.T) {
	r, s := setupTest(t)
	patient := s.AddPatient(context.Background(), model.PatientFields{Name: "Ana"})

	photos := make([]string, 0, model.MaxVisitPhotos+1)
	for i := 0; i <= model.MaxVisitPhotos; i++ {
		photos = append(photos, `"data:image/png;base64,AAAA"`)
	}
	w := doJSON(r, http.MethodPost, "/api/v1/visits", `{
		"patientId": "`+patient.ID+`",
		"date": "2024-01-10T09:30:00Z",
		"photos": [`+strings.Join(photos, ",")+`]
	}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.Visits())
}

func TestUpdateVisitPartial(t *testing.T) {
	r, s := setupTest(t)
	ctx := context.Background()
	patient := s.AddPatient(ctx, model.PatientFields{Name: "Ana"})
	visit := s.AddVisit(ctx, model.VisitFields{
		PatientID: patient.ID,
		Date:      time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC),
		Notes:     "before",
	})

	w := doJSON(r, http.MethodPut, "/api/v1/visits/"+visit.ID, `{"notes":"after"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var updated model.Visit
	decodeData(t, w, &updated)
	assert.Equal(t, "after", updated.Notes)
	assert.Equal(t, visit.Date, updated.Date, "unset fields survive")
}

func TestDeleteVisitLeavesPatient(t *testing.T) {
	r, s := setupTest(t)
	ctx := context.Background()
	patient := s.AddPatient(ctx, model.PatientFields{Name: "Ana"})
	visit := s.AddVisit(ctx, model.VisitFields{PatientID: patient.ID, Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)})

	w := doJSON(r, http.MethodDelete, "/api/v1/visits/"+visit.ID, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.Visits())
	_, ok := s.GetPatient(patient.ID)
	assert.True(t, ok)
}

func TestListPatientVisitsSortedDescending(t *testing.T) {
	r, s := setupTest(t)
	ctx := context.Background()
	patient := s.AddPatient(ctx, model.PatientFields{Name: "Ana"})
	s.AddVisit(ctx, model.VisitFields{PatientID: patient.ID, Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)})
	s.AddVisit(ctx, model.VisitFields{PatientID: patient.ID, Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)})
	s.AddVisit(ctx, model.VisitFields{PatientID: patient.ID, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)})

	w := doJSON(r, http.MethodGet, "/api/v1/patients/"+patient.ID+"/visits", "")

	require.Equal(t, http.StatusOK, w.Code)
	var visits []model.Visit
	decodeData(t, w, &visits)
	require.Len(t, visits, 3)
	assert.Equal(t, time.March, visits[0].Date.Month())
	assert.Equal(t, time.February, visits[1].Date.Month())
	assert.Equal(t, time.January, visits[2].Date.Month())
}

func TestListPatientVisitsDayFilter(t *testing.T) {
	r, s := setupTest(t)
	ctx := context.Background()
	patient := s.AddPatient(ctx, model.PatientFields{Name: "Ana"})
	s.AddVisit(ctx, model.VisitFields{PatientID: patient.ID, Date: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)})
	s.AddVisit(ctx, model.VisitFields{PatientID: patient.ID, Date: time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC)})

	w := doJSON(r, http.MethodGet, "/api/v1/patients/"+patient.ID+"/visits?date=2024-01-10", "")

	require.Equal(t, http.StatusOK, w.Code)
	var visits []model.Visit
	decodeData(t, w, &visits)
	require.Len(t, visits, 1)
}

func TestListPatientVisitsUnknownPatient(t *testing.T) {
	r, _ := setupTest(t)
	w := doJSON(r, http.MethodGet, "/api/v1/patients/nope/visits", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package backup

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
)

func setupTest(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := store.New(storage.NewMemoryStorage(), logger.NewLogger(nil), metrics.NewTestMetrics("test"))
	r := gin.New()
	NewHandler(s).RegisterRoutes(r.Group("/api/v1"))
	return r, s
}

func TestExportImportRoundTripOverHTTP(t *testing.T) {
	r, s := setupTest(t)
	ctx := context.Background()
	patient := s.AddPatient(ctx, model.PatientFields{Name: "Ana", Email: "ana@example.com"})
	s.AddVisit(ctx, model.VisitFields{PatientID: patient.ID, Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/backup/export", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	// A fresh store restores both collections from the exported payload.
	restoredRouter, restored := setupTest(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	restoredRouter.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, s.Patients(), restored.Patients())
	assert.Equal(t, s.Visits(), restored.Visits())
}

func TestImportRejectsMalformedPayload(t *testing.T) {
	r, s := setupTest(t)
	s.AddPatient(context.Background(), model.PatientFields{Name: "Ana"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, s.Patients(), 1, "existing records untouched")
}

func TestClear(t *testing.T) {
	r, s := setupTest(t)
	ctx := context.Background()
	patient := s.AddPatient(ctx, model.PatientFields{Name: "Ana"})
	s.AddVisit(ctx, model.VisitFields{PatientID: patient.ID, Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/backup/clear", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, s.Patients())
	assert.Empty(t, s.Visits())
}

package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/patient-records/internal/model"
	"github.com/jwalitptl/patient-records/internal/storage"
	apperrors "github.com/jwalitptl/patient-records/pkg/errors"
	"github.com/jwalitptl/patient-records/pkg/logger"
	"github.com/jwalitptl/patient-records/pkg/metrics"
)

// Collection keys in the storage adapter.
const (
	patientsKey = "patients"
	visitsKey   = "visits"
)

// Clock supplies timestamps. Injectable so tests can pin time.
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies record identifiers. Injectable so tests can assert
// exact ids.
type IDGenerator interface {
	NewID() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type uuidGenerator struct{}

func (uuidGenerator) NewID() string { return uuid.NewString() }

// Store is the authoritative in-memory holder of patients and visits and the
// sole writer of persisted state. Every mutation commits in memory first and
// then persists the affected collection; a storage failure is logged and
// counted but never rolls the mutation back.
type Store struct {
	storage storage.Storage
	clock   Clock
	ids     IDGenerator
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	patients []model.Patient
	visits   []model.Visit
	saveErrs map[string]error
}

// Option configures a Store.
type Option func(*Store)

func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// New builds a Store and loads both collections from storage. A missing or
// unparseable value yields an empty collection, never an error.
func New(st storage.Storage, log *logger.Logger, m *metrics.Metrics, opts ...Option) *Store {
	s := &Store{
		storage:  st,
		clock:    systemClock{},
		ids:      uuidGenerator{},
		logger:   log,
		metrics:  m,
		saveErrs: make(map[string]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(context.Background())
	return s
}

func (s *Store) load(ctx context.Context) {
	s.patients = loadCollection[model.Patient](ctx, s, patientsKey)
	s.visits = loadCollection[model.Visit](ctx, s, visitsKey)
	s.updateGauges()
}

func loadCollection[T any](ctx context.Context, s *Store, key string) []T {
	raw, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		s.logger.Warn(err, "failed to load collection, starting empty", "key", key)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var out []T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logger.Warn(err, "failed to parse stored collection, starting empty", "key", key)
		return nil
	}
	return out
}

// AddPatient constructs a patient with a fresh id and appends it. Insertion
// order is creation order; duplicate names and emails are permitted.
func (s *Store) AddPatient(ctx context.Context, fields model.PatientFields) model.Patient {
	s.mu.Lock()
	now := s.clock.Now()
	patient := model.Patient{
		ID:            s.ids.NewID(),
		Name:          fields.Name,
		Surname:       fields.Surname,
		Email:         fields.Email,
		Phone:         fields.Phone,
		DateOfBirth:   fields.DateOfBirth,
		Questionnaire: fields.Questionnaire,
		Notes:         fields.Notes,
		Photo:         fields.Photo,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.patients = append(s.patients, patient)
	s.mu.Unlock()

	s.metrics.StoreMutations.WithLabelValues("patient", "create").Inc()
	s.updateGauges()
	s.persistPatients(ctx)
	return patient
}

// UpdatePatient shallow-merges the set fields over the stored record and
// refreshes UpdatedAt. A missing id is a no-op reported as false.
func (s *Store) UpdatePatient(ctx context.Context, id string, update model.PatientUpdate) (model.Patient, bool) {
	s.mu.Lock()
	idx := s.patientIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Patient{}, false
	}
	update.Apply(&s.patients[idx])
	s.patients[idx].UpdatedAt = s.clock.Now()
	updated := s.patients[idx]
	s.mu.Unlock()

	s.metrics.StoreMutations.WithLabelValues("patient", "update").Inc()
	s.persistPatients(ctx)
	return updated, true
}

// DeletePatient removes the patient and every visit referencing it. Both
// collections are mutated under one lock before any observer can read an
// intermediate state; only then are they persisted.
func (s *Store) DeletePatient(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := s.patientIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.patients = append(s.patients[:idx], s.patients[idx+1:]...)

	kept := s.visits[:0]
	for _, v := range s.visits {
		if v.PatientID != id {
			kept = append(kept, v)
		}
	}
	s.visits = kept
	s.mu.Unlock()

	s.metrics.StoreMutations.WithLabelValues("patient", "delete").Inc()
	s.updateGauges()
	s.persistPatients(ctx)
	s.persistVisits(ctx)
	return true
}

// GetPatient returns the patient by id, if present.
func (s *Store) GetPatient(id string) (model.Patient, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.patientIndex(id); idx >= 0 {
		return s.patients[idx], true
	}
	return model.Patient{}, false
}

// Patients returns a copy of the patient collection in insertion order.
func (s *Store) Patients() []model.Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Patient, len(s.patients))
	copy(out, s.patients)
	return out
}

// AddVisit constructs a visit with a fresh id. The caller is responsible for
// having validated that PatientID references an existing patient.
func (s *Store) AddVisit(ctx context.Context, fields model.VisitFields) model.Visit {
	s.mu.Lock()
	now := s.clock.Now()
	visit := model.Visit{
		ID:           s.ids.NewID(),
		PatientID:    fields.PatientID,
		Date:         fields.Date,
		Procedures:   fields.Procedures,
		Products:     fields.Products,
		SoldProducts: fields.SoldProducts,
		Notes:        fields.Notes,
		Photos:       fields.Photos,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.visits = append(s.visits, visit)
	s.mu.Unlock()

	s.metrics.StoreMutations.WithLabelValues("visit", "create").Inc()
	s.updateGauges()
	s.persistVisits(ctx)
	return visit
}

// UpdateVisit shallow-merges the set fields over the stored visit.
func (s *Store) UpdateVisit(ctx context.Context, id string, update model.VisitUpdate) (model.Visit, bool) {
	s.mu.Lock()
	idx := s.visitIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Visit{}, false
	}
	update.Apply(&s.visits[idx])
	s.visits[idx].UpdatedAt = s.clock.Now()
	updated := s.visits[idx]
	s.mu.Unlock()

	s.metrics.StoreMutations.WithLabelValues("visit", "update").Inc()
	s.persistVisits(ctx)
	return updated, true
}

// DeleteVisit removes a single visit. No cascade.
func (s *Store) DeleteVisit(ctx context.Context, id string) bool {
	s.mu.Lock()
	idx := s.visitIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.visits = append(s.visits[:idx], s.visits[idx+1:]...)
	s.mu.Unlock()

	s.metrics.StoreMutations.WithLabelValues("visit", "delete").Inc()
	s.updateGauges()
	s.persistVisits(ctx)
	return true
}

// GetVisit returns the visit by id, if present.
func (s *Store) GetVisit(id string) (model.Visit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idx := s.visitIndex(id); idx >= 0 {
		return s.visits[idx], true
	}
	return model.Visit{}, false
}

// Visits returns a copy of the visit collection in insertion order.
func (s *Store) Visits() []model.Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Visit, len(s.visits))
	copy(out, s.visits)
	return out
}

// Export returns both collections verbatim for backup.
func (s *Store) Export() model.Backup {
	return model.Backup{
		Patients: s.Patients(),
		Visits:   s.Visits(),
	}
}

// Import replaces both collections with the backup payload and persists them.
func (s *Store) Import(ctx context.Context, backup model.Backup) {
	s.mu.Lock()
	s.patients = append([]model.Patient(nil), backup.Patients...)
	s.visits = append([]model.Visit(nil), backup.Visits...)
	s.mu.Unlock()

	s.metrics.StoreMutations.WithLabelValues("backup", "import").Inc()
	s.updateGauges()
	s.persistPatients(ctx)
	s.persistVisits(ctx)
}

// Clear empties both collections and removes their keys from storage.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.patients = nil
	s.visits = nil
	s.mu.Unlock()

	s.metrics.StoreMutations.WithLabelValues("backup", "clear").Inc()
	s.updateGauges()
	for _, key := range []string{patientsKey, visitsKey} {
		if err := s.storage.Remove(ctx, key); err != nil {
			s.noteSaveErr(key, err)
			continue
		}
		s.mu.Lock()
		delete(s.saveErrs, key)
		s.mu.Unlock()
	}
}

// NewID exposes the store's id generator so boundaries can mint ids for
// nested records (line items, questionnaire answers) with the same provider.
func (s *Store) NewID() string {
	return s.ids.NewID()
}

// Now exposes the store's clock for the same reason.
func (s *Store) Now() time.Time {
	return s.clock.Now()
}

// LastSaveErr reports an outstanding persistence failure, or nil once every
// collection's latest save succeeded. Failures are tracked per collection so
// a successful visits save cannot mask an unsaved patients collection. The
// in-memory state is authoritative either way.
func (s *Store) LastSaveErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range []string{patientsKey, visitsKey} {
		if err := s.saveErrs[key]; err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) patientIndex(id string) int {
	for i := range s.patients {
		if s.patients[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) visitIndex(id string) int {
	for i := range s.visits {
		if s.visits[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistPatients(ctx context.Context) {
	s.persist(ctx, patientsKey, s.Patients())
}

func (s *Store) persistVisits(ctx context.Context) {
	s.persist(ctx, visitsKey, s.Visits())
}

func (s *Store) persist(ctx context.Context, key string, collection interface{}) {
	data, err := json.Marshal(collection)
	if err != nil {
		s.noteSaveErr(key, err)
		return
	}
	if err := s.storage.Set(ctx, key, string(data)); err != nil {
		s.noteSaveErr(key, err)
		return
	}
	s.mu.Lock()
	delete(s.saveErrs, key)
	s.mu.Unlock()
}

func (s *Store) noteSaveErr(key string, err error) {
	s.logger.Warn(err, "failed to persist collection, in-memory state kept", "key", key)
	s.metrics.PersistenceFailures.WithLabelValues(key).Inc()
	s.mu.Lock()
	s.saveErrs[key] = apperrors.Persistence(err)
	s.mu.Unlock()
}

func (s *Store) updateGauges() {
	s.mu.RLock()
	patients := len(s.patients)
	visits := len(s.visits)
	s.mu.RUnlock()
	s.metrics.PatientsTotal.Set(float64(patients))
	s.metrics.VisitsTotal.Set(float64(visits))
}

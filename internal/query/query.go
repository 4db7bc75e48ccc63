// Package query derives filtered and sorted views over the record store's
// collections. Every function is pure: same inputs, same outputs, no side
// effects on the store.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/jwalitptl/patient-records/internal/model"
	"github.com/jwalitptl/patient-records/pkg/validator"
)

// FilterPatients applies the search filters over the patient collection.
// Populated keys combine with AND; name, surname and email match by
// case-insensitive substring, phone by case-sensitive substring, and
// visit date by calendar day against any of the patient's visits. The
// output preserves input order.
func FilterPatients(patients []model.Patient, visits []model.Visit, filters model.SearchFilters) []model.Patient {
	if filters.Empty() {
		return patients
	}

	visitDay, visitDayOK := parseDay(filters.VisitDate)

	out := make([]model.Patient, 0, len(patients))
	for _, p := range patients {
		if !containsFold(p.Name, filters.Name) {
			continue
		}
		if !containsFold(p.Surname, filters.Surname) {
			continue
		}
		if !containsFold(p.Email, filters.Email) {
			continue
		}
		if filters.Phone != "" && !strings.Contains(p.Phone, filters.Phone) {
			continue
		}
		if filters.VisitDate != "" {
			// An unparseable filter date matches nothing.
			if !visitDayOK || !hasVisitOnDay(visits, p.ID, visitDay) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// PatientVisits selects the visits of one patient, optionally restricted to a
// calendar day, sorted descending by visit date. This is the one operation
// that reorders its input.
func PatientVisits(visits []model.Visit, patientID string, filters model.VisitFilters) []model.Visit {
	day, dayOK := parseDay(filters.Date)

	out := make([]model.Visit, 0)
	for _, v := range visits {
		if v.PatientID != patientID {
			continue
		}
		if filters.Date != "" {
			if !dayOK || !sameDay(v.Date, day) {
				continue
			}
		}
		out = append(out, v)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// containsFold reports whether haystack contains needle case-insensitively.
// An empty needle always matches; an empty haystack never matches a
// populated needle.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func hasVisitOnDay(visits []model.Visit, patientID string, day time.Time) bool {
	for _, v := range visits {
		if v.PatientID == patientID && sameDay(v.Date, day) {
			return true
		}
	}
	return false
}

func parseDay(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	return validator.ParseDate(value)
}

// sameDay compares calendar days, ignoring time of day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

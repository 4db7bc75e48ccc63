package model

import (
	"time"
)

// Patient is the central identity record. Every field except the identity and
// the timestamps is optional: the clinic decides how much it records up front.
type Patient struct {
	ID            string                `json:"id"`
	Name          string                `json:"name,omitempty"`
	Surname       string                `json:"surname,omitempty"`
	Email         string                `json:"email,omitempty"`
	Phone         string                `json:"phone,omitempty"`
	DateOfBirth   string                `json:"dateOfBirth,omitempty"`
	Questionnaire []QuestionnaireAnswer `json:"questionnaire,omitempty"`
	Notes         string                `json:"notes,omitempty"`
	Photo         string                `json:"photo,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// PatientFields carries the caller-supplied part of a new patient.
type PatientFields struct {
	Name          string                `json:"name"`
	Surname       string                `json:"surname"`
	Email         string                `json:"email"`
	Phone         string                `json:"phone"`
	DateOfBirth   string                `json:"dateOfBirth"`
	Questionnaire []QuestionnaireAnswer `json:"questionnaire"`
	Notes         string                `json:"notes"`
	Photo         string                `json:"photo"`
}

// PatientUpdate is a partial update. Nil pointers leave the field untouched,
// set pointers overwrite it, including overwriting with the empty string.
type PatientUpdate struct {
	Name          *string                `json:"name"`
	Surname       *string                `json:"surname"`
	Email         *string                `json:"email"`
	Phone         *string                `json:"phone"`
	DateOfBirth   *string                `json:"dateOfBirth"`
	Questionnaire *[]QuestionnaireAnswer `json:"questionnaire"`
	Notes         *string                `json:"notes"`
	Photo         *string                `json:"photo"`
}

// Apply merges the set fields over p.
func (u *PatientUpdate) Apply(p *Patient) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Surname != nil {
		p.Surname = *u.Surname
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.DateOfBirth != nil {
		p.DateOfBirth = *u.DateOfBirth
	}
	if u.Questionnaire != nil {
		p.Questionnaire = *u.Questionnaire
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
	if u.Photo != nil {
		p.Photo = *u.Photo
	}
}

type CreatePatientRequest struct {
	Name          string                `json:"name"`
	Surname       string                `json:"surname"`
	Email         string                `json:"email" binding:"omitempty,email"`
	Phone         string                `json:"phone"`
	DateOfBirth   string                `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Questionnaire []QuestionnaireAnswer `json:"questionnaire"`
	Notes         string                `json:"notes"`
	Photo         string                `json:"photo"`
}

type UpdatePatientRequest struct {
	Name          *string                `json:"name"`
	Surname       *string                `json:"surname"`
	Email         *string                `json:"email" binding:"omitempty,email"`
	Phone         *string                `json:"phone"`
	DateOfBirth   *string                `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Questionnaire *[]QuestionnaireAnswer `json:"questionnaire"`
	Notes         *string                `json:"notes"`
	Photo         *string                `json:"photo"`
}

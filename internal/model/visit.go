package model

import (
	"time"
)

// MaxVisitPhotos caps photo uploads per visit at the HTTP boundary. The model
// itself keeps the slice unbounded.
const MaxVisitPhotos = 5

// Visit is a dated clinical encounter attached to exactly one patient.
type Visit struct {
	ID           string     `json:"id"`
	PatientID    string     `json:"patientId"`
	Date         time.Time  `json:"date"`
	Procedures   []LineItem `json:"procedures"`
	Products     []LineItem `json:"products"`
	SoldProducts []LineItem `json:"soldProducts"`
	Notes        string     `json:"notes,omitempty"`
	Photos       []string   `json:"photos"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// LineItem is a named entry within a visit. Procedures, products and sold
// products share the shape; the category is which Visit field holds them.
type LineItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// VisitFields carries the caller-supplied part of a new visit.
type VisitFields struct {
	PatientID    string     `json:"patientId"`
	Date         time.Time  `json:"date"`
	Procedures   []LineItem `json:"procedures"`
	Products     []LineItem `json:"products"`
	SoldProducts []LineItem `json:"soldProducts"`
	Notes        string     `json:"notes"`
	Photos       []string   `json:"photos"`
}

// VisitUpdate is a partial update over a visit.
type VisitUpdate struct {
	Date         *time.Time  `json:"date"`
	Procedures   *[]LineItem `json:"procedures"`
	Products     *[]LineItem `json:"products"`
	SoldProducts *[]LineItem `json:"soldProducts"`
	Notes        *string     `json:"notes"`
	Photos       *[]string   `json:"photos"`
}

// Apply merges the set fields over v.
func (u *VisitUpdate) Apply(v *Visit) {
	if u.Date != nil {
		v.Date = *u.Date
	}
	if u.Procedures != nil {
		v.Procedures = *u.Procedures
	}
	if u.Products != nil {
		v.Products = *u.Products
	}
	if u.SoldProducts != nil {
		v.SoldProducts = *u.SoldProducts
	}
	if u.Notes != nil {
		v.Notes = *u.Notes
	}
	if u.Photos != nil {
		v.Photos = *u.Photos
	}
}

type CreateVisitRequest struct {
	PatientID    string     `json:"patientId" binding:"required"`
	Date         time.Time  `json:"date" binding:"required"`
	Procedures   []LineItem `json:"procedures"`
	Products     []LineItem `json:"products"`
	SoldProducts []LineItem `json:"soldProducts"`
	Notes        string     `json:"notes"`
	Photos       []string   `json:"photos" binding:"max=5"`
}

type UpdateVisitRequest struct {
	Date         *time.Time  `json:"date"`
	Procedures   *[]LineItem `json:"procedures"`
	Products     *[]LineItem `json:"products"`
	SoldProducts *[]LineItem `json:"soldProducts"`
	Notes        *string     `json:"notes"`
	Photos       *[]string   `json:"photos" binding:"omitempty,max=5"`
}

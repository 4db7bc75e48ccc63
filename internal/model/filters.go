package model

// SearchFilters narrows the patient list. All populated keys must match
// (logical AND); empty values impose no constraint.
type SearchFilters struct {
	Name      string `json:"name" form:"name"`
	Surname   string `json:"surname" form:"surname"`
	Email     string `json:"email" form:"email"`
	Phone     string `json:"phone" form:"phone"`
	VisitDate string `json:"visit_date" form:"visit_date"`
}

// Empty reports whether no filter key is populated.
func (f SearchFilters) Empty() bool {
	return f.Name == "" && f.Surname == "" && f.Email == "" && f.Phone == "" && f.VisitDate == ""
}

// VisitFilters narrows a patient's visit listing.
type VisitFilters struct {
	Date string `json:"date" form:"date"`
}

// Backup is the export/import payload: both collections verbatim.
type Backup struct {
	Patients []Patient `json:"patients"`
	Visits   []Visit   `json:"visits"`
}

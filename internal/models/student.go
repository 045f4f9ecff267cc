package models

import "time"

// Student represents an admitted child. Every student originates from
// exactly one application; the back-reference is set at admission time
// and never changes.
type Student struct {
	ID              string    `db:"id" json:"id"`
	AdmissionNumber string    `db:"admission_number" json:"admission_number"`
	RollNumber      string    `db:"roll_number" json:"roll_number"`
	StudentName     string    `db:"student_name" json:"student_name"`
	Gender          Gender    `db:"gender" json:"gender"`
	DateOfBirth     string    `db:"date_of_birth" json:"date_of_birth"`
	CurrentClass    Standard  `db:"current_class" json:"current_class"`
	Section         string    `db:"section" json:"section"`
	AcademicYear    string    `db:"academic_year" json:"academic_year"`
	ParentID        string    `db:"parent_id" json:"parent_id"`
	ApplicationID   string    `db:"application_id" json:"application_id"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Class        *Standard
	Section      string
	AcademicYear string
	ParentID     string
	Active       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

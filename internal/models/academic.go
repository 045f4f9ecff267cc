package models

import "time"

// AcademicYear is one school year, e.g. "2025-2026".
type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	Year      string    `db:"year" json:"year"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Section is one division of a standard within an academic year.
type Section struct {
	ID           string    `db:"id" json:"id"`
	Standard     Standard  `db:"standard" json:"standard"`
	SectionName  string    `db:"section_name" json:"section_name"`
	Capacity     int       `db:"capacity" json:"capacity"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	TeacherID    *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TeacherAssignment links a teacher to a standard/section cohort.
type TeacherAssignment struct {
	ID             string    `db:"id" json:"id"`
	TeacherID      string    `db:"teacher_id" json:"teacher_id"`
	Standard       Standard  `db:"standard" json:"standard"`
	Section        string    `db:"section" json:"section"`
	AcademicYear   string    `db:"academic_year" json:"academic_year"`
	IsClassTeacher bool      `db:"is_class_teacher" json:"is_class_teacher"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

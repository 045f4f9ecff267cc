package models

import "time"

// AttendanceStatus marks a student's presence for one day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceHalfDay AttendanceStatus = "half_day"
)

// Attendance is one student's record for one calendar date.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Date      string           `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	TeacherID string           `db:"teacher_id" json:"teacher_id"`
	Remarks   *string          `db:"remarks" json:"remarks,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// ClassRegisterEntry pairs a student with their attendance record for a
// given date; Attendance is nil when nothing was marked yet.
type ClassRegisterEntry struct {
	Student    Student     `json:"student"`
	Attendance *Attendance `json:"attendance,omitempty"`
}

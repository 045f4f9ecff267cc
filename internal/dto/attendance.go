package dto

import "github.com/kidscholars/ksis-api/internal/models"

// MarkAttendanceRequest records one student's presence for a date.
type MarkAttendanceRequest struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required,oneof=present absent half_day"`
	Remarks   *string `json:"remarks" validate:"omitempty,max=500"`
}

// BulkAttendanceRequest marks a whole cohort for one date.
type BulkAttendanceRequest struct {
	Standard     string                `json:"standard" validate:"required,oneof=play_group pre_kg lkg ukg"`
	Section      string                `json:"section" validate:"required,min=1,max=10"`
	AcademicYear string                `json:"academic_year" validate:"required"`
	Date         string                `json:"date" validate:"required,datetime=2006-01-02"`
	Entries      []BulkAttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// BulkAttendanceEntry is one row of a bulk marking.
type BulkAttendanceEntry struct {
	StudentID string  `json:"student_id" validate:"required,uuid"`
	Status    string  `json:"status" validate:"required,oneof=present absent half_day"`
	Remarks   *string `json:"remarks" validate:"omitempty,max=500"`
}

// ClassRegisterQuery selects the cohort and date for the register view.
type ClassRegisterQuery struct {
	Standard     string `form:"standard" validate:"required,oneof=play_group pre_kg lkg ukg"`
	Section      string `form:"section" validate:"required"`
	AcademicYear string `form:"academic_year" validate:"required"`
	Date         string `form:"date" validate:"required,datetime=2006-01-02"`
}

// AttendanceHistoryQuery bounds a student's history window.
type AttendanceHistoryQuery struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to" validate:"required,datetime=2006-01-02"`
}

// AttendanceSummary aggregates a student's counts for a window.
type AttendanceSummary struct {
	StudentID string                          `json:"student_id"`
	From      string                          `json:"from"`
	To        string                          `json:"to"`
	Counts    map[models.AttendanceStatus]int `json:"counts"`
}

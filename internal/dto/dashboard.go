package dto

import "github.com/kidscholars/ksis-api/internal/models"

// DashboardStats is the aggregate payload behind GET /dashboard/stats.
type DashboardStats struct {
	TotalApplications   int                              `json:"total_applications"`
	ApplicationsByState map[models.ApplicationStatus]int `json:"applications_by_status"`
	PendingApplications int                              `json:"pending_applications"`
	ActiveStudents      int                              `json:"active_students"`
	StudentsByClass     map[models.Standard]int          `json:"students_by_class"`
	AttendanceToday     map[models.AttendanceStatus]int  `json:"attendance_today"`
	FeesCollected       int                              `json:"fees_collected"`
	RecentApplications  []models.PublicApplicationView   `json:"recent_applications"`
	GeneratedAt         string                           `json:"generated_at"`
}

package dto

import "github.com/kidscholars/ksis-api/internal/models"

// SubmitApplicationRequest is the public enquiry form payload.
type SubmitApplicationRequest struct {
	StudentName      string `json:"student_name" validate:"required,min=2,max=120"`
	Gender           string `json:"gender" validate:"required,oneof=male female"`
	DateOfBirth      string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	ApplyingForClass string `json:"applying_for_class" validate:"required,oneof=play_group pre_kg lkg ukg"`
	Source           string `json:"source" validate:"required,oneof=newspapers sibling_reference social_media school_banners friends_relatives others"`
	ParentType       string `json:"parent_type" validate:"required,oneof=father mother guardian"`
	ParentName       string `json:"parent_name" validate:"required,min=2,max=120"`
	Mobile           string `json:"mobile" validate:"required,min=10,max=15"`
	Email            string `json:"email" validate:"required,email"`
}

// SubmitApplicationResponse acknowledges a new enquiry.
type SubmitApplicationResponse struct {
	ReferenceNumber string                   `json:"reference_number"`
	Status          models.ApplicationStatus `json:"status"`
	Message         string                   `json:"message"`
}

// StatusCheckRequest is the public lookup pair.
type StatusCheckRequest struct {
	ReferenceNumber string `json:"reference_number" validate:"required"`
	DateOfBirth     string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
}

// ResolveTrackingResponse returns the capability link for an application.
type ResolveTrackingResponse struct {
	TrackingToken string `json:"tracking_token"`
	TrackingURL   string `json:"tracking_url"`
}

// SubmitLinkRequest carries an applicant-provided URL (document bundle
// or payment receipt).
type SubmitLinkRequest struct {
	Link string `json:"link" validate:"required,url"`
}

// UpdateApplicationRequest is the staff-side partial update. All fields
// are optional; absent fields are left untouched.
type UpdateApplicationRequest struct {
	Status  *string `json:"status" validate:"omitempty,oneof=enquiry_new enquiry_hot enquiry_warm enquiry_cold documents_pending documents_verified payment_pending admitted rejected on_hold"`
	Remarks *string `json:"remarks" validate:"omitempty,max=1000"`
	Section *string `json:"section" validate:"omitempty,max=10"`
}

// UpdateApplicationResponse reports the update outcome. EmailScheduled
// is true when the transition enqueued a notification mail.
type UpdateApplicationResponse struct {
	Application    *models.Application `json:"application"`
	EmailScheduled bool                `json:"email_scheduled"`
}

// AdmitRequest carries the cohort placement for an admission.
type AdmitRequest struct {
	Section      string `json:"section" validate:"required,min=1,max=10"`
	AcademicYear string `json:"academic_year" validate:"required,min=4,max=12"`
}

// AdmitResponse returns the identifiers created by an admission. The
// default parent password is deterministic and returned here once;
// there is no separate credential-distribution step.
type AdmitResponse struct {
	AdmissionNumber string `json:"admission_number"`
	RollNumber      string `json:"roll_number"`
	StudentID       string `json:"student_id"`
	ParentEmail     string `json:"parent_email"`
	DefaultPassword string `json:"parent_default_password"`
}

// ListApplicationsQuery binds staff list filters from the query string.
type ListApplicationsQuery struct {
	Status    string `form:"status"`
	Class     string `form:"class"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}

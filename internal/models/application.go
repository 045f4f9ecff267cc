package models

import "time"

// ApplicationStatus tracks an admission enquiry through its lifecycle.
// Values are wire-exact.
type ApplicationStatus string

const (
	StatusEnquiryNew        ApplicationStatus = "enquiry_new"
	StatusEnquiryHot        ApplicationStatus = "enquiry_hot"
	StatusEnquiryWarm       ApplicationStatus = "enquiry_warm"
	StatusEnquiryCold       ApplicationStatus = "enquiry_cold"
	StatusDocumentsPending  ApplicationStatus = "documents_pending"
	StatusDocumentsVerified ApplicationStatus = "documents_verified"
	StatusPaymentPending    ApplicationStatus = "payment_pending"
	StatusAdmitted          ApplicationStatus = "admitted"
	StatusRejected          ApplicationStatus = "rejected"
	StatusOnHold            ApplicationStatus = "on_hold"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusEnquiryNew, StatusEnquiryHot, StatusEnquiryWarm, StatusEnquiryCold,
		StatusDocumentsPending, StatusDocumentsVerified, StatusPaymentPending,
		StatusAdmitted, StatusRejected, StatusOnHold:
		return true
	}
	return false
}

// Gender restricts the accepted gender values.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Standard enumerates the pre-school classes on offer.
type Standard string

const (
	StandardPlayGroup Standard = "play_group"
	StandardPreKG     Standard = "pre_kg"
	StandardLKG       Standard = "lkg"
	StandardUKG       Standard = "ukg"
)

// Source records how the family heard about the school.
type Source string

const (
	SourceNewspapers       Source = "newspapers"
	SourceSiblingReference Source = "sibling_reference"
	SourceSocialMedia      Source = "social_media"
	SourceSchoolBanners    Source = "school_banners"
	SourceFriendsRelatives Source = "friends_relatives"
	SourceOthers           Source = "others"
)

// ParentType identifies which guardian filed the enquiry.
type ParentType string

const (
	ParentTypeFather   ParentType = "father"
	ParentTypeMother   ParentType = "mother"
	ParentTypeGuardian ParentType = "guardian"
)

// Application represents one admission enquiry.
type Application struct {
	ID                 string            `db:"id" json:"id"`
	ReferenceNumber    string            `db:"reference_number" json:"reference_number"`
	TrackingToken      *string           `db:"tracking_token" json:"-"`
	Branch             string            `db:"branch" json:"branch"`
	StudentName        string            `db:"student_name" json:"student_name"`
	Gender             Gender            `db:"gender" json:"gender"`
	DateOfBirth        string            `db:"date_of_birth" json:"date_of_birth"`
	ApplyingForClass   Standard          `db:"applying_for_class" json:"applying_for_class"`
	Source             Source            `db:"source" json:"source"`
	ParentType         ParentType        `db:"parent_type" json:"parent_type"`
	ParentName         string            `db:"parent_name" json:"parent_name"`
	Mobile             string            `db:"mobile" json:"mobile"`
	Email              string            `db:"email" json:"email"`
	Status             ApplicationStatus `db:"status" json:"status"`
	Remarks            *string           `db:"remarks" json:"remarks,omitempty"`
	DocumentsLink      *string           `db:"documents_link" json:"documents_link,omitempty"`
	PaymentReceiptLink *string           `db:"payment_receipt_link" json:"payment_receipt_link,omitempty"`
	AdmissionNumber    *string           `db:"admission_number" json:"admission_number,omitempty"`
	RollNumber         *string           `db:"roll_number" json:"roll_number,omitempty"`
	Section            *string           `db:"section" json:"section,omitempty"`
	AcademicYear       *string           `db:"academic_year" json:"academic_year,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationFilter encapsulates allowed search parameters for listing applications.
type ApplicationFilter struct {
	Status    *ApplicationStatus
	Class     *Standard
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// PublicView strips the application down to the fields an anonymous
// tracker may see. The tracking token itself is never echoed back.
func (a *Application) PublicView() PublicApplicationView {
	view := PublicApplicationView{
		ReferenceNumber:  a.ReferenceNumber,
		Branch:           a.Branch,
		StudentName:      a.StudentName,
		ApplyingForClass: a.ApplyingForClass,
		Status:           a.Status,
		SubmittedAt:      a.CreatedAt,
	}
	if a.Remarks != nil {
		view.Remarks = *a.Remarks
	}
	if a.DocumentsLink != nil {
		view.DocumentsLink = *a.DocumentsLink
	}
	if a.PaymentReceiptLink != nil {
		view.PaymentReceiptLink = *a.PaymentReceiptLink
	}
	return view
}

// PublicApplicationView is returned by the anonymous tracking endpoints.
type PublicApplicationView struct {
	ReferenceNumber    string            `json:"reference_number"`
	Branch             string            `json:"branch"`
	StudentName        string            `json:"student_name"`
	ApplyingForClass   Standard          `json:"applying_for_class"`
	Status             ApplicationStatus `json:"status"`
	Remarks            string            `json:"remarks,omitempty"`
	DocumentsLink      string            `json:"documents_link,omitempty"`
	PaymentReceiptLink string            `json:"payment_receipt_link,omitempty"`
	SubmittedAt        time.Time         `json:"submitted_at"`
}

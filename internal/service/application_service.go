package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	"github.com/kidscholars/ksis-api/internal/repository"
	"github.com/kidscholars/ksis-api/pkg/config"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/mailer"
)

const defaultStatusRemarks = "We will contact you within 2-3 business days"

// ApplicationStore abstracts persistence for applications.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindByReferenceAndDOB(ctx context.Context, referenceNumber, dateOfBirth string) (*models.Application, error)
	FindByTrackingToken(ctx context.Context, token string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	Update(ctx context.Context, app *models.Application) error
	SetTrackingToken(ctx context.Context, id, token string) (string, error)
	SetDocumentsLink(ctx context.Context, id, link string) error
	SetPaymentReceiptLink(ctx context.Context, id, link string) error
}

// Admitter runs the admission transaction.
type Admitter interface {
	Admit(ctx context.Context, cmd repository.AdmitCommand) (*repository.AdmitResult, error)
}

// MailEnqueuer schedules outbound mail. Enqueue reports whether the
// message was accepted for delivery.
type MailEnqueuer interface {
	Enqueue(msg mailer.Message) bool
}

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// ApplicationService owns the admission application lifecycle: public
// submission and tracking, the staff status state machine with its
// email side effects, and the admission that materializes a student.
type ApplicationService struct {
	repo     ApplicationStore
	admitter Admitter
	mail     MailEnqueuer
	hasher   PasswordHasher
	metrics  *MetricsService
	app      config.AppConfig
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(repo ApplicationStore, admitter Admitter, mail MailEnqueuer, hasher PasswordHasher, metrics *MetricsService, app config.AppConfig, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	return &ApplicationService{
		repo:     repo,
		admitter: admitter,
		mail:     mail,
		hasher:   hasher,
		metrics:  metrics,
		app:      app,
		validate: validate,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit files a new public enquiry. The reference number is generated
// server-side and is the family's handle for all later lookups.
func (s *ApplicationService) Submit(ctx context.Context, req dto.SubmitApplicationRequest) (*dto.SubmitApplicationResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	app := &models.Application{
		ReferenceNumber:  models.NewReferenceNumber(s.now().Year()),
		Branch:           s.app.Branch,
		StudentName:      req.StudentName,
		Gender:           models.Gender(req.Gender),
		DateOfBirth:      req.DateOfBirth,
		ApplyingForClass: models.Standard(req.ApplyingForClass),
		Source:           models.Source(req.Source),
		ParentType:       models.ParentType(req.ParentType),
		ParentName:       req.ParentName,
		Mobile:           req.Mobile,
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Status:           models.StatusEnquiryNew,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "create application")
	}
	s.metrics.RecordApplicationSubmitted(string(app.Source))

	return &dto.SubmitApplicationResponse{
		ReferenceNumber: app.ReferenceNumber,
		Status:          app.Status,
		Message:         "Application submitted successfully",
	}, nil
}

// CheckStatus is the public reference-number + date-of-birth lookup.
func (s *ApplicationService) CheckStatus(ctx context.Context, req dto.StatusCheckRequest) (*models.PublicApplicationView, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status lookup")
	}
	app, err := s.repo.FindByReferenceAndDOB(ctx, req.ReferenceNumber, req.DateOfBirth)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	view := app.PublicView()
	if view.Remarks == "" {
		view.Remarks = defaultStatusRemarks
	}
	return &view, nil
}

// ResolveTracking issues (or re-issues) the tracking capability link for
// an application. Applications created before a token was assigned get
// one here; repeated calls always return the same token.
func (s *ApplicationService) ResolveTracking(ctx context.Context, req dto.StatusCheckRequest) (*dto.ResolveTrackingResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid tracking lookup")
	}
	app, err := s.repo.FindByReferenceAndDOB(ctx, req.ReferenceNumber, req.DateOfBirth)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}

	token, err := s.ensureTrackingToken(ctx, app)
	if err != nil {
		return nil, err
	}
	return &dto.ResolveTrackingResponse{
		TrackingToken: token,
		TrackingURL:   s.trackingURL(token),
	}, nil
}

// Track returns the public-safe view behind a tracking token.
func (s *ApplicationService) Track(ctx context.Context, token string) (*models.PublicApplicationView, error) {
	app, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	view := app.PublicView()
	return &view, nil
}

// SubmitDocumentsLink stores the applicant's document bundle URL.
func (s *ApplicationService) SubmitDocumentsLink(ctx context.Context, token string, req dto.SubmitLinkRequest) error {
	return s.submitLink(ctx, token, req, s.repo.SetDocumentsLink)
}

// SubmitPaymentReceiptLink stores the applicant's payment receipt URL.
func (s *ApplicationService) SubmitPaymentReceiptLink(ctx context.Context, token string, req dto.SubmitLinkRequest) error {
	return s.submitLink(ctx, token, req, s.repo.SetPaymentReceiptLink)
}

func (s *ApplicationService) submitLink(ctx context.Context, token string, req dto.SubmitLinkRequest, store func(context.Context, string, string) error) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid link payload")
	}
	app, err := s.findByToken(ctx, token)
	if err != nil {
		return err
	}
	if err := store(ctx, app.ID, req.Link); err != nil {
		return notFoundOr(err, "application not found")
	}
	return nil
}

// List returns applications for the staff register.
func (s *ApplicationService) List(ctx context.Context, query dto.ListApplicationsQuery) ([]models.Application, *models.Pagination, error) {
	filter := models.ApplicationFilter{
		Search:    query.Search,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Status != "" {
		status := models.ApplicationStatus(query.Status)
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", query.Status))
		}
		filter.Status = &status
	}
	if query.Class != "" {
		class := models.Standard(query.Class)
		filter.Class = &class
	}

	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return apps, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns the full staff view of one application.
func (s *ApplicationService) Get(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	return app, nil
}

// Update applies the staff-side partial update and fires at most one
// side-effect email, chosen by comparing the old status to the new one.
// Re-setting the same status, or changing only remarks/section, never
// schedules mail.
func (s *ApplicationService) Update(ctx context.Context, id string, req dto.UpdateApplicationRequest) (*dto.UpdateApplicationResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}

	oldStatus := app.Status
	newStatus := oldStatus
	if req.Status != nil {
		newStatus = models.ApplicationStatus(*req.Status)
	}

	// Requesting on_hold demands a hold reason, checked before any
	// write. This holds even when the application is already on hold,
	// so a re-post can never blank out the stored reason.
	if req.Status != nil && newStatus == models.StatusOnHold {
		if req.Remarks == nil || strings.TrimSpace(*req.Remarks) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "remarks are required when placing an application on hold")
		}
	}

	app.Status = newStatus
	if req.Remarks != nil {
		app.Remarks = req.Remarks
	}
	if req.Section != nil {
		app.Section = req.Section
	}

	var msg *mailer.Message
	if newStatus != oldStatus {
		msg, err = s.transitionMail(ctx, app, newStatus)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "update application")
	}

	// Mail goes out only after the mutation is committed.
	scheduled := false
	if msg != nil {
		scheduled = s.mail.Enqueue(*msg)
	}

	return &dto.UpdateApplicationResponse{Application: app, EmailScheduled: scheduled}, nil
}

// transitionMail builds the email intent for a status change, or nil
// when the transition carries no mail.
func (s *ApplicationService) transitionMail(ctx context.Context, app *models.Application, newStatus models.ApplicationStatus) (*mailer.Message, error) {
	switch newStatus {
	case models.StatusDocumentsPending:
		token, err := s.ensureTrackingToken(ctx, app)
		if err != nil {
			return nil, err
		}
		msg := documentsRequiredMail(app, s.app.Name, s.trackingURL(token))
		return &msg, nil
	case models.StatusDocumentsVerified:
		msg := documentsVerifiedMail(app, s.app.Name)
		return &msg, nil
	case models.StatusOnHold:
		remarks := ""
		if app.Remarks != nil {
			remarks = *app.Remarks
		}
		msg := onHoldMail(app, s.app.Name, remarks)
		return &msg, nil
	case models.StatusRejected:
		msg := rejectedMail(app, s.app.Name)
		return &msg, nil
	}
	return nil, nil
}

// Admit promotes the application into a student record. The entire
// admission commits in one transaction; a second admit on the same
// application fails with Conflict and leaves everything untouched.
func (s *ApplicationService) Admit(ctx context.Context, id string, req dto.AdmitRequest) (*dto.AdmitResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admit payload")
	}

	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	if app.Status == models.StatusAdmitted {
		return nil, appErrors.ErrAlreadyAdmitted
	}

	year := s.now().Year()
	defaultPassword := models.DefaultParentPassword(year)
	passwordHash, err := s.hasher.Hash(defaultPassword)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "hash parent password")
	}

	result, err := s.admitter.Admit(ctx, repository.AdmitCommand{
		ApplicationID:      id,
		Section:            req.Section,
		AcademicYear:       req.AcademicYear,
		Year:               year,
		AdmissionNumber:    models.NewAdmissionNumber(year),
		ParentPasswordHash: passwordHash,
		NotificationTitle:  "Admission Confirmed!",
		NotificationMessage: func(rollNumber string) string {
			return fmt.Sprintf("Congratulations! %s has been admitted. Roll Number: %s. Login credentials sent to %s",
				app.StudentName, rollNumber, app.Email)
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyAdmitted):
			return nil, appErrors.ErrAlreadyAdmitted
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "admit application")
		}
	}

	s.metrics.RecordAdmission()
	s.logger.Info("student admitted",
		zap.String("application_id", id),
		zap.String("roll_number", result.RollNumber),
		zap.Bool("parent_created", result.ParentCreated))

	return &dto.AdmitResponse{
		AdmissionNumber: result.Student.AdmissionNumber,
		RollNumber:      result.RollNumber,
		StudentID:       result.Student.ID,
		ParentEmail:     result.ParentEmail,
		DefaultPassword: defaultPassword,
	}, nil
}

// ensureTrackingToken lazily assigns the application's tracking token.
// The persisted token wins over the freshly generated one, so the token
// is immutable once set even under concurrent assignment.
func (s *ApplicationService) ensureTrackingToken(ctx context.Context, app *models.Application) (string, error) {
	if app.TrackingToken != nil && *app.TrackingToken != "" {
		return *app.TrackingToken, nil
	}
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generate tracking token")
	}
	token, err := s.repo.SetTrackingToken(ctx, app.ID, hex.EncodeToString(raw))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "assign tracking token")
	}
	app.TrackingToken = &token
	return token, nil
}

func (s *ApplicationService) trackingURL(token string) string {
	return fmt.Sprintf("%s/track/%s", strings.TrimRight(s.app.PublicBaseURL, "/"), token)
}

func (s *ApplicationService) findByToken(ctx context.Context, token string) (*models.Application, error) {
	if token == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "tracking token required")
	}
	app, err := s.repo.FindByTrackingToken(ctx, token)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	return app, nil
}

// notFoundOr maps sql.ErrNoRows onto the NotFound sentinel and wraps
// anything else as internal.
func notFoundOr(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

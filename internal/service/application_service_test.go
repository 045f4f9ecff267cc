package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	"github.com/kidscholars/ksis-api/internal/repository"
	"github.com/kidscholars/ksis-api/pkg/config"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/mailer"
)

type mockApplicationStore struct {
	apps       map[string]*models.Application
	tokenIndex map[string]string
	updated    *models.Application
	setTokens  int
}

func newMockApplicationStore(apps ...*models.Application) *mockApplicationStore {
	store := &mockApplicationStore{
		apps:       map[string]*models.Application{},
		tokenIndex: map[string]string{},
	}
	for _, app := range apps {
		store.apps[app.ID] = app
		if app.TrackingToken != nil {
			store.tokenIndex[*app.TrackingToken] = app.ID
		}
	}
	return store
}

func (m *mockApplicationStore) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = "new-app"
	}
	m.apps[app.ID] = app
	return nil
}

func (m *mockApplicationStore) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if app, ok := m.apps[id]; ok {
		copied := *app
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationStore) FindByReferenceAndDOB(ctx context.Context, reference, dob string) (*models.Application, error) {
	for _, app := range m.apps {
		if app.ReferenceNumber == reference && app.DateOfBirth == dob {
			copied := *app
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationStore) FindByTrackingToken(ctx context.Context, token string) (*models.Application, error) {
	if id, ok := m.tokenIndex[token]; ok {
		copied := *m.apps[id]
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationStore) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	var out []models.Application
	for _, app := range m.apps {
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		out = append(out, *app)
	}
	return out, len(out), nil
}

func (m *mockApplicationStore) Update(ctx context.Context, app *models.Application) error {
	if _, ok := m.apps[app.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *app
	m.apps[app.ID] = &copied
	m.updated = &copied
	return nil
}

func (m *mockApplicationStore) SetTrackingToken(ctx context.Context, id, token string) (string, error) {
	app, ok := m.apps[id]
	if !ok {
		return "", sql.ErrNoRows
	}
	m.setTokens++
	if app.TrackingToken != nil && *app.TrackingToken != "" {
		return *app.TrackingToken, nil
	}
	app.TrackingToken = &token
	m.tokenIndex[token] = id
	return token, nil
}

func (m *mockApplicationStore) SetDocumentsLink(ctx context.Context, id, link string) error {
	app, ok := m.apps[id]
	if !ok {
		return sql.ErrNoRows
	}
	app.DocumentsLink = &link
	return nil
}

func (m *mockApplicationStore) SetPaymentReceiptLink(ctx context.Context, id, link string) error {
	app, ok := m.apps[id]
	if !ok {
		return sql.ErrNoRows
	}
	app.PaymentReceiptLink = &link
	return nil
}

type mockAdmitter struct {
	result *repository.AdmitResult
	err    error
	cmd    repository.AdmitCommand
}

func (m *mockAdmitter) Admit(ctx context.Context, cmd repository.AdmitCommand) (*repository.AdmitResult, error) {
	m.cmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

type mockMailQueue struct {
	enqueued []mailer.Message
	accept   bool
}

func (m *mockMailQueue) Enqueue(msg mailer.Message) bool {
	m.enqueued = append(m.enqueued, msg)
	return m.accept
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func testAppConfig() config.AppConfig {
	return config.AppConfig{
		Name:          "Kid Scholars International School",
		Branch:        "Medavakkam, Chennai",
		PublicBaseURL: "https://kidscholars.example.com",
	}
}

func newApplicationService(store *mockApplicationStore, admitter *mockAdmitter, mail *mockMailQueue) *ApplicationService {
	return NewApplicationService(store, admitter, mail, plainHasher{}, nil, testAppConfig(), validator.New(), zap.NewNop())
}

func sampleApplication(id string, status models.ApplicationStatus) *models.Application {
	return &models.Application{
		ID:               id,
		ReferenceNumber:  "KSIS-2026-A1B2C3",
		Branch:           "Medavakkam, Chennai",
		StudentName:      "Asha Kumar",
		Gender:           models.GenderFemale,
		DateOfBirth:      "2021-06-14",
		ApplyingForClass: models.StandardLKG,
		Source:           models.SourceSocialMedia,
		ParentType:       models.ParentTypeMother,
		ParentName:       "Priya Kumar",
		Mobile:           "9876543210",
		Email:            "priya@example.com",
		Status:           status,
	}
}

func TestApplicationServiceSubmit(t *testing.T) {
	store := newMockApplicationStore()
	svc := newApplicationService(store, &mockAdmitter{}, &mockMailQueue{accept: true})

	resp, err := svc.Submit(context.Background(), dto.SubmitApplicationRequest{
		StudentName:      "Asha Kumar",
		Gender:           "female",
		DateOfBirth:      "2021-06-14",
		ApplyingForClass: "lkg",
		Source:           "social_media",
		ParentType:       "mother",
		ParentName:       "Priya Kumar",
		Mobile:           "9876543210",
		Email:            "Priya@Example.com ",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusEnquiryNew, resp.Status)
	assert.Regexp(t, `^KSIS-\d{4}-[0-9A-F]{6}$`, resp.ReferenceNumber)

	created := store.apps["new-app"]
	require.NotNil(t, created)
	assert.Equal(t, "priya@example.com", created.Email)
	assert.Equal(t, "Medavakkam, Chennai", created.Branch)
}

func TestApplicationServiceSubmitRejectsUnknownClass(t *testing.T) {
	svc := newApplicationService(newMockApplicationStore(), &mockAdmitter{}, &mockMailQueue{})

	_, err := svc.Submit(context.Background(), dto.SubmitApplicationRequest{
		StudentName:      "Asha Kumar",
		Gender:           "female",
		DateOfBirth:      "2021-06-14",
		ApplyingForClass: "grade_5",
		Source:           "social_media",
		ParentType:       "mother",
		ParentName:       "Priya Kumar",
		Mobile:           "9876543210",
		Email:            "priya@example.com",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceCheckStatusDefaultRemarks(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusEnquiryNew))
	svc := newApplicationService(store, &mockAdmitter{}, &mockMailQueue{})

	view, err := svc.CheckStatus(context.Background(), dto.StatusCheckRequest{
		ReferenceNumber: "KSIS-2026-A1B2C3",
		DateOfBirth:     "2021-06-14",
	})
	require.NoError(t, err)
	assert.Equal(t, "We will contact you within 2-3 business days", view.Remarks)

	_, err = svc.CheckStatus(context.Background(), dto.StatusCheckRequest{
		ReferenceNumber: "KSIS-2026-FFFFFF",
		DateOfBirth:     "2021-06-14",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceResolveTrackingIsIdempotent(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusEnquiryNew))
	svc := newApplicationService(store, &mockAdmitter{}, &mockMailQueue{})

	req := dto.StatusCheckRequest{ReferenceNumber: "KSIS-2026-A1B2C3", DateOfBirth: "2021-06-14"}
	first, err := svc.ResolveTracking(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.TrackingToken, 48)
	assert.Equal(t, "https://kidscholars.example.com/track/"+first.TrackingToken, first.TrackingURL)

	second, err := svc.ResolveTracking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first.TrackingToken, second.TrackingToken)
}

func TestApplicationServiceSubmitDocumentsLink(t *testing.T) {
	app := sampleApplication("app-1", models.StatusDocumentsPending)
	token := "tok-1"
	app.TrackingToken = &token
	store := newMockApplicationStore(app)
	svc := newApplicationService(store, &mockAdmitter{}, &mockMailQueue{})

	err := svc.SubmitDocumentsLink(context.Background(), "tok-1", dto.SubmitLinkRequest{Link: "https://drive.example.com/docs"})
	require.NoError(t, err)
	require.NotNil(t, store.apps["app-1"].DocumentsLink)
	assert.Equal(t, "https://drive.example.com/docs", *store.apps["app-1"].DocumentsLink)

	err = svc.SubmitDocumentsLink(context.Background(), "tok-unknown", dto.SubmitLinkRequest{Link: "https://drive.example.com/docs"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceUpdateDocumentsPendingSchedulesChecklistMail(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusEnquiryHot))
	mail := &mockMailQueue{accept: true}
	svc := newApplicationService(store, &mockAdmitter{}, mail)

	status := string(models.StatusDocumentsPending)
	resp, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Status: &status})
	require.NoError(t, err)
	assert.True(t, resp.EmailScheduled)
	require.Len(t, mail.enqueued, 1)

	msg := mail.enqueued[0]
	assert.Equal(t, "priya@example.com", msg.ToAddress)
	assert.Contains(t, msg.Subject, "Documents required")
	assert.Contains(t, msg.TextBody, "Birth certificate")
	assert.Contains(t, msg.TextBody, "https://kidscholars.example.com/track/")
	// The transition lazily assigned the tracking token.
	assert.Equal(t, 1, store.setTokens)
}

func TestApplicationServiceUpdateSameStatusSendsNoMail(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusDocumentsPending))
	mail := &mockMailQueue{accept: true}
	svc := newApplicationService(store, &mockAdmitter{}, mail)

	status := string(models.StatusDocumentsPending)
	resp, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Status: &status})
	require.NoError(t, err)
	assert.False(t, resp.EmailScheduled)
	assert.Empty(t, mail.enqueued)
}

func TestApplicationServiceUpdateRemarksOnlySendsNoMail(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusEnquiryWarm))
	mail := &mockMailQueue{accept: true}
	svc := newApplicationService(store, &mockAdmitter{}, mail)

	remarks := "Parent visited the campus"
	resp, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Remarks: &remarks})
	require.NoError(t, err)
	assert.False(t, resp.EmailScheduled)
	assert.Empty(t, mail.enqueued)
	require.NotNil(t, store.updated.Remarks)
	assert.Equal(t, remarks, *store.updated.Remarks)
}

func TestApplicationServiceUpdateOnHoldRequiresRemarks(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusEnquiryHot))
	mail := &mockMailQueue{accept: true}
	svc := newApplicationService(store, &mockAdmitter{}, mail)

	status := string(models.StatusOnHold)
	_, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Status: &status})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	// Rejected before any write.
	assert.Nil(t, store.updated)
	assert.Equal(t, models.StatusEnquiryHot, store.apps["app-1"].Status)

	blank := "   "
	_, err = svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Status: &status, Remarks: &blank})
	require.Error(t, err)

	remarks := "Waiting for sibling's transfer certificate"
	resp, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Status: &status, Remarks: &remarks})
	require.NoError(t, err)
	assert.True(t, resp.EmailScheduled)
	require.Len(t, mail.enqueued, 1)
	assert.Contains(t, mail.enqueued[0].TextBody, remarks)
}

func TestApplicationServiceUpdateReholdKeepsStoredRemarks(t *testing.T) {
	app := sampleApplication("app-1", models.StatusOnHold)
	held := "Awaiting transfer certificate"
	app.Remarks = &held
	store := newMockApplicationStore(app)
	svc := newApplicationService(store, &mockAdmitter{}, &mockMailQueue{accept: true})

	// Posting on_hold again without a real reason must not blank the
	// stored one.
	status := string(models.StatusOnHold)
	blank := "   "
	_, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Status: &status, Remarks: &blank})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, store.updated)
	require.NotNil(t, store.apps["app-1"].Remarks)
	assert.Equal(t, held, *store.apps["app-1"].Remarks)

	_, err = svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Status: &status})
	require.Error(t, err)

	// A section-only touch on a held application needs no remarks.
	section := "A"
	resp, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Section: &section})
	require.NoError(t, err)
	assert.False(t, resp.EmailScheduled)
	assert.Equal(t, held, *store.apps["app-1"].Remarks)
}

func TestApplicationServiceUpdateRejectedSendsGenericMail(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusDocumentsVerified))
	mail := &mockMailQueue{accept: true}
	svc := newApplicationService(store, &mockAdmitter{}, mail)

	status := string(models.StatusRejected)
	internal := "sibling fee dispute"
	resp, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Status: &status, Remarks: &internal})
	require.NoError(t, err)
	assert.True(t, resp.EmailScheduled)
	require.Len(t, mail.enqueued, 1)
	// Internal remarks never leak into the rejection mail.
	assert.NotContains(t, mail.enqueued[0].TextBody, internal)
}

func TestApplicationServiceUpdateMailDropReported(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusDocumentsPending))
	mail := &mockMailQueue{accept: false}
	svc := newApplicationService(store, &mockAdmitter{}, mail)

	status := string(models.StatusDocumentsVerified)
	resp, err := svc.Update(context.Background(), "app-1", dto.UpdateApplicationRequest{Status: &status})
	require.NoError(t, err)
	assert.False(t, resp.EmailScheduled)
	require.Len(t, mail.enqueued, 1)
	// The mutation still committed.
	assert.Equal(t, models.StatusDocumentsVerified, store.apps["app-1"].Status)
}

func TestApplicationServiceAdmit(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusPaymentPending))
	admitter := &mockAdmitter{result: &repository.AdmitResult{
		Student: models.Student{
			ID:              "student-1",
			AdmissionNumber: "ADM-2026-1A2B3C",
			RollNumber:      "2026-LKG-A-001",
		},
		ParentID:    "parent-1",
		ParentEmail: "priya@example.com",
		RollNumber:  "2026-LKG-A-001",
	}}
	svc := newApplicationService(store, admitter, &mockMailQueue{accept: true})

	resp, err := svc.Admit(context.Background(), "app-1", dto.AdmitRequest{Section: "A", AcademicYear: "2026-2027"})
	require.NoError(t, err)
	assert.Equal(t, "2026-LKG-A-001", resp.RollNumber)
	assert.Equal(t, "student-1", resp.StudentID)
	assert.Equal(t, "priya@example.com", resp.ParentEmail)
	assert.True(t, strings.HasPrefix(resp.DefaultPassword, "parent"))

	assert.Equal(t, "A", admitter.cmd.Section)
	assert.Equal(t, "2026-2027", admitter.cmd.AcademicYear)
	assert.Equal(t, "hashed:"+resp.DefaultPassword, admitter.cmd.ParentPasswordHash)
	assert.Equal(t, "Admission Confirmed!", admitter.cmd.NotificationTitle)
	require.NotNil(t, admitter.cmd.NotificationMessage)
	message := admitter.cmd.NotificationMessage("2026-LKG-A-001")
	assert.Contains(t, message, "Asha Kumar")
	assert.Contains(t, message, "Roll Number: 2026-LKG-A-001")
}

func TestApplicationServiceAdmitNotificationKeepsLiteralPercent(t *testing.T) {
	app := sampleApplication("app-1", models.StatusPaymentPending)
	app.StudentName = "Asha 100% Ready"
	store := newMockApplicationStore(app)
	admitter := &mockAdmitter{result: &repository.AdmitResult{
		Student:    models.Student{ID: "student-1", RollNumber: "2026-LKG-A-001"},
		RollNumber: "2026-LKG-A-001",
	}}
	svc := newApplicationService(store, admitter, &mockMailQueue{accept: true})

	_, err := svc.Admit(context.Background(), "app-1", dto.AdmitRequest{Section: "A", AcademicYear: "2026-2027"})
	require.NoError(t, err)

	message := admitter.cmd.NotificationMessage("2026-LKG-A-001")
	assert.Equal(t,
		"Congratulations! Asha 100% Ready has been admitted. Roll Number: 2026-LKG-A-001. Login credentials sent to priya@example.com",
		message)
}

func TestApplicationServiceAdmitConflicts(t *testing.T) {
	store := newMockApplicationStore(sampleApplication("app-1", models.StatusAdmitted))
	svc := newApplicationService(store, &mockAdmitter{}, &mockMailQueue{})

	_, err := svc.Admit(context.Background(), "app-1", dto.AdmitRequest{Section: "A", AcademicYear: "2026-2027"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyAdmitted.Code, appErrors.FromError(err).Code)

	// The transaction can also lose the race after the pre-check.
	store2 := newMockApplicationStore(sampleApplication("app-2", models.StatusPaymentPending))
	svc2 := newApplicationService(store2, &mockAdmitter{err: repository.ErrAlreadyAdmitted}, &mockMailQueue{})
	_, err = svc2.Admit(context.Background(), "app-2", dto.AdmitRequest{Section: "A", AcademicYear: "2026-2027"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyAdmitted.Code, appErrors.FromError(err).Code)
}

func TestApplicationServiceListRejectsUnknownStatus(t *testing.T) {
	svc := newApplicationService(newMockApplicationStore(), &mockAdmitter{}, &mockMailQueue{})

	_, _, err := svc.List(context.Background(), dto.ListApplicationsQuery{Status: "approved"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

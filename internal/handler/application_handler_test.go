package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/models"
	"github.com/kidscholars/ksis-api/internal/repository"
	"github.com/kidscholars/ksis-api/internal/service"
	"github.com/kidscholars/ksis-api/pkg/config"
	"github.com/kidscholars/ksis-api/pkg/mailer"
)

type testEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fakeApplicationStore struct {
	apps map[string]*models.Application
}

func (f *fakeApplicationStore) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = "new-app"
	}
	f.apps[app.ID] = app
	return nil
}

func (f *fakeApplicationStore) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if app, ok := f.apps[id]; ok {
		copied := *app
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeApplicationStore) FindByReferenceAndDOB(ctx context.Context, reference, dob string) (*models.Application, error) {
	for _, app := range f.apps {
		if app.ReferenceNumber == reference && app.DateOfBirth == dob {
			copied := *app
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeApplicationStore) FindByTrackingToken(ctx context.Context, token string) (*models.Application, error) {
	for _, app := range f.apps {
		if app.TrackingToken != nil && *app.TrackingToken == token {
			copied := *app
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeApplicationStore) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	var out []models.Application
	for _, app := range f.apps {
		out = append(out, *app)
	}
	return out, len(out), nil
}

func (f *fakeApplicationStore) Update(ctx context.Context, app *models.Application) error {
	if _, ok := f.apps[app.ID]; !ok {
		return sql.ErrNoRows
	}
	copied := *app
	f.apps[app.ID] = &copied
	return nil
}

func (f *fakeApplicationStore) SetTrackingToken(ctx context.Context, id, token string) (string, error) {
	app, ok := f.apps[id]
	if !ok {
		return "", sql.ErrNoRows
	}
	if app.TrackingToken != nil && *app.TrackingToken != "" {
		return *app.TrackingToken, nil
	}
	app.TrackingToken = &token
	return token, nil
}

func (f *fakeApplicationStore) SetDocumentsLink(ctx context.Context, id, link string) error {
	app, ok := f.apps[id]
	if !ok {
		return sql.ErrNoRows
	}
	app.DocumentsLink = &link
	return nil
}

func (f *fakeApplicationStore) SetPaymentReceiptLink(ctx context.Context, id, link string) error {
	app, ok := f.apps[id]
	if !ok {
		return sql.ErrNoRows
	}
	app.PaymentReceiptLink = &link
	return nil
}

type fakeAdmitter struct {
	result *repository.AdmitResult
	err    error
}

func (f *fakeAdmitter) Admit(ctx context.Context, cmd repository.AdmitCommand) (*repository.AdmitResult, error) {
	return f.result, f.err
}

type fakeMailQueue struct{ enqueued int }

func (f *fakeMailQueue) Enqueue(msg mailer.Message) bool {
	f.enqueued++
	return true
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed", nil }

func newApplicationHandlerFixture(apps ...*models.Application) (*ApplicationHandler, *fakeApplicationStore, *fakeMailQueue, *fakeAdmitter) {
	store := &fakeApplicationStore{apps: map[string]*models.Application{}}
	for _, app := range apps {
		store.apps[app.ID] = app
	}
	mail := &fakeMailQueue{}
	admitter := &fakeAdmitter{}
	cfg := config.AppConfig{
		Name:          "Kid Scholars International School",
		Branch:        "Medavakkam, Chennai",
		PublicBaseURL: "https://kidscholars.example.com",
	}
	svc := service.NewApplicationService(store, admitter, mail, fakeHasher{}, nil, cfg, validator.New(), zap.NewNop())
	return NewApplicationHandler(svc), store, mail, admitter
}

func pendingApplication(id string) *models.Application {
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
		Status:           models.StatusEnquiryNew,
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestApplicationHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store, _, _ := newApplicationHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/public/application", `{
		"student_name": "Asha Kumar",
		"gender": "female",
		"date_of_birth": "2021-06-14",
		"applying_for_class": "lkg",
		"source": "social_media",
		"parent_type": "mother",
		"parent_name": "Priya Kumar",
		"mobile": "9876543210",
		"email": "priya@example.com"
	}`)

	handler.Submit(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "enquiry_new", envelope.Data["status"])
	assert.NotEmpty(t, envelope.Data["reference_number"])
	assert.Len(t, store.apps, 1)
}

func TestApplicationHandlerSubmitInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _, _ := newApplicationHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/public/application", `{"student_name":`)

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationHandlerCheckStatusNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _, _ := newApplicationHandlerFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/public/application/status", `{
		"reference_number": "KSIS-2026-FFFFFF",
		"date_of_birth": "2021-06-14"
	}`)

	handler.CheckStatus(c)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var envelope testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestApplicationHandlerTrack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := pendingApplication("app-1")
	token := "tok-1"
	app.TrackingToken = &token
	handler, _, _, _ := newApplicationHandlerFixture(app)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/public/application/track/tok-1", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok-1"}}

	handler.Track(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "KSIS-2026-A1B2C3", envelope.Data["reference_number"])
	// The token itself must never be echoed back.
	assert.NotContains(t, rec.Body.String(), "tok-1")
}

func TestApplicationHandlerUpdateOnHoldWithoutRemarks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, store, mail, _ := newApplicationHandlerFixture(pendingApplication("app-1"))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPatch, "/applications/app-1", `{"status": "on_hold"}`)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.Update(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.StatusEnquiryNew, store.apps["app-1"].Status)
	assert.Zero(t, mail.enqueued)
}

func TestApplicationHandlerUpdateTransitionSchedulesMail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, mail, _ := newApplicationHandlerFixture(pendingApplication("app-1"))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPatch, "/applications/app-1", `{"status": "documents_pending"}`)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.Update(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Data["email_scheduled"])
	assert.Equal(t, 1, mail.enqueued)
}

func TestApplicationHandlerAdmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _, admitter := newApplicationHandlerFixture(pendingApplication("app-1"))
	admitter.result = &repository.AdmitResult{
		Student: models.Student{
			ID:              "student-1",
			AdmissionNumber: "ADM-2026-1A2B3C",
			RollNumber:      "2026-LKG-A-001",
		},
		ParentEmail: "priya@example.com",
		RollNumber:  "2026-LKG-A-001",
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/applications/app-1/admit", `{"section": "A", "academic_year": "2026-2027"}`)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.Admit(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var envelope testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "2026-LKG-A-001", envelope.Data["roll_number"])
	assert.NotEmpty(t, envelope.Data["parent_default_password"])
}

func TestApplicationHandlerAdmitConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app := pendingApplication("app-1")
	app.Status = models.StatusAdmitted
	handler, _, _, _ := newApplicationHandlerFixture(app)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = jsonRequest(http.MethodPost, "/applications/app-1/admit", `{"section": "A", "academic_year": "2026-2027"}`)
	c.Params = gin.Params{{Key: "id", Value: "app-1"}}

	handler.Admit(c)

	require.Equal(t, http.StatusConflict, rec.Code)
	var envelope testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "ALREADY_ADMITTED", envelope.Error.Code)
}

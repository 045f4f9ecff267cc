package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/payments"
)

type mockFeeStore struct {
	structures map[string]*models.FeeStructure
	payments   map[string]*models.FeePayment
	nextID     int
}

func newMockFeeStore() *mockFeeStore {
	return &mockFeeStore{
		structures: map[string]*models.FeeStructure{},
		payments:   map[string]*models.FeePayment{},
	}
}

func structureKey(standard models.Standard, year string) string {
	return string(standard) + "/" + year
}

func (m *mockFeeStore) UpsertStructure(ctx context.Context, fs *models.FeeStructure) error {
	copied := *fs
	m.structures[structureKey(fs.Standard, fs.AcademicYear)] = &copied
	return nil
}

func (m *mockFeeStore) FindStructure(ctx context.Context, standard models.Standard, academicYear string) (*models.FeeStructure, error) {
	if fs, ok := m.structures[structureKey(standard, academicYear)]; ok {
		copied := *fs
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeStore) ListStructures(ctx context.Context, academicYear string) ([]models.FeeStructure, error) {
	var out []models.FeeStructure
	for _, fs := range m.structures {
		if fs.AcademicYear == academicYear {
			out = append(out, *fs)
		}
	}
	return out, nil
}

func (m *mockFeeStore) CreatePayment(ctx context.Context, p *models.FeePayment) error {
	m.nextID++
	p.ID = fmt.Sprintf("payment-%03d", m.nextID)
	copied := *p
	m.payments[p.ID] = &copied
	return nil
}

func (m *mockFeeStore) FindPaymentByOrderID(ctx context.Context, orderID string) (*models.FeePayment, error) {
	for _, p := range m.payments {
		if p.RazorpayOrderID != nil && *p.RazorpayOrderID == orderID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockFeeStore) MarkPaymentSettled(ctx context.Context, id, razorpayPaymentID, receiptNumber string, paidAt time.Time) error {
	p, ok := m.payments[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.PaymentStatus = models.PaymentPaid
	p.RazorpayPaymentID = &razorpayPaymentID
	p.ReceiptNumber = &receiptNumber
	p.PaymentDate = &paidAt
	return nil
}

func (m *mockFeeStore) MarkPaymentFailed(ctx context.Context, id string) error {
	p, ok := m.payments[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.PaymentStatus = models.PaymentFailed
	return nil
}

func (m *mockFeeStore) PaymentsForStudent(ctx context.Context, studentID string) ([]models.FeePayment, error) {
	var out []models.FeePayment
	for _, p := range m.payments {
		if p.StudentID == studentID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockFeeStore) TotalPaid(ctx context.Context, studentID string) (int, error) {
	total := 0
	for _, p := range m.payments {
		if p.StudentID == studentID && p.PaymentStatus == models.PaymentPaid {
			total += p.Amount
		}
	}
	return total, nil
}

type mockGateway struct {
	orderID      string
	orderErr     error
	validTriples map[string]bool
	lastAmount   int
}

func (g *mockGateway) CreateOrder(amount int, currency, receipt string) (string, error) {
	g.lastAmount = amount
	if g.orderErr != nil {
		return "", g.orderErr
	}
	return g.orderID, nil
}

func (g *mockGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return g.validTriples[orderID+"/"+paymentID+"/"+signature]
}

func (g *mockGateway) KeyID() string { return "rzp_test_key" }

func newFeeFixture(gw *mockGateway) (*FeeService, *mockFeeStore, *mockStudentStore) {
	students := newMockStudentStore(cohortStudent(studentOneID, "2026-LKG-A-001", "parent-1"))
	fees := newMockFeeStore()
	// Keep the interface nil when no gateway is configured; a typed nil
	// would defeat the service's nil check.
	var gateway payments.Gateway
	if gw != nil {
		gateway = gw
	}
	svc := NewFeeService(fees, students, gateway, validator.New(), zap.NewNop())
	return svc, fees, students
}

func TestFeeServiceUpsertAndSummary(t *testing.T) {
	svc, _, _ := newFeeFixture(nil)

	_, err := svc.UpsertStructure(context.Background(), dto.UpsertFeeStructureRequest{
		Standard:     "lkg",
		AdmissionFee: 10000,
		TuitionFee:   30000,
		BooksFee:     3000,
		UniformFee:   2000,
		TransportFee: 5000,
		AcademicYear: "2026-2027",
	})
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		StudentID:   studentOneID,
		Amount:      15000,
		PaymentMode: "cash",
	})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), studentOneID, nil)
	require.NoError(t, err)
	assert.Equal(t, 50000, summary.TotalDue)
	assert.Equal(t, 15000, summary.TotalPaid)
	assert.Equal(t, 35000, summary.Balance)
	assert.Equal(t, "2026-2027", summary.AcademicYear)
}

func TestFeeServiceSummaryWithoutStructure(t *testing.T) {
	svc, _, _ := newFeeFixture(nil)

	summary, err := svc.Summary(context.Background(), studentOneID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalDue)
	assert.Equal(t, 0, summary.Balance)
}

func TestFeeServiceRecordPaymentIssuesReceipt(t *testing.T) {
	svc, fees, _ := newFeeFixture(nil)

	payment, err := svc.RecordPayment(context.Background(), dto.RecordPaymentRequest{
		StudentID:   studentOneID,
		Amount:      5000,
		PaymentMode: "upi",
	})
	require.NoError(t, err)
	require.NotNil(t, payment.ReceiptNumber)
	assert.True(t, strings.HasPrefix(*payment.ReceiptNumber, "RCPT-"))
	assert.Equal(t, models.PaymentPaid, payment.PaymentStatus)
	require.NotNil(t, payment.PaymentDate)
	assert.Len(t, fees.payments, 1)
}

func TestFeeServiceCreateOrderWithoutGateway(t *testing.T) {
	svc, _, _ := newFeeFixture(nil)

	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		StudentID: studentOneID,
		Amount:    5000,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrGatewayUnavailable.Code, appErrors.FromError(err).Code)
}

func TestFeeServiceCreateOrderConvertsToPaise(t *testing.T) {
	gw := &mockGateway{orderID: "order_abc"}
	svc, fees, _ := newFeeFixture(gw)

	resp, err := svc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		StudentID: studentOneID,
		Amount:    5000,
	})
	require.NoError(t, err)
	assert.Equal(t, 500000, gw.lastAmount)
	assert.Equal(t, "order_abc", resp.OrderID)
	assert.Equal(t, "rzp_test_key", resp.KeyID)
	assert.Equal(t, "INR", resp.Currency)

	pending, err := fees.FindPaymentByOrderID(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, pending.PaymentStatus)
	assert.Equal(t, models.PaymentModeOnline, pending.PaymentMode)
}

func TestFeeServiceVerifyPayment(t *testing.T) {
	gw := &mockGateway{
		orderID:      "order_abc",
		validTriples: map[string]bool{"order_abc/pay_1/sig-good": true},
	}
	svc, fees, _ := newFeeFixture(gw)

	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		StudentID: studentOneID,
		Amount:    5000,
	})
	require.NoError(t, err)

	resp, err := svc.VerifyPayment(context.Background(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig-good",
	})
	require.NoError(t, err)
	assert.Equal(t, string(models.PaymentPaid), resp.Status)
	assert.True(t, strings.HasPrefix(resp.ReceiptNumber, "RCPT-"))

	settled, err := fees.FindPaymentByOrderID(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, settled.PaymentStatus)

	// A second callback for the settled order is a conflict.
	_, err = svc.VerifyPayment(context.Background(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig-good",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestFeeServiceVerifyPaymentBadSignature(t *testing.T) {
	gw := &mockGateway{orderID: "order_abc", validTriples: map[string]bool{}}
	svc, fees, _ := newFeeFixture(gw)

	_, err := svc.CreateOrder(context.Background(), dto.CreateOrderRequest{
		StudentID: studentOneID,
		Amount:    5000,
	})
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig-forged",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	failed, err := fees.FindPaymentByOrderID(context.Background(), "order_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, failed.PaymentStatus)
}

func TestFeeServiceVerifyPaymentUnknownOrder(t *testing.T) {
	gw := &mockGateway{orderID: "order_abc"}
	svc, _, _ := newFeeFixture(gw)

	_, err := svc.VerifyPayment(context.Background(), dto.VerifyPaymentRequest{
		RazorpayOrderID:   "order_missing",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: "sig",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestFeeServicePaymentsParentScope(t *testing.T) {
	svc, _, _ := newFeeFixture(nil)

	_, err := svc.PaymentsForStudent(context.Background(), studentOneID, &models.JWTClaims{UserID: "parent-1", Role: models.RoleParent})
	require.NoError(t, err)

	_, err = svc.PaymentsForStudent(context.Background(), studentOneID, &models.JWTClaims{UserID: "parent-2", Role: models.RoleParent})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kidscholars/ksis-api/internal/dto"
	"github.com/kidscholars/ksis-api/internal/models"
	appErrors "github.com/kidscholars/ksis-api/pkg/errors"
	"github.com/kidscholars/ksis-api/pkg/payments"
)

// FeeStore abstracts persistence for fee structures and payments.
type FeeStore interface {
	UpsertStructure(ctx context.Context, fs *models.FeeStructure) error
	FindStructure(ctx context.Context, standard models.Standard, academicYear string) (*models.FeeStructure, error)
	ListStructures(ctx context.Context, academicYear string) ([]models.FeeStructure, error)
	CreatePayment(ctx context.Context, p *models.FeePayment) error
	FindPaymentByOrderID(ctx context.Context, orderID string) (*models.FeePayment, error)
	MarkPaymentSettled(ctx context.Context, id, razorpayPaymentID, receiptNumber string, paidAt time.Time) error
	MarkPaymentFailed(ctx context.Context, id string) error
	PaymentsForStudent(ctx context.Context, studentID string) ([]models.FeePayment, error)
	TotalPaid(ctx context.Context, studentID string) (int, error)
}

// FeeService handles fee schedules, offline payments and the online
// payment order/verify flow.
type FeeService struct {
	fees     FeeStore
	students StudentStore
	gateway  payments.Gateway
	validate *validator.Validate
	logger   *zap.Logger
}

// NewFeeService constructs a FeeService. The gateway may be nil when no
// credentials are configured; online payments then fail with a typed
// gateway-unavailable error while offline recording keeps working.
func NewFeeService(fees FeeStore, students StudentStore, gateway payments.Gateway, validate *validator.Validate, logger *zap.Logger) *FeeService {
	return &FeeService{fees: fees, students: students, gateway: gateway, validate: validate, logger: logger}
}

// UpsertStructure sets the fee schedule for one standard and year.
func (s *FeeService) UpsertStructure(ctx context.Context, req dto.UpsertFeeStructureRequest) (*models.FeeStructure, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee structure payload")
	}
	fs := &models.FeeStructure{
		Standard:     models.Standard(req.Standard),
		AdmissionFee: req.AdmissionFee,
		TuitionFee:   req.TuitionFee,
		BooksFee:     req.BooksFee,
		UniformFee:   req.UniformFee,
		TransportFee: req.TransportFee,
		AcademicYear: req.AcademicYear,
	}
	if err := s.fees.UpsertStructure(ctx, fs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "save fee structure")
	}
	return fs, nil
}

// ListStructures returns the fee schedules for an academic year.
func (s *FeeService) ListStructures(ctx context.Context, academicYear string) ([]models.FeeStructure, error) {
	structures, err := s.fees.ListStructures(ctx, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list fee structures")
	}
	return structures, nil
}

// RecordPayment records an offline payment (cash, UPI, bank transfer)
// as settled with a receipt number.
func (s *FeeService) RecordPayment(ctx context.Context, req dto.RecordPaymentRequest) (*models.FeePayment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, notFoundOr(err, "student not found")
	}

	now := time.Now().UTC()
	receipt := models.NewReceiptNumber()
	payment := &models.FeePayment{
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		PaymentMode:   models.PaymentMode(req.PaymentMode),
		PaymentStatus: models.PaymentPaid,
		ReceiptNumber: &receipt,
		PaymentDate:   &now,
		Remarks:       req.Remarks,
	}
	if err := s.fees.CreatePayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "record payment")
	}
	return payment, nil
}

// CreateOrder opens a gateway order for an online payment and records
// the pending attempt.
func (s *FeeService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid order payload")
	}
	if s.gateway == nil {
		return nil, appErrors.ErrGatewayUnavailable
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, notFoundOr(err, "student not found")
	}

	receipt := models.NewReceiptNumber()
	// Razorpay amounts are in paise.
	orderID, err := s.gateway.CreateOrder(req.Amount*100, "INR", receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGatewayUnavailable.Code, appErrors.ErrGatewayUnavailable.Status, "create payment order")
	}

	payment := &models.FeePayment{
		StudentID:       req.StudentID,
		Amount:          req.Amount,
		PaymentMode:     models.PaymentModeOnline,
		PaymentStatus:   models.PaymentPending,
		RazorpayOrderID: &orderID,
	}
	if err := s.fees.CreatePayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "record pending payment")
	}

	return &dto.CreateOrderResponse{
		PaymentID: payment.ID,
		OrderID:   orderID,
		Amount:    req.Amount,
		Currency:  "INR",
		KeyID:     s.gateway.KeyID(),
	}, nil
}

// VerifyPayment validates the gateway callback signature and settles
// the pending payment.
func (s *FeeService) VerifyPayment(ctx context.Context, req dto.VerifyPaymentRequest) (*dto.VerifyPaymentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}
	if s.gateway == nil {
		return nil, appErrors.ErrGatewayUnavailable
	}

	payment, err := s.fees.FindPaymentByOrderID(ctx, req.RazorpayOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lookup payment")
	}
	if payment.PaymentStatus == models.PaymentPaid {
		return nil, appErrors.Clone(appErrors.ErrConflict, "payment already verified")
	}

	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		if err := s.fees.MarkPaymentFailed(ctx, payment.ID); err != nil {
			s.logger.Warn("mark payment failed", zap.String("payment_id", payment.ID), zap.Error(err))
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, "payment signature verification failed")
	}

	receipt := models.NewReceiptNumber()
	if err := s.fees.MarkPaymentSettled(ctx, payment.ID, req.RazorpayPaymentID, receipt, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "settle payment")
	}

	return &dto.VerifyPaymentResponse{
		PaymentID:     payment.ID,
		ReceiptNumber: receipt,
		Status:        string(models.PaymentPaid),
	}, nil
}

// PaymentsForStudent returns a student's payment history.
func (s *FeeService) PaymentsForStudent(ctx context.Context, studentID string, claims *models.JWTClaims) ([]models.FeePayment, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, notFoundOr(err, "student not found")
	}
	if claims != nil && claims.Role == models.RoleParent && student.ParentID != claims.UserID {
		return nil, appErrors.ErrForbidden
	}
	payments, err := s.fees.PaymentsForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list payments")
	}
	return payments, nil
}

// Summary reports a student's dues against the fee structure.
func (s *FeeService) Summary(ctx context.Context, studentID string, claims *models.JWTClaims) (*dto.FeeSummary, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, notFoundOr(err, "student not found")
	}
	if claims != nil && claims.Role == models.RoleParent && student.ParentID != claims.UserID {
		return nil, appErrors.ErrForbidden
	}

	totalDue := 0
	fs, err := s.fees.FindStructure(ctx, student.CurrentClass, student.AcademicYear)
	if err == nil {
		totalDue = fs.AdmissionFee + fs.TuitionFee + fs.BooksFee + fs.UniformFee + fs.TransportFee
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "lookup fee structure")
	}

	totalPaid, err := s.fees.TotalPaid(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sum payments")
	}

	return &dto.FeeSummary{
		StudentID:    studentID,
		TotalDue:     totalDue,
		TotalPaid:    totalPaid,
		Balance:      totalDue - totalPaid,
		AcademicYear: student.AcademicYear,
	}, nil
}

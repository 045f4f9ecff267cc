package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kidscholars/ksis-api/internal/models"
)

// FeeRepository manages persistence for fee structures and payments.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

const feeStructureColumns = `id, standard, admission_fee, tuition_fee, books_fee, uniform_fee,
        transport_fee, academic_year, created_at`

const feePaymentColumns = `id, student_id, amount, payment_mode, payment_status, razorpay_order_id,
        razorpay_payment_id, receipt_number, payment_date, remarks, created_at`

// UpsertStructure creates or replaces the fee schedule for one standard
// in one academic year.
func (r *FeeRepository) UpsertStructure(ctx context.Context, fs *models.FeeStructure) error {
	if fs.ID == "" {
		fs.ID = uuid.NewString()
	}
	fs.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO fee_structures (id, standard, admission_fee, tuition_fee, books_fee,
        uniform_fee, transport_fee, academic_year, created_at)
        VALUES (:id, :standard, :admission_fee, :tuition_fee, :books_fee,
        :uniform_fee, :transport_fee, :academic_year, :created_at)
        ON CONFLICT (standard, academic_year)
        DO UPDATE SET admission_fee = EXCLUDED.admission_fee, tuition_fee = EXCLUDED.tuition_fee,
        books_fee = EXCLUDED.books_fee, uniform_fee = EXCLUDED.uniform_fee,
        transport_fee = EXCLUDED.transport_fee`
	if _, err := r.db.NamedExecContext(ctx, query, fs); err != nil {
		return fmt.Errorf("upsert fee structure: %w", err)
	}
	return nil
}

// FindStructure returns the fee schedule for one standard and year.
func (r *FeeRepository) FindStructure(ctx context.Context, standard models.Standard, academicYear string) (*models.FeeStructure, error) {
	query := fmt.Sprintf("SELECT %s FROM fee_structures WHERE standard = $1 AND academic_year = $2", feeStructureColumns)
	var fs models.FeeStructure
	if err := r.db.GetContext(ctx, &fs, query, standard, academicYear); err != nil {
		return nil, err
	}
	return &fs, nil
}

// ListStructures returns every fee schedule for an academic year.
func (r *FeeRepository) ListStructures(ctx context.Context, academicYear string) ([]models.FeeStructure, error) {
	query := fmt.Sprintf("SELECT %s FROM fee_structures WHERE academic_year = $1 ORDER BY standard", feeStructureColumns)
	var structures []models.FeeStructure
	if err := r.db.SelectContext(ctx, &structures, query, academicYear); err != nil {
		return nil, fmt.Errorf("list fee structures: %w", err)
	}
	return structures, nil
}

// CreatePayment inserts a payment record.
func (r *FeeRepository) CreatePayment(ctx context.Context, p *models.FeePayment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO fee_payments (id, student_id, amount, payment_mode, payment_status,
        razorpay_order_id, razorpay_payment_id, receipt_number, payment_date, remarks, created_at)
        VALUES (:id, :student_id, :amount, :payment_mode, :payment_status,
        :razorpay_order_id, :razorpay_payment_id, :receipt_number, :payment_date, :remarks, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create fee payment: %w", err)
	}
	return nil
}

// FindPaymentByID fetches one payment record.
func (r *FeeRepository) FindPaymentByID(ctx context.Context, id string) (*models.FeePayment, error) {
	query := fmt.Sprintf("SELECT %s FROM fee_payments WHERE id = $1", feePaymentColumns)
	var p models.FeePayment
	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPaymentByOrderID fetches the payment created for a gateway order.
func (r *FeeRepository) FindPaymentByOrderID(ctx context.Context, orderID string) (*models.FeePayment, error) {
	query := fmt.Sprintf("SELECT %s FROM fee_payments WHERE razorpay_order_id = $1", feePaymentColumns)
	var p models.FeePayment
	if err := r.db.GetContext(ctx, &p, query, orderID); err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkPaymentSettled records a successful gateway capture.
func (r *FeeRepository) MarkPaymentSettled(ctx context.Context, id, razorpayPaymentID, receiptNumber string, paidAt time.Time) error {
	const query = `UPDATE fee_payments SET payment_status = $2, razorpay_payment_id = $3,
        receipt_number = $4, payment_date = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, models.PaymentPaid, razorpayPaymentID, receiptNumber, paidAt)
	if err != nil {
		return fmt.Errorf("settle fee payment: %w", err)
	}
	return requireRow(res)
}

// MarkPaymentFailed records a failed gateway attempt.
func (r *FeeRepository) MarkPaymentFailed(ctx context.Context, id string) error {
	const query = `UPDATE fee_payments SET payment_status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, models.PaymentFailed)
	if err != nil {
		return fmt.Errorf("fail fee payment: %w", err)
	}
	return requireRow(res)
}

// PaymentsForStudent returns a student's payment history, newest first.
func (r *FeeRepository) PaymentsForStudent(ctx context.Context, studentID string) ([]models.FeePayment, error) {
	query := fmt.Sprintf("SELECT %s FROM fee_payments WHERE student_id = $1 ORDER BY created_at DESC", feePaymentColumns)
	var payments []models.FeePayment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("payments for student: %w", err)
	}
	return payments, nil
}

// TotalPaid sums a student's settled payments.
func (r *FeeRepository) TotalPaid(ctx context.Context, studentID string) (int, error) {
	var total int
	const query = `SELECT COALESCE(SUM(amount), 0) FROM fee_payments WHERE student_id = $1 AND payment_status = $2`
	if err := r.db.GetContext(ctx, &total, query, studentID, models.PaymentPaid); err != nil {
		return 0, fmt.Errorf("total paid: %w", err)
	}
	return total, nil
}

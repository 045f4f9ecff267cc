package models

import "time"

// PaymentStatus tracks the settlement state of one fee payment.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPaid          PaymentStatus = "paid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentFailed        PaymentStatus = "failed"
	PaymentOverdue       PaymentStatus = "overdue"
)

// PaymentMode records how the money arrived.
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeOnline       PaymentMode = "online"
)

// FeeStructure defines the fee schedule for one standard in one academic year.
// Amounts are whole rupees.
type FeeStructure struct {
	ID           string    `db:"id" json:"id"`
	Standard     Standard  `db:"standard" json:"standard"`
	AdmissionFee int       `db:"admission_fee" json:"admission_fee"`
	TuitionFee   int       `db:"tuition_fee" json:"tuition_fee"`
	BooksFee     int       `db:"books_fee" json:"books_fee"`
	UniformFee   int       `db:"uniform_fee" json:"uniform_fee"`
	TransportFee int       `db:"transport_fee" json:"transport_fee"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// FeePayment is one payment attempt against a student's fees.
type FeePayment struct {
	ID                string        `db:"id" json:"id"`
	StudentID         string        `db:"student_id" json:"student_id"`
	Amount            int           `db:"amount" json:"amount"`
	PaymentMode       PaymentMode   `db:"payment_mode" json:"payment_mode"`
	PaymentStatus     PaymentStatus `db:"payment_status" json:"payment_status"`
	RazorpayOrderID   *string       `db:"razorpay_order_id" json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID *string       `db:"razorpay_payment_id" json:"razorpay_payment_id,omitempty"`
	ReceiptNumber     *string       `db:"receipt_number" json:"receipt_number,omitempty"`
	PaymentDate       *time.Time    `db:"payment_date" json:"payment_date,omitempty"`
	Remarks           *string       `db:"remarks" json:"remarks,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
}

package dto

// UpsertFeeStructureRequest sets the fee schedule for one standard/year.
type UpsertFeeStructureRequest struct {
	Standard     string `json:"standard" validate:"required,oneof=play_group pre_kg lkg ukg"`
	AdmissionFee int    `json:"admission_fee" validate:"min=0"`
	TuitionFee   int    `json:"tuition_fee" validate:"min=0"`
	BooksFee     int    `json:"books_fee" validate:"min=0"`
	UniformFee   int    `json:"uniform_fee" validate:"min=0"`
	TransportFee int    `json:"transport_fee" validate:"min=0"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// RecordPaymentRequest records an offline (cash/UPI/bank) payment.
type RecordPaymentRequest struct {
	StudentID   string  `json:"student_id" validate:"required,uuid"`
	Amount      int     `json:"amount" validate:"required,gt=0"`
	PaymentMode string  `json:"payment_mode" validate:"required,oneof=cash upi bank_transfer"`
	Remarks     *string `json:"remarks" validate:"omitempty,max=500"`
}

// CreateOrderRequest opens a gateway order for an online payment.
type CreateOrderRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	Amount    int    `json:"amount" validate:"required,gt=0"`
}

// CreateOrderResponse returns the gateway order handle the client needs
// to open the checkout widget.
type CreateOrderResponse struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Amount    int    `json:"amount"`
	Currency  string `json:"currency"`
	KeyID     string `json:"key_id"`
}

// VerifyPaymentRequest carries the gateway callback triple for
// signature verification.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// VerifyPaymentResponse acknowledges a settled payment.
type VerifyPaymentResponse struct {
	PaymentID     string `json:"payment_id"`
	ReceiptNumber string `json:"receipt_number"`
	Status        string `json:"status"`
}

// FeeSummary reports a student's dues against the fee structure.
type FeeSummary struct {
	StudentID    string `json:"student_id"`
	TotalDue     int    `json:"total_due"`
	TotalPaid    int    `json:"total_paid"`
	Balance      int    `json:"balance"`
	AcademicYear string `json:"academic_year"`
}

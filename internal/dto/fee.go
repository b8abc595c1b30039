package dto

// CreateFeeRequest describes payload for creating a fee record.
type CreateFeeRequest struct {
	StudentID    string  `json:"student_id" validate:"required"`
	StudentName  string  `json:"student_name" validate:"required"`
	StudentClass string  `json:"student_class" validate:"required"`
	FeeType      string  `json:"fee_type" validate:"required"`
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	DueDate      string  `json:"due_date" validate:"required"`
}

// UpdateFeeRequest carries mutable fee attributes. A changed amount
// triggers recomputation of the remaining balance and status.
type UpdateFeeRequest struct {
	FeeType *string  `json:"fee_type,omitempty"`
	Amount  *float64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	DueDate *string  `json:"due_date,omitempty"`
}

// RecordPaymentRequest describes a manual (in-app) payment entry made
// out-of-band, e.g. a bank transfer reference typed in by the payer.
type RecordPaymentRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	TransactionID string  `json:"transaction_id" validate:"required"`
	PaidBy        string  `json:"paid_by"`
}

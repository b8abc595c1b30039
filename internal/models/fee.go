package models

import (
	"errors"
	"time"
)

// ErrBalanceExceeded reports a payment that would push paidAmount past
// the fee amount.
var ErrBalanceExceeded = errors.New("payment exceeds the remaining balance")

// FeeStatus tracks how much of a fee obligation has been settled.
type FeeStatus string

const (
	FeeStatusPending FeeStatus = "Pending"
	FeeStatusPartial FeeStatus = "Partial"
	FeeStatusPaid    FeeStatus = "Paid"
)

// Fee is a billable obligation tied to a student with running balances.
// Balances change only by appending payment entries; fee rows are never
// mutated by payments directly.
type Fee struct {
	ID              string    `db:"id" json:"id"`
	StudentID       string    `db:"student_id" json:"student_id"`
	StudentName     string    `db:"student_name" json:"student_name"`
	StudentClass    string    `db:"student_class" json:"student_class"`
	FeeType         string    `db:"fee_type" json:"fee_type"`
	Amount          float64   `db:"amount" json:"amount"`
	PaidAmount      float64   `db:"paid_amount" json:"paid_amount"`
	RemainingAmount float64   `db:"remaining_amount" json:"remaining_amount"`
	Status          FeeStatus `db:"status" json:"status"`
	DueDate         time.Time `db:"due_date" json:"due_date"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	Payments []PaymentEntry `db:"-" json:"payments"`
}

// PaymentEntry records one settled payment against a fee.
type PaymentEntry struct {
	ID            string    `db:"id" json:"id"`
	FeeID         string    `db:"fee_id" json:"fee_id"`
	Amount        float64   `db:"amount" json:"amount"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	TransactionID string    `db:"transaction_id" json:"transaction_id"`
	PaidBy        string    `db:"paid_by" json:"paid_by"`
	PaymentDate   time.Time `db:"payment_date" json:"payment_date"`
}

// FeeFilter encapsulates allowed search parameters for listing fees.
type FeeFilter struct {
	StudentID string
	Status    FeeStatus
	Page      int
	PageSize  int
}

// FeeStats aggregates collection figures across all fees.
type FeeStats struct {
	TotalFees       int     `db:"total_fees" json:"total_fees"`
	PaidFees        int     `db:"paid_fees" json:"paid_fees"`
	PartialFees     int     `db:"partial_fees" json:"partial_fees"`
	PendingFees     int     `db:"pending_fees" json:"pending_fees"`
	TotalAmount     float64 `db:"total_amount" json:"total_amount"`
	PaidAmount      float64 `db:"paid_amount" json:"paid_amount"`
	RemainingAmount float64 `db:"remaining_amount" json:"remaining_amount"`
	CollectionRate  int     `json:"collection_rate"`
}

// StatusFor derives the fee status from amounts. Paid wins whenever the
// balance is fully covered, Partial whenever anything has been paid.
func StatusFor(amount, paid float64) FeeStatus {
	switch {
	case paid >= amount:
		return FeeStatusPaid
	case paid > 0:
		return FeeStatusPartial
	default:
		return FeeStatusPending
	}
}

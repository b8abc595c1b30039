package models

import "time"

// Checkout session payment states as reported by the gateway.
const (
	SessionStatusPaid   = "paid"
	SessionStatusUnpaid = "unpaid"
)

// PaymentMethodCheckout is stamped on entries settled through the
// hosted checkout; manual entries carry whatever the payer typed in
// (UPI, Bank Transfer, Cash).
const PaymentMethodCheckout = "Stripe (Card)"

// CheckoutSession is the gateway's view of a hosted payment page.
// AmountTotal is in minor units (paise for INR).
type CheckoutSession struct {
	ID            string            `json:"id"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

// PendingPayment marks an in-flight hosted checkout awaiting the
// redirect back. Written at initiation, consumed exactly once on
// successful reconciliation, expired if the payer never returns.
type PendingPayment struct {
	FeeID     string    `json:"fee_id"`
	Amount    float64   `json:"amount"`
	SessionID string    `json:"session_id"`
	PaidBy    string    `json:"paid_by"`
	CreatedAt time.Time `json:"created_at"`
}

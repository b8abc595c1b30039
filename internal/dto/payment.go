package dto

// InitiateCheckoutRequest starts a hosted checkout for a fee.
type InitiateCheckoutRequest struct {
	FeeID  string  `json:"fee_id" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	PaidBy string  `json:"paid_by"`
}

// InitiateCheckoutResponse carries the redirect target for the payer.
type InitiateCheckoutResponse struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CompleteCheckoutRequest finishes a checkout after the redirect back.
type CompleteCheckoutRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// ReconciliationResult reports what a redirect completion did.
type ReconciliationResult struct {
	SessionID        string  `json:"session_id"`
	FeeID            string  `json:"fee_id,omitempty"`
	Amount           float64 `json:"amount,omitempty"`
	AlreadyProcessed bool    `json:"already_processed"`
	Message          string  `json:"message"`
}

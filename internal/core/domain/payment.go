package domain

import "time"

// PaymentMethod identifies how a tenant pays for a booking.
type PaymentMethod string

const (
	PaymentMTNMoMo      PaymentMethod = "mtn_momo"
	PaymentAirtelMoney  PaymentMethod = "airtel_money"
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
)

// RequiresPhone reports whether the method prompts a mobile wallet.
func (m PaymentMethod) RequiresPhone() bool {
	return m == PaymentMTNMoMo || m == PaymentAirtelMoney
}

// PaymentStep is the state of a single payment attempt.
type PaymentStep string

const (
	PaymentProcessing PaymentStep = "processing"
	PaymentSucceeded  PaymentStep = "success"
	PaymentFailed     PaymentStep = "error"
)

// PaymentAttempt is one run of the payment sequence for a draft.
type PaymentAttempt struct {
	Method        PaymentMethod `json:"method"`
	Amount        float64       `json:"amount"`
	Phone         string        `json:"phone,omitempty"`
	Step          PaymentStep   `json:"step"`
	Messages      []string      `json:"messages,omitempty"`
	TransactionID string        `json:"transaction_id,omitempty"`
	Error         string        `json:"error,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type openDraftRequest struct {
	PropertyID   string `json:"property_id"   validate:"required"`
	PriceDisplay string `json:"price_display"`
}

type setDatesRequest struct {
	CheckIn  string `json:"check_in"  validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type selectPaymentRequest struct {
	Method string `json:"method" validate:"required,oneof=mtn_momo airtel_money card bank_transfer cash"`
}

type confirmRequest struct {
	Phone string `json:"phone" validate:"omitempty,e164"`
}

// --- Response types ---

type contactResponse struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

type paymentResponse struct {
	Method        string     `json:"method"`
	Amount        float64    `json:"amount"`
	Step          string     `json:"step"`
	Messages      []string   `json:"messages"`
	TransactionID string     `json:"transaction_id,omitempty"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

type draftLinks struct {
	Self    string `json:"self"`
	Advance string `json:"advance"`
	Back    string `json:"back"`
	Confirm string `json:"confirm"`
}

type draftResponse struct {
	ID            string           `json:"id"`
	PropertyID    string           `json:"property_id"`
	Step          int              `json:"step"`
	StepName      string           `json:"step_name"`
	CheckIn       string           `json:"check_in,omitempty"`
	CheckOut      string           `json:"check_out,omitempty"`
	StayDays      int              `json:"stay_days"`
	MonthlyRate   float64          `json:"monthly_rate"`
	TotalCost     float64          `json:"total_cost"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Contact       contactResponse  `json:"contact"`
	Payment       *paymentResponse `json:"payment,omitempty"`
	Reference     string           `json:"reference,omitempty"`
	BookingID     string           `json:"booking_id,omitempty"`
	ConfirmedAt   *time.Time       `json:"confirmed_at,omitempty"`
	Links         draftLinks       `json:"_links"`
}

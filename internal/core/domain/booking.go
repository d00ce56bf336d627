package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BookingStep is the position of a draft in the booking workflow.
type BookingStep int

const (
	StepSelectDates BookingStep = iota
	StepSelectPayment
	StepConfirm
	StepSuccess
)

var stepNames = map[BookingStep]string{
	StepSelectDates:   "select_dates",
	StepSelectPayment: "select_payment",
	StepConfirm:       "confirm",
	StepSuccess:       "success",
}

func (s BookingStep) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

const (
	// DefaultMonthlyRate is used when a listing price cannot be parsed.
	DefaultMonthlyRate = 500000
	daysPerMonth       = 30
	DateLayout         = "2006-01-02"
)

// BookingDraft is the transient state collected while a tenant walks
// through the booking workflow. It is never written to the backend; only
// the Booking created after payment success is.
type BookingDraft struct {
	ID            string          `json:"id"`
	IdentityID    string          `json:"identity_id"`
	PropertyID    string          `json:"property_id"`
	PriceDisplay  string          `json:"price_display"`
	MonthlyRate   float64         `json:"monthly_rate"`
	Step          BookingStep     `json:"step"`
	CheckIn       *time.Time      `json:"check_in,omitempty"`
	CheckOut      *time.Time      `json:"check_out,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	Contact       TenantProfile   `json:"contact"`
	Payment       *PaymentAttempt `json:"payment,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	BookingID     string          `json:"booking_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewBookingDraft returns a draft in its initial state: step 0, no dates and
// no payment method.
func NewBookingDraft(id, identityID, propertyID, priceDisplay string, fallbackRate float64, contact TenantProfile, now time.Time) *BookingDraft {
	return &BookingDraft{
		ID:           id,
		IdentityID:   identityID,
		PropertyID:   propertyID,
		PriceDisplay: priceDisplay,
		MonthlyRate:  ParseMonthlyRate(priceDisplay, fallbackRate),
		Step:         StepSelectDates,
		Contact:      contact,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetDates records the stay. Ordering is checked when advancing so the
// tenant can correct either date first.
func (d *BookingDraft) SetDates(checkIn, checkOut time.Time, now time.Time) error {
	if d.Step != StepSelectDates {
		return ErrInvalidStep
	}
	in, out := truncateDay(checkIn), truncateDay(checkOut)
	d.CheckIn, d.CheckOut = &in, &out
	d.UpdatedAt = now
	return nil
}

// SelectPaymentMethod records the chosen method.
func (d *BookingDraft) SelectPaymentMethod(m PaymentMethod, now time.Time) error {
	if d.Step != StepSelectPayment {
		return ErrInvalidStep
	}
	if m == "" {
		return ErrPaymentMethodRequired
	}
	d.PaymentMethod = m
	d.UpdatedAt = now
	return nil
}

// Advance moves one step forward if the current step is complete.
func (d *BookingDraft) Advance(now time.Time) error {
	if d.InFlight() {
		return ErrPaymentInFlight
	}
	switch d.Step {
	case StepSelectDates:
		if d.CheckIn == nil || d.CheckOut == nil {
			return ErrDatesRequired
		}
		if !d.CheckOut.After(*d.CheckIn) {
			return ErrCheckOutNotAfter
		}
	case StepSelectPayment:
		if d.PaymentMethod == "" {
			return ErrPaymentMethodRequired
		}
	case StepConfirm:
		return ErrConfirmRequired
	default:
		return ErrInvalidStep
	}
	d.Step++
	d.UpdatedAt = now
	return nil
}

// Back moves one step backward. The first step and the terminal success
// view have nowhere to go back to.
func (d *BookingDraft) Back(now time.Time) error {
	if d.InFlight() {
		return ErrPaymentInFlight
	}
	if d.Step <= StepSelectDates || d.Step >= StepSuccess {
		return ErrInvalidStep
	}
	d.Step--
	d.Payment = nil
	d.UpdatedAt = now
	return nil
}

// StayDays is the whole-day length of the stay, rounded up.
func (d *BookingDraft) StayDays() int {
	if d.CheckIn == nil || d.CheckOut == nil {
		return 0
	}
	return StayDays(*d.CheckIn, *d.CheckOut)
}

// TotalCost is the pro-rated cost of the stay at the draft's monthly rate.
func (d *BookingDraft) TotalCost() float64 {
	return TotalCost(d.MonthlyRate, d.StayDays())
}

// InFlight reports whether a payment attempt is still processing.
func (d *BookingDraft) InFlight() bool {
	return d.Payment != nil && d.Payment.Step == PaymentProcessing
}

// BeginPayment starts a fresh attempt for the confirmed amount. A previous
// failed attempt is discarded; nothing is resumed.
func (d *BookingDraft) BeginPayment(phone string, now time.Time) (*PaymentAttempt, error) {
	if d.InFlight() {
		return nil, ErrPaymentInFlight
	}
	if d.Step != StepConfirm {
		return nil, ErrNotConfirmStep
	}
	if phone == "" {
		phone = d.Contact.Phone
	}
	d.Payment = &PaymentAttempt{
		Method:    d.PaymentMethod,
		Amount:    d.TotalCost(),
		Phone:     phone,
		Step:      PaymentProcessing,
		StartedAt: now,
	}
	d.UpdatedAt = now
	return d.Payment, nil
}

// RecordProgress appends a processing message to the current attempt.
func (d *BookingDraft) RecordProgress(msg string, now time.Time) {
	if !d.InFlight() {
		return
	}
	d.Payment.Messages = append(d.Payment.Messages, msg)
	d.UpdatedAt = now
}

// CompletePayment moves the draft to the terminal success view.
func (d *BookingDraft) CompletePayment(txnID, bookingID string, now time.Time) {
	if d.Payment != nil {
		d.Payment.Step = PaymentSucceeded
		d.Payment.TransactionID = txnID
		d.Payment.CompletedAt = &now
	}
	d.Step = StepSuccess
	d.Reference = txnID
	d.BookingID = bookingID
	d.ConfirmedAt = &now
	d.UpdatedAt = now
}

// FailPayment keeps the draft on the confirm step with msg surfaced.
func (d *BookingDraft) FailPayment(msg string, now time.Time) {
	if d.Payment != nil {
		d.Payment.Step = PaymentFailed
		d.Payment.Error = msg
		d.Payment.CompletedAt = &now
	}
	d.UpdatedAt = now
}

var rateDigits = regexp.MustCompile(`[0-9][0-9,]*(\.[0-9]+)?`)

// ParseMonthlyRate extracts the first number from a display price such as
// "UGX 150,000 / month". Unparsable or non-positive values yield fallback.
func ParseMonthlyRate(display string, fallback float64) float64 {
	m := rateDigits.FindString(display)
	if m == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// StayDays returns ceil(|checkOut - checkIn| / 1 day).
func StayDays(checkIn, checkOut time.Time) int {
	diff := checkOut.Sub(checkIn)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// TotalCost pro-rates a monthly rate over days at a 30-day month.
func TotalCost(monthlyRate float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	return monthlyRate / daysPerMonth * float64(days)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Booking is the confirmed reservation written to the backend.
type Booking struct {
	TenantUserID        string
	PropertyID          string
	BookingType         string
	Status              string
	PreferredMoveInDate time.Time
	ContactName         string
	ContactEmail        string
	ContactPhone        string
}

const (
	BookingTypeRental    = "rental"
	BookingStatusPending = "pending"
)

// BookingFromDraft builds the persisted record for a paid draft.
func BookingFromDraft(d *BookingDraft) Booking {
	b := Booking{
		TenantUserID: d.Contact.TenantUserID,
		PropertyID:   d.PropertyID,
		BookingType:  BookingTypeRental,
		Status:       BookingStatusPending,
		ContactName:  d.Contact.FullName,
		ContactEmail: d.Contact.Email,
		ContactPhone: d.Contact.Phone,
	}
	if d.CheckIn != nil {
		b.PreferredMoveInDate = *d.CheckIn
	}
	return b
}

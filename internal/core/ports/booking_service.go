package ports

import (
	"context"
	"time"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// OpenDraftInput starts a booking for a listing.
type OpenDraftInput struct {
	Identity     domain.Identity
	PropertyID   string
	PriceDisplay string
}

// BookingService drives the booking workflow for one tenant at a time.
// Every call is scoped to the identity that opened the draft.
type BookingService interface {
	OpenDraft(ctx context.Context, in OpenDraftInput) (*domain.BookingDraft, error)
	GetDraft(ctx context.Context, identityID, draftID string) (*domain.BookingDraft, error)
	SetDates(ctx context.Context, identityID, draftID string, checkIn, checkOut time.Time) (*domain.BookingDraft, error)
	SelectPaymentMethod(ctx context.Context, identityID, draftID string, method domain.PaymentMethod) (*domain.BookingDraft, error)
	Advance(ctx context.Context, identityID, draftID string) (*domain.BookingDraft, error)
	Back(ctx context.Context, identityID, draftID string) (*domain.BookingDraft, error)
	// Confirm starts a payment attempt. It returns as soon as the attempt is
	// queued; progress is observed through GetDraft.
	Confirm(ctx context.Context, identityID, draftID, phone string) (*domain.BookingDraft, error)
	Close(ctx context.Context, identityID, draftID string) error
}

// PaymentJob asks a worker to run the payment attempt of a draft.
type PaymentJob struct {
	DraftID string
}

// PaymentRunner executes queued payment jobs.
type PaymentRunner interface {
	RunPayment(ctx context.Context, job PaymentJob) error
}

// PaymentQueue accepts payment jobs for asynchronous execution. Enqueue
// never blocks; a job that cannot be accepted is reported as
// domain.ErrPaymentsUnavailable.
type PaymentQueue interface {
	Enqueue(job PaymentJob) error
}

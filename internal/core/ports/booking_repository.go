package ports

import (
	"context"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// PersistPath tells which backend path stored a booking.
type PersistPath string

const (
	PersistViaRPC    PersistPath = "rpc"
	PersistViaInsert PersistPath = "insert"
)

// BookingRepository writes confirmed bookings to the backend.
type BookingRepository interface {
	// Create stores b through the booking stored procedure, falling back to
	// a direct insert when the procedure does not exist.
	Create(ctx context.Context, b domain.Booking) (string, PersistPath, error)
}

// DraftStore holds transient booking drafts for the life of a session.
type DraftStore interface {
	Save(ctx context.Context, d *domain.BookingDraft) error
	// Get returns domain.ErrDraftNotFound for unknown or expired drafts.
	Get(ctx context.Context, id string) (*domain.BookingDraft, error)
	Delete(ctx context.Context, id string) error
}

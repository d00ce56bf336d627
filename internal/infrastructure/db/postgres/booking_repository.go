package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

const (
	defaultBookingRPC = "create_tenant_booking"

	undefinedFunction = pq.ErrorCode("42883")
	postgrestNoRPC    = "PGRST202"
)

const insertBookingQuery = `
INSERT INTO tenant_bookings
	(tenant_user_id, property_id, booking_type, status, preferred_move_in_date, contact_name, contact_email, contact_phone)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id::text`

var missingFunction = regexp.MustCompile(`(?i)function .* does not exist`)

// BookingRepository writes tenant_bookings rows, preferring the booking
// stored procedure when the backend provides one.
type BookingRepository struct {
	db      *sql.DB
	rpc     string
	timeout time.Duration
	logger  zerolog.Logger
}

func NewBookingRepository(db *sql.DB, rpc string, timeout time.Duration, logger zerolog.Logger) *BookingRepository {
	if rpc == "" {
		rpc = defaultBookingRPC
	}
	return &BookingRepository{db: db, rpc: rpc, timeout: timeout, logger: logger}
}

func (r *BookingRepository) Create(ctx context.Context, b domain.Booking) (string, ports.PersistPath, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	args := bookingArgs(b)

	var id string
	err := r.db.QueryRowContext(ctx, r.rpcQuery(), args...).Scan(&id)
	if err == nil {
		return id, ports.PersistViaRPC, nil
	}
	if !isMissingFunction(err) {
		return "", ports.PersistViaRPC, fmt.Errorf("call %s: %w", r.rpc, err)
	}

	r.logger.Warn().Str("rpc", r.rpc).Msg("booking procedure missing, falling back to direct insert")
	if err := r.db.QueryRowContext(ctx, insertBookingQuery, args...).Scan(&id); err != nil {
		return "", ports.PersistViaInsert, fmt.Errorf("insert tenant booking: %w", err)
	}
	return id, ports.PersistViaInsert, nil
}

func (r *BookingRepository) rpcQuery() string {
	return fmt.Sprintf("SELECT %s($1, $2, $3, $4, $5, $6, $7, $8)::text", pq.QuoteIdentifier(r.rpc))
}

func bookingArgs(b domain.Booking) []any {
	var moveIn any
	if !b.PreferredMoveInDate.IsZero() {
		moveIn = b.PreferredMoveInDate.Format(domain.DateLayout)
	}
	return []any{
		nullIfEmpty(b.TenantUserID),
		b.PropertyID,
		b.BookingType,
		b.Status,
		moveIn,
		nullIfEmpty(b.ContactName),
		nullIfEmpty(b.ContactEmail),
		nullIfEmpty(b.ContactPhone),
	}
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// isMissingFunction reports whether err says the stored procedure is absent.
func isMissingFunction(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedFunction {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, postgrestNoRPC) || missingFunction.MatchString(msg)
}

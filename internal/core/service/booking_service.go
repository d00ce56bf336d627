package service

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/api/metrics"
	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

const (
	msgPaymentInterrupted = "The payment was interrupted. Please try again."

	// lockStripes bounds the per-draft mutexes; drafts hashing to the same
	// stripe serialise against each other.
	lockStripes = 64

	// stalePaymentAfter is how long a processing attempt may go without a
	// progress update before a new confirm abandons it.
	stalePaymentAfter = 2 * time.Minute
)

// BookingService runs the tenant booking workflow. Drafts live in a
// ports.DraftStore; payments run on a ports.PaymentQueue and call back into
// RunPayment.
type BookingService struct {
	drafts       ports.DraftStore
	bookings     ports.BookingRepository
	users        ports.UserDirectory
	payments     PaymentProcessor
	queue        ports.PaymentQueue
	fallbackRate float64
	logger       zerolog.Logger
	now          func() time.Time

	staleAfter time.Duration

	locks    [lockStripes]sync.Mutex
	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

func NewBookingService(
	drafts ports.DraftStore,
	bookings ports.BookingRepository,
	users ports.UserDirectory,
	payments PaymentProcessor,
	queue ports.PaymentQueue,
	fallbackRate float64,
	logger zerolog.Logger,
) *BookingService {
	if fallbackRate <= 0 {
		fallbackRate = domain.DefaultMonthlyRate
	}
	return &BookingService{
		drafts:       drafts,
		bookings:     bookings,
		users:        users,
		payments:     payments,
		queue:        queue,
		fallbackRate: fallbackRate,
		logger:       logger,
		now:          time.Now,
		staleAfter:   stalePaymentAfter,
		inflight:     make(map[string]context.CancelFunc),
	}
}

// OpenDraft starts a fresh draft and loads the tenant's contact details.
// Opening never resumes earlier state.
func (s *BookingService) OpenDraft(ctx context.Context, in ports.OpenDraftInput) (*domain.BookingDraft, error) {
	if in.Identity.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(in.PropertyID) == "" {
		return nil, &domain.ValidationError{Field: "property_id", Message: "property is required"}
	}

	contact := domain.TenantProfile{Email: in.Identity.Email}
	profile, err := s.users.TenantProfile(ctx, in.Identity.ID)
	switch {
	case err == nil:
		contact = *profile
		if contact.Email == "" {
			contact.Email = in.Identity.Email
		}
	case errors.Is(err, domain.ErrProfileNotFound):
		s.logger.Warn().Str("identity_id", in.Identity.ID).Msg("no tenant profile for booking draft")
	default:
		s.logger.Warn().Err(err).Str("identity_id", in.Identity.ID).Msg("failed to load tenant profile")
	}

	now := s.now().UTC()
	d := domain.NewBookingDraft(uuid.NewString(), in.Identity.ID, in.PropertyID, in.PriceDisplay, s.fallbackRate, contact, now)
	if err := s.drafts.Save(ctx, d); err != nil {
		s.logger.Error().Err(err).Msg("failed to save booking draft")
		return nil, err
	}
	s.logger.Info().Str("draft_id", d.ID).Str("property_id", d.PropertyID).Str("identity_id", in.Identity.ID).Msg("booking draft opened")
	return d, nil
}

func (s *BookingService) GetDraft(ctx context.Context, identityID, draftID string) (*domain.BookingDraft, error) {
	return s.owned(ctx, identityID, draftID)
}

func (s *BookingService) SetDates(ctx context.Context, identityID, draftID string, checkIn, checkOut time.Time) (*domain.BookingDraft, error) {
	return s.update(ctx, identityID, draftID, func(d *domain.BookingDraft, now time.Time) error {
		return d.SetDates(checkIn, checkOut, now)
	})
}

func (s *BookingService) SelectPaymentMethod(ctx context.Context, identityID, draftID string, method domain.PaymentMethod) (*domain.BookingDraft, error) {
	return s.update(ctx, identityID, draftID, func(d *domain.BookingDraft, now time.Time) error {
		return d.SelectPaymentMethod(method, now)
	})
}

func (s *BookingService) Advance(ctx context.Context, identityID, draftID string) (*domain.BookingDraft, error) {
	return s.update(ctx, identityID, draftID, func(d *domain.BookingDraft, now time.Time) error {
		return d.Advance(now)
	})
}

func (s *BookingService) Back(ctx context.Context, identityID, draftID string) (*domain.BookingDraft, error) {
	return s.update(ctx, identityID, draftID, func(d *domain.BookingDraft, now time.Time) error {
		return d.Back(now)
	})
}

// Confirm starts a payment attempt for the draft and queues it. A second
// confirm while the attempt is processing returns domain.ErrPaymentInFlight,
// unless the attempt went stale because its job was lost.
func (s *BookingService) Confirm(ctx context.Context, identityID, draftID, phone string) (*domain.BookingDraft, error) {
	d, err := s.update(ctx, identityID, draftID, func(d *domain.BookingDraft, now time.Time) error {
		if s.stale(d, now) {
			s.logger.Warn().Str("draft_id", d.ID).Time("last_update", d.UpdatedAt).Msg("abandoning stale payment attempt")
			d.FailPayment(msgPaymentInterrupted, now)
		}
		_, err := d.BeginPayment(strings.TrimSpace(phone), now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.queue.Enqueue(ports.PaymentJob{DraftID: d.ID}); err != nil {
		s.logger.Error().Err(err).Str("draft_id", d.ID).Msg("failed to queue payment")
		s.record(ctx, d.ID, func(d *domain.BookingDraft, now time.Time) {
			d.FailPayment(msgPaymentInterrupted, now)
		})
		return nil, err
	}
	s.logger.Info().Str("draft_id", d.ID).Str("method", string(d.PaymentMethod)).Float64("amount", d.Payment.Amount).Msg("payment queued")
	return d, nil
}

// Close discards the draft and cancels any payment still running for it.
func (s *BookingService) Close(ctx context.Context, identityID, draftID string) error {
	lock := s.lock(draftID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.owned(ctx, identityID, draftID); err != nil {
		return err
	}
	s.mu.Lock()
	if cancel, ok := s.inflight[draftID]; ok {
		cancel()
		delete(s.inflight, draftID)
	}
	s.mu.Unlock()

	if err := s.drafts.Delete(ctx, draftID); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draftID).Msg("failed to delete booking draft")
		return err
	}
	s.logger.Info().Str("draft_id", draftID).Msg("booking draft closed")
	return nil
}

// RunPayment executes the queued attempt of a draft: it plays the payment
// script, persists the booking on success, and records the outcome on the
// draft. A draft closed mid-run is left alone.
func (s *BookingService) RunPayment(ctx context.Context, job ports.PaymentJob) error {
	d, err := s.load(ctx, job.DraftID)
	if err != nil {
		if errors.Is(err, domain.ErrDraftNotFound) {
			return nil
		}
		return err
	}
	if !d.InFlight() {
		return nil
	}
	attempt := *d.Payment

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.inflight[job.DraftID] = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inflight, job.DraftID)
		s.mu.Unlock()
	}()

	res, payErr := s.payments.Process(runCtx, PaymentRequest{
		Method: attempt.Method,
		Amount: attempt.Amount,
		Phone:  attempt.Phone,
	}, func(u PaymentUpdate) {
		if u.Step != domain.PaymentProcessing {
			return
		}
		s.record(runCtx, job.DraftID, func(d *domain.BookingDraft, now time.Time) {
			d.RecordProgress(u.Message, now)
		})
	})

	// Writes below outlive a canceled worker context so the draft never
	// stays stuck in processing.
	store := context.WithoutCancel(ctx)
	if runCtx.Err() != nil && ctx.Err() == nil {
		s.logger.Info().Str("draft_id", job.DraftID).Msg("payment abandoned, draft closed")
		return nil
	}
	if payErr != nil {
		msg := msgPaymentInterrupted
		var pe *domain.PaymentError
		if errors.As(payErr, &pe) {
			msg = pe.Message
		}
		s.logger.Warn().Err(payErr).Str("draft_id", job.DraftID).Str("method", string(attempt.Method)).Msg("payment failed")
		s.record(store, job.DraftID, func(d *domain.BookingDraft, now time.Time) {
			d.FailPayment(msg, now)
		})
		return nil
	}

	var (
		booking domain.Booking
		found   bool
	)
	s.record(store, job.DraftID, func(d *domain.BookingDraft, _ time.Time) {
		booking, found = domain.BookingFromDraft(d), true
	})
	if !found {
		s.logger.Warn().Str("draft_id", job.DraftID).Str("transaction_id", res.TransactionID).Msg("draft closed after payment, booking not saved")
		return nil
	}
	id, path, err := s.bookings.Create(store, booking)
	if err != nil {
		perr := DescribePersistenceError(err)
		metrics.BookingsPersistedTotal.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).Str("draft_id", job.DraftID).Str("transaction_id", res.TransactionID).Msg("failed to persist booking")
		s.record(store, job.DraftID, func(d *domain.BookingDraft, now time.Time) {
			d.FailPayment(perr.UserMessage, now)
		})
		return nil
	}
	metrics.BookingsPersistedTotal.WithLabelValues(string(path)).Inc()

	s.record(store, job.DraftID, func(d *domain.BookingDraft, now time.Time) {
		d.CompletePayment(res.TransactionID, id, now)
	})
	s.logger.Info().
		Str("draft_id", job.DraftID).
		Str("booking_id", id).
		Str("transaction_id", res.TransactionID).
		Str("persist_path", string(path)).
		Msg("booking confirmed")
	return nil
}

// update applies fn to an owned draft under its lock and saves the result.
func (s *BookingService) update(ctx context.Context, identityID, draftID string, fn func(*domain.BookingDraft, time.Time) error) (*domain.BookingDraft, error) {
	lock := s.lock(draftID)
	lock.Lock()
	defer lock.Unlock()

	d, err := s.owned(ctx, identityID, draftID)
	if err != nil {
		return nil, err
	}
	if err := fn(d, s.now().UTC()); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draftID).Msg("failed to save booking draft")
		return nil, err
	}
	return d, nil
}

// record is update for the payment worker: no ownership check, and a
// missing draft is silently skipped.
func (s *BookingService) record(ctx context.Context, draftID string, fn func(*domain.BookingDraft, time.Time)) {
	lock := s.lock(draftID)
	lock.Lock()
	defer lock.Unlock()

	d, err := s.load(ctx, draftID)
	if err != nil {
		if !errors.Is(err, domain.ErrDraftNotFound) {
			s.logger.Error().Err(err).Str("draft_id", draftID).Msg("failed to load booking draft")
		}
		return
	}
	fn(d, s.now().UTC())
	if err := s.drafts.Save(ctx, d); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draftID).Msg("failed to save booking draft")
	}
}

// stale reports whether d is processing an attempt that no local worker runs
// and that has not reported progress within staleAfter.
func (s *BookingService) stale(d *domain.BookingDraft, now time.Time) bool {
	if !d.InFlight() || now.Sub(d.UpdatedAt) < s.staleAfter {
		return false
	}
	s.mu.Lock()
	_, running := s.inflight[d.ID]
	s.mu.Unlock()
	return !running
}

// owned returns the draft only to the identity that opened it. Other
// identities see domain.ErrDraftNotFound.
func (s *BookingService) owned(ctx context.Context, identityID, draftID string) (*domain.BookingDraft, error) {
	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if identityID == "" || d.IdentityID != identityID {
		return nil, domain.ErrDraftNotFound
	}
	return d, nil
}

func (s *BookingService) load(ctx context.Context, draftID string) (*domain.BookingDraft, error) {
	if draftID == "" {
		return nil, domain.ErrDraftNotFound
	}
	return s.drafts.Get(ctx, draftID)
}

func (s *BookingService) lock(draftID string) *sync.Mutex {
	return &s.locks[lockStripe(draftID)]
}

func lockStripe(draftID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(draftID))
	return int(h.Sum32() % lockStripes)
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubUsers struct {
	records    map[string]*domain.UserRecord
	profiles   map[string]*domain.TenantProfile
	lookupErr  error
	profileErr error
	lookups    int
}

func newStubUsers() *stubUsers {
	return &stubUsers{
		records:  map[string]*domain.UserRecord{},
		profiles: map[string]*domain.TenantProfile{},
	}
}

func (u *stubUsers) LookupUser(_ context.Context, id string) (*domain.UserRecord, error) {
	u.lookups++
	if u.lookupErr != nil {
		return nil, u.lookupErr
	}
	rec, ok := u.records[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return rec, nil
}

func (u *stubUsers) TenantProfile(_ context.Context, id string) (*domain.TenantProfile, error) {
	if u.profileErr != nil {
		return nil, u.profileErr
	}
	p, ok := u.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return p, nil
}

type stubGrants struct {
	grants    []domain.RoleGrant
	audit     []*domain.GrantAuditEntry
	bootstrap []domain.RoleGrant
	created   []*domain.RoleGrant
	revoked   []string
	activeErr error
	createErr error
	revokeErr error
}

func (g *stubGrants) ActiveGrants(_ context.Context, _ domain.Identity, _ time.Time) ([]domain.RoleGrant, error) {
	if g.activeErr != nil {
		return nil, g.activeErr
	}
	return g.grants, nil
}

func (g *stubGrants) List(_ context.Context, _ time.Time) ([]domain.RoleGrant, error) {
	return g.grants, nil
}

func (g *stubGrants) Create(_ context.Context, grant *domain.RoleGrant) error {
	if g.createErr != nil {
		return g.createErr
	}
	g.created = append(g.created, grant)
	return nil
}

func (g *stubGrants) Revoke(_ context.Context, id string, _ time.Time) error {
	if g.revokeErr != nil {
		return g.revokeErr
	}
	g.revoked = append(g.revoked, id)
	return nil
}

func (g *stubGrants) EnsureBootstrap(_ context.Context, grants []domain.RoleGrant) error {
	g.bootstrap = append(g.bootstrap, grants...)
	return nil
}

func (g *stubGrants) InsertAudit(_ context.Context, e *domain.GrantAuditEntry) error {
	g.audit = append(g.audit, e)
	return nil
}

type stubCapStore struct {
	used map[string]bool
	err  error
}

func newStubCapStore() *stubCapStore { return &stubCapStore{used: map[string]bool{}} }

func (s *stubCapStore) Consume(_ context.Context, jti string, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	if s.used[jti] {
		return domain.ErrCapabilityConsumed
	}
	s.used[jti] = true
	return nil
}

type stubDrafts struct {
	mu      sync.Mutex
	drafts  map[string]domain.BookingDraft
	saveErr error
}

func newStubDrafts() *stubDrafts { return &stubDrafts{drafts: map[string]domain.BookingDraft{}} }

func (s *stubDrafts) Save(_ context.Context, d *domain.BookingDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.drafts[d.ID] = *d
	return nil
}

func (s *stubDrafts) Get(_ context.Context, id string) (*domain.BookingDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, domain.ErrDraftNotFound
	}
	return &d, nil
}

func (s *stubDrafts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

type stubBookings struct {
	created []domain.Booking
	path    ports.PersistPath
	err     error
}

func (b *stubBookings) Create(_ context.Context, bk domain.Booking) (string, ports.PersistPath, error) {
	if b.err != nil {
		return "", "", b.err
	}
	b.created = append(b.created, bk)
	path := b.path
	if path == "" {
		path = ports.PersistViaRPC
	}
	return "booking-1", path, nil
}

// stubPayments returns a scripted result without sleeping.
type stubPayments struct {
	result  *PaymentResult
	err     error
	steps   []string
	calls   []PaymentRequest
	block   chan struct{}
	started chan struct{}
}

func (p *stubPayments) Process(ctx context.Context, req PaymentRequest, emit func(PaymentUpdate)) (*PaymentResult, error) {
	p.calls = append(p.calls, req)
	for _, s := range p.steps {
		emit(PaymentUpdate{Step: domain.PaymentProcessing, Message: s})
	}
	if p.started != nil {
		close(p.started)
	}
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.result != nil {
		return p.result, nil
	}
	return &PaymentResult{TransactionID: "SIM-TEST-1", Method: req.Method, Amount: req.Amount, CompletedAt: time.Now()}, nil
}

// recordingQueue keeps jobs so tests decide when they run. A non-nil err
// refuses every job.
type recordingQueue struct {
	jobs []ports.PaymentJob
	err  error
}

func (q *recordingQueue) Enqueue(job ports.PaymentJob) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// ---------------------------------------------------------------------------
// UserDirectory
// ---------------------------------------------------------------------------

func TestLookupUser_Staff(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(lookupUserQuery).
		WithArgs("auth-1").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "id", "role", "full_name"}).
			AddRow("staff", "auth-1", "landlord", "Wanjiru"))

	rec, err := NewUserDirectory(db, time.Second).LookupUser(context.Background(), "auth-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Kind != domain.UserKindStaff || rec.StoredRole != "landlord" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if role, _ := rec.Role(); role != domain.RoleLandlord {
		t.Errorf("role: want landlord, got %s", role)
	}
	expectationsMet(t, mock)
}

func TestLookupUser_Tenant(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(lookupUserQuery).
		WithArgs("auth-2").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "id", "role", "full_name"}).
			AddRow("tenant", "t-9", "", "Okello"))

	rec, err := NewUserDirectory(db, time.Second).LookupUser(context.Background(), "auth-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role, _ := rec.Role(); role != domain.RoleTenant {
		t.Errorf("role: want tenant, got %s", role)
	}
	expectationsMet(t, mock)
}

func TestLookupUser_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(lookupUserQuery).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"kind", "id", "role", "full_name"}))

	_, err := NewUserDirectory(db, time.Second).LookupUser(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestLookupUser_BackendError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(lookupUserQuery).WithArgs("auth-1").WillReturnError(errors.New("connection reset"))

	_, err := NewUserDirectory(db, time.Second).LookupUser(context.Background(), "auth-1")
	if err == nil || errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want wrapped backend error, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestTenantProfile(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(tenantProfileQuery).
		WithArgs("auth-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "phone_number", "email"}).
			AddRow("t-9", "Okello", "+256700000001", "okello@kodihomes.test"))

	p, err := NewUserDirectory(db, time.Second).TenantProfile(context.Background(), "auth-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.TenantProfile{TenantUserID: "t-9", FullName: "Okello", Phone: "+256700000001", Email: "okello@kodihomes.test"}
	if *p != want {
		t.Errorf("want %+v, got %+v", want, *p)
	}
	expectationsMet(t, mock)
}

func TestTenantProfile_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(tenantProfileQuery).WithArgs("auth-3").WillReturnError(sql.ErrNoRows)

	_, err := NewUserDirectory(db, time.Second).TenantProfile(context.Background(), "auth-3")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("want ErrProfileNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

// ---------------------------------------------------------------------------
// BookingRepository
// ---------------------------------------------------------------------------

func sampleBooking() domain.Booking {
	return domain.Booking{
		TenantUserID:        "t-9",
		PropertyID:          "p-1",
		BookingType:         domain.BookingTypeRental,
		Status:              domain.BookingStatusPending,
		PreferredMoveInDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		ContactName:         "Okello",
		ContactEmail:        "okello@kodihomes.test",
		ContactPhone:        "+256700000001",
	}
}

func bookingRow(id string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"}).AddRow(id)
}

func TestBookingCreate_ViaRPC(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db, "", time.Second, zerolog.Nop())

	mock.ExpectQuery(`SELECT "create_tenant_booking"($1, $2, $3, $4, $5, $6, $7, $8)::text`).
		WithArgs("t-9", "p-1", "rental", "pending", "2026-04-01", "Okello", "okello@kodihomes.test", "+256700000001").
		WillReturnRows(bookingRow("b-1"))

	id, path, err := repo.Create(context.Background(), sampleBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "b-1" || path != ports.PersistViaRPC {
		t.Errorf("want b-1 via rpc, got %s via %s", id, path)
	}
	expectationsMet(t, mock)
}

func TestBookingCreate_FallsBackWhenFunctionMissing(t *testing.T) {
	cases := map[string]error{
		"sqlstate 42883": &pq.Error{Code: "42883", Message: "function create_tenant_booking(text) does not exist"},
		"postgrest":      errors.New("PGRST202: Could not find the function public.create_tenant_booking"),
		"message only":   errors.New("ERROR: function create_tenant_booking does not exist"),
	}
	for name, rpcErr := range cases {
		t.Run(name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewBookingRepository(db, "create_tenant_booking", time.Second, zerolog.Nop())

			mock.ExpectQuery(repo.rpcQuery()).WillReturnError(rpcErr)
			mock.ExpectQuery(insertBookingQuery).
				WithArgs("t-9", "p-1", "rental", "pending", "2026-04-01", "Okello", "okello@kodihomes.test", "+256700000001").
				WillReturnRows(bookingRow("b-2"))

			id, path, err := repo.Create(context.Background(), sampleBooking())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id != "b-2" || path != ports.PersistViaInsert {
				t.Errorf("want b-2 via insert, got %s via %s", id, path)
			}
			expectationsMet(t, mock)
		})
	}
}

func TestBookingCreate_RPCErrorIsNotRetried(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db, "", time.Second, zerolog.Nop())

	rls := &pq.Error{Code: "42501", Message: `new row violates row-level security policy for table "tenant_bookings"`}
	mock.ExpectQuery(repo.rpcQuery()).WillReturnError(rls)

	_, path, err := repo.Create(context.Background(), sampleBooking())
	if err == nil {
		t.Fatal("expected error")
	}
	if path != ports.PersistViaRPC {
		t.Errorf("path: want rpc, got %s", path)
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "42501" {
		t.Errorf("want wrapped pq error, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestBookingCreate_FallbackInsertFails(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBookingRepository(db, "", time.Second, zerolog.Nop())

	b := sampleBooking()
	b.ContactName = ""
	mock.ExpectQuery(repo.rpcQuery()).WillReturnError(&pq.Error{Code: "42883", Message: "function does not exist"})
	mock.ExpectQuery(insertBookingQuery).
		WithArgs("t-9", "p-1", "rental", "pending", "2026-04-01", nil, "okello@kodihomes.test", "+256700000001").
		WillReturnError(&pq.Error{Code: "23502", Message: `null value in column "contact_name" violates not-null constraint`})

	_, path, err := repo.Create(context.Background(), b)
	if err == nil {
		t.Fatal("expected error")
	}
	if path != ports.PersistViaInsert {
		t.Errorf("path: want insert, got %s", path)
	}
	expectationsMet(t, mock)
}

func TestRPCQueryQuotesIdentifier(t *testing.T) {
	repo := NewBookingRepository(nil, `evil"; DROP TABLE x; --`, 0, zerolog.Nop())
	got := repo.rpcQuery()
	want := `SELECT "evil""; DROP TABLE x; --"($1, $2, $3, $4, $5, $6, $7, $8)::text`
	if got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}

package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

func collect(updates *[]PaymentUpdate) func(PaymentUpdate) {
	return func(u PaymentUpdate) { *updates = append(*updates, u) }
}

func TestSimulator_ScriptsSucceed(t *testing.T) {
	sim := NewPaymentSimulator(0, zerolog.Nop())
	idFormat := regexp.MustCompile(`^SIM-[A-Z_]+-\d+$`)

	for method, script := range paymentScripts {
		t.Run(string(method), func(t *testing.T) {
			req := PaymentRequest{Method: method, Amount: 250000, Phone: "+256700000001"}
			var updates []PaymentUpdate
			res, err := sim.Process(context.Background(), req, collect(&updates))
			if err != nil {
				t.Fatalf("process: %v", err)
			}
			if !idFormat.MatchString(res.TransactionID) {
				t.Errorf("unexpected transaction id %q", res.TransactionID)
			}
			if res.Amount != 250000 || res.Method != method {
				t.Errorf("unexpected result: %+v", res)
			}

			want := script(req)
			if len(updates) != len(want)+1 {
				t.Fatalf("want %d updates, got %d", len(want)+1, len(updates))
			}
			for i, msg := range want {
				if updates[i].Step != domain.PaymentProcessing || updates[i].Message != msg {
					t.Errorf("update %d: want %q, got %+v", i, msg, updates[i])
				}
			}
			last := updates[len(updates)-1]
			if last.Step != domain.PaymentSucceeded || last.Message != "Payment successful" {
				t.Errorf("want success update last, got %+v", last)
			}
		})
	}
}

func TestSimulator_TransactionIDUsesMethod(t *testing.T) {
	sim := NewPaymentSimulator(0, zerolog.Nop())
	sim.now = func() time.Time { return time.UnixMilli(1767225600000) }
	res, err := sim.Process(context.Background(), PaymentRequest{Method: domain.PaymentCard, Amount: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.TransactionID != "SIM-CARD-1767225600000" {
		t.Fatalf("unexpected id %s", res.TransactionID)
	}
}

func TestSimulator_WalletNeedsPhone(t *testing.T) {
	sim := NewPaymentSimulator(0, zerolog.Nop())
	var updates []PaymentUpdate
	_, err := sim.Process(context.Background(), PaymentRequest{Method: domain.PaymentAirtelMoney, Amount: 10, Phone: "  "}, collect(&updates))

	var pe *domain.PaymentError
	if !errors.As(err, &pe) {
		t.Fatalf("want PaymentError, got %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("no updates expected, got %+v", updates)
	}
}

func TestSimulator_UnknownMethod(t *testing.T) {
	sim := NewPaymentSimulator(0, zerolog.Nop())
	var updates []PaymentUpdate
	_, err := sim.Process(context.Background(), PaymentRequest{Method: "crypto", Amount: 10}, collect(&updates))

	var pe *domain.PaymentError
	if !errors.As(err, &pe) || pe.Method != "crypto" {
		t.Fatalf("want PaymentError for crypto, got %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("no updates expected, got %+v", updates)
	}
}

func TestSimulator_Cancel(t *testing.T) {
	sim := NewPaymentSimulator(time.Hour, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	var updates []PaymentUpdate
	done := make(chan error, 1)
	go func() {
		_, err := sim.Process(ctx, PaymentRequest{Method: domain.PaymentCash, Amount: 10}, collect(&updates))
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("simulator did not stop on cancel")
	}
	for _, u := range updates {
		if u.Step == domain.PaymentSucceeded {
			t.Fatal("canceled payment must not report success")
		}
	}
}

func TestSimulator_DefaultDelay(t *testing.T) {
	if sim := NewPaymentSimulator(-1, zerolog.Nop()); sim.delay != defaultPaymentStepDelay {
		t.Fatalf("want default delay, got %s", sim.delay)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/api/metrics"
	"github.com/kodihomes/rental-platform/internal/core/domain"
)

const defaultPaymentStepDelay = 1500 * time.Millisecond

// PaymentRequest is the input of one simulated payment.
type PaymentRequest struct {
	Method domain.PaymentMethod
	Amount float64
	Phone  string
}

// PaymentUpdate is a progress report emitted while a payment runs.
type PaymentUpdate struct {
	Step    domain.PaymentStep
	Message string
}

// PaymentResult describes a successful simulated payment.
type PaymentResult struct {
	TransactionID string
	Method        domain.PaymentMethod
	Amount        float64
	CompletedAt   time.Time
}

// PaymentProcessor runs a payment attempt, reporting progress through emit.
type PaymentProcessor interface {
	Process(ctx context.Context, req PaymentRequest, emit func(PaymentUpdate)) (*PaymentResult, error)
}

// paymentScripts lists the processing messages shown for each method.
var paymentScripts = map[domain.PaymentMethod]func(PaymentRequest) []string{
	domain.PaymentMTNMoMo: func(r PaymentRequest) []string {
		return []string{
			"Connecting to MTN Mobile Money...",
			"Sending payment prompt to " + r.Phone + "...",
			"Waiting for PIN confirmation...",
			"Confirming transaction...",
		}
	},
	domain.PaymentAirtelMoney: func(r PaymentRequest) []string {
		return []string{
			"Connecting to Airtel Money...",
			"Sending payment prompt to " + r.Phone + "...",
			"Waiting for PIN confirmation...",
			"Confirming transaction...",
		}
	},
	domain.PaymentCard: func(PaymentRequest) []string {
		return []string{
			"Validating card details...",
			"Contacting card issuer...",
			"Authorizing payment...",
		}
	},
	domain.PaymentBankTransfer: func(PaymentRequest) []string {
		return []string{
			"Generating transfer reference...",
			"Verifying bank transfer...",
		}
	},
	domain.PaymentCash: func(PaymentRequest) []string {
		return []string{
			"Recording cash payment...",
			"Notifying landlord...",
		}
	},
}

// PaymentSimulator stands in for a payment gateway. It never contacts a
// payment network: it plays a fixed script of processing updates and then
// succeeds with a synthetic transaction id.
type PaymentSimulator struct {
	delay time.Duration
	log   zerolog.Logger
	now   func() time.Time
}

func NewPaymentSimulator(delay time.Duration, log zerolog.Logger) *PaymentSimulator {
	if delay < 0 {
		delay = defaultPaymentStepDelay
	}
	return &PaymentSimulator{delay: delay, log: log, now: time.Now}
}

// Process validates the request and plays the method's script. Unsupported
// methods and missing wallet phone numbers fail immediately.
func (s *PaymentSimulator) Process(ctx context.Context, req PaymentRequest, emit func(PaymentUpdate)) (res *PaymentResult, err error) {
	if emit == nil {
		emit = func(PaymentUpdate) {}
	}
	start := s.now()
	defer func() {
		if p := recover(); p != nil {
			s.log.Error().Interface("panic", p).Str("method", string(req.Method)).Msg("payment script panicked")
			res, err = nil, &domain.PaymentError{Method: string(req.Method), Message: "payment failed, please try again"}
		}
		s.observe(req.Method, start, err)
	}()

	script, ok := paymentScripts[req.Method]
	if !ok {
		return nil, &domain.PaymentError{Method: string(req.Method), Message: fmt.Sprintf("unsupported payment method: %s", req.Method)}
	}
	if req.Method.RequiresPhone() && strings.TrimSpace(req.Phone) == "" {
		return nil, &domain.PaymentError{Method: string(req.Method), Message: "a phone number is required for mobile money payments"}
	}

	for _, msg := range script(req) {
		emit(PaymentUpdate{Step: domain.PaymentProcessing, Message: msg})
		if err := s.wait(ctx); err != nil {
			return nil, err
		}
	}

	done := s.now().UTC()
	res = &PaymentResult{
		TransactionID: fmt.Sprintf("SIM-%s-%d", strings.ToUpper(string(req.Method)), done.UnixMilli()),
		Method:        req.Method,
		Amount:        req.Amount,
		CompletedAt:   done,
	}
	emit(PaymentUpdate{Step: domain.PaymentSucceeded, Message: "Payment successful"})
	s.log.Info().
		Str("method", string(req.Method)).
		Float64("amount", req.Amount).
		Str("transaction_id", res.TransactionID).
		Msg("simulated payment succeeded")
	return res, nil
}

func (s *PaymentSimulator) wait(ctx context.Context) error {
	if s.delay == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *PaymentSimulator) observe(method domain.PaymentMethod, start time.Time, err error) {
	result := "success"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = "canceled"
	case err != nil:
		result = "error"
	}
	metrics.PaymentAttemptsTotal.WithLabelValues(string(method), result).Inc()
	metrics.PaymentDuration.WithLabelValues(string(method)).Observe(s.now().Sub(start).Seconds())
}

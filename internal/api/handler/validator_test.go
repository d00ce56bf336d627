package handler

import (
	"strings"
	"testing"
)

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&setDatesRequest{CheckIn: "2026-13-40"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "check_in must be a date (YYYY-MM-DD)") || !strings.Contains(msg, "check_out is required") {
		t.Fatalf("unexpected message: %s", msg)
	}

	err = v.Validate(&selectPaymentRequest{Method: "paypal"})
	if err == nil || !strings.Contains(err.Error(), "method must be one of") {
		t.Fatalf("unexpected error: %v", err)
	}

	err = v.Validate(&confirmRequest{Phone: "0772 000 111"})
	if err == nil || !strings.Contains(err.Error(), "phone must be an international phone number") {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Validate(&confirmRequest{}); err != nil {
		t.Fatalf("phone is optional: %v", err)
	}

	if err := v.Validate(&setDatesRequest{CheckIn: "2026-11-01", CheckOut: "2026-11-02"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

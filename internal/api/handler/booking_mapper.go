package handler

import (
	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// --- Domain → Response ---

func toDraftResponse(d *domain.BookingDraft) draftResponse {
	self := "/v1/bookings/drafts/" + d.ID
	resp := draftResponse{
		ID:            d.ID,
		PropertyID:    d.PropertyID,
		Step:          int(d.Step),
		StepName:      d.Step.String(),
		StayDays:      d.StayDays(),
		MonthlyRate:   d.MonthlyRate,
		TotalCost:     d.TotalCost(),
		PaymentMethod: string(d.PaymentMethod),
		Contact: contactResponse{
			FullName: d.Contact.FullName,
			Phone:    d.Contact.Phone,
			Email:    d.Contact.Email,
		},
		Reference:   d.Reference,
		BookingID:   d.BookingID,
		ConfirmedAt: d.ConfirmedAt,
		Links: draftLinks{
			Self:    self,
			Advance: self + "/advance",
			Back:    self + "/back",
			Confirm: self + "/confirm",
		},
	}
	if d.CheckIn != nil {
		resp.CheckIn = d.CheckIn.Format(domain.DateLayout)
	}
	if d.CheckOut != nil {
		resp.CheckOut = d.CheckOut.Format(domain.DateLayout)
	}
	if p := d.Payment; p != nil {
		msgs := p.Messages
		if msgs == nil {
			msgs = []string{}
		}
		resp.Payment = &paymentResponse{
			Method:        string(p.Method),
			Amount:        p.Amount,
			Step:          string(p.Step),
			Messages:      msgs,
			TransactionID: p.TransactionID,
			Error:         p.Error,
			StartedAt:     p.StartedAt,
			CompletedAt:   p.CompletedAt,
		}
	}
	return resp
}

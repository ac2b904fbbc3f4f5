package ticketing

import (
	"context"
	"time"

	"github.com/iliyamo/border-control-ticketing/internal/model"
)

// LegalStayLimitDays is the number of days a foreign national may remain in
// the country after an accepted arrival without an accepted departure.
const LegalStayLimitDays = 90

// OverstayStatus reports legal-stay compliance for a foreigner ticket.
type OverstayStatus struct {
	DaysInCountry int  `json:"days_in_country"`
	IsOverstay    bool `json:"is_overstay"`
	DaysOverstay  int  `json:"days_overstay"`
}

// ComputeOverstay derives compliance from a ticket's decision history at
// the given instant. With no accepted arrival the traveler never entered;
// with an accepted departure after the last accepted arrival the traveler
// has left. Either way the result is all zeroes. Pure and safe to call
// repeatedly.
func ComputeOverstay(decisions []model.Decision, now time.Time) OverstayStatus {
	var arrival *model.Decision
	for i := range decisions {
		d := &decisions[i]
		if d.ActionType == model.ActionArrival && d.Decision == model.DecisionAccepted {
			if arrival == nil || d.CreatedAt.After(arrival.CreatedAt) {
				arrival = d
			}
		}
	}
	if arrival == nil {
		return OverstayStatus{}
	}
	for i := range decisions {
		d := &decisions[i]
		if d.ActionType == model.ActionDeparture && d.Decision == model.DecisionAccepted &&
			d.CreatedAt.After(arrival.CreatedAt) {
			return OverstayStatus{}
		}
	}
	days := int(now.Sub(arrival.CreatedAt).Hours() / 24)
	st := OverstayStatus{DaysInCountry: days}
	if days > LegalStayLimitDays {
		st.IsOverstay = true
		st.DaysOverstay = days - LegalStayLimitDays
	}
	return st
}

// OverstayStatus computes legal-stay compliance for a foreigner ticket.
// Fails with ErrNotForeigner for national tickets.
func (s *Service) OverstayStatus(ctx context.Context, ticketID uint64) (*OverstayStatus, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.PassengerType != model.PassengerForeigner {
		return nil, ErrNotForeigner
	}
	history, err := s.decisions.ListByTicket(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	st := ComputeOverstay(history, s.now())
	return &st, nil
}

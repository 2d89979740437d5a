package service

import "github.com/noah-isme/gym-manager-api/internal/models"

// GenerateFees returns the fees missing for the period: one per active
// student without a fee for it, priced by the number of weekly sessions.
// Running it again after appending the result yields nothing.
func GenerateFees(snap models.Snapshot, period models.Period, newID func() string) []models.Fee {
	billed := make(map[string]struct{}, len(snap.Fees))
	for _, fee := range snap.Fees {
		if fee.Period() == period {
			billed[fee.StudentID] = struct{}{}
		}
	}

	var fees []models.Fee
	for _, student := range snap.Students {
		if !student.IsActive() {
			continue
		}
		if _, ok := billed[student.ID]; ok {
			continue
		}
		fees = append(fees, models.Fee{
			ID:         newID(),
			StudentID:  student.ID,
			Month:      period.Month,
			Year:       period.Year,
			AmountOwed: PriceFor(snap.RateHistory, period, len(student.Schedule)),
		})
		billed[student.ID] = struct{}{}
	}
	return fees
}

package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// PendingGraceDay is the last day of the month an unpaid current fee is
// still considered pending rather than late.
const PendingGraceDay = 10

// DebtFor lists the student's under-paid periods, oldest first.
func DebtFor(snap models.Snapshot, studentID string) []models.Debt {
	paid := make(map[models.Period]decimal.Decimal)
	for _, payment := range snap.Payments {
		if payment.StudentID != studentID {
			continue
		}
		paid[payment.Period()] = paid[payment.Period()].Add(payment.Amount)
	}

	var debts []models.Debt
	for _, fee := range snap.Fees {
		if fee.StudentID != studentID {
			continue
		}
		p := paid[fee.Period()]
		if !p.LessThan(fee.AmountOwed) {
			continue
		}
		debts = append(debts, models.Debt{
			Month:   fee.Month,
			Year:    fee.Year,
			Owed:    fee.AmountOwed,
			Paid:    p,
			Balance: fee.AmountOwed.Sub(p),
		})
	}
	sort.SliceStable(debts, func(i, j int) bool {
		return debts[i].Period().Before(debts[j].Period())
	})
	return debts
}

// TotalDebt sums the outstanding balances.
func TotalDebt(debts []models.Debt) decimal.Decimal {
	total := decimal.Zero
	for _, d := range debts {
		total = total.Add(d.Balance)
	}
	return total
}

// StatusOf classifies the student's payment situation as of now.
func StatusOf(snap models.Snapshot, studentID string, now time.Time) models.PaymentStatus {
	return statusFromDebt(DebtFor(snap, studentID), now)
}

func statusFromDebt(debts []models.Debt, now time.Time) models.PaymentStatus {
	if len(debts) == 0 {
		return models.PaymentStatusPaid
	}
	current := models.PeriodOf(now)
	for _, d := range debts {
		if d.Period().Before(current) {
			return models.PaymentStatusDelinquent
		}
	}
	for _, d := range debts {
		if d.Period() != current {
			continue
		}
		if d.Paid.IsPositive() {
			return models.PaymentStatusDelinquent
		}
		if now.Day() <= PendingGraceDay {
			return models.PaymentStatusPending
		}
		return models.PaymentStatusDelinquent
	}
	return models.PaymentStatusPaid
}

// DelinquentStudent pairs a delinquent student with the total owed.
type DelinquentStudent struct {
	Student   models.Student
	Debts     []models.Debt
	TotalDebt decimal.Decimal
}

// Delinquents returns active delinquent students in roster order.
func Delinquents(snap models.Snapshot, now time.Time) []DelinquentStudent {
	var out []DelinquentStudent
	for _, student := range snap.Students {
		if !student.IsActive() {
			continue
		}
		debts := DebtFor(snap, student.ID)
		if statusFromDebt(debts, now) != models.PaymentStatusDelinquent {
			continue
		}
		out = append(out, DelinquentStudent{Student: student, Debts: debts, TotalDebt: TotalDebt(debts)})
	}
	return out
}

// TotalDelinquentDebt sums every balance owed by active delinquent students.
func TotalDelinquentDebt(snap models.Snapshot, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, d := range Delinquents(snap, now) {
		total = total.Add(d.TotalDebt)
	}
	return total
}

// AllocatePayment spreads amount over the selected debts oldest first, each
// share capped at the period's balance. Unselected periods are skipped and
// any remainder is returned.
func AllocatePayment(debts []models.Debt, selected []models.Period, amount decimal.Decimal) ([]models.Debt, decimal.Decimal) {
	wanted := make(map[models.Period]struct{}, len(selected))
	for _, p := range selected {
		wanted[p] = struct{}{}
	}

	remaining := amount
	var shares []models.Debt
	for _, d := range debts {
		if !remaining.IsPositive() {
			break
		}
		if _, ok := wanted[d.Period()]; !ok {
			continue
		}
		share := decimal.Min(remaining, d.Balance)
		if !share.IsPositive() {
			continue
		}
		shares = append(shares, models.Debt{Month: d.Month, Year: d.Year, Owed: d.Owed, Paid: share, Balance: d.Balance.Sub(share)})
		remaining = remaining.Sub(share)
	}
	return shares, remaining
}

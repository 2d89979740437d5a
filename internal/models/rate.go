package models

import "github.com/shopspring/decimal"

// MinTier and MaxTier bound the weekly-sessions pricing buckets.
const (
	MinTier = 1
	MaxTier = 5
)

// RateTable maps a tier (weekly sessions) to the monthly price.
type RateTable map[int]decimal.Decimal

// DefaultRates returns the built-in price table used when no history exists.
func DefaultRates() RateTable {
	return RateTable{
		1: decimal.NewFromInt(15000),
		2: decimal.NewFromInt(18000),
		3: decimal.NewFromInt(21000),
		4: decimal.NewFromInt(24000),
		5: decimal.NewFromInt(27000),
	}
}

// TierFor clamps a weekly session count into MinTier..MaxTier.
func TierFor(sessions int) int {
	if sessions < MinTier {
		return MinTier
	}
	if sessions > MaxTier {
		return MaxTier
	}
	return sessions
}

// Clone copies the table.
func (r RateTable) Clone() RateTable {
	out := make(RateTable, len(r))
	for tier, price := range r {
		out[tier] = price
	}
	return out
}

// TieredRateHistory is one override entry of the price log.
type TieredRateHistory struct {
	Month int       `json:"month"`
	Year  int       `json:"year"`
	Rates RateTable `json:"rates"`
}

// Period returns the period the override starts applying from.
func (h TieredRateHistory) Period() Period {
	return Period{Month: h.Month, Year: h.Year}
}

package service

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// RatesForPeriod resolves the price table in force for a period: the exact
// override when present, otherwise the most recent override before the
// period, otherwise the built-in defaults. The result never aliases history.
func RatesForPeriod(history []models.TieredRateHistory, month, year int) models.RateTable {
	target := models.Period{Month: month, Year: year}

	var closest *models.TieredRateHistory
	for i := range history {
		entry := &history[i]
		if entry.Period() == target {
			return entry.Rates.Clone()
		}
		if !entry.Period().Before(target) {
			continue
		}
		if closest == nil || closest.Period().Before(entry.Period()) {
			closest = entry
		}
	}
	if closest != nil {
		return closest.Rates.Clone()
	}
	return models.DefaultRates()
}

// PriceFor returns the monthly price for a weekly session count in a period.
// A tier missing from an override table falls back to the default price.
func PriceFor(history []models.TieredRateHistory, period models.Period, sessions int) decimal.Decimal {
	tier := models.TierFor(sessions)
	rates := RatesForPeriod(history, period.Month, period.Year)
	if price, ok := rates[tier]; ok {
		return price
	}
	return models.DefaultRates()[tier]
}

// upsertRateHistory returns the history with the period's entry replaced.
func upsertRateHistory(history []models.TieredRateHistory, entry models.TieredRateHistory) []models.TieredRateHistory {
	out := removeRateHistory(history, entry.Month, entry.Year)
	return append(out, models.TieredRateHistory{Month: entry.Month, Year: entry.Year, Rates: entry.Rates.Clone()})
}

func removeRateHistory(history []models.TieredRateHistory, month, year int) []models.TieredRateHistory {
	out := make([]models.TieredRateHistory, 0, len(history))
	for _, h := range history {
		if h.Month == month && h.Year == year {
			continue
		}
		out = append(out, h)
	}
	return out
}

// sortedRateHistory returns the history newest first, for listing.
func sortedRateHistory(history []models.TieredRateHistory) []models.TieredRateHistory {
	out := append([]models.TieredRateHistory(nil), history...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Period().Before(out[i].Period())
	})
	return out
}

func validateRates(rates models.RateTable) error {
	for tier := models.MinTier; tier <= models.MaxTier; tier++ {
		price, ok := rates[tier]
		if !ok {
			return validationError("rates must define tiers 1 to 5")
		}
		if price.IsNegative() {
			return validationError("rates cannot be negative")
		}
	}
	for tier := range rates {
		if tier < models.MinTier || tier > models.MaxTier {
			return validationError("rates only accept tiers 1 to 5")
		}
	}
	return nil
}

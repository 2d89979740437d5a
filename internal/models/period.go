package models

import (
	"fmt"
	"time"
)

// Period identifies one billing cycle. Month is 0-indexed (0 = January).
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// PeriodOf returns the billing period containing t, in t's location.
func PeriodOf(t time.Time) Period {
	return Period{Month: int(t.Month()) - 1, Year: t.Year()}
}

// Before reports whether p is strictly earlier than other in calendar order.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// Valid reports whether the month is within 0..11.
func (p Period) Valid() bool {
	return p.Month >= 0 && p.Month <= 11
}

// Previous returns the period one month earlier.
func (p Period) Previous() Period {
	if p.Month == 0 {
		return Period{Month: 11, Year: p.Year - 1}
	}
	return Period{Month: p.Month - 1, Year: p.Year}
}

// Start returns the first instant of the period in loc.
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.Year, time.Month(p.Month+1), 1, 0, 0, 0, 0, loc)
}

// Key renders the period as "m-yyyy", the selector format used by clients.
func (p Period) Key() string {
	return fmt.Sprintf("%d-%d", p.Month, p.Year)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month+1)
}

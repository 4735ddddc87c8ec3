package domain

import (
	"fmt"
	"math"
	"time"
)

// Policy holds the lending rules. It is injected into the core instead of living in model defaults,
// so deployments and tests can override any field.
type Policy struct {
	LoanDays                  int     `yaml:"loan_days"`
	RenewalDays               int     `yaml:"renewal_days"`
	MaxRenewals               int     `yaml:"max_renewals"`
	DailyFineRate             float64 `yaml:"daily_fine_rate"`
	ReservationDays           int     `yaml:"reservation_days"`
	MaxBooksAllowed           int     `yaml:"max_books_allowed"`
	NotifyOnBorrow            bool    `yaml:"notify_on_borrow"`
	AllowReserveWhenAvailable bool    `yaml:"allow_reserve_when_available"`
	EnforceHolds              bool    `yaml:"enforce_holds"`
}

// DefaultPolicy returns the stock lending rules
func DefaultPolicy() Policy {
	return Policy{
		LoanDays:                  14,
		RenewalDays:               14,
		MaxRenewals:               2,
		DailyFineRate:             1.00,
		ReservationDays:           7,
		MaxBooksAllowed:           5,
		NotifyOnBorrow:            false,
		AllowReserveWhenAvailable: false,
		EnforceHolds:              true,
	}
}

// Validate rejects policies that would break the lending invariants
func (p Policy) Validate() error {
	switch {
	case p.LoanDays <= 0:
		return fmt.Errorf("loan_days must be positive, got %d", p.LoanDays)
	case p.RenewalDays <= 0:
		return fmt.Errorf("renewal_days must be positive, got %d", p.RenewalDays)
	case p.MaxRenewals < 0:
		return fmt.Errorf("max_renewals must not be negative, got %d", p.MaxRenewals)
	case p.DailyFineRate < 0:
		return fmt.Errorf("daily_fine_rate must not be negative, got %.2f", p.DailyFineRate)
	case p.ReservationDays <= 0:
		return fmt.Errorf("reservation_days must be positive, got %d", p.ReservationDays)
	case p.MaxBooksAllowed < 0:
		return fmt.Errorf("max_books_allowed must not be negative, got %d", p.MaxBooksAllowed)
	}
	return nil
}

// Days converts a day count into a duration
func Days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// DaysOverdue is the number of whole days now is past due, 0 when not overdue
func DaysOverdue(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due) / (24 * time.Hour))
}

// Fine is days × rate rounded to cents
func Fine(daysOverdue int, dailyRate float64) float64 {
	if daysOverdue <= 0 || dailyRate <= 0 {
		return 0
	}
	return math.Round(float64(daysOverdue)*dailyRate*100) / 100
}

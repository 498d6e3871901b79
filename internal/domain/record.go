package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Record is a balance snapshot of one account at a point in time.
type Record struct {
	ID        string
	Date      time.Time
	AccountID string
	Balance   float64
	Currency  string
}

func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("record: empty id: %w", ErrValidation)
	}
	if strings.TrimSpace(r.AccountID) == "" {
		return fmt.Errorf("record %s: empty account id: %w", r.ID, ErrValidation)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("record %s: missing date: %w", r.ID, ErrValidation)
	}
	if math.IsNaN(r.Balance) || math.IsInf(r.Balance, 0) {
		return fmt.Errorf("record %s: balance is not a finite number: %w", r.ID, ErrValidation)
	}
	return nil
}

// Newer reports whether r should win over other when picking the most recent
// record of an account. Equal dates fall back to the higher id.
func (r Record) Newer(other Record) bool {
	if !r.Date.Equal(other.Date) {
		return r.Date.After(other.Date)
	}
	return r.ID > other.ID
}

package domain

import (
	"fmt"
	"strings"
)

type Account struct {
	ID          string
	Name        string
	CountryCode string
	LabelID     *string
}

// Validate checks the rules that do not need reference data or the store.
func (a Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("account: empty id: %w", ErrValidation)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("account %s: empty name: %w", a.ID, ErrValidation)
	}
	if a.LabelID != nil && strings.TrimSpace(*a.LabelID) == "" {
		return fmt.Errorf("account %s: empty label id: %w", a.ID, ErrValidation)
	}
	return nil
}

// HasLabel reports whether the account references a label.
func (a Account) HasLabel() bool {
	return a.LabelID != nil && *a.LabelID != ""
}

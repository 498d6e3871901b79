package domain

import (
	"fmt"
	"strings"
)

// Label is a free-form tag that accounts can point at.
type Label struct {
	ID          string
	Name        string
	Description string
}

func (l Label) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("label: empty id: %w", ErrValidation)
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("label %s: empty name: %w", l.ID, ErrValidation)
	}
	return nil
}

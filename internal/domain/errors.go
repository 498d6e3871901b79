package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this module wraps one of them.
var (
	ErrValidation      = errors.New("validation failed")
	ErrConnection      = errors.New("store unreachable")
	ErrStatement       = errors.New("statement failed")
	ErrExternalService = errors.New("external service failed")
	ErrNotFound        = errors.New("not found")
)

var (
	ErrUnknownCountry  = fmt.Errorf("%w: unknown country code", ErrValidation)
	ErrUnknownCurrency = fmt.Errorf("%w: unknown currency code", ErrValidation)
	ErrUnknownAccount  = fmt.Errorf("%w: unknown account", ErrValidation)
	ErrUnknownLabel    = fmt.Errorf("%w: unknown label", ErrValidation)
	ErrUnknownFilter   = fmt.Errorf("%w: unknown filter field", ErrValidation)
	ErrRateUnavailable = fmt.Errorf("%w: no exchange rate", ErrExternalService)
)

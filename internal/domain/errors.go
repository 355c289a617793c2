package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the gateway.

// ErrNotConfigured indicates required Supabase secrets are missing.
// It maps to a 500 with an instruction telling the operator what to set.
type ErrNotConfigured struct {
	Missing []string
}

func (e *ErrNotConfigured) Error() string {
	return "Configure " + strings.Join(e.Missing, " e ")
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrExternalService indicates a failure in a Supabase call. The underlying
// message is surfaced to the caller verbatim.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

package application

import (
	"errors"
	"fmt"

	"colljump/internal/domain"
)

// Sentinel errors for the failure taxonomy
var (
	ErrInvalidIdentifier   = domain.ErrInvalidIdentifier
	ErrNotFound            = errors.New("collection not found")
	ErrAllStrategiesFailed = errors.New("all selection strategies failed")
	ErrQueryFailed         = errors.New("catalog query failed")
	ErrStructural          = domain.ErrStructural
	ErrStrategyUnavailable = errors.New("strategy unavailable")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// QueryError reports a catalog query that could not be completed
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrQueryFailed
}

// StrategyError represents one selection strategy that threw or left the
// host in an unusable state
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// NotFoundError carries the identifier that failed to resolve
type NotFoundError struct {
	Identifier domain.Identifier
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("collection not found: %s %s", e.Identifier.Kind(), e.Identifier)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

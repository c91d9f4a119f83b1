package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the visitor tracking service

// ErrVisitorNotFound is returned when no visitor matches a cookie token
var ErrVisitorNotFound = errors.New("visitor not found")

// ErrSessionNotFound is returned when a visitor has no active session
var ErrSessionNotFound = errors.New("active session not found")

// ErrInvalidSQLParameter is returned when the ad-hoc query is missing or not a string
var ErrInvalidSQLParameter = errors.New("Invalid SQL parameter")

// ErrNonSelectQuery is returned when the ad-hoc query does not start with SELECT
var ErrNonSelectQuery = errors.New("Only SELECT queries are allowed")

// ErrQueryExecution wraps a failure raised by the database while running an ad-hoc query
type ErrQueryExecution struct {
	Cause error
}

func (e ErrQueryExecution) Error() string {
	return fmt.Sprintf("Query execution failed: %v", e.Cause)
}

func (e ErrQueryExecution) Unwrap() error {
	return e.Cause
}

// ErrConfigLoad is returned when configuration loading fails
type ErrConfigLoad struct {
	Path   string
	Reason string
}

func (e ErrConfigLoad) Error() string {
	return fmt.Sprintf("failed to load config from %s: %s", e.Path, e.Reason)
}

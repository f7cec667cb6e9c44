/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All payroll error types in one place. The calculation core has almost no
  error taxonomy: arithmetic over validated inputs either returns a value or
  fails with one of the client errors below. Outer layers (service, store,
  API) add not-found and conflict errors.

ERROR CATEGORIES:
  1. Validation errors - Malformed calendar periods, policies, inputs
  2. Lookup errors - Missing employees or payslips
  3. Conflict errors - A payslip already exists for the employee/period

  Currency mismatches are defined in package money and classified as client
  errors here.

SEE ALSO:
  - money/errors.go: ErrCurrencyMismatch
  - api/handlers.go: Maps these errors to HTTP status codes
*/
package payroll

import (
	"errors"
	"fmt"

	"github.com/warp/payroll-engine/money"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a calendar range violates
	// 1 <= startDay <= endDay <= daysInMonth.
	ErrInvalidPeriod = errors.New("invalid calendar period")

	// ErrInvalidPolicy is returned when a policy's constants are unusable.
	ErrInvalidPolicy = errors.New("invalid payroll policy")

	// ErrInvalidInput is returned for malformed generation requests.
	ErrInvalidInput = errors.New("invalid payroll input")

	ErrEmployeeNotFound = errors.New("employee not found")
	ErrPayslipNotFound  = errors.New("payslip not found")

	// ErrDuplicatePayslip is returned when a payslip already exists for the
	// same employee and pay period. Only one writer per period may succeed.
	ErrDuplicatePayslip = errors.New("payslip already exists for period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PeriodError describes an invalid calendar range.
type PeriodError struct {
	StartDay    int
	EndDay      int
	DaysInMonth int
	Reason      string
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("invalid period [%d, %d] of %d days: %s",
		e.StartDay, e.EndDay, e.DaysInMonth, e.Reason)
}

func (e *PeriodError) Unwrap() error {
	return ErrInvalidPeriod
}

// PolicyError names the offending policy field.
type PolicyError struct {
	Field  string
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("invalid policy: %s %s", e.Field, e.Reason)
}

func (e *PolicyError) Unwrap() error {
	return ErrInvalidPolicy
}

// DuplicatePayslipError identifies the payslip that already owns the period.
type DuplicatePayslipError struct {
	EmployeeID EmployeeID
	Period     string
	ExistingID PayslipID
}

func (e *DuplicatePayslipError) Error() string {
	return fmt.Sprintf("payslip already exists: employee %s period %s (payslip: %s)",
		e.EmployeeID, e.Period, e.ExistingID)
}

func (e *DuplicatePayslipError) Unwrap() error {
	return ErrDuplicatePayslip
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidPolicy) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, money.ErrCurrencyMismatch)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrPayslipNotFound)
}

// IsConflict returns true if the error is a single-writer-per-period violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicatePayslip)
}

package policy

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Agihtaws/OpenShelf-sub001/circulation/core"
)

const (
	maxRenewals = 3

	renewalWindowDays      = 10
	finalRenewalWindowDays = 5

	defaultLoanPeriod       = 14 * 24 * time.Hour
	defaultHoldPickupPeriod = 7 * 24 * time.Hour

	day = 24 * time.Hour
)

var (
	// ErrNonPositiveLoanPeriod is returned by Validate when the loan period is not positive.
	ErrNonPositiveLoanPeriod = errors.New("loan period must be positive")

	// ErrNonPositiveHoldPickupPeriod is returned by Validate when the hold pickup period is not positive.
	ErrNonPositiveHoldPickupPeriod = errors.New("hold pickup period must be positive")

	// ErrNegativeLateFee is returned by Validate when the daily late fee or the cap is negative.
	ErrNegativeLateFee = errors.New("late fee must not be negative")
)

// Policy carries the tunable circulation rules. The renewal limit and windows are fixed.
type Policy struct {
	LoanPeriod       time.Duration
	HoldPickupPeriod time.Duration
	LateFeePerDay    decimal.Decimal
	LateFeeCap       decimal.Decimal // zero means uncapped
}

// Default returns the house rules: 14 day loans, 7 days to pick up a hold, 0.25 per started
// overdue day capped at 10.00.
func Default() Policy {
	return Policy{
		LoanPeriod:       defaultLoanPeriod,
		HoldPickupPeriod: defaultHoldPickupPeriod,
		LateFeePerDay:    decimal.RequireFromString("0.25"),
		LateFeeCap:       decimal.RequireFromString("10.00"),
	}
}

// Validate reports every broken rule at once.
func (p Policy) Validate() error {
	var errs []error

	if p.LoanPeriod <= 0 {
		errs = append(errs, ErrNonPositiveLoanPeriod)
	}

	if p.HoldPickupPeriod <= 0 {
		errs = append(errs, ErrNonPositiveHoldPickupPeriod)
	}

	if p.LateFeePerDay.IsNegative() || p.LateFeeCap.IsNegative() {
		errs = append(errs, ErrNegativeLateFee)
	}

	return errors.Join(errs...)
}

// MaxRenewals is how often a loan can be renewed.
func MaxRenewals() int {
	return maxRenewals
}

// RenewalWindow returns how many days past the current due date a loan that was already renewed
// renewalCount times may be extended.
func RenewalWindow(renewalCount int) int {
	if renewalCount < 2 {
		return renewalWindowDays
	}

	return finalRenewalWindowDays
}

// DueDate is the due date of a loan that starts at borrowedAt.
func (p Policy) DueDate(borrowedAt time.Time) time.Time {
	return borrowedAt.Add(p.LoanPeriod)
}

// HoldExpiryDeadline returns requested if set, otherwise reservedAt plus the pickup period.
func (p Policy) HoldExpiryDeadline(reservedAt time.Time, requested time.Time) time.Time {
	if !requested.IsZero() {
		return requested
	}

	return reservedAt.Add(p.HoldPickupPeriod)
}

// CheckRenewal validates a renewal request and returns the new due date.
// A zero requested date asks for the latest date the window allows.
func CheckRenewal(renewalCount int, currentDueDate time.Time, requested time.Time) (time.Time, error) {
	if renewalCount >= maxRenewals {
		return time.Time{}, core.ErrRenewalLimitExceeded
	}

	latest := currentDueDate.AddDate(0, 0, RenewalWindow(renewalCount))

	if requested.IsZero() {
		return latest, nil
	}

	if requested.Before(currentDueDate) || requested.After(latest) {
		return time.Time{}, core.ErrRenewalWindowExceeded
	}

	return requested, nil
}

// LateFee charges LateFeePerDay for every started day between dueDate and returnedAt,
// capped at LateFeeCap. Returning on or before the due date is free.
func (p Policy) LateFee(dueDate time.Time, returnedAt time.Time) decimal.Decimal {
	if !returnedAt.After(dueDate) {
		return decimal.Zero
	}

	overdue := returnedAt.Sub(dueDate)
	days := int64(overdue / day)
	if overdue%day != 0 {
		days++
	}

	fee := p.LateFeePerDay.Mul(decimal.NewFromInt(days))
	if p.LateFeeCap.IsPositive() && fee.GreaterThan(p.LateFeeCap) {
		return p.LateFeeCap
	}

	return fee
}

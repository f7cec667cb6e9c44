package payroll

import (
	"fmt"
	"time"
)

// =============================================================================
// CALENDAR PERIOD - The worked sub-range of one month
// =============================================================================

// CalendarPeriod is the (startDay, endDay, daysInMonth) triple pro-ration
// works on. Invariant: 1 <= StartDay <= EndDay <= DaysInMonth.
type CalendarPeriod struct {
	StartDay    int `json:"start_day"`
	EndDay      int `json:"end_day"`
	DaysInMonth int `json:"days_in_month"`
}

// Validate checks the range invariant.
func (p CalendarPeriod) Validate() error {
	switch {
	case p.DaysInMonth < 1:
		return &PeriodError{p.StartDay, p.EndDay, p.DaysInMonth, "month has no days"}
	case p.StartDay < 1:
		return &PeriodError{p.StartDay, p.EndDay, p.DaysInMonth, "start day before first day of month"}
	case p.EndDay > p.DaysInMonth:
		return &PeriodError{p.StartDay, p.EndDay, p.DaysInMonth, "end day after last day of month"}
	case p.StartDay > p.EndDay:
		return &PeriodError{p.StartDay, p.EndDay, p.DaysInMonth, "start day after end day"}
	}
	return nil
}

// IsFullMonth reports whether the range spans the whole calendar month.
func (p CalendarPeriod) IsFullMonth() bool {
	return p.StartDay == 1 && p.EndDay == p.DaysInMonth
}

// DaysWorked is the inclusive length of the range.
func (p CalendarPeriod) DaysWorked() int {
	return p.EndDay - p.StartDay + 1
}

// =============================================================================
// PAY PERIOD - A calendar month, optionally partial
// =============================================================================

// PayPeriod identifies the month a payslip covers. Zero StartDay/EndDay
// default to the first/last day of the month.
type PayPeriod struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	StartDay int        `json:"start_day,omitempty"`
	EndDay   int        `json:"end_day,omitempty"`
}

// FullMonth returns the pay period covering all of year/month.
func FullMonth(year int, month time.Month) PayPeriod {
	return PayPeriod{Year: year, Month: month}
}

// DaysInMonth returns the real day count of the month (28, 29, 30 or 31).
func (p PayPeriod) DaysInMonth() int {
	return DaysIn(p.Year, p.Month)
}

// Calendar resolves defaults and returns the worked range.
func (p PayPeriod) Calendar() CalendarPeriod {
	cp := CalendarPeriod{StartDay: p.StartDay, EndDay: p.EndDay, DaysInMonth: p.DaysInMonth()}
	if cp.StartDay == 0 {
		cp.StartDay = 1
	}
	if cp.EndDay == 0 {
		cp.EndDay = cp.DaysInMonth
	}
	return cp
}

func (p PayPeriod) Validate() error {
	if p.Year < 1 || p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("%w: year %d month %d", ErrInvalidPeriod, p.Year, p.Month)
	}
	return p.Calendar().Validate()
}

// Key is the month identifier used for the single-writer-per-period rule.
func (p PayPeriod) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p PayPeriod) Start() time.Time {
	return time.Date(p.Year, p.Month, p.Calendar().StartDay, 0, 0, 0, 0, time.UTC)
}

func (p PayPeriod) End() time.Time {
	return time.Date(p.Year, p.Month, p.Calendar().EndDay, 0, 0, 0, 0, time.UTC)
}

func (p PayPeriod) String() string {
	return "[" + p.Start().Format("2006-01-02") + ", " + p.End().Format("2006-01-02") + "]"
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
}

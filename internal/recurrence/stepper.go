// Package recurrence projects recurring obligations onto date windows.
//
// This file implements the frequency stepper: a pure mapping from
// (date, frequency, direction) to the next or previous occurrence date,
// with month-length clamping for month-based frequencies.
package recurrence

import (
	"scadenze/internal/core"
)

// StepDirection selects forward or backward stepping.
type StepDirection int

const (
	Forward  StepDirection = 1
	Backward StepDirection = -1
)

// stepDelta is the calendar offset of one frequency period. Exactly one
// of days/months is non-zero.
type stepDelta struct {
	days   int
	months int
}

// Biweekly is a literal +15-day offset, not "same weekday every two
// weeks". Stored data relies on that semantic.
var frequencyDeltas = map[core.Frequency]stepDelta{
	core.Daily:      {days: 1},
	core.Weekly:     {days: 7},
	core.Biweekly:   {days: 15},
	core.Monthly:    {months: 1},
	core.Bimonthly:  {months: 2},
	core.Quarterly:  {months: 3},
	core.Semiannual: {months: 6},
	core.Yearly:     {months: 12},
}

// Step returns the date one frequency period away from d, pure and total.
// Month and year arithmetic clamps: when the source day-of-month does not
// exist in the target month (Jan 31 + 1 month), the result is the last
// valid day of the target month. Unrecognized frequencies step monthly.
func Step(d core.Date, f core.Frequency, dir StepDirection) core.Date {
	delta, ok := frequencyDeltas[f]
	if !ok {
		delta = frequencyDeltas[core.Monthly]
	}
	if delta.days != 0 {
		return d.AddDays(delta.days * int(dir))
	}
	return addMonthsClamped(d, delta.months*int(dir))
}

// delta returns the stepDelta for a frequency, falling back to monthly.
func delta(f core.Frequency) stepDelta {
	if d, ok := frequencyDeltas[f]; ok {
		return d
	}
	return frequencyDeltas[core.Monthly]
}

// addMonthsClamped shifts by whole months without the day-overflow
// normalization of time.AddDate (which would turn Jan 31 + 1 month into
// Mar 2/3 instead of the end of February).
func addMonthsClamped(d core.Date, months int) core.Date {
	total := d.Year()*12 + (d.Month() - 1) + months
	year := total / 12
	month := total%12 + 1
	return core.NewDate(year, month, core.ClampDay(year, month, d.Day()))
}

// monthsBetween returns the whole-month distance from a to b, ignoring
// days. Negative when b precedes a's month.
func monthsBetween(a, b core.Date) int {
	return (b.Year()-a.Year())*12 + (b.Month() - a.Month())
}

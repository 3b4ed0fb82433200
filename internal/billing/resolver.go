// Package billing computes credit-card statement cycles: period
// boundaries, due dates, totals and status. Everything here is pure; the
// services layer supplies the data and owns persistence.
package billing

import (
	"scadenze/internal/core"
)

// DueDate returns the payment date for the statement closing in
// month/year. The due date always falls in the following calendar month,
// clamped to its last day when dueDay does not exist there.
func DueDate(month, year, dueDay int) core.Date {
	m, y := month+1, year
	if m > 12 {
		m = 1
		y++
	}
	return core.NewDate(y, m, core.ClampDay(y, m, dueDay))
}

// Period returns the statement boundaries for month/year: the day after
// the closing day of the previous month through the closing day of the
// target month, both clamped to month length.
func Period(month, year, closingDay int) (start, end core.Date) {
	pm, py := month-1, year
	if pm < 1 {
		pm = 12
		py--
	}
	start = core.NewDate(py, pm, core.ClampDay(py, pm, closingDay)).AddDays(1)
	end = core.NewDate(year, month, core.ClampDay(year, month, closingDay))
	return start, end
}

// ActiveCycle returns the (month, year) of the cycle currently
// accumulating charges: the present month while today has not passed the
// closing day, the next month afterwards.
func ActiveCycle(today core.Date, closingDay int) (month, year int) {
	if today.Day() <= closingDay {
		return today.Month(), today.Year()
	}
	m, y := today.Month()+1, today.Year()
	if m > 12 {
		m = 1
		y++
	}
	return m, y
}

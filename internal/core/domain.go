package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily      Frequency = "daily"
	Weekly     Frequency = "weekly"
	Biweekly   Frequency = "biweekly"
	Monthly    Frequency = "monthly"
	Bimonthly  Frequency = "bimonthly"
	Quarterly  Frequency = "quarterly"
	Semiannual Frequency = "semiannual"
	Yearly     Frequency = "yearly"
)

const (
	In  Direction = "in"
	Out Direction = "out"
)

const (
	StatusOpen   CycleStatus = "open"
	StatusClosed CycleStatus = "closed"
	StatusPaid   CycleStatus = "paid"
)

type (
	Frequency   string
	Direction   string
	CycleStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// RecurringObligation is a template for a repeating cash flow
	// (subscription, rent, salary). The engine treats it as read-only
	// input; creation and editing live elsewhere.
	RecurringObligation struct {
		ID          int64
		Description string
		Amount      Money
		Direction   Direction
		Frequency   Frequency
		StartDate   Date
		EndDate     Date // zero means open-ended
		AnchorDate  Date // stored "next due" reference for projections
		Active      bool
	}

	// Occurrence is one concrete dated instance of an obligation inside a
	// queried window. Never persisted; recomputed on every query.
	Occurrence struct {
		ObligationID int64
		Date         Date
		Amount       Money
		Direction    Direction
	}

	// CardBillingProfile holds the two day-of-month anchors that define a
	// card's statement cycles.
	CardBillingProfile struct {
		CardID     int64
		ClosingDay int
		DueDay     int
	}

	// BillingCycle is the resolved statement for one (card, month, year).
	// Recomputed on demand, never stored by the engine.
	BillingCycle struct {
		CardID       int64
		Month        int
		Year         int
		PeriodStart  Date
		PeriodEnd    Date
		DueDate      Date
		Status       CycleStatus
		Processed    Money
		Pending      Money
		Total        Money
		DaysUntilDue int
	}

	// Parcel is one installment of a multi-installment purchase.
	Parcel struct {
		ID                int64
		CardID            int64
		ParentPurchaseID  int64
		InstallmentIndex  int
		TotalInstallments int
		DueDate           Date
		Amount            Money
		Paid              bool
	}

	// CardTransaction is a raw charge on a card. Amount may be negative
	// for refunds; aggregation sums absolute values.
	CardTransaction struct {
		ID          int64
		CardID      int64
		Date        Date
		Description string
		Amount      Money
	}
)

var (
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyDescription     = errors.New("empty description")
	ErrInvalidFrequency     = errors.New("invalid frequency")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrEndBeforeStart       = errors.New("end date before start date")
	ErrClosingDayOutOfRange = errors.New("closing day out of range")
	ErrDueDayOutOfRange     = errors.New("due day out of range")
	ErrInvalidInstallment   = errors.New("invalid installment")
	ErrCycleAlreadyPaid     = errors.New("cycle already paid")
	ErrObligationNotFound   = errors.New("obligation not found")
	ErrCardNotFound         = errors.New("card not found")
)

// NewDate creates a Date at UTC midnight. All engine dates are day
// resolution; comparisons rely on every Date being normalized this way.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// AddDays returns the date shifted by n calendar days (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysUntil returns the signed day difference o-d. Negative means o is
// already in the past relative to d.
func (d Date) DaysUntil(o Date) int {
	return int(o.Time.Sub(d.Time).Hours() / 24)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay substitutes the last valid day of the month when the nominal
// day does not exist there (e.g. day 31 in February).
func ClampDay(year, month, day int) int {
	if last := DaysInMonth(year, month); day > last {
		return last
	}
	return day
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Bimonthly, Quarterly, Semiannual, Yearly:
		return true
	}
	return false
}

func (d Direction) Valid() bool {
	return d == In || d == Out
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (ob RecurringObligation) Validate() error {
	if err := ob.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if err := ob.AnchorDate.Validate(); err != nil {
		return errors.New("invalid anchor date: " + err.Error())
	}

	if !ob.EndDate.IsZero() {
		if err := ob.EndDate.Validate(); err != nil {
			return errors.New("invalid end date: " + err.Error())
		}
		if ob.EndDate.Before(ob.StartDate.Time) {
			return ErrEndBeforeStart
		}
	}

	if !ob.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if !ob.Direction.Valid() {
		return ErrInvalidDirection
	}

	if len(strings.TrimSpace(ob.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(ob.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}

	return ob.Amount.Validate()
}

// Validate checks the day-of-month anchors. Out-of-range values are
// rejected here, before they ever reach cycle resolution.
func (p CardBillingProfile) Validate() error {
	if p.ClosingDay < 1 || p.ClosingDay > 31 {
		return ErrClosingDayOutOfRange
	}
	if p.DueDay < 1 || p.DueDay > 31 {
		return ErrDueDayOutOfRange
	}
	return nil
}

func (p Parcel) Validate() error {
	if p.TotalInstallments < 1 || p.InstallmentIndex < 1 || p.InstallmentIndex > p.TotalInstallments {
		return ErrInvalidInstallment
	}
	if err := p.DueDate.Validate(); err != nil {
		return errors.New("invalid due date: " + err.Error())
	}
	return p.Amount.Validate()
}

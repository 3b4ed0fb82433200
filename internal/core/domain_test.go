package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 2, 29}, // leap year
		{2025, 2, 28},
		{2024, 1, 31},
		{2024, 4, 30},
		{2024, 12, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestClampDay(t *testing.T) {
	if got := ClampDay(2024, 2, 31); got != 29 {
		t.Errorf("ClampDay(2024, 2, 31) = %d, want 29", got)
	}
	if got := ClampDay(2025, 2, 31); got != 28 {
		t.Errorf("ClampDay(2025, 2, 31) = %d, want 28", got)
	}
	if got := ClampDay(2024, 3, 15); got != 15 {
		t.Errorf("ClampDay(2024, 3, 15) = %d, want 15", got)
	}
}

func TestDaysUntil(t *testing.T) {
	cases := []struct {
		from, to Date
		want     int
	}{
		{NewDate(2024, 3, 5), NewDate(2024, 3, 10), 5},
		{NewDate(2024, 4, 11), NewDate(2024, 4, 10), -1},
		{NewDate(2024, 3, 26), NewDate(2024, 4, 10), 15},
		{NewDate(2024, 2, 28), NewDate(2024, 3, 1), 2}, // across leap day
	}
	for i, tc := range cases {
		if got := tc.from.DaysUntil(tc.to); got != tc.want {
			t.Errorf("case %d: DaysUntil = %d, want %d", i, got, tc.want)
		}
	}
}

func TestRecurringObligationValidate(t *testing.T) {
	good := RecurringObligation{
		ID:          1,
		Description: "rent",
		Amount:      Money{Cents: 90000},
		Direction:   Out,
		Frequency:   Monthly,
		StartDate:   NewDate(2024, 1, 15),
		AnchorDate:  NewDate(2024, 1, 15),
		Active:      true,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		name   string
		mutate func(*RecurringObligation)
	}{
		{"zero start", func(ob *RecurringObligation) { ob.StartDate = Date{} }},
		{"zero anchor", func(ob *RecurringObligation) { ob.AnchorDate = Date{} }},
		{"end before start", func(ob *RecurringObligation) { ob.EndDate = NewDate(2024, 1, 1) }},
		{"unknown frequency", func(ob *RecurringObligation) { ob.Frequency = "fortnightly-ish" }},
		{"unknown direction", func(ob *RecurringObligation) { ob.Direction = "sideways" }},
		{"empty description", func(ob *RecurringObligation) { ob.Description = "  " }},
		{"zero amount", func(ob *RecurringObligation) { ob.Amount = Money{} }},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			ob := good
			tc.mutate(&ob)
			if err := ob.Validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	// end date equal to start date is allowed
	ob := good
	ob.EndDate = ob.StartDate
	if err := ob.Validate(); err != nil {
		t.Fatalf("end == start should be valid, got %v", err)
	}
}

func TestCardBillingProfileValidate(t *testing.T) {
	cases := []struct {
		name    string
		profile CardBillingProfile
		wantErr error
	}{
		{"valid", CardBillingProfile{CardID: 1, ClosingDay: 25, DueDay: 10}, nil},
		{"boundary days", CardBillingProfile{CardID: 1, ClosingDay: 1, DueDay: 31}, nil},
		{"closing too low", CardBillingProfile{CardID: 1, ClosingDay: 0, DueDay: 10}, ErrClosingDayOutOfRange},
		{"closing too high", CardBillingProfile{CardID: 1, ClosingDay: 32, DueDay: 10}, ErrClosingDayOutOfRange},
		{"due too low", CardBillingProfile{CardID: 1, ClosingDay: 25, DueDay: 0}, ErrDueDayOutOfRange},
		{"due too high", CardBillingProfile{CardID: 1, ClosingDay: 25, DueDay: 99}, ErrDueDayOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.profile.Validate(); err != tc.wantErr {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestParcelValidate(t *testing.T) {
	good := Parcel{
		ParentPurchaseID:  7,
		InstallmentIndex:  2,
		TotalInstallments: 6,
		DueDate:           NewDate(2024, 5, 10),
		Amount:            Money{Cents: 5000},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := good
	bad.InstallmentIndex = 7
	if err := bad.Validate(); err != ErrInvalidInstallment {
		t.Fatalf("index past total: got %v", err)
	}

	bad = good
	bad.TotalInstallments = 0
	if err := bad.Validate(); err != ErrInvalidInstallment {
		t.Fatalf("zero total: got %v", err)
	}
}

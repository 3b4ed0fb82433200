package billing

import (
	"scadenze/internal/core"
	"testing"
)

func TestDueDate(t *testing.T) {
	cases := []struct {
		name        string
		month, year int
		dueDay      int
		want        core.Date
	}{
		{"plain following month", 3, 2024, 10, core.NewDate(2024, 4, 10)},
		{"clamped to leap february", 1, 2024, 31, core.NewDate(2024, 2, 29)},
		{"clamped to non-leap february", 1, 2025, 30, core.NewDate(2025, 2, 28)},
		{"december rolls into next year", 12, 2024, 5, core.NewDate(2025, 1, 5)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DueDate(tc.month, tc.year, tc.dueDay)
			if !got.Equal(tc.want.Time) {
				t.Errorf("DueDate(%d, %d, %d) = %v, want %v", tc.month, tc.year, tc.dueDay, got, tc.want)
			}
		})
	}
}

func TestPeriod(t *testing.T) {
	cases := []struct {
		name        string
		month, year int
		closingDay  int
		wantStart   core.Date
		wantEnd     core.Date
	}{
		{"mid-month closing", 3, 2024, 25, core.NewDate(2024, 2, 26), core.NewDate(2024, 3, 25)},
		{"day 31 closing into february", 2, 2024, 31, core.NewDate(2024, 2, 1), core.NewDate(2024, 2, 29)},
		{"day 31 closing out of february", 3, 2024, 31, core.NewDate(2024, 3, 1), core.NewDate(2024, 3, 31)},
		{"january reaches into previous year", 1, 2024, 20, core.NewDate(2023, 12, 21), core.NewDate(2024, 1, 20)},
		{"day 1 closing", 3, 2024, 1, core.NewDate(2024, 2, 2), core.NewDate(2024, 3, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := Period(tc.month, tc.year, tc.closingDay)
			if !start.Equal(tc.wantStart.Time) || !end.Equal(tc.wantEnd.Time) {
				t.Errorf("Period(%d, %d, %d) = [%v, %v], want [%v, %v]",
					tc.month, tc.year, tc.closingDay, start, end, tc.wantStart, tc.wantEnd)
			}
			if start.After(end.Time) {
				t.Errorf("period start %v after end %v", start, end)
			}
		})
	}
}

// The due date always lands strictly after the period it closes.
func TestDueDateFollowsPeriodEnd(t *testing.T) {
	for _, closing := range []int{1, 15, 28, 31} {
		for _, due := range []int{1, 10, 31} {
			_, end := Period(2, 2024, closing)
			d := DueDate(2, 2024, due)
			if !d.After(end.Time) {
				t.Errorf("closing %d due %d: due date %v not after period end %v", closing, due, d, end)
			}
		}
	}
}

func TestActiveCycle(t *testing.T) {
	cases := []struct {
		name       string
		today      core.Date
		closingDay int
		wantMonth  int
		wantYear   int
	}{
		{"before closing day", core.NewDate(2024, 3, 10), 25, 3, 2024},
		{"on closing day", core.NewDate(2024, 3, 25), 25, 3, 2024},
		{"after closing day", core.NewDate(2024, 3, 26), 25, 4, 2024},
		{"december rollover", core.NewDate(2024, 12, 28), 25, 1, 2025},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			month, year := ActiveCycle(tc.today, tc.closingDay)
			if month != tc.wantMonth || year != tc.wantYear {
				t.Errorf("ActiveCycle(%v, %d) = (%d, %d), want (%d, %d)",
					tc.today, tc.closingDay, month, year, tc.wantMonth, tc.wantYear)
			}
		})
	}
}

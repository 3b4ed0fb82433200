package billing

import (
	"scadenze/internal/core"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		today      core.Date
		dueDate    core.Date
		closingDay int
		paid       bool
		wantStatus core.CycleStatus
		wantDays   int
	}{
		{
			name:       "open before closing day",
			today:      core.NewDate(2024, 3, 5),
			dueDate:    core.NewDate(2024, 3, 10),
			closingDay: 25,
			wantStatus: core.StatusOpen,
			wantDays:   5,
		},
		{
			name:       "closed after closing day awaiting due date",
			today:      core.NewDate(2024, 3, 26),
			dueDate:    core.NewDate(2024, 4, 10),
			closingDay: 25,
			wantStatus: core.StatusClosed,
			wantDays:   15,
		},
		{
			name:       "closed when overdue",
			today:      core.NewDate(2024, 4, 11),
			dueDate:    core.NewDate(2024, 4, 10),
			closingDay: 25,
			wantStatus: core.StatusClosed,
			wantDays:   -1,
		},
		{
			name:       "paid flag wins over every date rule",
			today:      core.NewDate(2024, 4, 11),
			dueDate:    core.NewDate(2024, 4, 10),
			closingDay: 25,
			paid:       true,
			wantStatus: core.StatusPaid,
			wantDays:   -1,
		},
		{
			name:       "open exactly on closing day",
			today:      core.NewDate(2024, 3, 25),
			dueDate:    core.NewDate(2024, 4, 10),
			closingDay: 25,
			wantStatus: core.StatusOpen,
			wantDays:   16,
		},
		{
			name:       "due date itself is not overdue",
			today:      core.NewDate(2024, 4, 10),
			dueDate:    core.NewDate(2024, 4, 10),
			closingDay: 25,
			wantStatus: core.StatusOpen,
			wantDays:   0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, days := Classify(tc.today, tc.dueDate, tc.closingDay, tc.paid)
			if status != tc.wantStatus || days != tc.wantDays {
				t.Errorf("Classify = (%s, %d), want (%s, %d)", status, days, tc.wantStatus, tc.wantDays)
			}
		})
	}
}

func TestPayTransition(t *testing.T) {
	status, err := Pay(core.StatusClosed)
	if err != nil || status != core.StatusPaid {
		t.Fatalf("pay closed cycle: got (%s, %v)", status, err)
	}

	status, err = Pay(core.StatusOpen)
	if err != nil || status != core.StatusPaid {
		t.Fatalf("pay open cycle: got (%s, %v)", status, err)
	}

	// paying twice is a no-op failure, never a silent success
	status, err = Pay(core.StatusPaid)
	if err != core.ErrCycleAlreadyPaid {
		t.Fatalf("second pay: got err %v, want ErrCycleAlreadyPaid", err)
	}
	if status != core.StatusPaid {
		t.Fatalf("second pay must not revert status, got %s", status)
	}
}

package recurrence

import (
	"scadenze/internal/core"
)

// maxSteps caps every stepping loop. Malformed data degrades to a
// partial (possibly empty) projection instead of looping forever.
const maxSteps = 100

// Project returns the occurrences of an obligation inside
// [winStart, winEnd], in ascending date order. Pure and deterministic:
// identical inputs always produce the identical list. It never fails;
// inactive obligations, missing dates and disjoint windows all project
// to an empty result.
func Project(ob core.RecurringObligation, winStart, winEnd core.Date) []core.Occurrence {
	if !ob.Active {
		return nil
	}
	// Missing anchor or start date is a data problem upstream; the
	// projection degrades to empty so the calendar stays renderable.
	if ob.AnchorDate.IsZero() || ob.StartDate.IsZero() {
		return nil
	}
	if ob.StartDate.After(winEnd.Time) {
		return nil
	}
	if !ob.EndDate.IsZero() && ob.EndDate.Before(winStart.Time) {
		return nil
	}

	anchor, ok := resync(ob, winStart, winEnd)
	if !ok {
		return nil
	}

	var out []core.Occurrence
	d := anchor
	for i := 0; i < maxSteps; i++ {
		if d.After(winEnd.Time) {
			break
		}
		if !ob.EndDate.IsZero() && d.After(ob.EndDate.Time) {
			break
		}
		if !d.Before(winStart.Time) && !d.Before(ob.StartDate.Time) {
			out = append(out, core.Occurrence{
				ObligationID: ob.ID,
				Date:         d,
				Amount:       ob.Amount,
				Direction:    ob.Direction,
			})
		}
		d = Step(d, ob.Frequency, Forward)
	}
	return out
}

// resync moves the stored anchor into (or just before) the query window.
// Both loops share the maxSteps bound.
func resync(ob core.RecurringObligation, winStart, winEnd core.Date) (core.Date, bool) {
	anchor := ob.AnchorDate
	switch {
	case anchor.After(winEnd.Time):
		for i := 0; i < maxSteps && anchor.After(winEnd.Time); i++ {
			prev := Step(anchor, ob.Frequency, Backward)
			if prev.Before(ob.StartDate.Time) {
				// Stepping back any further would cross the obligation's
				// start date; nothing can land inside the window.
				return core.Date{}, false
			}
			anchor = prev
		}
	case anchor.Before(winStart.Time):
		anchor = fastForward(anchor, ob.Frequency, winStart)
		for i := 0; i < maxSteps && anchor.Before(winStart.Time); i++ {
			anchor = Step(anchor, ob.Frequency, Forward)
		}
	}
	return anchor, true
}

// fastForward jumps the anchor close to the window start in O(1) for
// fixed-length frequencies, leaving at most a handful of iterations for
// the bounded loop. Month-based jumps are taken only while the anchor
// day exists in every month (day <= 28); above that, clamping makes
// repeated stepping path-dependent and the loop stays authoritative.
func fastForward(anchor core.Date, f core.Frequency, winStart core.Date) core.Date {
	d := delta(f)
	if d.days != 0 {
		gap := anchor.DaysUntil(winStart)
		if n := gap / d.days; n > 0 {
			return anchor.AddDays(n * d.days)
		}
		return anchor
	}
	if anchor.Day() > 28 {
		return anchor
	}
	gap := monthsBetween(anchor, winStart)
	if n := (gap - 1) / d.months; n > 0 {
		return addMonthsClamped(anchor, n*d.months)
	}
	return anchor
}

// Package boundary implements the time-boundary splitter: fragmenting a
// record descriptor whenever it straddles a chosen wall-clock boundary.
package boundary

import (
	"time"

	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/record"
)

// Mode selects the wall-clock granularity records are split on.
type Mode int

const (
	// ModeNone disables splitting.
	ModeNone Mode = iota
	ModeDay
	ModeHour
	ModeMinute
)

// nextBoundary computes the boundary strictly greater than t for mode,
// by taking t's broken-down form, incrementing the relevant field, and
// zeroing finer fields.
func nextBoundary(t time.Time, mode Mode) time.Time {
	switch mode {
	case ModeDay:
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	case ModeHour:
		y, m, d := t.Date()
		base := time.Date(y, m, d, t.Hour(), 0, 0, 0, time.UTC)
		return base.Add(time.Hour)
	case ModeMinute:
		y, m, d := t.Date()
		base := time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC)
		return base.Add(time.Minute)
	default:
		return t
	}
}

// Apply splits the descriptor at h across every boundary its span crosses,
// chaining sibling fragments into rm immediately after their predecessor.
// sampleRate supplies the sample period used to set the outgoing
// fragment's NewEnd one period short of the boundary. Returns the number
// of splits performed.
func Apply(rm *record.Map, h record.Handle, sampleRate float64, mode Mode) int {
	if mode == ModeNone {
		return 0
	}

	period := core.SamplePeriodTicks(sampleRate)
	splits := 0
	cur := h

	for {
		d := rm.Get(cur)
		boundary := core.FromTime(nextBoundary(core.ToTime(d.EffectiveStart()), mode))

		if boundary >= d.End {
			break
		}

		newEnd := boundary - period
		if newEnd <= d.EffectiveStart() {
			// The remaining span before the boundary is empty; nothing to split off.
			break
		}

		// The sibling keeps d's original tail trim mark (if any); an
		// earlier NewEnd only applies once this becomes the final fragment.
		sibling := *d
		sibling.NewStart = boundary

		rm.SetNewEnd(cur, newEnd)
		next := rm.InsertAfter(cur, sibling)

		if d.File != nil {
			d.File.RecsSplit++
		}
		splits++
		cur = next
	}

	return splits
}

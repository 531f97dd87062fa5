package boundary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/record"
)

func TestApply_SplitsAcrossDayBoundary(t *testing.T) {
	rate := 1.0
	period := core.SamplePeriodTicks(rate)

	dayStart := time.Date(2026, 8, 5, 23, 59, 58, 0, time.UTC)
	start := core.FromTime(dayStart)
	end := start + period*4 // spans into 2026-08-06

	f := record.NewFile("t.mseed")
	rm := record.NewMap()
	h := rm.AppendTail(record.Descriptor{File: f, Length: 512, Start: start, End: end})

	splits := Apply(rm, h, rate, ModeDay)

	require.Equal(t, 1, splits)
	assert.Equal(t, 1, f.RecsSplit)

	d := rm.Get(h)
	nxt, ok := rm.Next(h)
	require.True(t, ok)
	sibling := rm.Get(nxt)

	boundary := core.FromTime(time.Date(2026, 8, 6, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, boundary-period, d.NewEnd)
	assert.Equal(t, boundary, sibling.NewStart)
	assert.Equal(t, end, sibling.End)
}

func TestApply_NoSplitWhenWithinBoundary(t *testing.T) {
	rate := 40.0
	start := core.FromTime(time.Date(2026, 8, 5, 1, 0, 0, 0, time.UTC))
	end := start + core.SamplePeriodTicks(rate)*10

	rm := record.NewMap()
	h := rm.AppendTail(record.Descriptor{Length: 512, Start: start, End: end})

	splits := Apply(rm, h, rate, ModeHour)
	assert.Equal(t, 0, splits)
	_, ok := rm.Next(h)
	assert.False(t, ok)
}

func TestApply_ModeNoneIsNoop(t *testing.T) {
	rm := record.NewMap()
	h := rm.AppendTail(record.Descriptor{Length: 512, Start: 0, End: 1000000})
	assert.Equal(t, 0, Apply(rm, h, 40, ModeNone))
}

// Package trimmer rewrites a record's sample payload to respect a new
// start or end time set by the pruner.
package trimmer

import (
	"errors"
	"fmt"

	"github.com/nexus-seis/mseedprune/codec"
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/prune"
	"github.com/nexus-seis/mseedprune/record"
)

// ErrRepackUnderflow is returned when trimming would remove every sample
// from the record.
var ErrRepackUnderflow = errors.New("trimmer: repack produced zero samples")

// Trim unpacks raw, drops the head/tail samples implied by d's NewStart and
// NewEnd marks, and repacks a single output record via c. maxLen bounds the
// output record's size, normally the input record's own length.
//
// On ErrRepackUnderflow the caller should treat d as deleted for the rest
// of the write; on any other error the original bytes must not be written
// in the trim's place.
func Trim(c codec.Codec, d *record.Descriptor, raw []byte, maxLen int) ([]byte, error) {
	if err := validate(d); err != nil {
		return nil, err
	}

	unpacked, err := c.Unpack(raw)
	if err != nil {
		return nil, fmt.Errorf("trimmer: unpack: %w", err)
	}

	period := core.SamplePeriodTicks(unpacked.Header.SampRate)

	if d.NewStart.IsSet() {
		drop := roundDiv(d.NewStart-d.Start, period)
		if drop > 0 {
			if drop > len(unpacked.Samples) {
				drop = len(unpacked.Samples)
			}
			unpacked.Samples = unpacked.Samples[drop:]
		}
		unpacked.Header.Start = d.NewStart
	}

	if d.NewEnd.IsSet() {
		drop := roundDiv(d.End-d.NewEnd, period)
		if drop > 0 {
			if drop > len(unpacked.Samples) {
				drop = len(unpacked.Samples)
			}
			unpacked.Samples = unpacked.Samples[:len(unpacked.Samples)-drop]
		}
	}

	if len(unpacked.Samples) == 0 {
		return nil, ErrRepackUnderflow
	}

	var out []byte
	emit := func(b []byte) { out = append(out, b...) }
	records, _, err := c.Pack(unpacked, maxLen, emit)
	if err != nil {
		return nil, fmt.Errorf("trimmer: pack: %w", err)
	}
	if records != 1 {
		return nil, fmt.Errorf("trimmer: pack produced %d records, want exactly 1", records)
	}
	return out, nil
}

// roundDiv computes round(delta/period) the way dataselect.c does: as a
// float division plus 0.5, truncated. period is never zero for a record
// that reached this point (the codec sets Header.SampRate > 0).
func roundDiv(delta, period core.HPT) int {
	if period == 0 {
		return 0
	}
	return int(float64(delta)/float64(period) + 0.5)
}

// validate checks the new start/end marks fall strictly inside the
// original record span, per the trimmer's precondition.
func validate(d *record.Descriptor) error {
	if d.NewStart.IsSet() && d.NewEnd.IsSet() && d.NewStart >= d.NewEnd {
		return &prune.InvalidTrimTimesError{Message: "newStart >= newEnd"}
	}
	if d.NewStart.IsSet() && (d.NewStart <= d.Start || d.NewStart >= d.End) {
		return &prune.InvalidTrimTimesError{Message: "newStart outside (start, end)"}
	}
	if d.NewEnd.IsSet() && (d.NewEnd >= d.End || d.NewEnd <= d.Start) {
		return &prune.InvalidTrimTimesError{Message: "newEnd outside (start, end)"}
	}
	return nil
}

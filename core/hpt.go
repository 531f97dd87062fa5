// Package core provides the time and quality primitives shared by every
// other package in mseedprune: high-precision timestamps, sample-period
// arithmetic, and quality ranking.
package core

// HPT is a high-precision timestamp: an integer count of HPTModulus
// fractional-second units since the Unix epoch. All time arithmetic in
// the core is integer arithmetic over this type.
type HPT int64

// HPTModulus is the number of HPT ticks per second.
const HPTModulus HPT = 1000000

// HPTUnset is the sentinel value representing "no time set".
const HPTUnset HPT = -2145916800000000 // matches the well-known mseed HPTERROR/unset sentinel

// IsSet reports whether t holds a real timestamp rather than the unset sentinel.
func (t HPT) IsSet() bool {
	return t != HPTUnset
}

// Sub returns the number of HPT ticks between t and u (t - u).
func (t HPT) Sub(u HPT) HPT {
	return t - u
}

// SamplePeriodTicks returns the sample period, in HPT ticks, for a given
// sample rate in Hz. A non-positive rate has no defined period and yields 0.
func SamplePeriodTicks(sampleRate float64) HPT {
	if sampleRate <= 0 {
		return 0
	}
	return HPT(float64(HPTModulus) / sampleRate)
}

// WithinTimeTolerance reports whether a and b are within the continuity
// tolerance for a series sampled at sampleRate. When timeTolSeconds is
// negative the tolerance defaults to half a sample period ("auto" mode).
func WithinTimeTolerance(a, b HPT, sampleRate float64, timeTolSeconds float64) bool {
	delta := a - b
	if delta < 0 {
		delta = -delta
	}
	return delta <= timeToleranceTicks(sampleRate, timeTolSeconds)
}

func timeToleranceTicks(sampleRate float64, timeTolSeconds float64) HPT {
	if timeTolSeconds < 0 {
		return SamplePeriodTicks(sampleRate) / 2
	}
	return HPT(timeTolSeconds * float64(HPTModulus))
}

// TimeToleranceTicks is the exported form of timeToleranceTicks, used by
// packages outside core that need the same tolerance computed once and
// reused across many comparisons (e.g. the pruner's segment coalescer).
func TimeToleranceTicks(sampleRate float64, timeTolSeconds float64) HPT {
	return timeToleranceTicks(sampleRate, timeTolSeconds)
}

// SampleRateTolerable reports whether two sample rates are close enough to
// be considered the "same" rate: their difference must not exceed
// sampRateTol times the higher of the two rates. A negative sampRateTol
// selects the codec default fraction of 0.0001 (0.01%).
func SampleRateTolerable(rate1, rate2 float64, sampRateTol float64) bool {
	if rate1 == rate2 {
		return true
	}
	if rate1 == 0 || rate2 == 0 {
		return false
	}
	tol := sampRateTol
	if tol < 0 {
		tol = 0.0001
	}
	hi := rate1
	if rate2 > hi {
		hi = rate2
	}
	diff := rate1 - rate2
	if diff < 0 {
		diff = -diff
	}
	return diff <= tol*hi
}

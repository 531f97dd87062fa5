// Package prune defines the typed error taxonomy shared by the reader,
// trimmer, and writer stages of a pass, following the teacher's
// core/errors.go pattern: exported wrapper types an errors.As-aware
// caller can discriminate, plus an Is*Error helper per type.
package prune

import (
	"errors"
	"fmt"
)

// CorruptRecordError wraps a codec error encountered while scanning a
// record; the reader logs and skips the record rather than aborting. No
// per-file counter of corrupt records is kept.
type CorruptRecordError struct {
	Path    string
	Offset  int64
	Message string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record at %s offset %d: %s", e.Path, e.Offset, e.Message)
}

// IsCorruptRecordError reports whether err (or any error it wraps) is a
// *CorruptRecordError.
func IsCorruptRecordError(err error) bool {
	var e *CorruptRecordError
	return errors.As(err, &e)
}

// OversizeRecordError is raised when a record's length exceeds the
// writer's scratch buffer; per spec this aborts the whole write pass.
type OversizeRecordError struct {
	Path       string
	Length     int32
	ScratchCap int
}

func (e *OversizeRecordError) Error() string {
	return fmt.Sprintf("record in %s is %d bytes, exceeds %d-byte scratch buffer", e.Path, e.Length, e.ScratchCap)
}

// IsOversizeRecordError reports whether err (or any error it wraps) is an
// *OversizeRecordError.
func IsOversizeRecordError(err error) bool {
	var e *OversizeRecordError
	return errors.As(err, &e)
}

// InvalidTrimTimesError is raised when a descriptor's NewStart/NewEnd
// marks don't fall strictly inside the original record span (invariant
// 2); the write for that descriptor is skipped, not marked deleted.
type InvalidTrimTimesError struct {
	Message string
}

func (e *InvalidTrimTimesError) Error() string {
	return fmt.Sprintf("invalid trim times: %s", e.Message)
}

// IsInvalidTrimTimesError reports whether err (or any error it wraps) is
// an *InvalidTrimTimesError.
func IsInvalidTrimTimesError(err error) bool {
	var e *InvalidTrimTimesError
	return errors.As(err, &e)
}

// MisclassificationError is raised when the reader cannot place a record
// at either the head or the tail of its trace; the record is skipped.
type MisclassificationError struct {
	Identifier string
	Message    string
}

func (e *MisclassificationError) Error() string {
	return fmt.Sprintf("cannot classify record for %s: %s", e.Identifier, e.Message)
}

// IsMisclassificationError reports whether err (or any error it wraps) is
// a *MisclassificationError.
func IsMisclassificationError(err error) bool {
	var e *MisclassificationError
	return errors.As(err, &e)
}

// Package record implements the record descriptor and the per-trace
// record-map: a lightweight index over physical Mini-SEED records that
// never touches sample payloads.
package record

import (
	"github.com/nexus-seis/mseedprune/core"
)

// File is the shared handle to one input file, referenced by pointer from
// every Descriptor read from it. A File must remain valid for at least as
// long as any Descriptor referencing it.
type File struct {
	Path string

	// WritePath is where the writer's replace-input sink writes, when
	// different from Path (the reader shadowed the original name to
	// "name.orig" before reading, so the writer must target the original
	// name, not the shadow it read from). Empty means "same as Path".
	WritePath string

	// ReorderCount tracks how many records were attached to a trace's head
	// rather than its tail (i.e. arrived out of file order).
	ReorderCount int

	// RecsRead, RecsRemoved, RecsTrimmed, RecsSplit, RecsWritten are the
	// per-file counters the "counter identity" testable property is stated
	// over: RecsWritten == RecsRead - RecsRemoved + RecsSplit. Nothing in
	// this package checks that identity.
	RecsRead    int
	RecsRemoved int
	RecsTrimmed int
	RecsSplit   int
	RecsWritten int

	// Earliest/Latest/BytesWritten are populated by the writer during the
	// write pass and consumed by an external POD-style driver (see podstate).
	Earliest     core.HPT
	Latest       core.HPT
	BytesWritten int64
}

// NewFile creates a File handle with its time bookkeeping unset.
func NewFile(path string) *File {
	return &File{Path: path, Earliest: core.HPTUnset, Latest: core.HPTUnset}
}

// OutputPath returns WritePath when set, otherwise Path.
func (f *File) OutputPath() string {
	if f.WritePath != "" {
		return f.WritePath
	}
	return f.Path
}

// Descriptor is an immutable-except-for-trim-marks index entry for one
// physical Mini-SEED record (or a boundary-split fragment of one).
type Descriptor struct {
	File    *File
	Offset  int64
	Length  int32 // reclen; 0 means "logically deleted"
	Start   core.HPT
	End     core.HPT
	Quality core.Quality

	NewStart core.HPT // core.HPTUnset when not set
	NewEnd   core.HPT // core.HPTUnset when not set

	prev, next int32 // arena slot indices; -1 is the sentinel
}

// Deleted reports whether the descriptor has been marked as
// non-contributing (reclen == 0).
func (d *Descriptor) Deleted() bool {
	return d.Length == 0
}

// EffectiveStart returns NewStart when set, otherwise Start.
func (d *Descriptor) EffectiveStart() core.HPT {
	if d.NewStart.IsSet() {
		return d.NewStart
	}
	return d.Start
}

// EffectiveEnd returns NewEnd when set, otherwise End.
func (d *Descriptor) EffectiveEnd() core.HPT {
	if d.NewEnd.IsSet() {
		return d.NewEnd
	}
	return d.End
}

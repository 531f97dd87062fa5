// Package codec defines the contracts consumed from the Mini-SEED codec
// and archive-engine collaborators. Their implementations (blockette
// parsing, sample unpack/repack, archive path templating) live outside
// this module: this package only describes the shapes the core calls
// through.
package codec

import (
	"io"

	"github.com/nexus-seis/mseedprune/core"
)

// Header is the subset of a Mini-SEED record header the core relies on.
type Header struct {
	Network  string
	Station  string
	Location string
	Channel  string
	Quality  core.Quality
	Start    core.HPT
	End      core.HPT
	SampRate float64
}

// Sample is one decoded sample point produced by Unpack, kept opaque to
// the core (it never inspects sample values, only counts and re-encodes
// them via Pack).
type Sample = float64

// UnpackedRecord is the decoded form of one physical record, as returned
// by Unpack and consumed by the trimmer.
type UnpackedRecord struct {
	Header     Header
	SampleType byte
	Samples    []Sample
}

// Codec is the external Mini-SEED codec contract. A real implementation
// understands the on-disk record format, blockettes, and the various
// sample compression schemes (Steim1/2, etc); none of that lives in this
// module.
type Codec interface {
	// ReadNext scans the next record starting at or after the reader's
	// current position, returning its header, byte offset, and length.
	// It returns io.EOF when no further records remain.
	ReadNext(r io.ReadSeeker, maxLen int) (hdr Header, offset int64, length int32, err error)

	// Unpack decodes a record's raw bytes into header fields and samples.
	Unpack(raw []byte) (UnpackedRecord, error)

	// Pack re-encodes an UnpackedRecord into wire bytes, invoking emit once
	// per output record produced (repacking may split into more than one
	// physical record if trimmed samples still exceed one record's capacity,
	// though in this module's usage there is always exactly one output
	// record per trim). Pack returns the total number of output records and
	// samples emitted.
	Pack(rec UnpackedRecord, maxLen int, emit func(out []byte)) (outRecords int, outSamples int, err error)
}

// ArchiveWriter is the external archive-path-template collaborator: given
// a record's parsed metadata and raw bytes, it decides which archive file
// to append the bytes to.
type ArchiveWriter interface {
	StreamProcess(hdr Header, raw []byte) error
}

// ProcessLimits is the external process-limits collaborator.
type ProcessLimits interface {
	RaiseOpenFiles(n int) error
}

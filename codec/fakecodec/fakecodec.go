// Package fakecodec is a synthetic, fixed-layout stand-in for a real
// Mini-SEED codec, used by this module's tests and by the cmd/mseedprune
// wiring entrypoint in the absence of a real one. The real codec
// (blockette parsing, Steim decompression, etc) is an external
// collaborator; this package exists so the reader, pruner, trimmer, and
// writer can be exercised end-to-end without one.
//
// Record layout (big-endian, fixed offsets so byte 6 is the quality
// indicator exactly as the real format specifies for the restamp step):
//
//	0:4   magic "FAKE"
//	4:6   reserved
//	6     quality byte
//	7     reserved
//	8:12  reclen (int32)
//	12:20 start (int64 HPT ticks)
//	20:28 sample rate (float64 bits)
//	28:36 network (space-padded ASCII)
//	36:44 station (space-padded ASCII)
//	44:52 location (space-padded ASCII)
//	52:60 channel (space-padded ASCII)
//	60:64 sample count (int32)
//	64:   samples (float64 each), zero-padded to reclen
package fakecodec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/nexus-seis/mseedprune/codec"
	"github.com/nexus-seis/mseedprune/core"
)

const (
	magic      = "FAKE"
	headerSize = 64
)

// Codec implements codec.Codec over the fixed layout described above.
type Codec struct{}

var _ codec.Codec = Codec{}

func fixed(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	for i := len(s); i < n; i++ {
		b[i] = ' '
	}
	return b
}

// Encode builds one physical record for the given header and samples,
// padded with zero bytes out to reclen.
func Encode(hdr codec.Header, samples []float64, reclen int) ([]byte, error) {
	need := headerSize + len(samples)*8
	if need > reclen {
		return nil, fmt.Errorf("fakecodec: %d samples do not fit in a %d-byte record", len(samples), reclen)
	}
	buf := make([]byte, reclen)
	copy(buf[0:4], magic)
	buf[6] = byte(hdr.Quality)
	binary.BigEndian.PutUint32(buf[8:12], uint32(reclen))
	binary.BigEndian.PutUint64(buf[12:20], uint64(hdr.Start))
	binary.BigEndian.PutUint64(buf[20:28], math.Float64bits(hdr.SampRate))
	copy(buf[28:36], fixed(hdr.Network, 8))
	copy(buf[36:44], fixed(hdr.Station, 8))
	copy(buf[44:52], fixed(hdr.Location, 8))
	copy(buf[52:60], fixed(hdr.Channel, 8))
	binary.BigEndian.PutUint32(buf[60:64], uint32(len(samples)))
	for i, s := range samples {
		binary.BigEndian.PutUint64(buf[headerSize+i*8:headerSize+i*8+8], math.Float64bits(s))
	}
	return buf, nil
}

// ReadNext implements codec.Codec.
func (Codec) ReadNext(r io.ReadSeeker, maxLen int) (codec.Header, int64, int32, error) {
	offset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return codec.Header{}, 0, 0, err
	}
	hb := make([]byte, headerSize)
	n, err := io.ReadFull(r, hb)
	if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
		return codec.Header{}, 0, 0, io.EOF
	}
	if err != nil {
		return codec.Header{}, 0, 0, err
	}
	if string(hb[0:4]) != magic {
		return codec.Header{}, 0, 0, fmt.Errorf("fakecodec: bad magic at offset %d", offset)
	}
	reclen := int32(binary.BigEndian.Uint32(hb[8:12]))
	if int(reclen) > maxLen {
		return codec.Header{}, 0, 0, fmt.Errorf("fakecodec: record length %d exceeds max %d", reclen, maxLen)
	}
	hdr := decodeHeaderFields(hb)
	// Advance the reader past the remainder of the record.
	if _, err := r.Seek(offset+int64(reclen), io.SeekStart); err != nil {
		return codec.Header{}, 0, 0, err
	}
	return hdr, offset, reclen, nil
}

func decodeHeaderFields(hb []byte) codec.Header {
	hdr := codec.Header{
		Quality:  core.Quality(hb[6]),
		Start:    core.HPT(binary.BigEndian.Uint64(hb[12:20])),
		SampRate: math.Float64frombits(binary.BigEndian.Uint64(hb[20:28])),
		Network:  strings.TrimRight(string(hb[28:36]), " "),
		Station:  strings.TrimRight(string(hb[36:44]), " "),
		Location: strings.TrimRight(string(hb[44:52]), " "),
		Channel:  strings.TrimRight(string(hb[52:60]), " "),
	}
	count := int(binary.BigEndian.Uint32(hb[60:64]))
	if count > 0 {
		hdr.End = hdr.Start + core.SamplePeriodTicks(hdr.SampRate)*core.HPT(count-1)
	} else {
		hdr.End = hdr.Start
	}
	return hdr
}

// Unpack implements codec.Codec.
func (Codec) Unpack(raw []byte) (codec.UnpackedRecord, error) {
	if len(raw) < headerSize || string(raw[0:4]) != magic {
		return codec.UnpackedRecord{}, fmt.Errorf("fakecodec: not a valid record")
	}
	hdr := decodeHeaderFields(raw)
	count := int(binary.BigEndian.Uint32(raw[60:64]))
	samples := make([]float64, count)
	for i := 0; i < count; i++ {
		off := headerSize + i*8
		if off+8 > len(raw) {
			return codec.UnpackedRecord{}, fmt.Errorf("fakecodec: truncated samples")
		}
		samples[i] = math.Float64frombits(binary.BigEndian.Uint64(raw[off : off+8]))
	}
	period := core.SamplePeriodTicks(hdr.SampRate)
	hdr.End = hdr.Start + period*core.HPT(count-1)
	if count == 0 {
		hdr.End = hdr.Start
	}
	return codec.UnpackedRecord{Header: hdr, Samples: samples}, nil
}

// Pack implements codec.Codec. It always emits exactly one output record.
func (Codec) Pack(rec codec.UnpackedRecord, maxLen int, emit func(out []byte)) (int, int, error) {
	if len(rec.Samples) == 0 {
		return 0, 0, fmt.Errorf("fakecodec: cannot pack zero samples")
	}
	out, err := Encode(rec.Header, rec.Samples, maxLen)
	if err != nil {
		return 0, 0, err
	}
	emit(out)
	return 1, len(rec.Samples), nil
}

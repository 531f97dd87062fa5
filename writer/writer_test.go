package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-seis/mseedprune/codec"
	"github.com/nexus-seis/mseedprune/codec/fakecodec"
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/prune"
	"github.com/nexus-seis/mseedprune/record"
	"github.com/nexus-seis/mseedprune/tracegroup"
)

func writeTestInput(t *testing.T, dir string, hdr codec.Header, samples []float64) (string, int64, int32) {
	t.Helper()
	raw, err := fakecodec.Encode(hdr, samples, 512)
	require.NoError(t, err)
	path := filepath.Join(dir, "in.mseed")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path, 0, int32(len(raw))
}

func TestWrite_CombinedOutputFile(t *testing.T) {
	dir := t.TempDir()
	id := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	rate := 40.0
	period := core.SamplePeriodTicks(rate)
	samples := []float64{1, 2, 3, 4}
	hdr := codec.Header{Network: id.Network, Station: id.Station, Location: id.Location, Channel: id.Channel,
		Quality: core.QualityD, Start: 0, End: period * 3, SampRate: rate}

	path, offset, length := writeTestInput(t, dir, hdr, samples)

	f := record.NewFile(path)
	tr := &tracegroup.Trace{Identity: id, SampleRate: rate, Quality: core.QualityD, Start: 0, End: period * 3, Records: record.NewMap()}
	tr.Records.AppendTail(record.Descriptor{File: f, Offset: offset, Length: length, Start: 0, End: period * 3, Quality: core.QualityD})

	g := tracegroup.NewGroup()
	g.Adopt(tr)
	g.Finalize()

	outPath := filepath.Join(dir, "out.mseed")
	stats, err := Write(g, fakecodec.Codec{}, Options{OutputFile: outPath})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RecordsWritten)
	assert.Equal(t, int64(length), stats.BytesWritten)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, int(length), len(out))

	assert.Equal(t, core.HPT(0), f.Earliest)
	assert.Equal(t, period*4, f.Latest)
	assert.Equal(t, 1, f.RecsWritten)
}

func TestWrite_OversizeRecordAbortsPass(t *testing.T) {
	dir := t.TempDir()
	id := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	rate := 40.0
	period := core.SamplePeriodTicks(rate)
	samples := make([]float64, 4)
	hdr := codec.Header{Network: id.Network, Station: id.Station, Location: id.Location, Channel: id.Channel,
		Quality: core.QualityD, Start: 0, End: period * 3, SampRate: rate}

	path, offset, length := writeTestInput(t, dir, hdr, samples)

	f := record.NewFile(path)
	tr := &tracegroup.Trace{Identity: id, SampleRate: rate, Quality: core.QualityD, Start: 0, End: period * 3, Records: record.NewMap()}
	// Claim a length far beyond the scratch buffer without touching the
	// file on disk, to exercise the abort path without allocating a real
	// oversize fixture.
	tr.Records.AppendTail(record.Descriptor{File: f, Offset: offset, Length: length + minScratchSize, Start: 0, End: period * 3, Quality: core.QualityD})

	g := tracegroup.NewGroup()
	g.Adopt(tr)
	g.Finalize()

	outPath := filepath.Join(dir, "out.mseed")
	_, err := Write(g, fakecodec.Codec{}, Options{OutputFile: outPath})
	require.Error(t, err)
	assert.True(t, prune.IsOversizeRecordError(err))
}

func TestWrite_RestampsQualityByte(t *testing.T) {
	dir := t.TempDir()
	id := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	rate := 40.0
	period := core.SamplePeriodTicks(rate)
	samples := []float64{1, 2}
	hdr := codec.Header{Network: id.Network, Station: id.Station, Location: id.Location, Channel: id.Channel,
		Quality: core.QualityD, Start: 0, End: period, SampRate: rate}

	path, offset, length := writeTestInput(t, dir, hdr, samples)
	f := record.NewFile(path)
	tr := &tracegroup.Trace{Identity: id, SampleRate: rate, Quality: core.QualityD, Start: 0, End: period, Records: record.NewMap()}
	tr.Records.AppendTail(record.Descriptor{File: f, Offset: offset, Length: length, Start: 0, End: period, Quality: core.QualityD})

	g := tracegroup.NewGroup()
	g.Adopt(tr)
	g.Finalize()

	outPath := filepath.Join(dir, "out.mseed")
	_, err := Write(g, fakecodec.Codec{}, Options{OutputFile: outPath, RestampQuality: core.QualityQ})
	require.NoError(t, err)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, byte(core.QualityQ), out[6])
}

package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-seis/mseedprune/boundary"
	"github.com/nexus-seis/mseedprune/codec"
	"github.com/nexus-seis/mseedprune/codec/fakecodec"
	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/identmatch"
	"github.com/nexus-seis/mseedprune/tracegroup"
)

func writeInputFile(t *testing.T, dir, name string, records []struct {
	hdr     codec.Header
	samples []float64
}) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var buf []byte
	for _, r := range records {
		raw, err := fakecodec.Encode(r.hdr, r.samples, 512)
		require.NoError(t, err)
		buf = append(buf, raw...)
	}
	require.NoError(t, os.WriteFile(path, buf, 0644))
	return path
}

func baseHeader(id core.ChannelID, start core.HPT, rate float64) codec.Header {
	return codec.Header{Network: id.Network, Station: id.Station, Location: id.Location, Channel: id.Channel,
		Quality: core.QualityD, Start: start, SampRate: rate}
}

func TestRead_InsertsRecordsIntoGroup(t *testing.T) {
	dir := t.TempDir()
	id := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	rate := 40.0

	path := writeInputFile(t, dir, "a.mseed", []struct {
		hdr     codec.Header
		samples []float64
	}{
		{baseHeader(id, 0, rate), []float64{1, 2, 3, 4}},
	})

	g := tracegroup.NewGroup()
	stats, err := Read(g, []string{path}, fakecodec.Codec{}, Options{
		Tolerances:   tracegroup.Tolerances{TimeTolSeconds: -1, SampRateTol: -1},
		MaxRecordLen: 512,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RecordsRead)
	require.Len(t, stats.Files, 1)
	assert.Equal(t, 1, stats.Files[0].RecsRead)

	traces := g.Traces()
	require.Len(t, traces, 1)
	assert.Equal(t, id, traces[0].Identity)
}

func TestRead_WindowFilterSkipsFullyOutsideRecords(t *testing.T) {
	dir := t.TempDir()
	id := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	rate := 40.0
	period := core.SamplePeriodTicks(rate)

	path := writeInputFile(t, dir, "a.mseed", []struct {
		hdr     codec.Header
		samples []float64
	}{
		{baseHeader(id, 0, rate), []float64{1, 2, 3, 4}},                    // fully before window
		{baseHeader(id, period*100, rate), []float64{1, 2, 3, 4}},          // inside window
	})

	g := tracegroup.NewGroup()
	stats, err := Read(g, []string{path}, fakecodec.Codec{}, Options{
		WindowStart:  period * 50,
		WindowEnd:    period * 200,
		Tolerances:   tracegroup.Tolerances{TimeTolSeconds: -1, SampRateTol: -1},
		MaxRecordLen: 512,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RecordsRead)
}

func TestRead_WindowSampleTrimSetsNewStart(t *testing.T) {
	dir := t.TempDir()
	id := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	rate := 40.0
	period := core.SamplePeriodTicks(rate)

	// Record spans [0, 3*period], straddling a window that starts mid-record.
	path := writeInputFile(t, dir, "a.mseed", []struct {
		hdr     codec.Header
		samples []float64
	}{
		{baseHeader(id, 0, rate), []float64{1, 2, 3, 4}},
	})

	g := tracegroup.NewGroup()
	_, err := Read(g, []string{path}, fakecodec.Codec{}, Options{
		WindowStart:      period * 2,
		WindowSampleTrim: true,
		Tolerances:       tracegroup.Tolerances{TimeTolSeconds: -1, SampRateTol: -1},
		MaxRecordLen:     512,
	})
	require.NoError(t, err)

	traces := g.Traces()
	require.Len(t, traces, 1)
	h, ok := traces[0].Records.First()
	require.True(t, ok)
	d := traces[0].Records.Get(h)
	assert.Equal(t, period*2, d.NewStart)
}

func TestRead_RejectRegexExcludesMatchingIdentity(t *testing.T) {
	dir := t.TempDir()
	id := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	rate := 40.0

	path := writeInputFile(t, dir, "a.mseed", []struct {
		hdr     codec.Header
		samples []float64
	}{
		{baseHeader(id, 0, rate), []float64{1, 2}},
	})

	reject, err := identmatch.NewRegex("ANMO")
	require.NoError(t, err)

	g := tracegroup.NewGroup()
	stats, err := Read(g, []string{path}, fakecodec.Codec{}, Options{
		Reject:       reject,
		Tolerances:   tracegroup.Tolerances{TimeTolSeconds: -1, SampRateTol: -1},
		MaxRecordLen: 512,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RecordsRead)
}

func TestRead_ReplaceInputShadowsFile(t *testing.T) {
	dir := t.TempDir()
	id := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	rate := 40.0

	path := writeInputFile(t, dir, "a.mseed", []struct {
		hdr     codec.Header
		samples []float64
	}{
		{baseHeader(id, 0, rate), []float64{1, 2}},
	})

	g := tracegroup.NewGroup()
	stats, err := Read(g, []string{path}, fakecodec.Codec{}, Options{
		ReplaceInput: true,
		Tolerances:   tracegroup.Tolerances{TimeTolSeconds: -1, SampRateTol: -1},
		MaxRecordLen: 512,
	})
	require.NoError(t, err)
	require.Len(t, stats.Files, 1)

	assert.Equal(t, path+".orig", stats.Files[0].Path)
	assert.Equal(t, path, stats.Files[0].WritePath)
	_, err = os.Stat(path + ".orig")
	assert.NoError(t, err)
}

func TestRead_BoundarySplitIncrementsRecsSplit(t *testing.T) {
	dir := t.TempDir()
	id := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	rate := 1.0
	period := core.SamplePeriodTicks(rate)

	// A record spanning a day boundary at HPT epoch.
	dayTicks := period * 86400
	start := dayTicks - period*2
	samples := make([]float64, 5)

	path := writeInputFile(t, dir, "a.mseed", []struct {
		hdr     codec.Header
		samples []float64
	}{
		{baseHeader(id, start, rate), samples},
	})

	g := tracegroup.NewGroup()
	stats, err := Read(g, []string{path}, fakecodec.Codec{}, Options{
		SplitBoundary: boundary.ModeDay,
		Tolerances:    tracegroup.Tolerances{TimeTolSeconds: -1, SampRateTol: -1},
		MaxRecordLen:  512,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files[0].RecsSplit)
}

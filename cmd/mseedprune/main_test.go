package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-seis/mseedprune/codec"
	"github.com/nexus-seis/mseedprune/codec/fakecodec"
	"github.com/nexus-seis/mseedprune/config"
	"github.com/nexus-seis/mseedprune/core"
)

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	hdr := codec.Header{
		Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ",
		Quality: core.QualityD, Start: 0, SampRate: 40,
	}
	raw, err := fakecodec.Encode(hdr, []float64{1, 2, 3, 4, 5}, 512)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func TestRun_EndToEndWritesCombinedOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "a.mseed")
	out := filepath.Join(dir, "out.mseed")

	configPath := filepath.Join(dir, "mseedprune.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
resources:
  raise_open_files: false
  report_diagnostics: false
logging:
  output: none
output:
  file: `+out+`
`), 0644))

	err := run(configPath, []string{in})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRun_NoInputsReturnsError(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "mseedprune.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  output: none\n"), 0644))

	err := run(configPath, nil)
	assert.Error(t, err)
}

func TestBuildReaderOptions_RejectsBadWindowTime(t *testing.T) {
	cfg := &config.Config{}
	cfg.Window.Start = "not-a-time"
	_, err := buildReaderOptions(cfg)
	assert.Error(t, err)
}

func TestBuildPrunerOptions_ModeMapping(t *testing.T) {
	assert.Equal(t, 0, int(buildPrunerOptions(config.PruneConfig{Mode: "off"}).Mode))
	assert.Equal(t, 1, int(buildPrunerOptions(config.PruneConfig{Mode: "record"}).Mode))
	assert.Equal(t, 2, int(buildPrunerOptions(config.PruneConfig{Mode: "sample"}).Mode))
}

func TestBuildWriterOptions_RejectsMultiCharQuality(t *testing.T) {
	_, err := buildWriterOptions(config.OutputConfig{RestampQuality: "QQ"})
	assert.Error(t, err)
}

// Package podstate exposes the per-file bookkeeping a POD (path-oriented
// data) request-file driver needs after a write pass, and round-trips the
// tab-delimited request-file format the driver reads and rewrites.
package podstate

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nexus-seis/mseedprune/core"
	"github.com/nexus-seis/mseedprune/record"
)

// seedTimeLayout mirrors the request-file timestamp format used by the
// original driver: year, day-of-year, time-of-day.
const seedTimeLayout = "2006,002,15:04:05"

// FileState is one request-file line's worth of state: identity, the
// requested window, and the driver-owned filename/header-directory
// fields, carried through unmodified except for DataStart/DataEnd.
type FileState struct {
	Station, Network, Channel, Location string
	DataStart, DataEnd                  time.Time
	Filename, HeaderDir                 string
	ReqStart, ReqEnd                    time.Time
}

// ReadRequestFile parses one POD request file: ten tab-delimited fields
// per line, malformed lines skipped.
func ReadRequestFile(r io.Reader) ([]FileState, error) {
	var out []FileState
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 10 {
			continue
		}
		fs, err := parseFields(fields)
		if err != nil {
			continue
		}
		out = append(out, fs)
	}
	return out, scanner.Err()
}

func parseFields(f []string) (FileState, error) {
	dataStart, err := time.Parse(seedTimeLayout, f[4])
	if err != nil {
		return FileState{}, err
	}
	dataEnd, err := time.Parse(seedTimeLayout, f[5])
	if err != nil {
		return FileState{}, err
	}
	reqStart, err := time.Parse(seedTimeLayout, f[8])
	if err != nil {
		return FileState{}, err
	}
	reqEnd, err := time.Parse(seedTimeLayout, f[9])
	if err != nil {
		return FileState{}, err
	}
	return FileState{
		Station: f[0], Network: f[1], Channel: f[2], Location: f[3],
		DataStart: dataStart, DataEnd: dataEnd,
		Filename: f[6], HeaderDir: f[7],
		ReqStart: reqStart, ReqEnd: reqEnd,
	}, nil
}

// WriteRequestFile serializes states back into the tab-delimited format.
func WriteRequestFile(w io.Writer, states []FileState) error {
	bw := bufio.NewWriter(w)
	for _, s := range states {
		_, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Station, s.Network, s.Channel, s.Location,
			s.DataStart.UTC().Format(seedTimeLayout),
			s.DataEnd.UTC().Format(seedTimeLayout),
			s.Filename, s.HeaderDir,
			s.ReqStart.UTC().Format(seedTimeLayout),
			s.ReqEnd.UTC().Format(seedTimeLayout),
		)
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Rewrite folds a completed pass's per-file counters back into the
// matching FileState (matched by Filename), updating DataStart/DataEnd
// from the file's Earliest/Latest bookkeeping. Answers Open Question 2:
// the core exposes Earliest/Latest/BytesWritten per file; the driver
// (this package) is responsible for mutating request-file state across
// passes.
func Rewrite(states []FileState, files []*record.File) []FileState {
	byName := make(map[string]*record.File, len(files))
	for _, f := range files {
		byName[f.Path] = f
	}

	out := make([]FileState, len(states))
	copy(out, states)
	for i := range out {
		f, ok := byName[out[i].Filename]
		if !ok || !f.Earliest.IsSet() || !f.Latest.IsSet() {
			continue
		}
		out[i].DataStart = core.ToTime(f.Earliest)
		out[i].DataEnd = core.ToTime(f.Latest)
	}
	return out
}

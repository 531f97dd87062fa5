package tracegroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-seis/mseedprune/core"
)

var testID = core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}

func TestAddRecordCreatesNewTrace(t *testing.T) {
	g := NewGroup()
	tr, whence := g.AddRecord(testID, 40, core.QualityD, 0, 100, Tolerances{TimeTolSeconds: -1, SampRateTol: -1})
	require.Equal(t, WhenceNewTrace, whence)
	assert.Equal(t, core.HPT(0), tr.Start)
	assert.Equal(t, core.HPT(100), tr.End)
}

func TestAddRecordTailAppend(t *testing.T) {
	g := NewGroup()
	first, _ := g.AddRecord(testID, 40, core.QualityD, 0, 100, Tolerances{TimeTolSeconds: -1, SampRateTol: -1})
	second, whence := g.AddRecord(testID, 40, core.QualityD, 100, 200, Tolerances{TimeTolSeconds: -1, SampRateTol: -1})

	assert.Same(t, first, second)
	assert.Equal(t, WhenceTail, whence)
	assert.Equal(t, core.HPT(200), second.End)
}

func TestAddRecordHeadPrepend(t *testing.T) {
	g := NewGroup()
	first, _ := g.AddRecord(testID, 40, core.QualityD, 100, 200, Tolerances{TimeTolSeconds: -1, SampRateTol: -1})
	second, whence := g.AddRecord(testID, 40, core.QualityD, 0, 100, Tolerances{TimeTolSeconds: -1, SampRateTol: -1})

	assert.Same(t, first, second)
	assert.Equal(t, WhenceHead, whence)
	assert.Equal(t, core.HPT(0), second.Start)
}

func TestAddRecordDisjointCreatesSeparateTrace(t *testing.T) {
	g := NewGroup()
	g.AddRecord(testID, 40, core.QualityD, 0, 100, Tolerances{TimeTolSeconds: -1, SampRateTol: -1})
	_, whence := g.AddRecord(testID, 40, core.QualityD, 1000000000, 1000000100, Tolerances{TimeTolSeconds: -1, SampRateTol: -1})
	assert.Equal(t, WhenceNewTrace, whence)
	assert.Len(t, g.Traces(), 2)
}

func TestAddRecordBestQualityRefusesMixedQuality(t *testing.T) {
	g := NewGroup()
	g.AddRecord(testID, 40, core.QualityD, 0, 100, Tolerances{TimeTolSeconds: -1, SampRateTol: -1, BestQuality: true})
	_, whence := g.AddRecord(testID, 40, core.QualityR, 100, 200, Tolerances{TimeTolSeconds: -1, SampRateTol: -1, BestQuality: true})
	assert.Equal(t, WhenceNewTrace, whence)
	assert.Len(t, g.Traces(), 2)
}

func TestFinalizeOrdersByIdentityRateStartAscEndDesc(t *testing.T) {
	g := NewGroup()
	shortID := core.ChannelID{Network: "IU", Station: "ANMO", Location: "00", Channel: "BHZ"}
	g.addDisjointTrace(shortID, 40, 0, 300)
	g.addDisjointTrace(shortID, 40, 0, 100)

	g.Finalize()

	var order []core.HPT
	g.Each(func(t *Trace) bool {
		order = append(order, t.End)
		return true
	})
	require.Len(t, order, 2)
	assert.Equal(t, core.HPT(300), order[0]) // longer trace (larger end) first for same start
	assert.Equal(t, core.HPT(100), order[1])
}

// addDisjointTrace is a test-only helper that bypasses the absorption rule
// to build fixtures with two predictable, separate traces sharing an identity.
func (g *Group) addDisjointTrace(id core.ChannelID, rate float64, start, end core.HPT) *Trace {
	t := newTrace(id, rate, core.QualityD, start, end)
	g.byIdentity[id] = append(g.byIdentity[id], t)
	return t
}

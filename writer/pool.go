package writer

import (
	"bytes"
	"sync"
)

// minScratchSize is the writer's scratch record buffer size. A record
// larger than this is a fatal per-record error that aborts the write
// (prune.OversizeRecordError), per spec: the scratch region is a single
// fixed-size buffer, not something that grows to fit an outlier record.
const minScratchSize = 16 * 1024

// scratchPool hands out reusable byte buffers sized for one Mini-SEED
// record, following the teacher's bufferPool idiom (a sync.Pool of
// *bytes.Buffer, reset before reuse) adapted to a single global pool
// sized for this pass's scratch region rather than SSTable blocks.
var scratchPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, minScratchSize))
	},
}

func getScratch() *bytes.Buffer {
	return scratchPool.Get().(*bytes.Buffer)
}

func putScratch(buf *bytes.Buffer) {
	buf.Reset()
	scratchPool.Put(buf)
}

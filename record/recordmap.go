package record

import (
	"github.com/nexus-seis/mseedprune/core"
)

const noSlot int32 = -1

// Map is a per-trace, arena-backed doubly-linked chain of Descriptors,
// maintained in ascending start-time order. Using a slice of value
// Descriptors indexed by a Handle, rather than pointer-linked nodes,
// avoids classic linked-list pointer hazards: removal is a mark-deleted
// flip, insertion is an append, and the whole arena can be discarded in
// one shot at group reinitialization. Deletion state lives solely in each
// slot's Length field (Descriptor.Deleted reports Length == 0); there is
// no parallel deleted-set to keep in sync.
type Map struct {
	slots []Descriptor
	first int32
	last  int32
	count int
}

// Handle is an opaque reference to a slot in a Map.
type Handle int32

// NewMap creates an empty record-map.
func NewMap() *Map {
	return &Map{first: noSlot, last: noSlot}
}

// Len returns the number of descriptors in the chain, including deleted ones.
func (m *Map) Len() int { return m.count }

// DeletedCount returns the number of descriptors marked deleted.
func (m *Map) DeletedCount() int {
	n := 0
	m.IterateInOrder(func(_ Handle, d *Descriptor) bool {
		if d.Deleted() {
			n++
		}
		return true
	})
	return n
}

// First returns the handle of the first descriptor, or (0, false) if empty.
func (m *Map) First() (Handle, bool) {
	if m.first == noSlot {
		return 0, false
	}
	return Handle(m.first), true
}

// Get returns a pointer to the descriptor at h. The pointer is valid until
// the next AppendTail/PrependHead/InsertAfter call, which may grow the
// backing slice.
func (m *Map) Get(h Handle) *Descriptor {
	return &m.slots[h]
}

// Next returns the handle following h, or (0, false) at the end of the chain.
func (m *Map) Next(h Handle) (Handle, bool) {
	n := m.slots[h].next
	if n == noSlot {
		return 0, false
	}
	return Handle(n), true
}

// normalizeTrimMarks treats a zero-value NewStart/NewEnd (the Go zero
// value produced by a Descriptor literal that never mentions the field)
// as "unset", so callers only need to spell out core.HPTUnset when they
// care about distinguishing it from an explicit trim at tick zero.
func normalizeTrimMarks(d *Descriptor) {
	if d.NewStart == 0 {
		d.NewStart = core.HPTUnset
	}
	if d.NewEnd == 0 {
		d.NewEnd = core.HPTUnset
	}
}

// AppendTail adds a descriptor at the end of the chain and returns its handle.
func (m *Map) AppendTail(d Descriptor) Handle {
	normalizeTrimMarks(&d)
	d.prev, d.next = noSlot, noSlot
	idx := int32(len(m.slots))
	m.slots = append(m.slots, d)
	if m.last == noSlot {
		m.first = idx
	} else {
		m.slots[m.last].next = idx
		m.slots[idx].prev = m.last
	}
	m.last = idx
	m.count++
	return Handle(idx)
}

// PrependHead adds a descriptor at the start of the chain and returns its handle.
func (m *Map) PrependHead(d Descriptor) Handle {
	normalizeTrimMarks(&d)
	d.prev, d.next = noSlot, noSlot
	idx := int32(len(m.slots))
	m.slots = append(m.slots, d)
	if m.first == noSlot {
		m.last = idx
	} else {
		m.slots[m.first].prev = idx
		m.slots[idx].next = m.first
	}
	m.first = idx
	m.count++
	return Handle(idx)
}

// InsertAfter splices a new descriptor immediately after h and returns its
// handle. Used by the boundary splitter to chain a fragment after the
// record it was split from.
func (m *Map) InsertAfter(h Handle, d Descriptor) Handle {
	normalizeTrimMarks(&d)
	idx := int32(len(m.slots))
	next := m.slots[h].next
	d.prev = int32(h)
	d.next = next
	m.slots = append(m.slots, d)
	m.slots[h].next = idx
	if next == noSlot {
		m.last = idx
	} else {
		m.slots[next].prev = idx
	}
	m.count++
	return Handle(idx)
}

// MarkDeleted sets the descriptor's length to 0, so it survives in the
// chain but contributes no bytes, no coverage, and no further trimming.
func (m *Map) MarkDeleted(h Handle) {
	m.slots[h].Length = 0
}

// SetNewStart sets the descriptor's NewStart trim mark.
func (m *Map) SetNewStart(h Handle, t core.HPT) {
	m.slots[h].NewStart = t
}

// SetNewEnd sets the descriptor's NewEnd trim mark.
func (m *Map) SetNewEnd(h Handle, t core.HPT) {
	m.slots[h].NewEnd = t
}

// IterateInOrder walks the chain from first to last, calling fn for every
// descriptor including deleted ones. fn returning false stops iteration.
func (m *Map) IterateInOrder(fn func(h Handle, d *Descriptor) bool) {
	for idx := m.first; idx != noSlot; idx = m.slots[idx].next {
		if !fn(Handle(idx), &m.slots[idx]) {
			return
		}
	}
}

// IterateLive is IterateInOrder filtered to non-deleted descriptors.
func (m *Map) IterateLive(fn func(h Handle, d *Descriptor) bool) {
	m.IterateInOrder(func(h Handle, d *Descriptor) bool {
		if d.Deleted() {
			return true
		}
		return fn(h, d)
	})
}

// SPDX-License-Identifier: MIT
package history

import (
	"iqscope/internal/graph"
)

// DefaultCapacity keeps roughly ten seconds of waterfall lines at typical
// frame rates.
const DefaultCapacity = 512

// Entry is one retained frame plus its insertion order and cached dB bounds.
type Entry struct {
	Frame *graph.SpectrumFrame
	Order uint64 // buffer-global insertion counter

	minDB float64
	maxDB float64
}

// Buffer is a capacity-bounded window of the most recent frames, newest at
// the tail. Insertion is O(1) via a ring; once full, each insert evicts the
// oldest entry.
//
// Range policy: the running dB bounds widen on insert and are allowed to
// contract on eviction (decay-on-evict). When an evicted entry held a
// current bound, the bounds are recomputed from the cached per-entry bounds,
// so long-gone outliers do not flatten contrast forever.
type Buffer struct {
	entries []Entry
	head    int // index of the oldest entry
	count   int
	order   uint64

	rng IntensityRange
}

// New creates a buffer retaining at most capacity frames. Non-positive
// capacities fall back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		entries: make([]Entry, capacity),
	}
}

// Insert appends the frame at the newest end, evicting the oldest entry if
// the buffer is full. Amortized O(1); the occasional bounds recomputation
// on eviction scans only the cached per-entry bounds.
func (b *Buffer) Insert(frame *graph.SpectrumFrame) {
	minDB, maxDB := frameBounds(frame)

	var evicted *Entry
	if b.count == cap(b.entries) {
		evicted = &b.entries[b.head]
	}

	recompute := evicted != nil && b.count > 0 &&
		(evicted.minDB <= b.rng.MinDB || evicted.maxDB >= b.rng.MaxDB)

	if evicted != nil {
		b.head = (b.head + 1) % cap(b.entries)
		b.count--
	}

	idx := (b.head + b.count) % cap(b.entries)
	b.entries[idx] = Entry{
		Frame: frame,
		Order: b.order,
		minDB: minDB,
		maxDB: maxDB,
	}
	b.order++
	b.count++

	if recompute {
		b.recomputeRange()
	} else if b.count == 1 {
		b.rng = IntensityRange{MinDB: minDB, MaxDB: maxDB}
	} else {
		// Widen only.
		if minDB < b.rng.MinDB {
			b.rng.MinDB = minDB
		}
		if maxDB > b.rng.MaxDB {
			b.rng.MaxDB = maxDB
		}
	}
}

// Len returns the number of retained frames.
func (b *Buffer) Len() int {
	return b.count
}

// Capacity returns the maximum number of retained frames.
func (b *Buffer) Capacity() int {
	return cap(b.entries)
}

// At returns the i-th retained entry, 0 being the oldest.
func (b *Buffer) At(i int) *Entry {
	if i < 0 || i >= b.count {
		return nil
	}
	return &b.entries[(b.head+i)%cap(b.entries)]
}

// Newest returns the most recently inserted entry, or nil when empty.
func (b *Buffer) Newest() *Entry {
	return b.At(b.count - 1)
}

// Range returns the current running dB bounds across retained frames.
func (b *Buffer) Range() IntensityRange {
	return b.rng
}

func (b *Buffer) recomputeRange() {
	for i := 0; i < b.count; i++ {
		e := b.At(i)
		if i == 0 {
			b.rng = IntensityRange{MinDB: e.minDB, MaxDB: e.maxDB}
			continue
		}
		if e.minDB < b.rng.MinDB {
			b.rng.MinDB = e.minDB
		}
		if e.maxDB > b.rng.MaxDB {
			b.rng.MaxDB = e.maxDB
		}
	}
}

// frameBounds scans one frame's bins for its dB extremes. Zero-power bins
// are excluded from the minimum so an all-quiet bin does not pin the range
// at the floor; a frame of only zeros spans [MinDB, MinDB].
func frameBounds(frame *graph.SpectrumFrame) (minDB, maxDB float64) {
	minDB, maxDB = 0, MinDB
	seen := false
	for _, p := range frame.Power {
		if p <= 0 {
			continue
		}
		db := PowerDB(p)
		if !seen {
			minDB, maxDB = db, db
			seen = true
			continue
		}
		if db < minDB {
			minDB = db
		}
		if db > maxDB {
			maxDB = db
		}
	}
	if !seen {
		return MinDB, MinDB
	}
	return minDB, maxDB
}

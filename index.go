// index.go: Robin Hood open-addressed hash index
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package nubdb

import "unsafe"

// Record is a stored value with an optional absolute expiry time, in
// seconds since the epoch. Zero means the record never expires.
type Record struct {
	Value    []byte
	ExpireAt int64
}

// slot is one array element of the index. An empty slot has occupied ==
// false; all other fields are meaningless in that state.
type slot struct {
	key      string
	value    Record
	hash     uint64
	psl      uint32
	occupied bool
}

// index is a Robin Hood open-addressed hash table mapping byte-string
// keys to Record. It is not internally synchronized: callers (the
// Storage Engine) are responsible for holding the appropriate lock for
// the duration of any call, including iteration.
type index struct {
	slots    []slot
	capacity int
	count    int
}

// newIndex creates an index with the given initial capacity (rounded up
// to a minimum of 8 if smaller).
func newIndex(capacity int) *index {
	if capacity < 8 {
		capacity = 8
	}
	return &index{
		slots:    make([]slot, capacity),
		capacity: capacity,
	}
}

// hashKey computes a fast, deterministic, non-cryptographic 64-bit hash
// of a key using FNV-1a. Zero allocations: the string is read directly
// via its backing array.
func hashKey(s string) uint64 {
	const (
		fnvOffset = 14695981039346656037
		fnvPrime  = 1099511628211
	)

	h := uint64(fnvOffset)
	// #nosec G103 -- read-only view of the string's backing bytes, no allocation
	data := unsafe.Slice(unsafe.StringData(s), len(s))
	for _, b := range data {
		h ^= uint64(b)
		h *= fnvPrime
	}
	return h
}

// ideal returns the home slot for a hash at the index's current capacity.
func (ix *index) ideal(h uint64) int {
	return int(h % uint64(ix.capacity))
}

// put inserts or overwrites key with value. It never fails.
func (ix *index) put(key string, value Record) {
	h := hashKey(key)

	// Resize first if the prospective insert would breach the 90% load
	// factor, per spec's "before probing" rule — but only for genuinely
	// new keys; an overwrite never grows count.
	if ix.findSlot(key, h) == -1 {
		if (ix.count+1)*100 > ix.capacity*LoadFactorThresholdPercent {
			ix.resize(ix.capacity * 2)
		}
	}
	ix.insert(key, value, h)
}

// findSlot returns the array index of key, or -1 if absent. Implements
// the Robin Hood early-termination search (§4.1 get).
func (ix *index) findSlot(key string, h uint64) int {
	capacity := ix.capacity
	idx := ix.ideal(h)
	for d := uint32(0); d < uint32(capacity); d++ {
		s := &ix.slots[idx]
		if !s.occupied {
			return -1
		}
		if d > s.psl {
			return -1
		}
		if s.hash == h && s.key == key {
			return idx
		}
		idx++
		if idx == capacity {
			idx = 0
		}
	}
	return -1
}

// insert performs the Robin Hood insertion probe (§4.1 put), assuming
// the caller has already grown the table if needed. If key already
// exists, its value is overwritten in place and its psl is unchanged.
func (ix *index) insert(key string, value Record, h uint64) {
	capacity := ix.capacity
	idx := ix.ideal(h)

	entry := slot{key: key, value: value, hash: h, psl: 0, occupied: true}

	for {
		s := &ix.slots[idx]

		if !s.occupied {
			ix.slots[idx] = entry
			ix.count++
			return
		}

		if s.hash == entry.hash && s.key == entry.key {
			s.value = value
			return
		}

		if entry.psl > s.psl {
			ix.slots[idx], entry = entry, *s
		}

		entry.psl++
		idx++
		if idx == capacity {
			idx = 0
		}
	}
}

// get returns the record stored for key, if present.
func (ix *index) get(key string) (Record, bool) {
	idx := ix.findSlot(key, hashKey(key))
	if idx == -1 {
		return Record{}, false
	}
	return ix.slots[idx].value, true
}

// remove deletes key, back-shifting the following probe chain to close
// the gap (§4.1 remove). Returns whether the key was present.
func (ix *index) remove(key string) bool {
	h := hashKey(key)
	idx := ix.findSlot(key, h)
	if idx == -1 {
		return false
	}

	capacity := ix.capacity
	ix.slots[idx] = slot{}
	ix.count--

	cur := idx
	for {
		next := cur + 1
		if next == capacity {
			next = 0
		}
		ns := &ix.slots[next]
		if !ns.occupied || ns.psl == 0 {
			break
		}
		ns.psl--
		ix.slots[cur] = *ns
		ix.slots[next] = slot{}
		cur = next
	}

	return true
}

// resize doubles (or sets) capacity and reinserts every occupied slot
// with reset psl, preserving count.
func (ix *index) resize(newCapacity int) {
	old := ix.slots
	ix.slots = make([]slot, newCapacity)
	ix.capacity = newCapacity
	ix.count = 0

	for i := range old {
		if old[i].occupied {
			ix.insert(old[i].key, old[i].value, old[i].hash)
		}
	}
}

// clear empties the index without shrinking its capacity.
func (ix *index) clear() {
	for i := range ix.slots {
		ix.slots[i] = slot{}
	}
	ix.count = 0
}

// forEach calls fn for every occupied slot, in array order. The caller
// must hold a lock for the duration of iteration; insertions and
// resizes during iteration are forbidden (the Robin Hood state would be
// observed inconsistently and the slots slice may be replaced).
func (ix *index) forEach(fn func(key string, value Record)) {
	for i := range ix.slots {
		if ix.slots[i].occupied {
			fn(ix.slots[i].key, ix.slots[i].value)
		}
	}
}

// maxPSL returns the largest psl currently present. Used by tests to
// verify the Robin Hood probe-length bound.
func (ix *index) maxPSL() uint32 {
	var max uint32
	for i := range ix.slots {
		if ix.slots[i].occupied && ix.slots[i].psl > max {
			max = ix.slots[i].psl
		}
	}
	return max
}

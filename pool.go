// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package zstdblock

import (
	"io"
	"sync"

	"github.com/openzfs-go/zstdblock/internal/atomicext"
)

// poolTimeoutSeconds is how long an idle pool slot is kept before it
// becomes eligible for eviction.
const poolTimeoutSeconds = 120

// poolFloor is the minimum number of slots a pool is sized to,
// regardless of CPU count, so that single-CPU hosts still get some
// reuse.
const poolFloor = 8

// ctxTag records where a checked-out context came from, so that
// releasing it knows what to do: a pool slot's lock should simply be
// unlocked (the context stays resident for reuse), a directly
// allocated context should be closed outright, and the fallback arena's
// lock should be released without disturbing its single resident
// context.
type ctxTag int

const (
	tagPool ctxTag = iota
	tagDefault
	tagFallback
)

// slot is one reusable scratch context together with the bookkeeping
// the pool needs to decide whether it can satisfy a request or should
// be evicted: a lock standing in for "checked out", a size class used
// for the reuse-pass size check, and an expiry used to bound how long
// an idle context is kept around.
type slot[T io.Closer] struct {
	mu        sync.Mutex
	occupied  bool
	value     T
	size      uintptr
	expiresAt int64
}

// pool is a bounded array of reusable contexts of type T (either
// *zstd.Encoder or *zstd.Decoder in this package). Allocation is a
// two-pass, non-blocking scan: a reuse pass that also opportunistically
// evicts stale slots, followed by a fresh-allocation pass. Eviction is
// purely opportunistic; there is no background sweeper.
type pool[T io.Closer] struct {
	slots []slot[T]
	clock func() int64
}

func newPool[T io.Closer](n int, clock func() int64) *pool[T] {
	if n < 1 {
		n = 1
	}
	return &pool[T]{
		slots: make([]slot[T], n),
		clock: clock,
	}
}

// Checkout is the reservation token handed back by a successful
// allocation. Its Release method is the only way to return the context
// to circulation (or discard it). Release does not reset the Checkout
// and does not guard against being called twice, so each Checkout must
// be released exactly once and not used afterwards.
type Checkout[T io.Closer] struct {
	value T
	tag   ctxTag
	slot  *slot[T]
	arena *arena[T]
}

// Value returns the checked-out context.
func (c *Checkout[T]) Value() T { return c.value }

// Release returns the context to wherever it came from. For a
// pool-backed checkout this just unlocks the slot, leaving the context
// resident for reuse. For a directly allocated checkout it closes the
// context. For a fallback-arena checkout it unlocks the arena.
func (c *Checkout[T]) Release() {
	switch c.tag {
	case tagPool:
		c.slot.mu.Unlock()
	case tagDefault:
		c.value.Close()
	case tagFallback:
		c.arena.mu.Unlock()
	}
}

// alloc finds or creates a reusable context of at least the requested
// size. size is the size class the caller needs; create constructs a
// fresh context when no existing slot can be reused. Fit is checked
// before eviction, so a slot past its idle timeout is still reused
// rather than torn down if it satisfies the request; only a slot that
// does *not* fit and is expired is evicted. When exact is true
// a slot is only reusable if its size class is exactly size rather
// than merely large enough: this is required for the encoder pool,
// where size encodes the zstd encoder preset baked into the context at
// construction time, and a "bigger" preset is not a valid substitute
// for a smaller one, unlike a plain scratch-memory size class. alloc
// never blocks: if every slot is either busy or unusable, it returns
// ok=false and the caller is responsible for whatever fallback its
// call site requires.
func (p *pool[T]) alloc(size uintptr, exact bool, create func() (T, error)) (Checkout[T], bool) {
	now := p.clock()

	fits := func(s *slot[T]) bool {
		if exact {
			return s.size == size
		}
		return size <= s.size
	}

	// Reuse pass: look for a slot that already holds a big-enough
	// context, evicting stale slots we notice along the way. The first
	// satisfying slot's lock is kept held as the checkout token.
	for i := range p.slots {
		s := &p.slots[i]
		if !s.mu.TryLock() {
			atomicext.Pause()
			continue
		}
		if s.occupied && fits(s) {
			s.expiresAt = now + poolTimeoutSeconds
			return Checkout[T]{value: s.value, tag: tagPool, slot: s}, true
		}
		if s.occupied && now > s.expiresAt {
			s.value.Close()
			var zero T
			s.value = zero
			s.occupied = false
			s.size = 0
		}
		s.mu.Unlock()
	}

	// Fresh-allocation pass: find an empty slot and populate it.
	for i := range p.slots {
		s := &p.slots[i]
		if !s.mu.TryLock() {
			atomicext.Pause()
			continue
		}
		if s.occupied {
			s.mu.Unlock()
			continue
		}
		v, err := create()
		if err != nil {
			s.mu.Unlock()
			continue
		}
		s.value = v
		s.occupied = true
		s.size = size
		s.expiresAt = now + poolTimeoutSeconds
		return Checkout[T]{value: v, tag: tagPool, slot: s}, true
	}

	return Checkout[T]{}, false
}

// quiesce acquires and releases every slot's lock (so no other goroutine
// has one checked out) and frees any resident context. Called from
// Adapter.Close.
func (p *pool[T]) quiesce() {
	for i := range p.slots {
		s := &p.slots[i]
		s.mu.Lock()
		if s.occupied {
			s.value.Close()
			var zero T
			s.value = zero
			s.occupied = false
		}
		s.mu.Unlock()
	}
}

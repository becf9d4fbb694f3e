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
	"sync/atomic"
	"testing"
)

// fakeContext is a minimal io.Closer standing in for *zstd.Encoder or
// *zstd.Decoder in pool tests, so the pool's reuse/eviction logic can
// be exercised without constructing a real codec context.
type fakeContext struct {
	closed int32
}

func (f *fakeContext) Close() error {
	atomic.AddInt32(&f.closed, 1)
	return nil
}

func TestPoolReusesExistingSlot(t *testing.T) {
	allocs := 0
	create := func() (*fakeContext, error) {
		allocs++
		return &fakeContext{}, nil
	}
	now := int64(1000)
	clock := func() int64 { return now }

	p := newPool[*fakeContext](4, clock)

	for i := 0; i < 10; i++ {
		co, ok := p.alloc(1, false, create)
		if !ok {
			t.Fatalf("alloc %d: pool exhausted", i)
		}
		co.Release()
	}

	if allocs != 1 {
		t.Fatalf("allocs = %d, want 1 (single slot reused across sequential requests)", allocs)
	}
}

func TestPoolExactMatchRejectsLargerSlot(t *testing.T) {
	create := func() (*fakeContext, error) { return &fakeContext{}, nil }
	now := int64(1000)
	clock := func() int64 { return now }

	p := newPool[*fakeContext](4, clock)

	big, ok := p.alloc(9, true, create)
	if !ok {
		t.Fatal("alloc(9): pool exhausted")
	}
	big.Release()

	// A request for a smaller exact size must not reuse the slot sized
	// for 9: larger is not a valid substitute in exact mode (the
	// encoder-preset case this mode exists for).
	small, ok := p.alloc(1, true, create)
	if !ok {
		t.Fatal("alloc(1): pool exhausted")
	}
	defer small.Release()

	if small.slot == big.slot {
		t.Fatal("exact-match alloc reused a slot sized for a different size class")
	}
}

func TestPoolReusesFittingSlotPastTimeout(t *testing.T) {
	create := func() (*fakeContext, error) {
		return &fakeContext{}, nil
	}
	now := int64(1000)
	clock := func() int64 { return now }

	p := newPool[*fakeContext](1, clock)

	co, ok := p.alloc(1, false, create)
	if !ok {
		t.Fatal("initial alloc failed")
	}
	tracked := co.Value()
	co.Release()

	now += poolTimeoutSeconds + 1

	// A slot past its idle timeout is still reused, not torn down, if
	// it satisfies the new request: fit is checked before eviction.
	co2, ok := p.alloc(1, false, create)
	if !ok {
		t.Fatal("post-timeout alloc failed")
	}
	if co2.Value() != tracked {
		t.Fatal("expired-but-fitting slot was reallocated instead of reused")
	}
	co2.Release()

	if tracked.closed != 0 {
		t.Fatalf("reused context was closed, closed=%d", tracked.closed)
	}
}

func TestPoolEvictsExpiredNonFittingSlot(t *testing.T) {
	create := func() (*fakeContext, error) {
		return &fakeContext{}, nil
	}
	now := int64(1000)
	clock := func() int64 { return now }

	p := newPool[*fakeContext](1, clock)

	co, ok := p.alloc(1, true, create)
	if !ok {
		t.Fatal("initial alloc failed")
	}
	tracked := co.Value()
	co.Release()

	now += poolTimeoutSeconds + 1

	// The only slot is occupied with size class 1; an exact-match
	// request for size class 2 does not fit, so the expired slot is
	// evicted and a fresh context is allocated in its place.
	co2, ok := p.alloc(2, true, create)
	if !ok {
		t.Fatal("post-timeout alloc failed")
	}
	co2.Release()

	if tracked.closed != 1 {
		t.Fatalf("expired non-fitting slot was not evicted, closed=%d", tracked.closed)
	}
}

func TestPoolQuiesceClosesResidents(t *testing.T) {
	create := func() (*fakeContext, error) { return &fakeContext{}, nil }
	clock := func() int64 { return 0 }

	p := newPool[*fakeContext](2, clock)
	co, ok := p.alloc(1, false, create)
	if !ok {
		t.Fatal("alloc failed")
	}
	tracked := co.Value()
	co.Release()

	p.quiesce()

	if tracked.closed != 1 {
		t.Fatalf("quiesce did not close resident context, closed=%d", tracked.closed)
	}
}

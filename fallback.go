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
)

// arena is a bounded semaphore of size one: a single preallocated
// context, reserved so that decompression can always make progress
// even when the context pool and a direct allocation have both failed.
// Its job is guaranteed progress, not throughput, so unlike pool it
// blocks: Acquire takes the arena's single lock for the duration of
// exactly one decompression call.
type arena[T io.Closer] struct {
	mu    sync.Mutex
	value T
	ready bool
}

// newArena constructs a single preallocated fallback context by
// calling create once, eagerly, at Adapter construction time.
func newArena[T io.Closer](create func() (T, error)) (*arena[T], error) {
	v, err := create()
	if err != nil {
		return nil, err
	}
	return &arena[T]{value: v, ready: true}, nil
}

// Acquire blocks until the arena's single context is available and
// returns a checkout for it. It only fails, with ErrFatalMemory, if the
// arena is nil or has already been closed, which is a programmer error
// (Adapter used after Close).
func (a *arena[T]) Acquire() (Checkout[T], error) {
	if a == nil || !a.ready {
		return Checkout[T]{}, ErrFatalMemory
	}
	a.mu.Lock()
	return Checkout[T]{value: a.value, tag: tagFallback, arena: a}, nil
}

// Close releases the arena's context. The caller must ensure no
// Checkout from Acquire is still outstanding.
func (a *arena[T]) Close() error {
	if a == nil || !a.ready {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.value.Close()
	a.ready = false
	return err
}

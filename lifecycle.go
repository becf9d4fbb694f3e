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
	"github.com/klauspost/compress/zstd"

	"github.com/openzfs-go/zstdblock/internal/hostenv"
)

// Adapter owns the context pools, the fallback arena, and the factory
// functions used to create new contexts. The zero Adapter is not
// usable; construct one with New.
//
// Callers thread an *Adapter through explicitly; the package-level
// functions (Compress, Decompress, Init, ...) are a thin compatibility
// shim over a single default instance for callers who only need one
// per process.
type Adapter struct {
	encoders *pool[*zstd.Encoder]
	decoders *pool[*zstd.Decoder]
	fallback *arena[*zstd.Decoder]

	newEncoder func(zstd.EncoderLevel) (*zstd.Encoder, error)
	newDecoder func() (*zstd.Decoder, error)
}

// Option configures New.
type Option func(*config)

type config struct {
	poolSize   int
	clock      func() int64
	newEncoder func(zstd.EncoderLevel) (*zstd.Encoder, error)
	newDecoder func() (*zstd.Decoder, error)
}

// WithPoolSize overrides the number of slots in each context pool.
// The default is max(hostenv.NumCPU()*4, poolFloor).
func WithPoolSize(n int) Option {
	return func(c *config) { c.poolSize = n }
}

// WithClock overrides the wall-clock source used for pool slot expiry.
// Intended for deterministic eviction tests.
func WithClock(clock func() int64) Option {
	return func(c *config) { c.clock = clock }
}

// WithEncoderFactory overrides how new compression contexts are
// constructed. Intended to let tests simulate allocation failure
// deterministically, since Go's allocator has no observable failure
// mode to trigger directly.
func WithEncoderFactory(f func(zstd.EncoderLevel) (*zstd.Encoder, error)) Option {
	return func(c *config) { c.newEncoder = f }
}

// WithDecoderFactory overrides how new decompression contexts are
// constructed. Intended to let tests simulate allocation failure
// deterministically, since Go's allocator has no observable failure
// mode to trigger directly.
func WithDecoderFactory(f func() (*zstd.Decoder, error)) Option {
	return func(c *config) { c.newDecoder = f }
}

func defaultNewEncoder(level zstd.EncoderLevel) (*zstd.Encoder, error) {
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(level), zstd.WithEncoderConcurrency(1))
}

// fallbackDecoderWindowEstimate approximates the working-memory
// footprint of a klauspost zstd.Decoder with default settings. There
// is no equivalent of ZSTD_estimateDCtxSize to query this exactly, so
// every decoder this package constructs is capped at this estimate,
// rounded up to a page via hostenv.PageRound, rather than left
// unbounded.
const fallbackDecoderWindowEstimate = 8 << 20 // 8 MiB, zstd's default window

var defaultDecoderMaxMemory = uint64(hostenv.PageRound(fallbackDecoderWindowEstimate))

func defaultNewDecoder() (*zstd.Decoder, error) {
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(defaultDecoderMaxMemory),
	)
}

// New constructs an Adapter: it sizes the context pools from the CPU
// count, and preallocates the fallback arena's single decompression
// context so that decompression is guaranteed a context for its
// entire lifetime.
func New(opts ...Option) (*Adapter, error) {
	c := config{
		poolSize:   max(hostenv.NumCPU()*4, poolFloor),
		clock:      hostenv.WallClockSeconds,
		newEncoder: defaultNewEncoder,
		newDecoder: defaultNewDecoder,
	}
	for _, opt := range opts {
		opt(&c)
	}

	fb, err := newArena(c.newDecoder)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		encoders:   newPool[*zstd.Encoder](c.poolSize, c.clock),
		decoders:   newPool[*zstd.Decoder](c.poolSize, c.clock),
		fallback:   fb,
		newEncoder: c.newEncoder,
		newDecoder: c.newDecoder,
	}, nil
}

// Close drains both context pools (freeing every resident context) and
// releases the fallback arena. Close is not safe to call concurrently
// with an in-flight Compress/Decompress call.
func (a *Adapter) Close() error {
	a.encoders.quiesce()
	a.decoders.quiesce()
	return a.fallback.Close()
}

// acquireEncoder tries the context pool, and if that fails, tries a
// direct allocation. Unlike decompression there is no further
// fallback: if this returns ok=false, the caller must treat the block
// as incompressible.
func (a *Adapter) acquireEncoder(level zstd.EncoderLevel) (Checkout[*zstd.Encoder], bool) {
	size := uintptr(level)
	create := func() (*zstd.Encoder, error) { return a.newEncoder(level) }
	if co, ok := a.encoders.alloc(size, true, create); ok {
		return co, true
	}
	enc, err := create()
	if err != nil {
		return Checkout[*zstd.Encoder]{}, false
	}
	return Checkout[*zstd.Encoder]{value: enc, tag: tagDefault}, true
}

// acquireDecoder tries the context pool, then a direct allocation,
// then blocks on the fallback arena. This guarantees decompression
// eventually obtains a context, at the cost of serializing under
// heavy pressure.
func (a *Adapter) acquireDecoder() (Checkout[*zstd.Decoder], error) {
	if co, ok := a.decoders.alloc(1, false, a.newDecoder); ok {
		return co, nil
	}
	if dec, err := a.newDecoder(); err == nil {
		return Checkout[*zstd.Decoder]{value: dec, tag: tagDefault}, nil
	}
	return a.fallback.Acquire()
}

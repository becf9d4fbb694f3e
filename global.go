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

import "sync"

var (
	defaultMu      sync.Mutex
	defaultAdapter *Adapter
)

// Init constructs the package-level default Adapter used by the
// package-level Compress/Decompress/DecompressLevel functions. Most
// callers only need a single adapter per process and can use this
// shim instead of threading an *Adapter through their own call stack.
func Init(opts ...Option) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	a, err := New(opts...)
	if err != nil {
		return err
	}
	defaultAdapter = a
	return nil
}

// Close releases the package-level default Adapter constructed by
// Init. It is a no-op if Init was never called.
func Close() error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultAdapter == nil {
		return nil
	}
	err := defaultAdapter.Close()
	defaultAdapter = nil
	return err
}

func defaultOrPanic() *Adapter {
	defaultMu.Lock()
	a := defaultAdapter
	defaultMu.Unlock()
	if a == nil {
		panic("zstdblock: Init must be called before using the package-level Compress/Decompress functions")
	}
	return a
}

// Compress is a package-level shim over the default Adapter's
// Compress. Init must be called first.
func Compress(dst, src []byte, level Level) (int, error) {
	return defaultOrPanic().Compress(dst, src, level)
}

// Decompress is a package-level shim over the default Adapter's
// Decompress. Init must be called first.
func Decompress(dst, src []byte) error {
	return defaultOrPanic().Decompress(dst, src)
}

// DecompressLevel is a package-level shim over the default Adapter's
// DecompressLevel. Init must be called first.
func DecompressLevel(dst, src []byte) (Level, error) {
	return defaultOrPanic().DecompressLevel(dst, src)
}

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

import "errors"

var (
	// ErrCorruptHeader is returned when a block's header claims a
	// payload length that does not fit within the source buffer, or
	// when the source buffer is too short to contain a header at all.
	ErrCorruptHeader = errors.New("zstdblock: corrupt block header")

	// ErrCodecFailure is returned when the zstd codec itself reports
	// an error decompressing a payload.
	ErrCodecFailure = errors.New("zstdblock: codec reported an error")

	// ErrFatalMemory is returned when decompression could not obtain
	// even the fallback arena. In practice this only happens on an
	// Adapter whose Close has already run.
	ErrFatalMemory = errors.New("zstdblock: no decompression context available")

	// ErrInherit is returned when LevelInherit is passed to an
	// operation that requires a concrete, storable level.
	ErrInherit = errors.New("zstdblock: LevelInherit may not be used here")

	// ErrShortBuffer is returned when a caller-supplied buffer
	// violates one of Compress/Decompress's size preconditions.
	ErrShortBuffer = errors.New("zstdblock: destination buffer too small")
)

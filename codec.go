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

import "fmt"

// Compress writes the framed, header-prefixed compressed form of src to
// dst and returns the number of bytes written. dst must be at least
// HeaderSize bytes long.
//
// Compress never fails on account of src being incompressible, an
// exhausted context pool, or the compressed form not fitting within
// dst: all three are reported by returning a length greater than or
// equal to len(src), signaling to the caller that the block should be
// stored uncompressed instead. Compress only returns an error for a
// precondition violation: LevelInherit, or a dst shorter than
// HeaderSize.
func (a *Adapter) Compress(dst, src []byte, level Level) (int, error) {
	cookie, err := EnumToCookie(level)
	if err != nil {
		return 0, err
	}
	if len(dst) < HeaderSize {
		return 0, ErrShortBuffer
	}

	co, ok := a.acquireEncoder(encoderLevelFor(cookie))
	if !ok {
		return len(src), nil
	}
	defer co.Release()

	enc := co.Value()
	body := dst[HeaderSize:HeaderSize:len(dst)]
	out := enc.EncodeAll(src, body)

	// append (which EncodeAll uses internally) only reallocates past
	// its destination's capacity, never below it; body's capacity is
	// exactly dst's remaining room after the header, so a result
	// longer than that capacity could only have been written into a
	// freshly allocated array, not dst's. body itself may have zero
	// length, so this checks cap rather than taking body's address.
	if len(out) > cap(body) {
		return len(src), nil
	}

	written := HeaderSize + len(out)
	if written >= len(src) {
		return len(src), nil
	}

	putHeader(dst, uint32(len(out)), cookie)
	return written, nil
}

// Decompress writes the decompressed form of a block previously
// produced by Compress into dst, which must be exactly large enough to
// hold it (the caller is expected to already know the decompressed
// size, as ZFS's block pointers record it out of band).
func (a *Adapter) Decompress(dst, src []byte) error {
	_, err := a.decompress(dst, src)
	return err
}

// DecompressLevel behaves like Decompress but additionally returns the
// Level the block was originally compressed at, recovered from the
// block header's cookie. An unrecognized cookie is coerced to
// CanonicalDefault rather than treated as corruption (see
// CookieToEnum).
func (a *Adapter) DecompressLevel(dst, src []byte) (Level, error) {
	return a.decompress(dst, src)
}

func (a *Adapter) decompress(dst, src []byte) (Level, error) {
	if len(src) < HeaderSize {
		return LevelInherit, ErrCorruptHeader
	}
	cLen, cookie := getHeader(src)
	body := src[HeaderSize:]
	if uint64(cLen) > uint64(len(body)) {
		return LevelInherit, ErrCorruptHeader
	}
	body = body[:cLen]

	co, err := a.acquireDecoder()
	if err != nil {
		return LevelInherit, err
	}
	defer co.Release()

	dec := co.Value()
	scratch := dst[:0:len(dst)]
	out, err := dec.DecodeAll(body, scratch)
	if err != nil {
		return LevelInherit, fmt.Errorf("%w: %v", ErrCodecFailure, err)
	}
	// Same reasoning as Compress's bound check: a result longer than
	// scratch's capacity could only have come from a fresh allocation,
	// not dst.
	if len(out) > cap(scratch) {
		return LevelInherit, ErrShortBuffer
	}

	return CookieToEnum(cookie), nil
}

// PeekLevel reports the Level a block was compressed at without
// decompressing its payload, by reading only the header.
func PeekLevel(src []byte) (Level, error) {
	if len(src) < HeaderSize {
		return LevelInherit, ErrCorruptHeader
	}
	_, cookie := getHeader(src)
	return CookieToEnum(cookie), nil
}

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

// Package zstdblock is the compression adapter that bridges zstd to a
// copy-on-write filesystem's block I/O path.
//
// It owns four things the surrounding storage layer does not want to
// know about: a stable on-disk framing for compressed blocks (an 8-byte
// header prepended to every compressed payload, see HeaderSize), a bounded
// pool of reusable zstd encoder/decoder contexts so that the expensive
// part of compression — standing up a multi-megabyte match-finder — is
// amortized across calls (see Adapter), a guaranteed-progress fallback
// path so that decompression, which sits on the read path, is never
// starved even when the context pool and the regular allocator are both
// under pressure, and a bijective mapping between an externally visible
// Level and the codec's signed level cookies, including the negative
// "fast" levels.
//
// Compression is infallible from the caller's point of view: Compress
// always produces a usable result, signaling "store this block
// uncompressed instead" by returning a length greater than or equal to
// the input length rather than failing. Decompression is fallible and
// reports a plain error; callers are expected to discard the
// destination buffer on any non-nil return.
package zstdblock

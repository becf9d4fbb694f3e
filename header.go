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

import "encoding/binary"

// HeaderSize is the fixed size, in bytes, of the header prepended to
// every compressed block. It is part of the on-disk format and must
// never change.
const HeaderSize = 8

// putHeader writes the 8-byte big-endian header {cLen, cookie} to the
// front of dst. dst must have length at least HeaderSize.
func putHeader(dst []byte, cLen uint32, cookie int32) {
	binary.BigEndian.PutUint32(dst[0:4], cLen)
	binary.BigEndian.PutUint32(dst[4:8], uint32(cookie))
}

// getHeader reads the 8-byte big-endian header {cLen, cookie} from the
// front of src. src must have length at least HeaderSize.
func getHeader(src []byte) (cLen uint32, cookie int32) {
	cLen = binary.BigEndian.Uint32(src[0:4])
	cookie = int32(binary.BigEndian.Uint32(src[4:8]))
	return cLen, cookie
}

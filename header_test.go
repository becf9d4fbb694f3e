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

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		cLen   uint32
		cookie int32
	}{
		{0, 0},
		{1, 1},
		{1 << 20, -19},
		{0xffffffff, -1000},
	}
	for _, c := range cases {
		buf := make([]byte, HeaderSize)
		putHeader(buf, c.cLen, c.cookie)
		gotLen, gotCookie := getHeader(buf)
		if gotLen != c.cLen || gotCookie != c.cookie {
			t.Fatalf("round trip {%d,%d} = {%d,%d}", c.cLen, c.cookie, gotLen, gotCookie)
		}
	}
}

func TestHeaderIsBigEndian(t *testing.T) {
	buf := make([]byte, HeaderSize)
	putHeader(buf, 0x01020304, 0x05060708)
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x (header is not big-endian)", i, buf[i], want[i])
		}
	}
}

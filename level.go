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
	"log"

	"github.com/klauspost/compress/zstd"
)

// Level is the filesystem-visible compression level. It is stable
// across codec versions: the integer value of a Level is never written
// to disk (the codec's signed cookie is, via the block header), so the
// enum is free to grow without breaking compatibility with existing
// blocks.
type Level int32

// LevelInherit must never be looked up or stored in a block header.
const LevelInherit Level = 0

// Standard levels, matching the codec's positive compression levels.
const (
	Level1 Level = iota + 1
	Level2
	Level3
	Level4
	Level5
	Level6
	Level7
	Level8
	Level9
	Level10
	Level11
	Level12
	Level13
	Level14
	Level15
	Level16
	Level17
	Level18
	Level19
)

// Fast levels. Negative cookies, faster and less dense than Level1.
const (
	LevelFast1 Level = 100 + iota
	LevelFast2
	LevelFast3
	LevelFast4
	LevelFast5
	LevelFast6
	LevelFast7
	LevelFast8
	LevelFast9
	LevelFast10
	LevelFast20
	LevelFast30
	LevelFast40
	LevelFast50
	LevelFast60
	LevelFast70
	LevelFast80
	LevelFast90
	LevelFast100
	LevelFast500
	LevelFast1000
)

// LevelDefault is a sentinel that resolves to CanonicalDefault before
// any table lookup. It must never be looked up directly and is never
// stored in a block header.
const LevelDefault Level = -1

// legacyDefaultCookie is a pre-existing on-disk alias for "use the
// default level", kept for compatibility with blocks and callers that
// predate the Level enum. Like LevelDefault, it resolves to
// CanonicalDefault before lookup and is never itself a valid table
// entry or stored cookie.
const legacyDefaultCookie int32 = 255

// CanonicalDefault is the level LevelDefault (and the legacy 255 alias)
// resolve to at compress time.
const CanonicalDefault Level = Level3

type levelEntry struct {
	level  Level
	cookie int32
}

var levelTable = []levelEntry{
	{Level1, 1}, {Level2, 2}, {Level3, 3}, {Level4, 4}, {Level5, 5},
	{Level6, 6}, {Level7, 7}, {Level8, 8}, {Level9, 9}, {Level10, 10},
	{Level11, 11}, {Level12, 12}, {Level13, 13}, {Level14, 14}, {Level15, 15},
	{Level16, 16}, {Level17, 17}, {Level18, 18}, {Level19, 19},
	{LevelFast1, -1}, {LevelFast2, -2}, {LevelFast3, -3}, {LevelFast4, -4},
	{LevelFast5, -5}, {LevelFast6, -6}, {LevelFast7, -7}, {LevelFast8, -8},
	{LevelFast9, -9}, {LevelFast10, -10},
	{LevelFast20, -20}, {LevelFast30, -30}, {LevelFast40, -40},
	{LevelFast50, -50}, {LevelFast60, -60}, {LevelFast70, -70},
	{LevelFast80, -80}, {LevelFast90, -90}, {LevelFast100, -100},
	{LevelFast500, -500}, {LevelFast1000, -1000},
}

// EnumToCookie translates a Level to the codec's signed level cookie.
// LevelDefault and the legacy 255 alias resolve to the cookie for
// CanonicalDefault before the table is consulted. Callers must never
// pass LevelInherit; ErrInherit is returned if they do.
func EnumToCookie(level Level) (int32, error) {
	if level == LevelInherit {
		return 0, ErrInherit
	}
	if level == LevelDefault || int32(level) == legacyDefaultCookie {
		level = CanonicalDefault
	}
	for _, e := range levelTable {
		if e.level == level {
			return e.cookie, nil
		}
	}
	log.Printf("zstdblock: invalid level enum encountered: %d", level)
	return cookieFor(CanonicalDefault), nil
}

func cookieFor(level Level) int32 {
	for _, e := range levelTable {
		if e.level == level {
			return e.cookie
		}
	}
	panic("zstdblock: CanonicalDefault is not in the level table")
}

// CookieToEnum translates a codec-level cookie (as stored in a block
// header) back to the filesystem-visible Level. An unknown cookie is
// not corruption of the read path: it is logged as a diagnostic and
// coerced to CanonicalDefault, per the lenient "cookie space is
// open-ended" policy (negative fast levels may grow in the future).
func CookieToEnum(cookie int32) Level {
	for _, e := range levelTable {
		if e.cookie == cookie {
			return e.level
		}
	}
	log.Printf("zstdblock: invalid zstd cookie encountered: %d", cookie)
	return CanonicalDefault
}

// encoderLevelFor buckets a resolved cookie into one of klauspost's
// four encoder-level presets: the on-disk cookie is the exact signed
// integer, but zstd.Encoder only accepts one of a handful of presets
// at construction time, so the codec-facing translation is necessarily
// coarser than the wire format.
func encoderLevelFor(cookie int32) zstd.EncoderLevel {
	switch {
	case cookie < 0:
		return zstd.SpeedFastest
	case cookie <= 3:
		return zstd.SpeedDefault
	case cookie <= 9:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

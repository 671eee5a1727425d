// Package plan partitions an input buffer into tiles for parallel string
// scanning. Each tile has a core window plus symmetric overlap halos; the
// cores partition the file exactly, so every run start belongs to exactly
// one tile and is emitted exactly once regardless of worker count.
package plan

import (
	"github.com/CompassSecurity/stringer/pkg/config"
)

const (
	// MinHintedTile is the floor applied to explicit tile size hints.
	MinHintedTile = 32 * 1024

	// AutoTileMin and AutoTileMax clamp the automatic tile sizing policy.
	AutoTileMin = 64 * 1024
	AutoTileMax = 2 * 1024 * 1024

	// TileAlign is the granularity automatic tile sizes are rounded up to.
	TileAlign = 64 * 1024

	// AutoTileTarget is the tile count the automatic sizing policy aims
	// for. It is a fixed constant, never the worker count: the plan must
	// be a pure function of the file size and configuration so that
	// seam-dependent record details never vary with --threads.
	AutoTileTarget = 16
)

// Tile is a contiguous span of the input processed by one worker
// invocation: a left halo, a core window, and a right halo. A run is
// emitted by the tile whose core contains the run's start byte; the halos
// only give the detectors enough context to close a run and check its
// terminator past the core boundary.
type Tile struct {
	Start     int
	CoreStart int
	CoreEnd   int
	End       int

	// Enabled encodings, copied from the options so a tile is
	// self-describing to the worker that picks it up.
	ASCII   bool
	UTF16LE bool
	UTF16BE bool
}

// Overlap computes the halo width in bytes required so that a qualifying
// run starting at the last byte of a core is still fully observable,
// including its terminator when null-only mode is on.
//
// ASCII needs min_len-1 bytes past the start (plus one for the NUL);
// UTF-16 needs two bytes per remaining code unit (plus two for the
// double-NUL terminator). The halo is the max over enabled encodings.
func Overlap(opts *config.ScanOptions) int {
	var ovASCII, ovUTF16 int
	if opts.ASCII {
		ovASCII = opts.MinLen - 1
		if opts.NullOnly {
			ovASCII++
		}
	}
	if opts.UTF16LE || opts.UTF16BE {
		ovUTF16 = 2 * (opts.MinLen - 1)
		if opts.NullOnly {
			ovUTF16 += 2
		}
	}
	if ovASCII > ovUTF16 {
		return ovASCII
	}
	return ovUTF16
}

// TileSize resolves the core window size for a file of fileLen bytes.
// A supplied hint wins (clamped up to MinHintedTile); otherwise the size
// targets AutoTileTarget tiles, clamped into [AutoTileMin, AutoTileMax],
// forced to at least 8 overlap widths, and rounded up to a TileAlign
// multiple.
func TileSize(fileLen, hint, ov int) int {
	if hint > 0 {
		if hint < MinHintedTile {
			return MinHintedTile
		}
		return hint
	}

	size := fileLen / AutoTileTarget
	if size < AutoTileMin {
		size = AutoTileMin
	}
	if size > AutoTileMax {
		size = AutoTileMax
	}
	if size < 8*ov {
		size = 8 * ov
	}
	if rem := size % TileAlign; rem != 0 {
		size += TileAlign - rem
	}
	return size
}

// Build produces the tile plan for a buffer of fileLen bytes. The cores
// butt exactly: tiles[0].CoreStart == 0, tiles[len-1].CoreEnd == fileLen,
// and every CoreEnd equals the next tile's CoreStart. Edge halos are
// clamped to the buffer bounds.
func Build(fileLen int, opts *config.ScanOptions) []Tile {
	ov := Overlap(opts)
	tile := TileSize(fileLen, opts.TileSize, ov)

	if fileLen == 0 {
		return []Tile{newTile(0, 0, 0, 0, opts)}
	}

	tiles := make([]Tile, 0, fileLen/tile+1)
	for pos := 0; pos < fileLen; {
		coreStart := pos
		coreEnd := min(fileLen, pos+tile)
		start := coreStart - min(coreStart, ov)
		end := coreEnd + min(ov, fileLen-coreEnd)
		tiles = append(tiles, newTile(start, coreStart, coreEnd, end, opts))
		pos = coreEnd
	}
	return tiles
}

func newTile(start, coreStart, coreEnd, end int, opts *config.ScanOptions) Tile {
	return Tile{
		Start:     start,
		CoreStart: coreStart,
		CoreEnd:   coreEnd,
		End:       end,
		ASCII:     opts.ASCII,
		UTF16LE:   opts.UTF16LE,
		UTF16BE:   opts.UTF16BE,
	}
}

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CompassSecurity/stringer/pkg/config"
)

func asciiOpts(minLen int, nullOnly bool) *config.ScanOptions {
	opts := config.DefaultScanOptions()
	opts.MinLen = minLen
	opts.UTF16LE = false
	opts.NullOnly = nullOnly
	return &opts
}

func utf16Opts(minLen int, nullOnly bool) *config.ScanOptions {
	opts := config.DefaultScanOptions()
	opts.MinLen = minLen
	opts.ASCII = false
	opts.NullOnly = nullOnly
	return &opts
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name string
		opts *config.ScanOptions
		want int
	}{
		{name: "ascii only", opts: asciiOpts(4, false), want: 3},
		{name: "ascii null only", opts: asciiOpts(4, true), want: 4},
		{name: "utf16 only", opts: utf16Opts(4, false), want: 6},
		{name: "utf16 null only", opts: utf16Opts(4, true), want: 8},
		{name: "ascii min 2", opts: asciiOpts(2, false), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlap(tt.opts))
		})
	}

	t.Run("both encodings take the max", func(t *testing.T) {
		opts := config.DefaultScanOptions()
		opts.MinLen = 4
		// ascii 3, utf16 6
		assert.Equal(t, 6, Overlap(&opts))
	})
}

func TestTileSize(t *testing.T) {
	tests := []struct {
		name    string
		fileLen int
		hint    int
		ov      int
		want    int
	}{
		{name: "hint used as is", fileLen: 1 << 30, hint: 128 * 1024, ov: 3, want: 128 * 1024},
		{name: "small hint clamped up", fileLen: 1 << 30, hint: 4096, ov: 3, want: MinHintedTile},
		{name: "auto small file clamps to min", fileLen: 100, hint: 0, ov: 3, want: AutoTileMin},
		{name: "auto huge file clamps to max", fileLen: 1 << 33, hint: 0, ov: 3, want: AutoTileMax},
		// 16_000_000 / AutoTileTarget = 1_000_000, rounded up to the
		// next 64 KiB multiple.
		{name: "auto aligned", fileLen: 16_000_000, hint: 0, ov: 3, want: 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TileSize(tt.fileLen, tt.hint, tt.ov)
			if tt.hint == 0 {
				assert.Zero(t, got%TileAlign, "auto tile size must be aligned")
				assert.GreaterOrEqual(t, got, 8*tt.ov)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildIndependentOfThreads(t *testing.T) {
	// Auto-sized plans must not vary with the configured worker count:
	// seam positions decide where boundary-crossing runs get truncated,
	// so a thread-dependent plan would change record output.
	base := config.DefaultScanOptions()
	base.MinLen = 4
	base.Threads = 1
	reference := Build(10*1024*1024, &base)

	for _, threads := range []int{0, 2, 8, 64} {
		opts := base
		opts.Threads = threads
		assert.Equal(t, reference, Build(10*1024*1024, &opts), "threads=%d", threads)
	}
}

func TestBuildEmptyFile(t *testing.T) {
	tiles := Build(0, asciiOpts(4, false))
	require.Len(t, tiles, 1)
	assert.Equal(t, Tile{ASCII: true}, tiles[0])
}

func TestBuildPartition(t *testing.T) {
	tests := []struct {
		name    string
		fileLen int
		opts    *config.ScanOptions
	}{
		{name: "one tile", fileLen: 1000, opts: asciiOpts(4, false)},
		{name: "many tiles", fileLen: 10*MinHintedTile + 17, opts: asciiOpts(4, false)},
		{name: "exact multiple", fileLen: 4 * MinHintedTile, opts: asciiOpts(4, true)},
		{name: "utf16 halos", fileLen: 7*MinHintedTile + 1, opts: utf16Opts(8, true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.TileSize = MinHintedTile
			tt.opts.Threads = 3
			ov := Overlap(tt.opts)
			tiles := Build(tt.fileLen, tt.opts)
			require.NotEmpty(t, tiles)

			assert.Equal(t, 0, tiles[0].CoreStart)
			assert.Equal(t, tt.fileLen, tiles[len(tiles)-1].CoreEnd)

			for i, tile := range tiles {
				assert.GreaterOrEqual(t, tile.CoreStart, tile.Start)
				assert.LessOrEqual(t, tile.CoreEnd, tile.End)
				assert.Greater(t, tile.CoreEnd, tile.CoreStart)
				assert.LessOrEqual(t, tile.CoreStart-tile.Start, ov)
				assert.LessOrEqual(t, tile.End-tile.CoreEnd, ov)

				if i > 0 {
					assert.Equal(t, tiles[i-1].CoreEnd, tile.CoreStart, "cores must butt exactly")
					// Interior boundaries carry a full halo on each side.
					assert.GreaterOrEqual(t, tiles[i-1].End-tile.Start, ov)
				}
			}
		})
	}
}

func TestBuildCopiesEncodings(t *testing.T) {
	opts := config.DefaultScanOptions()
	opts.UTF16BE = true
	tiles := Build(100, &opts)
	require.NotEmpty(t, tiles)
	for _, tile := range tiles {
		assert.True(t, tile.ASCII)
		assert.True(t, tile.UTF16LE)
		assert.True(t, tile.UTF16BE)
	}
}

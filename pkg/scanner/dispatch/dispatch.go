// Package dispatch drives the detectors over a tile plan with a fixed
// pool of workers. Tiles are handed out through a single atomic counter,
// so idle workers steal whatever tile is next regardless of size skew.
package dispatch

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/wandb/parallel"

	"github.com/CompassSecurity/stringer/pkg/config"
	"github.com/CompassSecurity/stringer/pkg/scanner/detect"
	"github.com/CompassSecurity/stringer/pkg/scanner/plan"
)

// Workers resolves the effective worker count: the configured thread
// count (0 probes the CPUs), never more than there are tiles, never
// less than one.
func Workers(configured, tiles int) int {
	if configured <= 0 {
		configured = runtime.NumCPU()
	}
	if configured > tiles {
		configured = tiles
	}
	if configured < 1 {
		configured = 1
	}
	return configured
}

// Run scans every tile of the plan over buf, emitting records through r.
// A detector error is logged and the worker moves on to the next tile;
// sibling workers are never stopped. Run returns after all workers join.
func Run(ctx context.Context, buf []byte, tiles []plan.Tile, opts *config.ScanOptions, r detect.Reporter) {
	workers := Workers(opts.Threads, len(tiles))

	var next atomic.Int64

	// With a single worker there is nothing to coordinate; run the
	// drain loop on the calling goroutine.
	if workers == 1 {
		drain(ctx, &next, buf, tiles, opts, r)
		return
	}

	group := parallel.Limited(ctx, workers)
	for w := 0; w < workers; w++ {
		group.Go(func(ctx context.Context) {
			drain(ctx, &next, buf, tiles, opts, r)
		})
	}
	group.Wait()
}

// drain repeatedly claims the next unscanned tile until the plan is
// exhausted.
func drain(ctx context.Context, next *atomic.Int64, buf []byte, tiles []plan.Tile, opts *config.ScanOptions, r detect.Reporter) {
	for {
		idx := next.Add(1) - 1
		if idx >= int64(len(tiles)) {
			return
		}
		scanTile(tiles[idx], buf, opts, r)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// scanTile slices the tile's span out of buf, converts the core bounds to
// slice-relative offsets, and invokes the enabled detectors in fixed
// order: ASCII first, then UTF-16LE, then UTF-16BE.
func scanTile(t plan.Tile, buf []byte, opts *config.ScanOptions, r detect.Reporter) {
	slice := buf[t.Start:t.End]
	base := uint64(t.Start)
	coreStart := t.CoreStart - t.Start
	coreEnd := t.CoreEnd - t.Start

	if t.ASCII {
		if err := detect.ScanASCII(opts, base, coreStart, coreEnd, slice, r); err != nil {
			log.Warn().Err(err).Int("tileStart", t.Start).Msg("ASCII scan failed for tile")
		}
	}
	if t.UTF16LE {
		if err := detect.ScanUTF16LE(opts, base, coreStart, coreEnd, slice, r); err != nil {
			log.Warn().Err(err).Int("tileStart", t.Start).Msg("UTF-16LE scan failed for tile")
		}
	}
	if t.UTF16BE {
		if err := detect.ScanUTF16BE(opts, base, coreStart, coreEnd, slice, r); err != nil {
			log.Warn().Err(err).Int("tileStart", t.Start).Msg("UTF-16BE scan failed for tile")
		}
	}
}

package detect

import (
	"github.com/CompassSecurity/stringer/pkg/config"
)

// ScanUTF16LE scans buf for runs of ASCII-range UTF-16LE code units
// (hi == 0, printable lo). The scanner strides two bytes at a time over
// even indices only; it never resynchronises to odd offsets, so a single
// stray byte in front of an otherwise valid sequence suppresses detection.
//
// Every emission for a run, including the cap chunks of an oversize run,
// is gated on the run's start lying inside the core window. A tile that
// picks a long run up inside its left halo therefore never emits for it;
// the owning tile carries the run, chunk by chunk, as far as its slice
// reaches.
func ScanUTF16LE(opts *config.ScanOptions, base uint64, coreStart, coreEnd int, buf []byte, r Reporter) error {
	return scanUTF16(opts, base, coreStart, coreEnd, buf, false, r)
}

// ScanUTF16BE is the big-endian mirror of ScanUTF16LE: a unit is accepted
// when its first byte is zero and its second byte is printable.
func ScanUTF16BE(opts *config.ScanOptions, base uint64, coreStart, coreEnd int, buf []byte, r Reporter) error {
	return scanUTF16(opts, base, coreStart, coreEnd, buf, true, r)
}

func scanUTF16(opts *config.ScanOptions, base uint64, coreStart, coreEnd int, buf []byte, bigEndian bool, r Reporter) error {
	n := len(buf)

	runStart := 0 // start of the enclosing run in bytes; gates every chunk
	start := 0    // start of the current cap chunk in bytes
	chars := 0    // units in the current cap chunk
	inRun := false

	emit := func(end int) error {
		if chars < opts.MinLen || runStart < coreStart || runStart >= coreEnd {
			return nil
		}
		if opts.NullOnly {
			// The double-NUL terminator must directly follow the
			// run within the slice.
			if end+1 >= n || buf[end] != 0x00 || buf[end+1] != 0x00 {
				return nil
			}
		}
		if bigEndian {
			return r.EmitUTF16BE(base+uint64(start), chars, buf[start:end])
		}
		return r.EmitUTF16LE(base+uint64(start), chars, buf[start:end])
	}

	i := 0
	for i+1 < n {
		lo, hi := buf[i], buf[i+1]
		if bigEndian {
			lo, hi = hi, lo
		}

		if hi == 0x00 && printable(lo) {
			if !inRun {
				inRun = true
				runStart = i
			}
			if chars == 0 {
				start = i
			}
			chars++
			i += 2

			// Oversize runs are chunked: emit at the cap and keep
			// scanning from the next unit. The gate stays on
			// runStart, not the chunk start, so the chunk sequence
			// of a boundary-crossing run comes from one tile only.
			if 2*chars >= opts.CapRunBytes {
				if err := emit(i); err != nil {
					return err
				}
				chars = 0
			}
			continue
		}

		if inRun {
			if err := emit(i); err != nil {
				return err
			}
			inRun = false
			chars = 0
		}
		i += 2
	}

	// A trailing open run is closed under the same rules; with no bytes
	// left a required terminator cannot be verified.
	if inRun {
		if err := emit(i); err != nil {
			return err
		}
	}
	return nil
}

package detect

import (
	"github.com/CompassSecurity/stringer/pkg/config"
)

// ScanASCII walks buf and reports every maximal printable run that starts
// inside [coreStart, coreEnd) and spans at least MinLen bytes. base is the
// absolute file offset of buf[0]; coreStart and coreEnd are relative to buf.
//
// A run that reaches CapRunBytes is emitted once with the capped length
// and the remainder of the run is consumed without further emission. A run
// still open at the end of buf cannot have its terminator verified, so
// null-only mode drops it.
func ScanASCII(opts *config.ScanOptions, base uint64, coreStart, coreEnd int, buf []byte, r Reporter) error {
	n := len(buf)
	i := 0
	for i < n {
		if !printable(buf[i]) {
			i++
			continue
		}

		start := i
		for i < n && printable(buf[i]) && i-start < opts.CapRunBytes {
			i++
		}
		run := i - start
		capped := i < n && printable(buf[i])

		emit := run >= opts.MinLen && start >= coreStart && start < coreEnd
		if emit && opts.NullOnly {
			emit = i < n && buf[i] == 0x00
		}
		if emit {
			if err := r.EmitASCII(base+uint64(start), run, buf[start:i]); err != nil {
				return err
			}
		}

		if capped {
			// Consume the rest of the over-cap run so it yields
			// exactly one record at its start.
			for i < n && printable(buf[i]) {
				i++
			}
		}
	}
	return nil
}

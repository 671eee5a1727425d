// Package detect implements the run detectors: stateless scanners that
// walk one tile's byte slice and report every qualifying string run whose
// start lies inside the tile's core window.
package detect

// Reporter receives one call per qualifying run. The payload slices are
// borrowed views over the scanned buffer and must not be retained past
// the call.
type Reporter interface {
	EmitASCII(offset uint64, chars int, payload []byte) error
	EmitUTF16LE(offset uint64, chars int, region []byte) error
	EmitUTF16BE(offset uint64, chars int, region []byte) error
}

// printable reports whether b is an allowed ASCII string byte: the
// graphic range 0x20..0x7E plus tab, LF and CR. This matches the byte
// set the Unix strings command accepts.
func printable(b byte) bool {
	if b == '\t' || b == '\n' || b == '\r' {
		return true
	}
	return b >= 0x20 && b <= 0x7E
}

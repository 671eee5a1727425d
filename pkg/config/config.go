package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Defaults for scan options. MinLen and CapRunBytes match the classic
// reverse-engineering triage settings; encodings default to ASCII plus
// UTF-16LE since Windows binaries carry most of their strings as UTF-16.
const (
	DefaultMinLen      = 2
	DefaultCapRunBytes = 4096
	DefaultThreads     = 1
)

// Validation errors. These map to exit code 2 in the CLI.
var (
	ErrMinLenTooSmall      = errors.New("min-len must be at least 2")
	ErrNoEncodingsSelected = errors.New("at least one encoding must be selected")
	ErrInvalidCap          = errors.New("cap-run-bytes must be at least 1")
	ErrInvalidThreads      = errors.New("threads must be a positive number or 'auto'")
	ErrUnknownEncoding     = errors.New("unknown encoding")
)

// ScanOptions holds the validated, immutable settings for one scan run.
// It is shared read-only across all workers after Validate succeeds.
type ScanOptions struct {
	// MinLen is the minimum run length in units (bytes for ASCII,
	// 16-bit code units for UTF-16).
	MinLen int

	// Enabled encodings.
	ASCII   bool
	UTF16LE bool
	UTF16BE bool

	// Threads is the worker count; 0 means probe the CPU count.
	Threads int

	// JSON switches record output from text lines to JSONL.
	JSON bool

	// NullOnly requires a NUL terminator immediately after each run.
	NullOnly bool

	// CapRunBytes bounds both how many bytes of a single run the
	// detectors consume and how many bytes of payload are rendered.
	CapRunBytes int

	// TileSize is a chunk size hint in bytes; 0 selects the automatic
	// sizing policy.
	TileSize int
}

// DefaultScanOptions returns options with all defaults applied.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		MinLen:      DefaultMinLen,
		ASCII:       true,
		UTF16LE:     true,
		Threads:     DefaultThreads,
		CapRunBytes: DefaultCapRunBytes,
	}
}

// Validate checks the option invariants once; the options are treated as
// immutable afterwards.
func (o *ScanOptions) Validate() error {
	if o.MinLen < 2 {
		return fmt.Errorf("%w (got %d)", ErrMinLenTooSmall, o.MinLen)
	}
	if !o.ASCII && !o.UTF16LE && !o.UTF16BE {
		return ErrNoEncodingsSelected
	}
	if o.CapRunBytes < 1 {
		return fmt.Errorf("%w (got %d)", ErrInvalidCap, o.CapRunBytes)
	}
	if o.Threads < 0 {
		return fmt.Errorf("%w (got %d)", ErrInvalidThreads, o.Threads)
	}
	return nil
}

// ApplyEncodings parses a comma-separated encoding list (the --enc flag or
// the config file value) onto the option booleans. The special value "all"
// enables every supported encoding.
func (o *ScanOptions) ApplyEncodings(list []string) error {
	o.ASCII, o.UTF16LE, o.UTF16BE = false, false, false
	for _, raw := range list {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "ascii":
			o.ASCII = true
		case "utf16le":
			o.UTF16LE = true
		case "utf16be":
			o.UTF16BE = true
		case "all":
			o.ASCII, o.UTF16LE, o.UTF16BE = true, true, true
		case "":
			// tolerate stray commas
		default:
			return fmt.Errorf("%w: %q", ErrUnknownEncoding, raw)
		}
	}
	return nil
}

// ParseThreads parses the --threads value. "auto" (or "0") selects CPU
// probing; anything else must be a positive integer.
func ParseThreads(value string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "auto" || v == "0" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidThreads, value)
	}
	return n, nil
}

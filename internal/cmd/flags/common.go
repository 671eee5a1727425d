package flags

import (
	"github.com/CompassSecurity/stringer/pkg/config"
	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

// ScanFlags holds the raw flag values for a scan invocation before they
// are merged with config file values and validated.
type ScanFlags struct {
	MinLen      int
	Encodings   []string
	Threads     string
	JSON        bool
	NullOnly    bool
	CapRunBytes int
	TileSize    string
	Output      string
}

// AddScanFlags registers the standard scanning flags on cmd.
func AddScanFlags(cmd *cobra.Command, f *ScanFlags) {
	cmd.Flags().IntVarP(&f.MinLen, "min-len", "m", config.DefaultMinLen, "Minimum run length in units (bytes for ASCII, code units for UTF-16)")
	cmd.Flags().StringSliceVarP(&f.Encodings, "enc", "e", []string{"ascii", "utf16le"}, "Encodings to scan, comma separated: ascii, utf16le, utf16be, all")
	cmd.Flags().StringVarP(&f.Threads, "threads", "t", "1", "Worker count, or 'auto' to probe the CPU count")
	cmd.Flags().BoolVarP(&f.JSON, "json", "j", false, "Emit one JSON object per record instead of text lines")
	cmd.Flags().BoolVarP(&f.NullOnly, "null-only", "n", false, "Only report runs immediately followed by a NUL terminator")
	cmd.Flags().IntVarP(&f.CapRunBytes, "cap-run-bytes", "c", config.DefaultCapRunBytes, "Cap on bytes consumed and rendered per run")
	cmd.Flags().StringVar(&f.TileSize, "tile-size", "auto", "Chunk size per worker task (e.g. 256KiB, 1MB); 'auto' sizes from the file length")
	cmd.Flags().StringVarP(&f.Output, "output", "o", "", "Write records to a file instead of standard output")
}

// ResolveScanOptions merges CLI flags, config file values, and defaults
// into validated scan options plus the output path. Priority: CLI flags >
// config file > defaults.
func ResolveScanOptions(cmd *cobra.Command) (*config.ScanOptions, string, error) {
	opts := config.DefaultScanOptions()

	opts.MinLen = config.GetIntValue(cmd, "min-len", func(c *config.Config) int {
		return c.Scan.MinLen
	})
	opts.CapRunBytes = config.GetIntValue(cmd, "cap-run-bytes", func(c *config.Config) int {
		return c.Scan.CapRunBytes
	})
	opts.JSON = config.GetBoolValue(cmd, "json", func(c *config.Config) bool {
		return c.Output.JSON
	})
	opts.NullOnly = config.GetBoolValue(cmd, "null-only", func(c *config.Config) bool {
		return c.Scan.NullOnly
	})

	encodings := config.GetStringSliceValue(cmd, "enc", func(c *config.Config) []string {
		return c.Scan.Encodings
	})
	if err := opts.ApplyEncodings(encodings); err != nil {
		return nil, "", err
	}

	threadsValue := config.GetStringValue(cmd, "threads", func(c *config.Config) string {
		return c.Scan.Threads
	})
	threads, err := config.ParseThreads(threadsValue)
	if err != nil {
		return nil, "", err
	}
	opts.Threads = threads

	tileValue := config.GetStringValue(cmd, "tile-size", func(c *config.Config) string {
		return c.Scan.TileSize
	})
	tileSize, err := ParseTileSize(tileValue)
	if err != nil {
		return nil, "", err
	}
	opts.TileSize = tileSize

	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	output := config.GetStringValue(cmd, "output", func(c *config.Config) string {
		return c.Output.File
	})

	return &opts, output, nil
}

// ParseTileSize accepts "auto", "0", or a human-readable byte size like
// "256KiB" or "1MB".
func ParseTileSize(value string) (int, error) {
	if value == "" || value == "0" || value == "auto" {
		return 0, nil
	}
	size, err := units.RAMInBytes(value)
	if err != nil {
		return 0, err
	}
	return int(size), nil
}

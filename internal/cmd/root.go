package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/CompassSecurity/stringer/internal/cmd/docs"
	"github.com/CompassSecurity/stringer/internal/cmd/flags"
	"github.com/CompassSecurity/stringer/pkg/config"
	"github.com/CompassSecurity/stringer/pkg/format"
	"github.com/CompassSecurity/stringer/pkg/input"
	"github.com/CompassSecurity/stringer/pkg/scanner/dispatch"
	"github.com/CompassSecurity/stringer/pkg/scanner/emit"
	"github.com/CompassSecurity/stringer/pkg/scanner/plan"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version information - set via ldflags during build
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	rootCmd = &cobra.Command{
		Use:   "stringer [flags] <file|->",
		Short: "Extract printable strings from binary files",
		Long: `Stringer locates runs of printable ASCII bytes and ASCII-range UTF-16
code units in binary files and prints one record per run with its absolute
file offset, kind, length, and text. It is meant for reverse-engineering
triage of executables and memory dumps, where the embedded strings are a
high-signal, low-cost summary of a binary.

Records go to standard output (or --output); diagnostics go to standard
error, so record streams stay clean in pipelines.`,
		Example: `
# Scan a binary with defaults (ASCII + UTF-16LE, min length 2)
stringer ./malware.bin

# Only NUL-terminated ASCII strings of at least 6 characters, as JSONL
stringer --enc ascii --min-len 6 --null-only --json ./dump.raw

# Scan standard input with 8 worker threads
cat core.img | stringer --threads 8 -

# Write records to a file, auto-sized worker pool
stringer -t auto -o strings.txt ./firmware.img
`,
		Version:       getVersion(),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadConfigFile(cmd)
			initLogger(cmd)
			setGlobalLogLevel(cmd)
		},
		RunE: runScan,
	}

	scanFlags flags.ScanFlags

	// Logging flags
	JsonLogoutput bool
	LogFile       string
	LogColor      bool
	LogDebug      bool
	LogQuiet      bool
	LogLevel      string
	ConfigFile    string
)

// IOError marks failures in input acquisition or record output so main
// can distinguish them (exit 1) from usage and validation errors (exit 2).
type IOError struct {
	Err error
}

func (e *IOError) Error() string { return e.Err.Error() }
func (e *IOError) Unwrap() error { return e.Err }

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	log.Error().Err(err).Msg("stringer failed")

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return 1
	}
	return 2
}

// getVersion returns the version string set via ldflags; Commit and Date
// are not part of it.
func getVersion() string {
	return Version
}

func init() {
	rootCmd.AddCommand(docs.NewDocsCmd(rootCmd))

	flags.AddScanFlags(rootCmd, &scanFlags)

	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file path (YAML, JSON, or TOML). Example: ~/.config/stringer/stringer.yaml")
	rootCmd.PersistentFlags().BoolVar(&JsonLogoutput, "json-log", false, "Use JSON as log output format")
	rootCmd.PersistentFlags().StringVarP(&LogFile, "logfile", "l", "", "Log output to a file")
	rootCmd.PersistentFlags().BoolVar(&LogDebug, "verbose", false, "Enable debug logging (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&LogQuiet, "quiet", "q", false, "Only log errors; keeps stderr silent in pipelines")
	rootCmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Set log level globally (debug, info, warn, error). Example: --log-level=warn")
	rootCmd.PersistentFlags().BoolVar(&LogColor, "color", true, "Enable colored log output (auto-disabled when using --logfile)")

	rootCmd.SetVersionTemplate(`{{.Version}}
`)
}

func runScan(cmd *cobra.Command, args []string) error {
	opts, output, err := flags.ResolveScanOptions(cmd)
	if err != nil {
		return err
	}

	buf, err := input.Load(args[0])
	if err != nil {
		return &IOError{Err: err}
	}
	defer func() { _ = buf.Close() }()

	sink, err := openSink(output)
	if err != nil {
		return err
	}

	emitter := emit.New(sink, opts)
	tiles := plan.Build(len(buf.Data), opts)
	workers := dispatch.Workers(opts.Threads, len(tiles))

	started := time.Now()
	dispatch.Run(cmd.Context(), buf.Data, tiles, opts, emitter)

	if err := sink.Close(); err != nil {
		return &IOError{Err: err}
	}

	log.Info().
		Int("bytes", len(buf.Data)).
		Int("tiles", len(tiles)).
		Int("workers", workers).
		Uint64("hits", emitter.Hits()).
		Dur("duration", time.Since(started)).
		Msg("Scan complete")
	return nil
}

// openSink returns the record destination: buffered stdout, or a buffered
// file when --output is set.
func openSink(output string) (*emit.FileSink, error) {
	if output == "" {
		return emit.NewStdoutSink(), nil
	}

	// #nosec G304 - User-provided output path via --output flag, user controls their own filesystem
	f, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, format.FileUserReadWrite)
	if err != nil {
		return nil, &IOError{Err: err}
	}
	return emit.NewFileSink(f), nil
}

type CustomWriter struct {
	Writer *os.File
}

func (cw *CustomWriter) Write(p []byte) (n int, err error) {
	originalLen := len(p)

	if bytes.HasSuffix(p, []byte("\n")) {
		p = bytes.TrimSuffix(p, []byte("\n"))
	}

	// necessary as to: https://github.com/rs/zerolog/blob/master/log.go#L474
	newlineChars := []byte("\n")
	if runtime.GOOS == "windows" {
		newlineChars = []byte("\n\r")
	}

	modified := append(p, newlineChars...)

	written, err := cw.Writer.Write(modified)
	if err != nil {
		return 0, err
	}

	if written != len(modified) {
		return 0, io.ErrShortWrite
	}

	return originalLen, nil
}

// initLogger routes diagnostics to stderr (or --logfile); stdout is
// reserved for records.
func initLogger(cmd *cobra.Command) {
	defaultOut := &CustomWriter{Writer: os.Stderr}
	colorEnabled := LogColor

	if LogFile != "" {
		// #nosec G304 - User-provided log file path via --logfile flag, user controls their own filesystem
		runLogFile, err := os.OpenFile(
			LogFile,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			format.FileUserReadWrite,
		)
		if err != nil {
			panic(err)
		}
		defaultOut = &CustomWriter{Writer: runLogFile}

		rootFlags := cmd.Root().PersistentFlags()
		if !rootFlags.Changed("color") {
			colorEnabled = false
		}
	}

	if JsonLogoutput {
		log.Logger = zerolog.New(defaultOut).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{
			Out:        defaultOut,
			TimeFormat: time.RFC3339,
			NoColor:    !colorEnabled,
		}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}
}

func setGlobalLogLevel(cmd *cobra.Command) {
	if LogLevel != "" {
		switch LogLevel {
		case "trace":
			zerolog.SetGlobalLevel(zerolog.TraceLevel)
			log.Trace().Msg("Log level set to trace (explicit)")
		case "debug":
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
			log.Debug().Msg("Log level set to debug (explicit)")
		case "info":
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			log.Info().Msg("Log level set to info (explicit)")
		case "warn":
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case "error":
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		default:
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			log.Warn().Str("logLevelSpecified", LogLevel).Msg("Invalid log level, defaulting to info")
		}
		return
	}

	if LogQuiet {
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		return
	}

	if LogDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("Log level set to debug (--verbose)")
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// loadConfigFile loads the configuration from a file if specified
func loadConfigFile(cmd *cobra.Command) {
	_, err := config.LoadConfig(ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration file")
	}
}

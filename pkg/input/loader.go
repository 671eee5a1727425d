// Package input acquires the scan buffer: POSIX regular files are memory
// mapped read-only, standard input and empty files land in a heap
// allocation. The Buffer remembers its origin so Close releases the right
// resource.
package input

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/h2non/filetype"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotRegularFile is returned for directories, devices, sockets
	// and the like.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrFileTooLarge is returned when the file size does not fit the
	// platform word.
	ErrFileTooLarge = errors.New("file too large to scan")
)

// Origin tags how the buffer was acquired.
type Origin int

const (
	// OriginHeap marks an owned heap allocation (stdin, empty file, or
	// platforms without mmap support).
	OriginHeap Origin = iota

	// OriginMmap marks a borrowed read-only memory map.
	OriginMmap
)

// Buffer is the loaded input. Data is borrowed read-only by all scan
// workers; Close must not be called before they have joined.
type Buffer struct {
	Data   []byte
	origin Origin
}

// Origin reports how the buffer was acquired.
func (b *Buffer) Origin() Origin {
	return b.origin
}

// Close releases the mapping or drops the heap reference.
func (b *Buffer) Close() error {
	if b.origin == OriginMmap && b.Data != nil {
		err := unmapFile(b.Data)
		b.Data = nil
		return err
	}
	b.Data = nil
	return nil
}

// Load acquires the input buffer for path; "-" reads standard input into
// a heap buffer.
func Load(path string) (*Buffer, error) {
	if path == "-" {
		return loadReader(os.Stdin)
	}

	// #nosec G304 - The scan target path comes from the CLI positional argument
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !st.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}
	if uint64(st.Size()) > uint64(math.MaxInt) {
		return nil, fmt.Errorf("%s: %w", path, ErrFileTooLarge)
	}

	size := int(st.Size())
	if size == 0 {
		return &Buffer{Data: []byte{}, origin: OriginHeap}, nil
	}

	buf, err := loadFile(f, size)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	sniff(path, buf.Data)
	return buf, nil
}

// loadReader drains r into a heap buffer.
func loadReader(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return &Buffer{Data: data, origin: OriginHeap}, nil
}

// sniff logs the detected container format of the input. Purely
// informational for triage; unknown types are normal for raw dumps.
func sniff(path string, data []byte) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		log.Debug().Str("file", path).Int("bytes", len(data)).Msg("Scanning input of unknown type")
		return
	}
	log.Debug().Str("file", path).Str("type", kind.MIME.Value).Int("bytes", len(data)).Msg("Scanning input")
}

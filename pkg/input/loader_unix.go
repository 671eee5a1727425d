//go:build unix

package input

import (
	"os"

	"golang.org/x/sys/unix"
)

// loadFile maps a non-empty regular file read-only. The mapping is shared
// and never written, so there is no copy of the file in memory.
func loadFile(f *os.File, size int) (*Buffer, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &Buffer{Data: data, origin: OriginMmap}, nil
}

func unmapFile(data []byte) error {
	return unix.Munmap(data)
}

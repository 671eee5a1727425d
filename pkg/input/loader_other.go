//go:build !unix

package input

import (
	"io"
	"os"
)

// loadFile reads the whole file into a heap buffer on platforms without
// POSIX mmap.
func loadFile(f *os.File, size int) (*Buffer, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, err
	}
	return &Buffer{Data: data, origin: OriginHeap}, nil
}

func unmapFile(data []byte) error {
	return nil
}

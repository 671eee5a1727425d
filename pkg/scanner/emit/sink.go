package emit

import (
	"bufio"
	"io"
	"os"
)

// Sink is the destination for serialized records. WriteAll consumes its
// entire argument or fails; concurrent callers are serialised by the
// Emitter, never by the sink itself.
type Sink interface {
	WriteAll(p []byte) error
}

// WriterSink adapts any io.Writer into a Sink with write-all semantics.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) WriteAll(p []byte) error {
	n, err := s.w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

// FileSink buffers record writes to a file (or stdout) and flushes on
// Close. The file is only closed when the sink owns it.
type FileSink struct {
	f    *os.File
	bw   *bufio.Writer
	owns bool
}

// NewStdoutSink returns a buffered sink over standard output. Close
// flushes but leaves stdout open.
func NewStdoutSink() *FileSink {
	return &FileSink{f: os.Stdout, bw: bufio.NewWriter(os.Stdout)}
}

// NewFileSink returns a buffered sink that owns f and closes it on Close.
func NewFileSink(f *os.File) *FileSink {
	return &FileSink{f: f, bw: bufio.NewWriter(f), owns: true}
}

func (s *FileSink) WriteAll(p []byte) error {
	n, err := s.bw.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return io.ErrShortWrite
	}
	return nil
}

// Close flushes buffered records and releases the file if owned.
func (s *FileSink) Close() error {
	if err := s.bw.Flush(); err != nil {
		return err
	}
	if s.owns {
		return s.f.Close()
	}
	return nil
}

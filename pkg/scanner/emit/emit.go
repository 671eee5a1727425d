// Package emit serializes hit records and writes them through a pluggable
// sink. Each record is rendered lock-free into a per-call scratch buffer;
// only the final sink write holds the emitter mutex, so records from
// concurrent workers never interleave but rendering runs in parallel.
package emit

import (
	"bytes"
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/CompassSecurity/stringer/pkg/config"
)

// Kind names as they appear in records. The text columns are padded to
// eight characters; the trailing spaces are part of the column.
const (
	kindASCII   = "ascii"
	kindUTF16LE = "utf16le"
	kindUTF16BE = "utf16be"

	columnASCII   = "ascii   "
	columnUTF16LE = "utf16le "
	columnUTF16BE = "utf16be "
)

// record is the JSONL shape of one hit.
type record struct {
	Offset uint64 `json:"offset"`
	Kind   string `json:"kind"`
	Len    int    `json:"len"`
	Text   string `json:"text"`
}

// Emitter renders and writes one record per call. Safe for concurrent use.
type Emitter struct {
	mu   sync.Mutex
	sink Sink

	json      bool
	capRender int

	hits atomic.Uint64

	scratch sync.Pool
}

// New creates an emitter writing to sink. The JSON and render-cap
// settings are copied out of opts; the emitter never retains opts.
func New(sink Sink, opts *config.ScanOptions) *Emitter {
	return &Emitter{
		sink:      sink,
		json:      opts.JSON,
		capRender: opts.CapRunBytes,
		scratch: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
}

// Hits returns the number of records emitted so far.
func (e *Emitter) Hits() uint64 {
	return e.hits.Load()
}

// EmitASCII writes a record for an ASCII run. payload is a borrowed slice
// over the source buffer and is not retained past the call.
func (e *Emitter) EmitASCII(offset uint64, chars int, payload []byte) error {
	return e.emit(offset, chars, kindASCII, columnASCII, payload, 1, 0)
}

// EmitUTF16LE writes a record for a UTF-16LE run. region is the raw
// two-byte-per-unit slice; decoding is the projection unit -> low byte
// since the detector guarantees the high byte of every unit is zero.
func (e *Emitter) EmitUTF16LE(offset uint64, chars int, region []byte) error {
	return e.emit(offset, chars, kindUTF16LE, columnUTF16LE, region, 2, 0)
}

// EmitUTF16BE writes a record for a UTF-16BE run; the ASCII byte is the
// second byte of each unit.
func (e *Emitter) EmitUTF16BE(offset uint64, chars int, region []byte) error {
	return e.emit(offset, chars, kindUTF16BE, columnUTF16BE, region, 2, 1)
}

// emit renders the full line into a scratch buffer, then writes it to the
// sink under the mutex. stride and pick select the ASCII projection out of
// the payload (stride 1/pick 0 for ASCII, stride 2 for UTF-16 with the
// endianness choosing which byte carries the character).
func (e *Emitter) emit(offset uint64, chars int, kind, column string, payload []byte, stride, pick int) error {
	// Render-side cap, independent of the detector-side cap: the
	// reported length stays the detector's count, only the rendered
	// payload is truncated.
	if len(payload) > e.capRender {
		payload = payload[:e.capRender]
	}

	buf := e.scratch.Get().(*bytes.Buffer)
	buf.Reset()
	defer e.scratch.Put(buf)

	if e.json {
		if err := e.renderJSON(buf, offset, chars, kind, payload, stride, pick); err != nil {
			return err
		}
	} else {
		e.renderText(buf, offset, chars, column, payload, stride, pick)
	}

	e.mu.Lock()
	err := e.sink.WriteAll(buf.Bytes())
	e.mu.Unlock()
	if err != nil {
		return err
	}

	e.hits.Add(1)
	return nil
}

// renderText writes `<offset:16-hex> <kind-column>len=<chars> "<payload>"\n`.
func (e *Emitter) renderText(buf *bytes.Buffer, offset uint64, chars int, column string, payload []byte, stride, pick int) {
	appendHex16(buf, offset)
	buf.WriteByte(' ')
	buf.WriteString(column)
	buf.WriteString("len=")
	buf.Write(strconv.AppendInt(nil, int64(chars), 10))
	buf.WriteString(" \"")
	for i := pick; i < len(payload); i += stride {
		appendTextEscaped(buf, payload[i])
	}
	buf.WriteString("\"\n")
}

// renderJSON writes one JSONL object. The encoder appends the newline and
// HTML escaping is off so printable bytes like '<' stay raw. Control bytes
// are escaped by encoding/json: \t, \n, \r, \b and \f get their short
// forms, every other byte below 0x20 comes out as \u00xx.
func (e *Emitter) renderJSON(buf *bytes.Buffer, offset uint64, chars int, kind string, payload []byte, stride, pick int) error {
	text := make([]byte, 0, len(payload)/stride)
	for i := pick; i < len(payload); i += stride {
		text = append(text, payload[i])
	}

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return enc.Encode(record{
		Offset: offset,
		Kind:   kind,
		Len:    chars,
		Text:   string(text),
	})
}

// appendTextEscaped writes b with the text-mode escape set: the five
// specials get a backslash form, everything else is written raw.
func appendTextEscaped(buf *bytes.Buffer, b byte) {
	switch b {
	case '\n':
		buf.WriteString(`\n`)
	case '\r':
		buf.WriteString(`\r`)
	case '\t':
		buf.WriteString(`\t`)
	case '"':
		buf.WriteString(`\"`)
	case '\\':
		buf.WriteString(`\\`)
	default:
		buf.WriteByte(b)
	}
}

const hexDigits = "0123456789abcdef"

// appendHex16 writes offset as 16 lowercase hex digits, zero padded.
func appendHex16(buf *bytes.Buffer, offset uint64) {
	var tmp [16]byte
	for i := 15; i >= 0; i-- {
		tmp[i] = hexDigits[offset&0xF]
		offset >>= 4
	}
	buf.Write(tmp[:])
}

package buffer

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// NoData is the sentinel returned by ReadData when the buffer is empty or
// the read cursor has consumed all stored bytes. It is distinct from every
// valid byte count, so a callback-driven reader can tell "end of stream"
// apart from "zero bytes this call".
const NoData = -1

var (
	// ErrEmptyBuffer indicates an operation that requires image data was
	// called on an empty buffer.
	ErrEmptyBuffer = errors.New("buffer holds no image data")

	// ErrEmptyFile indicates LoadFromFile was pointed at a zero-length file.
	ErrEmptyFile = errors.New("image file is empty")
)

// Buffer holds a compiled program image as an owned, contiguous byte
// region with a separate read cursor. Appending and reading are
// independent axes of buffer state: AppendData never moves the cursor and
// ReadData never mutates the stored bytes.
//
// A Buffer is not safe for concurrent use; callers that share one across
// goroutines must serialize access externally.
type Buffer struct {
	data    []byte // nil until first populated
	readPos int    // next ReadData offset, 0 <= readPos <= len(data)
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// NewFromBytes returns a buffer holding a copy of src, read cursor at the
// start.
func NewFromBytes(src []byte) *Buffer {
	b := New()
	b.SetData(src)
	return b
}

// Size returns the number of bytes currently stored.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Data returns the internal store, or nil when the buffer is empty. The
// slice aliases buffer memory and is invalidated by the next mutating
// call; callers that need a stable copy must make one.
func (b *Buffer) Data() []byte {
	return b.data
}

// Remaining returns the number of stored bytes the read cursor has not
// yet consumed.
func (b *Buffer) Remaining() int {
	return len(b.data) - b.readPos
}

// Rewind resets the read cursor to the start without touching the stored
// image, so the same buffer can feed the engine's reader more than once.
func (b *Buffer) Rewind() {
	b.readPos = 0
}

// SetData replaces the buffer contents with a copy of src and resets the
// read cursor. Passing an empty slice leaves the buffer empty.
func (b *Buffer) SetData(src []byte) {
	if len(src) == 0 {
		b.data = nil
		b.readPos = 0
		return
	}
	data := make([]byte, len(src))
	copy(data, src)
	b.data = data
	b.readPos = 0
}

// AppendData grows the buffer by len(src), copies src to the end, and
// returns the number of bytes appended. The read cursor is untouched.
func (b *Buffer) AppendData(src []byte) int {
	b.data = append(b.data, src...)
	return len(src)
}

// ReadData copies up to len(dst) unread bytes into dst, advances the read
// cursor, and returns the count copied. The count is less than len(dst)
// only when the end of the stored data is reached. NoData is returned
// when the buffer is empty or the cursor is already at the end.
func (b *Buffer) ReadData(dst []byte) int {
	if len(b.data) == 0 || b.readPos == len(b.data) {
		return NoData
	}
	n := copy(dst, b.data[b.readPos:])
	b.readPos += n
	return n
}

// Read implements io.Reader over the unread portion of the buffer,
// reporting io.EOF once the cursor reaches the end.
func (b *Buffer) Read(p []byte) (int, error) {
	n := b.ReadData(p)
	if n == NoData {
		return 0, io.EOF
	}
	return n, nil
}

// Write implements io.Writer by appending to the buffer. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	return b.AppendData(p), nil
}

// SaveToFile writes the entire image to path, overwriting any existing
// file. Saving an empty buffer is ErrEmptyBuffer. A short write is an
// error; whatever bytes already reached the disk are left behind and the
// caller must treat the file as corrupt.
func (b *Buffer) SaveToFile(path string) error {
	if len(b.data) == 0 {
		return ErrEmptyBuffer
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image file: %w", err)
	}

	n, err := f.Write(b.data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing image file: %w", err)
	}
	if n != len(b.data) {
		return fmt.Errorf("writing image file: %w", io.ErrShortWrite)
	}
	return nil
}

// LoadFromFile replaces the buffer contents with the raw bytes of the
// named file and resets the read cursor. Any previously held image is
// dropped first. On any failure the buffer is left empty: a partial read
// never leaves a half-populated buffer that callers could mistake for a
// valid image. Loading a zero-length file is ErrEmptyFile.
func (b *Buffer) LoadFromFile(path string) error {
	b.data = nil
	b.readPos = 0

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening image file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("sizing image file: %w", err)
	}
	if info.Size() == 0 {
		return ErrEmptyFile
	}

	data := make([]byte, info.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		return fmt.Errorf("reading image file: %w", err)
	}
	b.data = data
	return nil
}

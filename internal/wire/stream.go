package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Input is the byte stream consumed by readers. Reads are synchronous and
// either return exactly the requested bytes or fail.
type Input interface {
	io.ByteReader
	// ReadFull returns exactly n bytes. The returned slice may alias internal
	// storage and is only valid until the next call.
	ReadFull(n int) ([]byte, error)
	// Skip advances the stream by n bytes.
	Skip(n int64) error
}

// Buffer is an in-memory Input and io.Writer. Writes append to the end; reads
// consume from the current offset.
type Buffer struct {
	buf []byte
	off int
}

// NewBuffer wraps b for reading. The buffer takes ownership of b.
func NewBuffer(b []byte) *Buffer { return &Buffer{buf: b} }

// Bytes returns the unread portion of the buffer.
func (b *Buffer) Bytes() []byte { return b.buf[b.off:] }

// Offset reports how many bytes were consumed so far.
func (b *Buffer) Offset() int { return b.off }

// Len reports the number of unread bytes.
func (b *Buffer) Len() int { return len(b.buf) - b.off }

// Reset empties the buffer, keeping the underlying storage.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

func (b *Buffer) ReadByte() (byte, error) {
	if b.off >= len(b.buf) {
		return 0, fmt.Errorf("wire: read 1 byte at offset %d: %w", b.off, io.ErrUnexpectedEOF)
	}
	c := b.buf[b.off]
	b.off++
	return c, nil
}

func (b *Buffer) ReadFull(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read length %d", ErrCorrupt, n)
	}
	if n > b.Len() {
		return nil, fmt.Errorf("wire: read %d bytes at offset %d: %w", n, b.off, io.ErrUnexpectedEOF)
	}
	p := b.buf[b.off : b.off+n]
	b.off += n
	return p, nil
}

func (b *Buffer) Skip(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative skip length %d", ErrCorrupt, n)
	}
	if n > int64(b.Len()) {
		return fmt.Errorf("wire: skip %d bytes at offset %d: %w", n, b.off, io.ErrUnexpectedEOF)
	}
	b.off += int(n)
	return nil
}

// NewInput adapts an io.Reader (file, socket) into an Input.
func NewInput(r io.Reader) Input {
	if in, ok := r.(Input); ok {
		return in
	}
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &readerInput{r: br}
}

const largeRead = 1 << 20

type readerInput struct {
	r       *bufio.Reader
	scratch []byte
}

func (in *readerInput) ReadByte() (byte, error) {
	c, err := in.r.ReadByte()
	if err != nil {
		return 0, eofToUnexpected(err)
	}
	return c, nil
}

func (in *readerInput) ReadFull(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read length %d", ErrCorrupt, n)
	}
	if n > largeRead {
		// grow with the data actually present, not the declared length
		p, err := io.ReadAll(io.LimitReader(in.r, int64(n)))
		if err != nil {
			return nil, err
		}
		if len(p) < n {
			return nil, io.ErrUnexpectedEOF
		}
		return p, nil
	}
	if cap(in.scratch) < n {
		in.scratch = make([]byte, n)
	}
	p := in.scratch[:n]
	if _, err := io.ReadFull(in.r, p); err != nil {
		return nil, eofToUnexpected(err)
	}
	return p, nil
}

func (in *readerInput) Skip(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative skip length %d", ErrCorrupt, n)
	}
	m, err := io.CopyN(io.Discard, in.r, n)
	if err != nil {
		return fmt.Errorf("wire: skipped %d of %d bytes: %w", m, n, eofToUnexpected(err))
	}
	return nil
}

func eofToUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

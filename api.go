package avrokit

import (
	"io"

	"github.com/reoring/avrokit/internal/wire"
)

// Input is the byte stream consumed by a Reader.
type Input = wire.Input

// Buffer is an in-memory Input that also implements io.Writer.
type Buffer = wire.Buffer

// NewBuffer wraps b as an Input.
func NewBuffer(b []byte) *Buffer { return wire.NewBuffer(b) }

// NewInput adapts an io.Reader (file, socket) into an Input.
func NewInput(r io.Reader) Input { return wire.NewInput(r) }

// Writer validates in-memory values against a compiled schema and emits them
// in the Avro binary encoding.
//
// A compiled Writer is immutable and may be used from several goroutines, each
// with its own output and ValidationContext.
type Writer interface {
	// Validate walks v and records every mismatch in vc. It reports whether
	// no issue was added.
	Validate(v any, vc *ValidationContext) bool
	// Write encodes v. Values that were not validated may fail with an error
	// wrapping ErrDataMismatch.
	Write(out io.Writer, v any) error
}

// Reader decodes Avro binary data into in-memory values. Like Writer, a
// compiled Reader is read-only once built.
type Reader interface {
	Read(in Input) (any, error)
	// Skip consumes one value without materializing it.
	Skip(in Input) error
}

// LogicalType refines a raw Avro value. Normalize converts an application
// value into the raw representation; Denormalize does the reverse.
type LogicalType interface {
	Validate(v any, vc *ValidationContext) bool
	Normalize(v any) (any, error)
	Denormalize(raw any) (any, error)
}

// FieldGetter lets application types expose record fields without
// reflection.
type FieldGetter interface {
	HasField(name string) bool
	Field(name string) any
}

// Branch selects a union branch explicitly, either by Name (the full name of
// a named type or the primitive/container kind) or by Index.
type Branch struct {
	Name  string
	Index int
	Value any
}

type noValue struct{}

func (noValue) String() string { return "<no value>" }

// NoValue is produced by readers that consume no wire data, for record
// fields that only exist in the reader schema.
var NoValue any = noValue{}

// WriteOpt configures array and map block encoding.
type WriteOpt struct {
	// BlockCount caps the number of items per block; 0 writes a single block.
	BlockCount int
	// WriteBlockSize prefixes every block with its byte size so that readers
	// can skip it without decoding the items.
	WriteBlockSize bool
}

// Validate runs w.Validate in a fresh context and returns the collected
// Issues, or nil.
func Validate(w Writer, v any) error {
	vc := NewValidationContext()
	if w.Validate(v, vc) {
		return nil
	}
	return vc.Issues()
}

// Marshal validates v and returns its binary encoding. A validation failure
// returns Issues (errors.Is(err, ErrDataMismatch) holds).
func Marshal(w Writer, v any) ([]byte, error) {
	if err := Validate(w, v); err != nil {
		return nil, err
	}
	var buf Buffer
	if err := w.Write(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a single value that must occupy all of data.
func Unmarshal(r Reader, data []byte) (any, error) {
	in := NewBuffer(data)
	v, err := r.Read(in)
	if err != nil {
		return nil, err
	}
	if in.Len() != 0 {
		return nil, CorruptErrorf("%d trailing bytes after value", in.Len())
	}
	return v, nil
}

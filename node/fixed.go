package node

import (
	"fmt"
	"io"
	"reflect"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/internal/wire"
)

// Fixed is exactly Size raw bytes with no length prefix.
type Fixed struct {
	Size int
}

// fixedBytes accepts []byte and [N]byte values.
func fixedBytes(v any) ([]byte, bool) {
	if b, ok := v.([]byte); ok {
		return b, true
	}
	rv := reflect.ValueOf(indirect(v))
	switch {
	case rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8:
		out := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(out), rv)
		return out, true
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return rv.Bytes(), true
	}
	return nil, false
}

func (f Fixed) Validate(v any, vc *avrokit.ValidationContext) bool {
	b, ok := fixedBytes(v)
	if !ok {
		vc.AddError(avrokit.CodeInvalidType, expected(fmt.Sprintf("fixed(%d)", f.Size), v))
		return false
	}
	if len(b) != f.Size {
		vc.AddError(avrokit.CodeInvalidSize, fmt.Sprintf("expected %d bytes, got %d", f.Size, len(b)))
		return false
	}
	return true
}

func (f Fixed) Write(out io.Writer, v any) error {
	b, ok := fixedBytes(v)
	if !ok || len(b) != f.Size {
		return avrokit.DataErrorf("expected %d raw bytes, got %s", f.Size, typeOf(v))
	}
	_, err := out.Write(b)
	return err
}

func (f Fixed) Read(in avrokit.Input) (any, error) { return wire.ReadFixed(in, f.Size) }
func (f Fixed) Skip(in avrokit.Input) error        { return in.Skip(int64(f.Size)) }

// EnumWriter encodes a symbol as its zero-based index.
type EnumWriter struct {
	Symbols []string
	index   map[string]int
}

// NewEnumWriter indexes symbols for lookup.
func NewEnumWriter(symbols []string) *EnumWriter {
	idx := make(map[string]int, len(symbols))
	for i, s := range symbols {
		idx[s] = i
	}
	return &EnumWriter{Symbols: symbols, index: idx}
}

func (e *EnumWriter) lookup(v any) (int, bool) {
	s, ok := asString(v)
	if !ok {
		return -1, false
	}
	i, ok := e.index[s]
	return i, ok
}

func (e *EnumWriter) Validate(v any, vc *avrokit.ValidationContext) bool {
	if _, ok := e.lookup(v); !ok {
		vc.AddError(avrokit.CodeInvalidEnum, fmt.Sprintf("expected one of %v, got %v", e.Symbols, v))
		return false
	}
	return true
}

func (e *EnumWriter) Write(out io.Writer, v any) error {
	i, ok := e.lookup(v)
	if !ok {
		return avrokit.DataErrorf("%v is not one of %v", v, e.Symbols)
	}
	return wire.WriteLong(out, int64(i))
}

// EnumReader decodes an index into a symbol. Symbols is indexed by the
// writer's index; under schema resolution it already holds the reader's
// symbol (or the reader's default) for every writer symbol.
type EnumReader struct {
	Symbols []string
}

func (e EnumReader) Read(in avrokit.Input) (any, error) {
	i, err := wire.ReadLong(in)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= int64(len(e.Symbols)) {
		return nil, avrokit.CorruptErrorf("enum index %d out of range [0, %d)", i, len(e.Symbols))
	}
	return e.Symbols[i], nil
}

func (e EnumReader) Skip(in avrokit.Input) error { return wire.SkipLong(in) }

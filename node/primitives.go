package node

import (
	"io"
	"math"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/internal/wire"
)

// Null encodes nothing and reads nil.
type Null struct{}

func (Null) Validate(v any, vc *avrokit.ValidationContext) bool {
	if !isNull(v) {
		vc.AddError(avrokit.CodeInvalidType, expected("null", v))
		return false
	}
	return true
}

func (Null) Write(out io.Writer, v any) error {
	if !isNull(v) {
		return avrokit.DataErrorf("%s", expected("null", v))
	}
	return nil
}

func (Null) Read(avrokit.Input) (any, error) { return nil, nil }
func (Null) Skip(avrokit.Input) error        { return nil }

// Boolean is a single byte.
type Boolean struct{}

func asBool(v any) (bool, bool) {
	b, ok := indirect(v).(bool)
	return b, ok
}

func (Boolean) Validate(v any, vc *avrokit.ValidationContext) bool {
	if _, ok := asBool(v); !ok {
		vc.AddError(avrokit.CodeInvalidType, expected("boolean", v))
		return false
	}
	return true
}

func (Boolean) Write(out io.Writer, v any) error {
	b, ok := asBool(v)
	if !ok {
		return avrokit.DataErrorf("%s", expected("boolean", v))
	}
	return wire.WriteBoolean(out, b)
}

func (Boolean) Read(in avrokit.Input) (any, error) { return wire.ReadBoolean(in) }

func (Boolean) Skip(in avrokit.Input) error {
	_, err := in.ReadFull(1)
	return err
}

// Int is a zig-zag varint restricted to 32 bits; it reads int32.
type Int struct{}

func asInt32(v any) (int32, bool, bool) {
	n, ok := asInt64(v)
	if !ok {
		return 0, false, false
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, true, false
	}
	return int32(n), true, true
}

func (Int) Validate(v any, vc *avrokit.ValidationContext) bool {
	_, isInt, inRange := asInt32(v)
	switch {
	case !isInt:
		vc.AddError(avrokit.CodeInvalidType, expected("int", v))
		return false
	case !inRange:
		vc.AddError(avrokit.CodeOutOfRange, "int must fit in 32 bits")
		return false
	}
	return true
}

func (Int) Write(out io.Writer, v any) error {
	n, _, ok := asInt32(v)
	if !ok {
		return avrokit.DataErrorf("%s", expected("int", v))
	}
	return wire.WriteLong(out, int64(n))
}

func (Int) Read(in avrokit.Input) (any, error) { return wire.ReadInt(in) }
func (Int) Skip(in avrokit.Input) error        { return wire.SkipLong(in) }

// Long is a 64-bit zig-zag varint; it reads int64.
type Long struct{}

func (Long) Validate(v any, vc *avrokit.ValidationContext) bool {
	if _, ok := asInt64(v); !ok {
		vc.AddError(avrokit.CodeInvalidType, expected("long", v))
		return false
	}
	return true
}

func (Long) Write(out io.Writer, v any) error {
	n, ok := asInt64(v)
	if !ok {
		return avrokit.DataErrorf("%s", expected("long", v))
	}
	return wire.WriteLong(out, n)
}

func (Long) Read(in avrokit.Input) (any, error) { return wire.ReadLong(in) }
func (Long) Skip(in avrokit.Input) error        { return wire.SkipLong(in) }

// Float is a 4-byte IEEE-754 value; it reads float32.
type Float struct{}

func (Float) Validate(v any, vc *avrokit.ValidationContext) bool {
	if _, ok := asFloat64(v); !ok {
		vc.AddError(avrokit.CodeInvalidType, expected("float", v))
		return false
	}
	return true
}

func (Float) Write(out io.Writer, v any) error {
	if f, ok := v.(float32); ok {
		return wire.WriteFloat(out, f)
	}
	f, ok := asFloat64(v)
	if !ok {
		return avrokit.DataErrorf("%s", expected("float", v))
	}
	return wire.WriteFloat(out, float32(f))
}

func (Float) Read(in avrokit.Input) (any, error) { return wire.ReadFloat(in) }
func (Float) Skip(in avrokit.Input) error        { return in.Skip(4) }

// Double is an 8-byte IEEE-754 value; it reads float64.
type Double struct{}

func (Double) Validate(v any, vc *avrokit.ValidationContext) bool {
	if _, ok := asFloat64(v); !ok {
		vc.AddError(avrokit.CodeInvalidType, expected("double", v))
		return false
	}
	return true
}

func (Double) Write(out io.Writer, v any) error {
	f, ok := asFloat64(v)
	if !ok {
		return avrokit.DataErrorf("%s", expected("double", v))
	}
	return wire.WriteDouble(out, f)
}

func (Double) Read(in avrokit.Input) (any, error) { return wire.ReadDouble(in) }
func (Double) Skip(in avrokit.Input) error        { return in.Skip(8) }

// String is a length-prefixed byte string read as a Go string.
type String struct{}

func (String) Validate(v any, vc *avrokit.ValidationContext) bool {
	if _, ok := asBytes(v); !ok {
		vc.AddError(avrokit.CodeInvalidType, expected("string", v))
		return false
	}
	return true
}

func (String) Write(out io.Writer, v any) error {
	if s, ok := v.(string); ok {
		return wire.WriteString(out, s)
	}
	b, ok := asBytes(v)
	if !ok {
		return avrokit.DataErrorf("%s", expected("string", v))
	}
	return wire.WriteBytes(out, b)
}

func (String) Read(in avrokit.Input) (any, error) { return wire.ReadString(in) }
func (String) Skip(in avrokit.Input) error        { return wire.SkipBytes(in) }

// Bytes shares the String layout but reads []byte.
type Bytes struct{}

func (Bytes) Validate(v any, vc *avrokit.ValidationContext) bool {
	if _, ok := asBytes(v); !ok {
		vc.AddError(avrokit.CodeInvalidType, expected("bytes", v))
		return false
	}
	return true
}

func (Bytes) Write(out io.Writer, v any) error {
	b, ok := asBytes(v)
	if !ok {
		return avrokit.DataErrorf("%s", expected("bytes", v))
	}
	return wire.WriteBytes(out, b)
}

func (Bytes) Read(in avrokit.Input) (any, error) { return wire.ReadBytes(in) }
func (Bytes) Skip(in avrokit.Input) error        { return wire.SkipBytes(in) }

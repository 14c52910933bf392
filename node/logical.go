package node

import (
	"io"

	avrokit "github.com/reoring/avrokit"
)

// LogicalWriter normalizes application values before handing them to the
// raw writer of the underlying type.
type LogicalWriter struct {
	Type avrokit.LogicalType
	Raw  avrokit.Writer
}

func (l *LogicalWriter) Validate(v any, vc *avrokit.ValidationContext) bool {
	if !l.Type.Validate(v, vc) {
		return false
	}
	raw, err := l.Type.Normalize(v)
	if err != nil {
		vc.AddError(avrokit.CodeLogicalType, err.Error())
		return false
	}
	return l.Raw.Validate(raw, vc)
}

func (l *LogicalWriter) Write(out io.Writer, v any) error {
	raw, err := l.Type.Normalize(v)
	if err != nil {
		return avrokit.DataErrorf("%v", err)
	}
	return l.Raw.Write(out, raw)
}

// LogicalReader denormalizes raw values after decoding.
type LogicalReader struct {
	Type avrokit.LogicalType
	Raw  avrokit.Reader
}

func (l *LogicalReader) Read(in avrokit.Input) (any, error) {
	raw, err := l.Raw.Read(in)
	if err != nil {
		return nil, err
	}
	v, err := l.Type.Denormalize(raw)
	if err != nil {
		return nil, avrokit.CorruptErrorf("%v", err)
	}
	return v, nil
}

func (l *LogicalReader) Skip(in avrokit.Input) error { return l.Raw.Skip(in) }

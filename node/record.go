package node

import (
	"io"

	avrokit "github.com/reoring/avrokit"
)

// PropertyWriter is one record field on the write side.
type PropertyWriter struct {
	Name       string
	Writer     avrokit.Writer
	HasDefault bool
	// Default is the in-memory default, written when the value lacks the field.
	Default any
}

// RecordWriter writes fields in declared order with no framing.
type RecordWriter struct {
	Name   string
	Fields []PropertyWriter
}

func (r *RecordWriter) Validate(v any, vc *avrokit.ValidationContext) bool {
	if !avrokit.IsRecordValue(v) {
		vc.AddError(avrokit.CodeInvalidType, expected("record "+r.Name, v))
		return false
	}
	ok := true
	for _, f := range r.Fields {
		vc.PushPath(f.Name)
		fv, present := avrokit.LookupField(v, f.Name)
		switch {
		case present:
			if !f.Writer.Validate(fv, vc) {
				ok = false
			}
		case f.HasDefault:
		default:
			vc.AddError(avrokit.CodeRequired, "field "+f.Name+" has no default")
			ok = false
		}
		vc.PopPath()
	}
	return ok
}

func (r *RecordWriter) Write(out io.Writer, v any) error {
	if !avrokit.IsRecordValue(v) {
		return avrokit.DataErrorf("%s", expected("record "+r.Name, v))
	}
	for _, f := range r.Fields {
		fv, present := avrokit.LookupField(v, f.Name)
		if !present {
			if !f.HasDefault {
				return avrokit.DataErrorf("record %s: missing field %q", r.Name, f.Name)
			}
			fv = f.Default
		}
		if err := f.Writer.Write(out, fv); err != nil {
			return err
		}
	}
	return nil
}

// PropertyReader is one writer-side field on the read side. Skip marks a
// field the reader schema does not know: its bytes are consumed and dropped.
type PropertyReader struct {
	Name       string
	Reader     avrokit.Reader
	HasDefault bool
	Default    any
	Skip       bool
}

// Absent stands in for a field that exists only in the reader schema. It
// consumes nothing and yields NoValue, which the record replaces with the
// field default.
type Absent struct{}

func (Absent) Read(avrokit.Input) (any, error) { return avrokit.NoValue, nil }
func (Absent) Skip(avrokit.Input) error        { return nil }

// RecordReader decodes fields in the writer's order into a map.
type RecordReader struct {
	Name   string
	Fields []PropertyReader
}

func (r *RecordReader) Read(in avrokit.Input) (any, error) {
	out := make(map[string]any, len(r.Fields))
	for _, f := range r.Fields {
		if f.Skip {
			if err := f.Reader.Skip(in); err != nil {
				return nil, err
			}
			continue
		}
		v, err := f.Reader.Read(in)
		if err != nil {
			return nil, err
		}
		if v == avrokit.NoValue {
			if !f.HasDefault {
				return nil, avrokit.CorruptErrorf("record %s: field %q has no value and no default", r.Name, f.Name)
			}
			v = cloneValue(f.Default)
		}
		out[f.Name] = v
	}
	return out, nil
}

func (r *RecordReader) Skip(in avrokit.Input) error {
	for _, f := range r.Fields {
		if err := f.Reader.Skip(in); err != nil {
			return err
		}
	}
	return nil
}

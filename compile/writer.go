// Package compile turns normalized schemas into trees of node Readers and
// Writers. Reader compilation implements Avro schema resolution: data
// written under one schema is decoded into the shape of another, and every
// incompatibility is reported here, before any bytes are read.
package compile

import (
	"fmt"
	"strconv"
	"strings"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/logical"
	"github.com/reoring/avrokit/node"
	"github.com/reoring/avrokit/schema"
)

// path is a JSON Pointer into a schema document.
type path []string

func (p path) with(seg ...any) path {
	out := make(path, len(p), len(p)+len(seg))
	copy(out, p)
	for _, s := range seg {
		switch t := s.(type) {
		case int:
			out = append(out, strconv.Itoa(t))
		default:
			out = append(out, fmt.Sprint(t))
		}
	}
	return out
}

func (p path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p, "/")
}

// Writer compiles s into a Writer. opt applies to every array and map.
func Writer(s *schema.Schema, opt avrokit.WriteOpt) (avrokit.Writer, error) {
	if s == nil {
		return nil, &avrokit.SchemaError{Kind: avrokit.ErrInvalidSchema, Path: "/", Reason: "nil schema"}
	}
	return writerFor(s, opt, nil)
}

func writerFor(s *schema.Schema, opt avrokit.WriteOpt, p path) (avrokit.Writer, error) {
	var w avrokit.Writer
	switch s.Kind {
	case schema.Null:
		w = node.Null{}
	case schema.Boolean:
		w = node.Boolean{}
	case schema.Int:
		w = node.Int{}
	case schema.Long:
		w = node.Long{}
	case schema.Float:
		w = node.Float{}
	case schema.Double:
		w = node.Double{}
	case schema.String:
		w = node.String{}
	case schema.Bytes:
		w = node.Bytes{}
	case schema.Fixed:
		w = node.Fixed{Size: s.Size}
	case schema.Enum:
		w = node.NewEnumWriter(s.Symbols)
	case schema.Array:
		items, err := writerFor(s.Items, opt, p.with("items"))
		if err != nil {
			return nil, err
		}
		w = &node.ArrayWriter{Items: items, Opt: opt}
	case schema.Map:
		values, err := writerFor(s.Values, opt, p.with("values"))
		if err != nil {
			return nil, err
		}
		w = &node.MapWriter{Values: values, Opt: opt}
	case schema.Record:
		rec := &node.RecordWriter{Name: s.FullName(), Fields: make([]node.PropertyWriter, len(s.Fields))}
		for i, f := range s.Fields {
			fp := p.with("fields", i)
			fw, err := writerFor(f.Type, opt, fp.with("type"))
			if err != nil {
				return nil, err
			}
			pw := node.PropertyWriter{Name: f.Name, Writer: fw, HasDefault: f.HasDefault}
			if f.HasDefault {
				def, err := defaultValue(f.Type, f.Default)
				if err != nil {
					return nil, invalidf(fp.with("default"), "%v", err)
				}
				if f.Type.Kind == schema.Union {
					def = avrokit.Branch{Index: 0, Value: def}
				}
				pw.Default = def
			}
			rec.Fields[i] = pw
		}
		w = rec
	case schema.Union:
		u := &node.UnionWriter{
			Branches: make([]avrokit.Writer, len(s.Branches)),
			Names:    make([]string, len(s.Branches)),
		}
		for i, b := range s.Branches {
			bw, err := writerFor(b, opt, p.with(i))
			if err != nil {
				return nil, err
			}
			u.Branches[i] = bw
			u.Names[i] = b.TypeName()
		}
		w = u
	default:
		return nil, invalidf(p, "unsupported type %q", s.Kind)
	}

	lt, err := logical.Lookup(s)
	if err != nil {
		return nil, invalidf(p.with("logicalType"), "%v", err)
	}
	if lt != nil {
		w = &node.LogicalWriter{Type: lt, Raw: w}
	}
	return w, nil
}

func invalidf(p path, format string, args ...any) error {
	return &avrokit.SchemaError{Kind: avrokit.ErrInvalidSchema, Path: p.String(), Reason: fmt.Sprintf(format, args...)}
}

// defaultValue converts a field default into the value the compiled nodes
// produce, logical types included.
func defaultValue(s *schema.Schema, raw any) (any, error) {
	v, err := schema.DefaultValue(s, raw)
	if err != nil {
		return nil, err
	}
	return denormalize(s, v)
}

func denormalize(s *schema.Schema, v any) (any, error) {
	switch s.Kind {
	case schema.Union:
		return denormalize(s.Branches[0], v)
	case schema.Array:
		if arr, ok := v.([]any); ok {
			for i := range arr {
				d, err := denormalize(s.Items, arr[i])
				if err != nil {
					return nil, err
				}
				arr[i] = d
			}
		}
	case schema.Map:
		if m, ok := v.(map[string]any); ok {
			for k := range m {
				d, err := denormalize(s.Values, m[k])
				if err != nil {
					return nil, err
				}
				m[k] = d
			}
		}
	case schema.Record:
		if m, ok := v.(map[string]any); ok {
			for _, f := range s.Fields {
				d, err := denormalize(f.Type, m[f.Name])
				if err != nil {
					return nil, err
				}
				m[f.Name] = d
			}
		}
	}
	lt, err := logical.Lookup(s)
	if err != nil || lt == nil {
		return v, err
	}
	return lt.Denormalize(v)
}

package node

import (
	"io"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/internal/wire"
)

func addContainerIssue(vc *avrokit.ValidationContext, code, kind string, v any) {
	switch code {
	case avrokit.CodeOneShotIterable:
		vc.AddError(code, typeOf(v)+" can only be traversed once")
	case avrokit.CodeInvalidKey:
		vc.AddError(code, "map keys must be strings")
	default:
		vc.AddError(code, expected(kind, v))
	}
}

// ArrayWriter writes a slice or array as a block sequence.
type ArrayWriter struct {
	Items avrokit.Writer
	Opt   avrokit.WriteOpt
}

func (a *ArrayWriter) Validate(v any, vc *avrokit.ValidationContext) bool {
	l, code := asList(v)
	if code != "" {
		addContainerIssue(vc, code, "array", v)
		return false
	}
	ok := true
	for i := 0; i < l.Len(); i++ {
		vc.PushIndex(i)
		if !a.Items.Validate(l.At(i), vc) {
			ok = false
		}
		vc.PopPath()
	}
	return ok
}

func (a *ArrayWriter) Write(out io.Writer, v any) error {
	l, code := asList(v)
	if code != "" {
		return avrokit.DataErrorf("%s: %s", code, expected("array", v))
	}
	return writeBlocks(out, l.Len(), a.Opt, func(w io.Writer, i int) error {
		return a.Items.Write(w, l.At(i))
	})
}

// ArrayReader decodes a block sequence into []any.
type ArrayReader struct {
	Items avrokit.Reader
}

func (a *ArrayReader) Read(in avrokit.Input) (any, error) {
	out := []any{}
	err := readBlocks(in, func() error {
		v, err := a.Items.Read(in)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *ArrayReader) Skip(in avrokit.Input) error {
	return skipBlocks(in, func() error { return a.Items.Skip(in) })
}

// MapWriter writes string-keyed maps; every item is a key followed by its
// value. Keys are emitted in sorted order.
type MapWriter struct {
	Values avrokit.Writer
	Opt    avrokit.WriteOpt
}

func (m *MapWriter) Validate(v any, vc *avrokit.ValidationContext) bool {
	e, code := asEntries(v)
	if code != "" {
		addContainerIssue(vc, code, "map", v)
		return false
	}
	ok := true
	for _, k := range e.keys {
		vc.PushPath(k)
		if !m.Values.Validate(e.get(k), vc) {
			ok = false
		}
		vc.PopPath()
	}
	return ok
}

func (m *MapWriter) Write(out io.Writer, v any) error {
	e, code := asEntries(v)
	if code != "" {
		return avrokit.DataErrorf("%s: %s", code, expected("map", v))
	}
	return writeBlocks(out, len(e.keys), m.Opt, func(w io.Writer, i int) error {
		k := e.keys[i]
		if err := wire.WriteString(w, k); err != nil {
			return err
		}
		return m.Values.Write(w, e.get(k))
	})
}

// MapReader decodes a block sequence into map[string]any.
type MapReader struct {
	Values avrokit.Reader
}

func (m *MapReader) Read(in avrokit.Input) (any, error) {
	out := map[string]any{}
	err := readBlocks(in, func() error {
		k, err := wire.ReadString(in)
		if err != nil {
			return err
		}
		v, err := m.Values.Read(in)
		if err != nil {
			return err
		}
		out[k] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MapReader) Skip(in avrokit.Input) error {
	return skipBlocks(in, func() error {
		if err := wire.SkipBytes(in); err != nil {
			return err
		}
		return m.Values.Skip(in)
	})
}

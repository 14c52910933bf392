package compile

import (
	"fmt"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/logical"
	"github.com/reoring/avrokit/node"
	"github.com/reoring/avrokit/schema"
)

// resolution is the outcome of resolving a writer schema against a reader
// schema: either a reader, or the place and reason they are incompatible.
type resolution struct {
	reader avrokit.Reader
	path   path
	reason string
}

func resolved(r avrokit.Reader) resolution { return resolution{reader: r} }

func incompatible(p path, format string, args ...any) resolution {
	return resolution{path: p, reason: fmt.Sprintf(format, args...)}
}

func (r resolution) ok() bool { return r.reader != nil }

func (r resolution) err() error {
	return &avrokit.SchemaError{Kind: avrokit.ErrSchemaMismatch, Path: r.path.String(), Reason: r.reason}
}

// Reader compiles a Reader for data written with writer, producing values
// shaped by reader. A nil reader means reader == writer. Any pair that Avro
// schema resolution cannot reconcile fails with an error wrapping
// avrokit.ErrSchemaMismatch; paths point into the reader schema.
func Reader(writer, reader *schema.Schema) (avrokit.Reader, error) {
	if writer == nil {
		return nil, &avrokit.SchemaError{Kind: avrokit.ErrInvalidSchema, Path: "/", Reason: "nil writer schema"}
	}
	if reader == nil {
		reader = writer
	}
	res := resolve(writer, reader, nil)
	if !res.ok() {
		return nil, res.err()
	}
	return res.reader, nil
}

func resolve(w, r *schema.Schema, p path) resolution {
	// A writer union is resolved branch by branch, whatever the reader is.
	if w.Kind == schema.Union {
		u := &node.UnionReader{Branches: make([]avrokit.Reader, len(w.Branches))}
		for i, wb := range w.Branches {
			res := resolve(wb, r, p)
			if !res.ok() {
				res.reason = fmt.Sprintf("writer union branch %d (%s): %s", i, wb.TypeName(), res.reason)
				return res
			}
			u.Branches[i] = res.reader
		}
		return resolved(u)
	}
	if r.Kind == schema.Union {
		return resolveIntoUnion(w, r, p)
	}

	res := resolveRaw(w, r, p)
	if !res.ok() {
		return res
	}
	lt, err := logical.Lookup(r)
	if err != nil {
		return incompatible(p.with("logicalType"), "%v", err)
	}
	if lt != nil {
		res.reader = &node.LogicalReader{Type: lt, Raw: res.reader}
	}
	return res
}

// resolveIntoUnion picks the reader branch for a non-union writer. A branch
// of the same type wins over an earlier branch that only resolves through
// promotion; otherwise the first branch that resolves is used.
func resolveIntoUnion(w, r *schema.Schema, p path) resolution {
	for i, rb := range r.Branches {
		if sameType(w, rb) {
			if res := resolve(w, rb, p.with(i)); res.ok() {
				return res
			}
		}
	}
	for i, rb := range r.Branches {
		if res := resolve(w, rb, p.with(i)); res.ok() {
			return res
		}
	}
	return incompatible(p, "writer type %s matches no branch of the reader union", w.TypeName())
}

func sameType(w, r *schema.Schema) bool {
	if w.Kind != r.Kind {
		return false
	}
	if w.Kind.IsNamed() {
		return r.MatchesName(w)
	}
	return true
}

func leaf(k schema.Kind) avrokit.Reader {
	switch k {
	case schema.Null:
		return node.Null{}
	case schema.Boolean:
		return node.Boolean{}
	case schema.Int:
		return node.Int{}
	case schema.Long:
		return node.Long{}
	case schema.Float:
		return node.Float{}
	case schema.Double:
		return node.Double{}
	case schema.String:
		return node.String{}
	case schema.Bytes:
		return node.Bytes{}
	}
	return nil
}

// promotions lists the reader kinds each writer kind may be widened to.
var promotions = map[schema.Kind][]schema.Kind{
	schema.Int:   {schema.Long, schema.Float, schema.Double},
	schema.Long:  {schema.Float, schema.Double},
	schema.Float: {schema.Double},
}

func promotable(from, to schema.Kind) bool {
	for _, k := range promotions[from] {
		if k == to {
			return true
		}
	}
	return false
}

func resolveRaw(w, r *schema.Schema, p path) resolution {
	switch {
	case w.Kind.IsPrimitive() && w.Kind == r.Kind:
		return resolved(leaf(r.Kind))
	case promotable(w.Kind, r.Kind):
		return resolved(node.Promote{From: leaf(w.Kind), To: r.Kind})
	case w.Kind == schema.Bytes && r.Kind == schema.String:
		return resolved(node.String{})
	case w.Kind == schema.String && r.Kind == schema.Bytes:
		return resolved(node.Bytes{})
	case w.Kind != r.Kind:
		return incompatible(p, "cannot read writer type %s as %s", w.TypeName(), r.TypeName())
	}

	switch r.Kind {
	case schema.Array:
		res := resolve(w.Items, r.Items, p.with("items"))
		if !res.ok() {
			return res
		}
		return resolved(&node.ArrayReader{Items: res.reader})
	case schema.Map:
		res := resolve(w.Values, r.Values, p.with("values"))
		if !res.ok() {
			return res
		}
		return resolved(&node.MapReader{Values: res.reader})
	}

	if !r.MatchesName(w) {
		return incompatible(p, "writer %s %s does not match reader %s", w.Kind, w.FullName(), r.FullName())
	}
	switch r.Kind {
	case schema.Fixed:
		if w.Size != r.Size {
			return incompatible(p.with("size"), "writer fixed has %d bytes, reader expects %d", w.Size, r.Size)
		}
		return resolved(node.Fixed{Size: r.Size})
	case schema.Enum:
		return resolveEnum(w, r, p)
	case schema.Record:
		return resolveRecord(w, r, p)
	}
	return incompatible(p, "unsupported type %q", r.Kind)
}

func resolveEnum(w, r *schema.Schema, p path) resolution {
	symbols := make([]string, len(w.Symbols))
	for i, sym := range w.Symbols {
		switch {
		case r.SymbolIndex(sym) >= 0:
			symbols[i] = sym
		case r.HasEnumDefault:
			symbols[i] = r.EnumDefault
		default:
			return incompatible(p.with("symbols"), "writer symbol %q is not in the reader enum, which has no default", sym)
		}
	}
	return resolved(node.EnumReader{Symbols: symbols})
}

// readerField finds the reader field that takes a writer field, by name or
// by one of the reader field's aliases.
func readerField(r *schema.Schema, name string) (int, *schema.Field) {
	for i, f := range r.Fields {
		if f.Name == name {
			return i, f
		}
	}
	for i, f := range r.Fields {
		for _, a := range f.Aliases {
			if a == name {
				return i, f
			}
		}
	}
	return -1, nil
}

func resolveRecord(w, r *schema.Schema, p path) resolution {
	rec := &node.RecordReader{Name: r.FullName()}
	matched := make([]bool, len(r.Fields))
	for _, wf := range w.Fields {
		i, rf := readerField(r, wf.Name)
		if rf == nil || matched[i] {
			// Writer-only field: decode nothing, but keep the stream aligned.
			skip := resolve(wf.Type, wf.Type, nil)
			if !skip.ok() {
				return skip
			}
			rec.Fields = append(rec.Fields, node.PropertyReader{Name: wf.Name, Reader: skip.reader, Skip: true})
			continue
		}
		matched[i] = true
		res := resolve(wf.Type, rf.Type, p.with("fields", i, "type"))
		if !res.ok() {
			return res
		}
		rec.Fields = append(rec.Fields, node.PropertyReader{Name: rf.Name, Reader: res.reader})
	}
	for i, rf := range r.Fields {
		if matched[i] {
			continue
		}
		fp := p.with("fields", i)
		if !rf.HasDefault {
			return incompatible(fp, "reader field %q is not written and has no default", rf.Name)
		}
		def, err := defaultValue(rf.Type, rf.Default)
		if err != nil {
			return incompatible(fp.with("default"), "%v", err)
		}
		rec.Fields = append(rec.Fields, node.PropertyReader{
			Name:       rf.Name,
			Reader:     node.Absent{},
			HasDefault: true,
			Default:    def,
		})
	}
	return resolved(rec)
}

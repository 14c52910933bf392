package avrokit

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// Avro field name.
// Priority: avro tag > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if at := sf.Tag.Get("avro"); at != "" {
		if i := strings.IndexByte(at, ','); i >= 0 {
			return at[:i]
		}
		return at
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

// structFields caches the field index per struct type.
var structFields sync.Map // map[reflect.Type]*fieldTable

type fieldTable struct {
	exact map[string][]int
	// fold holds the same keys lowercased, for names that differ from the
	// Avro field only in case (Foo for foo). The first field wins.
	fold map[string][]int
}

func (ft *fieldTable) lookup(name string) ([]int, bool) {
	if idx, ok := ft.exact[name]; ok {
		return idx, true
	}
	idx, ok := ft.fold[strings.ToLower(name)]
	return idx, ok
}

func fieldIndex(t reflect.Type) *fieldTable {
	if ft, ok := structFields.Load(t); ok {
		return ft.(*fieldTable)
	}
	ft := &fieldTable{exact: map[string][]int{}, fold: map[string][]int{}}
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		if _, dup := ft.exact[key]; !dup {
			ft.exact[key] = sf.Index
		}
		if _, dup := ft.fold[strings.ToLower(key)]; !dup {
			ft.fold[strings.ToLower(key)] = sf.Index
		}
	}
	actual, _ := structFields.LoadOrStore(t, ft)
	return actual.(*fieldTable)
}

// IsRecordValue reports whether v can serve as record input: a string-keyed
// map, a FieldGetter, or a struct (or pointer to one).
func IsRecordValue(v any) bool {
	switch v.(type) {
	case map[string]any, FieldGetter:
		return true
	case nil:
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct:
		return true
	case reflect.Map:
		return rv.Type().Key().Kind() == reflect.String
	}
	return false
}

// LookupField resolves a record field on v. Direct members (map entries,
// struct fields) win over Get<Name>, Is<Name> and Has<Name> accessors. A
// struct field whose key differs from name only in case still matches,
// exact keys first.
func LookupField(v any, name string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		fv, ok := t[name]
		return fv, ok
	case FieldGetter:
		if !t.HasField(name) {
			return nil, false
		}
		return t.Field(name), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	base := rv
	for base.Kind() == reflect.Pointer {
		if base.IsNil() {
			return nil, false
		}
		base = base.Elem()
	}
	switch base.Kind() {
	case reflect.Map:
		if base.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := base.MapIndex(reflect.ValueOf(name).Convert(base.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		if idx, ok := fieldIndex(base.Type()).lookup(name); ok {
			fv, err := base.FieldByIndexErr(idx)
			if err == nil {
				return fv.Interface(), true
			}
		}
		return lookupAccessor(rv, name)
	}
	return nil, false
}

func lookupAccessor(rv reflect.Value, name string) (any, bool) {
	suffix := upperFirst(name)
	for _, prefix := range [...]string{"Get", "Is", "Has"} {
		m := rv.MethodByName(prefix + suffix)
		if !m.IsValid() {
			continue
		}
		mt := m.Type()
		if mt.NumIn() != 0 || mt.NumOut() != 1 {
			continue
		}
		return m.Call(nil)[0].Interface(), true
	}
	return nil, false
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// Package node implements the Reader and Writer nodes that a compiled schema
// is assembled from: leaves for the primitive types and containers for
// records, enums, fixed, arrays, maps and unions.
//
// Nodes keep no per-call state; the stream and the ValidationContext are
// passed in on every call, so one compiled tree serves concurrent callers.
package node

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	avrokit "github.com/reoring/avrokit"
)

// indirect follows non-nil pointers so that *T inputs validate like T.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

// isNull reports whether v is nil or a nil pointer.
func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func asInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case int16:
		return int64(t), true
	case int8:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint:
		if uint64(t) > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case nil, float32, float64, string, bool:
		return 0, false
	}
	rv := reflect.ValueOf(indirect(v))
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	}
	if n, ok := asInt64(v); ok {
		return float64(n), true
	}
	rv := reflect.ValueOf(indirect(v))
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// asBytes accepts the in-memory forms of Avro string and bytes.
func asBytes(v any) ([]byte, bool) {
	switch t := v.(type) {
	case []byte:
		return t, true
	case string:
		return []byte(t), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(indirect(v))
	switch {
	case rv.Kind() == reflect.String:
		return []byte(rv.String()), true
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return rv.Bytes(), true
	}
	return nil, false
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	}
	if b, ok := asBytes(v); ok {
		return string(b), true
	}
	return "", false
}

func typeOf(v any) string {
	if isNull(v) {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

func expected(kind string, v any) string {
	return fmt.Sprintf("expected %s, got %s", kind, typeOf(v))
}

// list is a re-traversable sequence used by array writers.
type list interface {
	Len() int
	At(i int) any
}

type anyList []any

func (l anyList) Len() int     { return len(l) }
func (l anyList) At(i int) any { return l[i] }

type reflectList struct{ rv reflect.Value }

func (l reflectList) Len() int     { return l.rv.Len() }
func (l reflectList) At(i int) any { return l.rv.Index(i).Interface() }

// asList returns the sequence behind v or the issue code explaining why v
// is not one. Functions (iter.Seq) and channels can only be consumed once,
// so they are rejected rather than drained.
func asList(v any) (list, string) {
	if t, ok := v.([]any); ok {
		return anyList(t), ""
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return reflectList{rv: rv}, ""
	case reflect.Func, reflect.Chan:
		return nil, avrokit.CodeOneShotIterable
	}
	return nil, avrokit.CodeInvalidType
}

// entries is a string-keyed map view with keys in sorted order, so that
// encodings are deterministic.
type entries struct {
	keys []string
	get  func(k string) any
}

func asEntries(v any) (entries, string) {
	if m, ok := v.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return entries{keys: keys, get: func(k string) any { return m[k] }}, ""
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return entries{}, avrokit.CodeInvalidKey
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return entries{keys: keys, get: func(k string) any {
			return rv.MapIndex(reflect.ValueOf(k).Convert(kt)).Interface()
		}}, ""
	case reflect.Func, reflect.Chan:
		return entries{}, avrokit.CodeOneShotIterable
	}
	return entries{}, avrokit.CodeInvalidType
}

// cloneValue copies the mutable containers of a decoded value, so defaults
// handed out by readers never alias each other.
func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []byte:
		return append([]byte(nil), t...)
	}
	return v
}

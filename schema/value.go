package schema

import (
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"

	avrokit "github.com/reoring/avrokit"
)

// DefaultValue converts a field default literal into the in-memory value the
// readers produce. A union default must match the first branch.
func DefaultValue(s *Schema, raw any) (any, error) {
	return convert(s, raw, true)
}

// ValueFromJSON converts JSON data (decoded with UseNumber) into an
// in-memory value for s. Unions accept null, the Avro JSON wrapper
// {"<branch>": value} (returned as avrokit.Branch) or a bare value matching
// any branch.
func ValueFromJSON(s *Schema, raw any) (any, error) {
	return convert(s, raw, false)
}

func convert(s *Schema, raw any, strict bool) (any, error) {
	switch s.Kind {
	case Null:
		if raw != nil {
			return nil, fmt.Errorf("expected null, got %T", raw)
		}
		return nil, nil
	case Boolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("expected boolean, got %T", raw)
		}
		return b, nil
	case Int:
		n, ok := toInt(raw)
		if !ok || n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("expected int, got %v", raw)
		}
		return int32(n), nil
	case Long:
		n, ok := toInt(raw)
		if !ok {
			return nil, fmt.Errorf("expected long, got %v", raw)
		}
		return n, nil
	case Float:
		f, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Errorf("expected float, got %v", raw)
		}
		return float32(f), nil
	case Double:
		f, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Errorf("expected double, got %v", raw)
		}
		return f, nil
	case String:
		str, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", raw)
		}
		return str, nil
	case Bytes:
		return codePoints(raw, -1)
	case Fixed:
		return codePoints(raw, s.Size)
	case Enum:
		sym, ok := raw.(string)
		if !ok || s.SymbolIndex(sym) < 0 {
			return nil, fmt.Errorf("expected one of %v, got %v", s.Symbols, raw)
		}
		return sym, nil
	case Array:
		arr, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", raw)
		}
		out := make([]any, len(arr))
		for i, item := range arr {
			v, err := convert(s.Items, item, strict)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case Map:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected map, got %T", raw)
		}
		out := make(map[string]any, len(m))
		for k, item := range m {
			v, err := convert(s.Values, item, strict)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	case Record:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected record %s, got %T", s.FullName(), raw)
		}
		out := make(map[string]any, len(s.Fields))
		for _, f := range s.Fields {
			item, present := m[f.Name]
			switch {
			case present:
			case f.HasDefault:
				item = f.Default
			default:
				return nil, fmt.Errorf("%s: missing field without default", f.Name)
			}
			v, err := convert(f.Type, item, strict)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			out[f.Name] = v
		}
		return out, nil
	case Union:
		if strict {
			return convert(s.Branches[0], raw, true)
		}
		return unionFromJSON(s, raw)
	}
	return nil, fmt.Errorf("unsupported kind %q", s.Kind)
}

func unionFromJSON(s *Schema, raw any) (any, error) {
	if raw == nil {
		for i, b := range s.Branches {
			if b.Kind == Null {
				return avrokit.Branch{Index: i, Value: nil}, nil
			}
		}
		return nil, fmt.Errorf("null is not a branch of the union")
	}
	if m, ok := raw.(map[string]any); ok && len(m) == 1 {
		for name, inner := range m {
			for i, b := range s.Branches {
				if b.TypeName() == name || (b.Kind.IsNamed() && b.Name == name) {
					v, err := convert(b, inner, false)
					if err != nil {
						return nil, fmt.Errorf("%s: %w", name, err)
					}
					return avrokit.Branch{Index: i, Value: v}, nil
				}
			}
		}
	}
	for i, b := range s.Branches {
		if v, err := convert(b, raw, false); err == nil {
			return avrokit.Branch{Index: i, Value: v}, nil
		}
	}
	return nil, fmt.Errorf("value %v matches no union branch", raw)
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case string:
		// Avro JSON spells the IEEE specials as strings.
		switch t {
		case "NaN":
			return math.NaN(), true
		case "Infinity":
			return math.Inf(1), true
		case "-Infinity":
			return math.Inf(-1), true
		}
		return 0, false
	}
	if n, ok := toInt(v); ok {
		return float64(n), true
	}
	return 0, false
}

// codePoints maps an Avro JSON byte string (one code point 0-255 per byte)
// to raw bytes. size < 0 accepts any length.
func codePoints(raw any, size int) ([]byte, error) {
	str, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected byte string, got %T", raw)
	}
	out := make([]byte, 0, len(str))
	for _, r := range str {
		if r > 0xff {
			return nil, fmt.Errorf("code point %s out of byte range", strconv.QuoteRune(r))
		}
		out = append(out, byte(r))
	}
	if size >= 0 && len(out) != size {
		return nil, fmt.Errorf("expected %d bytes, got %d", size, len(out))
	}
	return out, nil
}

// ValueToJSON converts an in-memory value produced by a Reader for s back
// into Avro JSON data, the inverse of ValueFromJSON. Union values are
// wrapped as {"<branch>": value}.
func ValueToJSON(s *Schema, v any) (any, error) {
	switch s.Kind {
	case Bytes, Fixed:
		b, ok := v.([]byte)
		if !ok {
			return v, nil
		}
		rs := make([]rune, len(b))
		for i, c := range b {
			rs[i] = rune(c)
		}
		return string(rs), nil
	case Float, Double:
		f, ok := toFloat(v)
		if !ok {
			return v, nil
		}
		switch {
		case math.IsNaN(f):
			return "NaN", nil
		case math.IsInf(f, 1):
			return "Infinity", nil
		case math.IsInf(f, -1):
			return "-Infinity", nil
		}
		return v, nil
	case Array:
		arr, ok := v.([]any)
		if !ok {
			return v, nil
		}
		out := make([]any, len(arr))
		for i, item := range arr {
			j, err := ValueToJSON(s.Items, item)
			if err != nil {
				return nil, err
			}
			out[i] = j
		}
		return out, nil
	case Map:
		m, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		out := make(map[string]any, len(m))
		for k, item := range m {
			j, err := ValueToJSON(s.Values, item)
			if err != nil {
				return nil, err
			}
			out[k] = j
		}
		return out, nil
	case Record:
		m, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		out := make(map[string]any, len(m))
		for _, f := range s.Fields {
			j, err := ValueToJSON(f.Type, m[f.Name])
			if err != nil {
				return nil, err
			}
			out[f.Name] = j
		}
		return out, nil
	case Union:
		if v == nil {
			return nil, nil
		}
		b := UnionBranch(s, v)
		if b == nil {
			return nil, fmt.Errorf("value of type %T matches no union branch", v)
		}
		j, err := ValueToJSON(b, v)
		if err != nil {
			return nil, err
		}
		return map[string]any{b.TypeName(): j}, nil
	}
	return v, nil
}

// UnionBranch returns the branch of union s that a decoded value v came
// from, or nil. Decoded values carry no branch index, so string-keyed maps
// are told apart by shape: a record branch whose fields are exactly the keys
// of v wins over a map branch.
func UnionBranch(s *Schema, v any) *Schema {
	if v == nil {
		for _, b := range s.Branches {
			if b.Kind == Null {
				return b
			}
		}
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		for _, b := range s.Branches {
			if b.Kind == Record && recordShaped(b, m) {
				return b
			}
		}
	}
	for _, b := range s.Branches {
		if b.Kind != Null && jsonMatches(b, v) {
			return b
		}
	}
	return nil
}

func recordShaped(r *Schema, m map[string]any) bool {
	if len(m) != len(r.Fields) {
		return false
	}
	for _, f := range r.Fields {
		if _, ok := m[f.Name]; !ok {
			return false
		}
	}
	return true
}

// jsonMatches reports whether a decoded value could have come from branch b.
func jsonMatches(b *Schema, v any) bool {
	switch t := v.(type) {
	case bool:
		return b.Kind == Boolean
	case int32:
		return b.Kind == Int
	case int64:
		return b.Kind == Long
	case float32:
		return b.Kind == Float
	case float64:
		return b.Kind == Double
	case string:
		return b.Kind == String || b.Kind == Enum
	case []byte:
		return b.Kind == Bytes || b.Kind == Fixed
	case []any:
		return b.Kind == Array
	case map[string]any:
		return b.Kind == Map || (b.Kind == Record && recordShaped(b, t))
	}
	return b.LogicalType != ""
}

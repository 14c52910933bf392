package main

import (
	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/logical"
	"github.com/reoring/avrokit/schema"
)

// toRaw turns logical values (time.Time, *big.Rat, uuid.UUID) back into
// their underlying Avro values, which is how Avro JSON spells them.
func toRaw(s *schema.Schema, v any) (any, error) {
	switch s.Kind {
	case schema.Union:
		if v == nil {
			return nil, nil
		}
		for _, b := range s.Branches {
			if b.LogicalType == "" {
				continue
			}
			lt, err := logical.Lookup(b)
			if err != nil || lt == nil {
				continue
			}
			if lt.Validate(v, avrokit.NewValidationContext()) {
				return lt.Normalize(v)
			}
		}
		switch v.(type) {
		case []any, map[string]any:
			if b := schema.UnionBranch(s, v); b != nil {
				return toRaw(b, v)
			}
		}
		return v, nil
	case schema.Array:
		if arr, ok := v.([]any); ok {
			out := make([]any, len(arr))
			for i := range arr {
				r, err := toRaw(s.Items, arr[i])
				if err != nil {
					return nil, err
				}
				out[i] = r
			}
			return out, nil
		}
	case schema.Map:
		if m, ok := v.(map[string]any); ok {
			out := make(map[string]any, len(m))
			for k, item := range m {
				r, err := toRaw(s.Values, item)
				if err != nil {
					return nil, err
				}
				out[k] = r
			}
			return out, nil
		}
	case schema.Record:
		if m, ok := v.(map[string]any); ok {
			out := make(map[string]any, len(m))
			for _, f := range s.Fields {
				r, err := toRaw(f.Type, m[f.Name])
				if err != nil {
					return nil, err
				}
				out[f.Name] = r
			}
			return out, nil
		}
	}
	lt, err := logical.Lookup(s)
	if err != nil || lt == nil {
		return v, err
	}
	return lt.Normalize(v)
}

package logical

import (
	"fmt"

	"github.com/google/uuid"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/schema"
)

// newUUID handles uuid on string (canonical text) and on fixed(16) (raw
// bytes). Values read back as uuid.UUID.
func newUUID(s *schema.Schema) (avrokit.LogicalType, error) {
	switch {
	case s.Kind == schema.String:
		return &convert{name: "uuid", normalize: uuidText, denormalize: uuidFromText}, nil
	case s.Kind == schema.Fixed && s.Size == 16:
		return &convert{name: "uuid", normalize: uuidBytes, denormalize: uuidFromBytes}, nil
	}
	return nil, nil
}

func toUUID(v any) (uuid.UUID, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case *uuid.UUID:
		if t != nil {
			return *t, nil
		}
	case [16]byte:
		return uuid.UUID(t), nil
	case string:
		return uuid.Parse(t)
	case []byte:
		if len(t) == 16 {
			return uuid.FromBytes(t)
		}
		return uuid.ParseBytes(t)
	}
	return uuid.Nil, fmt.Errorf("expected uuid.UUID or UUID text, got %T", v)
}

func uuidText(v any) (any, error) {
	u, err := toUUID(v)
	if err != nil {
		return nil, err
	}
	return u.String(), nil
}

func uuidBytes(v any) (any, error) {
	u, err := toUUID(v)
	if err != nil {
		return nil, err
	}
	return u[:], nil
}

func uuidFromText(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("uuid: expected string, got %T", raw)
	}
	return uuid.Parse(s)
}

func uuidFromBytes(raw any) (any, error) {
	b, ok := raw.([]byte)
	if !ok {
		return nil, fmt.Errorf("uuid: expected 16 bytes, got %T", raw)
	}
	return uuid.FromBytes(b)
}

package node

import (
	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/schema"
)

// Promote reads a value under the writer's wire type and widens it to the
// reader's numeric type: int to long/float/double, long to float/double,
// float to double.
type Promote struct {
	From avrokit.Reader
	To   schema.Kind
}

func (p Promote) Read(in avrokit.Input) (any, error) {
	v, err := p.From.Read(in)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case int32:
		switch p.To {
		case schema.Long:
			return int64(t), nil
		case schema.Float:
			return float32(t), nil
		case schema.Double:
			return float64(t), nil
		}
	case int64:
		switch p.To {
		case schema.Float:
			return float32(t), nil
		case schema.Double:
			return float64(t), nil
		}
	case float32:
		if p.To == schema.Double {
			return float64(t), nil
		}
	}
	return nil, avrokit.CorruptErrorf("cannot promote %T to %s", v, p.To)
}

func (p Promote) Skip(in avrokit.Input) error { return p.From.Skip(in) }

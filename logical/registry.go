// Package logical maps Avro logicalType annotations to avrokit.LogicalType
// implementations.
//
// A logical type that is unknown, or that annotates an underlying type it does
// not support, is ignored: the value is encoded with the raw type, as Avro
// requires.
package logical

import (
	"sync"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/schema"
)

// Factory builds a logical type for s. It returns nil, nil when s does not
// carry a supported underlying type.
type Factory func(s *schema.Schema) (avrokit.LogicalType, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register installs f under name, replacing any previous factory.
func Register(name string, f Factory) {
	mu.Lock()
	registry[name] = f
	mu.Unlock()
}

// Lookup returns the logical type for s, or nil when s has none or its
// annotation must be ignored.
func Lookup(s *schema.Schema) (avrokit.LogicalType, error) {
	if s == nil || s.LogicalType == "" {
		return nil, nil
	}
	mu.RLock()
	f := registry[s.LogicalType]
	mu.RUnlock()
	if f == nil {
		return nil, nil
	}
	return f(s)
}

func init() {
	Register("uuid", newUUID)
	Register("date", newDate)
	Register("time-millis", newTimeOfDay(schema.Int, 1e6))
	Register("time-micros", newTimeOfDay(schema.Long, 1e3))
	Register("timestamp-millis", newTimestamp(millis))
	Register("timestamp-micros", newTimestamp(micros))
	Register("timestamp-nanos", newTimestamp(nanos))
	Register("local-timestamp-millis", newTimestamp(millis))
	Register("local-timestamp-micros", newTimestamp(micros))
	Register("local-timestamp-nanos", newTimestamp(nanos))
	Register("decimal", newDecimal)
}

// convert adapts a pair of conversion functions to avrokit.LogicalType.
// Validation is a trial normalization.
type convert struct {
	name        string
	normalize   func(v any) (any, error)
	denormalize func(raw any) (any, error)
}

func (c *convert) Validate(v any, vc *avrokit.ValidationContext) bool {
	if _, err := c.normalize(v); err != nil {
		vc.AddError(avrokit.CodeLogicalType, c.name+": "+err.Error())
		return false
	}
	return true
}

func (c *convert) Normalize(v any) (any, error)     { return c.normalize(v) }
func (c *convert) Denormalize(raw any) (any, error) { return c.denormalize(raw) }

// rawInt accepts the integer forms a raw int/long value commonly takes.
func rawInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	}
	return 0, false
}

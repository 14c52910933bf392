package logical

import (
	"fmt"
	"math"
	"time"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/schema"
)

const secondsPerDay = 24 * 60 * 60

// newDate counts days since the Unix epoch in an int. Values read back as
// UTC midnight.
func newDate(s *schema.Schema) (avrokit.LogicalType, error) {
	if s.Kind != schema.Int {
		return nil, nil
	}
	return &convert{name: "date", normalize: dateToDays, denormalize: daysToDate}, nil
}

func dateToDays(v any) (any, error) {
	var days int64
	switch t := v.(type) {
	case time.Time:
		y, m, d := t.Date()
		days = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
	case string:
		tm, err := time.Parse(time.DateOnly, t)
		if err != nil {
			return nil, err
		}
		days = tm.Unix() / secondsPerDay
	default:
		n, ok := rawInt(v)
		if !ok {
			return nil, fmt.Errorf("expected time.Time or days, got %T", v)
		}
		days = n
	}
	if days < math.MinInt32 || days > math.MaxInt32 {
		return nil, fmt.Errorf("%d days is out of range", days)
	}
	return int32(days), nil
}

func daysToDate(raw any) (any, error) {
	n, ok := rawInt(raw)
	if !ok {
		return nil, fmt.Errorf("date: expected int, got %T", raw)
	}
	return time.Unix(n*secondsPerDay, 0).UTC(), nil
}

// newTimeOfDay stores a time.Duration since midnight in units of unit: int
// milliseconds or long microseconds.
func newTimeOfDay(kind schema.Kind, unit time.Duration) Factory {
	name := "time-millis"
	if unit == time.Microsecond {
		name = "time-micros"
	}
	return func(s *schema.Schema) (avrokit.LogicalType, error) {
		if s.Kind != kind {
			return nil, nil
		}
		return &convert{
			name: name,
			normalize: func(v any) (any, error) {
				var n int64
				switch t := v.(type) {
				case time.Duration:
					if t < 0 || t >= 24*time.Hour {
						return nil, fmt.Errorf("%v is not a time of day", t)
					}
					n = int64(t / unit)
				default:
					var ok bool
					if n, ok = rawInt(v); !ok {
						return nil, fmt.Errorf("expected time.Duration, got %T", v)
					}
				}
				if kind == schema.Int {
					if n < math.MinInt32 || n > math.MaxInt32 {
						return nil, fmt.Errorf("%d is out of int range", n)
					}
					return int32(n), nil
				}
				return n, nil
			},
			denormalize: func(raw any) (any, error) {
				n, ok := rawInt(raw)
				if !ok {
					return nil, fmt.Errorf("%s: expected integer, got %T", name, raw)
				}
				return time.Duration(n) * unit, nil
			},
		}, nil
	}
}

// precision converts between time.Time and a count of units since the epoch.
type precision struct {
	toUnits   func(time.Time) int64
	fromUnits func(int64) time.Time
}

var (
	millis = precision{time.Time.UnixMilli, time.UnixMilli}
	micros = precision{time.Time.UnixMicro, time.UnixMicro}
	nanos  = precision{time.Time.UnixNano, func(n int64) time.Time { return time.Unix(0, n) }}
)

// newTimestamp stores instants in a long. Besides time.Time, RFC 3339 text is
// accepted on write.
func newTimestamp(p precision) Factory {
	return func(s *schema.Schema) (avrokit.LogicalType, error) {
		if s.Kind != schema.Long {
			return nil, nil
		}
		name := s.LogicalType
		return &convert{
			name: name,
			normalize: func(v any) (any, error) {
				switch t := v.(type) {
				case time.Time:
					return p.toUnits(t), nil
				case *time.Time:
					if t != nil {
						return p.toUnits(*t), nil
					}
				case string:
					tm, err := parseRFC3339(t)
					if err != nil {
						return nil, err
					}
					return p.toUnits(tm), nil
				}
				if n, ok := rawInt(v); ok {
					return n, nil
				}
				return nil, fmt.Errorf("expected time.Time, got %T", v)
			},
			denormalize: func(raw any) (any, error) {
				n, ok := rawInt(raw)
				if !ok {
					return nil, fmt.Errorf("%s: expected long, got %T", name, raw)
				}
				return p.fromUnits(n).UTC(), nil
			},
		}, nil
	}
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

package compile_test

import (
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/require"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/compile"
	"github.com/reoring/avrokit/schema"
)

const eventSchema = `{
	"type": "record", "name": "Event", "namespace": "interop",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "seq", "type": "int"},
		{"name": "ok", "type": "boolean"},
		{"name": "ratio", "type": "double"},
		{"name": "weight", "type": "float"},
		{"name": "source", "type": "string"},
		{"name": "payload", "type": "bytes"},
		{"name": "note", "type": ["null", "string"]},
		{"name": "level", "type": {"type": "enum", "name": "Level", "symbols": ["LOW", "HIGH"]}},
		{"name": "mac", "type": {"type": "fixed", "name": "Mac", "size": 6}}
	]
}`

type event struct {
	ID      int64   `avro:"id"`
	Seq     int32   `avro:"seq"`
	OK      bool    `avro:"ok"`
	Ratio   float64 `avro:"ratio"`
	Weight  float32 `avro:"weight"`
	Source  string  `avro:"source"`
	Payload []byte  `avro:"payload"`
	Note    *string `avro:"note"`
	Level   string  `avro:"level"`
	Mac     [6]byte `avro:"mac"`
}

func sampleEvent() event {
	note := "hello"
	return event{
		ID:      -1234567890123,
		Seq:     -17,
		OK:      true,
		Ratio:   0.125,
		Weight:  2.5,
		Source:  "sensor/α",
		Payload: []byte{0, 1, 0xfe},
		Note:    &note,
		Level:   "HIGH",
		Mac:     [6]byte{0xde, 0xad, 0xbe, 0xef, 0, 1},
	}
}

func TestInterop_HambaSameBytes(t *testing.T) {
	hs, err := avro.Parse(eventSchema)
	require.NoError(t, err)
	c, err := compile.ParseCodec([]byte(eventSchema), avrokit.WriteOpt{})
	require.NoError(t, err)

	ev := sampleEvent()
	want, err := avro.Marshal(hs, ev)
	require.NoError(t, err)

	// The struct tags read by hamba are the ones avrokit resolves as well.
	got, err := c.Marshal(ev)
	require.NoError(t, err)
	require.Equal(t, want, got)

	var back event
	require.NoError(t, avro.Unmarshal(hs, got, &back))
	require.Equal(t, ev, back)

	ev.Note = nil
	want, err = avro.Marshal(hs, ev)
	require.NoError(t, err)
	got, err = c.Marshal(ev)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestInterop_HambaContainers(t *testing.T) {
	const src = `{"type":"record","name":"Bag","fields":[
		{"name":"items","type":{"type":"array","items":"int"}},
		{"name":"attrs","type":{"type":"map","values":"string"}}
	]}`
	type bag struct {
		Items []int             `avro:"items"`
		Attrs map[string]string `avro:"attrs"`
	}
	hs, err := avro.Parse(src)
	require.NoError(t, err)
	c, err := compile.ParseCodec([]byte(src), avrokit.WriteOpt{BlockCount: 2, WriteBlockSize: true})
	require.NoError(t, err)

	in := bag{Items: []int{1, 2, 3, 4, 5}, Attrs: map[string]string{"a": "x", "b": "y", "c": "z"}}

	// avrokit bytes, decoded by hamba
	b, err := c.Marshal(in)
	require.NoError(t, err)
	var out bag
	require.NoError(t, avro.Unmarshal(hs, b, &out))
	require.Equal(t, in, out)

	// hamba bytes, decoded (and skipped) by avrokit
	hb, err := avro.Marshal(hs, in)
	require.NoError(t, err)
	v, err := c.Unmarshal(hb)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"items": []any{int32(1), int32(2), int32(3), int32(4), int32(5)},
		"attrs": map[string]any{"a": "x", "b": "y", "c": "z"},
	}, v)
	in2 := avrokit.NewBuffer(hb)
	require.NoError(t, c.Reader().Skip(in2))
	require.Zero(t, in2.Len())
}

func TestInterop_GoavroNative(t *testing.T) {
	gc, err := goavro.NewCodec(eventSchema)
	require.NoError(t, err)
	c, err := compile.ParseCodec([]byte(eventSchema), avrokit.WriteOpt{})
	require.NoError(t, err)

	native := map[string]any{
		"id":      int64(99),
		"seq":     int32(3),
		"ok":      false,
		"ratio":   -1.5,
		"weight":  float32(0.5),
		"source":  "x",
		"payload": []byte("raw"),
		"note":    map[string]any{"string": "n"},
		"level":   "LOW",
		"mac":     []byte{1, 2, 3, 4, 5, 6},
	}
	want, err := gc.BinaryFromNative(nil, native)
	require.NoError(t, err)

	ours := map[string]any{}
	for k, v := range native {
		ours[k] = v
	}
	ours["note"] = "n"
	got, err := c.Marshal(ours)
	require.NoError(t, err)
	require.Equal(t, want, got)

	decoded, rest, err := gc.NativeFromBinary(got)
	require.NoError(t, err)
	require.Empty(t, rest)
	require.Equal(t, native, decoded)
}

func TestInterop_GoavroResolvedRead(t *testing.T) {
	const v1 = `{"type":"record","name":"Order","fields":[
		{"name":"id","type":"int"},
		{"name":"sku","type":"string"},
		{"name":"qty","type":"int"}
	]}`
	const v2 = `{"type":"record","name":"Order","fields":[
		{"name":"qty","type":"double"},
		{"name":"id","type":"long"},
		{"name":"status","type":{"type":"enum","name":"Status","symbols":["NEW","DONE"]},"default":"NEW"}
	]}`
	gc, err := goavro.NewCodec(v1)
	require.NoError(t, err)
	b, err := gc.BinaryFromNative(nil, map[string]any{"id": 7, "sku": "A-1", "qty": 3})
	require.NoError(t, err)

	r, err := compile.Reader(schema.MustParse(v1), schema.MustParse(v2))
	require.NoError(t, err)
	v, err := avrokit.Unmarshal(r, b)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": int64(7), "qty": float64(3), "status": "NEW"}, v)
}

func TestInterop_GoavroFingerprint(t *testing.T) {
	const src = `{"type":"record","name":"test.Rec","doc":"x","fields":[{"name":"a","type":"int"},{"name":"b","type":{"type":"array","items":"string"}}]}`
	gc, err := goavro.NewCodec(src)
	require.NoError(t, err)
	s := schema.MustParse(src)
	require.Equal(t, gc.CanonicalSchema(), schema.Canonical(s))
	require.Equal(t, gc.Rabin, schema.Fingerprint64(s))
}

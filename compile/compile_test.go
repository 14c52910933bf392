package compile_test

import (
	"bytes"
	"errors"
	"math/big"
	"reflect"
	"strings"
	"testing"
	"time"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/compile"
	"github.com/reoring/avrokit/schema"
)

const userSchema = `{
	"type": "record", "name": "User", "namespace": "test",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "name", "type": "string"},
		{"name": "email", "type": ["null", "string"], "default": null},
		{"name": "role", "type": {"type": "enum", "name": "Role", "symbols": ["ADMIN", "MEMBER"]}},
		{"name": "tags", "type": {"type": "array", "items": "string"}},
		{"name": "scores", "type": {"type": "map", "values": "double"}},
		{"name": "hash", "type": {"type": "fixed", "name": "Hash", "size": 4}},
		{"name": "joined", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "balance", "type": {"type": "bytes", "logicalType": "decimal", "precision": 10, "scale": 2}}
	]
}`

func mustCodec(t *testing.T, src string) *compile.Codec {
	t.Helper()
	c, err := compile.ParseCodec([]byte(src), avrokit.WriteOpt{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return c
}

func TestCodec_RoundTrip(t *testing.T) {
	c := mustCodec(t, userSchema)
	joined := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	in := map[string]any{
		"id":      int64(42),
		"name":    "ann",
		"email":   "ann@example.com",
		"role":    "MEMBER",
		"tags":    []string{"a", "b"},
		"scores":  map[string]float64{"x": 1.5},
		"hash":    [4]byte{1, 2, 3, 4},
		"joined":  joined,
		"balance": big.NewRat(12345, 100),
	}
	b, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, err := c.Unmarshal(b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	m := out.(map[string]any)
	if m["id"] != int64(42) || m["name"] != "ann" || m["email"] != "ann@example.com" || m["role"] != "MEMBER" {
		t.Fatalf("scalars: %#v", m)
	}
	if !reflect.DeepEqual(m["tags"], []any{"a", "b"}) || !reflect.DeepEqual(m["scores"], map[string]any{"x": 1.5}) {
		t.Fatalf("containers: %#v", m)
	}
	if !bytes.Equal(m["hash"].([]byte), []byte{1, 2, 3, 4}) {
		t.Fatalf("fixed: %#v", m["hash"])
	}
	if !m["joined"].(time.Time).Equal(joined) {
		t.Fatalf("timestamp: %v", m["joined"])
	}
	if m["balance"].(*big.Rat).Cmp(big.NewRat(12345, 100)) != 0 {
		t.Fatalf("decimal: %v", m["balance"])
	}
}

func TestCodec_DefaultsFillMissingFields(t *testing.T) {
	c := mustCodec(t, `{"type":"record","name":"R","fields":[
		{"name":"a","type":"int"},
		{"name":"b","type":["string","null"],"default":"dflt"},
		{"name":"c","type":{"type":"int","logicalType":"date"},"default":1}
	]}`)
	b, err := c.Marshal(map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out, _ := c.Unmarshal(b)
	m := out.(map[string]any)
	if m["b"] != "dflt" || !m["c"].(time.Time).Equal(time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("defaults: %#v", m)
	}
}

func TestCodec_ValidateCollectsPaths(t *testing.T) {
	c := mustCodec(t, userSchema)
	err := c.Validate(map[string]any{
		"id":     "x",
		"name":   "ann",
		"role":   "OWNER",
		"tags":   []any{"ok", 3},
		"scores": map[string]any{},
		"hash":   []byte{1},
		"joined": int64(0),
	})
	iss, ok := avrokit.AsIssues(err)
	if !ok || !errors.Is(err, avrokit.ErrDataMismatch) {
		t.Fatalf("expected Issues, got %v", err)
	}
	want := map[string]string{
		"/id":      avrokit.CodeInvalidType,
		"/role":    avrokit.CodeInvalidEnum,
		"/tags/1":  avrokit.CodeInvalidType,
		"/hash":    avrokit.CodeInvalidSize,
		"/balance": avrokit.CodeRequired,
	}
	if len(iss) != len(want) {
		t.Fatalf("issues: %v", iss)
	}
	for _, it := range iss {
		if want[it.Path] != it.Code {
			t.Fatalf("unexpected issue %s %s", it.Path, it.Code)
		}
	}
}

func TestCodec_UnionIsolation(t *testing.T) {
	c := mustCodec(t, `["int", "string"]`)
	if err := c.Validate("text"); err != nil {
		t.Fatalf("string branch: %v", err)
	}
	err := c.Validate(2.5)
	iss, _ := avrokit.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != avrokit.CodeUnionNoMatch || !strings.Contains(iss[0].Hint, "int, string") {
		t.Fatalf("expected a single union_no_match issue, got %v", iss)
	}
}

func read(t *testing.T, writerSrc, readerSrc string, v any) any {
	t.Helper()
	ws, rs := schema.MustParse(writerSrc), schema.MustParse(readerSrc)
	w, err := compile.Writer(ws, avrokit.WriteOpt{})
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	b, err := avrokit.Marshal(w, v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	r, err := compile.Reader(ws, rs)
	if err != nil {
		t.Fatalf("reader %s -> %s: %v", writerSrc, readerSrc, err)
	}
	out, err := avrokit.Unmarshal(r, b)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func mismatch(t *testing.T, writerSrc, readerSrc string) *avrokit.SchemaError {
	t.Helper()
	_, err := compile.Reader(schema.MustParse(writerSrc), schema.MustParse(readerSrc))
	if !errors.Is(err, avrokit.ErrSchemaMismatch) {
		t.Fatalf("%s -> %s: expected ErrSchemaMismatch, got %v", writerSrc, readerSrc, err)
	}
	var se *avrokit.SchemaError
	errors.As(err, &se)
	return se
}

func TestCodec_UntaggedStructFields(t *testing.T) {
	type point struct {
		X     int32
		Y     int32
		Label string
	}
	c := mustCodec(t, `{"type":"record","name":"Point","fields":[
		{"name":"x","type":"int"},{"name":"y","type":"int"},{"name":"label","type":"string"}]}`)
	b, err := c.Marshal(point{X: 1, Y: -1, Label: "p"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(b, []byte{2, 1, 2, 'p'}) {
		t.Fatalf("bytes: % x", b)
	}
}

func TestResolve_Promotions(t *testing.T) {
	cases := []struct {
		writer, reader string
		in, want       any
	}{
		{`"int"`, `"long"`, 7, int64(7)},
		{`"int"`, `"float"`, 7, float32(7)},
		{`"int"`, `"double"`, -7, float64(-7)},
		{`"long"`, `"float"`, int64(1) << 20, float32(1 << 20)},
		{`"long"`, `"double"`, int64(1) << 40, float64(1 << 40)},
		{`"float"`, `"double"`, float32(0.25), float64(0.25)},
		{`"string"`, `"bytes"`, "hi", []byte("hi")},
		{`"bytes"`, `"string"`, []byte("hi"), "hi"},
	}
	for _, c := range cases {
		got := read(t, c.writer, c.reader, c.in)
		if !reflect.DeepEqual(got, c.want) {
			t.Fatalf("%s -> %s: got %#v want %#v", c.writer, c.reader, got, c.want)
		}
	}
	for _, pair := range [][2]string{
		{`"double"`, `"int"`},
		{`"long"`, `"int"`},
		{`"double"`, `"float"`},
		{`"string"`, `"int"`},
		{`"boolean"`, `"null"`},
	} {
		mismatch(t, pair[0], pair[1])
	}
}

func TestResolve_RecordEvolution(t *testing.T) {
	writer := `{"type":"record","name":"R","fields":[{"name":"a","type":"int"},{"name":"b","type":"string"}]}`
	reader := `{"type":"record","name":"R","fields":[{"name":"c","type":"int","default":5},{"name":"a","type":"long"}]}`
	got := read(t, writer, reader, map[string]any{"a": 1, "b": "dropped"})
	if !reflect.DeepEqual(got, map[string]any{"a": int64(1), "c": int32(5)}) {
		t.Fatalf("evolved record: %#v", got)
	}

	noDefault := `{"type":"record","name":"R","fields":[{"name":"a","type":"int"},{"name":"c","type":"int"}]}`
	se := mismatch(t, writer, noDefault)
	if se.Path != "/fields/1" || !strings.Contains(se.Reason, `"c"`) {
		t.Fatalf("mismatch must point at the reader field: %v", se)
	}

	renamed := `{"type":"record","name":"S","aliases":["R"],"fields":[{"name":"x","aliases":["a"],"type":"int"}]}`
	got = read(t, writer, renamed, map[string]any{"a": 9, "b": ""})
	if !reflect.DeepEqual(got, map[string]any{"x": int32(9)}) {
		t.Fatalf("aliases: %#v", got)
	}
	mismatch(t, writer, `{"type":"record","name":"Other","fields":[]}`)
}

func TestResolve_Enum(t *testing.T) {
	writer := `{"type":"enum","name":"E","symbols":["A","B","C"]}`
	got := read(t, writer, `{"type":"enum","name":"E","symbols":["C","B","A","Z"]}`, "B")
	if got != "B" {
		t.Fatalf("reordered enum: %v", got)
	}
	got = read(t, writer, `{"type":"enum","name":"E","symbols":["A","U"],"default":"U"}`, "C")
	if got != "U" {
		t.Fatalf("enum default: %v", got)
	}
	mismatch(t, writer, `{"type":"enum","name":"E","symbols":["A","B"]}`)
}

func TestResolve_FixedArrayMap(t *testing.T) {
	got := read(t, `{"type":"array","items":"int"}`, `{"type":"array","items":"double"}`, []int{1, 2})
	if !reflect.DeepEqual(got, []any{1.0, 2.0}) {
		t.Fatalf("array: %#v", got)
	}
	got = read(t, `{"type":"map","values":"float"}`, `{"type":"map","values":"double"}`, map[string]float32{"k": 2})
	if !reflect.DeepEqual(got, map[string]any{"k": 2.0}) {
		t.Fatalf("map: %#v", got)
	}
	se := mismatch(t, `{"type":"fixed","name":"F","size":4}`, `{"type":"fixed","name":"F","size":8}`)
	if se.Path != "/size" {
		t.Fatalf("size mismatch path: %v", se)
	}
	mismatch(t, `{"type":"array","items":"string"}`, `{"type":"map","values":"string"}`)
}

func TestResolve_Unions(t *testing.T) {
	// reader union, writer not: same type wins over promotion
	got := read(t, `"int"`, `["null","long","int"]`, 3)
	if got != int32(3) {
		t.Fatalf("exact branch: %#v", got)
	}
	got = read(t, `"int"`, `["null","double"]`, 3)
	if got != float64(3) {
		t.Fatalf("promoted branch: %#v", got)
	}
	mismatch(t, `"string"`, `["null","int"]`)

	// writer union, reader not
	got = read(t, `["int","long"]`, `"double"`, int64(5))
	if got != float64(5) {
		t.Fatalf("writer union: %#v", got)
	}
	se := mismatch(t, `["null","string"]`, `"string"`)
	if !strings.Contains(se.Reason, "branch 0") {
		t.Fatalf("reason must name the writer branch: %v", se)
	}

	// both unions
	got = read(t, `["null","int"]`, `["long","null"]`, 4)
	if got != int64(4) {
		t.Fatalf("union to union: %#v", got)
	}
}

func TestReader_BadIndicesAreFatal(t *testing.T) {
	c := mustCodec(t, `{"type":"enum","name":"E","symbols":["A","B"]}`)
	if _, err := c.Unmarshal([]byte{4}); !errors.Is(err, avrokit.ErrCorrupt) || !strings.Contains(err.Error(), "2") {
		t.Fatalf("enum index: %v", err)
	}
	c = mustCodec(t, `["null","int"]`)
	if _, err := c.Unmarshal([]byte{6}); !errors.Is(err, avrokit.ErrSchemaMismatch) {
		t.Fatalf("union index: %v", err)
	}
	if _, err := c.Unmarshal([]byte{2}); err == nil {
		t.Fatalf("truncated value must fail")
	}
}

func TestWriter_BlockSkipEquivalence(t *testing.T) {
	s := schema.MustParse(`{"type":"record","name":"R","fields":[
		{"name":"xs","type":{"type":"array","items":{"type":"map","values":"string"}}},
		{"name":"tail","type":"int"}
	]}`)
	r, err := compile.Reader(s, nil)
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	v := map[string]any{
		"xs":   []any{map[string]any{"a": "1", "b": "2"}, map[string]any{}, map[string]any{"c": "3"}},
		"tail": 9,
	}
	for _, opt := range []avrokit.WriteOpt{{}, {BlockCount: 1}, {WriteBlockSize: true}, {BlockCount: 2, WriteBlockSize: true}} {
		w, err := compile.Writer(s, opt)
		if err != nil {
			t.Fatalf("writer: %v", err)
		}
		b, err := avrokit.Marshal(w, v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		in := avrokit.NewBuffer(b)
		if err := r.Skip(in); err != nil || in.Len() != 0 {
			t.Fatalf("%+v: skip left %d bytes: %v", opt, in.Len(), err)
		}
		out, err := avrokit.Unmarshal(r, b)
		if err != nil || out.(map[string]any)["tail"] != int32(9) {
			t.Fatalf("%+v: read %v %v", opt, out, err)
		}
	}
}

func TestCache(t *testing.T) {
	c, err := compile.NewCache(compile.CacheOpt{Size: 4})
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	a := schema.MustParse(`{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
	b := schema.MustParse(`{"type":"record","name":"R","fields":[{"name":"a","type":"int"}]}`)
	w1, _ := c.Writer(a)
	w2, _ := c.Writer(b)
	if w1 != w2 {
		t.Fatalf("equal schemas must share a compiled writer")
	}
	withDefault := schema.MustParse(`{"type":"record","name":"R","fields":[{"name":"a","type":"int","default":1}]}`)
	if w3, _ := c.Writer(withDefault); w3 == w1 {
		t.Fatalf("a default changes the compiled writer")
	}
	if _, err := c.Reader(a, schema.MustParse(`"string"`)); !errors.Is(err, avrokit.ErrSchemaMismatch) {
		t.Fatalf("mismatch: %v", err)
	}
	r1, _ := c.Reader(a, nil)
	r2, _ := c.Reader(b, b)
	if r1 != r2 {
		t.Fatalf("reader not cached")
	}
	if ws, rs := c.Len(); ws != 2 || rs != 1 {
		t.Fatalf("len: %d %d", ws, rs)
	}
}

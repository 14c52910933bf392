package wire

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestLong_KnownEncodings(t *testing.T) {
	cases := []struct {
		n    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{-1, []byte{0x01}},
		{1, []byte{0x02}},
		{-2, []byte{0x03}},
		{63, []byte{0x7e}},
		{-64, []byte{0x7f}},
		{64, []byte{0x80, 0x01}},
		{math.MaxInt64, []byte{0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
		{math.MinInt64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}
	for _, c := range cases {
		got := AppendLong(nil, c.n)
		if !bytes.Equal(got, c.want) {
			t.Fatalf("AppendLong(%d) = % x, want % x", c.n, got, c.want)
		}
		back, err := ReadLong(NewBuffer(got))
		if err != nil {
			t.Fatalf("ReadLong(% x): %v", got, err)
		}
		if back != c.n {
			t.Fatalf("round trip %d -> %d", c.n, back)
		}
	}
}

func TestLong_RoundTripSweep(t *testing.T) {
	var buf Buffer
	var values []int64
	for shift := 0; shift < 63; shift++ {
		v := int64(1) << shift
		values = append(values, v, -v, v-1, -v+1)
	}
	for _, v := range values {
		if err := WriteLong(&buf, v); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	for _, v := range values {
		got, err := ReadLong(&buf)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if got != v {
			t.Fatalf("got %d want %d", got, v)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("trailing bytes: %d", buf.Len())
	}
}

func TestSkipLong_AdvancesLikeRead(t *testing.T) {
	b := AppendLong(nil, 1<<40)
	b = AppendLong(b, 7)
	in := NewBuffer(b)
	if err := SkipLong(in); err != nil {
		t.Fatalf("skip: %v", err)
	}
	n, err := ReadLong(in)
	if err != nil || n != 7 {
		t.Fatalf("after skip got %d, %v", n, err)
	}
}

func TestReadLong_Errors(t *testing.T) {
	if _, err := ReadLong(NewBuffer([]byte{0x80, 0x80})); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("truncated varint: %v", err)
	}
	long := bytes.Repeat([]byte{0xff}, 11)
	if _, err := ReadLong(NewBuffer(long)); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("overlong varint: %v", err)
	}
	if _, err := ReadInt(NewBuffer(AppendLong(nil, math.MaxInt32+1))); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("int overflow: %v", err)
	}
}

func TestFloatDouble_BitExact(t *testing.T) {
	var buf Buffer
	floats := []float32{0, -0.5, 3.25, float32(math.Inf(1)), float32(math.Inf(-1)), math.Float32frombits(0x7fc00001)}
	doubles := []float64{0, 1e300, -2.5, math.Inf(1), math.Float64frombits(0x7ff8000000000001)}
	for _, f := range floats {
		_ = WriteFloat(&buf, f)
	}
	for _, d := range doubles {
		_ = WriteDouble(&buf, d)
	}
	for _, f := range floats {
		got, err := ReadFloat(&buf)
		if err != nil || math.Float32bits(got) != math.Float32bits(f) {
			t.Fatalf("float %v -> %v (%v)", f, got, err)
		}
	}
	for _, d := range doubles {
		got, err := ReadDouble(&buf)
		if err != nil || math.Float64bits(got) != math.Float64bits(d) {
			t.Fatalf("double %v -> %v (%v)", d, got, err)
		}
	}
}

func TestFloat_LittleEndianLayout(t *testing.T) {
	var buf Buffer
	_ = WriteFloat(&buf, 1)
	if !bytes.Equal(buf.Bytes(), []byte{0x00, 0x00, 0x80, 0x3f}) {
		t.Fatalf("float layout: % x", buf.Bytes())
	}
	buf.Reset()
	_ = WriteDouble(&buf, 1)
	if !bytes.Equal(buf.Bytes(), []byte{0, 0, 0, 0, 0, 0, 0xf0, 0x3f}) {
		t.Fatalf("double layout: % x", buf.Bytes())
	}
}

func TestBytesAndString(t *testing.T) {
	var buf Buffer
	_ = WriteString(&buf, "héllo")
	_ = WriteBytes(&buf, []byte{1, 2, 3})
	_ = WriteString(&buf, "")
	if buf.Bytes()[0] != 0x0c { // 6 bytes of UTF-8, zig-zag 12
		t.Fatalf("length prefix must count bytes: % x", buf.Bytes())
	}
	s, err := ReadString(&buf)
	if err != nil || s != "héllo" {
		t.Fatalf("string: %q %v", s, err)
	}
	if err := SkipBytes(&buf); err != nil {
		t.Fatalf("skip bytes: %v", err)
	}
	s, err = ReadString(&buf)
	if err != nil || s != "" {
		t.Fatalf("empty string: %q %v", s, err)
	}
	if _, err := ReadBytes(NewBuffer(AppendLong(nil, -3))); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("negative length: %v", err)
	}
	if _, err := ReadBytes(NewBuffer(AppendLong(nil, 5))); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("short read: %v", err)
	}
}

func TestReaderInput(t *testing.T) {
	b := AppendLong(nil, 300)
	b = append(b, 0xaa, 0xbb, 0xcc)
	b = AppendLong(b, -9)
	in := NewInput(bytes.NewReader(b))
	n, err := ReadLong(in)
	if err != nil || n != 300 {
		t.Fatalf("long: %d %v", n, err)
	}
	if err := in.Skip(3); err != nil {
		t.Fatalf("skip: %v", err)
	}
	n, err = ReadLong(in)
	if err != nil || n != -9 {
		t.Fatalf("long after skip: %d %v", n, err)
	}
	if _, err := in.ReadFull(1); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("eof: %v", err)
	}
}

func TestReaderInput_LargeDeclaredLength(t *testing.T) {
	hdr := AppendLong(nil, 1<<30)
	in := NewInput(io.MultiReader(bytes.NewReader(hdr), bytes.NewReader([]byte("short"))))
	if _, err := ReadBytes(in); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected unexpected EOF, got %v", err)
	}

	payload := bytes.Repeat([]byte{7}, largeRead+3)
	in = NewInput(bytes.NewReader(append(AppendLong(nil, int64(len(payload))), payload...)))
	got, err := ReadBytes(in)
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("large read: %d bytes, %v", len(got), err)
	}
}

func TestLong_TenthByteOverflow(t *testing.T) {
	nine := bytes.Repeat([]byte{0xff}, 9)
	for _, last := range []byte{0x02, 0x7f} {
		raw := append(append([]byte{}, nine...), last)
		if _, err := ReadLong(NewBuffer(raw)); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("read %#x: expected ErrCorrupt, got %v", last, err)
		}
		if err := SkipLong(NewBuffer(raw)); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("skip %#x: expected ErrCorrupt, got %v", last, err)
		}
	}
	n, err := ReadLong(NewBuffer(append(append([]byte{}, nine...), 0x01)))
	if err != nil || n != math.MinInt64 {
		t.Fatalf("boundary: %d %v", n, err)
	}
}

package schema

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Canonical renders s in Avro Parsing Canonical Form: full names, only the
// attributes that affect decoding, fixed attribute order, no whitespace.
// Named types are spelled out once and referenced by full name afterwards.
func Canonical(s *Schema) string {
	b := &strings.Builder{}
	writeCanonical(b, s, map[string]bool{})
	return b.String()
}

func writeCanonical(b *strings.Builder, s *Schema, seen map[string]bool) {
	if s.Kind.IsPrimitive() {
		writeJSONString(b, string(s.Kind))
		return
	}
	if s.Kind.IsNamed() {
		full := s.FullName()
		if seen[full] {
			writeJSONString(b, full)
			return
		}
		seen[full] = true
	}
	switch s.Kind {
	case Union:
		b.WriteByte('[')
		for i, br := range s.Branches {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, br, seen)
		}
		b.WriteByte(']')
	case Array:
		b.WriteString(`{"type":"array","items":`)
		writeCanonical(b, s.Items, seen)
		b.WriteByte('}')
	case Map:
		b.WriteString(`{"type":"map","values":`)
		writeCanonical(b, s.Values, seen)
		b.WriteByte('}')
	case Record:
		b.WriteString(`{"name":`)
		writeJSONString(b, s.FullName())
		b.WriteString(`,"type":"record","fields":[`)
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(`{"name":`)
			writeJSONString(b, f.Name)
			b.WriteString(`,"type":`)
			writeCanonical(b, f.Type, seen)
			b.WriteByte('}')
		}
		b.WriteString("]}")
	case Enum:
		b.WriteString(`{"name":`)
		writeJSONString(b, s.FullName())
		b.WriteString(`,"type":"enum","symbols":[`)
		for i, sym := range s.Symbols {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, sym)
		}
		b.WriteString("]}")
	case Fixed:
		b.WriteString(`{"name":`)
		writeJSONString(b, s.FullName())
		b.WriteString(`,"type":"fixed","size":`)
		b.WriteString(strconv.Itoa(s.Size))
		b.WriteByte('}')
	}
}

func writeJSONString(b *strings.Builder, s string) {
	out, err := json.Marshal(s)
	if err != nil {
		// strings always marshal
		panic(err)
	}
	b.Write(out)
}

// CRC-64-AVRO parameters.
const fingerprintEmpty uint64 = 0xc15d213aa4d7a795

var fingerprintTable = func() (t [256]uint64) {
	for i := range t {
		fp := uint64(i)
		for j := 0; j < 8; j++ {
			fp = (fp >> 1) ^ (fingerprintEmpty & -(fp & 1))
		}
		t[i] = fp
	}
	return t
}()

// Fingerprint64 is the CRC-64-AVRO (Rabin) fingerprint of the canonical
// form of s.
func Fingerprint64(s *Schema) uint64 {
	return fingerprintBytes([]byte(Canonical(s)))
}

func fingerprintBytes(data []byte) uint64 {
	fp := fingerprintEmpty
	for _, c := range data {
		fp = (fp >> 8) ^ fingerprintTable[byte(fp)^c]
	}
	return fp
}

// Package wire implements the Avro binary primitives: zig-zag variable-length
// longs, little-endian IEEE-754 floats and length-prefixed byte strings.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrCorrupt reports wire bytes that cannot be decoded under the schema.
var ErrCorrupt = errors.New("avrokit: corrupt data")

// MaxVarintLen is the longest encoding of a 64-bit zig-zag long.
const MaxVarintLen = 10

// AppendLong appends the zig-zag varint encoding of n to dst.
func AppendLong(dst []byte, n int64) []byte {
	u := uint64((n << 1) ^ (n >> 63))
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// WriteLong writes n as a zig-zag varint.
func WriteLong(w io.Writer, n int64) error {
	var scratch [MaxVarintLen]byte
	_, err := w.Write(AppendLong(scratch[:0], n))
	return err
}

// ReadLong decodes a zig-zag varint.
func ReadLong(in Input) (int64, error) {
	var u uint64
	var shift uint
	for i := 0; i < MaxVarintLen; i++ {
		c, err := in.ReadByte()
		if err != nil {
			return 0, err
		}
		if i == MaxVarintLen-1 && c > 1 {
			// the tenth byte carries only the 64th bit
			return 0, fmt.Errorf("%w: varint overflows 64 bits", ErrCorrupt)
		}
		u |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return int64(u>>1) ^ -int64(u&1), nil
		}
		shift += 7
	}
	return 0, fmt.Errorf("%w: varint exceeds %d bytes", ErrCorrupt, MaxVarintLen)
}

// SkipLong advances past one varint without decoding it.
func SkipLong(in Input) error {
	for i := 0; i < MaxVarintLen; i++ {
		c, err := in.ReadByte()
		if err != nil {
			return err
		}
		if i == MaxVarintLen-1 && c > 1 {
			return fmt.Errorf("%w: varint overflows 64 bits", ErrCorrupt)
		}
		if c&0x80 == 0 {
			return nil
		}
	}
	return fmt.Errorf("%w: varint exceeds %d bytes", ErrCorrupt, MaxVarintLen)
}

// ReadInt decodes a varint and checks that it fits an Avro int.
func ReadInt(in Input) (int32, error) {
	n, err := ReadLong(in)
	if err != nil {
		return 0, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: int value %d out of range", ErrCorrupt, n)
	}
	return int32(n), nil
}

// WriteBoolean writes a single 0/1 byte.
func WriteBoolean(w io.Writer, b bool) error {
	var c [1]byte
	if b {
		c[0] = 1
	}
	_, err := w.Write(c[:])
	return err
}

// ReadBoolean reads one byte; any non-zero byte is true.
func ReadBoolean(in Input) (bool, error) {
	c, err := in.ReadByte()
	if err != nil {
		return false, err
	}
	return c != 0, nil
}

// WriteFloat writes f as 4 little-endian bytes.
func WriteFloat(w io.Writer, f float32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
	_, err := w.Write(b[:])
	return err
}

// ReadFloat reads 4 little-endian bytes.
func ReadFloat(in Input) (float32, error) {
	b, err := in.ReadFull(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// WriteDouble writes f as 8 little-endian bytes.
func WriteDouble(w io.Writer, f float64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
	_, err := w.Write(b[:])
	return err
}

// ReadDouble reads 8 little-endian bytes.
func ReadDouble(in Input) (float64, error) {
	b, err := in.ReadFull(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

// WriteBytes writes a byte-length prefix followed by p.
func WriteBytes(w io.Writer, p []byte) error {
	if err := WriteLong(w, int64(len(p))); err != nil {
		return err
	}
	_, err := w.Write(p)
	return err
}

// WriteString writes s with the same layout as WriteBytes.
func WriteString(w io.Writer, s string) error {
	if err := WriteLong(w, int64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readLength(in Input) (int, error) {
	n, err := ReadLong(in)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: invalid byte length %d", ErrCorrupt, n)
	}
	return int(n), nil
}

// ReadBytes reads a length-prefixed byte string into a fresh slice.
func ReadBytes(in Input) ([]byte, error) {
	n, err := readLength(in)
	if err != nil {
		return nil, err
	}
	p, err := in.ReadFull(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

// ReadString reads a length-prefixed byte string as a Go string.
func ReadString(in Input) (string, error) {
	n, err := readLength(in)
	if err != nil {
		return "", err
	}
	p, err := in.ReadFull(n)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// SkipBytes advances past a length-prefixed byte string.
func SkipBytes(in Input) error {
	n, err := readLength(in)
	if err != nil {
		return err
	}
	return in.Skip(int64(n))
}

// ReadFixed reads exactly n raw bytes into a fresh slice.
func ReadFixed(in Input, n int) ([]byte, error) {
	p, err := in.ReadFull(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

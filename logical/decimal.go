package logical

import (
	"fmt"
	"math/big"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/schema"
)

// decimal stores the unscaled value of a number as a big-endian two's
// complement integer in bytes or fixed. Values read back as *big.Rat.
type decimal struct {
	precision int
	scale     int
	size      int // 0 for bytes
	pow       *big.Int
	limit     *big.Int // 10^precision
}

func newDecimal(s *schema.Schema) (avrokit.LogicalType, error) {
	if s.Kind != schema.Bytes && s.Kind != schema.Fixed {
		return nil, nil
	}
	if s.Precision <= 0 || s.Scale < 0 || s.Scale > s.Precision {
		return nil, nil
	}
	if s.Kind == schema.Fixed && s.Precision > maxFixedPrecision(s.Size) {
		return nil, nil
	}
	d := &decimal{
		precision: s.Precision,
		scale:     s.Scale,
		pow:       pow10(s.Scale),
		limit:     pow10(s.Precision),
	}
	if s.Kind == schema.Fixed {
		d.size = s.Size
	}
	return d, nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// maxFixedPrecision is the number of base-10 digits a signed size-byte
// integer can always hold.
func maxFixedPrecision(size int) int {
	if size <= 0 {
		return 0
	}
	top := new(big.Int).Lsh(big.NewInt(1), uint(8*size-1))
	top.Sub(top, big.NewInt(1))
	return len(top.String()) - 1
}

func (d *decimal) rat(v any) (*big.Rat, error) {
	switch t := v.(type) {
	case *big.Rat:
		if t != nil {
			return t, nil
		}
	case *big.Int:
		if t != nil {
			return new(big.Rat).SetInt(t), nil
		}
	case []byte:
		// already in the raw two's complement form
		return new(big.Rat).SetFrac(fromTwosComplement(t), d.pow), nil
	case string:
		r, ok := new(big.Rat).SetString(t)
		if !ok {
			return nil, fmt.Errorf("%q is not a decimal number", t)
		}
		return r, nil
	}
	if n, ok := rawInt(v); ok {
		return new(big.Rat).SetInt64(n), nil
	}
	return nil, fmt.Errorf("expected *big.Rat, got %T", v)
}

func (d *decimal) unscaled(v any) (*big.Int, error) {
	r, err := d.rat(v)
	if err != nil {
		return nil, err
	}
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(d.pow))
	if !scaled.IsInt() {
		return nil, fmt.Errorf("%s has more than %d fractional digits", r.RatString(), d.scale)
	}
	n := scaled.Num()
	if new(big.Int).Abs(n).Cmp(d.limit) >= 0 {
		return nil, fmt.Errorf("%s exceeds precision %d", r.RatString(), d.precision)
	}
	return n, nil
}

func (d *decimal) Validate(v any, vc *avrokit.ValidationContext) bool {
	if _, err := d.unscaled(v); err != nil {
		vc.AddError(avrokit.CodeLogicalType, "decimal: "+err.Error())
		return false
	}
	return true
}

func (d *decimal) Normalize(v any) (any, error) {
	n, err := d.unscaled(v)
	if err != nil {
		return nil, err
	}
	b := twosComplement(n)
	if d.size == 0 {
		return b, nil
	}
	if len(b) > d.size {
		return nil, fmt.Errorf("decimal needs %d bytes, fixed holds %d", len(b), d.size)
	}
	out := make([]byte, d.size)
	if n.Sign() < 0 {
		for i := range out {
			out[i] = 0xff
		}
	}
	copy(out[d.size-len(b):], b)
	return out, nil
}

func (d *decimal) Denormalize(raw any) (any, error) {
	b, ok := raw.([]byte)
	if !ok {
		return nil, fmt.Errorf("decimal: expected bytes, got %T", raw)
	}
	return new(big.Rat).SetFrac(fromTwosComplement(b), d.pow), nil
}

// twosComplement returns the shortest big-endian two's complement form of n.
func twosComplement(n *big.Int) []byte {
	if n.Sign() >= 0 {
		b := n.Bytes()
		if len(b) == 0 || b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	b := new(big.Int).Not(n).Bytes() // -n-1
	for i := range b {
		b[i] = ^b[i]
	}
	if len(b) == 0 || b[0]&0x80 == 0 {
		b = append([]byte{0xff}, b...)
	}
	return b
}

func fromTwosComplement(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}
	return n
}

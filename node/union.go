package node

import (
	"fmt"
	"io"
	"strings"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/internal/wire"
)

// UnionWriter writes the branch index followed by the branch value. Names
// holds the type name of each branch for avrokit.Branch selection and for
// issue hints.
type UnionWriter struct {
	Branches []avrokit.Writer
	Names    []string
}

// explicit resolves an avrokit.Branch wrapper to a branch index.
func (u *UnionWriter) explicit(b avrokit.Branch) (int, bool) {
	if b.Name != "" {
		for i, n := range u.Names {
			if n == b.Name {
				return i, true
			}
		}
		return -1, false
	}
	if b.Index < 0 || b.Index >= len(u.Branches) {
		return -1, false
	}
	return b.Index, true
}

func (u *UnionWriter) unknownBranch(b avrokit.Branch) string {
	if b.Name != "" {
		return fmt.Sprintf("no branch named %q in %s", b.Name, u.describe())
	}
	return fmt.Sprintf("branch index %d out of range [0, %d)", b.Index, len(u.Branches))
}

func (u *UnionWriter) describe() string {
	return fmt.Sprintf("expected one of %d branches: %s", len(u.Names), strings.Join(u.Names, ", "))
}

// match returns the first branch that accepts v. Each trial runs in its own
// issue buffer which is always discarded.
func (u *UnionWriter) match(v any, vc *avrokit.ValidationContext) int {
	for i, b := range u.Branches {
		vc.PushContext()
		ok := b.Validate(v, vc)
		vc.PopContext(true)
		if ok {
			return i
		}
	}
	return -1
}

func (u *UnionWriter) Validate(v any, vc *avrokit.ValidationContext) bool {
	if b, ok := v.(avrokit.Branch); ok {
		i, found := u.explicit(b)
		if !found {
			vc.AddError(avrokit.CodeUnknownBranch, u.unknownBranch(b))
			return false
		}
		return u.Branches[i].Validate(b.Value, vc)
	}
	if u.match(v, vc) < 0 {
		vc.AddError(avrokit.CodeUnionNoMatch, u.describe())
		return false
	}
	return true
}

func (u *UnionWriter) Write(out io.Writer, v any) error {
	var i int
	if b, ok := v.(avrokit.Branch); ok {
		var found bool
		if i, found = u.explicit(b); !found {
			return avrokit.DataErrorf("%s", u.unknownBranch(b))
		}
		v = b.Value
	} else if i = u.match(v, avrokit.NewValidationContext()); i < 0 {
		return avrokit.DataErrorf("%s, got %s", u.describe(), typeOf(v))
	}
	if err := wire.WriteLong(out, int64(i)); err != nil {
		return err
	}
	return u.Branches[i].Write(out, v)
}

// UnionReader reads the branch index and delegates to that branch. The
// decoded value is returned bare, without a Branch wrapper.
type UnionReader struct {
	Branches []avrokit.Reader
}

func (u *UnionReader) branch(in avrokit.Input) (avrokit.Reader, error) {
	i, err := wire.ReadLong(in)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= int64(len(u.Branches)) {
		// Either the bytes are damaged or they were written under another schema.
		return nil, fmt.Errorf("%w: %w: union branch index %d out of range [0, %d)",
			avrokit.ErrCorrupt, avrokit.ErrSchemaMismatch, i, len(u.Branches))
	}
	return u.Branches[i], nil
}

func (u *UnionReader) Read(in avrokit.Input) (any, error) {
	r, err := u.branch(in)
	if err != nil {
		return nil, err
	}
	return r.Read(in)
}

func (u *UnionReader) Skip(in avrokit.Input) error {
	r, err := u.branch(in)
	if err != nil {
		return err
	}
	return r.Skip(in)
}

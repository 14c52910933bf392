package avrokit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/avrokit/internal/wire"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType     = "invalid_type"
	CodeRequired        = "required"
	CodeOutOfRange      = "out_of_range"
	CodeInvalidEnum     = "invalid_enum"
	CodeInvalidSize     = "invalid_size"
	CodeInvalidKey      = "invalid_key"
	CodeUnionNoMatch    = "union_no_match"
	CodeUnknownBranch   = "unknown_branch"
	CodeOneShotIterable = "one_shot_iterable"
	CodeLogicalType     = "logical_type"
)

// Error kinds. Schema errors are returned while compiling, data errors while
// validating or writing, corrupt-data errors while reading.
var (
	ErrInvalidSchema  = errors.New("avrokit: invalid schema")
	ErrSchemaMismatch = errors.New("avrokit: schema mismatch")
	ErrDataMismatch   = errors.New("avrokit: data mismatch")
	ErrCorrupt        = wire.ErrCorrupt
)

// SchemaError describes why a schema (or a writer/reader schema pair) was
// rejected. Kind is ErrInvalidSchema or ErrSchemaMismatch.
type SchemaError struct {
	Kind   error
	Path   string // JSON Pointer into the schema (for example: /fields/1/type).
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" || e.Path == "/" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%v at %s: %s", e.Kind, e.Path, e.Reason)
}

func (e *SchemaError) Unwrap() error { return e.Kind }

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: expected type, branch names, etc.
	Cause   error  // Optional: underlying error.
}

func (it Issue) String() string {
	if it.Hint != "" {
		return it.Path + ": " + it.Message + " (" + it.Hint + ")"
	}
	return it.Path + ": " + it.Message
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap lets errors.Is(err, ErrDataMismatch) match validation failures.
func (iss Issues) Unwrap() error { return ErrDataMismatch }

// Strings renders every issue as "path: message".
func (iss Issues) Strings() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.String()
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// DataErrorf builds a write-time error wrapping ErrDataMismatch.
func DataErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDataMismatch, fmt.Sprintf(format, args...))
}

// CorruptErrorf builds a read-time error wrapping ErrCorrupt.
func CorruptErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}

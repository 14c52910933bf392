// Package schema holds the normalized Avro schema model and the normalizer
// that builds it from schema JSON (or YAML).
package schema

import "strings"

// Kind is the Avro type of a schema node.
type Kind string

const (
	Null    Kind = "null"
	Boolean Kind = "boolean"
	Int     Kind = "int"
	Long    Kind = "long"
	Float   Kind = "float"
	Double  Kind = "double"
	Bytes   Kind = "bytes"
	String  Kind = "string"
	Record  Kind = "record"
	Enum    Kind = "enum"
	Array   Kind = "array"
	Map     Kind = "map"
	Fixed   Kind = "fixed"
	Union   Kind = "union"
)

var primitives = map[string]Kind{
	"null": Null, "boolean": Boolean, "int": Int, "long": Long,
	"float": Float, "double": Double, "bytes": Bytes, "string": String,
}

// IsPrimitive reports whether k has no children and no name.
func (k Kind) IsPrimitive() bool {
	_, ok := primitives[string(k)]
	return ok
}

// IsNamed reports whether schemas of kind k carry a name.
func (k Kind) IsNamed() bool { return k == Record || k == Enum || k == Fixed }

// Schema is a normalized Avro schema node. Which fields are meaningful
// depends on Kind. A Schema is not modified after Normalize returns.
type Schema struct {
	Kind Kind

	// Named types (record, enum, fixed).
	Name      string // unqualified
	Namespace string
	Aliases   []string // full names
	Doc       string

	Fields []*Field // record

	Symbols        []string // enum
	EnumDefault    string
	HasEnumDefault bool

	Items  *Schema // array
	Values *Schema // map
	Size   int     // fixed

	Branches []*Schema // union

	LogicalType string
	Precision   int // decimal
	Scale       int // decimal
}

// Field is a record member.
type Field struct {
	Name       string
	Type       *Schema
	Default    any // raw JSON literal, meaningful when HasDefault
	HasDefault bool
	Aliases    []string
	Doc        string
}

// FullName returns namespace.name for named types and "" otherwise.
func (s *Schema) FullName() string {
	if !s.Kind.IsNamed() {
		return ""
	}
	if s.Namespace == "" {
		return s.Name
	}
	return s.Namespace + "." + s.Name
}

// TypeName is the name used for union branch selection and messages: the
// full name of named types, the kind otherwise.
func (s *Schema) TypeName() string {
	if s.Kind.IsNamed() {
		return s.FullName()
	}
	return string(s.Kind)
}

// FieldByName returns the record field called name, or nil.
func (s *Schema) FieldByName(name string) *Field {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// SymbolIndex returns the position of sym in an enum, or -1.
func (s *Schema) SymbolIndex(sym string) int {
	for i, v := range s.Symbols {
		if v == sym {
			return i
		}
	}
	return -1
}

// MatchesName reports whether a named schema called other (full or
// unqualified) is acceptable where s is expected, by name or alias.
func (s *Schema) MatchesName(other *Schema) bool {
	if s.Name == other.Name || s.FullName() == other.FullName() {
		return true
	}
	for _, a := range s.Aliases {
		if a == other.FullName() || shortName(a) == other.Name {
			return true
		}
	}
	return false
}

func shortName(full string) string {
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		return full[i+1:]
	}
	return full
}

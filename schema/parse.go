package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	avrokit "github.com/reoring/avrokit"
)

var (
	namePattern   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	symbolPattern = namePattern
)

// Parse decodes schema JSON into its raw form (string, []any or
// map[string]any, numbers as json.Number).
func Parse(text []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, invalidf(nil, "malformed JSON: %v", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, invalidf(nil, "trailing data after schema")
	}
	return checkTopLevel(raw)
}

// ParseYAML decodes a schema authored as YAML into the same raw form as
// Parse.
func ParseYAML(text []byte) (any, error) {
	var node any
	if err := yaml.Unmarshal(text, &node); err != nil {
		return nil, invalidf(nil, "malformed YAML: %v", err)
	}
	return checkTopLevel(yamlNormalizeValue(node))
}

func checkTopLevel(raw any) (any, error) {
	switch raw.(type) {
	case string, []any, map[string]any:
		return raw, nil
	default:
		return nil, invalidf(nil, "schema must be a string, array or object, got %T", raw)
	}
}

// yamlNormalizeValue converts YAML-decoded values (which may contain
// map[any]any) into JSON-like values recursively.
func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = yamlNormalizeValue(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}

// ParseSchema parses and normalizes schema JSON in one step.
func ParseSchema(text []byte) (*Schema, error) {
	raw, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return Normalize(raw)
}

// MustParse is ParseSchema that panics on error, for tests and static
// schemas.
func MustParse(text string) *Schema {
	s, err := ParseSchema([]byte(text))
	if err != nil {
		panic(err)
	}
	return s
}

// Normalize builds a Schema from its raw form and enforces the shape rules.
// Errors are *avrokit.SchemaError wrapping avrokit.ErrInvalidSchema.
func Normalize(raw any) (*Schema, error) {
	n := &normalizer{named: map[string]*Schema{}, defining: map[string]bool{}}
	return n.normalize(raw, "", nil)
}

type normalizer struct {
	named    map[string]*Schema // by full name
	defining map[string]bool    // named types whose definition is in progress
}

type path []string

func (p path) with(seg ...string) path {
	return append(append(path{}, p...), seg...)
}

func (p path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p, "/")
}

func invalidf(p path, format string, args ...any) error {
	return &avrokit.SchemaError{Kind: avrokit.ErrInvalidSchema, Path: p.String(), Reason: fmt.Sprintf(format, args...)}
}

func (n *normalizer) normalize(raw any, ns string, p path) (*Schema, error) {
	switch t := raw.(type) {
	case string:
		return n.reference(t, ns, p)
	case []any:
		return n.union(t, ns, p)
	case map[string]any:
		return n.object(t, ns, p)
	case nil:
		return nil, invalidf(p, "missing schema")
	default:
		return nil, invalidf(p, "schema must be a string, array or object, got %T", raw)
	}
}

func (n *normalizer) reference(name, ns string, p path) (*Schema, error) {
	if k, ok := primitives[name]; ok {
		return &Schema{Kind: k}, nil
	}
	candidates := []string{name}
	if !strings.Contains(name, ".") && ns != "" {
		candidates = []string{ns + "." + name, name}
	}
	for _, c := range candidates {
		if n.defining[c] {
			return nil, invalidf(p, "recursive type %q is not supported", c)
		}
		if s, ok := n.named[c]; ok {
			return s, nil
		}
	}
	return nil, invalidf(p, "unknown type %q", name)
}

func (n *normalizer) union(raw []any, ns string, p path) (*Schema, error) {
	if len(raw) == 0 {
		return nil, invalidf(p, "union must have at least one branch")
	}
	u := &Schema{Kind: Union, Branches: make([]*Schema, 0, len(raw))}
	seen := map[string]bool{}
	for i, b := range raw {
		bp := p.with(strconv.Itoa(i))
		s, err := n.normalize(b, ns, bp)
		if err != nil {
			return nil, err
		}
		if s.Kind == Union {
			return nil, invalidf(bp, "unions may not immediately contain other unions")
		}
		key := s.TypeName()
		if seen[key] {
			return nil, invalidf(bp, "duplicate %q in union", key)
		}
		seen[key] = true
		u.Branches = append(u.Branches, s)
	}
	return u, nil
}

func (n *normalizer) object(obj map[string]any, ns string, p path) (*Schema, error) {
	rawType, ok := obj["type"]
	if !ok {
		return nil, invalidf(p, `missing "type"`)
	}
	var (
		s   *Schema
		err error
	)
	typ, isString := rawType.(string)
	switch {
	case !isString:
		// {"type": {...}} and {"type": [...]} wrap a nested schema.
		s, err = n.normalize(rawType, ns, p.with("type"))
	case typ == "record" || typ == "error":
		s, err = n.record(obj, ns, p)
	case typ == "enum":
		s, err = n.enum(obj, ns, p)
	case typ == "fixed":
		s, err = n.fixed(obj, ns, p)
	case typ == "array":
		items, ok := obj["items"]
		if !ok {
			return nil, invalidf(p, `array requires "items"`)
		}
		var it *Schema
		if it, err = n.normalize(items, ns, p.with("items")); err == nil {
			s = &Schema{Kind: Array, Items: it}
		}
	case typ == "map":
		values, ok := obj["values"]
		if !ok {
			return nil, invalidf(p, `map requires "values"`)
		}
		var vs *Schema
		if vs, err = n.normalize(values, ns, p.with("values")); err == nil {
			s = &Schema{Kind: Map, Values: vs}
		}
	default:
		if k, ok := primitives[typ]; ok {
			s = &Schema{Kind: k}
		} else {
			// a named reference written in object form
			s, err = n.reference(typ, ns, p.with("type"))
		}
	}
	if err != nil {
		return nil, err
	}
	if lt, ok := obj["logicalType"].(string); ok && lt != "" {
		if s.Kind.IsNamed() && n.named[s.FullName()] == s && !isDefinition(obj) {
			// never decorate a shared named definition through a reference
			cp := *s
			s = &cp
		}
		s.LogicalType = lt
		if v, ok := toInt(obj["precision"]); ok {
			s.Precision = int(v)
		}
		if v, ok := toInt(obj["scale"]); ok {
			s.Scale = int(v)
		}
	}
	return s, nil
}

func isDefinition(obj map[string]any) bool {
	switch obj["type"] {
	case "record", "error", "enum", "fixed":
		return true
	}
	return false
}

// name resolves the full name of a named type definition and registers the
// definition as in progress.
func (n *normalizer) name(obj map[string]any, ns string, p path) (name, namespace string, err error) {
	raw, ok := obj["name"].(string)
	if !ok || raw == "" {
		return "", "", invalidf(p, `named type requires a "name" string`)
	}
	namespace = ns
	if v, ok := obj["namespace"].(string); ok {
		namespace = v
	}
	name = raw
	if i := strings.LastIndexByte(raw, '.'); i >= 0 {
		namespace, name = raw[:i], raw[i+1:]
	}
	if !namePattern.MatchString(name) {
		return "", "", invalidf(p.with("name"), "invalid name %q", name)
	}
	if namespace != "" {
		for _, part := range strings.Split(namespace, ".") {
			if !namePattern.MatchString(part) {
				return "", "", invalidf(p.with("namespace"), "invalid namespace %q", namespace)
			}
		}
	}
	full := name
	if namespace != "" {
		full = namespace + "." + name
	}
	if _, ok := primitives[full]; ok {
		return "", "", invalidf(p.with("name"), "%q is a primitive type name", full)
	}
	if _, dup := n.named[full]; dup || n.defining[full] {
		return "", "", invalidf(p.with("name"), "type %q redefined", full)
	}
	n.defining[full] = true
	return name, namespace, nil
}

func (n *normalizer) define(s *Schema) {
	full := s.FullName()
	delete(n.defining, full)
	n.named[full] = s
}

func aliases(obj map[string]any, namespace string) []string {
	raw, _ := obj["aliases"].([]any)
	var out []string
	for _, a := range raw {
		if s, ok := a.(string); ok {
			if !strings.Contains(s, ".") && namespace != "" {
				s = namespace + "." + s
			}
			out = append(out, s)
		}
	}
	return out
}

func (n *normalizer) record(obj map[string]any, ns string, p path) (*Schema, error) {
	name, namespace, err := n.name(obj, ns, p)
	if err != nil {
		return nil, err
	}
	rawFields, ok := obj["fields"].([]any)
	if !ok {
		return nil, invalidf(p, `record requires a "fields" array`)
	}
	s := &Schema{Kind: Record, Name: name, Namespace: namespace, Aliases: aliases(obj, namespace)}
	s.Doc, _ = obj["doc"].(string)
	seen := map[string]bool{}
	for i, rf := range rawFields {
		fp := p.with("fields", strconv.Itoa(i))
		fo, ok := rf.(map[string]any)
		if !ok {
			return nil, invalidf(fp, "field must be an object")
		}
		fname, ok := fo["name"].(string)
		if !ok || fname == "" {
			return nil, invalidf(fp, `field requires a "name" string`)
		}
		if !namePattern.MatchString(fname) {
			return nil, invalidf(fp.with("name"), "invalid field name %q", fname)
		}
		if seen[fname] {
			return nil, invalidf(fp.with("name"), "duplicate field %q", fname)
		}
		seen[fname] = true
		rawType, ok := fo["type"]
		if !ok {
			return nil, invalidf(fp, `field %q requires a "type"`, fname)
		}
		ft, err := n.normalize(rawType, namespace, fp.with("type"))
		if err != nil {
			return nil, err
		}
		f := &Field{Name: fname, Type: ft}
		f.Default, f.HasDefault = fo["default"]
		f.Doc, _ = fo["doc"].(string)
		if ra, ok := fo["aliases"].([]any); ok {
			for _, a := range ra {
				if as, ok := a.(string); ok {
					f.Aliases = append(f.Aliases, as)
				}
			}
		}
		if f.HasDefault {
			if _, err := DefaultValue(ft, f.Default); err != nil {
				return nil, invalidf(fp.with("default"), "invalid default for field %q: %v", fname, err)
			}
		}
		s.Fields = append(s.Fields, f)
	}
	n.define(s)
	return s, nil
}

func (n *normalizer) enum(obj map[string]any, ns string, p path) (*Schema, error) {
	name, namespace, err := n.name(obj, ns, p)
	if err != nil {
		return nil, err
	}
	rawSymbols, ok := obj["symbols"].([]any)
	if !ok || len(rawSymbols) == 0 {
		return nil, invalidf(p, `enum requires a non-empty "symbols" array`)
	}
	s := &Schema{Kind: Enum, Name: name, Namespace: namespace, Aliases: aliases(obj, namespace)}
	s.Doc, _ = obj["doc"].(string)
	seen := map[string]bool{}
	for i, rs := range rawSymbols {
		sym, ok := rs.(string)
		if !ok || !symbolPattern.MatchString(sym) {
			return nil, invalidf(p.with("symbols", strconv.Itoa(i)), "invalid symbol %v", rs)
		}
		if seen[sym] {
			return nil, invalidf(p.with("symbols", strconv.Itoa(i)), "duplicate symbol %q", sym)
		}
		seen[sym] = true
		s.Symbols = append(s.Symbols, sym)
	}
	if rd, ok := obj["default"]; ok {
		d, ok := rd.(string)
		if !ok || !seen[d] {
			return nil, invalidf(p.with("default"), "enum default %v is not one of the symbols", rd)
		}
		s.EnumDefault, s.HasEnumDefault = d, true
	}
	n.define(s)
	return s, nil
}

func (n *normalizer) fixed(obj map[string]any, ns string, p path) (*Schema, error) {
	name, namespace, err := n.name(obj, ns, p)
	if err != nil {
		return nil, err
	}
	size, ok := toInt(obj["size"])
	if !ok || size <= 0 {
		return nil, invalidf(p.with("size"), "fixed requires a positive integer \"size\", got %v", obj["size"])
	}
	s := &Schema{Kind: Fixed, Name: name, Namespace: namespace, Size: int(size), Aliases: aliases(obj, namespace)}
	n.define(s)
	return s, nil
}

// toInt accepts the integer representations produced by JSON (json.Number),
// YAML (int) and hand-built raw schemas.
func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		i, err := t.Int64()
		return i, err == nil
	case int:
		return int64(t), true
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case float64:
		if t == float64(int64(t)) {
			return int64(t), true
		}
	}
	return 0, false
}

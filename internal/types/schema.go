package types

import (
	"fmt"
	"strings"
)

// Attribute is one named, typed column of a row layout.
type Attribute struct {
	Name     string
	Type     DataType
	Nullable bool
}

// String renders the attribute in the form used by plan output,
// e.g. "name: STRING NOT NULL".
func (a Attribute) String() string {
	if a.Nullable {
		return fmt.Sprintf("%s: %s", a.Name, Name(a.Type))
	}
	return fmt.Sprintf("%s: %s NOT NULL", a.Name, Name(a.Type))
}

// TupleSchema is an ordered, named, typed row layout. It is immutable
// once constructed; the binder relies on that to make binding
// deterministic.
type TupleSchema struct {
	attrs  []Attribute
	byName map[string]int
}

// NewTupleSchema builds a schema from the given attributes. Attribute
// names must be unique.
func NewTupleSchema(attrs ...Attribute) (*TupleSchema, error) {
	byName := make(map[string]int, len(attrs))
	for i, attr := range attrs {
		if attr.Name == "" {
			return nil, fmt.Errorf("schema attribute %d has an empty name", i)
		}
		if _, exists := byName[attr.Name]; exists {
			return nil, fmt.Errorf("duplicate schema attribute name: %s", attr.Name)
		}
		byName[attr.Name] = i
	}
	copied := make([]Attribute, len(attrs))
	copy(copied, attrs)
	return &TupleSchema{attrs: copied, byName: byName}, nil
}

// MustSchema is NewTupleSchema that panics on invalid input; intended
// for statically known layouts and tests.
func MustSchema(attrs ...Attribute) *TupleSchema {
	schema, err := NewTupleSchema(attrs...)
	if err != nil {
		panic(err)
	}
	return schema
}

// AttributeCount returns the number of attributes.
func (s *TupleSchema) AttributeCount() int { return len(s.attrs) }

// Attribute returns the attribute at the given position.
func (s *TupleSchema) Attribute(pos int) Attribute { return s.attrs[pos] }

// LookupAttribute finds an attribute position by name.
func (s *TupleSchema) LookupAttribute(name string) (int, bool) {
	pos, ok := s.byName[name]
	return pos, ok
}

// String renders the full layout, e.g.
// "TupleSchema(id: INT64 NOT NULL, name: STRING)".
func (s *TupleSchema) String() string {
	parts := make([]string, len(s.attrs))
	for i, attr := range s.attrs {
		parts[i] = attr.String()
	}
	return fmt.Sprintf("TupleSchema(%s)", strings.Join(parts, ", "))
}

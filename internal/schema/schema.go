package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownAttributeType is returned when a type name is not one of the declared types.
	ErrUnknownAttributeType = errors.New("unknown attribute type")

	// ErrAttributeNotFound is returned when a schema has no attribute with the requested name.
	ErrAttributeNotFound = errors.New("attribute not found")

	// ErrDuplicateAttribute is returned when two attributes of a schema share a name.
	ErrDuplicateAttribute = errors.New("duplicate attribute name")

	// ErrEmptyAttributeName is returned when an attribute is declared without a name.
	ErrEmptyAttributeName = errors.New("empty attribute name")
)

// Attribute is a single (name, type) declaration of a schema.
type Attribute struct {
	Name string        `json:"name"`
	Type AttributeType `json:"type"`
}

// Schema is an ordered set of attributes. It is immutable once built.
type Schema struct {
	attributes []Attribute
	index      map[string]int
}

// New builds a schema from the attributes in the given order.
func New(attributes ...Attribute) (*Schema, error) {
	s := &Schema{
		attributes: make([]Attribute, 0, len(attributes)),
		index:      make(map[string]int, len(attributes)),
	}
	for _, attr := range attributes {
		if attr.Name == "" {
			return nil, ErrEmptyAttributeName
		}
		if _, exists := s.index[attr.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAttribute, attr.Name)
		}
		s.index[attr.Name] = len(s.attributes)
		s.attributes = append(s.attributes, attr)
	}
	return s, nil
}

// MustNew is like New but panics on error. Intended for tests and static schemas.
func MustNew(attributes ...Attribute) *Schema {
	s, err := New(attributes...)
	if err != nil {
		panic(err)
	}
	return s
}

// GetAttribute returns the attribute declared under name.
func (s *Schema) GetAttribute(name string) (Attribute, error) {
	i, ok := s.index[name]
	if !ok {
		return Attribute{}, fmt.Errorf("%w: %s", ErrAttributeNotFound, name)
	}
	return s.attributes[i], nil
}

// IndexOf returns the position of name in the schema, or -1.
func (s *Schema) IndexOf(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

func (s *Schema) ContainsAttribute(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Attributes returns a copy of the attributes in declaration order.
func (s *Schema) Attributes() []Attribute {
	out := make([]Attribute, len(s.attributes))
	copy(out, s.attributes)
	return out
}

func (s *Schema) AttributeNames() []string {
	names := make([]string, len(s.attributes))
	for i, attr := range s.attributes {
		names[i] = attr.Name
	}
	return names
}

func (s *Schema) Len() int {
	return len(s.attributes)
}

// Equal reports whether both schemas declare the same attributes in the same order.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.attributes) != len(other.attributes) {
		return false
	}
	for i := range s.attributes {
		if s.attributes[i] != other.attributes[i] {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	parts := make([]string, len(s.attributes))
	for i, attr := range s.attributes {
		parts[i] = attr.Name + ":" + attr.Type.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

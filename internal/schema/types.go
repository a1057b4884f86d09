package schema

import (
	"fmt"
	"strings"
)

// AttributeType is the declared semantic type of an attribute.
type AttributeType int

const (
	String AttributeType = iota
	Any
	Boolean
	Long
	Integer
	Double
	Timestamp
)

var attributeTypeNames = map[AttributeType]string{
	String:    "string",
	Any:       "any",
	Boolean:   "boolean",
	Long:      "long",
	Integer:   "integer",
	Double:    "double",
	Timestamp: "timestamp",
}

func (t AttributeType) String() string {
	if name, ok := attributeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("AttributeType(%d)", int(t))
}

// Valid reports whether t is one of the declared attribute types.
func (t AttributeType) Valid() bool {
	_, ok := attributeTypeNames[t]
	return ok
}

// ParseAttributeType accepts the lower or upper case type name, e.g. "integer" or "INTEGER".
func ParseAttributeType(s string) (AttributeType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range attributeTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAttributeType, s)
}

func (t AttributeType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAttributeType, int(t))
	}
	return []byte(t.String()), nil
}

func (t *AttributeType) UnmarshalText(b []byte) error {
	parsed, err := ParseAttributeType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

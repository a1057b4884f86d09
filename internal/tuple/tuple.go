package tuple

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	uuid "github.com/google/uuid"
	"github.com/tarungka/sieve/internal/logger"
	"github.com/tarungka/sieve/internal/schema"
)

// ErrFieldCount is returned when the number of values does not match the schema.
var ErrFieldCount = errors.New("field count does not match schema")

// Tuple is one record of field values bound to a schema. A nil field value is null.
//
// The runtime type of each value is expected to agree with the declared attribute type
// (see schema.AttributeType); the tuple does not re-check it.
type Tuple struct {
	ID uuid.UUID // a UUID v7, used to trace the tuple through logs and errors

	schema    *schema.Schema
	fields    []any
	createdAt time.Time
}

// New binds fields to s in schema order.
func New(s *schema.Schema, fields ...any) (*Tuple, error) {
	if s == nil {
		return nil, fmt.Errorf("tuple requires a schema")
	}
	if len(fields) != s.Len() {
		return nil, fmt.Errorf("%w: got %d values for %d attributes", ErrFieldCount, len(fields), s.Len())
	}
	id, err := uuid.NewV7()
	if err != nil {
		logger.AdHocLogger.Err(err).Msg("error when creating a new tuple id")
		return nil, err
	}
	values := make([]any, len(fields))
	copy(values, fields)
	return &Tuple{
		ID:        id,
		schema:    s,
		fields:    values,
		createdAt: time.Now(),
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(s *schema.Schema, fields ...any) *Tuple {
	t, err := New(s, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// FromMap builds a tuple from named values; names absent from the map are null.
func FromMap(s *schema.Schema, values map[string]any) (*Tuple, error) {
	fields := make([]any, s.Len())
	for name, v := range values {
		i := s.IndexOf(name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", schema.ErrAttributeNotFound, name)
		}
		fields[i] = v
	}
	return New(s, fields...)
}

func (t *Tuple) Schema() *schema.Schema {
	return t.schema
}

// Field returns the value of the named attribute, nil when the value is null.
func (t *Tuple) Field(name string) (any, error) {
	i := t.schema.IndexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", schema.ErrAttributeNotFound, name)
	}
	return t.fields[i], nil
}

// IsNull reports whether the named attribute holds no value.
func (t *Tuple) IsNull(name string) (bool, error) {
	v, err := t.Field(name)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

func (t *Tuple) FieldAt(i int) any {
	return t.fields[i]
}

// Fields returns a copy of the values in schema order.
func (t *Tuple) Fields() []any {
	out := make([]any, len(t.fields))
	copy(out, t.fields)
	return out
}

func (t *Tuple) CreatedAt() time.Time {
	return t.createdAt
}

// Map returns the tuple as attribute name to value.
func (t *Tuple) Map() map[string]any {
	m := make(map[string]any, len(t.fields))
	for i, name := range t.schema.AttributeNames() {
		m[name] = t.fields[i]
	}
	return m
}

// MarshalJSON writes the tuple as an object keyed by attribute name. Timestamps are written
// in the layout accepted by schema.ParseTimestamp.
func (t *Tuple) MarshalJSON() ([]byte, error) {
	m := t.Map()
	for k, v := range m {
		if ts, ok := v.(time.Time); ok {
			m[k] = schema.FormatTimestamp(ts)
		}
	}
	return json.Marshal(m)
}

func (t *Tuple) String() string {
	return fmt.Sprintf("Tuple(%s %v)", t.ID, t.fields)
}

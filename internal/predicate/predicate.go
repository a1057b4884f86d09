// Package predicate implements the typed filter predicate: an (attribute, condition, value)
// triple that accepts or rejects tuples.
//
// The attribute's declared type, looked up in the tuple's schema, decides how the literal
// value is interpreted:
//
//   - BOOLEAN compares lower-cased string forms.
//   - INTEGER and DOUBLE compare as float64, LONG as int64. Float comparisons follow
//     cmp.Compare, so NaN sorts below every number, and out-of-range literals become ±Inf.
//   - TIMESTAMP compares epoch milliseconds.
//   - STRING and ANY compare numerically when both sides parse as numbers, lexically otherwise.
//
// A null field only satisfies IS_NULL.
package predicate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/tarungka/sieve/internal/schema"
)

// FilterPredicate is immutable after construction. Two predicates with the same attribute,
// condition and value are equal (also under ==) and have the same Hash.
type FilterPredicate struct {
	attribute string
	condition ComparisonType
	value     string
}

// New returns a predicate. The value is ignored by IS_NULL and IS_NOT_NULL.
func New(attribute string, condition ComparisonType, value string) FilterPredicate {
	return FilterPredicate{
		attribute: attribute,
		condition: condition,
		value:     value,
	}
}

// Parse is like New but reads the condition from its enum name or symbol.
func Parse(attribute, condition, value string) (FilterPredicate, error) {
	c, err := ParseComparisonType(condition)
	if err != nil {
		return FilterPredicate{}, newConfigError(New(attribute, -1, value), err)
	}
	return New(attribute, c, value), nil
}

func (p FilterPredicate) Attribute() string {
	return p.attribute
}

func (p FilterPredicate) Condition() ComparisonType {
	return p.condition
}

func (p FilterPredicate) Value() string {
	return p.value
}

// Equal reports structural equality.
func (p FilterPredicate) Equal(other FilterPredicate) bool {
	return p == other
}

// Hash is consistent with Equal.
func (p FilterPredicate) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(p.attribute)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(strconv.Itoa(int(p.condition)))
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(p.value)
	return d.Sum64()
}

func (p FilterPredicate) String() string {
	if p.condition.IsNullCheck() {
		return fmt.Sprintf("%s %s", p.attribute, p.condition.Symbol())
	}
	return fmt.Sprintf("%s %s %q", p.attribute, p.condition.Symbol(), p.value)
}

// Validate checks the predicate against s once, before any tuple is evaluated: the attribute
// must exist, the condition must be known, the attribute type must be comparable and, for
// LONG, INTEGER, DOUBLE and TIMESTAMP attributes, the value must parse.
// All failures are *ConfigError.
func (p FilterPredicate) Validate(s *schema.Schema) error {
	if !p.condition.Valid() {
		return newConfigError(p, fmt.Errorf("%w: %s", ErrUnknownComparison, p.condition))
	}
	attr, err := s.GetAttribute(p.attribute)
	if err != nil {
		return newConfigError(p, err)
	}
	if p.condition.IsNullCheck() {
		return nil
	}

	switch attr.Type {
	case schema.String, schema.Any, schema.Boolean:
		return nil
	case schema.Long:
		_, err = p.parseLong()
	case schema.Integer, schema.Double:
		_, err = p.parseDouble()
	case schema.Timestamp:
		_, err = p.parseTimestamp()
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedType, attr.Type)
	}
	if err != nil {
		return newConfigError(p, err)
	}
	return nil
}

func (p FilterPredicate) parseLong() (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(p.value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a long", ErrMalformedLiteral, p.value)
	}
	return v, nil
}

func (p FilterPredicate) parseDouble() (float64, error) {
	v, err := parseFloat(p.value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a double", ErrMalformedLiteral, p.value)
	}
	return v, nil
}

// parseFloat is strconv.ParseFloat that saturates: literals beyond the float64 range
// become ±Inf instead of failing.
func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return v, nil
}

func (p FilterPredicate) parseTimestamp() (int64, error) {
	t, err := schema.ParseTimestamp(p.value)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedLiteral, err)
	}
	return t.UnixMilli(), nil
}

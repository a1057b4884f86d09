package predicate

import (
	"cmp"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
)

// Evaluate reports whether t satisfies the predicate. ctx is carried for the caller and is
// not inspected.
//
// Errors are either *ConfigError (the predicate is invalid for t's schema) or
// *EvaluationError (a field value disagrees with its declared type).
func (p FilterPredicate) Evaluate(ctx context.Context, t *tuple.Tuple) (bool, error) {
	field, err := t.Field(p.attribute)
	if err != nil {
		return false, newConfigError(p, err)
	}

	isNull := field == nil
	switch p.condition {
	case IsNull:
		return isNull, nil
	case IsNotNull:
		return !isNull, nil
	}
	if isNull {
		return false, nil
	}

	attr, err := t.Schema().GetAttribute(p.attribute)
	if err != nil {
		return false, newConfigError(p, err)
	}

	result, err := p.compare(attr.Type, field)
	if err != nil {
		if IsConfigError(err) {
			return false, err
		}
		return false, &EvaluationError{Attribute: p.attribute, TupleID: t.ID, Err: err}
	}

	ok, err := p.condition.apply(result)
	if err != nil {
		return false, newConfigError(p, err)
	}
	return ok, nil
}

// compare returns the three-way ordering of field against the literal value.
func (p FilterPredicate) compare(typ schema.AttributeType, field any) (int, error) {
	switch typ {
	case schema.String:
		s, ok := field.(string)
		if !ok {
			return 0, mismatch(typ, field)
		}
		return p.compareString(s), nil

	case schema.Any:
		return p.compareString(fmt.Sprint(field)), nil

	case schema.Boolean:
		b, ok := field.(bool)
		if !ok {
			return 0, mismatch(typ, field)
		}
		return strings.Compare(strconv.FormatBool(b), strings.ToLower(strings.TrimSpace(p.value))), nil

	case schema.Long:
		v, ok := field.(int64)
		if !ok {
			return 0, mismatch(typ, field)
		}
		lit, err := p.parseLong()
		if err != nil {
			return 0, newConfigError(p, err)
		}
		return cmp.Compare(v, lit), nil

	case schema.Integer:
		v, ok := field.(int32)
		if !ok {
			return 0, mismatch(typ, field)
		}
		lit, err := p.parseDouble()
		if err != nil {
			return 0, newConfigError(p, err)
		}
		return cmp.Compare(float64(v), lit), nil

	case schema.Double:
		v, ok := field.(float64)
		if !ok {
			return 0, mismatch(typ, field)
		}
		lit, err := p.parseDouble()
		if err != nil {
			return 0, newConfigError(p, err)
		}
		return cmp.Compare(v, lit), nil

	case schema.Timestamp:
		v, ok := field.(time.Time)
		if !ok {
			return 0, mismatch(typ, field)
		}
		lit, err := p.parseTimestamp()
		if err != nil {
			return 0, newConfigError(p, err)
		}
		return cmp.Compare(v.UnixMilli(), lit), nil

	default:
		return 0, newConfigError(p, fmt.Errorf("%w: %s", ErrUnsupportedType, typ))
	}
}

// compareString orders numeric-looking strings by magnitude and everything else lexically.
// Numbers follow cmp.Compare: NaN equals NaN and sorts below every other number, -0 equals 0.
func (p FilterPredicate) compareString(s string) int {
	fieldNum, fieldErr := parseFloat(s)
	litNum, litErr := parseFloat(p.value)
	if fieldErr == nil && litErr == nil {
		return cmp.Compare(fieldNum, litNum)
	}
	return strings.Compare(s, p.value)
}

func mismatch(typ schema.AttributeType, field any) error {
	return fmt.Errorf("%w: %s attribute holds %T", ErrFieldTypeMismatch, typ, field)
}

package predicate

import (
	"errors"
	"fmt"

	uuid "github.com/google/uuid"
	"github.com/tarungka/sieve/internal/schema"
)

var (
	// ErrUnsupportedType is returned when the attribute type has no comparison path.
	ErrUnsupportedType = errors.New("unsupported attribute type")

	// ErrUnknownComparison is returned for a comparison type outside the declared set.
	ErrUnknownComparison = errors.New("unknown comparison type")

	// ErrMalformedLiteral is returned when the predicate value cannot be parsed as the
	// attribute's numeric or timestamp type.
	ErrMalformedLiteral = errors.New("malformed literal")

	// ErrAttributeNotFound is returned when the predicate names an attribute the schema lacks.
	ErrAttributeNotFound = schema.ErrAttributeNotFound

	// ErrFieldTypeMismatch is returned when a tuple value does not have the runtime type
	// implied by its schema.
	ErrFieldTypeMismatch = errors.New("field value does not match attribute type")
)

// ConfigError reports a predicate that is not valid for the schema it is evaluated against.
// It is never caused by tuple content.
type ConfigError struct {
	Predicate FilterPredicate
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid predicate %s: %v", e.Predicate, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func newConfigError(p FilterPredicate, err error) *ConfigError {
	return &ConfigError{Predicate: p, Err: err}
}

// EvaluationError reports a tuple that could not be evaluated because of its content.
type EvaluationError struct {
	Attribute string
	TupleID   uuid.UUID
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluating %q on tuple %s: %v", e.Attribute, e.TupleID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err (or anything it wraps) is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsEvaluationError reports whether err (or anything it wraps) is an EvaluationError.
func IsEvaluationError(err error) bool {
	var ee *EvaluationError
	return errors.As(err, &ee)
}

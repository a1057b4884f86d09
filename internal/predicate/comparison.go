package predicate

import (
	"fmt"
	"strings"
)

// ComparisonType is the condition a predicate applies to a field.
type ComparisonType int

const (
	EqualTo ComparisonType = iota
	NotEqualTo
	GreaterThan
	GreaterThanOrEqualTo
	LessThan
	LessThanOrEqualTo
	IsNull
	IsNotNull
)

type comparisonName struct {
	name   string // enum style, e.g. GREATER_THAN
	symbol string // token used by workflow files, e.g. ">"
}

var comparisonNames = map[ComparisonType]comparisonName{
	EqualTo:              {"EQUAL_TO", "="},
	NotEqualTo:           {"NOT_EQUAL_TO", "!="},
	GreaterThan:          {"GREATER_THAN", ">"},
	GreaterThanOrEqualTo: {"GREATER_THAN_OR_EQUAL_TO", ">="},
	LessThan:             {"LESS_THAN", "<"},
	LessThanOrEqualTo:    {"LESS_THAN_OR_EQUAL_TO", "<="},
	IsNull:               {"IS_NULL", "is null"},
	IsNotNull:            {"IS_NOT_NULL", "is not null"},
}

var comparisonAliases = map[string]ComparisonType{
	"==": EqualTo,
	"<>": NotEqualTo,
}

func (c ComparisonType) String() string {
	if n, ok := comparisonNames[c]; ok {
		return n.name
	}
	return fmt.Sprintf("ComparisonType(%d)", int(c))
}

// Symbol returns the workflow token for c, e.g. ">=".
func (c ComparisonType) Symbol() string {
	if n, ok := comparisonNames[c]; ok {
		return n.symbol
	}
	return c.String()
}

func (c ComparisonType) Valid() bool {
	_, ok := comparisonNames[c]
	return ok
}

// IsNullCheck reports whether c ignores the predicate value.
func (c ComparisonType) IsNullCheck() bool {
	return c == IsNull || c == IsNotNull
}

// ParseComparisonType accepts enum names ("GREATER_THAN") and symbols (">", "is null"),
// case-insensitively.
func ParseComparisonType(s string) (ComparisonType, error) {
	token := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	for c, n := range comparisonNames {
		if token == strings.ToLower(n.name) || token == n.symbol {
			return c, nil
		}
	}
	if c, ok := comparisonAliases[token]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownComparison, s)
}

func (c ComparisonType) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownComparison, int(c))
	}
	return []byte(c.String()), nil
}

func (c *ComparisonType) UnmarshalText(b []byte) error {
	parsed, err := ParseComparisonType(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// apply maps a three-way comparison result onto the condition.
func (c ComparisonType) apply(result int) (bool, error) {
	switch c {
	case EqualTo:
		return result == 0, nil
	case NotEqualTo:
		return result != 0, nil
	case GreaterThan:
		return result > 0, nil
	case GreaterThanOrEqualTo:
		return result >= 0, nil
	case LessThan:
		return result < 0, nil
	case LessThanOrEqualTo:
		return result <= 0, nil
	default:
		return false, fmt.Errorf("%w: unable to do comparison with %s", ErrUnknownComparison, c)
	}
}

package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
)

// ErrInvalidValue is returned when a row value cannot be converted to its attribute type.
var ErrInvalidValue = errors.New("invalid value for attribute")

// DecodeRow converts a decoded record into a tuple bound to s. Attributes missing from the
// row, or present with a nil value, are null. Keys the schema does not declare are ignored.
func DecodeRow(s *schema.Schema, row map[string]any) (*tuple.Tuple, error) {
	fields := make([]any, s.Len())
	for i, attr := range s.Attributes() {
		raw, ok := row[attr.Name]
		if !ok || raw == nil {
			continue
		}
		v, err := DecodeValue(attr.Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrInvalidValue, attr.Name, err)
		}
		fields[i] = v
	}
	return tuple.New(s, fields...)
}

// DecodeValue converts raw to the Go type that backs t.
func DecodeValue(t schema.AttributeType, raw any) (any, error) {
	if n, ok := raw.(json.Number); ok && t != schema.Any {
		raw = n.String()
	}
	switch t {
	case schema.String:
		return cast.ToStringE(raw)
	case schema.Any:
		return raw, nil
	case schema.Boolean:
		return cast.ToBoolE(raw)
	case schema.Long:
		return decodeInteger(raw, 64)
	case schema.Integer:
		v, err := decodeInteger(raw, 32)
		return int32(v), err
	case schema.Double:
		return cast.ToFloat64E(raw)
	case schema.Timestamp:
		return decodeTimestamp(raw)
	default:
		return nil, fmt.Errorf("%w: %s", schema.ErrUnknownAttributeType, t)
	}
}

// decodeInteger converts raw to an integer that fits in bitSize bits. Strings are read in
// base 10; floats must be integral. Values out of range are rejected instead of wrapped.
func decodeInteger(raw any, bitSize int) (int64, error) {
	lo, hi := int64(math.MinInt64), int64(math.MaxInt64)
	if bitSize == 32 {
		lo, hi = math.MinInt32, math.MaxInt32
	}

	var n int64
	switch v := raw.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, bitSize)
	case float32:
		return decodeInteger(float64(v), bitSize)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		// -lo is 2^(bitSize-1), exact as a float64
		if v < float64(lo) || v >= -float64(lo) {
			return 0, fmt.Errorf("%v is out of range for %d bits", v, bitSize)
		}
		n = int64(v)
	case uint:
		if uint64(v) > uint64(hi) {
			return 0, fmt.Errorf("%d is out of range for %d bits", v, bitSize)
		}
		n = int64(v)
	case uint64:
		if v > uint64(hi) {
			return 0, fmt.Errorf("%d is out of range for %d bits", v, bitSize)
		}
		n = int64(v)
	default:
		var err error
		if n, err = cast.ToInt64E(raw); err != nil {
			return 0, err
		}
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d is out of range for %d bits", n, bitSize)
	}
	return n, nil
}

// decodeTimestamp accepts a time.Time, a string in one of schema.TimestampLayouts, or epoch
// milliseconds.
func decodeTimestamp(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return schema.ParseTimestamp(v)
	}
	ms, err := cast.ToInt64E(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

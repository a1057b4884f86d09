package tuple

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarungka/sieve/internal/schema"
)

var people = schema.MustNew(
	schema.Attribute{Name: "name", Type: schema.String},
	schema.Attribute{Name: "age", Type: schema.Integer},
	schema.Attribute{Name: "joined", Type: schema.Timestamp},
)

func TestNewTuple(t *testing.T) {
	joined := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	tp, err := New(people, "ada", int32(36), joined)
	require.NoError(t, err)

	assert.Equal(t, people, tp.Schema())
	assert.Equal(t, uuid.Version(7), tp.ID.Version())
	assert.False(t, tp.CreatedAt().IsZero())

	v, err := tp.Field("age")
	require.NoError(t, err)
	assert.Equal(t, int32(36), v)

	_, err = tp.Field("missing")
	assert.ErrorIs(t, err, schema.ErrAttributeNotFound)

	assert.Equal(t, "ada", tp.FieldAt(0))
	assert.Equal(t, []any{"ada", int32(36), joined}, tp.Fields())
}

func TestNewTupleFieldCount(t *testing.T) {
	_, err := New(people, "ada")
	assert.ErrorIs(t, err, ErrFieldCount)

	_, err = New(nil)
	assert.Error(t, err)
}

func TestTupleIDsAreUnique(t *testing.T) {
	a := MustNew(people, "a", int32(1), nil)
	b := MustNew(people, "b", int32(2), nil)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNullFields(t *testing.T) {
	tp := MustNew(people, "ada", nil, nil)

	isNull, err := tp.IsNull("age")
	require.NoError(t, err)
	assert.True(t, isNull)

	isNull, err = tp.IsNull("name")
	require.NoError(t, err)
	assert.False(t, isNull)

	_, err = tp.IsNull("missing")
	assert.ErrorIs(t, err, schema.ErrAttributeNotFound)
}

func TestFromMap(t *testing.T) {
	tp, err := FromMap(people, map[string]any{"name": "grace"})
	require.NoError(t, err)
	assert.Equal(t, []any{"grace", nil, nil}, tp.Fields())

	_, err = FromMap(people, map[string]any{"height": 1.8})
	assert.ErrorIs(t, err, schema.ErrAttributeNotFound)
}

func TestFieldsIsACopy(t *testing.T) {
	tp := MustNew(people, "ada", int32(36), nil)
	fields := tp.Fields()
	fields[0] = "changed"

	v, _ := tp.Field("name")
	assert.Equal(t, "ada", v)
}

func TestMarshalJSON(t *testing.T) {
	joined := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	tp := MustNew(people, "ada", int32(36), joined)

	b, err := json.Marshal(tp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ada","age":36,"joined":"2020-01-02 03:04:05.000"}`, string(b))
}

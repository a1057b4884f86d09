package sources

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
	"github.com/tarungka/sieve/stream"
)

var people = schema.MustNew(
	schema.Attribute{Name: "name", Type: schema.String},
	schema.Attribute{Name: "age", Type: schema.Integer},
	schema.Attribute{Name: "id", Type: schema.Long},
	schema.Attribute{Name: "score", Type: schema.Double},
	schema.Attribute{Name: "active", Type: schema.Boolean},
	schema.Attribute{Name: "joined", Type: schema.Timestamp},
	schema.Attribute{Name: "tag", Type: schema.Any},
)

func writeLines(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	var content []byte
	for _, l := range lines {
		content = append(content, l...)
		content = append(content, '\n')
	}
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

func drain(t *testing.T, op stream.Operator) []*tuple.Tuple {
	t.Helper()
	var out []*tuple.Tuple
	for {
		tp, err := op.GetNextTuple(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, tp)
	}
}

func TestDecodeRow(t *testing.T) {
	row := map[string]any{
		"name":   "ann",
		"age":    json.Number("41"),
		"id":     "9007199254740993",
		"score":  3,
		"active": "true",
		"joined": "2024-03-01 10:00:00",
		"tag":    []any{"x"},
		"extra":  "ignored",
	}
	tp, err := DecodeRow(people, row)
	require.NoError(t, err)

	assert.Equal(t, []any{
		"ann",
		int32(41),
		int64(9007199254740993),
		float64(3),
		true,
		time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		[]any{"x"},
	}, tp.Fields())
}

func TestDecodeRowNulls(t *testing.T) {
	tp, err := DecodeRow(people, map[string]any{"name": nil})
	require.NoError(t, err)
	for _, name := range people.AttributeNames() {
		isNull, err := tp.IsNull(name)
		require.NoError(t, err)
		assert.True(t, isNull, name)
	}
}

func TestDecodeRowInvalid(t *testing.T) {
	_, err := DecodeRow(people, map[string]any{"age": "forty"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = DecodeRow(people, map[string]any{"joined": "yesterday"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	tests := []struct {
		name string
		row  map[string]any
	}{
		{"integer overflow", map[string]any{"age": json.Number("3000000000")}},
		{"integer underflow", map[string]any{"age": int64(math.MinInt32) - 1}},
		{"fractional integer", map[string]any{"age": 41.9}},
		{"fractional json integer", map[string]any{"age": json.Number("41.9")}},
		{"hex integer", map[string]any{"age": "0x10"}},
		{"long overflow", map[string]any{"id": 1.5e19}},
		{"long overflow string", map[string]any{"id": "9223372036854775808"}},
		{"long overflow unsigned", map[string]any{"id": uint64(math.MaxInt64) + 1}},
		{"long NaN", map[string]any{"id": math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRow(people, tt.row)
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestDecodeIntegerBase10(t *testing.T) {
	v, err := DecodeValue(schema.Long, "010")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	v, err = DecodeValue(schema.Integer, json.Number("-2147483648"))
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), v)

	v, err = DecodeValue(schema.Integer, 41.0)
	require.NoError(t, err)
	assert.Equal(t, int32(41), v)

	v, err = DecodeValue(schema.Long, -9.223372036854775808e18)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), v)
}

func TestDecodeTimestampMillis(t *testing.T) {
	v, err := DecodeValue(schema.Timestamp, json.Number("1700000000000"))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), v.(time.Time).UnixMilli())

	v, err = DecodeValue(schema.Timestamp, 1700000000000)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), v.(time.Time).UnixMilli())
}

func TestJSONLinesSource(t *testing.T) {
	path := writeLines(t,
		`{"name": "ann", "age": 41}`,
		``,
		`{"name": "bob", "age": 17, "active": false}`,
	)
	src := NewJSONLinesSource("people", path, people)
	assert.Nil(t, src.OutputSchema())

	for i := 0; i < 2; i++ {
		require.NoError(t, src.Open(context.Background()))
		assert.Equal(t, people, src.OutputSchema())

		got := drain(t, src)
		require.Len(t, got, 2)
		name, _ := got[1].Field("name")
		assert.Equal(t, "bob", name)
		age, _ := got[0].Field("age")
		assert.Equal(t, int32(41), age)

		require.NoError(t, src.Close())
		assert.Equal(t, stream.StateClosed, src.State())
	}
	assert.NoError(t, src.Close())
	assert.Equal(t, uint64(4), src.Metrics().Snapshot().TuplesOut)
}

func TestJSONLinesSourceErrors(t *testing.T) {
	src := NewJSONLinesSource("missing", filepath.Join(t.TempDir(), "none.jsonl"), people)
	assert.Error(t, src.Open(context.Background()))
	assert.Equal(t, stream.StateClosed, src.State())

	_, err := src.GetNextTuple(context.Background())
	assert.ErrorIs(t, err, stream.ErrOperatorNotOpen)

	src = NewJSONLinesSource("broken", writeLines(t, `{"name": `), people)
	require.NoError(t, src.Open(context.Background()))
	defer src.Close()
	_, err = src.GetNextTuple(context.Background())
	assert.Error(t, err)
}

func TestJSONLinesSourceTrailingData(t *testing.T) {
	for _, line := range []string{
		`{"name":"a"} {"name":"b"}`,
		`{"name":"c"}garbage`,
		`{"name":"d"} 7`,
	} {
		t.Run(line, func(t *testing.T) {
			src := NewJSONLinesSource("trailing", writeLines(t, line), people)
			require.NoError(t, src.Open(context.Background()))
			defer src.Close()

			_, err := src.GetNextTuple(context.Background())
			assert.ErrorIs(t, err, ErrTrailingData)
			assert.ErrorContains(t, err, "line 1")
		})
	}
}

func TestFactory(t *testing.T) {
	src, err := New(SourceConfig{
		Name:           "rows",
		ConnectionType: "inline",
		Rows: []map[string]any{
			{"name": "ann", "age": 41},
			{"name": "bob"},
		},
	}, people)
	require.NoError(t, err)
	assert.Equal(t, "rows", src.ID())
	require.NoError(t, src.Open(context.Background()))
	assert.Len(t, drain(t, src), 2)
	require.NoError(t, src.Close())

	path := writeLines(t, `{"name": "ann"}`)
	src, err = New(SourceConfig{ConnectionType: "jsonl", Config: map[string]string{"file_path": path}}, people)
	require.NoError(t, err)
	assert.Equal(t, "source", src.ID())
	assert.IsType(t, &JSONLinesSource{}, src)

	_, err = New(SourceConfig{ConnectionType: "jsonl"}, people)
	assert.Error(t, err)
	_, err = New(SourceConfig{ConnectionType: "kafka"}, people)
	assert.Error(t, err)
	_, err = New(SourceConfig{ConnectionType: "inline", Rows: []map[string]any{{"age": "x"}}}, people)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

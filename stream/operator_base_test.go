package stream

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tarungka/sieve/internal/schema"
	"github.com/tarungka/sieve/internal/tuple"
)

// MockOperator is a mock implementation of the Operator interface
type MockOperator struct {
	mock.Mock
}

func (m *MockOperator) ID() string {
	return m.Called().String(0)
}

func (m *MockOperator) Open(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockOperator) GetNextTuple(ctx context.Context) (*tuple.Tuple, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).(*tuple.Tuple)
	return t, args.Error(1)
}

func (m *MockOperator) Close() error {
	return m.Called().Error(0)
}

func (m *MockOperator) OutputSchema() *schema.Schema {
	s, _ := m.Called().Get(0).(*schema.Schema)
	return s
}

var numbers = schema.MustNew(
	schema.Attribute{Name: "n", Type: schema.Integer},
	schema.Attribute{Name: "label", Type: schema.String},
)

func openedMock() *MockOperator {
	up := new(MockOperator)
	up.On("Open", mock.Anything).Return(nil)
	up.On("OutputSchema").Return(numbers)
	return up
}

func TestBaseOperatorStartsClosed(t *testing.T) {
	op := NewBaseOperator("base")

	assert.Equal(t, "base", op.ID())
	assert.Equal(t, StateClosed, op.State())
	assert.Nil(t, op.OutputSchema())
	assert.Nil(t, op.InputOperator())
}

func TestCloseBeforeOpen(t *testing.T) {
	up := new(MockOperator)
	op := NewBaseOperator("base")
	require.NoError(t, op.SetInputOperator(up))

	assert.NoError(t, op.Close())
	assert.NoError(t, op.Close())
	assert.Equal(t, StateClosed, op.State())
	up.AssertNotCalled(t, "Close")
}

func TestCloseIsIdempotent(t *testing.T) {
	up := openedMock()
	up.On("Close").Return(nil).Once()

	op := NewBaseOperator("base")
	require.NoError(t, op.SetInputOperator(up))
	require.NoError(t, op.Open(context.Background()))
	assert.Equal(t, StateOpen, op.State())

	assert.NoError(t, op.Close())
	assert.NoError(t, op.Close())
	assert.Equal(t, StateClosed, op.State())
	up.AssertNumberOfCalls(t, "Close", 1)
	up.AssertExpectations(t)
}

func TestCloseUpstreamFailure(t *testing.T) {
	boom := errors.New("boom")
	up := openedMock()
	up.On("ID").Return("upstream")
	up.On("Close").Return(boom).Once()

	op := NewBaseOperator("base")
	require.NoError(t, op.SetInputOperator(up))
	require.NoError(t, op.Open(context.Background()))

	err := op.Close()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateClosed, op.State())
	assert.NoError(t, op.Close())
}

func TestSetInputOperatorAfterOpen(t *testing.T) {
	up := openedMock()
	up.On("Close").Return(nil)

	op := NewBaseOperator("base")
	require.NoError(t, op.SetInputOperator(up))
	require.NoError(t, op.Open(context.Background()))

	err := op.SetInputOperator(new(MockOperator))
	assert.ErrorIs(t, err, ErrInputOperatorChangedAfterOpen)
	assert.Same(t, up, op.InputOperator())

	require.NoError(t, op.Close())
	other := new(MockOperator)
	assert.NoError(t, op.SetInputOperator(other))
	assert.Same(t, other, op.InputOperator())
}

func TestOpenWithoutInput(t *testing.T) {
	op := NewBaseOperator("base")
	err := op.Open(context.Background())
	assert.ErrorIs(t, err, ErrNoInputOperator)
	assert.Equal(t, StateClosed, op.State())
}

func TestOpenFailure(t *testing.T) {
	boom := errors.New("cannot open")
	up := new(MockOperator)
	up.On("Open", mock.Anything).Return(boom)
	up.On("ID").Return("upstream")

	op := NewBaseOperator("base")
	require.NoError(t, op.SetInputOperator(up))

	err := op.Open(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateClosed, op.State())
	assert.NoError(t, op.SetInputOperator(up))
}

func TestOpenIsNoOpWhenOpen(t *testing.T) {
	up := openedMock()

	op := NewBaseOperator("base")
	require.NoError(t, op.SetInputOperator(up))
	require.NoError(t, op.Open(context.Background()))
	require.NoError(t, op.Open(context.Background()))

	up.AssertNumberOfCalls(t, "Open", 1)
	assert.Equal(t, numbers, op.OutputSchema())
}

func TestGetNextTupleRequiresOpen(t *testing.T) {
	up := new(MockOperator)
	op := NewBaseOperator("base")
	require.NoError(t, op.SetInputOperator(up))

	_, err := op.GetNextTuple(context.Background())
	assert.ErrorIs(t, err, ErrOperatorNotOpen)
	up.AssertNotCalled(t, "GetNextTuple", mock.Anything)
}

func TestGetNextTuplePassesThrough(t *testing.T) {
	tp := tuple.MustNew(numbers, int32(1), "one")
	up := openedMock()
	up.On("GetNextTuple", mock.Anything).Return(tp, nil).Once()
	up.On("GetNextTuple", mock.Anything).Return(nil, io.EOF)

	op := NewBaseOperator("base")
	require.NoError(t, op.SetInputOperator(up))
	require.NoError(t, op.Open(context.Background()))

	got, err := op.GetNextTuple(context.Background())
	require.NoError(t, err)
	assert.Same(t, tp, got)

	_, err = op.GetNextTuple(context.Background())
	assert.ErrorIs(t, err, io.EOF)

	stats := op.Metrics().Snapshot()
	assert.Equal(t, uint64(1), stats.TuplesIn)
	assert.Equal(t, uint64(1), stats.TuplesOut)
	assert.False(t, stats.OpenedAt.IsZero())
}

func TestBaseTransformToOutputSchema(t *testing.T) {
	op := NewBaseOperator("base")

	out, err := op.TransformToOutputSchema(numbers)
	require.NoError(t, err)
	assert.Equal(t, numbers, out)

	_, err = op.TransformToOutputSchema()
	assert.ErrorIs(t, err, ErrInvalidInputSchemas)
	_, err = op.TransformToOutputSchema(numbers, numbers)
	assert.ErrorIs(t, err, ErrInvalidInputSchemas)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closed", StateClosed.String())
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarungka/sieve/internal/predicate"
)

func setupTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_SaveLoad(t *testing.T) {
	c := setupTestCatalog(t)

	tests := []struct {
		name string
		pred predicate.FilterPredicate
	}{
		{"adults", predicate.New("age", predicate.GreaterThanOrEqualTo, "18")},
		{"no-email", predicate.New("email", predicate.IsNull, "")},
		{"not-bob", predicate.New("name", predicate.NotEqualTo, "bob")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, c.Save(tt.name, tt.pred))
			got, err := c.Load(tt.name)
			require.NoError(t, err)
			assert.True(t, tt.pred.Equal(got))
			assert.Equal(t, tt.pred.Hash(), got.Hash())
		})
	}
}

func TestCatalog_Overwrite(t *testing.T) {
	c := setupTestCatalog(t)
	require.NoError(t, c.Save("p", predicate.New("a", predicate.EqualTo, "1")))
	require.NoError(t, c.Save("p", predicate.New("a", predicate.EqualTo, "2")))

	got, err := c.Load("p")
	require.NoError(t, err)
	assert.Equal(t, "2", got.Value())
}

func TestCatalog_NotFound(t *testing.T) {
	c := setupTestCatalog(t)

	_, err := c.Load("missing")
	assert.ErrorIs(t, err, ErrPredicateNotFound)
	assert.ErrorIs(t, c.Delete("missing"), ErrPredicateNotFound)
}

func TestCatalog_ListDelete(t *testing.T) {
	c := setupTestCatalog(t)
	for _, name := range []string{"b", "a", "c"} {
		require.NoError(t, c.Save(name, predicate.New("x", predicate.LessThan, name)))
	}

	names, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	require.NoError(t, c.Delete("b"))
	names, err = c.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestCatalog_EmptyName(t *testing.T) {
	c := setupTestCatalog(t)
	assert.ErrorIs(t, c.Save("", predicate.New("x", predicate.EqualTo, "1")), ErrEmptyName)
}

func TestCatalog_Closed(t *testing.T) {
	c, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Save("p", predicate.New("x", predicate.EqualTo, "1")), ErrCatalogNotOpen)
	_, err = c.Load("p")
	assert.ErrorIs(t, err, ErrCatalogNotOpen)
	_, err = c.List()
	assert.ErrorIs(t, err, ErrCatalogNotOpen)
	assert.ErrorIs(t, c.Delete("p"), ErrCatalogNotOpen)
}

func TestCatalog_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	p := predicate.New("score", predicate.GreaterThan, "0.5")

	c, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, c.Save("high", p))
	require.NoError(t, c.Close())

	c, err = Open(Config{Dir: dir})
	require.NoError(t, err)
	defer c.Close()
	got, err := c.Load("high")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCodec(t *testing.T) {
	p := predicate.New("ts", predicate.LessThanOrEqualTo, "2024-01-01")
	b, err := encodePredicate(p)
	require.NoError(t, err)
	got, err := decodePredicate(b)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = decodePredicate([]byte{0xc1})
	assert.Error(t, err)
}

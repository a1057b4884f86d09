// Package catalog stores named filter predicates in badger so that pipelines can refer to
// them by name.
package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/tarungka/sieve/internal/logger"
	"github.com/tarungka/sieve/internal/predicate"
)

const keyPrefix = "predicate/"

var (
	// ErrCatalogNotOpen is returned when the catalog is used after Close.
	ErrCatalogNotOpen = errors.New("catalog not open")

	// ErrPredicateNotFound is returned for a name with no stored predicate.
	ErrPredicateNotFound = errors.New("predicate not found")

	// ErrEmptyName is returned when saving under an empty name.
	ErrEmptyName = errors.New("predicate name is empty")
)

type Config struct {
	// Dir holds the badger files. Ignored when InMemory is set.
	Dir      string `koanf:"dir"`
	InMemory bool   `koanf:"in_memory"`
}

// Catalog is safe for concurrent use.
type Catalog struct {
	open atomic.Bool

	dir    string
	logger zerolog.Logger

	db *badger.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the catalog described by c. An empty Dir is treated
// as in-memory.
func Open(c Config) (*Catalog, error) {
	l := logger.GetLogger("catalog")

	opts := badger.DefaultOptions(c.Dir)
	if c.InMemory || c.Dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{l})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	cat := &Catalog{
		dir:    c.Dir,
		logger: l,
		db:     db,
	}
	cat.open.Store(true)
	if opts.InMemory {
		l.Debug().Msg("opened an in-memory catalog")
	} else {
		l.Debug().Msgf("opened a file-based catalog at %s", c.Dir)
	}
	return cat, nil
}

// Save stores p under name, replacing any previous entry.
func (c *Catalog) Save(name string, p predicate.FilterPredicate) error {
	if !c.open.Load() {
		return ErrCatalogNotOpen
	}
	if name == "" {
		return ErrEmptyName
	}
	val, err := encodePredicate(p)
	if err != nil {
		return fmt.Errorf("encoding predicate %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Trace().Str("name", name).Str("predicate", p.String()).Msg("saving predicate")
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(name), val)
	})
	if err != nil {
		c.logger.Err(err).Str("name", name).Msg("error when saving predicate")
		return err
	}
	return nil
}

// Load returns the predicate stored under name.
func (c *Catalog) Load(name string) (predicate.FilterPredicate, error) {
	if !c.open.Load() {
		return predicate.FilterPredicate{}, ErrCatalogNotOpen
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(name))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return predicate.FilterPredicate{}, fmt.Errorf("%w: %s", ErrPredicateNotFound, name)
	}
	if err != nil {
		return predicate.FilterPredicate{}, err
	}
	p, err := decodePredicate(val)
	if err != nil {
		return predicate.FilterPredicate{}, fmt.Errorf("decoding predicate %s: %w", name, err)
	}
	return p, nil
}

// List returns the stored names in key order.
func (c *Catalog) List() ([]string, error) {
	if !c.open.Load() {
		return nil, ErrCatalogNotOpen
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var names []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	return names, err
}

// Delete removes the predicate stored under name.
func (c *Catalog) Delete(name string) error {
	if !c.open.Load() {
		return ErrCatalogNotOpen
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrPredicateNotFound, name)
			}
			return err
		}
		return txn.Delete(key(name))
	})
}

// Close closes the underlying database. Closing twice is a no-op.
func (c *Catalog) Close() error {
	if !c.open.CompareAndSwap(true, false) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger.Debug().Msg("closing catalog")
	return c.db.Close()
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}

// badgerLogger routes badger's own messages into zerolog.
type badgerLogger struct {
	l zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error().Msgf(strings.TrimSpace(format), args...)
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Trace().Msgf(strings.TrimSpace(format), args...)
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Trace().Msgf(strings.TrimSpace(format), args...)
}

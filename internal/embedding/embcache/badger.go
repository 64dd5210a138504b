package embcache

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"legalbot/internal/logger"
)

// BadgerStore is a Store backed by a BadgerDB directory.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// badgerLogger adapts zap to the badger.Logger interface.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(msg string, args ...any)   { l.s.Errorf(msg, args...) }
func (l badgerLogger) Warningf(msg string, args ...any) { l.s.Warnf(msg, args...) }
func (l badgerLogger) Infof(msg string, args ...any)    { l.s.Debugf(msg, args...) }
func (l badgerLogger) Debugf(msg string, args ...any)   { l.s.Debugf(msg, args...) }

// OpenBadger opens (creating if needed) a cache database at path.
// With inMemory set, path is ignored and nothing touches the disk.
func OpenBadger(path string, inMemory bool, l *zap.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = badgerLogger{s: logger.OrNop(l).Named("badger").Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return out, err
}

// Set stores value under key.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

package session

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"

	"github.com/trakjobs/trakjobs-go/internal/telemetry/logger"
)

// BadgerBackend stores entries in an embedded badger database. Multi-key
// writes and deletes run in a single transaction.
type BadgerBackend struct {
	db     *badger.DB
	logger logger.Logger
}

// OpenBadgerBackend opens (or creates) the database in dir.
func OpenBadgerBackend(dir string, log logger.Logger) (*BadgerBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{logger: log}
	opts.SyncWrites = true
	opts.NumVersionsToKeep = 1
	opts.ValueLogFileSize = 1 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	log.Debug("badger session backend opened", "dir", dir)
	return &BadgerBackend{db: db, logger: log}, nil
}

func (b *BadgerBackend) Get(key string) ([]byte, bool, error) {
	var value []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, false, nil
	case errors.Is(err, badger.ErrDBClosed):
		return nil, false, ErrClosed
	case err != nil:
		return nil, false, err
	}
	return value, true, nil
}

func (b *BadgerBackend) Set(entries map[string][]byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for k, v := range entries {
			if err := txn.Set([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerBackend) Delete(keys ...string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close runs one value-log GC pass and closes the database.
func (b *BadgerBackend) Close() error {
	if err := b.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		b.logger.Debug("badger gc skipped", "error", err)
	}
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// badgerLogger adapts Logger to Badger's Logger interface.
// Badger is chatty at info level, so info is demoted to debug.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

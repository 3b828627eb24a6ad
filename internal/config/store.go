package config

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const settingsKey = "engine_options"

// Store persists EngineOptions across process restarts using an embedded,
// crash-safe key-value database. It is an ambient convenience: the search
// core never touches it directly, only cmd/chessengine-uci at startup and
// after every successful setoption.
type Store struct {
	db *badger.DB
}

// OpenStore opens (creating if necessary) the settings database in the
// platform's standard per-user data directory.
func OpenStore() (*Store, error) {
	dir, err := DatabaseDir()
	if err != nil {
		return nil, fmt.Errorf("config: resolve database dir: %w", err)
	}
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("config: open store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the last-persisted options, or the compiled-in defaults if
// nothing has been saved yet or the stored record is unreadable. A missing
// or corrupt store is never treated as fatal.
func (s *Store) Load() EngineOptions {
	opts := DefaultOptions()
	if s.db == nil {
		return opts
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(settingsKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &opts)
		})
	})
	if err != nil {
		return DefaultOptions()
	}
	return opts
}

// Save persists opts, overwriting any previously stored record.
func (s *Store) Save(opts EngineOptions) error {
	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(opts)
	if err != nil {
		return fmt.Errorf("config: marshal options: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(settingsKey), data)
	})
}

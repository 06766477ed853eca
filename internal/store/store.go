// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Package store keeps the answers of past queries in an embedded BadgerDB
// database, so that a query on the same model with the same evidence is
// answered without evaluating the circuits again.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Get when no answer is recorded for a query.
var ErrNotFound = errors.New("query not found")

// Record is the answer to a query.
type Record struct {
	ID          uuid.UUID `json:"id"`
	Network     string    `json:"network"`
	Model       string    `json:"model"`
	Evidence    string    `json:"evidence"`
	Strategy    string    `json:"strategy"`
	Probability float64   `json:"probability"`
	Joint       float64   `json:"joint"`
	Marginal    float64   `json:"marginal"`
	Created     time.Time `json:"created"`
}

// Store is a database of query answers. It is safe for concurrent use.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// zapLogger adapts a zap logger to the Logger interface of BadgerDB.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l zapLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l zapLogger) Infof(format string, args ...interface{})    { l.s.Debugf(format, args...) }
func (l zapLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }

// Open opens (or creates) a store in directory path. An empty path opens an
// in-memory store, whose content is lost when closed. A nil logger disables
// logging.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0750); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(zapLogger{logger.Sugar()})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// key returns the key of a query: the network name, the digest of the model
// files and the canonical representation of the evidence.
func key(network, model, evidence string) []byte {
	return []byte(network + "\x00" + model + "\x00" + evidence)
}

// Put records the answer to a query. A previous answer for the same query is
// replaced.
func (s *Store) Put(r Record) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Created.IsZero() {
		r.Created = time.Now()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(r.Network, r.Model, r.Evidence), data)
	})
	if err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	s.logger.Debug("query recorded", zap.String("id", r.ID.String()), zap.String("evidence", r.Evidence))
	return nil
}

// Get returns the answer recorded for a query on a model, or ErrNotFound.
func (s *Store) Get(network, model, evidence string) (Record, error) {
	var r Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(network, model, evidence))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read record: %w", err)
	}
	return r, nil
}

// Count returns the number of answers recorded for a network.
func (s *Store) Count(network string) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(network + "\x00")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

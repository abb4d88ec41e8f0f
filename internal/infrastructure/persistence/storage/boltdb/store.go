//go:build linux

// Package boltdb adapts application/sweep.Store onto an embedded BoltDB
// database, grounded on the teacher's
// internal/infrastructure/persistence/storage/boltdb.Store (bolt.Open
// with a timeout, CreateBucketIfNotExists schema setup, Update/View
// transactions), narrowed from the teacher's multi-bucket time-series
// schema to this package's single current-record need (spec.md §4.8
// "Dedup and caching": "persist an incremental snapshot").
package boltdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/kodflow/resctld/internal/domain/qos"
)

const (
	dbFileMode    os.FileMode = 0o600
	dbOpenTimeout             = 5 * time.Second
)

var (
	bucketSweep = []byte("sweep")

	keyIncremental = []byte("incremental")
	keyFinal       = []byte("final")
)

// Store implements application/sweep.Store over a BoltDB file holding
// at most one in-flight incremental snapshot and one finalized record.
type Store struct {
	db *bolt.DB
}

// New opens (creating if absent) the BoltDB file at path.
func New(path string) (*Store, error) {
	db, err := bolt.Open(path, dbFileMode, &bolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open boltdb: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSweep)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Load implements sweep.Store. It prefers the finalized record over the
// incremental snapshot: a completed sweep's Record.Runs is authoritative
// even if an incremental snapshot from an earlier, now-superseded
// invocation is still present.
func (s *Store) Load() (*qos.Record, error) {
	var rec *qos.Record

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSweep)

		if data := b.Get(keyFinal); data != nil {
			var r qos.Record
			if err := json.Unmarshal(data, &r); err != nil {
				return fmt.Errorf("decode final record: %w", err)
			}
			rec = &r
			return nil
		}

		if data := b.Get(keyIncremental); data != nil {
			var r qos.Record
			if err := json.Unmarshal(data, &r); err != nil {
				return fmt.Errorf("decode incremental record: %w", err)
			}
			rec = &r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// SaveIncremental implements sweep.Store.
func (s *Store) SaveIncremental(rec qos.Record) error {
	return s.put(keyIncremental, rec)
}

// SaveFinal implements sweep.Store.
func (s *Store) SaveFinal(rec qos.Record) error {
	return s.put(keyFinal, rec)
}

func (s *Store) put(key []byte, rec qos.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSweep).Put(key, data)
	})
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	if s.db == nil {
		return errors.New("boltdb: store already closed")
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Package boltstore persists query statistics keyed by fingerprint. Queries
// that differ only in literal values share a fingerprint, so the store
// naturally groups workload by query shape. Used by the CLI stats command;
// the bridge itself holds no durable state.
package boltstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var queriesBucket = []byte("queries")

// Entry is one aggregated query shape.
type Entry struct {
	Fingerprint string `json:"fingerprint"`
	Normalized  string `json:"normalized"`
	Count       int    `json:"count"`
}

// Store is a bbolt-backed fingerprint aggregation store.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the stats database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(queriesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("boltstore: init %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record increments the count for a fingerprint, storing the normalized
// form on first sight.
func (s *Store) Record(fingerprint, normalized string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(queriesBucket)
		key := []byte(fingerprint)

		e := Entry{Fingerprint: fingerprint, Normalized: normalized}
		if raw := b.Get(key); raw != nil {
			if err := json.Unmarshal(raw, &e); err != nil {
				return fmt.Errorf("boltstore: corrupt entry %s: %w", fingerprint, err)
			}
		}
		e.Count++

		raw, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	})
}

// Top returns the n most frequent query shapes, most frequent first. Ties
// break on fingerprint for deterministic output.
func (s *Store) Top(n int) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(queriesBucket).ForEach(func(_, raw []byte) error {
			var e Entry
			if err := json.Unmarshal(raw, &e); err != nil {
				return err
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Fingerprint < entries[j].Fingerprint
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Len returns the number of distinct query shapes recorded.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(queriesBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Package journal persists finished transcripts in an embedded Badger store.
// Only recognized text is stored, never audio.
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Entry is one journaled transcript.
type Entry struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Language  string        `json:"language,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

var entryPrefix = []byte("entry/")

// Journal is an append-only transcript log. Safe for concurrent use.
type Journal struct {
	db *badger.DB
}

// Open opens or creates the journal at dir.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Append stores a transcript and returns it with its assigned ID. IDs are
// UUIDv7, so keys sort by creation time.
func (j *Journal) Append(e Entry) (Entry, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Entry{}, fmt.Errorf("new entry id: %w", err)
	}
	e.ID = id.String()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal entry: %w", err)
	}

	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(e.ID), data)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("store entry: %w", err)
	}
	return e, nil
}

// Recent returns up to n entries, newest first.
func (j *Journal) Recent(n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	var entries []Entry
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = entryPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts just past the last key of the prefix.
		seek := append(append([]byte{}, entryPrefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(entryPrefix) && len(entries) < n; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var e Entry
				if err := json.Unmarshal(val, &e); err != nil {
					return fmt.Errorf("unmarshal entry: %w", err)
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Close flushes and closes the store.
func (j *Journal) Close() error {
	return j.db.Close()
}

func key(id string) []byte {
	return append(append([]byte{}, entryPrefix...), id...)
}

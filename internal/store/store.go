// Package store persists prediction records using BoltDB. Records are
// keyed by subject identifier inside a bucket per logical collection, so a
// write is an atomic replace: exactly one record per subject per
// collection survives at any time.
package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"heartpredict/internal/ml"
)

// PersistenceError reports a store failure after a successful prediction.
// The caller still receives the prediction, flagged as not durably saved.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Record is the persisted shape of one subject's latest predictions.
type Record struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Predictions []ml.Prediction `json:"predictions"`
	CreatedAt   string          `json:"created_at"`
}

// Store provides persistent storage for prediction records.
type Store struct {
	db *bbolt.DB
}

// New opens the prediction database under dataPath, creating it if needed.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "heartpredict-data.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save replaces any prior record for userID in collection with a new one
// stamped with the current UTC time. The replacement happens inside a
// single write transaction, so concurrent saves for the same subject can
// never leave zero or duplicate records. Returns the new record id.
func (s *Store) Save(collection, userID string, predictions []ml.Prediction) (string, error) {
	rec := Record{
		ID:          uuid.NewString(),
		UserID:      userID,
		Predictions: predictions,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return "", &PersistenceError{Op: "marshal record", Err: err}
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return fmt.Errorf("create collection bucket: %w", err)
		}
		// Put on the subject key is the delete-then-insert collapsed
		// into one atomic operation.
		return b.Put([]byte(userID), data)
	})
	if err != nil {
		return "", &PersistenceError{Op: "save record", Err: err}
	}
	return rec.ID, nil
}

// History returns the stored prediction records for userID in collection.
// Replace semantics mean the result holds at most one record; an unknown
// subject or collection yields an empty slice, not an error.
func (s *Store) History(collection, userID string) ([]Record, error) {
	var records []Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		data := b.Get([]byte(userID))
		if data == nil {
			return nil
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("unmarshal record: %w", err)
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, &PersistenceError{Op: "query history", Err: err}
	}
	return records, nil
}

// Package store persists committed transaction templates in a bbolt
// database, keyed by commitment digest. Records are stored in the
// canonical JSON encoding and re-verified on every read, so a tampered
// database surfaces as an error instead of a forged commitment.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	"go.etcd.io/bbolt"

	"github.com/cryptoquick/sapio/template"
)

var bucketTemplates = []byte("templates")

// BoltStore wraps a bbolt database holding templates keyed by digest.
type BoltStore struct {
	db *bbolt.DB
}

// OpenBoltStore opens or creates the bbolt database at dbPath. The parent
// directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTemplates)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Put stores a template under its digest. Equal digests commit to equal
// content, so overwriting an existing record is harmless.
func (s *BoltStore) Put(t *template.Template) error {
	if t == nil {
		return ErrNilTemplate
	}
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("store: encode template: %w", err)
	}
	digest := t.Hash()
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTemplates).Put(digest[:], data)
	})
}

// Get loads the template with the given digest. The record's digest is
// re-verified against both its content and the storage key.
func (s *BoltStore) Get(h chainhash.Hash) (*template.Template, error) {
	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketTemplates).Get(h[:])
		if raw == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, h.String())
		}
		data = append([]byte(nil), raw...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var t template.Template
	if err := json.Unmarshal(data, &t); err != nil {
		if errors.Is(err, template.ErrInvariantViolation) {
			return nil, fmt.Errorf("%w: %w", ErrForgedRecord, err)
		}
		return nil, fmt.Errorf("store: decode template: %w", err)
	}
	if t.Hash() != h {
		return nil, fmt.Errorf("%w: key %s holds template %s",
			ErrForgedRecord, h.String(), t.Hash().String())
	}
	return &t, nil
}

// Has reports whether a template with the given digest is stored.
func (s *BoltStore) Has(h chainhash.Hash) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(bucketTemplates).Get(h[:]) != nil
		return nil
	})
	return found, err
}

// Delete removes the template with the given digest, if present.
func (s *BoltStore) Delete(h chainhash.Hash) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTemplates).Delete(h[:])
	})
}

// Digests returns the digests of all stored templates in key order.
func (s *BoltStore) Digests() ([]chainhash.Hash, error) {
	var out []chainhash.Hash
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketTemplates).ForEach(func(k, _ []byte) error {
			var h chainhash.Hash
			copy(h[:], k)
			out = append(out, h)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

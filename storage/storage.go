// storage package contains all the artifacts that are stored in the database,
// but also is an abstraction of a queue for the proof requests processed by
// the prover workers. The following prefixes are used:
//   - 'v/' for plaintext votes, keyed by proposal and cast index
//   - 'c/' for vote commitments observed on the ledger
//   - 'r/' for proof requests (queued)
//   - 'rr/' for proof request reservations
//   - 'f/' for fulfillments
//   - 't/' for settled tally results
//
// Only proof requests support queue operations.
package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/vocdoni/arbo/memdb"
	"github.com/vocdoni/vocdoni-tally/log"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/prefixeddb"
)

var (
	// ErrNotFound is returned when an artifact does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoMoreElements is returned by queue operations when the queue has
	// no available element.
	ErrNoMoreElements = errors.New("no more elements")
)

// Storage wraps a key-value database and stores the artifacts of the tally
// node under prefixed keys.
type Storage struct {
	db db.Database
	// globalLock serializes queue reservations and vote indexes.
	globalLock sync.Mutex
}

// New creates a new Storage instance. If database is nil an in-memory
// database is used.
func New(database db.Database) *Storage {
	if database == nil {
		database = memdb.New()
	}
	return &Storage{db: database}
}

// Close closes the storage.
func (s *Storage) Close() {
	if err := s.db.Close(); err != nil {
		log.Warnw("failed to close storage", "error", err.Error())
	}
}

// getArtifact reads and decodes the artifact stored under prefix||key into
// out. It returns ErrNotFound if the key does not exist.
func (s *Storage) getArtifact(prefix, key []byte, out any) error {
	pr := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := pr.Get(key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	if data == nil {
		return ErrNotFound
	}
	return decodeArtifact(data, out)
}

// setArtifact encodes and stores the artifact under prefix||key.
func (s *Storage) setArtifact(prefix, key []byte, artifact any) error {
	data, err := encodeArtifact(artifact)
	if err != nil {
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Set(key, data); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// deleteArtifact removes prefix||key. It returns ErrNotFound if the key does
// not exist.
func (s *Storage) deleteArtifact(prefix, key []byte) error {
	pr := prefixeddb.NewPrefixedReader(s.db, prefix)
	if _, err := pr.Get(key); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return ErrNotFound
		}
		return err
	}
	wTx := prefixeddb.NewPrefixedWriteTx(s.db.WriteTx(), prefix)
	if err := wTx.Delete(key); err != nil {
		wTx.Discard()
		return err
	}
	return wTx.Commit()
}

// iterateArtifacts calls fn with a copy of every key and value under
// prefix||subPrefix. The key passed to fn does not include prefix but does
// include subPrefix.
func (s *Storage) iterateArtifacts(prefix, subPrefix []byte, fn func(key, value []byte) bool) error {
	pr := prefixeddb.NewPrefixedReader(s.db, prefix)
	return pr.Iterate(subPrefix, func(k, v []byte) bool {
		key := make([]byte, 0, len(subPrefix)+len(k))
		key = append(key, subPrefix...)
		key = append(key, k...)
		value := make([]byte, len(v))
		copy(value, v)
		return fn(key, value)
	})
}

// isReserved reports whether key has a reservation under prefix. The caller
// must hold globalLock.
func (s *Storage) isReserved(prefix, key []byte) bool {
	pr := prefixeddb.NewPrefixedReader(s.db, prefix)
	data, err := pr.Get(key)
	return err == nil && data != nil
}

// setReservation records a reservation of key under prefix. The caller must
// hold globalLock.
func (s *Storage) setReservation(prefix, key []byte) error {
	return s.setArtifact(prefix, key, &reservation{Timestamp: time.Now().Unix()})
}

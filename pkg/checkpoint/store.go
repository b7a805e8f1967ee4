// Package checkpoint persists the relay loop's own progress — never chain
// state (spec §5: the relayer is stateless with respect to the chains it
// bridges) — so a restarted loop resumes scanning each lane from where it
// left off instead of rescanning from genesis. Grounded on
// pkg/core/storage's BoltDBStore shape (Put/Get/Close over a single
// bbolt.DB), generalized from its byte-key/byte-value store to one bucket
// keyed by lane id and relay direction.
package checkpoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/nspcc-dev/bridge-relay/pkg/util"
	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("checkpoints")

// ErrNotFound is returned by Get when no checkpoint has been recorded yet
// for a (lane, direction) pair.
var ErrNotFound = errors.New("checkpoint: not found")

// Direction discriminates the two independent progress cursors a lane has:
// how far messages have been relayed forward, and how far confirmations
// have been relayed back.
type Direction byte

const (
	DirectionDelivery   Direction = iota // source -> target messages
	DirectionConfirmation             // target -> source delivery confirmations
)

// Store is a bbolt-backed checkpoint store, one *bolt.DB per relayer
// process.
type Store struct {
	db *bolt.DB
}

// Options configures Open.
type Options struct {
	FilePath string
	Timeout  time.Duration
}

// Open opens (creating if absent) the bbolt file at opts.FilePath.
func Open(opts Options) (*Store, error) {
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Second
	}
	db, err := bolt.Open(opts.FilePath, 0o600, &bolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("checkpoint: opening %s: %w", opts.FilePath, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint: creating bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt file.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(lane util.LaneID, dir Direction) []byte {
	k := make([]byte, util.LaneIDSize+1)
	copy(k, lane.Bytes())
	k[util.LaneIDSize] = byte(dir)
	return k
}

// Get returns the last nonce recorded as processed for (lane, dir).
func (s *Store) Get(lane util.LaneID, dir Direction) (util.MessageNonce, error) {
	var nonce util.MessageNonce
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get(key(lane, dir))
		if v == nil {
			return nil
		}
		found = true
		nonce = binary.LittleEndian.Uint64(v)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("checkpoint: reading %s: %w", lane, err)
	}
	if !found {
		return 0, ErrNotFound
	}
	return nonce, nil
}

// Set records nonce as the last processed point for (lane, dir).
func (s *Store) Set(lane util.LaneID, dir Direction, nonce util.MessageNonce) error {
	var v [8]byte
	binary.LittleEndian.PutUint64(v[:], nonce)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key(lane, dir), v[:])
	})
	if err != nil {
		return fmt.Errorf("checkpoint: writing %s: %w", lane, err)
	}
	return nil
}

package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Partition names one independently persisted slice of client state
type Partition string

const (
	PartitionAuth      Partition = "auth"
	PartitionChats     Partition = "chats"
	PartitionCampaigns Partition = "campaigns"
	PartitionTemplates Partition = "templates"
)

// Partitions lists every partition, in creation order
var Partitions = []Partition{PartitionAuth, PartitionChats, PartitionCampaigns, PartitionTemplates}

var stateKey = []byte("state")

// Storage keeps each partition as a single JSON document in its own bucket
type Storage struct {
	db *bolt.DB
}

// Open opens (or creates) the state file at path
func Open(path string) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}

	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New creates a storage using the provided BoltDB instance
func New(db *bolt.DB) (*Storage, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		for _, p := range Partitions {
			if _, err := tx.CreateBucketIfNotExists([]byte(p)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create state buckets: %w", err)
	}

	return &Storage{db: db}, nil
}

// Save replaces the document stored in partition p
func (s *Storage) Save(p Partition, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s state: %w", p, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(p))
		if bucket == nil {
			return fmt.Errorf("unknown partition %q", p)
		}
		return bucket.Put(stateKey, data)
	})
}

// Load decodes the document stored in partition p into v. It reports false
// when the partition is empty.
func (s *Storage) Load(p Partition, v any) (bool, error) {
	var found bool

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(p))
		if bucket == nil {
			return fmt.Errorf("unknown partition %q", p)
		}
		data := bucket.Get(stateKey)
		if data == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to unmarshal %s state: %w", p, err)
		}
		return nil
	})

	return found, err
}

// Clear empties partition p
func (s *Storage) Clear(p Partition) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(p))
		if bucket == nil {
			return fmt.Errorf("unknown partition %q", p)
		}
		return bucket.Delete(stateKey)
	})
}

// Size returns the stored document size per partition
func (s *Storage) Size() (map[Partition]int, error) {
	sizes := make(map[Partition]int, len(Partitions))
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, p := range Partitions {
			if bucket := tx.Bucket([]byte(p)); bucket != nil {
				sizes[p] = len(bucket.Get(stateKey))
			}
		}
		return nil
	})
	return sizes, err
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

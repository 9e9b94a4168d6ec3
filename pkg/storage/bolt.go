package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
	"github.com/charmbracelet/log"
)

var bucketBlobs = []byte("blobs")

// Bolt persists blobs in a single BoltDB bucket.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens or creates the database file at path.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketBlobs)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	log.Debugf("Opened bolt blob store at %s", path)
	return &Bolt{db: db}, nil
}

func (b *Bolt) LoadBlob(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketBlobs).Get([]byte(key))
		if data == nil {
			return nil
		}
		// data is only valid inside the transaction
		value, found = string(data), true
		return nil
	})
	if err == bolt.ErrDatabaseNotOpen {
		return "", false, ErrClosed
	}
	return value, found, err
}

func (b *Bolt) StoreBlob(key, value string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBlobs).Put([]byte(key), []byte(value))
	})
	if err == bolt.ErrDatabaseNotOpen {
		return ErrClosed
	}
	return err
}

func (b *Bolt) Close() error {
	return b.db.Close()
}

package kv

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// dbFilePerm is the permission mode for the database file. Secrets
	// live here in plain text, so keep it owner-only.
	dbFilePerm = fs.FileMode(0o600)

	// dbDirPerm is the permission mode for the enclosing directory when
	// it has to be created.
	dbDirPerm = fs.FileMode(0o700)

	// dbOpenTimeout is the maximum time to wait for the bolt file lock.
	dbOpenTimeout = 5 * time.Second
)

var kvBucket = []byte("kv")

// Bolt is a durable Store backed by a single-bucket bbolt database.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the key-value database at path.
func OpenBolt(path string) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, dbDirPerm); err != nil {
			return nil, fmt.Errorf("creating kv directory: %w", err)
		}
	}

	db, err := bolt.Open(path, dbFilePerm, &bolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening kv db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(kvBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Close releases the underlying database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	var found bool

	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(kvBucket).Get([]byte(key))
		if v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}

	return value, found, nil
}

func (b *Bolt) Set(ctx context.Context, key, value string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}

	return nil
}

func (b *Bolt) SetNX(ctx context.Context, key, value string) (bool, error) {
	var wrote bool

	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(kvBucket)
		if bkt.Get([]byte(key)) != nil {
			return nil
		}
		wrote = true
		return bkt.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return false, fmt.Errorf("kv setnx %q: %w", key, err)
	}

	return wrote, nil
}

func (b *Bolt) Delete(ctx context.Context, key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}

	return nil
}

func (b *Bolt) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string

	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(kvBucket).ForEach(func(k, _ []byte) error {
			if matchPattern(pattern, string(k)) {
				keys = append(keys, string(k))
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("kv keys %q: %w", pattern, err)
	}

	return keys, nil
}

func (b *Bolt) Incr(ctx context.Context, key string) (int64, error) {
	var n int64

	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(kvBucket)
		if v := bkt.Get([]byte(key)); v != nil {
			parsed, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return fmt.Errorf("non-numeric counter value %q", v)
			}
			n = parsed
		}
		n++
		return bkt.Put([]byte(key), []byte(strconv.FormatInt(n, 10)))
	})
	if err != nil {
		return 0, fmt.Errorf("kv incr %q: %w", key, err)
	}

	return n, nil
}

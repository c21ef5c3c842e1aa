package boltdb

import (
	"bytes"
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/lifedash/internal/client/storage"
)

// pendingSeparator отделяет scope от ключа сущности.
// Нулевой байт не может встретиться ни в user ID, ни в имени сущности.
const pendingSeparator = "\x00"

func pendingKey(scope, key string) []byte {
	return []byte(scope + pendingSeparator + key)
}

// AddPending adds key to the scope's pending set
func (s *Storage) AddPending(ctx context.Context, scope, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPending)
		if bucket == nil {
			return fmt.Errorf("pending bucket not found")
		}

		// Значение не используется - bucket работает как множество
		if err := bucket.Put(pendingKey(scope, key), []byte{1}); err != nil {
			return fmt.Errorf("failed to add pending key: %w", err)
		}

		return nil
	})
}

// RemovePending removes key from the scope's pending set
func (s *Storage) RemovePending(ctx context.Context, scope, key string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPending)
		if bucket == nil {
			return fmt.Errorf("pending bucket not found")
		}

		if err := bucket.Delete(pendingKey(scope, key)); err != nil {
			return fmt.Errorf("failed to remove pending key: %w", err)
		}

		return nil
	})
}

// ListPending returns the scope's pending keys
func (s *Storage) ListPending(ctx context.Context, scope string) ([]string, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var keys []string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPending)
		if bucket == nil {
			return fmt.Errorf("pending bucket not found")
		}

		prefix := []byte(scope + pendingSeparator)
		c := bucket.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, string(k[len(prefix):]))
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list pending keys: %w", err)
	}

	return keys, nil
}

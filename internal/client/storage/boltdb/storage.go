// Package boltdb - хранилище сессии клиента в файле BoltDB.
package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/gophauth/internal/client/storage"
)

var bucketAuth = []byte("auth")

var _ storage.AuthStorage = (*Storage)(nil)

// Storage - реализация storage.AuthStorage поверх BoltDB
type Storage struct {
	db *bbolt.DB
}

// New открывает (или создает) файл БД по пути dbPath
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// таймаут на файловую блокировку: второй процесс клиента не зависает навсегда
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db}

	if err := s.initBuckets(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	return s, nil
}

// Close закрывает БД; повторный вызов ничего не делает
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketAuth); err != nil {
			return fmt.Errorf("failed to create auth bucket: %w", err)
		}
		return nil
	})
}

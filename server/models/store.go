package models

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const pingTimeout = 5 * time.Second

// Store is the relational message store. It is safe for concurrent use;
// every request borrows its own connection from the underlying pool.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates the messages table if it doesn't exist yet.
func (s *Store) AutoMigrate() error {
	return errors.Wrap(s.db.AutoMigrate(&ContactMessage{}), "auto-migrate messages")
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

package models

import (
	"path/filepath"

	"github.com/Daskott/folio/shared"
	"go.uber.org/zap"
)

// NewTestStore opens a migrated sqlite store inside dir, for use in tests.
func NewTestStore(dir string) (*Store, error) {
	store, err := OpenStore(shared.StoreConfig{
		Driver:   shared.SQLITE_DRIVER,
		Database: filepath.Join(dir, "folio_test.db"),
	}, zap.NewNop().Sugar())
	if err != nil {
		return nil, err
	}

	if err := store.AutoMigrate(); err != nil {
		store.Close()
		return nil, err
	}

	return store, nil
}

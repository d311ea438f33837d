package masterblog

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gouniverse/sb"
)

// NewStoreOptions define the options for creating a new post store
type NewStoreOptions struct {
	PostTableName      string
	DB                 *sql.DB
	DbDriverName       string
	AutomigrateEnabled bool
	SeedEnabled        bool
	DebugEnabled       bool
}

// NewStore creates a new post store
func NewStore(opts NewStoreOptions) (StoreInterface, error) {
	if opts.PostTableName == "" {
		return nil, errors.New("post store: PostTableName is required")
	}

	if opts.DB == nil {
		return nil, errors.New("post store: DB is required")
	}

	if opts.DbDriverName == "" {
		opts.DbDriverName = sb.DatabaseDriverName(opts.DB)
	}

	store := &store{
		postTableName:      opts.PostTableName,
		automigrateEnabled: opts.AutomigrateEnabled,
		db:                 opts.DB,
		dbDriverName:       opts.DbDriverName,
		debugEnabled:       opts.DebugEnabled,
	}

	if store.automigrateEnabled {
		if err := store.AutoMigrate(); err != nil {
			return nil, err
		}
	}

	if opts.SeedEnabled {
		if err := store.Seed(context.Background()); err != nil {
			return nil, err
		}
	}

	return store, nil
}

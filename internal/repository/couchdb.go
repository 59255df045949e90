package repository

import (
	"context"
	"fmt"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
)

// Connect opens a CouchDB client and checks that the server answers.
func Connect(ctx context.Context, url string) (*kivik.Client, error) {
	client, err := kivik.New("couch", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
	}

	up, err := client.Ping(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping CouchDB: %w", err)
	}
	if !up {
		return nil, fmt.Errorf("CouchDB is not ready")
	}

	return client, nil
}

// EnsureSchema creates the database and the Mango indexes used by the
// repositories. Running it against an existing database is harmless.
func EnsureSchema(ctx context.Context, client *kivik.Client, dbName string) error {
	exists, err := client.DBExists(ctx, dbName)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, dbName); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
	}

	db := client.DB(dbName)
	indexes := []struct {
		ddoc   string
		name   string
		fields []string
	}{
		{"notes-by-owner", "by-owner", []string{"doc_type", "owner_id"}},
	}

	for _, idx := range indexes {
		index := map[string]interface{}{"fields": idx.fields}
		if err := db.CreateIndex(ctx, idx.ddoc, idx.name, index); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

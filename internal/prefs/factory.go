package prefs

import (
	"context"
	"strings"
)

// NewStore creates a postgres-backed store when configured, otherwise a local
// JSON file store.
func NewStore(ctx context.Context, databaseURL, filePath string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewFileStore(filePath), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}

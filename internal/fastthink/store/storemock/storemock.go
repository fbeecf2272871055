// Package storemock provides a testify mock of store.Store for tests
// that need to assert on the calls the manager makes to the backing
// store.
package storemock

import (
	"context"

	"github.com/rpggio/fastthink/internal/fastthink/store"
	"github.com/stretchr/testify/mock"
)

// Store is a mock for store.Store.
type Store struct {
	mock.Mock
}

func (m *Store) Search(ctx context.Context, query string, opts store.SearchOptions) ([]store.SearchRecord, error) {
	args := m.Called(ctx, query, opts)
	if records, ok := args.Get(0).([]store.SearchRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Add(ctx context.Context, content, userID, agentID string, metadata map[string]string) (store.AddResult, error) {
	args := m.Called(ctx, content, userID, agentID, metadata)
	if result, ok := args.Get(0).(store.AddResult); ok {
		return result, args.Error(1)
	}
	return store.AddResult{}, args.Error(1)
}

func (m *Store) AddWithTags(ctx context.Context, content, userID, agentID string, metadata map[string]string, tag string) (store.AddResult, error) {
	args := m.Called(ctx, content, userID, agentID, metadata, tag)
	if result, ok := args.Get(0).(store.AddResult); ok {
		return result, args.Error(1)
	}
	return store.AddResult{}, args.Error(1)
}

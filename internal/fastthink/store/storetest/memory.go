// Package storetest provides a minimal in-memory store.Store fake for
// tests and demos that need a working backing store without standing
// up a real one.
package storetest

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/rpggio/fastthink/internal/fastthink/store"
)

// Memory is a trivial in-memory store.Store. Search returns the seeded
// records regardless of the query; Add/AddWithTags append to an
// in-memory log and hand back a generated id.
type Memory struct {
	mu      sync.Mutex
	seeded  []store.SearchRecord
	written []WrittenMemory
	nextID  int
}

// WrittenMemory records one Add/AddWithTags call for later inspection.
type WrittenMemory struct {
	ID       string
	Content  string
	UserID   string
	AgentID  string
	Metadata map[string]string
	Tag      string
}

// New creates an empty Memory store.
func New() *Memory {
	return &Memory{}
}

// Seed adds records that Search can return.
func (m *Memory) Seed(records ...store.SearchRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeded = append(m.seeded, records...)
}

// Written returns every Add/AddWithTags call made so far, in call order.
func (m *Memory) Written() []WrittenMemory {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WrittenMemory, len(m.written))
	copy(out, m.written)
	return out
}

// Search returns every seeded record, highest score first, truncated
// to opts.Limit when positive.
func (m *Memory) Search(_ context.Context, _ string, opts store.SearchOptions) ([]store.SearchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]store.SearchRecord, len(m.seeded))
	copy(results, m.seeded)
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// Add appends content as a new memory and returns a generated id.
func (m *Memory) Add(_ context.Context, content, userID, agentID string, metadata map[string]string) (store.AddResult, error) {
	return m.write(content, userID, agentID, metadata, "")
}

// AddWithTags appends tagged content as a new memory.
func (m *Memory) AddWithTags(_ context.Context, content, userID, agentID string, metadata map[string]string, tag string) (store.AddResult, error) {
	return m.write(content, userID, agentID, metadata, tag)
}

func (m *Memory) write(content, userID, agentID string, metadata map[string]string, tag string) (store.AddResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := "mem-" + strconv.Itoa(m.nextID)
	m.written = append(m.written, WrittenMemory{
		ID:       id,
		Content:  content,
		UserID:   userID,
		AgentID:  agentID,
		Metadata: metadata,
		Tag:      tag,
	})

	return store.AddResult{MemoryIDs: []string{id}}, nil
}

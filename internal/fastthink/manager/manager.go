// Package manager implements the FastThink session manager: it owns
// the set of live sessions, mediates recall/commit against the
// backing store, and enforces TTL cleanup. All synchronous operations
// (start/add/conclude/discard/status/chain/cleanup) never suspend;
// recall and commit suspend only while awaiting the store, with no
// session lock held during the wait.
package manager

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rpggio/fastthink/internal/fastthink/limits"
	"github.com/rpggio/fastthink/internal/fastthink/session"
	"github.com/rpggio/fastthink/internal/fastthink/store"
	"github.com/rpggio/fastthink/internal/fastthink/thought"
)

// Manager owns the set of live FastThink sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session

	limits limits.Limits
	store  store.Store
	logger *slog.Logger
}

// New creates a Manager backed by store, bounded by l.
func New(backingStore store.Store, l limits.Limits, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*session.Session),
		limits:   l,
		store:    backingStore,
		logger:   logger,
	}
}

// WithDefaultLimits creates a Manager using the default limit preset.
func WithDefaultLimits(backingStore store.Store, logger *slog.Logger) *Manager {
	return New(backingStore, limits.Default(), logger)
}

// StartThinking creates a fresh session with an Initial thought and no
// parent. Fails SessionAlreadyExists if sessionID is already live.
func (m *Manager) StartThinking(sessionID, initialThought string) (thought.Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[sessionID]; exists {
		return thought.Ref{}, thought.ErrSessionAlreadyExists
	}

	sess := session.New(sessionID)
	ref, err := sess.AddThought(initialThought, thought.KindInitial, nil, nil, m.limits)
	if err != nil {
		return thought.Ref{}, err
	}

	m.sessions[sessionID] = sess
	m.logger.Info("started thinking session", "session_id", sessionID, "thought", initialThought)

	return ref, nil
}

// AddThought adds a thought to a live session. A Timeout here leaves
// the session salvageable via CommitPartial; the manager does not
// salvage automatically.
func (m *Manager) AddThought(sessionID, content string, kind thought.Kind, parent *thought.Ref, edgeLabel *thought.EdgeLabel) (thought.Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return thought.Ref{}, thought.ErrSessionNotFound
	}

	ref, err := sess.AddThought(content, kind, parent, edgeLabel, m.limits)
	if err != nil {
		return thought.Ref{}, err
	}

	m.logger.Debug("added thought",
		"session_id", sessionID,
		"thought_count", sess.ThoughtCount(),
		"depth", sess.CurrentDepth(),
	)

	return ref, nil
}

// Recall imports results from the backing store as Recall thoughts
// attached to parentRef. The session lock is released while the store
// call is in flight; recall-thoughts are inserted in store-returned
// order and silently truncated at the thought budget.
func (m *Manager) Recall(ctx context.Context, sessionID, query string, parentRef thought.Ref) ([]thought.Ref, error) {
	maxResults, err := m.beginRecall(sessionID)
	if err != nil {
		return nil, err
	}

	records, err := m.store.Search(ctx, query, store.SearchOptions{
		Mode:  "contextual",
		Limit: maxResults,
	})
	if err != nil {
		return nil, thought.ErrRecallFailed(err.Error())
	}

	m.logger.Info("recalled from store", "session_id", sessionID, "query", query, "results", len(records))

	return m.finishRecall(sessionID, parentRef, records)
}

func (m *Manager) beginRecall(sessionID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return 0, thought.ErrSessionNotFound
	}
	sess.SetStatus(thought.StatusNeedsRecall)
	return m.limits.MaxRecallResults, nil
}

func (m *Manager) finishRecall(sessionID string, parentRef thought.Ref, records []store.SearchRecord) ([]thought.Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, thought.ErrSessionNotFound
	}

	var inserted []thought.Ref
	for _, rec := range records {
		if sess.ThoughtCount() >= m.limits.MaxThoughts {
			m.logger.Warn("hit thought limit during recall", "session_id", sessionID)
			break
		}
		ref, err := sess.AddRecalledThought(rec.Content, rec.ID, rec.Score, parentRef, m.limits)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, ref)
	}

	sess.SetStatus(thought.StatusThinking)
	return inserted, nil
}

// Conclude delegates to the session's AddConclusion.
func (m *Manager) Conclude(sessionID, content string, supporting []thought.Ref) (thought.Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return thought.Ref{}, thought.ErrSessionNotFound
	}

	ref, err := sess.AddConclusion(content, supporting, m.limits)
	if err != nil {
		return thought.Ref{}, err
	}

	m.logger.Info("reached conclusion", "session_id", sessionID, "supporting_count", len(supporting))
	return ref, nil
}

// Commit removes the session and writes its conclusions (plus any
// supporting-evidence suffix) to the store as a single memory. Fails
// NoConclusion if the session has no conclusions; the session is
// already removed by that point, matching the reference design's
// documented (and flagged) behavior.
func (m *Manager) Commit(ctx context.Context, sessionID, userID string) (CommitResult, error) {
	sess, err := m.removeSession(sessionID)
	if err != nil {
		return CommitResult{}, err
	}

	if len(sess.GetConclusions()) == 0 {
		return CommitResult{}, thought.ErrNoConclusion
	}

	content := sess.BuildConclusionContent()
	evidence := sess.GetSupportingEvidence()
	if len(evidence) > 0 {
		content += "\n\n[Based on: " + strings.Join(evidence, "; ") + "]"
	}

	result, err := m.store.Add(ctx, content, userID, "", nil)
	if err != nil {
		return CommitResult{}, thought.ErrCommitFailed(err.Error())
	}

	memoryID := ""
	if len(result.MemoryIDs) > 0 {
		memoryID = result.MemoryIDs[0]
	}

	m.logger.Info("committed thinking session",
		"session_id", sessionID,
		"memory_id", memoryID,
		"thoughts_processed", sess.ThoughtCount(),
		"entities_extracted", sess.EntityCount(),
		"elapsed_ms", sess.Elapsed().Milliseconds(),
	)

	return CommitResult{
		MemoryID:          memoryID,
		ThoughtsProcessed: sess.ThoughtCount(),
		EntitiesExtracted: sess.EntityCount(),
		ConceptsMapped:    sess.ConceptCount(),
		Elapsed:           sess.Elapsed(),
	}, nil
}

// CommitPartial removes the session and salvages a raw thought listing
// to the store, tagged incomplete_thought. Intended for interrupted
// sessions (timeout, cancellation, operator-triggered salvage).
func (m *Manager) CommitPartial(ctx context.Context, sessionID, userID, reason string) (CommitResult, error) {
	sess, err := m.removeSession(sessionID)
	if err != nil {
		return CommitResult{}, err
	}

	thoughts := sess.AllThoughts()
	if len(thoughts) == 0 {
		return CommitResult{}, thought.ErrNoConclusion
	}

	content := "FastThink session interrupted (" + reason + ")\n\nThoughts:\n" + bulletList(thoughts) +
		"\n\n[Action: Continue research with think_start]"

	result, err := m.store.AddWithTags(ctx, content, userID, "", nil, "incomplete_thought")
	if err != nil {
		return CommitResult{}, thought.ErrCommitFailed(err.Error())
	}

	memoryID := ""
	if len(result.MemoryIDs) > 0 {
		memoryID = result.MemoryIDs[0]
	}

	m.logger.Warn("committed partial thinking session",
		"session_id", sessionID,
		"reason", reason,
		"memory_id", memoryID,
		"thoughts_processed", sess.ThoughtCount(),
	)

	return CommitResult{
		MemoryID:          memoryID,
		ThoughtsProcessed: sess.ThoughtCount(),
		EntitiesExtracted: sess.EntityCount(),
		ConceptsMapped:    sess.ConceptCount(),
		Elapsed:           sess.Elapsed(),
	}, nil
}

// Discard removes the session without writing anything to the store.
func (m *Manager) Discard(sessionID string) (DiscardResult, error) {
	sess, err := m.removeSession(sessionID)
	if err != nil {
		return DiscardResult{}, err
	}

	m.logger.Info("discarded thinking session",
		"session_id", sessionID,
		"thoughts", sess.ThoughtCount(),
		"elapsed_ms", sess.Elapsed().Milliseconds(),
	)

	return DiscardResult{
		ThoughtsDiscarded: sess.ThoughtCount(),
		Elapsed:           sess.Elapsed(),
	}, nil
}

func (m *Manager) removeSession(sessionID string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, thought.ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	return sess, nil
}

// ExtractEntity delegates to the session's ExtractEntity.
func (m *Manager) ExtractEntity(sessionID string, thoughtRef thought.Ref, name string, entityType thought.EntityType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return "", thought.ErrSessionNotFound
	}
	return sess.ExtractEntity(thoughtRef, name, entityType, m.limits)
}

// MapToConcept delegates to the session's MapToConcept.
func (m *Manager) MapToConcept(sessionID string, thoughtRef thought.Ref, name string, parentName *string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return "", thought.ErrSessionNotFound
	}
	return sess.MapToConcept(thoughtRef, name, parentName, m.limits)
}

// LinkThoughts delegates to the session's LinkThoughts.
func (m *Manager) LinkThoughts(sessionID string, from, to thought.Ref, label thought.EdgeLabel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return thought.ErrSessionNotFound
	}
	_, err := sess.LinkThoughts(from, to, label)
	return err
}

// GetSessionStatus returns a snapshot of a live session's state.
func (m *Manager) GetSessionStatus(sessionID string) (SessionInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return SessionInfo{}, thought.ErrSessionNotFound
	}

	return SessionInfo{
		ID:            sess.ID,
		Status:        sess.Status(),
		ThoughtCount:  sess.ThoughtCount(),
		EntityCount:   sess.EntityCount(),
		ConceptCount:  sess.ConceptCount(),
		CurrentDepth:  sess.CurrentDepth(),
		Elapsed:       sess.Elapsed(),
		HasConclusion: len(sess.GetConclusions()) > 0,
	}, nil
}

// GetThoughtChain renders the canonical root-to-ref chain as ThoughtInfo.
func (m *Manager) GetThoughtChain(sessionID string, thoughtRef thought.Ref) ([]ThoughtInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, thought.ErrSessionNotFound
	}

	chain, err := sess.GetChainToRoot(thoughtRef)
	if err != nil {
		return nil, err
	}

	out := make([]ThoughtInfo, 0, len(chain))
	for _, ref := range chain {
		t, ok := sess.GetThought(ref)
		if !ok {
			continue
		}
		out = append(out, ThoughtInfo{
			ID:        t.Ref.String(),
			Content:   t.Content,
			Kind:      t.Kind,
			Certainty: t.Certainty,
			Depth:     t.Depth,
		})
	}
	return out, nil
}

// CleanupStale drops every session whose last activity predates the
// configured session TTL. Sessions removed this way are lost silently;
// callers wanting salvage should CommitPartial before idle expiry.
func (m *Manager) CleanupStale() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if time.Since(sess.LastActivity()) >= m.limits.SessionTTL {
			delete(m.sessions, id)
			removed++
			m.logger.Info("cleaned up stale session", "session_id", id)
		}
	}
	return removed
}

// ActiveSessionCount returns the number of live sessions.
func (m *Manager) ActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ListSessions returns the ids of all live sessions, in no particular
// order (Go map iteration order is not guaranteed).
func (m *Manager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

func bulletList(thoughts []thought.Thought) string {
	lines := make([]string, len(thoughts))
	for i, t := range thoughts {
		lines[i] = "- [" + string(t.Kind) + "] " + t.Content
	}
	return strings.Join(lines, "\n")
}

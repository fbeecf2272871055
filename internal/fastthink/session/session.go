// Package session implements the FastThink in-memory reasoning graph:
// a bounded, single-session arena of thoughts and typed edges with
// entity/concept intern tables. It performs no I/O.
package session

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/fastthink/internal/fastthink/limits"
	"github.com/rpggio/fastthink/internal/fastthink/thought"
)

var sessionGenCounter uint64

func nextSessionGen() uint64 {
	return atomic.AddUint64(&sessionGenCounter, 1)
}

type edgeEntry struct {
	other thought.Ref
	label thought.EdgeLabel
}

// Session is one in-memory directed graph of thoughts for a single
// caller-chosen id. It holds no reference to any persistent store.
type Session struct {
	ID  string
	gen uint64

	nodes []thought.Thought

	// outEdges/inEdges are keyed by slab index and keep insertion
	// order, since get_chain_to_root's canonical-parent rule depends
	// on "first incoming edge" being well defined.
	outEdges map[int][]edgeEntry
	inEdges  map[int][]edgeEntry

	entities map[string]*thought.Entity // keyed by lowercased name
	concepts map[string]*thought.Concept

	thoughtEntities map[int][]string // thought idx -> entity keys (not deduped)
	thoughtConcepts map[int][]string

	startedAt    time.Time
	lastActivity time.Time
	currentDepth int
	root         *thought.Ref
	status       thought.Status
}

// New creates a fresh session in status Thinking.
func New(id string) *Session {
	now := time.Now()
	return &Session{
		ID:              id,
		gen:             nextSessionGen(),
		outEdges:        make(map[int][]edgeEntry),
		inEdges:         make(map[int][]edgeEntry),
		entities:        make(map[string]*thought.Entity),
		concepts:        make(map[string]*thought.Concept),
		thoughtEntities: make(map[int][]string),
		thoughtConcepts: make(map[int][]string),
		startedAt:       now,
		lastActivity:    now,
		status:          thought.StatusThinking,
	}
}

// Status returns the session's current lifecycle status.
func (s *Session) Status() thought.Status { return s.status }

// SetStatus forces the session's status. Used by Manager to move a
// session through NeedsRecall around the store call boundary.
func (s *Session) SetStatus(status thought.Status) { s.status = status }

// ThoughtCount returns the number of thoughts inserted so far.
func (s *Session) ThoughtCount() int { return len(s.nodes) }

// EntityCount returns the number of interned entities.
func (s *Session) EntityCount() int { return len(s.entities) }

// ConceptCount returns the number of interned concepts.
func (s *Session) ConceptCount() int { return len(s.concepts) }

// CurrentDepth returns the max depth over all thoughts inserted.
func (s *Session) CurrentDepth() int { return s.currentDepth }

// StartedAt returns the session's creation time.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// LastActivity returns the time of the most recent mutation.
func (s *Session) LastActivity() time.Time { return s.lastActivity }

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration { return time.Since(s.startedAt) }

// Root returns the session's root thought, if one has been inserted.
func (s *Session) Root() (thought.Ref, bool) {
	if s.root == nil {
		return thought.Ref{}, false
	}
	return *s.root, true
}

func (s *Session) refFor(index int) thought.Ref {
	return thought.NewRef(s.gen, index)
}

func (s *Session) indexOf(ref thought.Ref) (int, bool) {
	if ref.SessionGen() != s.gen {
		return 0, false
	}
	idx := ref.Index()
	if idx < 0 || idx >= len(s.nodes) {
		return 0, false
	}
	return idx, true
}

// GetThought returns the thought at ref, if it exists in this session.
func (s *Session) GetThought(ref thought.Ref) (thought.Thought, bool) {
	idx, ok := s.indexOf(ref)
	if !ok {
		return thought.Thought{}, false
	}
	return s.nodes[idx], true
}

// AddThought inserts a new thought node, optionally attached to parent
// via an edge. Failure ordering follows spec.md section 4.2:
// timeout, then overflow, then depth.
func (s *Session) AddThought(content string, kind thought.Kind, parent *thought.Ref, edgeLabel *thought.EdgeLabel, l limits.Limits) (thought.Ref, error) {
	if s.Elapsed() > l.ThinkingTimeout {
		s.status = thought.StatusTimedOut
		return thought.Ref{}, thought.ErrTimeout
	}

	if len(s.nodes) >= l.MaxThoughts {
		s.status = thought.StatusOverflow
		return thought.Ref{}, thought.ErrTooManyThoughts
	}

	depth := 0
	var parentIdx int
	var hasParent bool
	if parent != nil {
		idx, ok := s.indexOf(*parent)
		if !ok {
			return thought.Ref{}, thought.ErrThoughtNotFound
		}
		depth = s.nodes[idx].Depth + 1
		parentIdx = idx
		hasParent = true
	}

	if depth > l.MaxDepth {
		return thought.Ref{}, thought.ErrTooDeep
	}

	index := len(s.nodes)
	ref := s.refFor(index)
	s.nodes = append(s.nodes, thought.Thought{
		Ref:       ref,
		Content:   content,
		Kind:      kind,
		Certainty: 0.5,
		CreatedAt: time.Now(),
		Depth:     depth,
	})

	if hasParent {
		label := thought.LeadsTo
		if edgeLabel != nil {
			label = *edgeLabel
		}
		s.outEdges[parentIdx] = append(s.outEdges[parentIdx], edgeEntry{other: ref, label: label})
		s.inEdges[index] = append(s.inEdges[index], edgeEntry{other: s.refFor(parentIdx), label: label})
	}

	if s.root == nil {
		rootRef := ref
		s.root = &rootRef
	}

	s.lastActivity = time.Now()
	if depth > s.currentDepth {
		s.currentDepth = depth
	}

	return ref, nil
}

// AddRecalledThought inserts a Recall-kind thought, setting certainty
// and source-memory-id, attached to parent via a Recalled edge.
func (s *Session) AddRecalledThought(content, sourceMemoryID string, certainty float64, parent thought.Ref, l limits.Limits) (thought.Ref, error) {
	label := thought.Recalled
	ref, err := s.AddThought(content, thought.KindRecall, &parent, &label, l)
	if err != nil {
		return thought.Ref{}, err
	}

	idx, _ := s.indexOf(ref)
	if certainty < 0 {
		certainty = 0
	}
	if certainty > 1 {
		certainty = 1
	}
	s.nodes[idx].Certainty = certainty
	id := sourceMemoryID
	s.nodes[idx].SourceMemoryID = &id

	return ref, nil
}

// AddConclusion inserts a Conclusion thought. Parent is supporting[0]
// (edge LeadsTo) if present; every later element gets a Supports edge
// into the conclusion. On success the session moves to Decided; a
// session may accumulate more than one conclusion.
func (s *Session) AddConclusion(content string, supporting []thought.Ref, l limits.Limits) (thought.Ref, error) {
	var parent *thought.Ref
	if len(supporting) > 0 {
		p := supporting[0]
		parent = &p
	}

	label := thought.LeadsTo
	ref, err := s.AddThought(content, thought.KindConclusion, parent, &label, l)
	if err != nil {
		return thought.Ref{}, err
	}

	for _, supportRef := range supporting[minOne(len(supporting)):] {
		if err := s.linkUnchecked(supportRef, ref, thought.Supports); err != nil {
			return thought.Ref{}, err
		}
	}

	s.status = thought.StatusDecided
	return ref, nil
}

func minOne(n int) int {
	if n == 0 {
		return 0
	}
	return 1
}

func (s *Session) linkUnchecked(from, to thought.Ref, label thought.EdgeLabel) error {
	fromIdx, ok := s.indexOf(from)
	if !ok {
		return thought.ErrThoughtNotFound
	}
	toIdx, ok := s.indexOf(to)
	if !ok {
		return thought.ErrThoughtNotFound
	}
	s.outEdges[fromIdx] = append(s.outEdges[fromIdx], edgeEntry{other: to, label: label})
	s.inEdges[toIdx] = append(s.inEdges[toIdx], edgeEntry{other: from, label: label})
	return nil
}

// LinkThoughts adds an edge between two existing thoughts. Unrestricted:
// callers may create cycles, which get_chain_to_root defends against.
func (s *Session) LinkThoughts(from, to thought.Ref, label thought.EdgeLabel) (thought.Edge, error) {
	if err := s.linkUnchecked(from, to, label); err != nil {
		return thought.Edge{}, err
	}
	return thought.Edge{From: from, To: to, Label: label}, nil
}

// ExtractEntity interns an entity by case-insensitive name. If the name
// is already interned, thoughtRef is added to its mentions (deduplicated)
// and the reverse index still records the call (not deduplicated). If
// the table is full and the name is new, fails TooManyEntities.
func (s *Session) ExtractEntity(thoughtRef thought.Ref, name string, entityType thought.EntityType, l limits.Limits) (string, error) {
	if _, ok := s.indexOf(thoughtRef); !ok {
		return "", thought.ErrThoughtNotFound
	}

	idx, _ := s.indexOf(thoughtRef)
	key := strings.ToLower(name)

	if entity, ok := s.entities[key]; ok {
		entity.AddMention(thoughtRef)
		s.thoughtEntities[idx] = append(s.thoughtEntities[idx], key)
		return entity.ID, nil
	}

	if len(s.entities) >= l.MaxEntities {
		return "", thought.ErrTooManyEntities
	}

	entity := &thought.Entity{
		ID:         uuid.NewString(),
		Name:       name,
		Type:       entityType,
		Attributes: make(map[string]string),
	}
	entity.AddMention(thoughtRef)
	s.entities[key] = entity
	s.thoughtEntities[idx] = append(s.thoughtEntities[idx], key)

	return entity.ID, nil
}

// MapToConcept interns a concept by case-insensitive name with the
// same discipline as ExtractEntity. parentName is stored verbatim with
// no referential check against other concepts.
func (s *Session) MapToConcept(thoughtRef thought.Ref, name string, parentName *string, l limits.Limits) (string, error) {
	idx, ok := s.indexOf(thoughtRef)
	if !ok {
		return "", thought.ErrThoughtNotFound
	}

	key := strings.ToLower(name)

	if concept, ok := s.concepts[key]; ok {
		concept.LinkThought(thoughtRef)
		s.thoughtConcepts[idx] = append(s.thoughtConcepts[idx], key)
		return concept.ID, nil
	}

	if len(s.concepts) >= l.MaxConcepts {
		return "", thought.ErrTooManyConcepts
	}

	concept := &thought.Concept{
		ID:     uuid.NewString(),
		Name:   name,
		Parent: parentName,
	}
	concept.LinkThought(thoughtRef)
	s.concepts[key] = concept
	s.thoughtConcepts[idx] = append(s.thoughtConcepts[idx], key)

	return concept.ID, nil
}

// GetChildren returns the outgoing edges from ref in insertion order.
func (s *Session) GetChildren(ref thought.Ref) ([]thought.Edge, error) {
	idx, ok := s.indexOf(ref)
	if !ok {
		return nil, thought.ErrThoughtNotFound
	}
	var edges []thought.Edge
	for _, e := range s.outEdges[idx] {
		edges = append(edges, thought.Edge{From: ref, To: e.other, Label: e.label})
	}
	return edges, nil
}

// GetParents returns the incoming edges to ref in insertion order.
func (s *Session) GetParents(ref thought.Ref) ([]thought.Edge, error) {
	idx, ok := s.indexOf(ref)
	if !ok {
		return nil, thought.ErrThoughtNotFound
	}
	var edges []thought.Edge
	for _, e := range s.inEdges[idx] {
		edges = append(edges, thought.Edge{From: e.other, To: ref, Label: e.label})
	}
	return edges, nil
}

// GetChainToRoot follows the first incoming edge at each step, breaking
// on revisit, and returns the chain reversed so root is first. When a
// node has multiple parents, the first-recorded incoming edge is
// canonical; the result is a spanning path, not all ancestors.
func (s *Session) GetChainToRoot(ref thought.Ref) ([]thought.Ref, error) {
	if _, ok := s.indexOf(ref); !ok {
		return nil, thought.ErrThoughtNotFound
	}

	chain := []thought.Ref{ref}
	visited := map[thought.Ref]bool{ref: true}
	current := ref

	for {
		parents, _ := s.GetParents(current)
		if len(parents) == 0 {
			break
		}
		parent := parents[0].From
		if visited[parent] {
			break
		}
		chain = append(chain, parent)
		visited[parent] = true
		current = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// GetConclusions returns every Conclusion thought, in insertion order.
func (s *Session) GetConclusions() []thought.Thought {
	var out []thought.Thought
	for _, t := range s.nodes {
		if t.IsConclusion() {
			out = append(out, t)
		}
	}
	return out
}

// GetSupportingEvidence renders every Recall thought as
// "[source_memory_id] content", in insertion order.
func (s *Session) GetSupportingEvidence() []string {
	var out []string
	for _, t := range s.nodes {
		if !t.IsRecall() {
			continue
		}
		source := "unknown"
		if t.SourceMemoryID != nil {
			source = *t.SourceMemoryID
		}
		out = append(out, "["+source+"] "+t.Content)
	}
	return out
}

// BuildConclusionContent joins every conclusion's content with newlines,
// or the empty string if there are none.
func (s *Session) BuildConclusionContent() string {
	conclusions := s.GetConclusions()
	if len(conclusions) == 0 {
		return ""
	}
	parts := make([]string, len(conclusions))
	for i, c := range conclusions {
		parts[i] = c.Content
	}
	return strings.Join(parts, "\n")
}

// AllThoughts returns every thought in graph-insertion order. Used by
// commit_partial to render the salvage bullet list.
func (s *Session) AllThoughts() []thought.Thought {
	out := make([]thought.Thought, len(s.nodes))
	copy(out, s.nodes)
	return out
}

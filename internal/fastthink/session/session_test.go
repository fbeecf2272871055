package session_test

import (
	"testing"
	"time"

	"github.com/rpggio/fastthink/internal/fastthink/limits"
	"github.com/rpggio/fastthink/internal/fastthink/session"
	"github.com/rpggio/fastthink/internal/fastthink/thought"
	"github.com/stretchr/testify/require"
)

func TestAddThought_RootAndDepth(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("Should we cache?", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	rootThought, ok := s.GetThought(root)
	require.True(t, ok)
	require.Equal(t, 0, rootThought.Depth)

	gotRoot, ok := s.Root()
	require.True(t, ok)
	require.Equal(t, root, gotRoot)

	child, err := s.AddThought("Traffic is bursty", thought.KindObservation, &root, nil, l)
	require.NoError(t, err)

	childThought, ok := s.GetThought(child)
	require.True(t, ok)
	require.Equal(t, 1, childThought.Depth)
	require.Equal(t, 1, s.CurrentDepth())
}

func TestAddThought_DefaultEdgeLabelIsLeadsTo(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	child, err := s.AddThought("child", thought.KindReasoning, &root, nil, l)
	require.NoError(t, err)

	edges, err := s.GetChildren(root)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, child, edges[0].To)
	require.Equal(t, thought.LeadsTo, edges[0].Label)
}

func TestAddThought_TooDeep(t *testing.T) {
	s := session.New("s1")
	l := limits.Default().WithMaxDepth(2)

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	t1, err := s.AddThought("t1", thought.KindReasoning, &root, nil, l)
	require.NoError(t, err)

	t2, err := s.AddThought("t2", thought.KindReasoning, &t1, nil, l)
	require.NoError(t, err)

	_, err = s.AddThought("t3", thought.KindReasoning, &t2, nil, l)
	require.ErrorIs(t, err, thought.ErrTooDeep)
	require.Equal(t, 3, s.ThoughtCount())
	require.Equal(t, thought.StatusThinking, s.Status())
}

func TestAddThought_Overflow(t *testing.T) {
	s := session.New("s1")
	l := limits.Default().WithMaxThoughts(1)

	_, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	before := s.ThoughtCount()
	_, err = s.AddThought("too many", thought.KindReasoning, nil, nil, l)
	require.ErrorIs(t, err, thought.ErrTooManyThoughts)
	require.Equal(t, thought.StatusOverflow, s.Status())
	require.Equal(t, before, s.ThoughtCount())
}

func TestAddThought_Timeout(t *testing.T) {
	s := session.New("s1")
	l := limits.Default().WithTimeout(10 * time.Millisecond)

	_, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = s.AddThought("late", thought.KindReasoning, nil, nil, l)
	require.ErrorIs(t, err, thought.ErrTimeout)
	require.Equal(t, thought.StatusTimedOut, s.Status())

	// Timeout is sticky: a later call also fails Timeout.
	_, err = s.AddThought("later still", thought.KindReasoning, nil, nil, l)
	require.ErrorIs(t, err, thought.ErrTimeout)
}

func TestAddConclusion_SingleSupportAndMultiple(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)
	t1, err := s.AddThought("t1", thought.KindObservation, &root, nil, l)
	require.NoError(t, err)

	conclusion, err := s.AddConclusion("Adopt LRU cache", []thought.Ref{t1}, l)
	require.NoError(t, err)
	require.Equal(t, thought.StatusDecided, s.Status())

	parents, err := s.GetParents(conclusion)
	require.NoError(t, err)
	require.Len(t, parents, 1)
	require.Equal(t, t1, parents[0].From)
	require.Equal(t, thought.LeadsTo, parents[0].Label)

	// A second conclusion is permitted; both are returned.
	_, err = s.AddConclusion("Adopt LFU cache too", []thought.Ref{t1}, l)
	require.NoError(t, err)
	require.Len(t, s.GetConclusions(), 2)
}

func TestAddConclusion_SupportingBeyondFirstGetsSupportsEdge(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)
	t1, err := s.AddThought("t1", thought.KindObservation, &root, nil, l)
	require.NoError(t, err)
	t2, err := s.AddThought("t2", thought.KindObservation, &root, nil, l)
	require.NoError(t, err)

	conclusion, err := s.AddConclusion("Use LRU", []thought.Ref{t1, t2}, l)
	require.NoError(t, err)

	parents, err := s.GetParents(conclusion)
	require.NoError(t, err)
	require.Len(t, parents, 2)
	require.Equal(t, t1, parents[0].From)
	require.Equal(t, thought.LeadsTo, parents[0].Label)
	require.Equal(t, t2, parents[1].From)
	require.Equal(t, thought.Supports, parents[1].Label)
}

func TestGetChainToRoot(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	chain, err := s.GetChainToRoot(root)
	require.NoError(t, err)
	require.Equal(t, []thought.Ref{root}, chain)

	t1, err := s.AddThought("t1", thought.KindReasoning, &root, nil, l)
	require.NoError(t, err)
	t2, err := s.AddThought("t2", thought.KindReasoning, &t1, nil, l)
	require.NoError(t, err)

	chain, err = s.GetChainToRoot(t2)
	require.NoError(t, err)
	require.Equal(t, []thought.Ref{root, t1, t2}, chain)
}

func TestGetChainToRoot_BreaksOnCycle(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)
	t1, err := s.AddThought("t1", thought.KindReasoning, &root, nil, l)
	require.NoError(t, err)

	// Create a cycle: t1 -> root via an unrestricted link.
	_, err = s.LinkThoughts(t1, root, thought.Implies)
	require.NoError(t, err)

	chain, err := s.GetChainToRoot(t1)
	require.NoError(t, err)
	require.Equal(t, []thought.Ref{root, t1}, chain)
}

func TestExtractEntity_CaseInsensitiveIdempotent(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("Rust is fast", thought.KindObservation, nil, nil, l)
	require.NoError(t, err)

	id1, err := s.ExtractEntity(root, "Rust", thought.EntityTechnology, l)
	require.NoError(t, err)

	id2, err := s.ExtractEntity(root, "RUST", thought.EntityTechnology, l)
	require.NoError(t, err)

	require.Equal(t, id1, id2)
	require.Equal(t, 1, s.EntityCount())
}

func TestExtractEntity_TooManyEntities(t *testing.T) {
	s := session.New("s1")
	l := limits.Default().WithMaxEntities(1)

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	_, err = s.ExtractEntity(root, "Rust", thought.EntityTechnology, l)
	require.NoError(t, err)

	_, err = s.ExtractEntity(root, "Go", thought.EntityTechnology, l)
	require.ErrorIs(t, err, thought.ErrTooManyEntities)
}

func TestMapToConcept_Idempotent(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	id1, err := s.MapToConcept(root, "caching", nil, l)
	require.NoError(t, err)
	before := s.ConceptCount()

	id2, err := s.MapToConcept(root, "Caching", nil, l)
	require.NoError(t, err)

	require.Equal(t, id1, id2)
	require.Equal(t, before, s.ConceptCount())
}

func TestLinkThoughts_ThoughtNotFound(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	other := session.New("s2")
	badRef, err := other.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	_, err = s.LinkThoughts(root, badRef, thought.Implies)
	require.ErrorIs(t, err, thought.ErrThoughtNotFound)
}

func TestGetSupportingEvidenceAndBuildConclusionContent(t *testing.T) {
	s := session.New("s1")
	l := limits.Default()

	root, err := s.AddThought("root", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	r1, err := s.AddRecalledThought("LRU works for bursty", "m7", 0.9, root, l)
	require.NoError(t, err)
	_, err = s.AddRecalledThought("LFU for skew", "m8", 0.7, root, l)
	require.NoError(t, err)

	evidence := s.GetSupportingEvidence()
	require.Equal(t, []string{"[m7] LRU works for bursty", "[m8] LFU for skew"}, evidence)

	_, err = s.AddConclusion("Use LRU", []thought.Ref{r1}, l)
	require.NoError(t, err)

	require.Equal(t, "Use LRU", s.BuildConclusionContent())
}

func TestBuildConclusionContent_EmptyWhenNoConclusions(t *testing.T) {
	s := session.New("s1")
	require.Equal(t, "", s.BuildConclusionContent())
}

func TestRefFromDifferentSessionNeverAliases(t *testing.T) {
	l := limits.Default()

	s1 := session.New("same-id")
	ref1, err := s1.AddThought("first generation", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	s2 := session.New("same-id")
	ref2, err := s2.AddThought("second generation", thought.KindInitial, nil, nil, l)
	require.NoError(t, err)

	// Same slab index (0), different session generation: a ref minted
	// by the first session must not resolve against the second.
	_, ok := s2.GetThought(ref1)
	require.False(t, ok)

	got, ok := s2.GetThought(ref2)
	require.True(t, ok)
	require.Equal(t, "second generation", got.Content)
}

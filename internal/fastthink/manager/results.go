package manager

import (
	"time"

	"github.com/rpggio/fastthink/internal/fastthink/thought"
)

// CommitResult is returned by Commit and CommitPartial.
type CommitResult struct {
	MemoryID          string
	ThoughtsProcessed int
	EntitiesExtracted int
	ConceptsMapped    int
	Elapsed           time.Duration
}

// DiscardResult is returned by Discard.
type DiscardResult struct {
	ThoughtsDiscarded int
	Elapsed           time.Duration
}

// SessionInfo is a snapshot of a live session's state.
type SessionInfo struct {
	ID            string
	Status        thought.Status
	ThoughtCount  int
	EntityCount   int
	ConceptCount  int
	CurrentDepth  int
	Elapsed       time.Duration
	HasConclusion bool
}

// ThoughtInfo is a lightweight view of a thought for chain rendering.
type ThoughtInfo struct {
	ID        string
	Content   string
	Kind      thought.Kind
	Certainty float64
	Depth     int
}

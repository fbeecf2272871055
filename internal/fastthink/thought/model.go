// Package thought holds the FastThink graph's node and edge vocabulary:
// thought and entity kinds, the opaque reference types a Session hands
// out, and the error taxonomy every FastThink operation returns.
package thought

import (
	"fmt"
	"time"
)

// Kind classifies a thought node.
type Kind string

const (
	KindInitial     Kind = "initial"
	KindReasoning   Kind = "reasoning"
	KindRecall      Kind = "recall"
	KindHypothesis  Kind = "hypothesis"
	KindConclusion  Kind = "conclusion"
	KindQuestion    Kind = "question"
	KindObservation Kind = "observation"
)

// EdgeLabel classifies a directed arc between two thoughts.
type EdgeLabel string

const (
	LeadsTo     EdgeLabel = "leads_to"
	Recalled    EdgeLabel = "recalled"
	Supports    EdgeLabel = "supports"
	Contradicts EdgeLabel = "contradicts"
	Implies     EdgeLabel = "implies"
	Because     EdgeLabel = "because"
	Refines     EdgeLabel = "refines"
	Questions   EdgeLabel = "questions"
)

// EntityType classifies an interned entity.
type EntityType string

const (
	EntityPerson       EntityType = "person"
	EntityOrganization EntityType = "organization"
	EntityLocation     EntityType = "location"
	EntityConcept      EntityType = "concept"
	EntityObject       EntityType = "object"
	EntityAction       EntityType = "action"
	EntityEvent        EntityType = "event"
	EntityTechnology   EntityType = "technology"
	EntityOther        EntityType = "other"
)

// Status is a session's lifecycle state.
type Status string

const (
	StatusThinking    Status = "thinking"
	StatusNeedsRecall Status = "needs_recall"
	StatusDecided     Status = "decided"
	StatusTimedOut    Status = "timed_out"
	StatusOverflow    Status = "overflow"
	StatusCommitted   Status = "committed"
	StatusDiscarded   Status = "discarded"
)

// Ref is an opaque handle to a thought within one session. It is only
// valid against the session that produced it: Ref carries the
// session's generation so a ref from a discarded session can never be
// mistaken for a node in a later session that reused the same id.
type Ref struct {
	sessionGen uint64
	index      int
}

// NewRef builds a Ref for the given session generation and slab index.
// Exported for use by the session package, which owns the slab.
func NewRef(sessionGen uint64, index int) Ref {
	return Ref{sessionGen: sessionGen, index: index}
}

// SessionGen returns the generation of the session this ref belongs to.
func (r Ref) SessionGen() uint64 { return r.sessionGen }

// Index returns the slab index this ref addresses.
func (r Ref) Index() int { return r.index }

// IsZero reports whether r is the zero Ref (never returned by a session).
func (r Ref) IsZero() bool { return r.sessionGen == 0 && r.index == 0 }

// String renders a stable textual id for the thought this ref
// addresses, suitable for ThoughtInfo.ID and similar external views.
func (r Ref) String() string {
	return fmt.Sprintf("%d-%d", r.sessionGen, r.index)
}

// Thought is one node in a session's reasoning graph.
type Thought struct {
	Ref             Ref
	Content         string
	Kind            Kind
	Certainty       float64
	CreatedAt       time.Time
	Depth           int
	SourceMemoryID  *string
}

// IsConclusion reports whether this thought is a Conclusion node.
func (t Thought) IsConclusion() bool { return t.Kind == KindConclusion }

// IsRecall reports whether this thought is a Recall node.
func (t Thought) IsRecall() bool { return t.Kind == KindRecall }

// Edge is a labeled directed arc between two thoughts.
type Edge struct {
	From  Ref
	To    Ref
	Label EdgeLabel
}

// Entity is an interned, case-insensitively deduplicated named entity.
type Entity struct {
	ID         string
	Name       string
	Type       EntityType
	Mentions   []Ref
	Attributes map[string]string
}

// AddMention records thoughtRef as mentioning this entity, deduplicated.
func (e *Entity) AddMention(thoughtRef Ref) {
	for _, existing := range e.Mentions {
		if existing == thoughtRef {
			return
		}
	}
	e.Mentions = append(e.Mentions, thoughtRef)
}

// Concept is an interned, case-insensitively deduplicated named concept.
type Concept struct {
	ID             string
	Name           string
	Parent         *string
	LinkedThoughts []Ref
}

// LinkThought records thoughtRef as linked to this concept, deduplicated.
func (c *Concept) LinkThought(thoughtRef Ref) {
	for _, existing := range c.LinkedThoughts {
		if existing == thoughtRef {
			return
		}
	}
	c.LinkedThoughts = append(c.LinkedThoughts, thoughtRef)
}

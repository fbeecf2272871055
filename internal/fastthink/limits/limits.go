// Package limits defines the budget parameters a FastThink session is
// held to and the presets callers select from.
package limits

import "time"

// Limits bounds the resources a single thinking session may consume.
type Limits struct {
	MaxThoughts      int
	MaxEntities      int
	MaxConcepts      int
	MaxDepth         int
	ThinkingTimeout  time.Duration
	SessionTTL       time.Duration
	MaxRecallResults int
}

// Default returns the standard budget for an interactive session.
func Default() Limits {
	return Limits{
		MaxThoughts:      100,
		MaxEntities:      50,
		MaxConcepts:      30,
		MaxDepth:         10,
		ThinkingTimeout:  30 * time.Second,
		SessionTTL:       300 * time.Second,
		MaxRecallResults: 5,
	}
}

// Strict returns a tighter budget for cheap or low-trust callers.
func Strict() Limits {
	return Limits{
		MaxThoughts:      50,
		MaxEntities:      25,
		MaxConcepts:      15,
		MaxDepth:         5,
		ThinkingTimeout:  15 * time.Second,
		SessionTTL:       120 * time.Second,
		MaxRecallResults: 3,
	}
}

// Relaxed returns a generous budget for long-running or trusted sessions.
func Relaxed() Limits {
	return Limits{
		MaxThoughts:      200,
		MaxEntities:      100,
		MaxConcepts:      50,
		MaxDepth:         15,
		ThinkingTimeout:  60 * time.Second,
		SessionTTL:       600 * time.Second,
		MaxRecallResults: 10,
	}
}

// WithMaxThoughts returns a copy of l with MaxThoughts overridden.
func (l Limits) WithMaxThoughts(max int) Limits {
	l.MaxThoughts = max
	return l
}

// WithMaxEntities returns a copy of l with MaxEntities overridden.
func (l Limits) WithMaxEntities(max int) Limits {
	l.MaxEntities = max
	return l
}

// WithMaxConcepts returns a copy of l with MaxConcepts overridden.
func (l Limits) WithMaxConcepts(max int) Limits {
	l.MaxConcepts = max
	return l
}

// WithMaxDepth returns a copy of l with MaxDepth overridden.
func (l Limits) WithMaxDepth(depth int) Limits {
	l.MaxDepth = depth
	return l
}

// WithTimeout returns a copy of l with ThinkingTimeout overridden.
func (l Limits) WithTimeout(timeout time.Duration) Limits {
	l.ThinkingTimeout = timeout
	return l
}

// WithSessionTTL returns a copy of l with SessionTTL overridden.
func (l Limits) WithSessionTTL(ttl time.Duration) Limits {
	l.SessionTTL = ttl
	return l
}

// WithMaxRecallResults returns a copy of l with MaxRecallResults overridden.
func (l Limits) WithMaxRecallResults(max int) Limits {
	l.MaxRecallResults = max
	return l
}

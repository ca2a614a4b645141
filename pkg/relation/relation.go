// Package relation extracts typed, directed relations between canonical
// concepts from transcript chunks. Two interchangeable strategies exist: a
// deterministic verb-pattern matcher and an LLM-backed extractor.
package relation

import (
	"context"
	"strings"

	"github.com/transcriptlab/conceptgraph/pkg/concept"
)

// Chunk is one transcript segment with its position and detected language.
type Chunk struct {
	Index int
	Text  string
	Lang  string // "en" or "es"
}

// Triple is a single extracted relation with its supporting quote.
type Triple struct {
	Source   string
	Relation string
	Target   string
	Evidence string
}

// PatternRelations is the closed vocabulary emitted by the verb-pattern
// strategy.
var PatternRelations = []string{
	"is_a", "has", "includes", "causes", "leads_to", "enables",
	"uses", "requires", "depends_on", "improves", "reduces", "increases",
}

// LLMRelations is the smaller closed vocabulary offered to the model; a
// tighter set keeps the model from inventing relation names.
var LLMRelations = []string{
	"is_a", "part_of", "depends_on", "causes", "used_for", "related_to",
}

// InVocab reports whether rel is a member of vocab.
func InVocab(vocab []string, rel string) bool {
	for _, v := range vocab {
		if v == rel {
			return true
		}
	}
	return false
}

// Strategy extracts relation triples from a single chunk given the canonical
// concept set. Implementations must be safe for concurrent use; chunks are
// fanned out in parallel.
type Strategy interface {
	Name() string
	Vocabulary() []string
	Extract(ctx context.Context, chunk Chunk, concepts []concept.CanonicalConcept) ([]Triple, error)
}

// presentConcepts returns the concepts whose label occurs in text, preserving
// concept order. Matching is on the normalized lowercase label against the
// lowercased text.
func presentConcepts(text string, concepts []concept.CanonicalConcept) []concept.CanonicalConcept {
	lower := strings.ToLower(text)
	var present []concept.CanonicalConcept
	for _, c := range concepts {
		if c.Label != "" && strings.Contains(lower, c.Label) {
			present = append(present, c)
		}
	}
	return present
}

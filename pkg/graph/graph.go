// Package graph assembles extracted relation triples into a weighted concept
// graph, orchestrates the full transcript-to-graph pipeline, and serializes
// the result.
package graph

import (
	"errors"
	"sort"
	"strings"

	"github.com/transcriptlab/conceptgraph/pkg/concept"
	"github.com/transcriptlab/conceptgraph/pkg/relation"
)

// Fatal pipeline states. A graph with zero nodes is not a valid output.
var (
	ErrEmptyTranscript = errors.New("transcript is empty after cleaning")
	ErrNoConcepts      = errors.New("no concepts survived frequency thresholding")
)

const (
	maxEvidencePerEdge = 3
	evidenceSeparator  = " | "
)

// Node is one canonical concept in the final graph.
type Node struct {
	ID        string `json:"id"`
	Frequency int    `json:"frequency"`
}

// Edge is one merged, weighted relation.
type Edge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
	Weight   int    `json:"weight"`
	Evidence string `json:"evidence"`
}

// Metadata describes the run that produced a graph.
type Metadata struct {
	RunID      string         `json:"run_id"`
	Strategy   string         `json:"strategy"`
	Vocabulary []string       `json:"vocabulary"`
	Languages  map[string]int `json:"languages,omitempty"` // chunk count per detected language
	Config     ConfigEcho     `json:"config"`
}

// ConfigEcho records the knobs a run used, for audit.
type ConfigEcho struct {
	MinFreq        int `json:"min_freq"`
	MaxConcepts    int `json:"max_concepts"`
	FuzzyThreshold int `json:"fuzzy_threshold"`
	MaxChunkChars  int `json:"max_chunk_chars"`
	MaxEdges       int `json:"max_edges,omitempty"`
}

// ConceptGraph is the final pipeline output.
type ConceptGraph struct {
	Nodes []Node   `json:"nodes"`
	Edges []Edge   `json:"edges"`
	Meta  Metadata `json:"metadata"`
}

type edgeKey struct {
	source   string
	relation string
	target   string
}

type edgeAgg struct {
	weight   int
	evidence []string
}

// Assembler merges relation triples from any number of chunks, in any order,
// into weighted edges. The counter-based merge is commutative, so chunk
// results may arrive out of order.
type Assembler struct {
	concepts []concept.CanonicalConcept
	known    map[string]bool
	edges    map[edgeKey]*edgeAgg
	maxEdges int
}

// NewAssembler creates an assembler over the canonical concept set. maxEdges
// caps the final edge list by weight; 0 means unlimited.
func NewAssembler(concepts []concept.CanonicalConcept, maxEdges int) *Assembler {
	known := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		known[c.Label] = true
	}
	return &Assembler{
		concepts: concepts,
		known:    known,
		edges:    make(map[edgeKey]*edgeAgg),
		maxEdges: maxEdges,
	}
}

// Add merges one triple into the running counters. Triples with unknown
// endpoints or equal source and target are dropped. Evidence is kept up to
// maxEvidencePerEdge distinct strings per edge.
func (a *Assembler) Add(t relation.Triple) {
	if !a.known[t.Source] || !a.known[t.Target] || t.Source == t.Target {
		return
	}

	key := edgeKey{source: t.Source, relation: t.Relation, target: t.Target}
	agg, ok := a.edges[key]
	if !ok {
		agg = &edgeAgg{}
		a.edges[key] = agg
	}
	agg.weight++

	if t.Evidence == "" || len(agg.evidence) >= maxEvidencePerEdge {
		return
	}
	for _, e := range agg.evidence {
		if e == t.Evidence {
			return
		}
	}
	agg.evidence = append(agg.evidence, t.Evidence)
}

// AddAll merges a batch of triples.
func (a *Assembler) AddAll(triples []relation.Triple) {
	for _, t := range triples {
		a.Add(t)
	}
}

// Build produces the final node and edge lists. Nodes follow canonical
// concept order; edges are sorted by descending weight with a deterministic
// tiebreak, then capped at maxEdges.
func (a *Assembler) Build() ([]Node, []Edge) {
	nodes := make([]Node, 0, len(a.concepts))
	for _, c := range a.concepts {
		nodes = append(nodes, Node{ID: c.Label, Frequency: c.Freq})
	}

	edges := make([]Edge, 0, len(a.edges))
	for key, agg := range a.edges {
		edges = append(edges, Edge{
			Source:   key.source,
			Target:   key.target,
			Relation: key.relation,
			Weight:   agg.weight,
			Evidence: strings.Join(agg.evidence, evidenceSeparator),
		})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Weight != edges[j].Weight {
			return edges[i].Weight > edges[j].Weight
		}
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		if edges[i].Relation != edges[j].Relation {
			return edges[i].Relation < edges[j].Relation
		}
		return edges[i].Target < edges[j].Target
	})
	if a.maxEdges > 0 && len(edges) > a.maxEdges {
		edges = edges[:a.maxEdges]
	}

	return nodes, edges
}

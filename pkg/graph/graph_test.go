package graph

import (
	"strings"
	"testing"

	"github.com/transcriptlab/conceptgraph/pkg/concept"
	"github.com/transcriptlab/conceptgraph/pkg/relation"
)

func testConcepts() []concept.CanonicalConcept {
	return []concept.CanonicalConcept{
		{ID: "C001", Label: "machine learning", Freq: 5},
		{ID: "C002", Label: "artificial intelligence", Freq: 3},
		{ID: "C003", Label: "large datasets", Freq: 2},
	}
}

func triple(source, rel, target, evidence string) relation.Triple {
	return relation.Triple{Source: source, Relation: rel, Target: target, Evidence: evidence}
}

func TestAssemblerAccumulatesWeight(t *testing.T) {
	a := NewAssembler(testConcepts(), 0)
	a.Add(triple("machine learning", "is_a", "artificial intelligence", "first mention"))
	a.Add(triple("machine learning", "is_a", "artificial intelligence", "second mention"))
	a.Add(triple("machine learning", "requires", "large datasets", "needs data"))

	_, edges := a.Build()
	if len(edges) != 2 {
		t.Fatalf("got %d edges, want 2", len(edges))
	}
	if edges[0].Weight != 2 {
		t.Errorf("heaviest edge weight = %d, want 2", edges[0].Weight)
	}
	if edges[0].Relation != "is_a" {
		t.Errorf("heaviest edge relation = %q, want is_a", edges[0].Relation)
	}
	if edges[0].Evidence != "first mention"+evidenceSeparator+"second mention" {
		t.Errorf("evidence = %q", edges[0].Evidence)
	}
}

func TestAssemblerMergeIsOrderIndependent(t *testing.T) {
	triples := []relation.Triple{
		triple("machine learning", "is_a", "artificial intelligence", "a"),
		triple("machine learning", "requires", "large datasets", "b"),
		triple("machine learning", "is_a", "artificial intelligence", "c"),
	}

	forward := NewAssembler(testConcepts(), 0)
	forward.AddAll(triples)

	backward := NewAssembler(testConcepts(), 0)
	for i := len(triples) - 1; i >= 0; i-- {
		backward.Add(triples[i])
	}

	_, fe := forward.Build()
	_, be := backward.Build()
	if len(fe) != len(be) {
		t.Fatalf("edge counts differ: %d vs %d", len(fe), len(be))
	}
	for i := range fe {
		if fe[i].Weight != be[i].Weight || fe[i].Source != be[i].Source ||
			fe[i].Relation != be[i].Relation || fe[i].Target != be[i].Target {
			t.Errorf("edge %d differs: %+v vs %+v", i, fe[i], be[i])
		}
	}
}

func TestAssemblerCapsEvidence(t *testing.T) {
	a := NewAssembler(testConcepts(), 0)
	for _, ev := range []string{"one", "two", "three", "four", "one"} {
		a.Add(triple("machine learning", "uses", "large datasets", ev))
	}

	_, edges := a.Build()
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0].Weight != 5 {
		t.Errorf("weight = %d, want 5", edges[0].Weight)
	}
	parts := strings.Split(edges[0].Evidence, evidenceSeparator)
	if len(parts) != maxEvidencePerEdge {
		t.Errorf("got %d evidence strings, want %d: %q", len(parts), maxEvidencePerEdge, edges[0].Evidence)
	}
}

func TestAssemblerSkipsInvalidTriples(t *testing.T) {
	a := NewAssembler(testConcepts(), 0)
	a.Add(triple("machine learning", "is_a", "machine learning", "self loop"))
	a.Add(triple("unknown concept", "is_a", "machine learning", "bad source"))
	a.Add(triple("machine learning", "is_a", "unknown concept", "bad target"))

	_, edges := a.Build()
	if len(edges) != 0 {
		t.Errorf("got %d edges, want 0: %+v", len(edges), edges)
	}
}

func TestAssemblerCapsEdges(t *testing.T) {
	a := NewAssembler(testConcepts(), 1)
	a.Add(triple("machine learning", "is_a", "artificial intelligence", ""))
	a.Add(triple("machine learning", "is_a", "artificial intelligence", ""))
	a.Add(triple("machine learning", "requires", "large datasets", ""))

	_, edges := a.Build()
	if len(edges) != 1 {
		t.Fatalf("got %d edges, want 1", len(edges))
	}
	if edges[0].Relation != "is_a" {
		t.Errorf("surviving edge = %+v, want the heavier is_a edge", edges[0])
	}
}

func TestAssemblerNodesCarryFrequency(t *testing.T) {
	a := NewAssembler(testConcepts(), 0)
	nodes, _ := a.Build()

	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	if nodes[0].ID != "machine learning" || nodes[0].Frequency != 5 {
		t.Errorf("node[0] = %+v", nodes[0])
	}
}

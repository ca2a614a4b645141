package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/transcriptlab/conceptgraph/pkg/concept"
	"github.com/transcriptlab/conceptgraph/pkg/nlp"
	"github.com/transcriptlab/conceptgraph/pkg/relation"
)

func tok(text string, tag nlp.Tag, stop bool) nlp.Token {
	return nlp.Token{Text: text, Tag: tag, Stop: stop}
}

// fakeAnalyzer returns one canned analysis for every chunk.
type fakeAnalyzer struct {
	analysis *nlp.Analysis
	err      error
}

func (f *fakeAnalyzer) Lang() string { return "en" }

func (f *fakeAnalyzer) Analyze(string) (*nlp.Analysis, error) {
	return f.analysis, f.err
}

func lectureAnalysis() *nlp.Analysis {
	return &nlp.Analysis{Sentences: []nlp.Sentence{
		{
			Text: "Machine learning is a type of artificial intelligence.",
			Tokens: []nlp.Token{
				tok("Machine", nlp.TagNoun, false), tok("learning", nlp.TagNoun, false),
				tok("is", nlp.TagVerb, true), tok("a", nlp.TagDeterminer, true),
				tok("type", nlp.TagNoun, false), tok("of", nlp.TagAdposition, true),
				tok("artificial", nlp.TagAdjective, false), tok("intelligence", nlp.TagNoun, false),
				tok(".", nlp.TagPunct, false),
			},
			NounPhrases: []nlp.Span{
				{Start: 0, End: 2, Text: "Machine learning"},
				{Start: 6, End: 8, Text: "artificial intelligence"},
			},
		},
		{
			Text: "Machine learning requires large datasets.",
			Tokens: []nlp.Token{
				tok("Machine", nlp.TagNoun, false), tok("learning", nlp.TagNoun, false),
				tok("requires", nlp.TagVerb, false), tok("large", nlp.TagAdjective, false),
				tok("datasets", nlp.TagNoun, false), tok(".", nlp.TagPunct, false),
			},
			NounPhrases: []nlp.Span{
				{Start: 0, End: 2, Text: "Machine learning"},
				{Start: 3, End: 5, Text: "large datasets"},
			},
		},
		{
			Text: "Artificial intelligence causes job displacement.",
			Tokens: []nlp.Token{
				tok("Artificial", nlp.TagAdjective, false), tok("intelligence", nlp.TagNoun, false),
				tok("causes", nlp.TagVerb, false), tok("job", nlp.TagNoun, false),
				tok("displacement", nlp.TagNoun, false), tok(".", nlp.TagPunct, false),
			},
			NounPhrases: []nlp.Span{
				{Start: 0, End: 2, Text: "Artificial intelligence"},
				{Start: 3, End: 5, Text: "job displacement"},
			},
		},
	}}
}

const lectureTranscript = "Machine learning is a type of artificial intelligence. " +
	"Machine learning requires large datasets. " +
	"Artificial intelligence causes job displacement."

func lecturePipeline(analyzer nlp.Pipeline) (*Pipeline, *nlp.Cache) {
	cache := nlp.NewCache()
	cache.Put("en", analyzer)

	cfg := DefaultConfig()
	cfg.Concept = concept.Config{MinFreq: 1, MaxConcepts: 30, FuzzyThreshold: 92}

	return New(relation.NewPatternStrategy(cache), cache, cfg), cache
}

func TestPipelineEndToEnd(t *testing.T) {
	p, _ := lecturePipeline(&fakeAnalyzer{analysis: lectureAnalysis()})

	res, err := p.Run(context.Background(), lectureTranscript)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	nodeFreq := make(map[string]int)
	for _, n := range res.Graph.Nodes {
		nodeFreq[n.ID] = n.Frequency
	}
	for _, want := range []string{
		"machine learning", "artificial intelligence", "large datasets", "job displacement",
	} {
		if nodeFreq[want] == 0 {
			t.Errorf("missing concept node %q (nodes: %v)", want, nodeFreq)
		}
	}

	type key struct{ source, rel, target string }
	weights := make(map[key]int)
	for _, e := range res.Graph.Edges {
		weights[key{e.Source, e.Relation, e.Target}] = e.Weight
	}
	for _, want := range []key{
		{"machine learning", "is_a", "artificial intelligence"},
		{"machine learning", "requires", "large datasets"},
		{"artificial intelligence", "causes", "job displacement"},
	} {
		if weights[want] != 1 {
			t.Errorf("edge %v weight = %d, want 1", want, weights[want])
		}
	}

	if res.Graph.Meta.Strategy != "pattern" {
		t.Errorf("strategy = %q, want pattern", res.Graph.Meta.Strategy)
	}
	if res.Graph.Meta.RunID == "" {
		t.Error("run id should be set")
	}
	if res.Graph.Meta.Languages["en"] != 1 {
		t.Errorf("languages = %v, want one en chunk", res.Graph.Meta.Languages)
	}
	if len(res.RawEdges) != 3 {
		t.Errorf("got %d raw edges, want 3: %+v", len(res.RawEdges), res.RawEdges)
	}
	for _, e := range res.RawEdges {
		if e.ChunkIndex != 0 {
			t.Errorf("raw edge chunk index = %d, want 0", e.ChunkIndex)
		}
	}
}

func TestPipelineEmptyTranscript(t *testing.T) {
	p, _ := lecturePipeline(&fakeAnalyzer{analysis: lectureAnalysis()})

	_, err := p.Run(context.Background(), "  [00:01] \n Speaker: ")
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("err = %v, want ErrEmptyTranscript", err)
	}
}

func TestPipelineNoConcepts(t *testing.T) {
	p, _ := lecturePipeline(&fakeAnalyzer{analysis: &nlp.Analysis{}})

	_, err := p.Run(context.Background(), "Some transcript text with no extractable concepts at all.")
	if !errors.Is(err, ErrNoConcepts) {
		t.Errorf("err = %v, want ErrNoConcepts", err)
	}
}

func TestPipelineAnalyzerFailureDegrades(t *testing.T) {
	// Every chunk fails candidate extraction, so no concepts survive.
	p, _ := lecturePipeline(&fakeAnalyzer{err: errors.New("parser exploded")})

	_, err := p.Run(context.Background(), lectureTranscript)
	if !errors.Is(err, ErrNoConcepts) {
		t.Errorf("err = %v, want ErrNoConcepts after degraded chunks", err)
	}
}

// failingStrategy simulates a model outage for every chunk.
type failingStrategy struct{}

func (failingStrategy) Name() string         { return "llm" }
func (failingStrategy) Vocabulary() []string { return relation.LLMRelations }

func (failingStrategy) Extract(context.Context, relation.Chunk, []concept.CanonicalConcept) ([]relation.Triple, error) {
	return nil, errors.New("connection refused")
}

func TestPipelineRelationFailureProducesEmptyGraph(t *testing.T) {
	cache := nlp.NewCache()
	cache.Put("en", &fakeAnalyzer{analysis: lectureAnalysis()})

	cfg := DefaultConfig()
	cfg.Concept = concept.Config{MinFreq: 1, MaxConcepts: 30, FuzzyThreshold: 92}
	p := New(failingStrategy{}, cache, cfg)

	res, err := p.Run(context.Background(), lectureTranscript)
	if err != nil {
		t.Fatalf("per-chunk relation failures must not abort the run, got: %v", err)
	}
	if len(res.Graph.Edges) != 0 {
		t.Errorf("got %d edges, want 0", len(res.Graph.Edges))
	}
	if len(res.Graph.Nodes) == 0 {
		t.Error("nodes should still be present when relation extraction fails")
	}
}

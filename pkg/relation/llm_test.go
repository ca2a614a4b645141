package relation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/transcriptlab/conceptgraph/pkg/ai"
	"github.com/transcriptlab/conceptgraph/pkg/concept"
)

// mockClient scripts the two completion paths: formatResponse feeds the
// structured attempt, repairResponse the repair round-trip.
type mockClient struct {
	formatResponse string
	formatErr      error
	repairResponse string
	repairErr      error

	formatCalls int
	repairCalls int
	lastPrompt  string
	lastSystem  []string
}

func (m *mockClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	m.repairCalls++
	m.lastPrompt = prompt
	return m.repairResponse, m.repairErr
}

func (m *mockClient) GenerateCompletionWithFormat(ctx context.Context, name, description, prompt string, out any, opts ...ai.GenerateOption) (string, error) {
	m.formatCalls++
	m.lastPrompt = prompt

	options := &ai.GenerateOptions{}
	for _, opt := range opts {
		opt(options)
	}
	m.lastSystem = options.SystemPrompts

	if m.formatErr != nil {
		return m.formatResponse, m.formatErr
	}
	if err := ai.UnmarshalFlexible(m.formatResponse, out); err != nil {
		return m.formatResponse, err
	}
	return m.formatResponse, nil
}

func (m *mockClient) ResetMetrics()               {}
func (m *mockClient) GetMetrics() ai.ModelMetrics { return ai.ModelMetrics{} }

func llmConcepts() []concept.CanonicalConcept {
	return []concept.CanonicalConcept{
		{ID: "C001", Label: "machine learning", Freq: 3},
		{ID: "C002", Label: "neural networks", Freq: 2},
	}
}

func llmChunk() Chunk {
	return Chunk{
		Index: 1,
		Text:  "Machine learning is often implemented with neural networks.",
		Lang:  "en",
	}
}

const validEdges = `{"edges":[{"source":"C001","relation":"depends_on","target":"C002","evidence":"often implemented with neural networks"}]}`

func TestLLMExtractValidResponse(t *testing.T) {
	client := &mockClient{formatResponse: validEdges}
	s := NewLLMStrategy(client, "test-model", time.Second)

	got, err := s.Extract(context.Background(), llmChunk(), llmConcepts())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d triples, want 1: %+v", len(got), got)
	}
	tr := got[0]
	if tr.Source != "machine learning" || tr.Target != "neural networks" || tr.Relation != "depends_on" {
		t.Errorf("triple = %+v", tr)
	}
	if client.repairCalls != 0 {
		t.Errorf("repair called %d times, want 0", client.repairCalls)
	}
}

func TestLLMExtractSystemPromptCarriesVocabulary(t *testing.T) {
	client := &mockClient{formatResponse: validEdges}
	s := NewLLMStrategy(client, "test-model", time.Second)

	if _, err := s.Extract(context.Background(), llmChunk(), llmConcepts()); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(client.lastSystem) != 1 {
		t.Fatalf("got %d system prompts, want 1", len(client.lastSystem))
	}
	system := client.lastSystem[0]
	for _, want := range []string{"is_a", "related_to", "C001", "machine learning"} {
		if !strings.Contains(system, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if !strings.Contains(client.lastPrompt, "neural networks") {
		t.Error("user prompt should carry the chunk text")
	}
}

func TestLLMExtractRepairRecovers(t *testing.T) {
	client := &mockClient{
		formatResponse: `{"edges": [{"source": "C001",`,
		formatErr:      errors.New("unexpected end of JSON input"),
		repairResponse: validEdges,
	}
	s := NewLLMStrategy(client, "test-model", time.Second)

	got, err := s.Extract(context.Background(), llmChunk(), llmConcepts())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d triples, want 1", len(got))
	}
	if client.repairCalls != 1 {
		t.Errorf("repair called %d times, want 1", client.repairCalls)
	}
	if !strings.Contains(client.lastPrompt, `{"edges": [{"source": "C001",`) {
		t.Error("repair prompt should embed the malformed output")
	}
}

func TestLLMExtractDegradesToZeroEdges(t *testing.T) {
	client := &mockClient{
		formatResponse: "not json at all",
		formatErr:      errors.New("no JSON object found"),
		repairResponse: "still not json",
	}
	s := NewLLMStrategy(client, "test-model", time.Second)

	got, err := s.Extract(context.Background(), llmChunk(), llmConcepts())
	if err != nil {
		t.Fatalf("degraded chunk should not error, got: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d triples, want 0", len(got))
	}
	if client.repairCalls != 1 {
		t.Errorf("repair called %d times, want exactly 1", client.repairCalls)
	}
}

func TestLLMExtractTransportFailure(t *testing.T) {
	client := &mockClient{formatErr: errors.New("connection refused")}
	s := NewLLMStrategy(client, "test-model", time.Second)

	_, err := s.Extract(context.Background(), llmChunk(), llmConcepts())
	if err == nil {
		t.Fatal("expected transport error to propagate")
	}
	if client.repairCalls != 0 {
		t.Errorf("repair called %d times, want 0", client.repairCalls)
	}
}

func TestLLMExtractSkipsChunkWithoutConcepts(t *testing.T) {
	client := &mockClient{formatResponse: validEdges}
	s := NewLLMStrategy(client, "test-model", time.Second)

	chunk := Chunk{Index: 2, Text: "Nothing relevant here.", Lang: "en"}
	got, err := s.Extract(context.Background(), chunk, llmConcepts())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
	if client.formatCalls != 0 {
		t.Errorf("model called %d times, want 0", client.formatCalls)
	}
}

func TestLLMExtractValidation(t *testing.T) {
	response := `{"edges":[
		{"source":"C001","relation":"depends_on","target":"C002","evidence":"implemented with neural networks daily"},
		{"source":"C009","relation":"depends_on","target":"C002","evidence":"unknown source concept id here"},
		{"source":"C001","relation":"improves","target":"C002","evidence":"relation outside the closed vocabulary"},
		{"source":"C001","relation":"causes","target":"C001","evidence":"self loop must be dropped"},
		{"source":"C001","relation":"causes","target":"C002","evidence":"too thin"}
	]}`
	client := &mockClient{formatResponse: response}
	s := NewLLMStrategy(client, "test-model", time.Second)

	got, err := s.Extract(context.Background(), llmChunk(), llmConcepts())
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d triples, want 1: %+v", len(got), got)
	}
	if got[0].Relation != "depends_on" {
		t.Errorf("surviving relation = %q, want depends_on", got[0].Relation)
	}
}

package relation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/transcriptlab/conceptgraph/pkg/ai"
	"github.com/transcriptlab/conceptgraph/pkg/concept"
	"github.com/transcriptlab/conceptgraph/pkg/logger"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultCallTimeout bounds each model call, repair round-trip included.
	DefaultCallTimeout = 60 * time.Second

	maxOutputTokens  = 700
	maxPromptTokens  = 8000
	minEvidenceWords = 4
)

// edgePayload matches the JSON object the model is asked to return.
type edgePayload struct {
	Edges []edgeItem `json:"edges"`
}

type edgeItem struct {
	Source   string `json:"source" jsonschema_description:"Concept id of the relation source, e.g. C001"`
	Relation string `json:"relation" jsonschema_description:"Relation type from the provided vocabulary"`
	Target   string `json:"target" jsonschema_description:"Concept id of the relation target"`
	Evidence string `json:"evidence" jsonschema_description:"Verbatim quote from the segment supporting the relation"`
}

// LLMStrategy extracts triples by asking a chat model to connect the concepts
// present in each chunk, constrained to a closed relation vocabulary and to
// per-chunk concept ids. One failed parse earns one repair round-trip; a
// second failure degrades the chunk to zero edges.
type LLMStrategy struct {
	client  ai.GraphAIClient
	model   string
	timeout time.Duration
}

// NewLLMStrategy creates the model-backed strategy. An empty model falls back
// to the client's configured extraction model; a zero timeout falls back to
// DefaultCallTimeout.
func NewLLMStrategy(client ai.GraphAIClient, model string, timeout time.Duration) *LLMStrategy {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &LLMStrategy{client: client, model: model, timeout: timeout}
}

func (s *LLMStrategy) Name() string { return "llm" }

func (s *LLMStrategy) Vocabulary() []string { return LLMRelations }

// Extract sends the chunk and its present concepts to the model and validates
// the returned edges. Chunks holding fewer than two known concepts are skipped
// without a model call.
func (s *LLMStrategy) Extract(ctx context.Context, chunk Chunk, concepts []concept.CanonicalConcept) ([]Triple, error) {
	present := presentConcepts(chunk.Text, concepts)
	if len(present) < 2 {
		return nil, nil
	}

	labels := make(map[string]string, len(present))
	for i, c := range present {
		labels[fmt.Sprintf("C%03d", i+1)] = c.Label
	}
	conceptJSON, err := json.Marshal(labels)
	if err != nil {
		return nil, err
	}

	template := ai.ExtractPromptEN
	if chunk.Lang == "es" {
		template = ai.ExtractPromptES
	}
	system := fmt.Sprintf(template, strings.Join(LLMRelations, ", "), conceptJSON)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	callOpts := []ai.GenerateOption{
		ai.WithSystemPrompts(system),
		ai.WithTemperature(0),
		ai.WithMaxTokens(maxOutputTokens),
	}
	if s.model != "" {
		callOpts = append(callOpts, ai.WithModel(s.model))
	}

	var payload edgePayload
	raw, err := s.client.GenerateCompletionWithFormat(
		callCtx,
		"concept_edges",
		"Directed typed relations between concepts in a transcript segment",
		truncateToTokens(chunk.Text, maxPromptTokens),
		&payload,
		callOpts...,
	)
	if err != nil {
		if raw == "" {
			return nil, err
		}
		payload, err = s.repair(callCtx, raw)
		if err != nil {
			logger.Warn("relation extraction degraded to zero edges", "chunk", chunk.Index, "error", err)
			return nil, nil
		}
	}

	return s.validate(chunk, payload, labels), nil
}

// repair gives the model exactly one chance to fix its malformed output.
func (s *LLMStrategy) repair(ctx context.Context, raw string) (edgePayload, error) {
	var payload edgePayload

	callOpts := []ai.GenerateOption{
		ai.WithTemperature(0),
		ai.WithMaxTokens(maxOutputTokens),
	}
	if s.model != "" {
		callOpts = append(callOpts, ai.WithModel(s.model))
	}

	repaired, err := s.client.GenerateCompletion(
		ctx,
		fmt.Sprintf(ai.RepairPrompt, raw),
		callOpts...,
	)
	if err != nil {
		return payload, err
	}
	if err := ai.UnmarshalFlexible(repaired, &payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// validate drops edges with unknown ids, out-of-vocabulary relations,
// self-loops or thin evidence, and resolves ids back to concept labels.
func (s *LLMStrategy) validate(chunk Chunk, payload edgePayload, labels map[string]string) []Triple {
	var triples []Triple
	for _, e := range payload.Edges {
		source, okS := labels[e.Source]
		target, okT := labels[e.Target]
		switch {
		case !okS || !okT:
			logger.Debug("dropping edge with unknown concept id", "chunk", chunk.Index, "source", e.Source, "target", e.Target)
		case e.Source == e.Target:
			logger.Debug("dropping self-loop edge", "chunk", chunk.Index, "id", e.Source)
		case !InVocab(LLMRelations, e.Relation):
			logger.Debug("dropping edge with unknown relation", "chunk", chunk.Index, "relation", e.Relation)
		case len(strings.Fields(e.Evidence)) < minEvidenceWords:
			logger.Debug("dropping edge with thin evidence", "chunk", chunk.Index, "evidence", e.Evidence)
		default:
			triples = append(triples, Triple{
				Source:   source,
				Relation: e.Relation,
				Target:   target,
				Evidence: strings.TrimSpace(e.Evidence),
			})
		}
	}
	return triples
}

// truncateToTokens trims text to roughly the given token budget so oversized
// chunks cannot blow the model's context window.
func truncateToTokens(text string, budget int) string {
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= budget {
		return text
	}
	return enc.Decode(tokens[:budget])
}

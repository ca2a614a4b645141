package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/transcriptlab/conceptgraph/pkg/ai"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
)

// GenerateCompletion sends a single-turn prompt and returns assistant text.
func (c *GraphOllamaClient) GenerateCompletion(
	ctx context.Context,
	prompt string,
	opts ...ai.GenerateOption,
) (string, error) {
	options := ai.GenerateOptions{
		Model:       c.extractionModel,
		Temperature: 0,
	}
	for _, o := range opts {
		o(&options)
	}

	req, err := buildChatRequest(prompt, nil, options)
	if err != nil {
		return "", err
	}

	final, err := c.collectChat(ctx, req)
	if err != nil {
		return "", err
	}

	return final.Message.Content, nil
}

// GenerateCompletionWithFormat enforces a JSON schema derived from out and
// unmarshals the response into it. The raw assistant text is returned even
// when unmarshaling fails so the caller can attempt a repair round-trip.
func (c *GraphOllamaClient) GenerateCompletionWithFormat(
	ctx context.Context,
	name string,
	description string,
	prompt string,
	out any,
	opts ...ai.GenerateOption,
) (string, error) {
	if out == nil {
		return "", errors.New("out must be a non-nil pointer")
	}
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return "", errors.New("out must be a non-nil pointer")
	}

	schemaObj := ai.GenerateSchema(out)
	formatBytes, err := json.Marshal(schemaObj)
	if err != nil {
		return "", err
	}

	options := ai.GenerateOptions{
		Model:       c.extractionModel,
		Temperature: 0,
	}
	for _, o := range opts {
		o(&options)
	}

	req, err := buildChatRequest(prompt, json.RawMessage(formatBytes), options)
	if err != nil {
		return "", err
	}

	final, err := c.collectChat(ctx, req)
	if err != nil {
		return "", err
	}

	raw := final.Message.Content
	if err := ai.UnmarshalFlexible(raw, out); err != nil {
		return raw, err
	}

	return raw, nil
}

func buildChatRequest(prompt string, format json.RawMessage, options ai.GenerateOptions) (*api.ChatRequest, error) {
	msgs := make([]api.Message, 0, len(options.SystemPrompts)+1)
	for _, sp := range options.SystemPrompts {
		msgs = append(msgs, api.Message{Role: "system", Content: sp})
	}
	msgs = append(msgs, api.Message{Role: "user", Content: prompt})

	stream := false
	req := &api.ChatRequest{
		Model:    options.Model,
		Messages: msgs,
		Stream:   &stream,
		Format:   format,
		Options:  map[string]any{"temperature": options.Temperature},
	}
	if options.MaxTokens > 0 {
		req.Options["num_predict"] = options.MaxTokens
	}

	// Ollama silently truncates prompts beyond the default context window, so
	// raise num_ctx for long chunks.
	enc, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		return nil, err
	}
	promptTokens := 200
	for _, sp := range options.SystemPrompts {
		promptTokens += len(enc.Encode(sp, nil, nil))
	}
	promptTokens += len(enc.Encode(prompt, nil, nil))
	if promptTokens > 4096 {
		req.Options["num_ctx"] = promptTokens
	}

	return req, nil
}

func (c *GraphOllamaClient) collectChat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	var final api.ChatResponse
	if err := c.Client.Chat(ctx, req, func(cr api.ChatResponse) error {
		final.Message.Content += cr.Message.Content
		if cr.Done {
			final.Done = true
			final.Metrics = cr.Metrics
		}
		return nil
	}); err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens:  final.Metrics.PromptEvalCount,
		OutputTokens: final.Metrics.EvalCount,
		TotalTokens:  final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		DurationMs:   final.Metrics.TotalDuration.Milliseconds(),
	})

	return &final, nil
}

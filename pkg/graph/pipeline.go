package graph

import (
	"context"

	"github.com/transcriptlab/conceptgraph/internal/util"
	"github.com/transcriptlab/conceptgraph/pkg/concept"
	"github.com/transcriptlab/conceptgraph/pkg/logger"
	"github.com/transcriptlab/conceptgraph/pkg/nlp"
	"github.com/transcriptlab/conceptgraph/pkg/relation"
	"github.com/transcriptlab/conceptgraph/pkg/transcript"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelism bounds concurrent per-chunk work.
const DefaultParallelism = 4

// Config holds the pipeline knobs.
type Config struct {
	MaxChunkChars int
	Concept       concept.Config
	MaxEdges      int
	Parallelism   int
	RetryAttempts int // attempts around each per-chunk relation call
}

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		MaxChunkChars: transcript.DefaultMaxChunkChars,
		Concept:       concept.DefaultConfig(),
		Parallelism:   DefaultParallelism,
		RetryAttempts: 1,
	}
}

// Result is a completed pipeline run.
type Result struct {
	Graph    *ConceptGraph
	RawEdges []RawEdge
	Concepts concept.Result
}

// Pipeline runs the full transcript-to-graph extraction.
type Pipeline struct {
	cfg       Config
	pipelines *nlp.Cache
	strategy  relation.Strategy
}

// New creates a pipeline with the given relation strategy.
func New(strategy relation.Strategy, pipelines *nlp.Cache, cfg Config) *Pipeline {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 1
	}
	return &Pipeline{cfg: cfg, pipelines: pipelines, strategy: strategy}
}

// Run executes the pipeline: clean, chunk, extract candidates, canonicalize,
// extract relations, assemble. Per-chunk failures degrade to zero
// candidates/edges for that chunk; an empty transcript or an empty concept
// set is fatal.
func (p *Pipeline) Run(ctx context.Context, rawTranscript string) (*Result, error) {
	cleaned := transcript.CleanTranscript(rawTranscript)
	if cleaned == "" {
		return nil, ErrEmptyTranscript
	}

	chunks := p.buildChunks(cleaned)
	logger.Info("transcript chunked", "chunks", len(chunks), "chars", len(cleaned))

	candidates, err := p.extractCandidates(ctx, chunks)
	if err != nil {
		return nil, err
	}

	concepts := concept.Canonicalize(candidates, p.cfg.Concept)
	if len(concepts.Concepts) == 0 {
		return nil, ErrNoConcepts
	}
	logger.Info("concepts canonicalized", "concepts", len(concepts.Concepts), "candidates", len(candidates))

	rawEdges, err := p.extractRelations(ctx, chunks, concepts.Concepts)
	if err != nil {
		return nil, err
	}

	assembler := NewAssembler(concepts.Concepts, p.cfg.MaxEdges)
	for _, e := range rawEdges {
		assembler.Add(relation.Triple{
			Source:   e.Source,
			Relation: e.Relation,
			Target:   e.Target,
			Evidence: e.Evidence,
		})
	}
	nodes, edges := assembler.Build()
	logger.Info("graph assembled", "nodes", len(nodes), "edges", len(edges), "raw_edges", len(rawEdges))

	runID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	languages := make(map[string]int)
	for _, c := range chunks {
		languages[c.Lang]++
	}

	return &Result{
		Graph: &ConceptGraph{
			Nodes: nodes,
			Edges: edges,
			Meta: Metadata{
				RunID:      runID,
				Strategy:   p.strategy.Name(),
				Vocabulary: p.strategy.Vocabulary(),
				Languages:  languages,
				Config: ConfigEcho{
					MinFreq:        p.cfg.Concept.MinFreq,
					MaxConcepts:    p.cfg.Concept.MaxConcepts,
					FuzzyThreshold: p.cfg.Concept.FuzzyThreshold,
					MaxChunkChars:  p.cfg.MaxChunkChars,
					MaxEdges:       p.cfg.MaxEdges,
				},
			},
		},
		RawEdges: rawEdges,
		Concepts: concepts,
	}, nil
}

func (p *Pipeline) buildChunks(cleaned string) []relation.Chunk {
	texts := transcript.ChunkText(cleaned, p.cfg.MaxChunkChars)
	chunks := make([]relation.Chunk, 0, len(texts))
	for i, t := range texts {
		chunks = append(chunks, relation.Chunk{
			Index: i,
			Text:  t,
			Lang:  transcript.DetectLang(t),
		})
	}
	return chunks
}

// extractCandidates fans candidate extraction out across chunks. A failing
// chunk contributes zero candidates and the run continues.
func (p *Pipeline) extractCandidates(ctx context.Context, chunks []relation.Chunk) ([]string, error) {
	perChunk := make([][]string, len(chunks))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.cfg.Parallelism)
	for _, chunk := range chunks {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			pipeline, err := p.pipelines.Get(chunk.Lang)
			if err != nil {
				return err
			}
			found, err := concept.ExtractCandidates(pipeline, chunk.Text)
			if err != nil {
				logger.Warn("candidate extraction failed, chunk contributes none", "chunk", chunk.Index, "error", err)
				return nil
			}
			perChunk[chunk.Index] = found
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, found := range perChunk {
		all = append(all, found...)
	}
	return all, nil
}

// extractRelations fans the relation strategy out across chunks. A failing
// chunk contributes zero edges; sibling chunks are not cancelled.
func (p *Pipeline) extractRelations(ctx context.Context, chunks []relation.Chunk, concepts []concept.CanonicalConcept) ([]RawEdge, error) {
	perChunk := make([][]relation.Triple, len(chunks))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.cfg.Parallelism)
	for _, chunk := range chunks {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			triples, err := util.RetryWithContext(groupCtx, p.cfg.RetryAttempts, func(callCtx context.Context) ([]relation.Triple, error) {
				return p.strategy.Extract(callCtx, chunk, concepts)
			})
			if err != nil {
				logger.Warn("relation extraction failed, chunk contributes no edges", "chunk", chunk.Index, "error", err)
				return nil
			}
			perChunk[chunk.Index] = triples
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var edges []RawEdge
	for i, triples := range perChunk {
		for _, t := range triples {
			edges = append(edges, RawEdge{
				ChunkIndex: i,
				Source:     t.Source,
				Relation:   t.Relation,
				Target:     t.Target,
				Evidence:   t.Evidence,
			})
		}
	}
	return edges, nil
}

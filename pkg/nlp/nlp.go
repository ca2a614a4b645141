// Package nlp provides per-language linguistic analysis (tokenization, part
// of speech tagging, noun-phrase chunking, named-entity spotting) for the
// concept extraction pipeline. English analysis is backed by prose; Spanish
// uses a deterministic rule-based analyzer.
package nlp

import (
	"fmt"
	"sync"
)

// Tag is a coarse part-of-speech category shared by all analyzers.
type Tag string

const (
	TagNoun       Tag = "NOUN"
	TagProperNoun Tag = "PROPN"
	TagAdjective  Tag = "ADJ"
	TagVerb       Tag = "VERB"
	TagPronoun    Tag = "PRON"
	TagDeterminer Tag = "DET"
	TagAdposition Tag = "ADP"
	TagNumber     Tag = "NUM"
	TagPunct      Tag = "PUNCT"
	TagOther      Tag = "X"
)

// Token is a single analyzed token.
type Token struct {
	Text string
	Tag  Tag
	Stop bool // member of the language's stopword set
}

// Span is a half-open token index range [Start, End) into a sentence's
// token slice, with the covering surface text.
type Span struct {
	Start int
	End   int
	Text  string
}

// Sentence is the analysis of one sentence.
type Sentence struct {
	Text        string
	Tokens      []Token
	NounPhrases []Span
	Entities    []string
}

// Analysis is the full linguistic analysis of a text chunk.
type Analysis struct {
	Sentences []Sentence
}

// Pipeline analyzes text in a single language.
type Pipeline interface {
	Lang() string
	Analyze(text string) (*Analysis, error)
}

// Cache holds loaded per-language pipelines, keyed by language code. It is an
// explicit object owned by the pipeline orchestrator and passed by handle into
// the extractors; there is no process-global pipeline state.
type Cache struct {
	mu        sync.Mutex
	pipelines map[string]Pipeline
}

// NewCache creates an empty pipeline cache.
func NewCache() *Cache {
	return &Cache{
		pipelines: make(map[string]Pipeline),
	}
}

// Get returns the pipeline for lang ("en" or "es"), constructing and caching
// it on first use.
func (c *Cache) Get(lang string) (Pipeline, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.pipelines[lang]; ok {
		return p, nil
	}

	var p Pipeline
	switch lang {
	case "en":
		p = NewEnglishPipeline()
	case "es":
		p = NewSpanishPipeline()
	default:
		return nil, fmt.Errorf("nlp: unsupported language %q", lang)
	}

	c.pipelines[lang] = p
	return p, nil
}

// Put registers a pipeline for lang, replacing any cached one. Tests use this
// to inject fake analyzers.
func (c *Cache) Put(lang string, p Pipeline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pipelines[lang] = p
}

// demonstratives are bare demonstrative lemmas that disqualify a noun phrase
// when they lead it.
var demonstratives = map[string]bool{
	"this": true, "that": true, "these": true, "those": true,
	"este": true, "esta": true, "esto": true, "estos": true, "estas": true,
	"ese": true, "esa": true, "eso": true, "esos": true, "esas": true,
	"aquel": true, "aquella": true, "aquello": true, "aquellos": true, "aquellas": true,
}

// IsDemonstrative reports whether the lowercase token is a bare demonstrative
// in English or Spanish.
func IsDemonstrative(lower string) bool {
	return demonstratives[lower]
}

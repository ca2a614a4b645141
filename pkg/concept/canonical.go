package concept

import (
	"fmt"
	"sort"
	"strings"

	"github.com/transcriptlab/conceptgraph/pkg/transcript"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

const (
	DefaultMinFreq        = 2
	DefaultMaxConcepts    = 30
	DefaultFuzzyThreshold = 92
)

// Config controls canonicalization.
type Config struct {
	MinFreq        int
	MaxConcepts    int
	FuzzyThreshold int // token-sort ratio in [0,100]
}

// DefaultConfig returns the standard canonicalization parameters.
func DefaultConfig() Config {
	return Config{
		MinFreq:        DefaultMinFreq,
		MaxConcepts:    DefaultMaxConcepts,
		FuzzyThreshold: DefaultFuzzyThreshold,
	}
}

// CanonicalConcept is a merged concept with its aggregated frequency.
type CanonicalConcept struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Freq  int    `json:"frequency"`
}

// Result is the canonicalizer output: the final concept set, the
// term-to-canonical mapping over the merge shortlist, and the aggregated
// frequency table.
type Result struct {
	Concepts []CanonicalConcept
	Mapping  map[string]string
	Freqs    map[string]int
}

// Canonicalize aggregates raw candidate surface forms across the whole
// transcript into the final canonical concept set. Candidates are normalized
// and counted, thresholded by frequency and word count, fuzzy-merged
// longest-first, re-aggregated, and capped at cfg.MaxConcepts. An empty
// result is returned as an empty Concepts slice; the pipeline treats that as
// fatal.
func Canonicalize(candidates []string, cfg Config) Result {
	if cfg.MinFreq <= 0 {
		cfg.MinFreq = DefaultMinFreq
	}
	if cfg.MaxConcepts <= 0 {
		cfg.MaxConcepts = DefaultMaxConcepts
	}
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = DefaultFuzzyThreshold
	}

	counts := make(map[string]int)
	for _, raw := range candidates {
		norm := transcript.NormalizeTerm(raw)
		if transcript.LooksLikeJunk(norm) {
			continue
		}
		counts[norm]++
	}

	var terms []string
	for term, n := range counts {
		words := len(strings.Fields(term))
		if n >= cfg.MinFreq && words >= 1 && words <= maxPhraseTokens {
			terms = append(terms, term)
		}
	}

	// Highest-frequency survivors first; the shortlist over-provisions at
	// twice the target size so fuzzy merging has variants to collapse.
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if limit := 2 * cfg.MaxConcepts; len(terms) > limit {
		terms = terms[:limit]
	}

	mapping := mergeTerms(terms, cfg.FuzzyThreshold)

	freqs := make(map[string]int)
	for term, canonical := range mapping {
		freqs[canonical] += counts[term]
	}

	var labels []string
	for label := range freqs {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if freqs[labels[i]] != freqs[labels[j]] {
			return freqs[labels[i]] > freqs[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if len(labels) > cfg.MaxConcepts {
		labels = labels[:cfg.MaxConcepts]
	}

	res := Result{Mapping: mapping, Freqs: freqs}
	for i, label := range labels {
		res.Concepts = append(res.Concepts, CanonicalConcept{
			ID:    fmt.Sprintf("C%03d", i+1),
			Label: label,
			Freq:  freqs[label],
		})
	}
	return res
}

// mergeTerms builds the term-to-canonical mapping. Terms are processed
// longest-first so longer, more specific phrases become the canonical forms
// their shorter variants merge into.
func mergeTerms(terms []string, threshold int) map[string]string {
	ordered := make([]string, len(terms))
	copy(ordered, terms)
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i]) != len(ordered[j]) {
			return len(ordered[i]) > len(ordered[j])
		}
		return ordered[i] < ordered[j]
	})

	mapping := make(map[string]string, len(ordered))
	var canonicals []string
	for _, term := range ordered {
		best, bestScore := "", -1
		for _, c := range canonicals {
			if score := fuzzy.TokenSortRatio(term, c); score > bestScore {
				best, bestScore = c, score
			}
		}
		if bestScore >= threshold {
			mapping[term] = best
			continue
		}
		mapping[term] = term
		canonicals = append(canonicals, term)
	}
	return mapping
}

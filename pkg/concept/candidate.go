// Package concept turns analyzed transcript chunks into canonical concepts:
// candidate phrase extraction, normalization, frequency counting and fuzzy
// merging of surface variants.
package concept

import (
	"strings"

	"github.com/transcriptlab/conceptgraph/pkg/nlp"
	"github.com/transcriptlab/conceptgraph/pkg/transcript"
)

const (
	maxPhraseTokens     = 5
	maxEntityWords      = 6
	maxStopwordFraction = 0.35
	minContentFraction  = 0.6
	minSingleTokenRunes = 4
)

// ExtractCandidates analyzes one chunk of text with p and returns candidate
// concept surface forms. Three sources feed the list: chunked noun phrases,
// recognized entities, and standalone nouns. Candidates may repeat; counting
// happens during canonicalization.
func ExtractCandidates(p nlp.Pipeline, chunk string) ([]string, error) {
	analysis, err := p.Analyze(chunk)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, sent := range analysis.Sentences {
		for _, np := range sent.NounPhrases {
			if keepNounPhrase(sent.Tokens[np.Start:np.End]) {
				candidates = append(candidates, np.Text)
			}
		}

		for _, ent := range sent.Entities {
			if keepEntity(ent) {
				candidates = append(candidates, ent)
			}
		}

		for _, tok := range sent.Tokens {
			if keepStandaloneNoun(tok) {
				candidates = append(candidates, tok.Text)
			}
		}
	}

	return candidates, nil
}

// keepNounPhrase applies the phrase-level quality filters: a bounded token
// count, a cap on stopword density, a floor on noun/adjective density, and no
// pronoun or bare demonstrative in the lead position.
func keepNounPhrase(tokens []nlp.Token) bool {
	var words, stops, content int
	for _, t := range tokens {
		if t.Tag == nlp.TagPunct {
			continue
		}
		words++
		if t.Stop {
			stops++
		}
		switch t.Tag {
		case nlp.TagNoun, nlp.TagProperNoun, nlp.TagAdjective:
			content++
		}
	}
	if words == 0 || words > maxPhraseTokens {
		return false
	}
	if float64(stops)/float64(words) > maxStopwordFraction {
		return false
	}
	if float64(content)/float64(words) < minContentFraction {
		return false
	}

	lead := firstContentToken(tokens)
	if lead == nil {
		return false
	}
	if lead.Tag == nlp.TagPronoun {
		return false
	}
	if nlp.IsDemonstrative(strings.ToLower(lead.Text)) {
		return false
	}

	return true
}

// firstContentToken returns the first non-punctuation, non-determiner token.
func firstContentToken(tokens []nlp.Token) *nlp.Token {
	for i := range tokens {
		if tokens[i].Tag == nlp.TagPunct || tokens[i].Tag == nlp.TagDeterminer {
			continue
		}
		return &tokens[i]
	}
	return nil
}

func keepEntity(ent string) bool {
	words := strings.Fields(ent)
	if len(words) == 0 || len(words) > maxEntityWords {
		return false
	}
	return !transcript.LooksLikeJunk(transcript.NormalizeTerm(ent))
}

func keepStandaloneNoun(tok nlp.Token) bool {
	if tok.Tag != nlp.TagNoun && tok.Tag != nlp.TagProperNoun {
		return false
	}
	if tok.Stop {
		return false
	}
	norm := transcript.NormalizeTerm(tok.Text)
	return len([]rune(norm)) >= minSingleTokenRunes
}

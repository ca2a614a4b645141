package nlp

import (
	"strings"

	"github.com/transcriptlab/conceptgraph/pkg/transcript"

	"github.com/jdkato/prose/v2"
)

// EnglishPipeline analyzes English text using prose for tokenization,
// Penn-treebank POS tagging and named-entity recognition.
type EnglishPipeline struct{}

// NewEnglishPipeline creates the English analyzer.
func NewEnglishPipeline() *EnglishPipeline {
	return &EnglishPipeline{}
}

// Lang returns "en".
func (p *EnglishPipeline) Lang() string {
	return "en"
}

// Analyze runs sentence splitting, tagging, noun-phrase chunking and entity
// recognition over text.
func (p *EnglishPipeline) Analyze(text string) (*Analysis, error) {
	analysis := &Analysis{}

	for _, sentText := range transcript.SplitIntoSentences(text) {
		doc, err := prose.NewDocument(sentText, prose.WithSegmentation(false))
		if err != nil {
			return nil, err
		}

		sentence := Sentence{Text: sentText}
		for _, tok := range doc.Tokens() {
			lower := strings.ToLower(tok.Text)
			sentence.Tokens = append(sentence.Tokens, Token{
				Text: tok.Text,
				Tag:  mapPennTag(tok.Tag, tok.Text),
				Stop: IsStopword("en", lower),
			})
		}
		sentence.NounPhrases = chunkNounPhrases(sentence.Tokens)
		for _, ent := range doc.Entities() {
			sentence.Entities = append(sentence.Entities, ent.Text)
		}

		analysis.Sentences = append(analysis.Sentences, sentence)
	}

	return analysis, nil
}

func mapPennTag(tag, text string) Tag {
	switch {
	case strings.HasPrefix(tag, "NNP"):
		return TagProperNoun
	case strings.HasPrefix(tag, "NN"):
		return TagNoun
	case strings.HasPrefix(tag, "JJ"):
		return TagAdjective
	case strings.HasPrefix(tag, "VB") || tag == "MD":
		return TagVerb
	case strings.HasPrefix(tag, "PRP") || tag == "WP" || tag == "WP$" || tag == "EX":
		return TagPronoun
	case tag == "DT" || tag == "PDT" || tag == "WDT":
		return TagDeterminer
	case tag == "IN" || tag == "TO":
		return TagAdposition
	case tag == "CD":
		return TagNumber
	case tag == "." || tag == "," || tag == ":" || tag == ";" ||
		tag == "(" || tag == ")" || tag == "``" || tag == "''" ||
		tag == "HYPH" || tag == "SYM" || isAllPunct(text):
		return TagPunct
	default:
		return TagOther
	}
}

func isAllPunct(text string) bool {
	if text == "" {
		return true
	}
	for _, r := range text {
		if strings.ContainsRune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789", r) {
			return false
		}
	}
	return true
}

// chunkNounPhrases finds maximal determiner/adjective/noun runs ending in a
// noun. Shared by the English and Spanish analyzers.
func chunkNounPhrases(tokens []Token) []Span {
	var spans []Span

	isInner := func(t Tag) bool {
		return t == TagDeterminer || t == TagAdjective || t == TagNoun ||
			t == TagProperNoun || t == TagNumber
	}
	isNoun := func(t Tag) bool {
		return t == TagNoun || t == TagProperNoun
	}

	start := -1
	for i := 0; i <= len(tokens); i++ {
		inRun := i < len(tokens) && isInner(tokens[i].Tag)
		if inRun {
			if start < 0 {
				start = i
			}
			continue
		}
		if start < 0 {
			continue
		}

		// Trim the run so it ends at its last noun.
		end := i
		for end > start && !isNoun(tokens[end-1].Tag) {
			end--
		}
		if end > start {
			spans = append(spans, Span{
				Start: start,
				End:   end,
				Text:  joinTokens(tokens[start:end]),
			})
		}
		start = -1
	}

	return spans
}

func joinTokens(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, " ")
}

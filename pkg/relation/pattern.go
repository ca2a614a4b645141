package relation

import (
	"context"
	"strings"

	"github.com/transcriptlab/conceptgraph/pkg/concept"
	"github.com/transcriptlab/conceptgraph/pkg/nlp"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

const snapFuzzyThreshold = 80

// englishVerbRelations maps English verb surface forms to relation types.
var englishVerbRelations = map[string]string{
	"is": "is_a", "are": "is_a", "was": "is_a", "were": "is_a",
	"has": "has", "have": "has", "had": "has",
	"includes": "includes", "include": "includes",
	"contains": "includes", "contain": "includes",
	"causes": "causes", "cause": "causes", "caused": "causes",
	"leads": "leads_to", "led": "leads_to",
	"enables": "enables", "enable": "enables",
	"allows": "enables", "allow": "enables", "facilitates": "enables",
	"uses": "uses", "use": "uses", "used": "uses", "utilizes": "uses",
	"requires": "requires", "require": "requires",
	"needs": "requires", "need": "requires",
	"depends": "depends_on", "depend": "depends_on",
	"improves": "improves", "improve": "improves", "enhances": "improves",
	"reduces": "reduces", "reduce": "reduces",
	"decreases": "reduces", "lowers": "reduces",
	"increases": "increases", "increase": "increases", "raises": "increases",
}

// spanishVerbRelations is the Spanish counterpart of englishVerbRelations.
var spanishVerbRelations = map[string]string{
	"es": "is_a", "son": "is_a", "era": "is_a", "eran": "is_a",
	"fue": "is_a", "fueron": "is_a",
	"tiene": "has", "tienen": "has", "tenía": "has",
	"incluye": "includes", "incluyen": "includes",
	"contiene": "includes", "contienen": "includes",
	"causa": "causes", "causan": "causes",
	"provoca": "causes", "provocan": "causes",
	"genera": "causes", "generan": "causes",
	"produce": "causes", "producen": "causes",
	"lleva": "leads_to", "llevan": "leads_to",
	"conduce": "leads_to", "conducen": "leads_to",
	"permite": "enables", "permiten": "enables",
	"facilita": "enables", "facilitan": "enables",
	"usa": "uses", "usan": "uses",
	"utiliza": "uses", "utilizan": "uses",
	"emplea": "uses", "emplean": "uses",
	"requiere": "requires", "requieren": "requires",
	"necesita": "requires", "necesitan": "requires",
	"depende": "depends_on", "dependen": "depends_on",
	"mejora": "improves", "mejoran": "improves",
	"reduce": "reduces", "reducen": "reduces",
	"disminuye": "reduces", "disminuyen": "reduces",
	"aumenta": "increases", "aumentan": "increases",
	"incrementa": "increases", "incrementan": "increases",
}

// PatternStrategy extracts triples with no model calls: for every sentence
// holding at least two known concepts, each verb whose surface form maps to a
// relation splits the sentence into a subject region and an object region,
// and each region is snapped to the closest present concept.
type PatternStrategy struct {
	pipelines *nlp.Cache
}

// NewPatternStrategy creates the verb-pattern strategy over the given
// pipeline cache.
func NewPatternStrategy(pipelines *nlp.Cache) *PatternStrategy {
	return &PatternStrategy{pipelines: pipelines}
}

func (s *PatternStrategy) Name() string { return "pattern" }

func (s *PatternStrategy) Vocabulary() []string { return PatternRelations }

// Extract analyzes the chunk and emits one triple per verb pattern whose
// subject and object regions snap to two distinct concepts. The sentence text
// is the evidence.
func (s *PatternStrategy) Extract(ctx context.Context, chunk Chunk, concepts []concept.CanonicalConcept) ([]Triple, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pipeline, err := s.pipelines.Get(chunk.Lang)
	if err != nil {
		return nil, err
	}
	analysis, err := pipeline.Analyze(chunk.Text)
	if err != nil {
		return nil, err
	}

	verbs := englishVerbRelations
	if chunk.Lang == "es" {
		verbs = spanishVerbRelations
	}

	var triples []Triple
	for _, sent := range analysis.Sentences {
		present := presentConcepts(sent.Text, concepts)
		if len(present) < 2 {
			continue
		}

		for i, tok := range sent.Tokens {
			if tok.Tag != nlp.TagVerb {
				continue
			}
			rel, ok := verbs[strings.ToLower(tok.Text)]
			if !ok {
				continue
			}

			source := snapConcept(regionText(sent.Tokens[:i]), present)
			target := snapConcept(regionText(sent.Tokens[i+1:]), present)
			if source == "" || target == "" || source == target {
				continue
			}

			triples = append(triples, Triple{
				Source:   source,
				Relation: rel,
				Target:   target,
				Evidence: strings.TrimSpace(sent.Text),
			})
		}
	}

	return triples, nil
}

func regionText(tokens []nlp.Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Tag == nlp.TagPunct {
			continue
		}
		parts = append(parts, strings.ToLower(t.Text))
	}
	return strings.Join(parts, " ")
}

// snapConcept resolves a sentence region to one of the present concepts:
// exact containment wins, preferring the longest matching label, and fuzzy
// partial similarity is the fallback.
func snapConcept(region string, present []concept.CanonicalConcept) string {
	if region == "" {
		return ""
	}

	best := ""
	for _, c := range present {
		if strings.Contains(region, c.Label) && len(c.Label) > len(best) {
			best = c.Label
		}
	}
	if best != "" {
		return best
	}

	bestScore := 0
	for _, c := range present {
		if score := fuzzy.PartialRatio(c.Label, region); score > bestScore {
			best, bestScore = c.Label, score
		}
	}
	if bestScore >= snapFuzzyThreshold {
		return best
	}
	return ""
}

package nlp

import (
	"strings"
	"unicode"

	"github.com/transcriptlab/conceptgraph/pkg/transcript"
)

// SpanishPipeline is a deterministic rule-based analyzer for Spanish:
// closed-class word lists for function words, suffix heuristics for verbs and
// adjectives, capitalization for proper nouns, and everything else defaulting
// to noun. No Go library in the ecosystem ships a Spanish tagger, and for
// candidate filtering the noun/adjective distinction only needs to be right
// at phrase edges.
type SpanishPipeline struct{}

// NewSpanishPipeline creates the Spanish analyzer.
func NewSpanishPipeline() *SpanishPipeline {
	return &SpanishPipeline{}
}

// Lang returns "es".
func (p *SpanishPipeline) Lang() string {
	return "es"
}

var spanishDeterminers = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "un": true,
	"una": true, "unos": true, "unas": true, "lo": true,
	"este": true, "esta": true, "estos": true, "estas": true,
	"ese": true, "esa": true, "esos": true, "esas": true,
	"aquel": true, "aquella": true, "aquellos": true, "aquellas": true,
	"cada": true, "mucho": true, "mucha": true, "muchos": true,
	"muchas": true, "poco": true, "poca": true, "pocos": true,
	"todo": true, "toda": true, "todos": true, "todas": true,
	"algún": true, "alguna": true, "algunos": true, "algunas": true,
	"ningún": true, "ninguna": true, "mi": true, "mis": true,
	"tu": true, "tus": true, "su": true, "sus": true,
	"nuestro": true, "nuestra": true, "nuestros": true, "nuestras": true,
}

var spanishPronouns = map[string]bool{
	"yo": true, "tú": true, "él": true, "ella": true, "ello": true,
	"nosotros": true, "nosotras": true, "vosotros": true, "vosotras": true,
	"ellos": true, "ellas": true, "usted": true, "ustedes": true,
	"me": true, "te": true, "se": true, "nos": true, "os": true,
	"le": true, "les": true, "esto": true, "eso": true, "aquello": true,
	"que": true, "quien": true, "quienes": true, "cual": true,
	"cuales": true, "algo": true, "alguien": true, "nada": true,
	"nadie": true,
}

var spanishPrepositions = map[string]bool{
	"de": true, "del": true, "a": true, "al": true, "en": true,
	"por": true, "para": true, "con": true, "sin": true, "sobre": true,
	"entre": true, "hasta": true, "desde": true, "hacia": true,
	"según": true, "tras": true, "ante": true, "bajo": true,
	"contra": true, "durante": true, "mediante": true,
}

// spanishVerbs lists the conjugated forms the pattern relation extractor
// cares about plus other high-frequency verbs, so they never end up inside a
// noun phrase.
var spanishVerbs = map[string]bool{
	"es": true, "son": true, "era": true, "eran": true, "fue": true,
	"fueron": true, "ser": true, "será": true, "serán": true,
	"está": true, "están": true, "estaba": true, "estaban": true,
	"hay": true, "ha": true, "han": true, "había": true, "he": true,
	"tiene": true, "tienen": true, "tenía": true, "tenían": true,
	"causa": true, "causan": true, "provoca": true, "provocan": true,
	"genera": true, "generan": true, "produce": true, "producen": true,
	"requiere": true, "requieren": true, "necesita": true, "necesitan": true,
	"usa": true, "usan": true, "utiliza": true, "utilizan": true,
	"emplea": true, "emplean": true,
	"depende": true, "dependen": true, "dependía": true,
	"incluye": true, "incluyen": true, "contiene": true, "contienen": true,
	"permite": true, "permiten": true, "facilita": true, "facilitan": true,
	"mejora": true, "mejoran": true, "reduce": true, "reducen": true,
	"aumenta": true, "aumentan": true, "incrementa": true, "incrementan": true,
	"lleva": true, "llevan": true, "conduce": true, "conducen": true,
	"implica": true, "implican": true, "significa": true, "significan": true,
	"puede": true, "pueden": true, "debe": true, "deben": true,
	"hace": true, "hacen": true, "va": true, "van": true,
	"vamos": true, "veremos": true, "vemos": true, "dice": true, "dicen": true,
}

var spanishVerbSuffixes = []string{"ando", "iendo", "arse", "erse", "irse"}

var spanishAdjectiveSuffixes = []string{
	"al", "ales", "ico", "ica", "icos", "icas", "ivo", "iva", "ivos",
	"ivas", "oso", "osa", "osos", "osas", "ble", "bles", "ado", "ada",
	"ados", "adas", "ido", "ida", "idos", "idas",
}

// Analyze runs sentence splitting, rule-based tagging, noun-phrase chunking
// and capitalization-based entity spotting over text.
func (p *SpanishPipeline) Analyze(text string) (*Analysis, error) {
	analysis := &Analysis{}

	for _, sentText := range transcript.SplitIntoSentences(text) {
		words := tokenizeWords(sentText)

		sentence := Sentence{Text: sentText}
		for i, w := range words {
			sentence.Tokens = append(sentence.Tokens, Token{
				Text: w,
				Tag:  tagSpanishWord(w, i),
				Stop: IsStopword("es", strings.ToLower(w)),
			})
		}
		sentence.NounPhrases = spanishNounPhrases(sentence.Tokens)
		sentence.Entities = capitalizedEntities(sentence.Tokens)

		analysis.Sentences = append(analysis.Sentences, sentence)
	}

	return analysis, nil
}

// tokenizeWords splits a sentence into word and punctuation tokens,
// keeping accented letters, ñ/ü and internal hyphens inside words.
func tokenizeWords(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			current.WriteRune(r)
		case r == '-' && current.Len() > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i+1]):
			current.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()

	return tokens
}

func tagSpanishWord(word string, index int) Tag {
	lower := strings.ToLower(word)

	switch {
	case isAllPunct(word):
		return TagPunct
	case isNumeric(word):
		return TagNumber
	case spanishDeterminers[lower]:
		return TagDeterminer
	case spanishPronouns[lower]:
		return TagPronoun
	case spanishPrepositions[lower]:
		return TagAdposition
	case spanishVerbs[lower]:
		return TagVerb
	case hasAnySuffix(lower, spanishVerbSuffixes) && len([]rune(lower)) > 5:
		return TagVerb
	case index > 0 && startsUpper(word):
		return TagProperNoun
	case hasAnySuffix(lower, spanishAdjectiveSuffixes) && len([]rune(lower)) > 4:
		return TagAdjective
	default:
		return TagNoun
	}
}

func isNumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return word != ""
}

func startsUpper(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

func hasAnySuffix(word string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(word, s) && len(word) > len(s) {
			return true
		}
	}
	return false
}

// spanishNounPhrases chunks determiner/noun/adjective runs, allowing a single
// "de"/"del" bridge between nouns ("base de datos"), and trims each run to
// end at a noun or adjective (Spanish adjectives follow their noun).
func spanishNounPhrases(tokens []Token) []Span {
	var spans []Span

	isInner := func(t Tag) bool {
		return t == TagDeterminer || t == TagAdjective || t == TagNoun ||
			t == TagProperNoun || t == TagNumber
	}
	isEnd := func(t Tag) bool {
		return t == TagNoun || t == TagProperNoun || t == TagAdjective
	}
	isDe := func(i int) bool {
		lower := strings.ToLower(tokens[i].Text)
		return lower == "de" || lower == "del"
	}

	start := -1
	for i := 0; i <= len(tokens); i++ {
		inRun := false
		if i < len(tokens) {
			if isInner(tokens[i].Tag) {
				inRun = true
			} else if start >= 0 && isDe(i) && i+1 < len(tokens) && isInner(tokens[i+1].Tag) {
				// bridge: "base de datos"
				inRun = true
			}
		}
		if inRun {
			if start < 0 {
				start = i
			}
			continue
		}
		if start < 0 {
			continue
		}

		end := i
		for end > start && !isEnd(tokens[end-1].Tag) {
			end--
		}
		if containsNoun(tokens[start:end]) {
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

func containsNoun(tokens []Token) bool {
	for _, t := range tokens {
		if t.Tag == TagNoun || t.Tag == TagProperNoun {
			return true
		}
	}
	return false
}

// capitalizedEntities returns maximal runs of capitalized words that do not
// open the sentence.
func capitalizedEntities(tokens []Token) []string {
	var entities []string
	var run []string

	flush := func() {
		if len(run) > 0 {
			entities = append(entities, strings.Join(run, " "))
			run = nil
		}
	}

	for i, t := range tokens {
		if i > 0 && startsUpper(t.Text) && t.Tag != TagPunct && !t.Stop {
			run = append(run, t.Text)
			continue
		}
		flush()
	}
	flush()

	return entities
}

// Package transcript cleans raw video-transcript text and prepares candidate
// term strings for concept extraction. All functions are pure and
// Unicode-aware; Spanish accented letters and ñ/ü are treated as word
// characters throughout.
package transcript

import (
	"regexp"
	"strings"
	"unicode"
)

// articles are the English and Spanish definite/indefinite articles stripped
// from the front of candidate terms.
var articles = map[string]bool{
	"a": true, "an": true, "the": true,
	"un": true, "una": true, "unos": true, "unas": true,
	"el": true, "la": true, "los": true, "las": true,
}

// stopTerms are bilingual terms too generic to ever be concepts, regardless
// of how often they occur.
var stopTerms = map[string]bool{
	"thing": true, "things": true, "stuff": true,
	"something": true, "anything": true, "everything": true, "nothing": true,
	"someone": true, "everyone": true, "anyone": true,
	"way": true, "ways": true, "lot": true, "lots": true,
	"kind": true, "kinds": true, "type": true, "types": true, "sort": true,
	"bit": true, "ok": true, "okay": true, "yeah": true, "yes": true,
	"today": true, "tomorrow": true, "yesterday": true,
	"cosa": true, "cosas": true, "algo": true, "alguien": true,
	"nada": true, "todo": true, "todos": true,
	"manera": true, "maneras": true, "forma": true, "formas": true,
	"vez": true, "veces": true, "tipo": true, "tipos": true,
	"ejemplo": true, "ejemplos": true, "example": true, "examples": true,
	"hoy": true, "ayer": true,
}

// fillerPhrases are bilingual discourse fillers that show up as noun-phrase
// candidates in spoken transcripts.
var fillerPhrases = map[string]bool{
	"for example":    true,
	"of course":      true,
	"in other words": true,
	"you know":       true,
	"i mean":         true,
	"a little":       true,
	"the following":  true,
	"this one":       true,
	"por ejemplo":    true,
	"es decir":       true,
	"o sea":          true,
	"a ver":          true,
	"más o menos":    true,
	"lo siguiente":   true,
	"este caso":      true,
}

var (
	// [hh:mm:ss], [mm:ss], bare mm:ss or hh:mm:ss timestamp tokens.
	timestampRe = regexp.MustCompile(`\[?\b\d{1,2}:\d{2}(?::\d{2})?\b\]?`)
	// "Speaker Label:" prefixes at line starts; label of alphanumerics,
	// spaces, dashes and underscores up to 30 chars.
	speakerRe = regexp.MustCompile(`(?m)^[\p{L}\p{N} _-]{1,30}:\s+`)
	numericRe = regexp.MustCompile(`^[\d.,%\- ]+$`)
)

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

// NormalizeTerm produces the canonical lowercase form of a candidate term:
// whitespace runs collapse to single spaces, non-word characters (quotes,
// backticks, punctuation) are stripped from both ends, and leading English or
// Spanish articles are dropped. The function is idempotent.
func NormalizeTerm(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.Join(strings.Fields(s), " ")

	// Edge trimming can expose a fresh leading article and article stripping
	// can expose fresh edge punctuation, so run both to a fixpoint.
	for {
		t := strings.TrimFunc(s, func(r rune) bool { return !isWordRune(r) })
		t = stripLeadingArticle(t)
		if t == s {
			break
		}
		s = t
	}

	return s
}

func stripLeadingArticle(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	if articles[fields[0]] {
		return strings.Join(fields[1:], " ")
	}
	return s
}

// LooksLikeJunk reports whether a term is too short, too generic, or too
// common to be a meaningful concept. It is used as a gate before a candidate
// is kept at any stage of the pipeline.
func LooksLikeJunk(text string) bool {
	s := NormalizeTerm(text)
	if s == "" {
		return true
	}
	if len([]rune(s)) < 3 {
		return true
	}
	if stopTerms[s] || fillerPhrases[s] {
		return true
	}
	if numericRe.MatchString(s) {
		return true
	}

	fields := strings.Fields(s)
	if len(fields) == 1 && len([]rune(fields[0])) <= 3 {
		return true
	}

	return false
}

// CleanTranscript strips timestamp tokens and speaker-label prefixes from a
// raw transcript and collapses all whitespace runs to single spaces.
func CleanTranscript(raw string) string {
	s := timestampRe.ReplaceAllString(raw, " ")
	s = speakerRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return s
}

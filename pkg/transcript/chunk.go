package transcript

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// DefaultMaxChunkChars bounds chunk size so a chunk fits comfortably in both
// the linguistic analyzers and an LLM context window.
const DefaultMaxChunkChars = 1800

// langSampleRunes is how much of a chunk DetectLang samples.
const langSampleRunes = 800

var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true, '。': true,
}

// SplitIntoSentences splits text on sentence-terminal punctuation followed by
// whitespace. Runs of terminators and trailing closing quotes/brackets stay
// attached to their sentence. Spanish inverted marks (¿ ¡) open a sentence and
// are kept with it.
func SplitIntoSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(strings.TrimSpace(text))
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])

		if !sentenceTerminators[runes[i]] {
			continue
		}

		j := i + 1
		for j < len(runes) && sentenceTerminators[runes[j]] {
			current.WriteRune(runes[j])
			j++
		}
		for j < len(runes) && (runes[j] == '"' || runes[j] == '\'' || runes[j] == ')' ||
			runes[j] == ']' || runes[j] == '}' || runes[j] == '”' || runes[j] == '»') {
			current.WriteRune(runes[j])
			j++
		}

		// Only a terminator followed by whitespace (or end of input) closes a
		// sentence; "3.14" stays intact.
		if j < len(runes) && !isSpaceRune(runes[j]) {
			i = j - 1
			continue
		}

		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
		i = j - 1
	}

	remaining := strings.TrimSpace(current.String())
	if remaining != "" {
		sentences = append(sentences, remaining)
	}

	return sentences
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// ChunkText splits text into ordered, sentence-aligned chunks of at most
// maxChars characters. Consecutive sentences are packed greedily; a single
// sentence longer than maxChars is still emitted as its own oversized chunk
// rather than dropped. maxChars <= 0 selects DefaultMaxChunkChars.
func ChunkText(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChunkChars
	}

	sentences := SplitIntoSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var buffer strings.Builder

	flush := func() {
		if buffer.Len() == 0 {
			return
		}
		chunks = append(chunks, buffer.String())
		buffer.Reset()
	}

	for _, sentence := range sentences {
		extra := len(sentence)
		if buffer.Len() > 0 {
			extra++ // joining space
		}
		if buffer.Len()+extra > maxChars {
			flush()
		}
		if buffer.Len() > 0 {
			buffer.WriteString(" ")
		}
		buffer.WriteString(sentence)
	}
	flush()

	return chunks
}

// DetectLang samples a short prefix of text through language identification
// and returns "es" for Spanish, "en" otherwise. Detection failures and any
// other language fall back hard to "en".
func DetectLang(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return "en"
	}
	runes := []rune(sample)
	if len(runes) > langSampleRunes {
		sample = string(runes[:langSampleRunes])
	}

	info := whatlanggo.Detect(sample)
	if info.Lang == whatlanggo.Spa {
		return "es"
	}
	return "en"
}

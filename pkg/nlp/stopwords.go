package nlp

// englishStopwords is a compact function-word list for candidate filtering.
var englishStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"if": true, "then": true, "else": true, "when": true, "while": true,
	"of": true, "to": true, "in": true, "on": true, "at": true, "by": true,
	"for": true, "with": true, "about": true, "from": true, "into": true,
	"over": true, "under": true, "between": true, "through": true,
	"is": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "being": true, "am": true,
	"do": true, "does": true, "did": true, "have": true, "has": true,
	"had": true, "will": true, "would": true, "can": true, "could": true,
	"should": true, "shall": true, "may": true, "might": true, "must": true,
	"i": true, "you": true, "he": true, "she": true, "it": true, "we": true,
	"they": true, "me": true, "him": true, "her": true, "us": true,
	"them": true, "my": true, "your": true, "his": true, "its": true,
	"our": true, "their": true, "mine": true, "yours": true,
	"this": true, "that": true, "these": true, "those": true,
	"what": true, "which": true, "who": true, "whom": true, "whose": true,
	"where": true, "why": true, "how": true,
	"not": true, "no": true, "nor": true, "so": true, "too": true,
	"very": true, "just": true, "also": true, "only": true, "than": true,
	"as": true, "such": true, "both": true, "each": true, "all": true,
	"any": true, "some": true, "more": true, "most": true, "other": true,
	"there": true, "here": true, "now": true, "again": true, "once": true,
	"because": true, "until": true, "during": true, "before": true,
	"after": true, "above": true, "below": true, "up": true, "down": true,
	"out": true, "off": true, "further": true, "few": true, "own": true,
	"same": true,
}

// spanishStopwords mirrors englishStopwords for Spanish.
var spanishStopwords = map[string]bool{
	"el": true, "la": true, "los": true, "las": true, "un": true,
	"una": true, "unos": true, "unas": true, "lo": true, "al": true,
	"del": true, "y": true, "e": true, "o": true, "u": true, "ni": true,
	"pero": true, "sino": true, "si": true, "no": true, "que": true,
	"qué": true, "como": true, "cómo": true, "cuando": true,
	"cuándo": true, "donde": true, "dónde": true, "quien": true,
	"quién": true, "cual": true, "cuál": true, "cuyo": true,
	"de": true, "a": true, "en": true, "por": true, "para": true,
	"con": true, "sin": true, "sobre": true, "entre": true, "hasta": true,
	"desde": true, "hacia": true, "según": true, "tras": true,
	"es": true, "son": true, "era": true, "eran": true, "fue": true,
	"fueron": true, "ser": true, "estar": true, "está": true,
	"están": true, "estaba": true, "hay": true, "ha": true, "han": true,
	"he": true, "haber": true, "hacer": true, "hace": true,
	"yo": true, "tú": true, "tu": true, "él": true, "ella": true,
	"ello": true, "nosotros": true, "nosotras": true, "vosotros": true,
	"ustedes": true, "ellos": true, "ellas": true, "usted": true,
	"me": true, "te": true, "se": true, "nos": true, "os": true,
	"le": true, "les": true, "mi": true, "mis": true, "su": true,
	"sus": true, "nuestro": true, "nuestra": true, "vuestro": true,
	"este": true, "esta": true, "esto": true, "estos": true,
	"estas": true, "ese": true, "esa": true, "eso": true, "esos": true,
	"esas": true, "aquel": true, "aquella": true, "aquello": true,
	"más": true, "menos": true, "muy": true, "mucho": true,
	"mucha": true, "muchos": true, "muchas": true, "poco": true,
	"poca": true, "pocos": true, "todo": true, "toda": true,
	"todos": true, "todas": true, "otro": true, "otra": true,
	"otros": true, "otras": true, "mismo": true, "misma": true,
	"también": true, "tampoco": true, "ya": true, "aún": true,
	"así": true, "bien": true, "sólo": true, "solo": true,
	"entonces": true, "ahora": true, "aquí": true, "ahí": true,
	"allí": true, "luego": true, "antes": true, "después": true,
	"durante": true, "mientras": true, "porque": true, "pues": true,
	"cada": true, "algún": true, "alguna": true, "algunos": true,
	"algunas": true, "ningún": true, "ninguna": true,
}

// IsStopword reports whether the lowercase token is a stopword in the given
// language code ("en" or "es").
func IsStopword(lang, lower string) bool {
	if lang == "es" {
		return spanishStopwords[lower]
	}
	return englishStopwords[lower]
}

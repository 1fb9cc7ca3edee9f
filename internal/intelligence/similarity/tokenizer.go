// Package similarity builds the vector representations behind case
// retrieval: a TF-IDF corpus with a capped vocabulary for lexical scoring,
// and an in-memory dense index over embedding vectors.  Both expose cosine
// similarity; score normalization and ranking policy live in the retrieval
// service.
package similarity

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// reToken splits on every non-alphanumeric run.  Ruling text mixes Latin
// script with digits and registry punctuation; anything else is a separator.
var reToken = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// minTokenLength drops single letters and two-character particles, which are
// almost entirely noise in OCR-grade text.
const minTokenLength = 3

// Tokenize lowercases text and splits it into index terms, dropping short
// tokens and stopwords.
func Tokenize(text string) []string {
	parts := reToken.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if utf8.RuneCountInString(p) < minTokenLength {
			continue
		}
		if stopwords[p] {
			continue
		}
		tokens = append(tokens, p)
	}
	return tokens
}

// stopwords is the english stopword list applied during vectorization.  The
// corpus language is Indonesian, but the reference vectorizer configuration
// used the english list, and retrieval parity matters more here than
// linguistic fit: the list still removes boilerplate english terms from the
// portal footers while leaving Indonesian function words to the IDF weights.
var stopwords = buildStopwords(
	"a about above after again against all am an and any are aren as at be " +
		"because been before being below between both but by can cannot could " +
		"couldn did didn do does doesn doing don down during each few for from " +
		"further had hadn has hasn have haven having he her here hers herself " +
		"him himself his how i if in into is isn it its itself let me more most " +
		"mustn my myself no nor not of off on once only or other ought our ours " +
		"ourselves out over own same shan she should shouldn so some such than " +
		"that the their theirs them themselves then there these they this those " +
		"through to too under until up very was wasn we were weren what when " +
		"where which while who whom why with won would wouldn you your yours " +
		"yourself yourselves")

func buildStopwords(words string) map[string]bool {
	set := make(map[string]bool, 200)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

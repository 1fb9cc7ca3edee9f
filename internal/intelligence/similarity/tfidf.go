package similarity

import (
	"math"
	"sort"
)

// DefaultMaxFeatures caps the TF-IDF vocabulary at the most frequent terms.
const DefaultMaxFeatures = 5000

// Corpus is a TF-IDF vector space fit over a fixed document collection.
// Cases and queries are vectorized together in one corpus so that vocabulary
// and IDF weights are shared between them; document indices are therefore
// positions in the combined collection.
type Corpus struct {
	vectors []map[int]float64
	norms   []float64

	vocabulary map[string]int
	idf        []float64
}

// NewCorpus tokenizes every document, selects the vocabulary, and
// pre-computes TF-IDF vectors and their norms.  The vocabulary keeps at most
// maxFeatures terms, chosen by descending document frequency with
// alphabetical tie-break so runs over the same corpus are identical;
// maxFeatures <= 0 falls back to DefaultMaxFeatures.
func NewCorpus(documents []string, maxFeatures int) *Corpus {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	tokenized := make([][]string, len(documents))
	docFreq := make(map[string]int)
	for i, doc := range documents {
		tokens := Tokenize(doc)
		tokenized[i] = tokens

		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
	}

	c := &Corpus{
		vectors:    make([]map[int]float64, len(documents)),
		norms:      make([]float64, len(documents)),
		vocabulary: selectVocabulary(docFreq, maxFeatures),
	}

	// IDF = ln(N / df).  Every vocabulary term occurs in at least one
	// document, so the ratio is always defined.
	c.idf = make([]float64, len(c.vocabulary))
	n := float64(len(documents))
	for term, id := range c.vocabulary {
		c.idf[id] = math.Log(n / float64(docFreq[term]))
	}

	for i, tokens := range tokenized {
		c.vectors[i] = c.vectorize(tokens)
		c.norms[i] = sparseNorm(c.vectors[i])
	}
	return c
}

// selectVocabulary keeps the maxFeatures most document-frequent terms.
func selectVocabulary(docFreq map[string]int, maxFeatures int) map[string]int {
	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if docFreq[terms[i]] != docFreq[terms[j]] {
			return docFreq[terms[i]] > docFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	vocab := make(map[string]int, len(terms))
	for id, term := range terms {
		vocab[term] = id
	}
	return vocab
}

// vectorize maps a token list onto a sparse TF-IDF vector over the corpus
// vocabulary.  TF is the term count divided by the document's token count.
func (c *Corpus) vectorize(tokens []string) map[int]float64 {
	if len(tokens) == 0 {
		return map[int]float64{}
	}

	counts := make(map[int]int)
	for _, tok := range tokens {
		if id, ok := c.vocabulary[tok]; ok {
			counts[id]++
		}
	}

	vec := make(map[int]float64, len(counts))
	total := float64(len(tokens))
	for id, count := range counts {
		vec[id] = float64(count) / total * c.idf[id]
	}
	return vec
}

// Len returns the number of documents in the corpus.
func (c *Corpus) Len() int { return len(c.vectors) }

// VocabularySize returns the number of indexed terms.
func (c *Corpus) VocabularySize() int { return len(c.vocabulary) }

// Similarity returns the cosine similarity between documents i and j.
// Out-of-range indices and zero vectors score 0.
func (c *Corpus) Similarity(i, j int) float64 {
	if i < 0 || j < 0 || i >= len(c.vectors) || j >= len(c.vectors) {
		return 0.0
	}
	if c.norms[i] == 0 || c.norms[j] == 0 {
		return 0.0
	}
	return sparseDot(c.vectors[i], c.vectors[j]) / (c.norms[i] * c.norms[j])
}

func sparseDot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	dot := 0.0
	for id, av := range a {
		if bv, ok := b[id]; ok {
			dot += av * bv
		}
	}
	return dot
}

func sparseNorm(v map[int]float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

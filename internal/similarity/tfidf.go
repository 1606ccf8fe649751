// Package similarity ranks resolved issues against a target issue using
// TF-IDF weighted cosine similarity over unigram and bigram tokens.
//
// The vectorizer is deterministic: the vocabulary is capped at maxFeatures
// terms ranked by corpus term frequency (ties broken lexicographically),
// IDF is smoothed as ln((1+n)/(1+df)) + 1, and rows are L2-normalized so
// cosine similarity reduces to a dot product. The corpus is recomputed on
// every call; there is no persistent index.
package similarity

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/supportlabs/triagedesk/pkg/models"
)

const (
	maxFeatures  = 1000
	defaultLimit = 5
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]{2,}`)

// Rank scores every issue in corpus against the target text and returns the
// top-limit matches sorted by score descending. A non-positive limit falls
// back to defaultLimit. An empty corpus yields an empty slice, never nil.
func Rank(target string, corpus []*models.Issue, limit int) []models.SimilarityMatch {
	if limit <= 0 {
		limit = defaultLimit
	}

	matches := []models.SimilarityMatch{}
	if len(corpus) == 0 {
		return matches
	}

	// Target text joins the corpus as the last row so vocabulary and
	// document frequencies cover it too.
	rows := make([][]string, 0, len(corpus)+1)
	for _, issue := range corpus {
		rows = append(rows, tokenize(issue.Title+" "+issue.Description))
	}
	rows = append(rows, tokenize(target))

	vocab, idf := fit(rows)
	if len(vocab) == 0 {
		for _, issue := range corpus {
			matches = append(matches, models.SimilarityMatch{
				IssueID:         issue.ID,
				Resolution:      issue.Resolution,
				ResolutionHours: issue.ResolutionHours,
			})
		}
		if len(matches) > limit {
			matches = matches[:limit]
		}
		return matches
	}

	vectors := make([]map[int]float64, len(rows))
	for i, row := range rows {
		vectors[i] = vectorize(row, vocab, idf)
	}
	targetVec := vectors[len(vectors)-1]

	for i, issue := range corpus {
		matches = append(matches, models.SimilarityMatch{
			IssueID:         issue.ID,
			Score:           dot(targetVec, vectors[i]),
			Resolution:      issue.Resolution,
			ResolutionHours: issue.ResolutionHours,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// tokenize lowercases text, extracts alphanumeric tokens of two or more
// characters, drops stop words, and emits unigrams followed by adjacent
// bigrams over the remaining sequence.
func tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)

	kept := words[:0]
	for _, w := range words {
		if !isStopWord(w) {
			kept = append(kept, w)
		}
	}

	terms := make([]string, 0, 2*len(kept))
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// fit builds the capped vocabulary and per-term IDF weights from the
// tokenized rows.
func fit(rows [][]string) (map[string]int, []float64) {
	counts := make(map[string]int)
	df := make(map[string]int)
	for _, row := range rows {
		seen := make(map[string]struct{}, len(row))
		for _, term := range row {
			counts[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				df[term]++
			}
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(rows))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return vocab, idf
}

// vectorize produces a sparse L2-normalized TF-IDF vector for one row.
// Rows with no in-vocabulary terms come back empty and score zero
// against everything.
func vectorize(row []string, vocab map[string]int, idf []float64) map[int]float64 {
	vec := make(map[int]float64)
	for _, term := range row {
		if i, ok := vocab[term]; ok {
			vec[i]++
		}
	}

	var norm float64
	for i := range vec {
		vec[i] *= idf[i]
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func dot(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for i, v := range a {
		sum += v * b[i]
	}
	return sum
}

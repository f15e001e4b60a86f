// Package rerank rescores retrieved chunks jointly against the query text.
// Vector retrieval casts a wide net; the re-ranker applies lexical signals
// the embedding space cannot see (exact phrase hits, term proximity) before
// the top passages go to generation.
package rerank

import (
	"sort"
	"strings"
	"unicode"
)

// Candidate is a retrieved chunk with its vector similarity score.
type Candidate struct {
	ChunkID     string
	DocID       string
	Text        string
	VectorScore float64
}

// Scored is a candidate with its combined rerank score.
type Scored struct {
	Candidate
	RerankScore float64
}

// Weights controls the blend of lexical and vector signals.
type Weights struct {
	TermOverlap float64
	PhraseMatch float64
	Proximity   float64
	Vector      float64
}

// DefaultWeights favors lexical evidence while keeping the vector score as
// the base signal.
func DefaultWeights() Weights {
	return Weights{
		TermOverlap: 0.3,
		PhraseMatch: 0.25,
		Proximity:   0.15,
		Vector:      0.3,
	}
}

// Reranker orders candidates by joint query-passage relevance.
type Reranker struct {
	weights Weights
}

// NewReranker creates a re-ranker with the given weights; zero-value weights
// fall back to the defaults.
func NewReranker(w Weights) *Reranker {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	return &Reranker{weights: w}
}

// Rerank rescores candidates against query and returns the top m in
// descending rerank score, ties broken by ascending chunk ID. With no
// query terms to match, the original similarity order is kept, truncated
// to m.
func (r *Reranker) Rerank(query string, candidates []Candidate, m int) []Scored {
	if m <= 0 || len(candidates) == 0 {
		return nil
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return passthrough(candidates, m)
	}

	scored := make([]Scored, len(candidates))
	for i, c := range candidates {
		scored[i] = Scored{Candidate: c, RerankScore: r.score(query, terms, c)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].RerankScore != scored[j].RerankScore {
			return scored[i].RerankScore > scored[j].RerankScore
		}
		return scored[i].ChunkID < scored[j].ChunkID
	})
	if m < len(scored) {
		scored = scored[:m]
	}
	return scored
}

func (r *Reranker) score(query string, terms []string, c Candidate) float64 {
	textLower := strings.ToLower(c.Text)

	overlap := termOverlap(terms, textLower)

	phrase := 0.0
	if phraseMatch(query, textLower) {
		phrase = 1.0
	}

	prox := proximity(terms, textLower)

	return r.weights.TermOverlap*overlap +
		r.weights.PhraseMatch*phrase +
		r.weights.Proximity*prox +
		r.weights.Vector*c.VectorScore
}

// termOverlap is the fraction of query terms present in the passage.
func termOverlap(terms []string, textLower string) float64 {
	if len(terms) == 0 {
		return 0
	}
	words := wordSet(textLower)
	matched := 0
	for _, t := range terms {
		if _, ok := words[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// phraseMatch reports whether the whole query appears verbatim (case and
// whitespace folded) in the passage.
func phraseMatch(query, textLower string) bool {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	if q == "" {
		return false
	}
	folded := strings.Join(strings.Fields(textLower), " ")
	return strings.Contains(folded, q)
}

// proximity rewards passages where matched terms appear close together.
// It measures the tightest window of words covering all matched terms and
// maps it to (0, 1], 1 meaning adjacent.
func proximity(terms []string, textLower string) float64 {
	words := strings.Fields(textLower)
	positions := make(map[string][]int)
	want := make(map[string]bool, len(terms))
	for _, t := range terms {
		want[t] = true
	}
	for i, w := range words {
		w = trimPunct(w)
		if want[w] {
			positions[w] = append(positions[w], i)
		}
	}
	if len(positions) < 2 {
		if len(positions) == 1 {
			return 1.0
		}
		return 0
	}

	// Sliding window over all occurrence positions.
	type occ struct {
		pos  int
		term string
	}
	var occs []occ
	for term, ps := range positions {
		for _, p := range ps {
			occs = append(occs, occ{pos: p, term: term})
		}
	}
	sort.Slice(occs, func(i, j int) bool { return occs[i].pos < occs[j].pos })

	need := len(positions)
	counts := make(map[string]int)
	covered := 0
	best := -1
	left := 0
	for right := 0; right < len(occs); right++ {
		if counts[occs[right].term] == 0 {
			covered++
		}
		counts[occs[right].term]++
		for covered == need {
			span := occs[right].pos - occs[left].pos
			if best == -1 || span < best {
				best = span
			}
			counts[occs[left].term]--
			if counts[occs[left].term] == 0 {
				covered--
			}
			left++
		}
	}
	if best < 0 {
		return 0
	}
	// span == need-1 means the terms are adjacent.
	return float64(need-1) / float64(best+1)
}

func passthrough(candidates []Candidate, m int) []Scored {
	out := make([]Scored, 0, m)
	for i, c := range candidates {
		if i >= m {
			break
		}
		out = append(out, Scored{Candidate: c, RerankScore: c.VectorScore})
	}
	return out
}

func tokenize(s string) []string {
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = trimPunct(f)
		if len(f) >= 2 && !stopwords[f] {
			terms = append(terms, f)
		}
	}
	return terms
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func wordSet(textLower string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(textLower) {
		set[trimPunct(w)] = struct{}{}
	}
	return set
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "that": true, "the": true, "to": true, "was": true, "were": true,
	"what": true, "when": true, "where": true, "which": true, "who": true,
	"will": true, "with": true,
}

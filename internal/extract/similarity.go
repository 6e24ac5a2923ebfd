package extract

import (
	"regexp"
	"strings"
)

// Scorer algorithm names, selectable via configuration.
const (
	AlgorithmEditDistance = "edit-distance"
	AlgorithmHybrid       = "hybrid"
)

// Acceptance thresholds per algorithm.
const (
	editDistanceThreshold = 0.5
	hybridThreshold       = 0.6

	// lengthPenaltyWeight scales the |len(a)-len(b)| penalty added to the
	// raw edit distance.
	lengthPenaltyWeight = 0.5

	hybridRatioWeight     = 0.6
	hybridJaccardWeight   = 0.4
	hybridSubstringBonus  = 0.2
)

// FieldScore is the result of comparing a candidate name to one catalog field.
// Rank orders candidates (lower is better); Similarity is the normalized
// score in [0,1] reported to callers.
type FieldScore struct {
	Rank       float64
	Similarity float64
}

// Scorer computes a similarity between a cleaned candidate name and a
// cleaned catalog field. Implementations must be deterministic.
type Scorer interface {
	Score(candidate, field string) FieldScore
	Threshold() float64
}

// NewScorer returns the scorer for the given algorithm name, defaulting to
// edit distance for unknown names.
func NewScorer(algorithm string) Scorer {
	if algorithm == AlgorithmHybrid {
		return HybridScorer{}
	}
	return EditDistanceScorer{}
}

// EditDistanceScorer ranks by Levenshtein distance plus a length penalty and
// reports similarity as 1 - penalizedDistance/max(len). The penalty is part
// of both selection and the reported score, keeping the formula consistent.
type EditDistanceScorer struct{}

func (EditDistanceScorer) Threshold() float64 { return editDistanceThreshold }

func (EditDistanceScorer) Score(candidate, field string) FieldScore {
	distance := float64(levenshteinDistance(candidate, field))
	lenDiff := len(candidate) - len(field)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	distance += lengthPenaltyWeight * float64(lenDiff)

	maxLen := max(len(candidate), len(field))
	similarity := 0.0
	if maxLen > 0 {
		similarity = 1 - distance/float64(maxLen)
	}
	if similarity < 0 {
		similarity = 0
	}
	return FieldScore{Rank: distance, Similarity: similarity}
}

// HybridScorer blends an edit-distance ratio with token Jaccard similarity
// and a substring containment bonus. Higher similarity wins directly.
type HybridScorer struct{}

func (HybridScorer) Threshold() float64 { return hybridThreshold }

func (HybridScorer) Score(candidate, field string) FieldScore {
	maxLen := max(len(candidate), len(field))
	ratio := 0.0
	if maxLen > 0 {
		ratio = 1 - float64(levenshteinDistance(candidate, field))/float64(maxLen)
	}

	jaccard := tokenJaccard(candidate, field)

	similarity := hybridRatioWeight*ratio + hybridJaccardWeight*jaccard
	if candidate != "" && field != "" &&
		(strings.Contains(candidate, field) || strings.Contains(field, candidate)) {
		similarity += hybridSubstringBonus
	}
	if similarity > 1 {
		similarity = 1
	}
	if similarity < 0 {
		similarity = 0
	}
	return FieldScore{Rank: -similarity, Similarity: similarity}
}

// tokenJaccard computes intersection-over-union of whitespace-split token sets.
func tokenJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		set[t] = struct{}{}
	}
	return set
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of the full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// matchCleanRegex strips everything but lowercase alphanumerics and spaces;
// catalog fields and candidates go through the same cleaning before scoring.
var matchCleanRegex = regexp.MustCompile(`[^a-z0-9\s]`)

// cleanForMatch lowercases, strips punctuation and collapses whitespace.
func cleanForMatch(s string) string {
	s = strings.ToLower(s)
	s = matchCleanRegex.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

package extract

import (
	"github.com/rs/zerolog"

	"github.com/kiranascan/backend/internal/domain"
)

// Matched-field labels reported on a MatchResult.
const (
	FieldName         = "name"
	FieldBrandName    = "brand_name"
	FieldCategoryName = "category_name"
)

// Matcher maps a noisy extracted item name to the best catalog entry, or to
// nothing when no entry clears the scorer's acceptance threshold. It is a
// pure computation over its inputs; the logger only emits diagnostics.
type Matcher struct {
	scorer Scorer
	log    zerolog.Logger
}

// NewMatcher creates a matcher using the given scoring strategy.
func NewMatcher(scorer Scorer) *Matcher {
	return &Matcher{scorer: scorer, log: zerolog.Nop()}
}

// WithLogger returns a copy of the matcher that traces candidate evaluation.
func (m *Matcher) WithLogger(log zerolog.Logger) *Matcher {
	clone := *m
	clone.log = log
	return &clone
}

// Match scores candidateName against every catalog entry's comparison fields
// (item name, brand+name, category+name) and returns the best entry if it
// clears the acceptance threshold, nil otherwise. Entries are scanned in
// slice order with strict-improvement tracking, so results are deterministic
// for a stable catalog order.
func (m *Matcher) Match(candidateName string, catalog []domain.CatalogEntry) *domain.MatchResult {
	cleaned := cleanForMatch(candidateName)
	if cleaned == "" || len(catalog) == 0 {
		return nil
	}

	var best *domain.MatchResult
	bestRank := 0.0

	for i := range catalog {
		entry := &catalog[i]
		score, field := m.scoreEntry(cleaned, entry)

		if best == nil || score.Rank < bestRank {
			bestRank = score.Rank
			best = &domain.MatchResult{
				Item:            entry,
				SimilarityScore: score.Similarity,
				MatchedField:    field,
				ExtractedName:   candidateName,
				MatchedName:     entry.ItemName,
			}
			m.log.Debug().
				Str("candidate", cleaned).
				Str("item", entry.ItemName).
				Str("field", field).
				Float64("similarity", score.Similarity).
				Msg("new best match")
		}
	}

	if best == nil || best.SimilarityScore < m.scorer.Threshold() {
		m.log.Debug().Str("candidate", cleaned).Msg("no match above threshold")
		return nil
	}
	return best
}

// scoreEntry scores the candidate against the entry's available comparison
// fields and returns the best field score with its label.
func (m *Matcher) scoreEntry(cleaned string, entry *domain.CatalogEntry) (FieldScore, string) {
	best := m.scorer.Score(cleaned, cleanForMatch(entry.ItemName))
	field := FieldName

	if entry.HasBrand() {
		s := m.scorer.Score(cleaned, cleanForMatch(entry.Brand+" "+entry.ItemName))
		if s.Rank < best.Rank {
			best, field = s, FieldBrandName
		}
	}
	if entry.HasCategory() {
		s := m.scorer.Score(cleaned, cleanForMatch(entry.Category+" "+entry.ItemName))
		if s.Rank < best.Rank {
			best, field = s, FieldCategoryName
		}
	}
	return best, field
}

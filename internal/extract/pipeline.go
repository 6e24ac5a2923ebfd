package extract

import (
	"context"
	"math"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kiranascan/backend/internal/domain"
)

// Config tunes the extraction pipeline.
type Config struct {
	Algorithm         string  // AlgorithmEditDistance or AlgorithmHybrid
	Mode              Mode    // ModeNameOnly or ModeStructured
	YTolerance        float64 // vertical grouping tolerance in pixels
	MinLineConfidence float64
}

// Pipeline runs line reconstruction, cleaning and catalog matching over the
// raw fragments of one receipt image. It holds no mutable state between
// invocations; concurrent runs over different inputs are safe.
type Pipeline struct {
	lines   *LineReconstructor
	cleaner *Cleaner
	matcher *Matcher
	log     zerolog.Logger
}

var titleCaser = cases.Title(language.English)

// NewPipeline assembles a pipeline from configuration.
func NewPipeline(cfg Config, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		lines:   NewLineReconstructor(cfg.YTolerance),
		cleaner: NewCleaner(cfg.Mode, cfg.MinLineConfidence),
		matcher: NewMatcher(NewScorer(cfg.Algorithm)).WithLogger(log),
		log:     log,
	}
}

// Matcher exposes the pipeline's matcher for callers that score standalone
// queries (inventory search) with the same configuration.
func (p *Pipeline) Matcher() *Matcher {
	return p.matcher
}

// Process turns OCR fragments into the final ordered list of extracted line
// items matched against the catalog snapshot. The snapshot is treated as
// immutable for the duration of the run. Per-line failures are logged and
// skipped; only a malformed fragment (a caller contract violation) or
// context cancellation fails the whole call. An empty or unavailable catalog
// degrades to all items unmatched.
func (p *Pipeline) Process(
	ctx context.Context,
	fragments []domain.RawFragment,
	catalog []domain.CatalogEntry,
) (*domain.ReceiptExtraction, error) {
	lines, err := p.lines.Reconstruct(fragments)
	if err != nil {
		return nil, err
	}

	items := make([]domain.ExtractedLineItem, 0, len(lines))
	for _, line := range lines {
		// Each line is a separately cancellable unit of work.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if item, ok := p.processLine(line, catalog); ok {
			items = append(items, item)
		}
	}

	return &domain.ReceiptExtraction{
		Items:     dedupeItems(items),
		Lines:     lines,
		Fragments: fragments,
	}, nil
}

// processLine extracts one item from one reconstructed line. A panic inside
// cleaning or matching is contained here so a single bad line cannot abort
// the batch.
func (p *Pipeline) processLine(
	line domain.ReconstructedLine,
	catalog []domain.CatalogEntry,
) (item domain.ExtractedLineItem, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn().
				Str("line", line.Text).
				Interface("panic", r).
				Msg("skipping line after processing failure")
			ok = false
		}
	}()

	record, accepted := p.cleaner.Extract(line)
	if !accepted {
		p.log.Debug().Str("line", line.Text).Msg("line rejected by cleaner")
		return item, false
	}

	match := p.matcher.Match(record.Name, catalog)

	item = domain.ExtractedLineItem{
		RawText:     line.Text,
		CleanedName: record.Name,
		Quantity:    record.Quantity,
		Unit:        record.Unit,
		Confidence:  roundConfidence(line.Confidence),
		Match:       match,
	}
	if match != nil {
		// Prefer the catalog's canonical name: trusted data over OCR noise.
		item.Item = match.Item.ItemName
	} else {
		item.Item = titleCaser.String(record.Name)
	}
	return item, true
}

// dedupeItems drops later duplicates by case-insensitive item name, keeping
// the first occurrence.
func dedupeItems(items []domain.ExtractedLineItem) []domain.ExtractedLineItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		key := strings.ToLower(item.Item)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}

func roundConfidence(c float64) float64 {
	return math.Round(c*100) / 100
}

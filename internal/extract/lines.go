package extract

import (
	"math"
	"sort"
	"strings"

	"github.com/kiranascan/backend/internal/domain"
)

// DefaultYTolerance is the vertical grouping tolerance in pixels. It is a
// fixed constant tuned for typical receipt line spacing, not derived from
// image DPI; deployments with unusual OCR engines may need to adjust it.
const DefaultYTolerance = 30.0

// LineReconstructor groups scattered OCR fragments into coherent
// left-to-right, top-to-bottom receipt lines.
type LineReconstructor struct {
	yTolerance float64
}

// NewLineReconstructor creates a reconstructor with the given vertical
// tolerance in pixels. Non-positive values fall back to DefaultYTolerance.
func NewLineReconstructor(yTolerance float64) *LineReconstructor {
	if yTolerance <= 0 {
		yTolerance = DefaultYTolerance
	}
	return &LineReconstructor{yTolerance: yTolerance}
}

// sortedFragment carries a fragment with its precomputed geometry so sorting
// never re-derives coordinates.
type sortedFragment struct {
	text       string
	confidence float64
	centerY    float64
	originX    float64
}

// Reconstruct merges fragments into ordered lines. Fragments with empty or
// whitespace-only text are dropped up front. A fragment with a malformed
// polygon fails the whole call: silently dropping it could corrupt the
// grouping of every line below it.
func (r *LineReconstructor) Reconstruct(fragments []domain.RawFragment) ([]domain.ReconstructedLine, error) {
	sorted := make([]sortedFragment, 0, len(fragments))
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		centerY, err := verticalCenter(f)
		if err != nil {
			return nil, err
		}
		originX, err := horizontalOrigin(f)
		if err != nil {
			return nil, err
		}
		sorted = append(sorted, sortedFragment{
			text:       strings.TrimSpace(f.Text),
			confidence: f.Confidence,
			centerY:    centerY,
			originX:    originX,
		})
	}

	// Stable sort keeps detection order for exact coordinate ties.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].centerY == sorted[j].centerY {
			return sorted[i].originX < sorted[j].originX
		}
		return sorted[i].centerY < sorted[j].centerY
	})

	var (
		lines       []domain.ReconstructedLine
		currentLine []sortedFragment
		currentY    float64
		haveLine    bool
	)

	closeLine := func() {
		if len(currentLine) == 0 {
			return
		}
		// Within a line, word order follows horizontal position even when the
		// fragments' vertical centers differ slightly.
		sort.SliceStable(currentLine, func(i, j int) bool {
			return currentLine[i].originX < currentLine[j].originX
		})
		texts := make([]string, len(currentLine))
		confSum := 0.0
		for i, f := range currentLine {
			texts[i] = f.text
			confSum += f.confidence
		}
		lines = append(lines, domain.ReconstructedLine{
			Text:       strings.Join(texts, " "),
			Confidence: confSum / float64(len(currentLine)),
		})
		currentLine = currentLine[:0]
	}

	for _, f := range sorted {
		if !haveLine || math.Abs(f.centerY-currentY) <= r.yTolerance {
			currentLine = append(currentLine, f)
			if !haveLine {
				currentY = f.centerY
				haveLine = true
			} else {
				// Two-point midpoint each step, so the line's anchor drifts
				// toward recent fragments rather than staying at the first.
				currentY = (currentY + f.centerY) / 2
			}
			continue
		}
		closeLine()
		currentLine = append(currentLine, f)
		currentY = f.centerY
	}
	closeLine()

	return lines, nil
}

package ocr

import (
	"fmt"

	"github.com/kiranascan/backend/internal/domain"
)

// wireResponse is the recognition payload the sidecar returns: parallel
// arrays of detection polygons, recognized texts and confidence scores.
type wireResponse struct {
	Polygons [][][2]float64 `json:"dt_polys"`
	Texts    []string       `json:"rec_texts"`
	Scores   []float64      `json:"rec_scores"`
}

// fragments converts the parallel wire arrays into raw fragments.
// The arrays must be the same length and every polygon needs all four
// corners; a shorter scores array falls back to zero confidence.
func (w wireResponse) fragments() ([]domain.RawFragment, error) {
	if len(w.Polygons) != len(w.Texts) {
		return nil, fmt.Errorf("ocr response has %d polygons for %d texts", len(w.Polygons), len(w.Texts))
	}

	out := make([]domain.RawFragment, 0, len(w.Texts))
	for i, poly := range w.Polygons {
		if len(poly) < 4 {
			return nil, fmt.Errorf("ocr polygon %d has %d corners: %w", i, len(poly), domain.ErrMalformedFragment)
		}

		points := make([]domain.Point, len(poly))
		for j, corner := range poly {
			points[j] = domain.Point{X: corner[0], Y: corner[1]}
		}

		var score float64
		if i < len(w.Scores) {
			score = w.Scores[i]
		}

		out = append(out, domain.RawFragment{
			Polygon:    points,
			Text:       w.Texts[i],
			Confidence: score,
		})
	}
	return out, nil
}

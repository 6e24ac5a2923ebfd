package extract

import (
	"errors"
	"math"
	"testing"

	"github.com/kiranascan/backend/internal/domain"
)

// frag builds a fragment with a box of height 20, so its vertical center is
// topY+10 and its horizontal origin is x.
func frag(x, topY float64, text string, confidence float64) domain.RawFragment {
	return domain.RawFragment{
		Polygon: []domain.Point{
			{X: x, Y: topY},
			{X: x + 50, Y: topY},
			{X: x + 50, Y: topY + 20},
			{X: x, Y: topY + 20},
		},
		Text:       text,
		Confidence: confidence,
	}
}

func TestReconstructBasics(t *testing.T) {
	r := NewLineReconstructor(20)

	t.Run("zero fragments give empty output", func(t *testing.T) {
		lines, err := r.Reconstruct(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 0 {
			t.Errorf("lines = %d, want 0", len(lines))
		}
	})

	t.Run("single fragment gives one line", func(t *testing.T) {
		lines, err := r.Reconstruct([]domain.RawFragment{frag(10, 100, "milk", 0.9)})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 1 || lines[0].Text != "milk" {
			t.Errorf("lines = %+v, want one line 'milk'", lines)
		}
	})

	t.Run("whitespace-only fragments are dropped", func(t *testing.T) {
		lines, err := r.Reconstruct([]domain.RawFragment{
			frag(10, 100, "   ", 0.9),
			frag(60, 100, "milk", 0.9),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 1 || lines[0].Text != "milk" {
			t.Errorf("lines = %+v, want one line 'milk'", lines)
		}
	})

	t.Run("malformed polygon fails the whole call", func(t *testing.T) {
		bad := domain.RawFragment{
			Polygon:    []domain.Point{{X: 1, Y: 2}},
			Text:       "oops",
			Confidence: 0.9,
		}
		_, err := r.Reconstruct([]domain.RawFragment{frag(10, 100, "milk", 0.9), bad})
		if !errors.Is(err, domain.ErrMalformedFragment) {
			t.Errorf("error = %v, want ErrMalformedFragment", err)
		}
	})
}

func TestReconstructOrderPreservation(t *testing.T) {
	r := NewLineReconstructor(20)

	// Same visual line, handed over in scrambled order.
	fragments := []domain.RawFragment{
		frag(120, 101, "dal", 0.8),
		frag(10, 100, "toor", 0.9),
		frag(60, 102, "premium", 0.85),
	}
	lines, err := r.Reconstruct(fragments)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	if lines[0].Text != "toor premium dal" {
		t.Errorf("text = %q, want left-to-right order 'toor premium dal'", lines[0].Text)
	}
}

func TestReconstructToleranceBoundary(t *testing.T) {
	r := NewLineReconstructor(20)

	t.Run("exactly at tolerance groups together", func(t *testing.T) {
		// Centers 100 and 120: difference exactly 20.
		lines, err := r.Reconstruct([]domain.RawFragment{
			frag(10, 90, "a", 0.9),
			frag(60, 110, "b", 0.9),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 1 {
			t.Fatalf("lines = %d, want 1 (boundary is inclusive)", len(lines))
		}
	})

	t.Run("just past tolerance splits", func(t *testing.T) {
		lines, err := r.Reconstruct([]domain.RawFragment{
			frag(10, 90, "a", 0.9),
			frag(60, 110.02, "b", 0.9),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(lines) != 2 {
			t.Fatalf("lines = %d, want 2", len(lines))
		}
	})
}

func TestReconstructDrift(t *testing.T) {
	r := NewLineReconstructor(20)

	// Consecutive centers 100, 115, 122, 130: each within tolerance of the
	// running midpoint, but first and last differ by 30 > tolerance. The
	// midpoint anchor lets the line drift downward without splitting.
	lines, err := r.Reconstruct([]domain.RawFragment{
		frag(10, 90, "a", 0.9),
		frag(60, 105, "b", 0.9),
		frag(110, 112, "c", 0.9),
		frag(160, 120, "d", 0.9),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1 (drifting line must not split)", len(lines))
	}
	if lines[0].Text != "a b c d" {
		t.Errorf("text = %q, want 'a b c d'", lines[0].Text)
	}
}

func TestReconstructConfidenceMean(t *testing.T) {
	r := NewLineReconstructor(20)

	lines, err := r.Reconstruct([]domain.RawFragment{
		frag(10, 100, "amul", 0.9),
		frag(60, 102, "milk", 0.85),
		frag(10, 200, "toor dal", 0.8),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0].Text != "amul milk" {
		t.Errorf("first line = %q, want 'amul milk'", lines[0].Text)
	}
	if math.Abs(lines[0].Confidence-0.875) > 1e-9 {
		t.Errorf("confidence = %v, want 0.875", lines[0].Confidence)
	}
	if lines[1].Text != "toor dal" || lines[1].Confidence != 0.8 {
		t.Errorf("second line = %+v, want 'toor dal' at 0.8", lines[1])
	}
}

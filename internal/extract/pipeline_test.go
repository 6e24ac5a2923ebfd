package extract

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kiranascan/backend/internal/domain"
)

func testPipeline(algorithm string, mode Mode) *Pipeline {
	return NewPipeline(Config{
		Algorithm:  algorithm,
		Mode:       mode,
		YTolerance: 20,
	}, zerolog.Nop())
}

func TestPipelineEndToEnd(t *testing.T) {
	fragments := []domain.RawFragment{
		frag(10, 100, "amul", 0.9),
		frag(60, 102, "milk", 0.85),
		frag(10, 200, "toor dal", 0.8),
	}
	catalog := []domain.CatalogEntry{
		{ItemID: "1", ItemName: "Milk", Brand: "Amul"},
		{ItemID: "2", ItemName: "Toor Dal", Brand: domain.BrandAbsent},
	}

	for _, algorithm := range []string{AlgorithmEditDistance, AlgorithmHybrid} {
		t.Run(algorithm, func(t *testing.T) {
			p := testPipeline(algorithm, ModeNameOnly)
			got, err := p.Process(context.Background(), fragments, catalog)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got.Lines) != 2 {
				t.Fatalf("lines = %d, want 2", len(got.Lines))
			}
			if got.Lines[0].Text != "amul milk" || math.Abs(got.Lines[0].Confidence-0.875) > 1e-9 {
				t.Errorf("line 0 = %+v, want 'amul milk' at 0.875", got.Lines[0])
			}

			if len(got.Items) != 2 {
				t.Fatalf("items = %d, want 2", len(got.Items))
			}
			first, second := got.Items[0], got.Items[1]
			if first.Item != "Milk" || first.Match == nil || first.Match.MatchedField != FieldBrandName {
				t.Errorf("item 0 = %+v, want canonical Milk via brand_name", first)
			}
			if second.Item != "Toor Dal" || second.Match == nil || second.Match.MatchedField != FieldName {
				t.Errorf("item 1 = %+v, want canonical Toor Dal via name", second)
			}
			if first.Quantity != nil {
				t.Errorf("quantity = %v, want nil in name-only mode", *first.Quantity)
			}
		})
	}
}

func TestPipelineUnmatchedItems(t *testing.T) {
	p := testPipeline(AlgorithmEditDistance, ModeNameOnly)

	t.Run("empty catalog degrades to unmatched", func(t *testing.T) {
		got, err := p.Process(context.Background(), []domain.RawFragment{
			frag(10, 100, "amul milk", 0.9),
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Items) != 1 {
			t.Fatalf("items = %d, want 1", len(got.Items))
		}
		item := got.Items[0]
		if item.Match != nil {
			t.Errorf("match = %+v, want nil", item.Match)
		}
		if item.Item != "Amul Milk" {
			t.Errorf("item = %q, want title-cased 'Amul Milk'", item.Item)
		}
	})

	t.Run("low-confidence lines are skipped silently", func(t *testing.T) {
		got, err := p.Process(context.Background(), []domain.RawFragment{
			frag(10, 100, "smudged text", 0.1),
			frag(10, 200, "toor dal", 0.9),
		}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Items) != 1 || got.Items[0].Item != "Toor Dal" {
			t.Errorf("items = %+v, want only 'Toor Dal'", got.Items)
		}
		// Rejected lines still show up as intermediate diagnostic data.
		if len(got.Lines) != 2 {
			t.Errorf("lines = %d, want 2", len(got.Lines))
		}
	})
}

func TestPipelineDeduplication(t *testing.T) {
	p := testPipeline(AlgorithmEditDistance, ModeNameOnly)
	catalog := []domain.CatalogEntry{{ItemID: "1", ItemName: "Milk", Brand: "Amul"}}

	// Two far-apart lines that both resolve to the catalog's Milk.
	got, err := p.Process(context.Background(), []domain.RawFragment{
		frag(10, 100, "amul milk", 0.9),
		frag(10, 300, "amul mikl", 0.8),
	}, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1 after dedup", len(got.Items))
	}
	if got.Items[0].Confidence != 0.9 {
		t.Errorf("confidence = %v, want the first occurrence kept", got.Items[0].Confidence)
	}
}

func TestPipelineStructuredMode(t *testing.T) {
	p := testPipeline(AlgorithmEditDistance, ModeStructured)
	catalog := []domain.CatalogEntry{{ItemID: "1", ItemName: "Basmati Rice"}}

	got, err := p.Process(context.Background(), []domain.RawFragment{
		frag(10, 100, "basmati rice x 2 kg", 0.9),
	}, catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(got.Items))
	}
	item := got.Items[0]
	if item.Item != "Basmati Rice" || item.Quantity == nil || *item.Quantity != 2 || item.Unit != "kg" {
		t.Errorf("item = %+v, want Basmati Rice x2 kg", item)
	}
}

func TestPipelineErrors(t *testing.T) {
	p := testPipeline(AlgorithmEditDistance, ModeNameOnly)

	t.Run("malformed fragment fails the call", func(t *testing.T) {
		bad := domain.RawFragment{Polygon: []domain.Point{{X: 1, Y: 1}}, Text: "x y", Confidence: 0.9}
		_, err := p.Process(context.Background(), []domain.RawFragment{bad}, nil)
		if !errors.Is(err, domain.ErrMalformedFragment) {
			t.Errorf("error = %v, want ErrMalformedFragment", err)
		}
	})

	t.Run("cancellation stops between lines", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Process(ctx, []domain.RawFragment{frag(10, 100, "milk", 0.9)}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

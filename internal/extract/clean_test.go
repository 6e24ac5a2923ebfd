package extract

import (
	"testing"

	"github.com/kiranascan/backend/internal/domain"
)

func line(text string, confidence float64) domain.ReconstructedLine {
	return domain.ReconstructedLine{Text: text, Confidence: confidence}
}

func TestCleanNameOnly(t *testing.T) {
	c := NewCleaner(ModeNameOnly, 0)

	testCases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"lowercases", "Amul MILK", "amul milk", true},
		{"strips angle brackets and colons", "<total>: milk", "total milk", true},
		{"noise symbols become spaces", "rice*5/bag", "rice 5 bag", true},
		{"hyphen and en-dash become spaces", "toor-dal – fine", "toor dal fine", true},
		{"strips punctuation", "maggi!! (2 min.)", "maggi 2 min", true},
		{"collapses whitespace", "  milk    bottle  ", "milk bottle", true},
		{"expands 2k as thousands", "sugar 2k", "sugar 2000", true},
		{"leaves k inside words alone", "kismis pack", "kismis pack", true},
		{"rejects too short", "a", "", false},
		{"rejects digits only", "12345", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := c.Clean(line(tc.in, 0.9))
			if ok != tc.ok || got != tc.want {
				t.Errorf("Clean(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}

	t.Run("rejects low confidence", func(t *testing.T) {
		if _, ok := c.Clean(line("perfectly good milk", 0.2)); ok {
			t.Error("expected low-confidence line to be rejected")
		}
	})

	t.Run("cleaning is idempotent", func(t *testing.T) {
		first, ok := c.Clean(line("Amul* Gold <Milk>: 1L", 0.9))
		if !ok {
			t.Fatal("expected line to be accepted")
		}
		second, ok := c.Clean(line(first, 0.9))
		if !ok || second != first {
			t.Errorf("re-cleaning changed %q to %q", first, second)
		}
	})
}

func TestExtractStructured(t *testing.T) {
	c := NewCleaner(ModeStructured, 0)

	qty := func(v float64) *float64 { return &v }

	testCases := []struct {
		name     string
		in       string
		wantName string
		wantQty  *float64
		wantUnit string
	}{
		{"name x qty unit", "basmati rice x 2 kg", "basmati rice", qty(2), "kg"},
		{"star as quantity separator", "basmati rice * 2 kg", "basmati rice", qty(2), "kg"},
		{"name x qty", "maggi x3", "maggi", qty(3), ""},
		{"name qty unit", "toor dal 1.5 kgs", "toor dal", qty(1.5), "kg"},
		{"name qty", "parle g 2", "parle g", qty(2), ""},
		{"name alone", "amul butter", "amul butter", nil, ""},
		{"unit alias pcs", "eggs 12 pcs", "eggs", qty(12), "pc"},
		{"ocr confusion k6", "atta 5 k6", "atta", qty(5), "kg"},
		{"thousands expansion feeds quantity", "sugar x 2k", "sugar", qty(2000), ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, ok := c.Extract(line(tc.in, 0.9))
			if !ok {
				t.Fatalf("Extract(%q) rejected, want accepted", tc.in)
			}
			if rec.Name != tc.wantName {
				t.Errorf("name = %q, want %q", rec.Name, tc.wantName)
			}
			switch {
			case tc.wantQty == nil && rec.Quantity != nil:
				t.Errorf("quantity = %v, want nil", *rec.Quantity)
			case tc.wantQty != nil && rec.Quantity == nil:
				t.Errorf("quantity = nil, want %v", *tc.wantQty)
			case tc.wantQty != nil && *rec.Quantity != *tc.wantQty:
				t.Errorf("quantity = %v, want %v", *rec.Quantity, *tc.wantQty)
			}
			if rec.Unit != tc.wantUnit {
				t.Errorf("unit = %q, want %q", rec.Unit, tc.wantUnit)
			}
		})
	}

	t.Run("out-of-range quantity falls back to 1", func(t *testing.T) {
		rec, ok := c.Extract(line("rice x 99999", 0.9))
		if !ok {
			t.Fatal("expected line to be accepted")
		}
		if rec.Quantity == nil || *rec.Quantity != 1 {
			t.Errorf("quantity = %v, want fallback 1", rec.Quantity)
		}
	})

	t.Run("captured name must still look like a name", func(t *testing.T) {
		// "12 34" matches no pattern with a valid name and has no letters.
		if _, ok := c.Extract(line("12 34", 0.9)); ok {
			t.Error("expected numeric-only line to be rejected")
		}
	})

	t.Run("name-only mode leaves quantity unset", func(t *testing.T) {
		nameOnly := NewCleaner(ModeNameOnly, 0)
		rec, ok := nameOnly.Extract(line("basmati rice x 2 kg", 0.9))
		if !ok {
			t.Fatal("expected line to be accepted")
		}
		if rec.Quantity != nil {
			t.Errorf("quantity = %v, want nil in name-only mode", *rec.Quantity)
		}
	})
}

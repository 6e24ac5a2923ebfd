package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kiranascan/backend/internal/domain"
)

// Mode selects how much structure the cleaner tries to recover from a line.
type Mode string

const (
	// ModeNameOnly extracts just the item name; quantity is left for manual
	// entry in the correction UI.
	ModeNameOnly Mode = "name-only"
	// ModeStructured additionally tries to split a line into
	// (name, quantity, unit) via pattern matching.
	ModeStructured Mode = "structured"
)

// Cleaning thresholds.
const (
	// MinLineConfidence is the minimum OCR confidence for a line to be considered.
	MinLineConfidence = 0.25
	// minNameLength is the minimum length of a usable cleaned name.
	minNameLength = 2
	// maxSaneQuantity bounds quantity parsing; receipts don't sell 10001 of anything.
	maxSaneQuantity = 10000
)

// Package-level compiled regex patterns for performance
var (
	angleColonRegex = regexp.MustCompile(`[<>:]`)
	multiplierRegex = regexp.MustCompile(`[*/×]`)
	dashRegex       = regexp.MustCompile(`[\-–]`)

	nonCleanNameRegex       = regexp.MustCompile(`[^a-z0-9\s]`)
	nonCleanStructuredRegex = regexp.MustCompile(`[^a-z0-9\s.x]`)

	multiSpaceRegex = regexp.MustCompile(`\s+`)
	letterRegex     = regexp.MustCompile(`[a-z]`)

	// "2k" on a receipt means 2000. Narrow correction: digits followed by a
	// bare k with no digit after it.
	thousandsRegex = regexp.MustCompile(`\b(\d+)k\b`)
)

// Structured patterns, most specific first. The first match whose captured
// name still looks like a name wins.
var structuredPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.+?)\s+x\s*(\d+(?:\.\d+)?)\s+([a-z][a-z0-9]*)$`), // name x qty unit
	regexp.MustCompile(`^(.+?)\s+x\s*(\d+(?:\.\d+)?)$`),                    // name x qty
	regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)\s*([a-z][a-z0-9]*)$`),     // name qty unit
	regexp.MustCompile(`^(.+?)\s+(\d+(?:\.\d+)?)$`),                        // name qty
}

// unitAliases normalizes unit abbreviations, including a couple of common
// OCR confusions (k6/k0 for kg).
var unitAliases = map[string]string{
	"kg": "kg", "kgs": "kg", "kilogram": "kg", "kilograms": "kg",
	"k6": "kg", "k0": "kg",
	"g": "g", "gm": "g", "gms": "g", "gram": "g", "grams": "g",
	"l": "l", "ltr": "l", "litre": "l", "litres": "l", "liter": "l", "liters": "l",
	"ml": "ml",
	"pc": "pc", "pcs": "pc", "piece": "pc", "pieces": "pc",
	"pkt": "pkt", "packet": "pkt", "packets": "pkt",
	"dz": "dz", "dozen": "dz",
}

// LineRecord is the structured form of one cleaned receipt line.
type LineRecord struct {
	Name     string
	Quantity *float64
	Unit     string
}

// Cleaner normalizes reconstructed line text ahead of matching.
type Cleaner struct {
	mode          Mode
	minConfidence float64
}

// NewCleaner creates a cleaner for the given extraction mode. A non-positive
// confidence floor falls back to MinLineConfidence.
func NewCleaner(mode Mode, minConfidence float64) *Cleaner {
	if mode != ModeStructured {
		mode = ModeNameOnly
	}
	if minConfidence <= 0 {
		minConfidence = MinLineConfidence
	}
	return &Cleaner{mode: mode, minConfidence: minConfidence}
}

// Clean normalizes a reconstructed line's raw text. The second return value
// is false when the line should be skipped: confidence below the floor, too
// short, or nothing alphabetic surviving the cleanup.
func (c *Cleaner) Clean(line domain.ReconstructedLine) (string, bool) {
	if line.Confidence < c.minConfidence {
		return "", false
	}
	text := strings.ToLower(strings.TrimSpace(line.Text))
	if len(text) < minNameLength {
		return "", false
	}

	text = angleColonRegex.ReplaceAllString(text, "")
	if c.mode == ModeStructured {
		// Multiplication-like symbols likely separate name from quantity.
		text = multiplierRegex.ReplaceAllString(text, " x ")
		text = dashRegex.ReplaceAllString(text, " ")
		text = nonCleanStructuredRegex.ReplaceAllString(text, "")
	} else {
		text = multiplierRegex.ReplaceAllString(text, " ")
		text = dashRegex.ReplaceAllString(text, " ")
		text = nonCleanNameRegex.ReplaceAllString(text, "")
	}

	text = thousandsRegex.ReplaceAllStringFunc(text, func(m string) string {
		digits := strings.TrimSuffix(m, "k")
		n, err := strconv.Atoi(digits)
		if err != nil {
			return m
		}
		return strconv.Itoa(n * 1000)
	})

	text = strings.TrimSpace(multiSpaceRegex.ReplaceAllString(text, " "))
	if len(text) < minNameLength || !letterRegex.MatchString(text) {
		return "", false
	}
	return text, true
}

// Extract cleans a line and, in structured mode, splits it into
// (name, quantity, unit). In name-only mode the whole cleaned text becomes
// the name and quantity stays nil for manual entry.
func (c *Cleaner) Extract(line domain.ReconstructedLine) (*LineRecord, bool) {
	cleaned, ok := c.Clean(line)
	if !ok {
		return nil, false
	}
	if c.mode != ModeStructured {
		return &LineRecord{Name: cleaned}, true
	}

	for _, pattern := range structuredPatterns {
		m := pattern.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if len(name) < minNameLength || !letterRegex.MatchString(name) {
			continue
		}
		qty, err := strconv.ParseFloat(m[2], 64)
		if err != nil || qty <= 0 || qty > maxSaneQuantity {
			// Out-of-range quantity: keep the name, fall back to qty=1.
			one := 1.0
			return &LineRecord{Name: name, Quantity: &one}, true
		}
		rec := &LineRecord{Name: name, Quantity: &qty}
		if len(m) > 3 && m[3] != "" {
			rec.Unit = normalizeUnit(m[3])
		}
		return rec, true
	}

	// No quantity shape recognized; treat the whole line as a name.
	if letterRegex.MatchString(cleaned) {
		return &LineRecord{Name: cleaned}, true
	}
	return nil, false
}

// normalizeUnit maps unit spellings and OCR confusions to canonical forms.
// Unknown units pass through unchanged.
func normalizeUnit(u string) string {
	if canonical, ok := unitAliases[u]; ok {
		return canonical
	}
	return u
}

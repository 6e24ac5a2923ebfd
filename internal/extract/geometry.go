package extract

import (
	"fmt"

	"github.com/kiranascan/backend/internal/domain"
)

// polygonCorners is the number of corner points an OCR bounding polygon must
// carry: top-left, top-right, bottom-right, bottom-left.
const polygonCorners = 4

// verticalCenter returns the representative vertical position of a fragment:
// the average of the y-coordinates of the top-left and bottom-right corners,
// the two diagonal points spanning the box's height.
func verticalCenter(f domain.RawFragment) (float64, error) {
	if len(f.Polygon) < polygonCorners {
		return 0, fmt.Errorf("%w: got %d corner points, want %d",
			domain.ErrMalformedFragment, len(f.Polygon), polygonCorners)
	}
	return (f.Polygon[0].Y + f.Polygon[2].Y) / 2, nil
}

// horizontalOrigin returns the x-coordinate of the fragment's top-left corner,
// used to order fragments left to right within a line.
func horizontalOrigin(f domain.RawFragment) (float64, error) {
	if len(f.Polygon) < 1 {
		return 0, fmt.Errorf("%w: empty polygon", domain.ErrMalformedFragment)
	}
	return f.Polygon[0].X, nil
}

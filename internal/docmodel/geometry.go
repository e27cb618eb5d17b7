package docmodel

// BoundingBox is an axis-aligned region on a single page, in page
// coordinate space (y grows downward). The page index is part of the
// box's identity: boxes on different pages never overlap.
type BoundingBox struct {
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	Page int     `json:"page"`
}

func (b BoundingBox) Width() float64 {
	return b.X1 - b.X0
}

func (b BoundingBox) Height() float64 {
	return b.Y1 - b.Y0
}

func (b BoundingBox) Area() float64 {
	return b.Width() * b.Height()
}

// Valid reports whether the box has non-negative extent on both axes.
func (b BoundingBox) Valid() bool {
	return b.X1 >= b.X0 && b.Y1 >= b.Y0
}

// Overlaps reports whether the two boxes share any area on the same page.
func (b BoundingBox) Overlaps(other BoundingBox) bool {
	if b.Page != other.Page {
		return false
	}
	return !(b.X1 < other.X0 || b.X0 > other.X1 || b.Y1 < other.Y0 || b.Y0 > other.Y1)
}

// ContainsPoint reports whether (x, y) lies inside the box, edges
// included. The page check is the caller's concern.
func (b BoundingBox) ContainsPoint(x, y float64) bool {
	return x >= b.X0 && x <= b.X1 && y >= b.Y0 && y <= b.Y1
}

// IntersectionArea returns the overlapping area, zero for boxes on
// different pages.
func (b BoundingBox) IntersectionArea(other BoundingBox) float64 {
	if b.Page != other.Page {
		return 0
	}
	xOverlap := min(b.X1, other.X1) - max(b.X0, other.X0)
	yOverlap := min(b.Y1, other.Y1) - max(b.Y0, other.Y0)
	if xOverlap <= 0 || yOverlap <= 0 {
		return 0
	}
	return xOverlap * yOverlap
}

// OverlapRatio returns intersection area over union area, in [0,1].
func (b BoundingBox) OverlapRatio(other BoundingBox) float64 {
	inter := b.IntersectionArea(other)
	if inter == 0 {
		return 0
	}
	union := b.Area() + other.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// Envelope returns the smallest box covering both. The receiver's page
// index is kept; callers merging across pages track the page range
// separately.
func (b BoundingBox) Envelope(other BoundingBox) BoundingBox {
	return BoundingBox{
		X0:   min(b.X0, other.X0),
		Y0:   min(b.Y0, other.Y0),
		X1:   max(b.X1, other.X1),
		Y1:   max(b.Y1, other.Y1),
		Page: b.Page,
	}
}

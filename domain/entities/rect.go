package entities

// Rect is a screen rectangle in CSS pixels.
// Width and Height are always Right-Left and Bottom-Top.
type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a rect from its top-left (x1, y1) and bottom-right (x2, y2) corners.
func NewRect(x1, y1, x2, y2 float64) Rect {
	return Rect{
		Top:    y1,
		Left:   x1,
		Right:  x2,
		Bottom: y2,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

// Translate moves the rect by x horizontally and y vertically.
func (r Rect) Translate(x, y float64) Rect {
	return Rect{
		Top:    r.Top + y,
		Left:   r.Left + x,
		Right:  r.Right + x,
		Bottom: r.Bottom + y,
		Width:  r.Width,
		Height: r.Height,
	}
}

// Intersects reports whether the two rects overlap. Touching edges do not count.
func (r Rect) Intersects(other Rect) bool {
	return r.Right > other.Left &&
		r.Left < other.Right &&
		r.Bottom > other.Top &&
		r.Top < other.Bottom
}

// Equal compares all six fields.
func (r Rect) Equal(other Rect) bool {
	return r.Top == other.Top &&
		r.Left == other.Left &&
		r.Right == other.Right &&
		r.Bottom == other.Bottom &&
		r.Width == other.Width &&
		r.Height == other.Height
}

// BoundingRect returns the smallest rect covering every given rect.
// It returns the zero Rect when called without arguments.
func BoundingRect(rects ...Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	top, left := rects[0].Top, rects[0].Left
	bottom, right := rects[0].Bottom, rects[0].Right
	for _, r := range rects[1:] {
		if r.Top < top {
			top = r.Top
		}
		if r.Left < left {
			left = r.Left
		}
		if r.Bottom > bottom {
			bottom = r.Bottom
		}
		if r.Right > right {
			right = r.Right
		}
	}
	return NewRect(left, top, right, bottom)
}

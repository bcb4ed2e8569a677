package geom

// MinWindowSize is the smallest width or height a placed window may have.
const MinWindowSize = 100

// Rect is an axis-aligned rectangle in root-window pixels.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Right returns the x coordinate just past the rectangle.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the y coordinate just past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Contains reports whether inner lies fully within r.
func (r Rect) Contains(inner Rect) bool {
	return inner.X >= r.X && inner.Y >= r.Y &&
		inner.Right() <= r.Right() && inner.Bottom() <= r.Bottom()
}

// IntersectionArea returns the overlap area of a and b, or 0 when they are
// disjoint on either axis.
func IntersectionArea(a, b Rect) int {
	w := min(a.Right(), b.Right()) - max(a.X, b.X)
	h := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// ClampToArea shrinks bounds to fit area and slides it inside.
//
// Width and height are capped to the area and then raised to MinWindowSize.
// When the area itself is smaller than MinWindowSize on an axis, the minimum
// size wins and the rectangle is anchored at the area origin on that axis.
func ClampToArea(bounds, area Rect) Rect {
	out := Rect{
		Width:  max(MinWindowSize, min(bounds.Width, area.Width)),
		Height: max(MinWindowSize, min(bounds.Height, area.Height)),
	}
	out.X = clampAxis(bounds.X, area.X, area.Width, out.Width)
	out.Y = clampAxis(bounds.Y, area.Y, area.Height, out.Height)
	return out
}

func clampAxis(pos, start, span, size int) int {
	limit := start + span - size
	if limit < start {
		return start
	}
	return min(max(pos, start), limit)
}

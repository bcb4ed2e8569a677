package display

import (
	"errors"

	"github.com/1broseidon/winsnap/internal/geom"
	"github.com/1broseidon/winsnap/internal/platform"
)

// ErrNoDisplays is returned when there is nothing to select from.
var ErrNoDisplays = errors.New("no displays available")

// Select returns the display whose work area overlaps window the most. The
// first display wins ties. When the window overlaps no display, the primary
// display is returned, or the first one if none is marked primary.
func Select(window geom.Rect, displays []platform.Display) (platform.Display, error) {
	if len(displays) == 0 {
		return platform.Display{}, ErrNoDisplays
	}

	best := -1
	bestArea := 0
	for i, d := range displays {
		if area := geom.IntersectionArea(window, d.WorkArea); area > bestArea {
			best = i
			bestArea = area
		}
	}
	if best >= 0 {
		return displays[best], nil
	}

	for _, d := range displays {
		if d.Primary {
			return d, nil
		}
	}
	return displays[0], nil
}

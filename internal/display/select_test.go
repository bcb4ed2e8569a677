package display

import (
	"errors"
	"testing"

	"github.com/1broseidon/winsnap/internal/geom"
	"github.com/1broseidon/winsnap/internal/platform"
)

func sideBySide() []platform.Display {
	return []platform.Display{
		{ID: 0, Name: "left", Primary: true, WorkArea: geom.Rect{X: 0, Y: 0, Width: 1000, Height: 800}},
		{ID: 1, Name: "right", WorkArea: geom.Rect{X: 1000, Y: 0, Width: 1000, Height: 800}},
	}
}

func TestSelectPicksGreatestOverlap(t *testing.T) {
	window := geom.Rect{X: 1050, Y: 100, Width: 800, Height: 600}
	got, err := Select(window, sideBySide())
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("Select() = display %d, want 1", got.ID)
	}
}

func TestSelectStraddlingWindow(t *testing.T) {
	// 300px on the left display, 500px on the right.
	window := geom.Rect{X: 700, Y: 0, Width: 800, Height: 600}
	got, err := Select(window, sideBySide())
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("Select() = display %d, want 1", got.ID)
	}
}

func TestSelectFirstDisplayWinsTie(t *testing.T) {
	window := geom.Rect{X: 600, Y: 0, Width: 800, Height: 600}
	got, err := Select(window, sideBySide())
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.ID != 0 {
		t.Fatalf("Select() = display %d, want 0 on tie", got.ID)
	}
}

func TestSelectFallsBackToPrimary(t *testing.T) {
	displays := sideBySide()
	displays[0].Primary = false
	displays[1].Primary = true

	window := geom.Rect{X: 5000, Y: 5000, Width: 800, Height: 600}
	got, err := Select(window, displays)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("Select() = display %d, want primary 1", got.ID)
	}
}

func TestSelectZeroGeometryFallsBackToPrimary(t *testing.T) {
	displays := sideBySide()
	displays[0].Primary = false
	displays[1].Primary = true

	got, err := Select(geom.Rect{}, displays)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.ID != 1 {
		t.Fatalf("Select() = display %d, want primary 1", got.ID)
	}
}

func TestSelectFallsBackToFirstWithoutPrimary(t *testing.T) {
	displays := sideBySide()
	displays[0].Primary = false

	got, err := Select(geom.Rect{X: -9000, Y: 0, Width: 10, Height: 10}, displays)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if got.ID != 0 {
		t.Fatalf("Select() = display %d, want first 0", got.ID)
	}
}

func TestSelectNoDisplays(t *testing.T) {
	_, err := Select(geom.Rect{Width: 100, Height: 100}, nil)
	if !errors.Is(err, ErrNoDisplays) {
		t.Fatalf("Select() error = %v, want ErrNoDisplays", err)
	}
}

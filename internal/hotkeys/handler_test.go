package hotkeys

import (
	"reflect"
	"testing"

	"github.com/1broseidon/winsnap/internal/layout"
)

func TestSortedBindings_CatalogOrderSkipsEmpty(t *testing.T) {
	got := sortedBindings(map[layout.ID]string{
		layout.BottomLeft50: "Mod4-j",
		layout.Center:       "Mod4-c",
		layout.TopRight50:   "",
		layout.ID("nope"):   "Mod4-n",
		layout.Center75:     "Mod4-x",
	})
	want := []binding{
		{id: layout.Center, keys: "Mod4-c"},
		{id: layout.Center75, keys: "Mod4-x"},
		{id: layout.BottomLeft50, keys: "Mod4-j"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sortedBindings() = %+v, want %+v", got, want)
	}
}

func TestIgnoreMasks(t *testing.T) {
	tests := []struct {
		name              string
		caps, num, scroll uint16
		want              []uint16
	}{
		{name: "caps only", caps: 2, want: []uint16{0, 2}},
		{name: "caps and numlock", caps: 2, num: 16, want: []uint16{0, 2, 16, 18}},
		{name: "all three", caps: 2, num: 16, scroll: 128, want: []uint16{0, 2, 16, 18, 128, 130, 144, 146}},
		{name: "numlock shares caps mask", caps: 2, num: 2, want: []uint16{0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ignoreMasks(tt.caps, tt.num, tt.scroll)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ignoreMasks() = %v, want %v", got, tt.want)
			}
		})
	}
}

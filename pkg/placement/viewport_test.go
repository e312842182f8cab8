package placement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onemodel/ordinal/pkg/placement"
)

func TestRecenterWindow(t *testing.T) {
	tests := []struct {
		name     string
		view     placement.Viewport
		relative int
		distance int
		forward  bool
		total    uint64
		want     int
	}{
		{name: "leaves window forward", view: placement.Viewport{Start: 0, Size: 10}, relative: 8, distance: 3, forward: true, total: 50, want: 6},
		{name: "stays inside", view: placement.Viewport{Start: 0, Size: 10}, relative: 2, distance: 3, forward: true, total: 50, want: 0},
		{name: "last row of window", view: placement.Viewport{Start: 10, Size: 10}, relative: 4, distance: 5, forward: true, total: 50, want: 10},
		{name: "clamped to end", view: placement.Viewport{Start: 30, Size: 10}, relative: 9, distance: 25, forward: true, total: 50, want: 40},
		{name: "leaves window backward", view: placement.Viewport{Start: 20, Size: 10}, relative: 1, distance: 5, forward: false, total: 50, want: 11},
		{name: "clamped to start", view: placement.Viewport{Start: 5, Size: 10}, relative: 0, distance: 5, forward: false, total: 50, want: 0},
		{name: "fewer rows than window", view: placement.Viewport{Start: 0, Size: 10}, relative: 3, distance: 25, forward: true, total: 6, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := placement.RecenterWindow(tt.view, tt.relative, tt.distance, tt.forward, tt.total)
			assert.Equal(t, tt.want, got)
		})
	}
}

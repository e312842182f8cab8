package placement

// Viewport is the window of visible rows a caller is showing, as absolute
// row indices into the visible members of a container.
type Viewport struct {
	Start int
	Size  int
}

// RecenterWindow returns the start of a window that keeps the moved row in
// view. The window only moves when the row would leave it, and then it is
// centered on the row as far as the total row count allows.
func RecenterWindow(v Viewport, relativeIndex, distance int, forward bool, total uint64) int {
	abs := v.Start + relativeIndex
	if forward {
		abs += distance
	} else {
		abs -= distance
	}
	if abs >= v.Start && abs < v.Start+v.Size {
		return v.Start
	}

	last := int(total) - v.Size
	if last < 0 {
		last = 0
	}
	start := abs - v.Size/2
	switch {
	case start < 0:
		start = 0
	case start > last:
		start = last
	}
	return start
}

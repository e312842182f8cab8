package placement

import (
	"context"
	"errors"

	"github.com/onemodel/ordinal/pkg/sortkey"
)

// Neighbors describes where a moving member lands: just beyond Near and, when
// Far is set, before Far.
type Neighbors struct {
	// ActualDistance is how many visible members the move passes, which can
	// be less than requested near the end of the container.
	ActualDistance int
	Near           *sortkey.Key
	Far            *sortkey.Key
	// Synthesized is set when nothing visible lies beyond the starting key
	// and Near was made up one step past it.
	Synthesized bool
}

// FindNewNeighbors locates the pair of keys a member starting at from should
// be placed between after passing distance visible members.
func FindNewNeighbors(ctx context.Context, c OrderedContainer, distance int, forward bool, from sortkey.Key) (Neighbors, error) {
	if distance < 0 {
		return Neighbors{}, invalidMove("negative distance %d", distance)
	}

	entries, err := c.AdjacentEntries(ctx, from, distance+1, forward)
	if err != nil {
		return Neighbors{}, storeErr("adjacent entries", err)
	}

	var nb Neighbors
	switch n := len(entries); {
	case n == 0:
		near, err := sortkey.Step(from, forward)
		if err != nil {
			if errors.Is(err, sortkey.ErrKeyOverflow) {
				// from sits on the domain bound, there is nowhere to go
				return Neighbors{}, nil
			}
			return Neighbors{}, err
		}
		nb = Neighbors{ActualDistance: 1, Near: &near, Synthesized: true}
	case n < distance+1:
		near := entries[n-1].Key
		nb = Neighbors{ActualDistance: n, Near: &near}
	case distance == 0:
		near := from
		far := entries[0].Key
		nb = Neighbors{ActualDistance: 1, Near: &near, Far: &far}
	default:
		near := entries[n-2].Key
		far := entries[n-1].Key
		nb = Neighbors{ActualDistance: distance, Near: &near, Far: &far}
	}

	// Archived members are invisible to the search above but still hold
	// keys, so the real far bound is whatever key comes next.
	far, ok, err := c.NearestKey(ctx, *nb.Near, forward)
	if err != nil {
		return Neighbors{}, storeErr("nearest key", err)
	}
	if ok {
		nb.Far = &far
	} else {
		nb.Far = nil
	}
	return nb, nil
}

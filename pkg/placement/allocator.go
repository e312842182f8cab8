package placement

import (
	"context"
	"errors"

	"github.com/onemodel/ordinal/pkg/sortkey"
)

// AllocationInput carries everything NewSortingKey needs to pick a key and
// follow the moved row with the viewport.
type AllocationInput struct {
	TotalCount    uint64
	Viewport      Viewport
	RelativeIndex int
	Near          sortkey.Key
	Far           *sortkey.Key
	Forward       bool
	Distance      int
	MovingFrom    sortkey.Key
}

// Allocation is the outcome of NewSortingKey. When Trouble is set Candidate
// must not be written; the container needs renumbering first.
type Allocation struct {
	Candidate   sortkey.Key
	Trouble     bool
	WindowStart int
}

// NewSortingKey picks a key halfway between Near and Far (or the domain
// bound when there is no Far), moves it off any key already in use, and
// reports whether the result is unusable.
func NewSortingKey(ctx context.Context, c OrderedContainer, in AllocationInput) (Allocation, error) {
	out := Allocation{
		WindowStart: RecenterWindow(in.Viewport, in.RelativeIndex, in.Distance, in.Forward, in.TotalCount),
	}

	target := sortkey.Bound(in.Forward)
	if in.Far != nil {
		target = *in.Far
	}

	candidate, err := sortkey.Halfway(in.Near, target)
	if err != nil {
		if errors.Is(err, sortkey.ErrKeyOverflow) {
			out.Trouble = true
			return out, nil
		}
		return Allocation{}, err
	}

	candidate, ok, err := EnsureNonDuplicate(ctx, c, candidate, in.Forward)
	if err != nil {
		return Allocation{}, err
	}
	out.Candidate = candidate
	if !ok {
		out.Trouble = true
		return out, nil
	}

	if in.Far == nil {
		out.Trouble = sortkey.Beyond(candidate, target, in.Forward) ||
			!sortkey.Beyond(candidate, in.MovingFrom, in.Forward) ||
			!sortkey.Beyond(candidate, in.Near, in.Forward)
	} else {
		out.Trouble = !sortkey.StrictlyBetween(candidate, in.Near, *in.Far) ||
			!sortkey.Beyond(candidate, in.MovingFrom, in.Forward)
	}
	return out, nil
}

// EnsureNonDuplicate returns candidate if no entry holds it, otherwise the
// first free key probing in the direction of travel. ok is false when the
// probe ran out of keys.
func EnsureNonDuplicate(ctx context.Context, c OrderedContainer, candidate sortkey.Key, forward bool) (key sortkey.Key, ok bool, err error) {
	used, err := c.KeyInUse(ctx, candidate)
	if err != nil {
		return 0, false, storeErr("key in use", err)
	}
	if !used {
		return candidate, true, nil
	}

	key, err = c.FindUnusedKey(ctx, candidate, forward)
	if err != nil {
		if errors.Is(err, ErrKeySpaceExhausted) {
			return candidate, false, nil
		}
		return 0, false, storeErr("find unused key", err)
	}
	return key, true, nil
}

// Package placement computes new sparse sort keys for members that are moved
// within an ordered container, keeping the caller's viewport on the moved
// member.
//
// The engine never opens or closes transactions: every OrderedContainer it is
// handed is expected to be bound to one transaction that the caller commits
// or rolls back, and the caller serializes placements on the same container.
package placement

import (
	"context"
	"fmt"

	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

// OrderedContainer is the storage-facing contract of one container, bound to
// the caller's transaction.
type OrderedContainer interface {
	Ref() mcontainer.Ref

	// AdjacentEntries returns up to limit visible entries strictly beyond
	// from, nearest first.
	AdjacentEntries(ctx context.Context, from sortkey.Key, limit int, forward bool) ([]mcontainer.Entry, error)

	// NearestKey returns the key of the nearest entry strictly beyond from,
	// archived entries included.
	NearestKey(ctx context.Context, from sortkey.Key, forward bool) (sortkey.Key, bool, error)

	// KeyInUse reports whether any entry, archived or not, holds key.
	KeyInUse(ctx context.Context, key sortkey.Key) (bool, error)

	// FindUnusedKey probes from start in the direction of travel and returns
	// the first free key, or an *ExhaustionError.
	FindUnusedKey(ctx context.Context, start sortkey.Key, forward bool) (sortkey.Key, error)

	// RenumberAll re-spaces every key evenly, preserving order.
	RenumberAll(ctx context.Context) error

	UpdateKey(ctx context.Context, member mcontainer.Member, key sortkey.Key) error

	VisibleCount(ctx context.Context) (uint64, error)

	// MemberKey returns the current key of member, or ErrMemberNotFound.
	MemberKey(ctx context.Context, member mcontainer.Member) (sortkey.Key, error)
}

// MaxProbes bounds how many keys FindUnusedKey may inspect before giving up.
const MaxProbes = 10_000

// ExhaustionKind tells which way a probe for an unused key ran out of room.
type ExhaustionKind int8

const (
	ExhaustedForward ExhaustionKind = iota + 1
	ExhaustedBackward
)

func (k ExhaustionKind) String() string {
	switch k {
	case ExhaustedForward:
		return "forward"
	case ExhaustedBackward:
		return "backward"
	default:
		return "unknown"
	}
}

// ExhaustionError is returned by FindUnusedKey when the probe reached the edge
// of the key domain or spent MaxProbes without finding a free key.
type ExhaustionError struct {
	Kind   ExhaustionKind
	Start  sortkey.Key
	Probes int
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("no unused sort key probing %s from %d after %d probes", e.Kind, e.Start, e.Probes)
}

func (e *ExhaustionError) Is(target error) bool {
	return target == ErrKeySpaceExhausted
}

// ProbeUnusedKey implements FindUnusedKey for containers that can answer
// KeyInUse.
func ProbeUnusedKey(ctx context.Context, start sortkey.Key, forward bool, inUse func(context.Context, sortkey.Key) (bool, error)) (sortkey.Key, error) {
	kind := ExhaustedBackward
	if forward {
		kind = ExhaustedForward
	}
	key := start
	for probes := 0; ; probes++ {
		used, err := inUse(ctx, key)
		if err != nil {
			return 0, err
		}
		if !used {
			return key, nil
		}
		if probes >= MaxProbes {
			return 0, &ExhaustionError{Kind: kind, Start: start, Probes: probes}
		}
		next, err := sortkey.Step(key, forward)
		if err != nil {
			return 0, &ExhaustionError{Kind: kind, Start: start, Probes: probes}
		}
		key = next
	}
}

// Package sortkey defines the sparse 64-bit sort key used to order members of
// a container, together with the arithmetic the placement engine needs on it.
//
// All arithmetic that could leave the int64 range is carried out in 256-bit
// unsigned space on an order-preserving biased encoding of the key, so a
// result outside the domain is reported as ErrKeyOverflow instead of
// wrapping around.
package sortkey

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/holiman/uint256"
)

// Key is a member's position in its container's total order. Keys are sparse:
// only their relative order carries meaning.
type Key int64

const (
	MinKey Key = math.MinInt64
	MaxKey Key = math.MaxInt64

	// SeedOffset is how far from the domain edge a placement search starts
	// when the caller names no reference member.
	SeedOffset = 990

	// NewMemberOffset leaves room before the first and after the last member
	// of a container for later manual placement.
	NewMemberOffset = 99999
)

// ErrKeyOverflow reports arithmetic whose exact result lies outside
// [MinKey, MaxKey].
var ErrKeyOverflow = errors.New("sort key arithmetic left the key domain")

const signBit = uint64(1) << 63

// wide maps k onto [0, 2^64) preserving order: MinKey -> 0, MaxKey -> 2^64-1.
func wide(k Key) *uint256.Int {
	return uint256.NewInt(uint64(k) ^ signBit)
}

func narrow(w *uint256.Int) (Key, error) {
	if !w.IsUint64() {
		return 0, ErrKeyOverflow
	}
	return Key(w.Uint64() ^ signBit), nil
}

func (k Key) String() string {
	return strconv.FormatInt(int64(k), 10)
}

// Bound returns the domain edge in the direction of travel.
func Bound(forward bool) Key {
	if forward {
		return MaxKey
	}
	return MinKey
}

// Seed returns the key a search starts from when no reference member exists.
// It has no meaning beyond sitting just inside the edge the move starts from.
func Seed(forward bool) Key {
	if forward {
		return MinKey + SeedOffset
	}
	return MaxKey - SeedOffset
}

// Beyond reports whether a lies strictly beyond b in the direction of travel.
func Beyond(a, b Key, forward bool) bool {
	if forward {
		return a > b
	}
	return a < b
}

// StrictlyBetween reports whether k lies strictly between a and b, in either
// order.
func StrictlyBetween(k, a, b Key) bool {
	if a > b {
		a, b = b, a
	}
	return a < k && k < b
}

// Step returns the key adjacent to k in the direction of travel.
func Step(k Key, forward bool) (Key, error) {
	w := wide(k)
	one := uint256.NewInt(1)
	if forward {
		if k == MaxKey {
			return 0, ErrKeyOverflow
		}
		return narrow(w.Add(w, one))
	}
	if k == MinKey {
		return 0, ErrKeyOverflow
	}
	return narrow(w.Sub(w, one))
}

// Halfway returns the key half the distance from near toward target,
// truncated toward near. Halfway(near, near) is near.
func Halfway(near, target Key) (Key, error) {
	n, t := wide(near), wide(target)
	var half, out uint256.Int
	if t.Cmp(n) >= 0 {
		half.Sub(t, n)
		half.Rsh(&half, 1)
		out.Add(n, &half)
	} else {
		half.Sub(n, t)
		half.Rsh(&half, 1)
		out.Sub(n, &half)
	}
	return narrow(&out)
}

// Spread returns n keys in ascending order, evenly spaced over the domain.
// The domain is cut into n+2 segments: one segment of margin stays free below
// the first key and two above the last, so renumbering that has to skip keys
// still has room.
func Spread(n int) ([]Key, error) {
	if n <= 0 {
		return nil, nil
	}
	span := wide(MaxKey)
	span.Sub(span, wide(MinKey))
	step := new(uint256.Int).Div(span, uint256.NewInt(uint64(n)+2))
	if step.IsZero() {
		return nil, fmt.Errorf("spread %d keys: %w", n, ErrKeyOverflow)
	}

	keys := make([]Key, n)
	base := wide(MinKey)
	var offset, at uint256.Int
	for i := range keys {
		offset.Mul(step, uint256.NewInt(uint64(i)+1))
		at.Add(base, &offset)
		k, err := narrow(&at)
		if err != nil {
			return nil, fmt.Errorf("spread %d keys at %d: %w", n, i, err)
		}
		keys[i] = k
	}
	return keys, nil
}

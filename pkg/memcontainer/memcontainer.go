// Package memcontainer is an in-memory placement.OrderedContainer backed by a
// B-tree ordered on sort key. It is used by tests and by dry runs that must
// not touch the database.
package memcontainer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/btree"

	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/placement"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

var ErrDuplicateKey = errors.New("sort key already held by another member")

const degree = 32

func byKey(a, b mcontainer.Entry) bool {
	return a.Key < b.Key
}

// Container is not safe for concurrent use.
type Container struct {
	ref     mcontainer.Ref
	entries *btree.BTreeG[mcontainer.Entry]
	keys    map[mcontainer.Member]sortkey.Key
}

var _ placement.OrderedContainer = (*Container)(nil)

func New(ref mcontainer.Ref) *Container {
	return &Container{
		ref:     ref,
		entries: btree.NewG(degree, byKey),
		keys:    make(map[mcontainer.Member]sortkey.Key),
	}
}

// Insert adds member at key.
func (c *Container) Insert(member mcontainer.Member, key sortkey.Key, archived bool) error {
	if _, ok := c.keys[member]; ok {
		return fmt.Errorf("insert %s: member already present", member)
	}
	if _, ok := c.entries.Get(mcontainer.Entry{Key: key}); ok {
		return fmt.Errorf("insert %s at %d: %w", member, key, ErrDuplicateKey)
	}
	c.entries.ReplaceOrInsert(mcontainer.Entry{Key: key, Member: member, Archived: archived})
	c.keys[member] = key
	return nil
}

// SetArchived hides or shows member without changing its key.
func (c *Container) SetArchived(member mcontainer.Member, archived bool) error {
	key, ok := c.keys[member]
	if !ok {
		return fmt.Errorf("archive %s: %w", member, placement.ErrMemberNotFound)
	}
	c.entries.ReplaceOrInsert(mcontainer.Entry{Key: key, Member: member, Archived: archived})
	return nil
}

// Entries returns every entry in key order. Archived entries are left out
// unless includeArchived is set.
func (c *Container) Entries(includeArchived bool) []mcontainer.Entry {
	out := make([]mcontainer.Entry, 0, c.entries.Len())
	c.entries.Ascend(func(e mcontainer.Entry) bool {
		if includeArchived || !e.Archived {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (c *Container) Ref() mcontainer.Ref {
	return c.ref
}

func (c *Container) AdjacentEntries(_ context.Context, from sortkey.Key, limit int, forward bool) ([]mcontainer.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	out := make([]mcontainer.Entry, 0, limit)
	visit := func(e mcontainer.Entry) bool {
		if e.Key == from || e.Archived {
			return true
		}
		out = append(out, e)
		return len(out) < limit
	}
	pivot := mcontainer.Entry{Key: from}
	if forward {
		c.entries.AscendGreaterOrEqual(pivot, visit)
	} else {
		c.entries.DescendLessOrEqual(pivot, visit)
	}
	return out, nil
}

func (c *Container) NearestKey(_ context.Context, from sortkey.Key, forward bool) (sortkey.Key, bool, error) {
	var (
		found sortkey.Key
		ok    bool
	)
	visit := func(e mcontainer.Entry) bool {
		if e.Key == from {
			return true
		}
		found, ok = e.Key, true
		return false
	}
	pivot := mcontainer.Entry{Key: from}
	if forward {
		c.entries.AscendGreaterOrEqual(pivot, visit)
	} else {
		c.entries.DescendLessOrEqual(pivot, visit)
	}
	return found, ok, nil
}

func (c *Container) KeyInUse(_ context.Context, key sortkey.Key) (bool, error) {
	return c.entries.Has(mcontainer.Entry{Key: key}), nil
}

func (c *Container) FindUnusedKey(ctx context.Context, start sortkey.Key, forward bool) (sortkey.Key, error) {
	return placement.ProbeUnusedKey(ctx, start, forward, c.KeyInUse)
}

// RenumberAll spreads every entry, archived or not, evenly over the key
// domain in its current order.
func (c *Container) RenumberAll(_ context.Context) error {
	all := c.Entries(true)
	keys, err := sortkey.Spread(len(all))
	if err != nil {
		return fmt.Errorf("renumber %s: %w", c.ref, err)
	}
	c.entries.Clear(false)
	for i, e := range all {
		e.Key = keys[i]
		c.entries.ReplaceOrInsert(e)
		c.keys[e.Member] = e.Key
	}
	return nil
}

func (c *Container) UpdateKey(_ context.Context, member mcontainer.Member, key sortkey.Key) error {
	old, ok := c.keys[member]
	if !ok {
		return fmt.Errorf("update %s: %w", member, placement.ErrMemberNotFound)
	}
	if old == key {
		return nil
	}
	if c.entries.Has(mcontainer.Entry{Key: key}) {
		return fmt.Errorf("update %s to %d: %w", member, key, ErrDuplicateKey)
	}
	e, _ := c.entries.Delete(mcontainer.Entry{Key: old})
	e.Key = key
	c.entries.ReplaceOrInsert(e)
	c.keys[member] = key
	return nil
}

func (c *Container) VisibleCount(_ context.Context) (uint64, error) {
	var n uint64
	c.entries.Ascend(func(e mcontainer.Entry) bool {
		if !e.Archived {
			n++
		}
		return true
	})
	return n, nil
}

func (c *Container) MemberKey(_ context.Context, member mcontainer.Member) (sortkey.Key, error) {
	key, ok := c.keys[member]
	if !ok {
		return 0, fmt.Errorf("%s: %w", member, placement.ErrMemberNotFound)
	}
	return key, nil
}

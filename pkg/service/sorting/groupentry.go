package sorting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onemodel/ordinal/pkg/db/gen"
	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/placement"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

// GroupEntryContainer is the ordered list of entities in a group. An entry
// is hidden while its entity is archived.
type GroupEntryContainer struct {
	queries *gen.Queries
	groupID idwrap.IDWrap
}

var _ placement.OrderedContainer = (*GroupEntryContainer)(nil)

func NewGroupEntryContainer(tx gen.DBTX, groupID idwrap.IDWrap) *GroupEntryContainer {
	return &GroupEntryContainer{queries: gen.New(tx), groupID: groupID}
}

func groupEntry(g gen.GroupEntry) mcontainer.Entry {
	return mcontainer.Entry{
		Key:      g.SortingIndex,
		Member:   mcontainer.Member{ID: g.EntityID},
		Archived: g.Archived,
	}
}

func (c *GroupEntryContainer) Ref() mcontainer.Ref {
	return mcontainer.Ref{Kind: mcontainer.KindGroupEntries, ID: c.groupID}
}

func (c *GroupEntryContainer) AdjacentEntries(ctx context.Context, from sortkey.Key, limit int, forward bool) ([]mcontainer.Entry, error) {
	arg := gen.AdjacentGroupEntriesParams{GroupID: c.groupID, From: from, Limit: int64(limit)}
	var (
		rows []gen.GroupEntry
		err  error
	)
	if forward {
		rows, err = c.queries.GroupEntriesAfter(ctx, arg)
	} else {
		rows, err = c.queries.GroupEntriesBefore(ctx, arg)
	}
	if err != nil {
		return nil, err
	}
	entries := make([]mcontainer.Entry, len(rows))
	for i, row := range rows {
		entries[i] = groupEntry(row)
	}
	return entries, nil
}

func (c *GroupEntryContainer) NearestKey(ctx context.Context, from sortkey.Key, forward bool) (sortkey.Key, bool, error) {
	arg := gen.NearestGroupEntryKeyParams{GroupID: c.groupID, From: from}
	if forward {
		return nearest(c.queries.NearestGroupEntryKeyAfter(ctx, arg))
	}
	return nearest(c.queries.NearestGroupEntryKeyBefore(ctx, arg))
}

func (c *GroupEntryContainer) KeyInUse(ctx context.Context, key sortkey.Key) (bool, error) {
	return c.queries.GroupEntryKeyInUse(ctx, gen.GroupEntryKeyInUseParams{GroupID: c.groupID, SortingIndex: key})
}

func (c *GroupEntryContainer) FindUnusedKey(ctx context.Context, start sortkey.Key, forward bool) (sortkey.Key, error) {
	return placement.ProbeUnusedKey(ctx, start, forward, c.KeyInUse)
}

func (c *GroupEntryContainer) Entries(ctx context.Context) ([]mcontainer.Entry, error) {
	rows, err := c.queries.ListGroupEntries(ctx, c.groupID)
	if err != nil {
		return nil, err
	}
	entries := make([]mcontainer.Entry, len(rows))
	for i, row := range rows {
		entries[i] = groupEntry(row)
	}
	return entries, nil
}

func (c *GroupEntryContainer) RenumberAll(ctx context.Context) error {
	entries, err := c.Entries(ctx)
	if err != nil {
		return err
	}
	return renumber(ctx, entries, c)
}

func (c *GroupEntryContainer) UpdateKey(ctx context.Context, member mcontainer.Member, key sortkey.Key) error {
	n, err := c.queries.UpdateGroupEntrySortingIndex(ctx, gen.UpdateGroupEntrySortingIndexParams{
		SortingIndex: key,
		GroupID:      c.groupID,
		EntityID:     member.ID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", member, placement.ErrMemberNotFound)
	}
	return nil
}

func (c *GroupEntryContainer) VisibleCount(ctx context.Context) (uint64, error) {
	n, err := c.queries.CountVisibleGroupEntries(ctx, c.groupID)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (c *GroupEntryContainer) MemberKey(ctx context.Context, member mcontainer.Member) (sortkey.Key, error) {
	key, err := c.queries.GetGroupEntrySortingIndex(ctx, gen.GetGroupEntrySortingIndexParams{
		GroupID:  c.groupID,
		EntityID: member.ID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", member, placement.ErrMemberNotFound)
		}
		return 0, err
	}
	return key, nil
}

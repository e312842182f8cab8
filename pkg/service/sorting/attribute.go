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

// AttributeContainer is the ordered list of one entity's attributes.
type AttributeContainer struct {
	queries  *gen.Queries
	entityID idwrap.IDWrap
}

var _ placement.OrderedContainer = (*AttributeContainer)(nil)

func NewAttributeContainer(tx gen.DBTX, entityID idwrap.IDWrap) *AttributeContainer {
	return &AttributeContainer{queries: gen.New(tx), entityID: entityID}
}

func attributeEntry(a gen.AttributeSorting) mcontainer.Entry {
	return mcontainer.Entry{
		Key:      a.SortingIndex,
		Member:   mcontainer.Member{ID: a.AttributeID, Form: mcontainer.AttributeForm(a.AttributeFormID)},
		Archived: a.Archived,
	}
}

func (c *AttributeContainer) Ref() mcontainer.Ref {
	return mcontainer.Ref{Kind: mcontainer.KindEntityAttributes, ID: c.entityID}
}

func (c *AttributeContainer) AdjacentEntries(ctx context.Context, from sortkey.Key, limit int, forward bool) ([]mcontainer.Entry, error) {
	arg := gen.AdjacentAttributeSortingParams{EntityID: c.entityID, From: from, Limit: int64(limit)}
	var (
		rows []gen.AttributeSorting
		err  error
	)
	if forward {
		rows, err = c.queries.AttributeSortingAfter(ctx, arg)
	} else {
		rows, err = c.queries.AttributeSortingBefore(ctx, arg)
	}
	if err != nil {
		return nil, err
	}
	entries := make([]mcontainer.Entry, len(rows))
	for i, row := range rows {
		entries[i] = attributeEntry(row)
	}
	return entries, nil
}

func (c *AttributeContainer) NearestKey(ctx context.Context, from sortkey.Key, forward bool) (sortkey.Key, bool, error) {
	arg := gen.NearestAttributeKeyParams{EntityID: c.entityID, From: from}
	if forward {
		return nearest(c.queries.NearestAttributeKeyAfter(ctx, arg))
	}
	return nearest(c.queries.NearestAttributeKeyBefore(ctx, arg))
}

func (c *AttributeContainer) KeyInUse(ctx context.Context, key sortkey.Key) (bool, error) {
	return c.queries.AttributeKeyInUse(ctx, gen.AttributeKeyInUseParams{EntityID: c.entityID, SortingIndex: key})
}

func (c *AttributeContainer) FindUnusedKey(ctx context.Context, start sortkey.Key, forward bool) (sortkey.Key, error) {
	return placement.ProbeUnusedKey(ctx, start, forward, c.KeyInUse)
}

func (c *AttributeContainer) Entries(ctx context.Context) ([]mcontainer.Entry, error) {
	rows, err := c.queries.ListAttributeSorting(ctx, c.entityID)
	if err != nil {
		return nil, err
	}
	entries := make([]mcontainer.Entry, len(rows))
	for i, row := range rows {
		entries[i] = attributeEntry(row)
	}
	return entries, nil
}

func (c *AttributeContainer) RenumberAll(ctx context.Context) error {
	entries, err := c.Entries(ctx)
	if err != nil {
		return err
	}
	return renumber(ctx, entries, c)
}

func (c *AttributeContainer) UpdateKey(ctx context.Context, member mcontainer.Member, key sortkey.Key) error {
	if !member.Form.Valid() {
		return fmt.Errorf("%s: %w", member, ErrInvalidForm)
	}
	n, err := c.queries.UpdateAttributeSortingIndex(ctx, gen.UpdateAttributeSortingIndexParams{
		SortingIndex:    key,
		EntityID:        c.entityID,
		AttributeFormID: int32(member.Form),
		AttributeID:     member.ID,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", member, placement.ErrMemberNotFound)
	}
	return nil
}

func (c *AttributeContainer) VisibleCount(ctx context.Context) (uint64, error) {
	n, err := c.queries.CountVisibleAttributeSorting(ctx, c.entityID)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (c *AttributeContainer) MemberKey(ctx context.Context, member mcontainer.Member) (sortkey.Key, error) {
	key, err := c.queries.GetAttributeSortingIndex(ctx, gen.GetAttributeSortingIndexParams{
		EntityID:        c.entityID,
		AttributeFormID: int32(member.Form),
		AttributeID:     member.ID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", member, placement.ErrMemberNotFound)
		}
		return 0, err
	}
	return key, nil
}

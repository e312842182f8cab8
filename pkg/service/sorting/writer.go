package sorting

import (
	"context"
	"fmt"

	"github.com/onemodel/ordinal/pkg/db/gen"
	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/placement"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

// Writer creates containers and members. New members are appended after the
// last member of their container.
type Writer struct {
	queries *gen.Queries
}

func NewWriter(tx gen.DBTX) *Writer {
	return &Writer{queries: gen.New(tx)}
}

func NewWriterFromQueries(queries *gen.Queries) *Writer {
	return &Writer{queries: queries}
}

func (w *Writer) CreateEntity(ctx context.Context, id idwrap.IDWrap, name string) error {
	return w.queries.CreateEntity(ctx, gen.CreateEntityParams{ID: id, Name: name})
}

func (w *Writer) CreateGroup(ctx context.Context, id idwrap.IDWrap, name string) error {
	return w.queries.CreateGroup(ctx, gen.CreateGroupParams{ID: id, Name: name})
}

// SetEntityArchived hides or shows an entity. Its entries in every group
// follow.
func (w *Writer) SetEntityArchived(ctx context.Context, id idwrap.IDWrap, archived bool) error {
	n, err := w.queries.SetEntityArchived(ctx, gen.SetEntityArchivedParams{Archived: archived, ID: id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("entity %s: %w", id, ErrNoContainerFound)
	}
	return nil
}

func (w *Writer) SetAttributeArchived(ctx context.Context, entityID idwrap.IDWrap, member mcontainer.Member, archived bool) error {
	n, err := w.queries.SetAttributeSortingArchived(ctx, gen.SetAttributeSortingArchivedParams{
		Archived:        archived,
		EntityID:        entityID,
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

// AddAttribute appends an attribute to the entity's list and returns its key.
func (w *Writer) AddAttribute(ctx context.Context, entityID idwrap.IDWrap, member mcontainer.Member, label string) (sortkey.Key, error) {
	if !member.Form.Valid() {
		return 0, fmt.Errorf("%s: %w", member, ErrInvalidForm)
	}
	c := &AttributeContainer{queries: w.queries, entityID: entityID}
	key, err := defaultKey(ctx, c)
	if err != nil {
		return 0, err
	}
	err = w.queries.CreateAttributeSorting(ctx, gen.CreateAttributeSortingParams{
		EntityID:        entityID,
		AttributeFormID: int32(member.Form),
		AttributeID:     member.ID,
		Label:           label,
		SortingIndex:    key,
	})
	if err != nil {
		return 0, err
	}
	return key, nil
}

// AddGroupEntry appends an entity to the group and returns its key.
func (w *Writer) AddGroupEntry(ctx context.Context, groupID, entityID idwrap.IDWrap) (sortkey.Key, error) {
	c := &GroupEntryContainer{queries: w.queries, groupID: groupID}
	key, err := defaultKey(ctx, c)
	if err != nil {
		return 0, err
	}
	err = w.queries.CreateGroupEntry(ctx, gen.CreateGroupEntryParams{
		GroupID:      groupID,
		EntityID:     entityID,
		SortingIndex: key,
	})
	if err != nil {
		return 0, err
	}
	return key, nil
}

// defaultKey puts the first member just inside the low edge of the domain and
// every later one after the highest key in the container, archived members
// included: NewMemberOffset below the top while that is still above the
// highest key, else halfway between the highest key and the top. When no key
// is left above the highest one the container is renumbered once.
func defaultKey(ctx context.Context, c placement.OrderedContainer) (sortkey.Key, error) {
	for renumbered := false; ; renumbered = true {
		last, ok, err := highestKey(ctx, c)
		if err != nil {
			return 0, err
		}
		if !ok {
			return sortkey.MinKey + sortkey.NewMemberOffset, nil
		}
		if last < sortkey.MaxKey-sortkey.NewMemberOffset {
			return sortkey.MaxKey - sortkey.NewMemberOffset, nil
		}
		key, err := sortkey.Halfway(last, sortkey.MaxKey)
		if err != nil {
			return 0, err
		}
		if key > last {
			return key, nil
		}
		if renumbered {
			return 0, fmt.Errorf("append to %s after %d: %w", c.Ref(), last, placement.ErrKeySpaceExhausted)
		}
		if err := c.RenumberAll(ctx); err != nil {
			return 0, err
		}
	}
}

func highestKey(ctx context.Context, c placement.OrderedContainer) (sortkey.Key, bool, error) {
	used, err := c.KeyInUse(ctx, sortkey.MaxKey)
	if err != nil || used {
		return sortkey.MaxKey, used, err
	}
	return c.NearestKey(ctx, sortkey.MaxKey, false)
}

// Package sorting stores ordered containers in SQLite: the attributes of an
// entity and the entries of a group.
package sorting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onemodel/ordinal/pkg/db/gen"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/placement"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

var (
	ErrNoContainerFound   = errors.New("container not found")
	ErrUnknownKind        = errors.New("unknown container kind")
	ErrInvalidForm        = errors.New("invalid attribute form")
	ErrRenumberOutOfOrder = errors.New("renumbering produced a key out of order")
)

// NewContainer binds the container ref names to queries, which should be
// bound to the caller's transaction.
func NewContainer(ctx context.Context, queries *gen.Queries, ref mcontainer.Ref) (placement.OrderedContainer, error) {
	switch ref.Kind {
	case mcontainer.KindEntityAttributes:
		if _, err := queries.GetEntity(ctx, ref.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%s: %w", ref, ErrNoContainerFound)
			}
			return nil, err
		}
		return &AttributeContainer{queries: queries, entityID: ref.ID}, nil
	case mcontainer.KindGroupEntries:
		if _, err := queries.GetGroup(ctx, ref.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%s: %w", ref, ErrNoContainerFound)
			}
			return nil, err
		}
		return &GroupEntryContainer{queries: queries, groupID: ref.ID}, nil
	default:
		return nil, fmt.Errorf("%s: %w", ref, ErrUnknownKind)
	}
}

type keyStore interface {
	KeyInUse(ctx context.Context, key sortkey.Key) (bool, error)
	UpdateKey(ctx context.Context, member mcontainer.Member, key sortkey.Key) error
}

// renumber gives every entry a key from sortkey.Spread, in the given order.
// A spread key still held by an entry that has not been renumbered yet is
// skipped, since the table allows each key once per container.
func renumber(ctx context.Context, entries []mcontainer.Entry, store keyStore) error {
	keys, err := sortkey.Spread(len(entries))
	if err != nil {
		return err
	}

	prev := sortkey.MinKey
	for i, e := range entries {
		next := keys[i]
		for probes := 0; next != e.Key; probes++ {
			used, err := store.KeyInUse(ctx, next)
			if err != nil {
				return err
			}
			if !used {
				break
			}
			if probes >= placement.MaxProbes {
				return fmt.Errorf("renumber %s: %w", e.Member, placement.ErrKeySpaceExhausted)
			}
			if next, err = sortkey.Step(next, true); err != nil {
				return fmt.Errorf("renumber %s: %w", e.Member, err)
			}
		}
		if next <= prev || next >= sortkey.MaxKey {
			return fmt.Errorf("renumber %s: key %d after %d: %w", e.Member, next, prev, ErrRenumberOutOfOrder)
		}
		if err := store.UpdateKey(ctx, e.Member, next); err != nil {
			return err
		}
		prev = next
	}
	return nil
}

func nearest(key sortkey.Key, err error) (sortkey.Key, bool, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return key, true, nil
}

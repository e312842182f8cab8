package sorting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/onemodel/ordinal/pkg/db/gen"
	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

// Listed is one member of a container as shown to a user.
type Listed struct {
	Key      sortkey.Key       `json:"key" yaml:"key"`
	Member   mcontainer.Member `json:"-" yaml:"-"`
	ID       idwrap.IDWrap     `json:"id" yaml:"id"`
	Form     string            `json:"form,omitempty" yaml:"form,omitempty"`
	Label    string            `json:"label" yaml:"label"`
	Archived bool              `json:"archived" yaml:"archived"`
}

type Reader struct {
	queries *gen.Queries
	logger  *slog.Logger
}

func NewReader(db gen.DBTX, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{queries: gen.New(db), logger: logger}
}

func (r *Reader) ListEntities(ctx context.Context) ([]gen.Entity, error) {
	entities, err := r.queries.ListEntities(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []gen.Entity{}, nil
		}
		return nil, err
	}
	return entities, nil
}

func (r *Reader) ListGroups(ctx context.Context) ([]gen.Group, error) {
	groups, err := r.queries.ListGroups(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []gen.Group{}, nil
		}
		return nil, err
	}
	return groups, nil
}

// List returns the members of a container in key order. Archived members are
// left out unless includeArchived is set.
func (r *Reader) List(ctx context.Context, ref mcontainer.Ref, includeArchived bool) ([]Listed, error) {
	var out []Listed
	switch ref.Kind {
	case mcontainer.KindEntityAttributes:
		rows, err := r.queries.ListAttributeSorting(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row.Archived && !includeArchived {
				continue
			}
			form := mcontainer.AttributeForm(row.AttributeFormID)
			out = append(out, Listed{
				Key:      row.SortingIndex,
				Member:   mcontainer.Member{ID: row.AttributeID, Form: form},
				ID:       row.AttributeID,
				Form:     form.String(),
				Label:    row.Label,
				Archived: row.Archived,
			})
		}
	case mcontainer.KindGroupEntries:
		rows, err := r.queries.ListGroupEntries(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if row.Archived && !includeArchived {
				continue
			}
			out = append(out, Listed{
				Key:      row.SortingIndex,
				Member:   mcontainer.Member{ID: row.EntityID},
				ID:       row.EntityID,
				Label:    row.Name,
				Archived: row.Archived,
			})
		}
	default:
		return nil, fmt.Errorf("%s: %w", ref, ErrUnknownKind)
	}
	r.logger.Debug("listed container", "container", ref.String(), "count", len(out))
	return out, nil
}

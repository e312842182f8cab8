package gen

import (
	"context"

	"github.com/onemodel/ordinal/pkg/idwrap"
)

const createEntity = `
INSERT INTO entities (id, name, archived) VALUES (?, ?, ?)
`

type CreateEntityParams struct {
	ID       idwrap.IDWrap
	Name     string
	Archived bool
}

func (q *Queries) CreateEntity(ctx context.Context, arg CreateEntityParams) error {
	_, err := q.db.ExecContext(ctx, createEntity, arg.ID, arg.Name, arg.Archived)
	return err
}

const getEntity = `
SELECT id, name, archived FROM entities WHERE id = ? LIMIT 1
`

func (q *Queries) GetEntity(ctx context.Context, id idwrap.IDWrap) (Entity, error) {
	row := q.db.QueryRowContext(ctx, getEntity, id)
	var i Entity
	err := row.Scan(&i.ID, &i.Name, &i.Archived)
	return i, err
}

const listEntities = `
SELECT id, name, archived FROM entities ORDER BY name, id
`

func (q *Queries) ListEntities(ctx context.Context) ([]Entity, error) {
	rows, err := q.db.QueryContext(ctx, listEntities)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Entity
	for rows.Next() {
		var i Entity
		if err := rows.Scan(&i.ID, &i.Name, &i.Archived); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setEntityArchived = `
UPDATE entities SET archived = ? WHERE id = ?
`

type SetEntityArchivedParams struct {
	Archived bool
	ID       idwrap.IDWrap
}

func (q *Queries) SetEntityArchived(ctx context.Context, arg SetEntityArchivedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setEntityArchived, arg.Archived, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

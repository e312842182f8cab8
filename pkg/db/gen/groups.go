package gen

import (
	"context"

	"github.com/onemodel/ordinal/pkg/idwrap"
)

const createGroup = `
INSERT INTO groups (id, name) VALUES (?, ?)
`

type CreateGroupParams struct {
	ID   idwrap.IDWrap
	Name string
}

func (q *Queries) CreateGroup(ctx context.Context, arg CreateGroupParams) error {
	_, err := q.db.ExecContext(ctx, createGroup, arg.ID, arg.Name)
	return err
}

const getGroup = `
SELECT id, name FROM groups WHERE id = ? LIMIT 1
`

func (q *Queries) GetGroup(ctx context.Context, id idwrap.IDWrap) (Group, error) {
	row := q.db.QueryRowContext(ctx, getGroup, id)
	var i Group
	err := row.Scan(&i.ID, &i.Name)
	return i, err
}

const listGroups = `
SELECT id, name FROM groups ORDER BY name, id
`

func (q *Queries) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := q.db.QueryContext(ctx, listGroups)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Group
	for rows.Next() {
		var i Group
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
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

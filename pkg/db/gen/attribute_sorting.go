package gen

import (
	"context"

	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

const attributeSortingColumns = `entity_id, attribute_form_id, attribute_id, label, archived, sorting_index`

func scanAttributeSortingRows(rowsFn func() (rowsScanner, error)) ([]AttributeSorting, error) {
	rows, err := rowsFn()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AttributeSorting
	for rows.Next() {
		var i AttributeSorting
		if err := rows.Scan(
			&i.EntityID,
			&i.AttributeFormID,
			&i.AttributeID,
			&i.Label,
			&i.Archived,
			&i.SortingIndex,
		); err != nil {
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

const createAttributeSorting = `
INSERT INTO attribute_sorting (` + attributeSortingColumns + `) VALUES (?, ?, ?, ?, ?, ?)
`

type CreateAttributeSortingParams struct {
	EntityID        idwrap.IDWrap
	AttributeFormID int32
	AttributeID     idwrap.IDWrap
	Label           string
	Archived        bool
	SortingIndex    sortkey.Key
}

func (q *Queries) CreateAttributeSorting(ctx context.Context, arg CreateAttributeSortingParams) error {
	_, err := q.db.ExecContext(ctx, createAttributeSorting,
		arg.EntityID,
		arg.AttributeFormID,
		arg.AttributeID,
		arg.Label,
		arg.Archived,
		arg.SortingIndex,
	)
	return err
}

const attributeSortingAfter = `
SELECT ` + attributeSortingColumns + ` FROM attribute_sorting
WHERE entity_id = ? AND sorting_index > ? AND archived = FALSE
ORDER BY sorting_index ASC
LIMIT ?
`

const attributeSortingBefore = `
SELECT ` + attributeSortingColumns + ` FROM attribute_sorting
WHERE entity_id = ? AND sorting_index < ? AND archived = FALSE
ORDER BY sorting_index DESC
LIMIT ?
`

type AdjacentAttributeSortingParams struct {
	EntityID idwrap.IDWrap
	From     sortkey.Key
	Limit    int64
}

// AttributeSortingAfter lists visible attributes with a greater key, nearest
// first.
func (q *Queries) AttributeSortingAfter(ctx context.Context, arg AdjacentAttributeSortingParams) ([]AttributeSorting, error) {
	return scanAttributeSortingRows(func() (rowsScanner, error) {
		return q.db.QueryContext(ctx, attributeSortingAfter, arg.EntityID, arg.From, arg.Limit)
	})
}

// AttributeSortingBefore lists visible attributes with a smaller key, nearest
// first.
func (q *Queries) AttributeSortingBefore(ctx context.Context, arg AdjacentAttributeSortingParams) ([]AttributeSorting, error) {
	return scanAttributeSortingRows(func() (rowsScanner, error) {
		return q.db.QueryContext(ctx, attributeSortingBefore, arg.EntityID, arg.From, arg.Limit)
	})
}

const nearestAttributeKeyAfter = `
SELECT sorting_index FROM attribute_sorting
WHERE entity_id = ? AND sorting_index > ?
ORDER BY sorting_index ASC
LIMIT 1
`

const nearestAttributeKeyBefore = `
SELECT sorting_index FROM attribute_sorting
WHERE entity_id = ? AND sorting_index < ?
ORDER BY sorting_index DESC
LIMIT 1
`

type NearestAttributeKeyParams struct {
	EntityID idwrap.IDWrap
	From     sortkey.Key
}

// NearestAttributeKeyAfter includes archived attributes. It returns
// sql.ErrNoRows when nothing follows.
func (q *Queries) NearestAttributeKeyAfter(ctx context.Context, arg NearestAttributeKeyParams) (sortkey.Key, error) {
	row := q.db.QueryRowContext(ctx, nearestAttributeKeyAfter, arg.EntityID, arg.From)
	var key sortkey.Key
	err := row.Scan(&key)
	return key, err
}

func (q *Queries) NearestAttributeKeyBefore(ctx context.Context, arg NearestAttributeKeyParams) (sortkey.Key, error) {
	row := q.db.QueryRowContext(ctx, nearestAttributeKeyBefore, arg.EntityID, arg.From)
	var key sortkey.Key
	err := row.Scan(&key)
	return key, err
}

const attributeKeyInUse = `
SELECT EXISTS (
  SELECT 1 FROM attribute_sorting WHERE entity_id = ? AND sorting_index = ?
)
`

type AttributeKeyInUseParams struct {
	EntityID     idwrap.IDWrap
	SortingIndex sortkey.Key
}

func (q *Queries) AttributeKeyInUse(ctx context.Context, arg AttributeKeyInUseParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, attributeKeyInUse, arg.EntityID, arg.SortingIndex)
	var used bool
	err := row.Scan(&used)
	return used, err
}

const listAttributeSorting = `
SELECT ` + attributeSortingColumns + ` FROM attribute_sorting
WHERE entity_id = ?
ORDER BY sorting_index, attribute_form_id, attribute_id
`

// ListAttributeSorting returns every attribute of the entity, archived ones
// included, in key order.
func (q *Queries) ListAttributeSorting(ctx context.Context, entityID idwrap.IDWrap) ([]AttributeSorting, error) {
	return scanAttributeSortingRows(func() (rowsScanner, error) {
		return q.db.QueryContext(ctx, listAttributeSorting, entityID)
	})
}

const updateAttributeSortingIndex = `
UPDATE attribute_sorting SET sorting_index = ?
WHERE entity_id = ? AND attribute_form_id = ? AND attribute_id = ?
`

type UpdateAttributeSortingIndexParams struct {
	SortingIndex    sortkey.Key
	EntityID        idwrap.IDWrap
	AttributeFormID int32
	AttributeID     idwrap.IDWrap
}

func (q *Queries) UpdateAttributeSortingIndex(ctx context.Context, arg UpdateAttributeSortingIndexParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAttributeSortingIndex,
		arg.SortingIndex,
		arg.EntityID,
		arg.AttributeFormID,
		arg.AttributeID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getAttributeSortingIndex = `
SELECT sorting_index FROM attribute_sorting
WHERE entity_id = ? AND attribute_form_id = ? AND attribute_id = ?
LIMIT 1
`

type GetAttributeSortingIndexParams struct {
	EntityID        idwrap.IDWrap
	AttributeFormID int32
	AttributeID     idwrap.IDWrap
}

func (q *Queries) GetAttributeSortingIndex(ctx context.Context, arg GetAttributeSortingIndexParams) (sortkey.Key, error) {
	row := q.db.QueryRowContext(ctx, getAttributeSortingIndex, arg.EntityID, arg.AttributeFormID, arg.AttributeID)
	var key sortkey.Key
	err := row.Scan(&key)
	return key, err
}

const countVisibleAttributeSorting = `
SELECT COUNT(*) FROM attribute_sorting WHERE entity_id = ? AND archived = FALSE
`

func (q *Queries) CountVisibleAttributeSorting(ctx context.Context, entityID idwrap.IDWrap) (int64, error) {
	row := q.db.QueryRowContext(ctx, countVisibleAttributeSorting, entityID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const setAttributeSortingArchived = `
UPDATE attribute_sorting SET archived = ?
WHERE entity_id = ? AND attribute_form_id = ? AND attribute_id = ?
`

type SetAttributeSortingArchivedParams struct {
	Archived        bool
	EntityID        idwrap.IDWrap
	AttributeFormID int32
	AttributeID     idwrap.IDWrap
}

func (q *Queries) SetAttributeSortingArchived(ctx context.Context, arg SetAttributeSortingArchivedParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setAttributeSortingArchived,
		arg.Archived,
		arg.EntityID,
		arg.AttributeFormID,
		arg.AttributeID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

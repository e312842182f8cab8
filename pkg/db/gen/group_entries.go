package gen

import (
	"context"

	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

const groupEntryColumns = `ge.group_id, ge.entity_id, ge.sorting_index, e.archived, e.name`

func scanGroupEntryRows(rowsFn func() (rowsScanner, error)) ([]GroupEntry, error) {
	rows, err := rowsFn()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []GroupEntry
	for rows.Next() {
		var i GroupEntry
		if err := rows.Scan(
			&i.GroupID,
			&i.EntityID,
			&i.SortingIndex,
			&i.Archived,
			&i.Name,
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

const createGroupEntry = `
INSERT INTO group_entries (group_id, entity_id, sorting_index) VALUES (?, ?, ?)
`

type CreateGroupEntryParams struct {
	GroupID      idwrap.IDWrap
	EntityID     idwrap.IDWrap
	SortingIndex sortkey.Key
}

func (q *Queries) CreateGroupEntry(ctx context.Context, arg CreateGroupEntryParams) error {
	_, err := q.db.ExecContext(ctx, createGroupEntry, arg.GroupID, arg.EntityID, arg.SortingIndex)
	return err
}

const groupEntriesAfter = `
SELECT ` + groupEntryColumns + ` FROM group_entries ge
JOIN entities e ON e.id = ge.entity_id
WHERE ge.group_id = ? AND ge.sorting_index > ? AND e.archived = FALSE
ORDER BY ge.sorting_index ASC
LIMIT ?
`

const groupEntriesBefore = `
SELECT ` + groupEntryColumns + ` FROM group_entries ge
JOIN entities e ON e.id = ge.entity_id
WHERE ge.group_id = ? AND ge.sorting_index < ? AND e.archived = FALSE
ORDER BY ge.sorting_index DESC
LIMIT ?
`

type AdjacentGroupEntriesParams struct {
	GroupID idwrap.IDWrap
	From    sortkey.Key
	Limit   int64
}

// GroupEntriesAfter lists entries whose entity is not archived with a greater
// key, nearest first.
func (q *Queries) GroupEntriesAfter(ctx context.Context, arg AdjacentGroupEntriesParams) ([]GroupEntry, error) {
	return scanGroupEntryRows(func() (rowsScanner, error) {
		return q.db.QueryContext(ctx, groupEntriesAfter, arg.GroupID, arg.From, arg.Limit)
	})
}

func (q *Queries) GroupEntriesBefore(ctx context.Context, arg AdjacentGroupEntriesParams) ([]GroupEntry, error) {
	return scanGroupEntryRows(func() (rowsScanner, error) {
		return q.db.QueryContext(ctx, groupEntriesBefore, arg.GroupID, arg.From, arg.Limit)
	})
}

const nearestGroupEntryKeyAfter = `
SELECT sorting_index FROM group_entries
WHERE group_id = ? AND sorting_index > ?
ORDER BY sorting_index ASC
LIMIT 1
`

const nearestGroupEntryKeyBefore = `
SELECT sorting_index FROM group_entries
WHERE group_id = ? AND sorting_index < ?
ORDER BY sorting_index DESC
LIMIT 1
`

type NearestGroupEntryKeyParams struct {
	GroupID idwrap.IDWrap
	From    sortkey.Key
}

// NearestGroupEntryKeyAfter includes entries of archived entities. It returns
// sql.ErrNoRows when nothing follows.
func (q *Queries) NearestGroupEntryKeyAfter(ctx context.Context, arg NearestGroupEntryKeyParams) (sortkey.Key, error) {
	row := q.db.QueryRowContext(ctx, nearestGroupEntryKeyAfter, arg.GroupID, arg.From)
	var key sortkey.Key
	err := row.Scan(&key)
	return key, err
}

func (q *Queries) NearestGroupEntryKeyBefore(ctx context.Context, arg NearestGroupEntryKeyParams) (sortkey.Key, error) {
	row := q.db.QueryRowContext(ctx, nearestGroupEntryKeyBefore, arg.GroupID, arg.From)
	var key sortkey.Key
	err := row.Scan(&key)
	return key, err
}

const groupEntryKeyInUse = `
SELECT EXISTS (
  SELECT 1 FROM group_entries WHERE group_id = ? AND sorting_index = ?
)
`

type GroupEntryKeyInUseParams struct {
	GroupID      idwrap.IDWrap
	SortingIndex sortkey.Key
}

func (q *Queries) GroupEntryKeyInUse(ctx context.Context, arg GroupEntryKeyInUseParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, groupEntryKeyInUse, arg.GroupID, arg.SortingIndex)
	var used bool
	err := row.Scan(&used)
	return used, err
}

const listGroupEntries = `
SELECT ` + groupEntryColumns + ` FROM group_entries ge
JOIN entities e ON e.id = ge.entity_id
WHERE ge.group_id = ?
ORDER BY ge.sorting_index, ge.entity_id
`

// ListGroupEntries returns every entry of the group, archived entities
// included, in key order.
func (q *Queries) ListGroupEntries(ctx context.Context, groupID idwrap.IDWrap) ([]GroupEntry, error) {
	return scanGroupEntryRows(func() (rowsScanner, error) {
		return q.db.QueryContext(ctx, listGroupEntries, groupID)
	})
}

const updateGroupEntrySortingIndex = `
UPDATE group_entries SET sorting_index = ? WHERE group_id = ? AND entity_id = ?
`

type UpdateGroupEntrySortingIndexParams struct {
	SortingIndex sortkey.Key
	GroupID      idwrap.IDWrap
	EntityID     idwrap.IDWrap
}

func (q *Queries) UpdateGroupEntrySortingIndex(ctx context.Context, arg UpdateGroupEntrySortingIndexParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateGroupEntrySortingIndex, arg.SortingIndex, arg.GroupID, arg.EntityID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getGroupEntrySortingIndex = `
SELECT sorting_index FROM group_entries WHERE group_id = ? AND entity_id = ? LIMIT 1
`

type GetGroupEntrySortingIndexParams struct {
	GroupID  idwrap.IDWrap
	EntityID idwrap.IDWrap
}

func (q *Queries) GetGroupEntrySortingIndex(ctx context.Context, arg GetGroupEntrySortingIndexParams) (sortkey.Key, error) {
	row := q.db.QueryRowContext(ctx, getGroupEntrySortingIndex, arg.GroupID, arg.EntityID)
	var key sortkey.Key
	err := row.Scan(&key)
	return key, err
}

const countVisibleGroupEntries = `
SELECT COUNT(*) FROM group_entries ge
JOIN entities e ON e.id = ge.entity_id
WHERE ge.group_id = ? AND e.archived = FALSE
`

func (q *Queries) CountVisibleGroupEntries(ctx context.Context, groupID idwrap.IDWrap) (int64, error) {
	row := q.db.QueryRowContext(ctx, countVisibleGroupEntries, groupID)
	var count int64
	err := row.Scan(&count)
	return count, err
}


package ordinaldb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordinaldb "github.com/onemodel/ordinal/pkg/db"
	"github.com/onemodel/ordinal/pkg/db/dbtest"
	"github.com/onemodel/ordinal/pkg/db/gen"
	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

func TestOpenCreatesTablesOnce(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, closeDB, err := ordinaldb.Open(ctx, "test", dir)
	require.NoError(t, err)
	id := idwrap.NewNow()
	require.NoError(t, gen.New(db).CreateGroup(ctx, gen.CreateGroupParams{ID: id, Name: "kept"}))
	closeDB()

	db, closeDB, err = ordinaldb.Open(ctx, "test", dir)
	require.NoError(t, err)
	defer closeDB()
	require.NoError(t, ordinaldb.CreateLocalTables(ctx, db))

	g, err := gen.New(db).GetGroup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "kept", g.Name)
}

func TestOpenRequiresNameAndPath(t *testing.T) {
	_, _, err := ordinaldb.Open(context.Background(), "", t.TempDir())
	assert.ErrorIs(t, err, ordinaldb.ErrDBNameNotFound)
	_, _, err = ordinaldb.Open(context.Background(), "x", "")
	assert.ErrorIs(t, err, ordinaldb.ErrDBPathNotFound)
}

func TestUniqueKeyPerGroup(t *testing.T) {
	ctx := context.Background()
	db, err := dbtest.GetTestDB(ctx)
	require.NoError(t, err)
	defer db.Close()
	q := gen.New(db)

	groupID, a, b := idwrap.NewNow(), idwrap.NewNow(), idwrap.NewNow()
	require.NoError(t, q.CreateGroup(ctx, gen.CreateGroupParams{ID: groupID, Name: "g"}))
	require.NoError(t, q.CreateEntity(ctx, gen.CreateEntityParams{ID: a, Name: "a"}))
	require.NoError(t, q.CreateEntity(ctx, gen.CreateEntityParams{ID: b, Name: "b"}))

	require.NoError(t, q.CreateGroupEntry(ctx, gen.CreateGroupEntryParams{GroupID: groupID, EntityID: a, SortingIndex: sortkey.MaxKey}))
	err = q.CreateGroupEntry(ctx, gen.CreateGroupEntryParams{GroupID: groupID, EntityID: b, SortingIndex: sortkey.MaxKey})
	assert.Error(t, err)

	key, err := q.GetGroupEntrySortingIndex(ctx, gen.GetGroupEntrySortingIndexParams{GroupID: groupID, EntityID: a})
	require.NoError(t, err)
	assert.Equal(t, sortkey.MaxKey, key)
}

func TestTxnRollbackAfterCommit(t *testing.T) {
	ctx := context.Background()
	db, err := dbtest.GetTestDB(ctx)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, gen.New(db).WithTx(tx).CreateGroup(ctx, gen.CreateGroupParams{ID: idwrap.NewNow(), Name: "g"}))
	require.NoError(t, tx.Commit())
	assert.NotPanics(t, func() { ordinaldb.TxnRollback(tx) })
}

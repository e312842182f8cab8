package memcontainer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/placement"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

func newMember() mcontainer.Member {
	return mcontainer.Member{ID: idwrap.NewNow()}
}

func fill(t *testing.T, keys ...sortkey.Key) (*Container, []mcontainer.Member) {
	t.Helper()
	c := New(mcontainer.Ref{Kind: mcontainer.KindGroupEntries, ID: idwrap.NewNow()})
	members := make([]mcontainer.Member, len(keys))
	for i, k := range keys {
		members[i] = newMember()
		require.NoError(t, c.Insert(members[i], k, false))
	}
	return c, members
}

func keysOf(entries []mcontainer.Entry) []sortkey.Key {
	out := make([]sortkey.Key, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out
}

func TestAdjacentEntries(t *testing.T) {
	ctx := context.Background()
	c, m := fill(t, -10, 0, 10, 20, 30)
	require.NoError(t, c.SetArchived(m[3], true))

	got, err := c.AdjacentEntries(ctx, 0, 3, true)
	require.NoError(t, err)
	assert.Equal(t, []sortkey.Key{10, 30}, keysOf(got))

	got, err = c.AdjacentEntries(ctx, 30, 2, false)
	require.NoError(t, err)
	assert.Equal(t, []sortkey.Key{10, 0}, keysOf(got))

	got, err = c.AdjacentEntries(ctx, 5, 1, true)
	require.NoError(t, err)
	assert.Equal(t, []sortkey.Key{10}, keysOf(got))

	got, err = c.AdjacentEntries(ctx, sortkey.MaxKey, 5, true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNearestKeyIncludesArchived(t *testing.T) {
	ctx := context.Background()
	c, m := fill(t, 1, 2, 3)
	require.NoError(t, c.SetArchived(m[1], true))

	k, ok, err := c.NearestKey(ctx, 1, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sortkey.Key(2), k)

	k, ok, err = c.NearestKey(ctx, 3, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sortkey.Key(2), k)

	_, ok, err = c.NearestKey(ctx, 3, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindUnusedKey(t *testing.T) {
	ctx := context.Background()
	c, _ := fill(t, 5, 6, 7)

	k, err := c.FindUnusedKey(ctx, 5, true)
	require.NoError(t, err)
	assert.Equal(t, sortkey.Key(8), k)

	k, err = c.FindUnusedKey(ctx, 7, false)
	require.NoError(t, err)
	assert.Equal(t, sortkey.Key(4), k)

	k, err = c.FindUnusedKey(ctx, 100, false)
	require.NoError(t, err)
	assert.Equal(t, sortkey.Key(100), k)
}

func TestFindUnusedKeyExhausted(t *testing.T) {
	ctx := context.Background()
	c, _ := fill(t, sortkey.MaxKey-1, sortkey.MaxKey)

	_, err := c.FindUnusedKey(ctx, sortkey.MaxKey-1, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, placement.ErrKeySpaceExhausted))
	var ex *placement.ExhaustionError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, placement.ExhaustedForward, ex.Kind)

	c, _ = fill(t, sortkey.MinKey)
	_, err = c.FindUnusedKey(ctx, sortkey.MinKey, false)
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, placement.ExhaustedBackward, ex.Kind)
}

func TestFindUnusedKeyProbeBudget(t *testing.T) {
	ctx := context.Background()
	keys := make([]sortkey.Key, placement.MaxProbes+1)
	for i := range keys {
		keys[i] = sortkey.Key(i)
	}
	c, _ := fill(t, keys...)

	_, err := c.FindUnusedKey(ctx, 0, true)
	var ex *placement.ExhaustionError
	require.ErrorAs(t, err, &ex)
	assert.Equal(t, placement.MaxProbes, ex.Probes)

	// one more free key inside the budget is found
	k, err := c.FindUnusedKey(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, sortkey.Key(placement.MaxProbes+1), k)
}

func TestRenumberAllKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c, m := fill(t, 5, 6, 7, 8)
	require.NoError(t, c.SetArchived(m[2], true))
	before := c.Entries(true)

	require.NoError(t, c.RenumberAll(ctx))

	after := c.Entries(true)
	require.Len(t, after, len(before))
	want, err := sortkey.Spread(len(before))
	require.NoError(t, err)
	for i := range after {
		assert.True(t, after[i].Member.Equal(before[i].Member), "position %d", i)
		assert.Equal(t, before[i].Archived, after[i].Archived)
		assert.Equal(t, want[i], after[i].Key)
		k, err := c.MemberKey(ctx, after[i].Member)
		require.NoError(t, err)
		assert.Equal(t, want[i], k)
	}
}

func TestUpdateKey(t *testing.T) {
	ctx := context.Background()
	c, m := fill(t, 1, 2)

	require.NoError(t, c.UpdateKey(ctx, m[0], 3))
	assert.Equal(t, []sortkey.Key{2, 3}, keysOf(c.Entries(false)))

	err := c.UpdateKey(ctx, m[0], 2)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	err = c.UpdateKey(ctx, newMember(), 9)
	assert.ErrorIs(t, err, placement.ErrMemberNotFound)

	n, err := c.VisibleCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}

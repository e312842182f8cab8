package placement_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/memcontainer"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

// countingContainer counts renumbers of an in-memory container.
type countingContainer struct {
	*memcontainer.Container
	renumbers int
}

func (c *countingContainer) RenumberAll(ctx context.Context) error {
	c.renumbers++
	return c.Container.RenumberAll(ctx)
}

func newContainer(t *testing.T, keys ...sortkey.Key) (*countingContainer, []mcontainer.Member) {
	t.Helper()
	c := &countingContainer{Container: memcontainer.New(mcontainer.Ref{
		Kind: mcontainer.KindEntityAttributes,
		ID:   idwrap.NewNow(),
	})}
	members := make([]mcontainer.Member, len(keys))
	for i, k := range keys {
		members[i] = mcontainer.Member{ID: idwrap.NewNow(), Form: mcontainer.FormText}
		require.NoError(t, c.Insert(members[i], k, false))
	}
	return c, members
}

func order(c *countingContainer) []mcontainer.Member {
	entries := c.Entries(true)
	out := make([]mcontainer.Member, len(entries))
	for i, e := range entries {
		out[i] = e.Member
	}
	return out
}

func keyOf(t *testing.T, c *countingContainer, m mcontainer.Member) sortkey.Key {
	t.Helper()
	k, err := c.MemberKey(context.Background(), m)
	require.NoError(t, err)
	return k
}

func ptr[T any](v T) *T { return &v }

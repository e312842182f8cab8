package placement_test

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onemodel/ordinal/pkg/idwrap"
	"github.com/onemodel/ordinal/pkg/logger/mocklogger"
	"github.com/onemodel/ordinal/pkg/model/mcontainer"
	"github.com/onemodel/ordinal/pkg/placement"
	"github.com/onemodel/ordinal/pkg/sortkey"
)

func moveSelf(m mcontainer.Member, distance int, forward bool) placement.MoveRequest {
	return placement.MoveRequest{
		Moving:    m,
		Reference: &m,
		Distance:  distance,
		Forward:   forward,
		Viewport:  placement.Viewport{Start: 0, Size: 10},
	}
}

func TestPlaceEntryBetweenNeighbors(t *testing.T) {
	ctx := context.Background()
	c, m := newContainer(t, -100, 0, 100)

	res, err := placement.New(nil).PlaceEntry(ctx, c, moveSelf(m[0], 1, true))
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.False(t, res.Renumbered)
	assert.Equal(t, sortkey.Key(50), res.NewKey)
	assert.Equal(t, 1, res.ActualDistance)
	assert.Equal(t, sortkey.Key(50), keyOf(t, c, m[0]))
	assert.Equal(t, []mcontainer.Member{m[1], m[0], m[2]}, order(c))
	assert.Zero(t, c.renumbers)
}

func TestPlaceEntryBackward(t *testing.T) {
	ctx := context.Background()
	c, m := newContainer(t, 0, 10, 20)

	res, err := placement.New(nil).PlaceEntry(ctx, c, moveSelf(m[2], 1, false))
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, sortkey.Key(5), res.NewKey)
	assert.Equal(t, []mcontainer.Member{m[0], m[2], m[1]}, order(c))
}

func TestPlaceEntryOpenBoundary(t *testing.T) {
	ctx := context.Background()
	c, m := newContainer(t, 50, 100)

	res, err := placement.New(nil).PlaceEntry(ctx, c, moveSelf(m[0], 1, true))
	require.NoError(t, err)
	assert.Equal(t, 100+(sortkey.MaxKey-100)/2, res.NewKey)
}

func TestPlaceEntryDistancePastEnd(t *testing.T) {
	ctx := context.Background()
	c, m := newContainer(t, 0, 10, 20, 30)

	res, err := placement.New(nil).PlaceEntry(ctx, c, moveSelf(m[0], 10, true))
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, 3, res.ActualDistance)
	assert.Equal(t, []mcontainer.Member{m[1], m[2], m[3], m[0]}, order(c))
}

func TestPlaceEntryLastMemberForwardIsNoop(t *testing.T) {
	ctx := context.Background()
	c, m := newContainer(t, 1, 2, 3)
	req := moveSelf(m[2], 5, true)
	req.Viewport = placement.Viewport{Start: 4, Size: 10}

	res, err := placement.New(nil).PlaceEntry(ctx, c, req)
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, 4, res.WindowStart)
	assert.Equal(t, sortkey.Key(3), keyOf(t, c, m[2]))

	res, err = placement.New(nil).PlaceEntry(ctx, c, moveSelf(m[0], 1, false))
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, sortkey.Key(1), keyOf(t, c, m[0]))
}

func TestPlaceEntryRenumbersWhenNoRoom(t *testing.T) {
	tests := []struct {
		name     string
		keys     []sortkey.Key
		archived []int
		want     []int
	}{
		{name: "adjacent visible", keys: []sortkey.Key{5, 6, 7}, want: []int{1, 0, 2}},
		{name: "archived neighbor", keys: []sortkey.Key{5, 6, 7}, archived: []int{2}, want: []int{1, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			c, m := newContainer(t, tt.keys...)
			for _, i := range tt.archived {
				require.NoError(t, c.SetArchived(m[i], true))
			}
			logger, h := mocklogger.NewMockLogger()

			res, err := placement.New(logger).PlaceEntry(ctx, c, moveSelf(m[0], 1, true))
			require.NoError(t, err)
			assert.True(t, res.Moved)
			assert.True(t, res.Renumbered)
			assert.Equal(t, 1, c.renumbers)

			want := make([]mcontainer.Member, len(tt.want))
			for i, idx := range tt.want {
				want[i] = m[idx]
			}
			assert.Equal(t, want, order(c))
			assert.Len(t, h.Messages(slog.LevelWarn), 1)
		})
	}
}

func TestPlaceEntryTowardOpenEndHasRoom(t *testing.T) {
	ctx := context.Background()
	c, m := newContainer(t, 5, 6)

	res, err := placement.New(nil).PlaceEntry(ctx, c, moveSelf(m[0], 1, true))
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.False(t, res.Renumbered)
	assert.Zero(t, c.renumbers)
	assert.Equal(t, []mcontainer.Member{m[1], m[0]}, order(c))
}

func TestPlaceEntryBesideReference(t *testing.T) {
	ctx := context.Background()
	c, m := newContainer(t, 0, 100, 1000)
	req := placement.MoveRequest{
		Moving:    m[2],
		Reference: &m[0],
		Distance:  0,
		Forward:   true,
		Viewport:  placement.Viewport{Start: 0, Size: 10},
	}

	res, err := placement.New(nil).PlaceEntry(ctx, c, req)
	require.NoError(t, err)
	assert.Equal(t, sortkey.Key(50), res.NewKey)
	assert.Equal(t, []mcontainer.Member{m[0], m[2], m[1]}, order(c))
}

func TestPlaceEntryWithoutReference(t *testing.T) {
	ctx := context.Background()
	c, m := newContainer(t, 0, 1000)
	req := placement.MoveRequest{
		Moving:   m[1],
		Distance: 0,
		Forward:  true,
		Viewport: placement.Viewport{Start: 0, Size: 10},
	}

	res, err := placement.New(nil).PlaceEntry(ctx, c, req)
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.True(t, res.NewKey < 0 && res.NewKey > sortkey.MinKey+sortkey.SeedOffset, "key %d", res.NewKey)
	assert.Equal(t, []mcontainer.Member{m[1], m[0]}, order(c))
}

func TestPlaceEntryWindow(t *testing.T) {
	ctx := context.Background()
	keys := make([]sortkey.Key, 50)
	for i := range keys {
		keys[i] = sortkey.Key(i * 1000)
	}
	c, m := newContainer(t, keys...)

	req := moveSelf(m[8], 3, true)
	req.RelativeIndex = 8
	res, err := placement.New(nil).PlaceEntry(ctx, c, req)
	require.NoError(t, err)
	assert.Equal(t, 6, res.WindowStart)

	req = moveSelf(m[20], 3, true)
	req.RelativeIndex = 8
	req.KeepWindow = true
	res, err = placement.New(nil).PlaceEntry(ctx, c, req)
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, 0, res.WindowStart)
}

func TestPlaceEntryInvalid(t *testing.T) {
	c, m := newContainer(t, 1)
	tests := []struct {
		name string
		req  placement.MoveRequest
	}{
		{name: "negative distance", req: placement.MoveRequest{Moving: m[0], Distance: -1, Viewport: placement.Viewport{Size: 1}}},
		{name: "empty window", req: placement.MoveRequest{Moving: m[0], Distance: 1}},
		{name: "zero member", req: placement.MoveRequest{Distance: 1, Viewport: placement.Viewport{Size: 1}}},
		{name: "negative row", req: placement.MoveRequest{Moving: m[0], RelativeIndex: -2, Viewport: placement.Viewport{Size: 1}}},
		{name: "zero distance from itself", req: placement.MoveRequest{Moving: m[0], Reference: &m[0], Forward: true, Viewport: placement.Viewport{Size: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := placement.New(nil).PlaceEntry(context.Background(), c, tt.req)
			assert.ErrorIs(t, err, placement.ErrInvalidMove)
			var perr *placement.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, placement.CodeInvalidMove, perr.Code)
		})
	}
}

func TestPlaceEntryZeroDistanceFromItselfLeavesKeys(t *testing.T) {
	c, m := newContainer(t, 5, 6, 100)

	_, err := placement.New(nil).PlaceEntry(context.Background(), c, moveSelf(m[0], 0, true))
	require.ErrorIs(t, err, placement.ErrInvalidMove)
	assert.Zero(t, c.renumbers)
	assert.Equal(t, sortkey.Key(5), keyOf(t, c, m[0]))
	assert.Equal(t, sortkey.Key(6), keyOf(t, c, m[1]))
	assert.Equal(t, sortkey.Key(100), keyOf(t, c, m[2]))
}

func TestPlaceEntryUnknownReference(t *testing.T) {
	c, _ := newContainer(t, 1, 2)
	stranger := mcontainer.Member{ID: idwrap.NewNow(), Form: mcontainer.FormText}

	_, err := placement.New(nil).PlaceEntry(context.Background(), c, moveSelf(stranger, 1, true))
	assert.ErrorIs(t, err, placement.ErrMemberNotFound)
	assert.NotErrorIs(t, err, placement.ErrStoreUnavailable)
}

// Random moves over tightly packed keys force repeated renumbering; every
// move must keep keys unique and leave the other members in order.
func TestPlaceEntryKeepsOrder(t *testing.T) {
	ctx := context.Background()
	keys := make([]sortkey.Key, 20)
	for i := range keys {
		keys[i] = sortkey.Key(i)
	}
	c, m := newContainer(t, keys...)
	p := placement.New(nil)
	rng := rand.New(rand.NewSource(7))

	for n := 0; n < 300; n++ {
		moving := m[rng.Intn(len(m))]
		before := order(c)

		_, err := p.PlaceEntry(ctx, c, moveSelf(moving, rng.Intn(6), rng.Intn(2) == 0))
		require.NoError(t, err)

		after := order(c)
		require.Len(t, after, len(m))
		assert.Equal(t, without(before, moving), without(after, moving))

		seen := make(map[sortkey.Key]bool)
		for _, e := range c.Entries(true) {
			require.False(t, seen[e.Key], "duplicate key %d", e.Key)
			seen[e.Key] = true
		}
	}
	assert.Positive(t, c.renumbers)
}

func without(ms []mcontainer.Member, drop mcontainer.Member) []mcontainer.Member {
	out := make([]mcontainer.Member, 0, len(ms))
	for _, m := range ms {
		if !m.Equal(drop) {
			out = append(out, m)
		}
	}
	return out
}

func TestRenumberThenScanKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c, m := newContainer(t, -7, 3, 4, 90, 1<<40)
	require.NoError(t, c.SetArchived(m[2], true))

	require.NoError(t, c.RenumberAll(ctx))

	var scanned []mcontainer.Member
	from := sortkey.MinKey
	for {
		next, err := c.AdjacentEntries(ctx, from, 2, true)
		require.NoError(t, err)
		if len(next) == 0 {
			break
		}
		scanned = append(scanned, next[0].Member)
		from = next[0].Key
	}
	assert.Equal(t, []mcontainer.Member{m[0], m[1], m[3], m[4]}, scanned)
}

type scriptedContainer struct {
	mock.Mock
}

func (s *scriptedContainer) Ref() mcontainer.Ref {
	return s.Called().Get(0).(mcontainer.Ref)
}

func (s *scriptedContainer) AdjacentEntries(ctx context.Context, from sortkey.Key, limit int, forward bool) ([]mcontainer.Entry, error) {
	args := s.Called(ctx, from, limit, forward)
	return args.Get(0).([]mcontainer.Entry), args.Error(1)
}

func (s *scriptedContainer) NearestKey(ctx context.Context, from sortkey.Key, forward bool) (sortkey.Key, bool, error) {
	args := s.Called(ctx, from, forward)
	return args.Get(0).(sortkey.Key), args.Bool(1), args.Error(2)
}

func (s *scriptedContainer) KeyInUse(ctx context.Context, key sortkey.Key) (bool, error) {
	args := s.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (s *scriptedContainer) FindUnusedKey(ctx context.Context, start sortkey.Key, forward bool) (sortkey.Key, error) {
	args := s.Called(ctx, start, forward)
	return args.Get(0).(sortkey.Key), args.Error(1)
}

func (s *scriptedContainer) RenumberAll(ctx context.Context) error {
	return s.Called(ctx).Error(0)
}

func (s *scriptedContainer) UpdateKey(ctx context.Context, member mcontainer.Member, key sortkey.Key) error {
	return s.Called(ctx, member, key).Error(0)
}

func (s *scriptedContainer) VisibleCount(ctx context.Context) (uint64, error) {
	args := s.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (s *scriptedContainer) MemberKey(ctx context.Context, member mcontainer.Member) (sortkey.Key, error) {
	args := s.Called(ctx, member)
	return args.Get(0).(sortkey.Key), args.Error(1)
}

// A store that ignores renumbering keeps producing the same crowded keys.
func TestPlaceEntryRenumberFailed(t *testing.T) {
	ctx := context.Background()
	ref := mcontainer.Ref{Kind: mcontainer.KindGroupEntries, ID: idwrap.NewNow()}
	moving := mcontainer.Member{ID: idwrap.NewNow()}
	anything := mock.Anything

	s := &scriptedContainer{}
	s.On("Ref").Return(ref)
	s.On("VisibleCount", anything).Return(uint64(3), nil)
	s.On("MemberKey", anything, moving).Return(sortkey.Key(5), nil)
	s.On("AdjacentEntries", anything, sortkey.Key(5), 2, true).Return([]mcontainer.Entry{{Key: 6}, {Key: 7}}, nil)
	s.On("NearestKey", anything, sortkey.Key(6), true).Return(sortkey.Key(7), true, nil)
	s.On("KeyInUse", anything, sortkey.Key(6)).Return(true, nil)
	s.On("FindUnusedKey", anything, sortkey.Key(6), true).Return(sortkey.Key(8), nil)
	s.On("RenumberAll", anything).Return(nil)

	_, err := placement.New(nil).PlaceEntry(ctx, s, moveSelf(moving, 1, true))
	require.Error(t, err)
	assert.ErrorIs(t, err, placement.ErrRenumberFailed)

	var perr *placement.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, placement.CodeRenumberFailed, perr.Code)
	assert.Equal(t, sortkey.Key(8), perr.Candidate)
	assert.Equal(t, ref, perr.Container)

	s.AssertNumberOfCalls(t, "RenumberAll", 1)
	s.AssertNotCalled(t, "UpdateKey", anything, anything, anything)
}

func TestPlaceEntryStoreError(t *testing.T) {
	ctx := context.Background()
	diskGone := errors.New("disk gone")
	s := &scriptedContainer{}
	s.On("Ref").Return(mcontainer.Ref{Kind: mcontainer.KindGroupEntries, ID: idwrap.NewNow()})
	s.On("VisibleCount", mock.Anything).Return(uint64(0), diskGone)

	_, err := placement.New(nil).PlaceEntry(ctx, s, moveSelf(mcontainer.Member{ID: idwrap.NewNow()}, 1, true))
	assert.ErrorIs(t, err, placement.ErrStoreUnavailable)
	assert.ErrorIs(t, err, diskGone)
	var serr *placement.StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "visible count", serr.Op)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockSymmetry(t *testing.T) {
	db := newTestStore()
	svc := NewBlockService(db, nil)
	seedCompleteUser(t, db, "u1", "A")
	seedCompleteUser(t, db, "u2", "B")
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "u1", "u2", "spam"))

	blocker := getUserRecord(t, db, "u1")
	blocked := getUserRecord(t, db, "u2")
	assert.Contains(t, blocker.BlockedUsers, "u2")
	assert.Contains(t, blocked.BlockedBy, "u1")

	// visible in either direction
	got, err := svc.IsBlocked(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.True(t, got)
	got, err = svc.IsBlocked(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestBlockIsIdempotent(t *testing.T) {
	db := newTestStore()
	svc := NewBlockService(db, nil)
	seedCompleteUser(t, db, "u1", "A")
	seedCompleteUser(t, db, "u2", "B")
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "u1", "u2", ""))
	require.NoError(t, svc.Block(ctx, "u1", "u2", ""))

	blocked, err := svc.BlockedUsers(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, blocked)
}

func TestBlockSelfRejected(t *testing.T) {
	db := newTestStore()
	svc := NewBlockService(db, nil)
	assert.ErrorIs(t, svc.Block(context.Background(), "u1", "u1", ""), ErrSelfAction)
}

func TestBlockSeversLikeState(t *testing.T) {
	db := newTestStore()
	likes := NewLikeService(db, nil, newTestNotifications(db))
	svc := NewBlockService(db, nil)
	seedCompleteUser(t, db, "u1", "A")
	seedCompleteUser(t, db, "u2", "B")
	ctx := context.Background()

	_, err := likes.Like(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = likes.Like(ctx, "u2", "u1")
	require.NoError(t, err)

	require.NoError(t, svc.Block(ctx, "u1", "u2", ""))

	liked, err := likes.HasLiked(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, liked)
	liked, err = likes.HasLiked(ctx, "u2", "u1")
	require.NoError(t, err)
	assert.False(t, liked)

	blocker := getUserRecord(t, db, "u1")
	blocked := getUserRecord(t, db, "u2")
	assert.NotContains(t, blocker.LikedProfiles, "u2")
	assert.NotContains(t, blocker.WhoLikedMe, "u2")
	assert.NotContains(t, blocked.LikedProfiles, "u1")
	assert.NotContains(t, blocked.WhoLikedMe, "u1")
}

func TestBlockDecrementsTotalLikesUnconditionally(t *testing.T) {
	db := newTestStore()
	svc := NewBlockService(db, nil)
	seedCompleteUser(t, db, "u1", "A")
	seedCompleteUser(t, db, "u2", "B")
	ctx := context.Background()

	// no like exists; the counter still drops below zero
	require.NoError(t, svc.Block(ctx, "u1", "u2", ""))

	blocked := getUserRecord(t, db, "u2")
	assert.Equal(t, -1, blocked.TotalLikes)
}

func TestBlockInvalidatesCachedLikeCount(t *testing.T) {
	db := newTestStore()
	rc := newTestCache(t)
	likes := NewLikeService(db, rc, newTestNotifications(db))
	svc := NewBlockService(db, rc)
	seedCompleteUser(t, db, "u1", "A")
	seedCompleteUser(t, db, "u2", "B")
	ctx := context.Background()

	_, err := likes.Like(ctx, "u1", "u2")
	require.NoError(t, err)
	_, err = likes.CountLikes(ctx, "u2")
	require.NoError(t, err)

	require.NoError(t, svc.Block(ctx, "u1", "u2", ""))

	_, ok, err := rc.GetLikeCount(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnblockRestoresVisibility(t *testing.T) {
	db := newTestStore()
	svc := NewBlockService(db, nil)
	seedCompleteUser(t, db, "u1", "A")
	seedCompleteUser(t, db, "u2", "B")
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "u1", "u2", ""))
	require.NoError(t, svc.Unblock(ctx, "u1", "u2"))

	got, err := svc.IsBlocked(ctx, "u1", "u2")
	require.NoError(t, err)
	assert.False(t, got)

	blocker := getUserRecord(t, db, "u1")
	blocked := getUserRecord(t, db, "u2")
	assert.NotContains(t, blocker.BlockedUsers, "u2")
	assert.NotContains(t, blocked.BlockedBy, "u1")
}

func TestUnblockMissingIsNoop(t *testing.T) {
	db := newTestStore()
	svc := NewBlockService(db, nil)
	seedCompleteUser(t, db, "u1", "A")
	seedCompleteUser(t, db, "u2", "B")

	assert.NoError(t, svc.Unblock(context.Background(), "u1", "u2"))
}

func TestFilterBlocked(t *testing.T) {
	db := newTestStore()
	svc := NewBlockService(db, nil)
	seedCompleteUser(t, db, "u1", "A")
	seedCompleteUser(t, db, "u2", "B")
	seedCompleteUser(t, db, "u3", "C")
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "u1", "u2", ""))

	out, err := svc.FilterBlocked(ctx, "u1", []string{"u2", "u3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3"}, out)
}

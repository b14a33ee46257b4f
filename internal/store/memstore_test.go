package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndGet(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	id, err := m.Add(ctx, "users", map[string]any{"name": "amira"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := m.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, "amira", doc.Data["name"])

	_, err = m.Get(ctx, "users", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMissingDoc(t *testing.T) {
	m := NewMemStore()
	err := m.Update(context.Background(), "users", "missing", map[string]any{"x": 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServerTimestampTransform(t *testing.T) {
	m := NewMemStore()
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.SetNow(func() time.Time { return fixed })
	ctx := context.Background()

	id, err := m.Add(ctx, "events", map[string]any{"createdAt": ServerTimestamp()})
	require.NoError(t, err)

	doc, err := m.Get(ctx, "events", id)
	require.NoError(t, err)
	assert.Equal(t, fixed, doc.Data["createdAt"])
}

func TestIncrementTransform(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	id, err := m.Add(ctx, "users", map[string]any{"totalLikes": 2})
	require.NoError(t, err)

	require.NoError(t, m.Update(ctx, "users", id, map[string]any{"totalLikes": Increment(3)}))
	require.NoError(t, m.Update(ctx, "users", id, map[string]any{"totalLikes": Increment(-1)}))

	doc, err := m.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.EqualValues(t, 4, doc.Data["totalLikes"])

	// incrementing an absent field starts from zero
	require.NoError(t, m.Update(ctx, "users", id, map[string]any{"unread": Increment(1)}))
	doc, err = m.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, doc.Data["unread"])
}

func TestArrayTransforms(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	id, err := m.Add(ctx, "users", map[string]any{"likedProfiles": []any{"a"}})
	require.NoError(t, err)

	require.NoError(t, m.Update(ctx, "users", id, map[string]any{"likedProfiles": ArrayUnion("b", "a")}))
	doc, err := m.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, doc.Data["likedProfiles"])

	require.NoError(t, m.Update(ctx, "users", id, map[string]any{"likedProfiles": ArrayRemove("a", "missing")}))
	doc, err = m.Get(ctx, "users", id)
	require.NoError(t, err)
	assert.Equal(t, []any{"b"}, doc.Data["likedProfiles"])
}

func TestDottedPathUpdate(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	id, err := m.Add(ctx, "conversations", map[string]any{
		"participantsMap": map[string]any{
			"u1": map[string]any{"unreadCount": 0},
		},
	})
	require.NoError(t, err)

	require.NoError(t, m.Update(ctx, "conversations", id, map[string]any{
		"participantsMap.u1.unreadCount": Increment(2),
		"participantsMap.u2.hasAccepted": true,
	}))

	doc, err := m.Get(ctx, "conversations", id)
	require.NoError(t, err)
	pm := doc.Data["participantsMap"].(map[string]any)
	assert.EqualValues(t, 2, pm["u1"].(map[string]any)["unreadCount"])
	assert.Equal(t, true, pm["u2"].(map[string]any)["hasAccepted"])
}

func TestQueryFiltersOrderLimit(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	for i, name := range []string{"a", "b", "c"} {
		_, err := m.Add(ctx, "likes", map[string]any{
			"toUserId":  "u1",
			"fromUser":  name,
			"createdAt": time.Date(2025, 1, 1+i, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	_, err := m.Add(ctx, "likes", map[string]any{"toUserId": "u2", "fromUser": "d"})
	require.NoError(t, err)

	docs, err := m.Query(ctx, "likes", Query{
		Filters: []Filter{{Field: "toUserId", Op: OpEqual, Value: "u1"}},
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c", docs[0].Data["fromUser"])
	assert.Equal(t, "b", docs[1].Data["fromUser"])
}

func TestQueryByDocumentID(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	id1, err := m.Add(ctx, "users", map[string]any{"n": 1})
	require.NoError(t, err)
	_, err = m.Add(ctx, "users", map[string]any{"n": 2})
	require.NoError(t, err)

	docs, err := m.Query(ctx, "users", Query{
		Filters: []Filter{{Field: DocumentID, Op: OpIn, Value: []string{id1}}},
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id1, docs[0].ID)
}

func TestQueryInTooLarge(t *testing.T) {
	m := NewMemStore()

	ids := make([]string, BatchGetLimit+1)
	for i := range ids {
		ids[i] = "x"
	}
	_, err := m.Query(context.Background(), "users", Query{
		Filters: []Filter{{Field: DocumentID, Op: OpIn, Value: ids}},
	})
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestQueryArrayContains(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	_, err := m.Add(ctx, "conversations", map[string]any{"participants": []any{"u1", "u2"}})
	require.NoError(t, err)
	_, err = m.Add(ctx, "conversations", map[string]any{"participants": []any{"u3", "u4"}})
	require.NoError(t, err)

	docs, err := m.Query(ctx, "conversations", Query{
		Filters: []Filter{{Field: "participants", Op: OpArrayContains, Value: "u2"}},
	})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestListenEmitsSnapshots(t *testing.T) {
	m := NewMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots, err := m.Listen(ctx, "messages", Query{OrderBy: "seq"})
	require.NoError(t, err)

	initial := <-snapshots
	assert.Empty(t, initial)

	_, err = m.Add(ctx, "messages", map[string]any{"seq": 1})
	require.NoError(t, err)

	select {
	case docs := <-snapshots:
		require.Len(t, docs, 1)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after write")
	}

	cancel()
	for range snapshots {
	}
}

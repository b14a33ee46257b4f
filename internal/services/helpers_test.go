package services

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"mawadda-service/internal/cache"
	"mawadda-service/internal/models"
	"mawadda-service/internal/rabbitmq"
	"mawadda-service/internal/store"
)

func newTestStore() *store.MemStore {
	return store.NewMemStore()
}

func newTestNotifications(db store.Client) *NotificationService {
	return NewNotificationService(db, rabbitmq.NewPublisher("", ""))
}

func newTestCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func seedUser(t *testing.T, db *store.MemStore, id string, user models.UserRecord) {
	t.Helper()
	require.NoError(t, db.Set(context.Background(), models.UsersCollection, id, user.Fields()))
}

func seedCompleteUser(t *testing.T, db *store.MemStore, id, name string) {
	t.Helper()
	seedUser(t, db, id, models.UserRecord{
		ProfileData: map[string]any{
			"displayName":      name,
			"profileCompleted": true,
		},
	})
}

func getUserRecord(t *testing.T, db *store.MemStore, id string) models.UserRecord {
	t.Helper()
	doc, err := db.Get(context.Background(), models.UsersCollection, id)
	require.NoError(t, err)
	return models.UserFromDoc(doc)
}

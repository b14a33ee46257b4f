package services

import (
	"context"
	"errors"

	"mawadda-service/internal/cache"
	"mawadda-service/internal/logger"
	"mawadda-service/internal/models"
	"mawadda-service/internal/store"
)

// LikeService maintains the likes collection and the denormalized
// likedProfiles/whoLikedMe arrays on user records. The multi-step write
// sequences are not transactional; each step is an independent round-trip
// and partial application is accepted (the arrays converge on retry).
type LikeService struct {
	store         store.Client
	cache         *cache.RedisCache
	notifications *NotificationService
}

func NewLikeService(st store.Client, rc *cache.RedisCache, notifications *NotificationService) *LikeService {
	return &LikeService{store: st, cache: rc, notifications: notifications}
}

// LikeResult reports the outcome of a Like call.
type LikeResult struct {
	LikeID       string `json:"like_id"`
	IsMutual     bool   `json:"is_mutual"`
	AlreadyLiked bool   `json:"already_liked"`
}

// Like records fromUserID liking toUserID. Calling it again for the same
// pair is a no-op returning the existing record.
func (s *LikeService) Like(ctx context.Context, fromUserID, toUserID string) (LikeResult, error) {
	if fromUserID == toUserID {
		return LikeResult{}, ErrSelfAction
	}

	existing, err := s.findLike(ctx, fromUserID, toUserID)
	if err != nil {
		return LikeResult{}, err
	}
	if existing != nil {
		return LikeResult{LikeID: existing.ID, IsMutual: existing.IsMutual, AlreadyLiked: true}, nil
	}

	reverse, err := s.findLike(ctx, toUserID, fromUserID)
	if err != nil {
		return LikeResult{}, err
	}
	mutual := reverse != nil

	record := models.LikeRecord{FromUserID: fromUserID, ToUserID: toUserID, IsMutual: mutual}
	likeID, err := s.store.Add(ctx, models.LikesCollection, record.Fields())
	if err != nil {
		return LikeResult{}, err
	}

	if err := s.store.Update(ctx, models.UsersCollection, fromUserID, map[string]any{
		"likedProfiles": store.ArrayUnion(toUserID),
	}); err != nil {
		return LikeResult{}, err
	}
	if err := s.store.Update(ctx, models.UsersCollection, toUserID, map[string]any{
		"whoLikedMe": store.ArrayUnion(fromUserID),
		"totalLikes": store.Increment(1),
	}); err != nil {
		return LikeResult{}, err
	}

	if s.cache != nil {
		if err := s.cache.IncrLikeCount(ctx, toUserID, 1); err != nil {
			logger.Warn("like count cache update failed", "user", toUserID, "err", err)
		}
	}

	if mutual {
		// the older reciprocal record learns about mutuality after the fact
		if err := s.store.Update(ctx, models.LikesCollection, reverse.ID, map[string]any{
			"isMutual": true,
		}); err != nil {
			logger.Warn("reciprocal like update failed", "like", reverse.ID, "err", err)
		}
		s.notifications.MatchCreated(ctx, fromUserID, toUserID)
	} else {
		s.notifications.LikeReceived(ctx, fromUserID, toUserID)
	}

	return LikeResult{LikeID: likeID, IsMutual: mutual}, nil
}

// Unlike removes fromUserID's like of toUserID. A missing like is a no-op.
func (s *LikeService) Unlike(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == toUserID {
		return ErrSelfAction
	}

	docs, err := s.store.Query(ctx, models.LikesCollection, store.Query{
		Filters: []store.Filter{
			{Field: "fromUserId", Op: store.OpEqual, Value: fromUserID},
			{Field: "toUserId", Op: store.OpEqual, Value: toUserID},
		},
	})
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	for _, d := range docs {
		if err := s.store.Delete(ctx, models.LikesCollection, d.ID); err != nil {
			return err
		}
	}

	if err := s.store.Update(ctx, models.UsersCollection, fromUserID, map[string]any{
		"likedProfiles": store.ArrayRemove(toUserID),
	}); err != nil {
		return err
	}
	if err := s.store.Update(ctx, models.UsersCollection, toUserID, map[string]any{
		"whoLikedMe": store.ArrayRemove(fromUserID),
		"totalLikes": store.Increment(-1),
	}); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.IncrLikeCount(ctx, toUserID, -1); err != nil {
			logger.Warn("like count cache update failed", "user", toUserID, "err", err)
		}
	}
	return nil
}

// HasLiked reports whether fromUserID currently likes toUserID.
func (s *LikeService) HasLiked(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	record, err := s.findLike(ctx, fromUserID, toUserID)
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

// CountLikes returns how many users like userID, cache-first with a store
// fallback that repopulates the cache.
func (s *LikeService) CountLikes(ctx context.Context, userID string) (int64, error) {
	if s.cache != nil {
		if n, ok, err := s.cache.GetLikeCount(ctx, userID); err == nil && ok {
			return n, nil
		}
	}

	docs, err := s.store.Query(ctx, models.LikesCollection, store.Query{
		Filters: []store.Filter{{Field: "toUserId", Op: store.OpEqual, Value: userID}},
	})
	if err != nil {
		return 0, err
	}
	count := int64(len(docs))

	if s.cache != nil {
		if err := s.cache.SetLikeCount(ctx, userID, count); err != nil {
			logger.Warn("like count cache set failed", "user", userID, "err", err)
		}
	}
	return count, nil
}

// WhoLikedMe lists likes received by userID, newest first, excluding users
// either side of a block with userID.
func (s *LikeService) WhoLikedMe(ctx context.Context, userID string) ([]models.LikeRecord, error) {
	userDoc, err := s.store.Get(ctx, models.UsersCollection, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user := models.UserFromDoc(userDoc)

	docs, err := s.store.Query(ctx, models.LikesCollection, store.Query{
		Filters: []store.Filter{{Field: "toUserId", Op: store.OpEqual, Value: userID}},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.LikeRecord, 0, len(docs))
	for _, d := range docs {
		record := models.LikeFromDoc(d)
		if user.BlockedEitherWay(record.FromUserID) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

// MarkLikesViewed flags all unseen received likes as viewed.
func (s *LikeService) MarkLikesViewed(ctx context.Context, userID string) error {
	docs, err := s.store.Query(ctx, models.LikesCollection, store.Query{
		Filters: []store.Filter{
			{Field: "toUserId", Op: store.OpEqual, Value: userID},
			{Field: "viewedByReceiver", Op: store.OpEqual, Value: false},
		},
	})
	if err != nil {
		return err
	}
	for _, d := range docs {
		if err := s.store.Update(ctx, models.LikesCollection, d.ID, map[string]any{
			"viewedByReceiver": true,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *LikeService) findLike(ctx context.Context, fromUserID, toUserID string) (*models.LikeRecord, error) {
	docs, err := s.store.Query(ctx, models.LikesCollection, store.Query{
		Filters: []store.Filter{
			{Field: "fromUserId", Op: store.OpEqual, Value: fromUserID},
			{Field: "toUserId", Op: store.OpEqual, Value: toUserID},
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	record := models.LikeFromDoc(docs[0])
	return &record, nil
}

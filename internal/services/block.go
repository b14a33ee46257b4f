package services

import (
	"context"

	"mawadda-service/internal/cache"
	"mawadda-service/internal/logger"
	"mawadda-service/internal/models"
	"mawadda-service/internal/store"
)

// BlockService maintains the blocks collection, the bidirectional
// blockedUsers/blockedBy arrays, and the relationship cleanup a block
// implies. Like LikeService, the write sequences are not transactional.
type BlockService struct {
	store store.Client
	cache *cache.RedisCache
}

func NewBlockService(st store.Client, rc *cache.RedisCache) *BlockService {
	return &BlockService{store: st, cache: rc}
}

// Block records fromUserID blocking toUserID and severs the pair's
// relationship state. Blocking an already-blocked user is a no-op.
func (s *BlockService) Block(ctx context.Context, fromUserID, toUserID, reason string) error {
	if fromUserID == toUserID {
		return ErrSelfAction
	}

	existing, err := s.findBlock(ctx, fromUserID, toUserID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	record := models.BlockRecord{BlockerUserID: fromUserID, BlockedUserID: toUserID, Reason: reason}
	if _, err := s.store.Add(ctx, models.BlocksCollection, record.Fields()); err != nil {
		return err
	}

	if err := s.store.Update(ctx, models.UsersCollection, fromUserID, map[string]any{
		"blockedUsers": store.ArrayUnion(toUserID),
	}); err != nil {
		return err
	}
	if err := s.store.Update(ctx, models.UsersCollection, toUserID, map[string]any{
		"blockedBy": store.ArrayUnion(fromUserID),
	}); err != nil {
		return err
	}

	return s.cleanupRelationships(ctx, fromUserID, toUserID)
}

// cleanupRelationships removes the like/view state between a blocked pair.
// The blocked side's totalLikes is decremented unconditionally, matching
// the shipped behavior even when the blocker never liked them; the counter
// can therefore drift low. Kept as-is deliberately.
func (s *BlockService) cleanupRelationships(ctx context.Context, fromUserID, toUserID string) error {
	if err := s.store.Update(ctx, models.UsersCollection, fromUserID, map[string]any{
		"likedProfiles":  store.ArrayRemove(toUserID),
		"whoLikedMe":     store.ArrayRemove(toUserID),
		"viewedProfiles": store.ArrayRemove(toUserID),
	}); err != nil {
		return err
	}
	if err := s.store.Update(ctx, models.UsersCollection, toUserID, map[string]any{
		"likedProfiles":  store.ArrayRemove(fromUserID),
		"whoLikedMe":     store.ArrayRemove(fromUserID),
		"viewedProfiles": store.ArrayRemove(fromUserID),
		"totalLikes":     store.Increment(-1),
	}); err != nil {
		return err
	}

	// drop any like records in either direction
	for _, pair := range [][2]string{{fromUserID, toUserID}, {toUserID, fromUserID}} {
		docs, err := s.store.Query(ctx, models.LikesCollection, store.Query{
			Filters: []store.Filter{
				{Field: "fromUserId", Op: store.OpEqual, Value: pair[0]},
				{Field: "toUserId", Op: store.OpEqual, Value: pair[1]},
			},
		})
		if err != nil {
			return err
		}
		for _, d := range docs {
			if err := s.store.Delete(ctx, models.LikesCollection, d.ID); err != nil {
				return err
			}
		}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateLikeCount(ctx, toUserID); err != nil {
			logger.Warn("like count cache invalidate failed", "user", toUserID, "err", err)
		}
	}
	return nil
}

// Unblock removes fromUserID's block of toUserID. A missing block is a no-op.
func (s *BlockService) Unblock(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == toUserID {
		return ErrSelfAction
	}

	existing, err := s.findBlock(ctx, fromUserID, toUserID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if err := s.store.Delete(ctx, models.BlocksCollection, existing.ID); err != nil {
		return err
	}
	if err := s.store.Update(ctx, models.UsersCollection, fromUserID, map[string]any{
		"blockedUsers": store.ArrayRemove(toUserID),
	}); err != nil {
		return err
	}
	return s.store.Update(ctx, models.UsersCollection, toUserID, map[string]any{
		"blockedBy": store.ArrayRemove(fromUserID),
	})
}

// IsBlocked reports whether a block exists in either direction.
func (s *BlockService) IsBlocked(ctx context.Context, userA, userB string) (bool, error) {
	first, err := s.findBlock(ctx, userA, userB)
	if err != nil {
		return false, err
	}
	if first != nil {
		return true, nil
	}
	second, err := s.findBlock(ctx, userB, userA)
	if err != nil {
		return false, err
	}
	return second != nil, nil
}

// BlockedUsers returns the ids userID has blocked.
func (s *BlockService) BlockedUsers(ctx context.Context, userID string) ([]string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.BlockedUsers, nil
}

// BlockedBy returns the ids that have blocked userID.
func (s *BlockService) BlockedBy(ctx context.Context, userID string) ([]string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.BlockedBy, nil
}

// FilterBlocked removes ids blocked in either direction from candidates.
func (s *BlockService) FilterBlocked(ctx context.Context, userID string, candidates []string) ([]string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if user.BlockedEitherWay(id) {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *BlockService) findBlock(ctx context.Context, blockerID, blockedID string) (*models.BlockRecord, error) {
	docs, err := s.store.Query(ctx, models.BlocksCollection, store.Query{
		Filters: []store.Filter{
			{Field: "blockerUserId", Op: store.OpEqual, Value: blockerID},
			{Field: "blockedUserId", Op: store.OpEqual, Value: blockedID},
		},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	record := models.BlockFromDoc(docs[0])
	return &record, nil
}

func (s *BlockService) getUser(ctx context.Context, userID string) (models.UserRecord, error) {
	doc, err := s.store.Get(ctx, models.UsersCollection, userID)
	if err != nil {
		return models.UserRecord{}, ErrUserNotFound
	}
	return models.UserFromDoc(doc), nil
}

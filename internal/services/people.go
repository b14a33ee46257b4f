package services

import (
	"context"
	"errors"
	"sync"

	"mawadda-service/internal/logger"
	"mawadda-service/internal/models"
	"mawadda-service/internal/observability"
	"mawadda-service/internal/store"
)

// PeopleService fetches and normalizes profile records. Batch reads are
// chunked to the store's id-set query ceiling and issued concurrently.
type PeopleService struct {
	store store.Client
}

func NewPeopleService(st store.Client) *PeopleService {
	return &PeopleService{store: st}
}

// ProfilesByIDs resolves up to limit profiles for ids, skipping users either
// side of a block with the requester. Blocked and empty ids are dropped
// before chunking, so the store sees exactly ceil(min(n,limit)/10) queries.
// A failed chunk yields no results for that chunk; sibling chunks are
// unaffected. Result order across chunks is not defined.
func (s *PeopleService) ProfilesByIDs(ctx context.Context, ids []string, requester models.UserRecord, limit int) []models.NormalizedProfile {
	excluded := make(map[string]struct{}, len(requester.BlockedUsers)+len(requester.BlockedBy))
	for _, id := range requester.BlockedUsers {
		excluded[id] = struct{}{}
	}
	for _, id := range requester.BlockedBy {
		excluded[id] = struct{}{}
	}

	seen := make(map[string]struct{}, len(ids))
	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == requester.ID {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if _, blocked := excluded[id]; blocked {
			continue
		}
		seen[id] = struct{}{}
		filtered = append(filtered, id)
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	if len(filtered) == 0 {
		return nil
	}

	var chunks [][]string
	for start := 0; start < len(filtered); start += store.BatchGetLimit {
		end := start + store.BatchGetLimit
		if end > len(filtered) {
			end = len(filtered)
		}
		chunks = append(chunks, filtered[start:end])
	}

	results := make([][]models.NormalizedProfile, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []string) {
			defer wg.Done()
			observability.IncProfileBatchChunk()
			docs, err := s.store.Query(ctx, models.UsersCollection, store.Query{
				Filters: []store.Filter{{Field: store.DocumentID, Op: store.OpIn, Value: chunk}},
			})
			if err != nil {
				logger.Warn("profile batch chunk failed", "size", len(chunk), "err", err)
				return
			}
			results[i] = normalizeDocs(docs)
		}(i, chunk)
	}
	wg.Wait()

	var out []models.NormalizedProfile
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// ProfilesForRequester is ProfilesByIDs with the requester resolved by id.
func (s *PeopleService) ProfilesForRequester(ctx context.Context, requesterID string, ids []string, limit int) ([]models.NormalizedProfile, error) {
	doc, err := s.store.Get(ctx, models.UsersCollection, requesterID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.ProfilesByIDs(ctx, ids, models.UserFromDoc(doc), limit), nil
}

// ProfileByID resolves a single profile with the same visibility rules.
func (s *PeopleService) ProfileByID(ctx context.Context, id string) (models.NormalizedProfile, error) {
	doc, err := s.store.Get(ctx, models.UsersCollection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.NormalizedProfile{}, ErrUserNotFound
		}
		return models.NormalizedProfile{}, err
	}
	user := models.UserFromDoc(doc)
	if user.AccountStatus != models.AccountActive || !models.ProfileComplete(user.ProfileData) {
		return models.NormalizedProfile{}, ErrUserNotFound
	}
	return models.NormalizeProfile(doc.ID, user.ProfileData), nil
}

func normalizeDocs(docs []store.Doc) []models.NormalizedProfile {
	var out []models.NormalizedProfile
	for _, d := range docs {
		user := models.UserFromDoc(d)
		if user.ProfileData == nil {
			continue
		}
		if user.AccountStatus != models.AccountActive {
			continue
		}
		if !models.ProfileComplete(user.ProfileData) {
			continue
		}
		out = append(out, models.NormalizeProfile(d.ID, user.ProfileData))
	}
	return out
}

package usecase

import (
	"context"

	"cofeed/pkg/cursor"
	"cofeed/pkg/logger"
	"cofeed/pkg/relation"
	"cofeed/pkg/visibility"
	"cofeed/services/feed/internal/entity"
	"cofeed/services/feed/internal/repo/persistent"
)

const DefaultPageSize = 20

type FeedUseCase interface {
	AssembleFeed(ctx context.Context, viewerID, after string, pageSize int) (*entity.Page, error)
}

type feedUseCase struct {
	feedRepo    persistent.FeedRepository
	graph       relation.Graph
	defaultSize int
	maxSize     int
	logger      *logger.Logger
}

func NewFeedUseCase(feedRepo persistent.FeedRepository, graph relation.Graph, defaultSize, maxSize int, logger *logger.Logger) FeedUseCase {
	if maxSize <= 0 {
		maxSize = 100
	}
	if defaultSize <= 0 || defaultSize > maxSize {
		defaultSize = DefaultPageSize
		if defaultSize > maxSize {
			defaultSize = maxSize
		}
	}
	return &feedUseCase{
		feedRepo:    feedRepo,
		graph:       graph,
		defaultSize: defaultSize,
		maxSize:     maxSize,
		logger:      logger,
	}
}

// AssembleFeed returns up to pageSize posts the viewer may see, newest first.
// Windows are read until one post past the page is found, so NextCursor is
// only set when another visible post exists.
func (uc *feedUseCase) AssembleFeed(ctx context.Context, viewerID, after string, pageSize int) (*entity.Page, error) {
	pageSize = uc.clamp(pageSize)

	pos, err := cursor.Decode(after)
	if err != nil {
		return nil, err
	}

	want := pageSize + 1
	window := want * 2
	visible := make([]entity.Candidate, 0, want)
	windows := 0

	for len(visible) < want {
		candidates, err := uc.feedRepo.Candidates(ctx, viewerID, pos, window)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			break
		}
		windows++

		connected, err := uc.graph.BatchConnected(ctx, viewerID, relationshipOwners(candidates, viewerID))
		if err != nil {
			return nil, err
		}
		for i := range candidates {
			if visibility.CanView(candidates[i].Subject(), viewerID, connected[candidates[i].OwnerID]) {
				visible = append(visible, candidates[i])
				if len(visible) == want {
					break
				}
			}
		}

		last := candidates[len(candidates)-1]
		pos = &cursor.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
		if len(candidates) < window {
			break
		}
	}

	page := &entity.Page{}
	if len(visible) > pageSize {
		visible = visible[:pageSize]
		last := visible[pageSize-1]
		page.NextCursor = cursor.Encode(last.CreatedAt, last.ID)
	}

	page.Posts, err = uc.enrich(ctx, visible, viewerID)
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("[FEED] viewer=%s windows=%d returned=%d more=%t", viewerID, windows, len(page.Posts), page.NextCursor != "")
	return page, nil
}

func (uc *feedUseCase) clamp(pageSize int) int {
	if pageSize <= 0 {
		return uc.defaultSize
	}
	if pageSize > uc.maxSize {
		return uc.maxSize
	}
	return pageSize
}

func (uc *feedUseCase) enrich(ctx context.Context, posts []entity.Candidate, viewerID string) ([]entity.FeedPost, error) {
	out := make([]entity.FeedPost, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(posts))
	var userIDs, originIDs []string
	for i := range posts {
		ids = append(ids, posts[i].ID)
		userIDs = append(userIDs, posts[i].OwnerID)
		userIDs = append(userIDs, posts[i].CoCreatorIDs...)
		if posts[i].SharedFromID != nil {
			originIDs = append(originIDs, *posts[i].SharedFromID)
		}
	}

	profiles, err := uc.feedRepo.Profiles(ctx, unique(userIDs))
	if err != nil {
		return nil, err
	}
	media, err := uc.feedRepo.Media(ctx, ids)
	if err != nil {
		return nil, err
	}
	stats, err := uc.feedRepo.Stats(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}
	origins, err := uc.feedRepo.ExistingPosts(ctx, unique(originIDs))
	if err != nil {
		return nil, err
	}

	for i := range posts {
		p := &posts[i]
		item := entity.FeedPost{
			ID:           p.ID,
			Owner:        profileOf(profiles, p.OwnerID),
			CoCreators:   make([]entity.Profile, 0, len(p.CoCreatorIDs)),
			Body:         p.Body,
			Privacy:      p.Privacy,
			AllowShare:   p.AllowShare,
			SharedFromID: p.SharedFromID,
			Media:        media[p.ID],
			Stats:        stats[p.ID],
			CreatedAt:    p.CreatedAt,
			EditedAt:     p.EditedAt,
		}
		for _, id := range p.CoCreatorIDs {
			item.CoCreators = append(item.CoCreators, profileOf(profiles, id))
		}
		if item.Media == nil {
			item.Media = []entity.Media{}
		}
		if p.SharedFromID != nil && !origins[*p.SharedFromID] {
			item.OriginRemoved = true
		}
		out = append(out, item)
	}
	return out, nil
}

// relationshipOwners lists the owners whose relationship to the viewer
// actually decides visibility for some candidate.
func relationshipOwners(candidates []entity.Candidate, viewerID string) []string {
	var owners []string
	for i := range candidates {
		if visibility.NeedsRelationship(candidates[i].Subject(), viewerID) {
			owners = append(owners, candidates[i].OwnerID)
		}
	}
	return unique(owners)
}

// profileOf falls back to a bare id when the identity provider has no stub.
func profileOf(profiles map[string]entity.Profile, id string) entity.Profile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return entity.Profile{ID: id}
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

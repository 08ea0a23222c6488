package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/models"
	"cofeed/pkg/queue"
	"cofeed/pkg/relation"
	"cofeed/pkg/testutil"
	"cofeed/services/interaction/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []string
	users  []string
}

func (e *recordingEmitter) Notify(userID, eventType string, _ map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, eventType)
	e.users = append(e.users, userID)
}

func newTestUseCase(t *testing.T) (InteractionUseCase, *gorm.DB, *recordingEmitter) {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Nop()
	notifier := &recordingEmitter{}
	uc := NewInteractionUseCase(
		persistent.NewInteractionRepository(db),
		persistent.NewPostRepository(db),
		relation.NewGraph(db, nil, time.Minute, log),
		notifier,
		log,
	)
	return uc, db, notifier
}

func seedPost(t *testing.T, db *gorm.DB, ownerID string, privacy models.Privacy, allowShare bool) *models.Post {
	t.Helper()
	post := &models.Post{OwnerID: ownerID, Body: testutil.Ptr("hello"), Privacy: privacy, AllowShare: allowShare}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestScenario_LikeToggles(t *testing.T) {
	uc, db, notifier := newTestUseCase(t)
	ctx := context.Background()
	post := seedPost(t, db, "u1", models.PrivacyPublic, true)

	liked, err := uc.ToggleLike(ctx, post.ID, "u3")
	require.NoError(t, err)
	assert.True(t, liked)

	counts, err := uc.Counts(ctx, post.ID, "u3")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Likes)
	assert.True(t, counts.LikedByViewer)
	assert.Zero(t, counts.Comments)

	liked, err = uc.ToggleLike(ctx, post.ID, "u3")
	require.NoError(t, err)
	assert.False(t, liked)

	counts, err = uc.Counts(ctx, post.ID, "u3")
	require.NoError(t, err)
	assert.Zero(t, counts.Likes)
	assert.False(t, counts.LikedByViewer)
	assert.Zero(t, counts.Comments)

	assert.Equal(t, []string{queue.EventLike}, notifier.events)
	assert.Equal(t, []string{"u1"}, notifier.users)
}

func TestToggleLike_PairLeavesCountUnchanged(t *testing.T) {
	uc, db, _ := newTestUseCase(t)
	ctx := context.Background()
	post := seedPost(t, db, "u1", models.PrivacyPublic, true)

	_, err := uc.ToggleLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	before, err := uc.Counts(ctx, post.ID, "u1")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := uc.ToggleLike(ctx, post.ID, "u3")
		require.NoError(t, err)
	}

	after, err := uc.Counts(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, before.Likes, after.Likes)
	assert.Equal(t, int64(1), after.Likes)
}

func TestToggleLike_MissingOrHiddenPost(t *testing.T) {
	uc, db, _ := newTestUseCase(t)
	ctx := context.Background()

	_, err := uc.ToggleLike(ctx, "missing", "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	private := seedPost(t, db, "u1", models.PrivacyPrivate, true)
	_, err = uc.ToggleLike(ctx, private.ID, "u2")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	friends := seedPost(t, db, "u1", models.PrivacyFriends, true)
	testutil.Befriend(t, db, "u1", "u2")
	liked, err := uc.ToggleLike(ctx, friends.ID, "u2")
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestScenario_ShareCreatesPostAndCounts(t *testing.T) {
	uc, db, notifier := newTestUseCase(t)
	ctx := context.Background()
	post := seedPost(t, db, "u1", models.PrivacyPublic, true)

	share, err := uc.Share(ctx, post.ID, "u4", testutil.Ptr("nice!"), nil)
	require.NoError(t, err)
	assert.Equal(t, "u4", share.OwnerID)
	assert.Equal(t, post.ID, share.SharedFromID)
	assert.Equal(t, "nice!", share.Body)
	assert.Equal(t, models.PrivacyFriends, share.Privacy)

	counts, err := uc.Counts(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Shares)

	var stored models.Post
	require.NoError(t, db.Where("id = ?", share.ID).First(&stored).Error)
	require.NotNil(t, stored.SharedFromID)
	assert.Equal(t, post.ID, *stored.SharedFromID)

	assert.Equal(t, []string{queue.EventShare}, notifier.events)
}

func TestShare_Defaults(t *testing.T) {
	uc, db, _ := newTestUseCase(t)
	ctx := context.Background()
	post := seedPost(t, db, "u1", models.PrivacyPublic, true)

	share, err := uc.Share(ctx, post.ID, "u2", nil, testutil.Ptr("public"))
	require.NoError(t, err)
	assert.Equal(t, "Shared a post", share.Body)
	assert.Equal(t, models.PrivacyPublic, share.Privacy)

	_, err = uc.Share(ctx, post.ID, "u2", nil, testutil.Ptr("everyone"))
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestShare_NotAllowedEvenForOwner(t *testing.T) {
	uc, db, _ := newTestUseCase(t)
	ctx := context.Background()
	post := seedPost(t, db, "u1", models.PrivacyPublic, false)

	_, err := uc.Share(ctx, post.ID, "u2", nil, nil)
	assert.ErrorIs(t, err, apperror.ErrNotAllowed)

	_, err = uc.Share(ctx, post.ID, "u1", nil, nil)
	assert.ErrorIs(t, err, apperror.ErrNotAllowed)

	_, err = uc.Share(ctx, "missing", "u1", nil, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	counts, err := uc.Counts(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.Zero(t, counts.Shares)
}

func TestShare_NotAllowedForCallerWhoCannotSeePost(t *testing.T) {
	uc, db, _ := newTestUseCase(t)
	ctx := context.Background()
	closed := seedPost(t, db, "u1", models.PrivacyFriends, false)
	open := seedPost(t, db, "u1", models.PrivacyFriends, true)

	_, err := uc.Share(ctx, closed.ID, "stranger", nil, nil)
	assert.ErrorIs(t, err, apperror.ErrNotAllowed)
	assert.NotErrorIs(t, err, apperror.ErrNotFound)

	// shareable but hidden stays not found
	_, err = uc.Share(ctx, open.ID, "stranger", nil, nil)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestComments(t *testing.T) {
	uc, db, notifier := newTestUseCase(t)
	ctx := context.Background()
	post := seedPost(t, db, "u1", models.PrivacyPublic, true)

	_, err := uc.AddComment(ctx, post.ID, "u2", "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = uc.AddComment(ctx, "missing", "u2", "hi")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	comment, err := uc.AddComment(ctx, post.ID, "u2", "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", comment.Body)
	assert.Equal(t, []string{queue.EventComment}, notifier.events)

	err = uc.DeleteComment(ctx, comment.ID, "u1")
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	require.NoError(t, uc.DeleteComment(ctx, comment.ID, "u2"))

	err = uc.DeleteComment(ctx, comment.ID, "u2")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListComments_Pages(t *testing.T) {
	uc, db, _ := newTestUseCase(t)
	ctx := context.Background()
	post := seedPost(t, db, "u1", models.PrivacyPublic, true)

	// two comments share a timestamp to exercise the id tiebreak
	for i, at := range []int{1, 2, 2, 3, 4} {
		require.NoError(t, db.Create(&models.Comment{
			ID:        "c" + string(rune('a'+i)),
			PostID:    post.ID,
			AuthorID:  "u2",
			Body:      "comment",
			CreatedAt: testutil.At(at),
		}).Error)
	}

	var seen []string
	next := ""
	pages := 0
	for {
		page, err := uc.ListComments(ctx, post.ID, "u1", next, 2)
		require.NoError(t, err)
		pages++
		for _, c := range page.Comments {
			seen = append(seen, c.ID)
		}
		if page.NextCursor == "" {
			break
		}
		next = page.NextCursor
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, []string{"ca", "cb", "cc", "cd", "ce"}, seen)

	_, err := uc.ListComments(ctx, post.ID, "u1", "garbage!", 2)
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

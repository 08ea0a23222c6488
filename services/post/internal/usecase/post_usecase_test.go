package usecase

import (
	"context"
	"testing"

	"cofeed/pkg/apperror"
	"cofeed/pkg/models"
	"cofeed/pkg/queue"
	"cofeed/pkg/s3"
	"cofeed/pkg/testutil"
	"cofeed/services/post/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_WithMedia(t *testing.T) {
	f := newFixture(t)

	media := []entity.NewMedia{
		{Ref: s3.ObjectRef{Key: "k1", URL: "http://media.test/k1"}, Kind: models.MediaImage},
		{Ref: s3.ObjectRef{Key: "k2", URL: "http://media.test/k2"}, Kind: models.MediaVideo},
	}
	post, err := f.posts.CreatePost(context.Background(), "u1", nil, "friends", false, media, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Nil(t, post.Body)
	assert.Equal(t, models.PrivacyFriends, post.Privacy)
	assert.False(t, post.AllowShare)
	require.Len(t, post.Media, 2)
	assert.Equal(t, 0, post.Media[0].Position)
	assert.Equal(t, 1, post.Media[1].Position)
	assert.Equal(t, "u1", post.Media[1].UploaderID)

	stored, err := f.posts.GetPost(context.Background(), post.ID, "u1")
	require.NoError(t, err)
	require.Len(t, stored.Media, 2)
	assert.Equal(t, "k1", stored.Media[0].ObjectKey)
	assert.Equal(t, models.MediaVideo, stored.Media[1].Kind)
}

func TestCreatePost_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.posts.CreatePost(ctx, "u1", nil, "public", true, nil, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.posts.CreatePost(ctx, "u1", testutil.Ptr("   "), "public", true, nil, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.posts.CreatePost(ctx, "u1", testutil.Ptr("hello"), "everyone", true, nil, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	bad := []entity.NewMedia{{Ref: s3.ObjectRef{Key: "k"}, Kind: models.MediaKind("gif")}}
	_, err = f.posts.CreatePost(ctx, "u1", nil, "public", true, bad, nil)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.posts.CreatePost(ctx, "", testutil.Ptr("hello"), "public", true, nil, nil)
	assert.ErrorIs(t, err, apperror.ErrNotSignedIn)

	var count int64
	require.NoError(t, f.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePost_CoCreatorsBecomeInvites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.posts.CreatePost(ctx, "u1", testutil.Ptr("hello"), "public", true, nil, []string{"u2", "u2", "u1", "", "u3"})
	require.NoError(t, err)
	assert.Empty(t, post.CoCreators)

	for _, invitee := range []string{"u2", "u3"} {
		invites, err := f.invites.ListInvites(ctx, invitee)
		require.NoError(t, err)
		require.Len(t, invites, 1)
		assert.Equal(t, post.ID, invites[0].PostID)
		assert.Equal(t, "u1", invites[0].InviterID)
		assert.Equal(t, models.InviteInvited, invites[0].Status)
	}

	sent := f.notifier.of(queue.EventCollabInvite)
	require.Len(t, sent, 2)
	assert.Equal(t, "u2", sent[0].userID)
	assert.Equal(t, post.ID, sent[0].payload["post_id"])
}

func TestGetPost_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.createPost(t, "u1", "friends only", "friends")

	_, err := f.posts.GetPost(ctx, post.ID, "u2")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	testutil.Befriend(t, f.db, "u1", "u2")
	got, err := f.posts.GetPost(ctx, post.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, "friends only", *got.Body)

	private := f.createPost(t, "u1", "private", "private")
	_, err = f.posts.GetPost(ctx, private.ID, "u2")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	f.addCoCreator(t, private.ID, "u1", "u3")
	_, err = f.posts.GetPost(ctx, private.ID, "u3")
	assert.NoError(t, err)

	_, err = f.posts.GetPost(ctx, "missing", "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListByAuthor_IncludesCoCreatedAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	own := f.createPost(t, "u1", "mine", "public")
	hidden := f.createPost(t, "u1", "secret", "private")
	other := f.createPost(t, "u2", "theirs", "public")
	f.addCoCreator(t, other.ID, "u2", "u1")
	f.createPost(t, "u2", "unrelated", "public")

	posts, err := f.posts.ListByAuthor(ctx, "u1", "u1", 20, 0)
	require.NoError(t, err)
	ids := postIDs(posts)
	assert.ElementsMatch(t, []string{own.ID, hidden.ID, other.ID}, ids)

	posts, err = f.posts.ListByAuthor(ctx, "u1", "u9", 20, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{own.ID, other.ID}, postIDs(posts))
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.createPost(t, "u1", "draft", "public")
	f.addCoCreator(t, post.ID, "u1", "u2")

	updated, err := f.posts.UpdatePost(ctx, post.ID, "u2", entity.PostPatch{
		Body:       testutil.Ptr("final"),
		Privacy:    testutil.Ptr("friends"),
		AllowShare: testutil.Ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "final", *updated.Body)
	assert.Equal(t, models.PrivacyFriends, updated.Privacy)
	assert.False(t, updated.AllowShare)
	require.NotNil(t, updated.EditedAt)

	stored, err := f.posts.GetPost(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "final", *stored.Body)
	assert.False(t, stored.AllowShare)
	assert.NotNil(t, stored.EditedAt)
	assert.Equal(t, "u1", stored.OwnerID)
}

func TestUpdatePost_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.createPost(t, "u1", "text only", "public")

	_, err := f.posts.UpdatePost(ctx, post.ID, "u3", entity.PostPatch{Body: testutil.Ptr("hijack")})
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	_, err = f.posts.UpdatePost(ctx, post.ID, "u1", entity.PostPatch{Body: testutil.Ptr("")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.posts.UpdatePost(ctx, post.ID, "u1", entity.PostPatch{Privacy: testutil.Ptr("secret")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.posts.UpdatePost(ctx, post.ID, "u1", entity.PostPatch{})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.posts.UpdatePost(ctx, "missing", "u1", entity.PostPatch{Body: testutil.Ptr("x")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeletePost_OwnerOnlyWithoutCascade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post := f.createPost(t, "u1", "bye", "public")
	f.addCoCreator(t, post.ID, "u1", "u2")
	require.NoError(t, f.db.Create(&models.Comment{PostID: post.ID, AuthorID: "u3", Body: "nice"}).Error)
	require.NoError(t, f.db.Create(&models.Like{PostID: post.ID, UserID: "u3"}).Error)

	err := f.posts.DeletePost(ctx, post.ID, "u2")
	assert.ErrorIs(t, err, apperror.ErrNotAuthorized)

	require.NoError(t, f.posts.DeletePost(ctx, post.ID, "u1"))

	_, err = f.posts.GetPost(ctx, post.ID, "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	var comments, likes int64
	require.NoError(t, f.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)
	require.NoError(t, f.db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	assert.Equal(t, int64(1), comments)
	assert.Equal(t, int64(1), likes)

	err = f.posts.DeletePost(ctx, post.ID, "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func postIDs(posts []*entity.Post) []string {
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

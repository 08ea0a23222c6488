package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"cofeed/pkg/logger"
	"cofeed/pkg/relation"
	"cofeed/pkg/s3"
	"cofeed/pkg/testutil"
	"cofeed/services/post/internal/entity"
	"cofeed/services/post/internal/repo/persistent"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentNotification struct {
	userID    string
	eventType string
	payload   map[string]interface{}
}

type recordingEmitter struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (e *recordingEmitter) Notify(userID, eventType string, payload map[string]interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, sentNotification{userID: userID, eventType: eventType, payload: payload})
}

func (e *recordingEmitter) of(eventType string) []sentNotification {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []sentNotification
	for _, n := range e.sent {
		if n.eventType == eventType {
			out = append(out, n)
		}
	}
	return out
}

// memStore keeps objects in memory and refuses any body equal to "boom".
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) PutObject(_ context.Context, key string, body io.ReadSeeker, _ string) (s3.ObjectRef, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return s3.ObjectRef{}, err
	}
	if string(data) == "boom" {
		return s3.ObjectRef{}, errors.New("store unavailable")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return s3.ObjectRef{Key: key, URL: "http://media.test/" + key}, nil
}

func (s *memStore) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type readSeekNopCloser struct {
	*bytes.Reader
}

func (readSeekNopCloser) Close() error { return nil }

func upload(name, contentType, data string) entity.Upload {
	return entity.Upload{
		Filename:    name,
		ContentType: contentType,
		Open: func() (io.ReadSeekCloser, error) {
			return readSeekNopCloser{bytes.NewReader([]byte(data))}, nil
		},
	}
}

type fixture struct {
	db       *gorm.DB
	posts    PostUseCase
	invites  InviteUseCase
	media    MediaUseCase
	store    *memStore
	notifier *recordingEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	log := logger.Nop()
	graph := relation.NewGraph(db, nil, time.Minute, log)
	store := newMemStore()
	notifier := &recordingEmitter{}

	postRepo := persistent.NewPostRepository(db)
	mediaRepo := persistent.NewMediaRepository(db)
	inviteRepo := persistent.NewInviteRepository(db)

	return &fixture{
		db:       db,
		posts:    NewPostUseCase(postRepo, graph, notifier, log),
		invites:  NewInviteUseCase(postRepo, inviteRepo, notifier, log),
		media:    NewMediaUseCase(postRepo, mediaRepo, store, graph, 2, log),
		store:    store,
		notifier: notifier,
	}
}

func (f *fixture) createPost(t *testing.T, ownerID, body, privacy string) *entity.Post {
	t.Helper()
	post, err := f.posts.CreatePost(context.Background(), ownerID, testutil.Ptr(body), privacy, true, nil, nil)
	require.NoError(t, err)
	return post
}

// addCoCreator runs the full invite/accept exchange.
func (f *fixture) addCoCreator(t *testing.T, postID, inviterID, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.invites.Invite(ctx, postID, inviterID, userID)
	require.NoError(t, err)
	_, err = f.invites.Respond(ctx, postID, userID, true)
	require.NoError(t, err)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"cofeed/pkg/apperror"
	"cofeed/pkg/logger"
	"cofeed/pkg/models"
	"cofeed/pkg/relation"
	"cofeed/pkg/s3"
	"cofeed/services/post/internal/entity"
	"cofeed/services/post/internal/repo/persistent"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ObjectStore is the part of the media store the use cases need.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body io.ReadSeeker, contentType string) (s3.ObjectRef, error)
	DeleteObject(ctx context.Context, key string) error
}

type MediaUseCase interface {
	Upload(ctx context.Context, uploaderID string, files []entity.Upload) []entity.UploadResult
	Discard(ctx context.Context, results []entity.UploadResult)
	Attach(ctx context.Context, postID, uploaderID string, ref s3.ObjectRef, kind models.MediaKind) (*entity.Media, error)
	AttachUploads(ctx context.Context, postID, uploaderID string, files []entity.Upload) ([]entity.UploadResult, error)
	Remove(ctx context.Context, mediaID, callerID string) error
	ListMedia(ctx context.Context, postID, viewerID string) ([]entity.Media, error)
}

type mediaUseCase struct {
	postRepo    persistent.PostRepository
	mediaRepo   persistent.MediaRepository
	store       ObjectStore
	graph       relation.Graph
	concurrency int
	logger      *logger.Logger
}

func NewMediaUseCase(
	postRepo persistent.PostRepository,
	mediaRepo persistent.MediaRepository,
	store ObjectStore,
	graph relation.Graph,
	concurrency int,
	logger *logger.Logger,
) MediaUseCase {
	if concurrency < 1 {
		concurrency = 1
	}
	return &mediaUseCase{
		postRepo:    postRepo,
		mediaRepo:   mediaRepo,
		store:       store,
		graph:       graph,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Upload sends every file to the store with bounded parallelism. Items fail
// independently; the result slice matches files index for index.
func (uc *mediaUseCase) Upload(ctx context.Context, uploaderID string, files []entity.Upload) []entity.UploadResult {
	results := make([]entity.UploadResult, len(files))

	var g errgroup.Group
	g.SetLimit(uc.concurrency)
	for i, file := range files {
		g.Go(func() error {
			results[i] = uc.uploadOne(ctx, uploaderID, file)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (uc *mediaUseCase) uploadOne(ctx context.Context, uploaderID string, file entity.Upload) entity.UploadResult {
	result := entity.UploadResult{Filename: file.Filename}

	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(filepath.Ext(file.Filename))
	}
	kind, err := models.MediaKindFromContentType(contentType)
	if err != nil {
		return failed(result, err)
	}

	src, err := file.Open()
	if err != nil {
		return failed(result, apperror.Validation("cannot read %s: %v", file.Filename, err))
	}
	defer src.Close()

	key := fmt.Sprintf("posts/%s/%s%s", uploaderID, uuid.New().String(), filepath.Ext(file.Filename))
	ref, err := uc.store.PutObject(ctx, key, src, contentType)
	if err != nil {
		uc.logger.Error("[MEDIA] upload of %s failed: %v", file.Filename, err)
		return failed(result, apperror.Storage("put object", err))
	}

	result.Ref = ref
	result.Kind = kind
	return result
}

// Discard deletes stored objects of successful uploads that never got attached.
func (uc *mediaUseCase) Discard(ctx context.Context, results []entity.UploadResult) {
	for _, r := range results {
		if r.OK() && r.Ref.Key != "" {
			uc.deleteObject(ctx, r.Ref.Key)
		}
	}
}

func (uc *mediaUseCase) Attach(ctx context.Context, postID, uploaderID string, ref s3.ObjectRef, kind models.MediaKind) (*entity.Media, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthor(uploaderID) {
		return nil, apperror.NotAuthorized("only the owner or a co-creator can add media to post %s", postID)
	}
	return uc.attach(ctx, postID, uploaderID, ref, kind)
}

func (uc *mediaUseCase) attach(ctx context.Context, postID, uploaderID string, ref s3.ObjectRef, kind models.MediaKind) (*entity.Media, error) {
	kind, err := models.ParseMediaKind(string(kind))
	if err != nil {
		return nil, err
	}

	media := &entity.Media{
		PostID:     postID,
		URL:        ref.URL,
		ObjectKey:  ref.Key,
		Kind:       kind,
		UploaderID: uploaderID,
	}
	if err := uc.mediaRepo.Attach(ctx, media); err != nil {
		return nil, err
	}
	return media, nil
}

// AttachUploads checks authorship once, then uploads and attaches each file on
// its own. A failed item does not undo the ones before it.
func (uc *mediaUseCase) AttachUploads(ctx context.Context, postID, uploaderID string, files []entity.Upload) ([]entity.UploadResult, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthor(uploaderID) {
		return nil, apperror.NotAuthorized("only the owner or a co-creator can add media to post %s", postID)
	}
	if len(files) == 0 {
		return nil, apperror.Validation("no files to upload")
	}

	results := uc.Upload(ctx, uploaderID, files)
	for i := range results {
		if !results[i].OK() {
			continue
		}
		media, err := uc.attach(ctx, postID, uploaderID, results[i].Ref, results[i].Kind)
		if err != nil {
			uc.deleteObject(ctx, results[i].Ref.Key)
			results[i] = failed(entity.UploadResult{Filename: results[i].Filename}, err)
			continue
		}
		results[i].Media = media
	}
	return results, nil
}

// Remove lets the owner drop any item and a co-creator drop their own. The
// last item of a post without a body stays. The stored object is deleted
// best-effort after the row is gone.
func (uc *mediaUseCase) Remove(ctx context.Context, mediaID, callerID string) error {
	media, err := uc.mediaRepo.GetByID(ctx, mediaID)
	if err != nil {
		return err
	}

	post, err := uc.postRepo.GetByID(ctx, media.PostID)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	allowed := false
	switch {
	case post == nil:
		allowed = media.UploaderID == callerID
	case post.IsOwner(callerID):
		allowed = true
	case post.IsAuthor(callerID):
		allowed = media.UploaderID == callerID
	}
	if !allowed {
		return apperror.NotAuthorized("user %s cannot remove media %s", callerID, mediaID)
	}
	if post != nil && !post.HasBody() && len(post.Media) <= 1 {
		return apperror.Validation("a post needs a body or at least one media item")
	}

	if err := uc.mediaRepo.Delete(ctx, mediaID); err != nil {
		return err
	}
	uc.deleteObject(ctx, media.ObjectKey)
	return nil
}

func (uc *mediaUseCase) ListMedia(ctx context.Context, postID, viewerID string) ([]entity.Media, error) {
	post, err := uc.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	ok, err := canView(ctx, uc.graph, post, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.NotFound("post %s", postID)
	}
	return uc.mediaRepo.ListByPost(ctx, postID)
}

func (uc *mediaUseCase) deleteObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := uc.store.DeleteObject(ctx, key); err != nil {
		uc.logger.Warn("[MEDIA] failed to delete object %s: %v", key, err)
	}
}

func failed(result entity.UploadResult, err error) entity.UploadResult {
	result.Error = err.Error()
	result.Code = apperror.Code(err)
	result.Cause = err
	return result
}

package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/ports"
	"github.com/Jabramco/memebase/domain/config"
	"github.com/Jabramco/memebase/domain/core/entities"
	"github.com/Jabramco/memebase/pkg/errors"
	"github.com/Jabramco/memebase/pkg/observability"
	"github.com/Jabramco/memebase/pkg/utils"
)

// Upload modes reported to metrics
const (
	uploadModeSingle = "single"
	uploadModeBulk   = "bulk"
)

// ImageFile is an uploaded image with its client-side metadata
type ImageFile struct {
	Name        string
	Size        int64
	ContentType string
	Data        []byte
}

// UploadRequest carries a single meme upload
type UploadRequest struct {
	Title    string `validate:"required"`
	Keywords string
	File     ImageFile `validate:"-"`
}

// UploadResult describes where an uploaded meme ended up
type UploadResult struct {
	Meme         entities.Meme `json:"meme"`
	SavedLocally bool          `json:"savedLocally"`
}

// MemeService manages the meme catalog: uploads with local fallback, listing,
// search and deletion.
type MemeService struct {
	repo    ports.MemeRepository
	objects ports.ObjectStore
	local   *LocalMemeStore
	events  ports.EventPublisher
	cfg     *config.DomainConfig
	now     func() time.Time
	newID   func() string
	logger  *zap.Logger
	metrics *observability.Collector
	tracer  trace.Tracer
}

// NewMemeService creates a new meme service
func NewMemeService(
	repo ports.MemeRepository,
	objects ports.ObjectStore,
	local *LocalMemeStore,
	events ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
	metrics *observability.Collector,
	tracer trace.Tracer,
) *MemeService {
	return &MemeService{
		repo:    repo,
		objects: objects,
		local:   local,
		events:  events,
		cfg:     cfg,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
		logger:  logger,
		metrics: metrics,
		tracer:  tracerOrNoop(tracer),
	}
}

// ValidateFile checks that file is an image within the upload size limit
func (s *MemeService) ValidateFile(file ImageFile) error {
	if file.Name == "" || len(file.Data) == 0 {
		return errors.NewValidationError("an image file is required")
	}
	if !strings.HasPrefix(strings.ToLower(file.ContentType), s.cfg.ContentTypePrefix) {
		return errors.NewValidationError(fmt.Sprintf("%s is not an image", file.Name)).
			WithCode("INVALID_FILE_TYPE").
			WithDetails(map[string]interface{}{"fileName": file.Name, "contentType": file.ContentType})
	}
	if file.Size > s.cfg.MaxUploadBytes {
		return errors.NewValidationError(fmt.Sprintf("%s exceeds the %d MB limit", file.Name, s.cfg.MaxUploadBytes/(1024*1024))).
			WithCode("FILE_TOO_LARGE").
			WithDetails(map[string]interface{}{"fileName": file.Name, "size": file.Size, "maxBytes": s.cfg.MaxUploadBytes})
	}
	return nil
}

// Upload validates and stores a single meme. The remote attempt is bounded
// by the upload timeout; when it fails the meme is saved locally with the
// image embedded as a data URI and the result reports SavedLocally.
func (s *MemeService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	ctx, span := s.tracer.Start(ctx, "MemeService.Upload",
		trace.WithAttributes(
			attribute.String("file.name", req.File.Name),
			attribute.Int64("file.size", req.File.Size),
		),
	)
	defer span.End()

	if err := utils.ValidateStruct(req); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	title := strings.TrimSpace(req.Title)
	keywords := entities.ParseKeywords(req.Keywords)
	if title == "" || (s.cfg.RequireKeywords && len(keywords) == 0) {
		return nil, errors.NewValidationError("please provide a name, select an image, and add keywords")
	}
	if err := s.ValidateFile(req.File); err != nil {
		return nil, err
	}

	draft := s.draft(title, keywords, req.File)

	saved, err := s.storeRemote(ctx, draft, req.File)
	if err == nil {
		s.metrics.RecordUpload(uploadModeSingle, "remote")
		s.publish(ctx, ports.EventMemeCreated, map[string]interface{}{"memeId": saved.ID, "title": saved.Title})
		return &UploadResult{Meme: *saved}, nil
	}

	span.RecordError(err)
	span.SetAttributes(attribute.Bool("upload.saved_locally", true))
	s.logger.Warn("Remote upload failed, saving meme locally",
		zap.String("fileName", req.File.Name),
		zap.Error(err),
	)
	local, lerr := s.storeLocal(ctx, draft, req.File)
	if lerr != nil {
		spanError(span, lerr, "local save failed")
		s.metrics.RecordUpload(uploadModeSingle, "failed")
		return nil, errors.NewStorageError("save meme locally", lerr)
	}
	s.metrics.RecordUpload(uploadModeSingle, "local")
	return &UploadResult{Meme: local, SavedLocally: true}, nil
}

// List returns remote and locally saved memes merged, newest first. When the
// remote catalog cannot be read only local memes are returned.
func (s *MemeService) List(ctx context.Context) ([]entities.Meme, error) {
	local, err := s.local.List(ctx)
	if err != nil {
		return nil, errors.NewStorageError("list local memes", err)
	}

	remote, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Warn("Failed to list remote memes, showing local memes only", zap.Error(err))
		remote = nil
	}

	all := make([]entities.Meme, 0, len(remote)+len(local))
	all = append(all, remote...)
	all = append(all, local...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

// Search returns the memes whose title or keywords contain term
func (s *MemeService) Search(ctx context.Context, term string) ([]entities.Meme, error) {
	memes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return entities.FilterMemes(memes, term), nil
}

// Delete removes a meme. Local memes are dropped from the local list; remote
// memes are removed from the catalog and their image from object storage.
func (s *MemeService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.NewValidationError("meme id is required")
	}

	removed, err := s.local.Remove(ctx, id)
	if err != nil {
		return errors.NewStorageError("delete local meme", err)
	}
	if removed {
		s.publish(ctx, ports.EventMemeDeleted, map[string]interface{}{"memeId": id, "local": true})
		return nil
	}

	remote, err := s.repo.ListAll(ctx)
	if err != nil {
		return errors.NewStorageError("list memes", err)
	}
	var target *entities.Meme
	for i := range remote {
		if remote[i].ID == id {
			target = &remote[i]
			break
		}
	}
	if target == nil {
		return errors.NewNotFoundError("meme")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewStorageError("delete meme", err)
	}
	if target.ImageURL != "" && !target.IsLocal() {
		if err := s.objects.DeleteImage(ctx, target.ImageURL); err != nil {
			s.logger.Warn("Failed to delete meme image",
				zap.String("memeID", id),
				zap.String("imageUrl", target.ImageURL),
				zap.Error(err),
			)
		}
	}

	s.publish(ctx, ports.EventMemeDeleted, map[string]interface{}{"memeId": id, "local": false})
	return nil
}

func (s *MemeService) draft(title string, keywords []string, file ImageFile) entities.Meme {
	return entities.Meme{
		ID:        s.newID(),
		Title:     title,
		Keywords:  keywords,
		FileName:  file.Name,
		FileSize:  file.Size,
		CreatedAt: s.now().UTC(),
	}
}

// Remote attempt states. Whichever of the worker and the caller moves the
// attempt out of attemptOpen first decides the outcome.
const (
	attemptOpen int32 = iota
	attemptCommitted
	attemptAbandoned
)

// storeRemote uploads the image and inserts the meme into the catalog. The
// attempt is abandoned after the upload timeout even if the remote call does
// not honor cancellation. An abandoned attempt never leaves a catalog row or
// image behind, so the caller's local fallback is the only copy.
func (s *MemeService) storeRemote(ctx context.Context, draft entities.Meme, file ImageFile) (*entities.Meme, error) {
	ctx, span := s.tracer.Start(ctx, "MemeService.storeRemote",
		trace.WithAttributes(attribute.String("meme.id", draft.ID)),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.UploadTimeout)
	defer cancel()

	type outcome struct {
		meme *entities.Meme
		err  error
	}
	done := make(chan outcome, 1)
	var state atomic.Int32

	go func() {
		path := fmt.Sprintf("%s%s_%s", s.cfg.ImagePathPrefix, draft.ID, file.Name)
		url, err := s.objects.PutImage(ctx, file.Data, path, file.ContentType)
		if err != nil {
			done <- outcome{err: fmt.Errorf("upload image: %w", err)}
			return
		}
		if err := ctx.Err(); err != nil {
			s.discardImage(url)
			done <- outcome{err: fmt.Errorf("upload image: %w", err)}
			return
		}

		meme := draft
		meme.ImageURL = url
		saved, err := s.repo.Insert(ctx, &meme)
		if err != nil {
			s.discardImage(url)
			done <- outcome{err: fmt.Errorf("insert meme: %w", err)}
			return
		}
		if !state.CompareAndSwap(attemptOpen, attemptCommitted) {
			s.discardMeme(saved)
			done <- outcome{err: fmt.Errorf("insert meme: %w", context.DeadlineExceeded)}
			return
		}
		done <- outcome{meme: saved}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			spanError(span, out.err, "remote store failed")
		}
		return out.meme, out.err
	case <-ctx.Done():
		if !state.CompareAndSwap(attemptOpen, attemptAbandoned) {
			// The worker committed just before the deadline
			out := <-done
			return out.meme, out.err
		}
		err := ctx.Err()
		if err == context.DeadlineExceeded {
			err = errors.NewTimeoutError("image upload").WithCause(err)
		}
		spanError(span, err, "remote store abandoned")
		return nil, err
	}
}

// discardImage removes an uploaded image whose attempt was abandoned
func (s *MemeService) discardImage(url string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.UploadTimeout)
	defer cancel()
	if err := s.objects.DeleteImage(ctx, url); err != nil {
		s.logger.Warn("Failed to remove image of abandoned upload", zap.String("imageUrl", url), zap.Error(err))
	}
}

// discardMeme removes the catalog row and image of an abandoned attempt
func (s *MemeService) discardMeme(meme *entities.Meme) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.UploadTimeout)
	defer cancel()
	if err := s.repo.Delete(ctx, meme.ID); err != nil {
		s.logger.Error("Failed to remove catalog entry of abandoned upload", zap.String("memeID", meme.ID), zap.Error(err))
	}
	s.discardImage(meme.ImageURL)
}

// storeLocal saves the meme in the local list with the image embedded
func (s *MemeService) storeLocal(ctx context.Context, draft entities.Meme, file ImageFile) (entities.Meme, error) {
	meme := draft
	meme.ImageURL = dataURI(file)
	if err := s.local.Prepend(ctx, meme); err != nil {
		return entities.Meme{}, err
	}
	return meme, nil
}

func (s *MemeService) publish(ctx context.Context, eventType string, detail map[string]interface{}) {
	if s.events == nil {
		return
	}
	event := ports.Event{Type: eventType, Detail: detail, OccurredAt: s.now().UTC()}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}

func dataURI(file ImageFile) string {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(file.Data)
}

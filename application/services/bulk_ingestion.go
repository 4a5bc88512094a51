package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/ports"
	"github.com/Jabramco/memebase/domain/core/entities"
	domainservices "github.com/Jabramco/memebase/domain/services"
	"github.com/Jabramco/memebase/pkg/errors"
)

// UploadState tracks one bulk candidate through save-all
type UploadState string

const (
	StatePending      UploadState = "pending"
	StateUploading    UploadState = "uploading"
	StateSuccess      UploadState = "success"
	StateSavedLocally UploadState = "savedLocally"
	StateFailed       UploadState = "failed"
)

// Validation messages surfaced by save-all
const (
	msgAllDuplicates = "No valid images to upload (all are duplicates)"
	msgMissingTitles = "Please provide titles for all images"
)

// BulkCandidate is one file of a bulk import with its editable metadata
type BulkCandidate struct {
	File        ImageFile      `json:"-"`
	Title       string         `json:"title"`
	Keywords    string         `json:"keywords"`
	IsDuplicate bool           `json:"isDuplicate"`
	State       UploadState    `json:"state"`
	Meme        *entities.Meme `json:"meme,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Batch is a bulk import in progress. Duplicate flags are recomputed from
// scratch whenever files are added or removed. A Batch is not safe for
// concurrent use.
type Batch struct {
	items          []*BulkCandidate
	duplicateCount int
	suggester      domainservices.TitleSuggester
}

// Items returns the candidates in selection order
func (b *Batch) Items() []*BulkCandidate {
	return b.items
}

// Len returns the number of candidates
func (b *Batch) Len() int {
	return len(b.items)
}

// DuplicateCount returns the number of candidates flagged as duplicates
func (b *Batch) DuplicateCount() int {
	return b.duplicateCount
}

// Add appends files with suggested titles and empty keywords
func (b *Batch) Add(files ...ImageFile) {
	for _, f := range files {
		b.items = append(b.items, &BulkCandidate{
			File:  f,
			Title: b.suggester.SuggestTitle(f.Name),
			State: StatePending,
		})
	}
	b.refreshDuplicates()
}

// Remove drops the candidate at index
func (b *Batch) Remove(index int) error {
	if err := b.check(index); err != nil {
		return err
	}
	b.items = append(b.items[:index], b.items[index+1:]...)
	b.refreshDuplicates()
	return nil
}

// SetTitle replaces the title of the candidate at index
func (b *Batch) SetTitle(index int, title string) error {
	if err := b.check(index); err != nil {
		return err
	}
	b.items[index].Title = title
	return nil
}

// SetKeywords replaces the comma-separated keywords of the candidate at index
func (b *Batch) SetKeywords(index int, keywords string) error {
	if err := b.check(index); err != nil {
		return err
	}
	b.items[index].Keywords = keywords
	return nil
}

// SuggestTitle resets the title at index to the suggestion for its file name
func (b *Batch) SuggestTitle(index int) error {
	if err := b.check(index); err != nil {
		return err
	}
	b.items[index].Title = b.suggester.SuggestTitle(b.items[index].File.Name)
	return nil
}

// SuggestAll resets every title to its suggestion
func (b *Batch) SuggestAll() {
	for _, item := range b.items {
		item.Title = b.suggester.SuggestTitle(item.File.Name)
	}
}

func (b *Batch) check(index int) error {
	if index < 0 || index >= len(b.items) {
		return errors.NewValidationError(fmt.Sprintf("no bulk item at index %d", index))
	}
	return nil
}

func (b *Batch) refreshDuplicates() {
	prints := make([]domainservices.Fingerprint, len(b.items))
	for i, item := range b.items {
		prints[i] = domainservices.Fingerprint{Name: item.File.Name, Size: item.File.Size}
	}
	report := domainservices.DetectDuplicates(prints)
	for i, item := range b.items {
		item.IsDuplicate = report.Flags[i]
	}
	b.duplicateCount = report.Count
}

// BulkResult summarizes a save-all run
type BulkResult struct {
	Items        []*BulkCandidate `json:"items"`
	Saved        int              `json:"saved"`
	Uploaded     int              `json:"uploaded"`
	SavedLocally int              `json:"savedLocally"`
	Failed       int              `json:"failed"`
	Skipped      int              `json:"skipped"`
	Cancelled    int              `json:"cancelled"`
}

// ProgressFunc observes state transitions during save-all
type ProgressFunc func(index int, state UploadState)

// BulkIngestionService plans and runs bulk imports
type BulkIngestionService struct {
	memes     *MemeService
	suggester domainservices.TitleSuggester
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewBulkIngestionService creates a new bulk ingestion service
func NewBulkIngestionService(
	memes *MemeService,
	suggester domainservices.TitleSuggester,
	logger *zap.Logger,
	tracer trace.Tracer,
) *BulkIngestionService {
	return &BulkIngestionService{
		memes:     memes,
		suggester: suggester,
		logger:    logger,
		tracer:    tracerOrNoop(tracer),
	}
}

// NewBatch validates the selection and starts a batch. Every file must be an
// image within the size limit, otherwise the whole selection is rejected.
func (s *BulkIngestionService) NewBatch(files []ImageFile) (*Batch, error) {
	if len(files) == 0 {
		return nil, errors.NewValidationError("select at least one image")
	}
	for _, f := range files {
		if err := s.memes.ValidateFile(f); err != nil {
			return nil, err
		}
	}

	batch := &Batch{suggester: s.suggester}
	batch.Add(files...)
	return batch, nil
}

// SaveAll stores every non-duplicate candidate, one at a time.
//
// Validation happens before any upload: a batch with only duplicates or with
// any blank title is rejected as a whole. Each item gets one remote attempt
// bounded by the upload timeout and falls back to local storage on failure.
// Cancelling ctx stops new items from starting; the item in flight finishes.
func (s *BulkIngestionService) SaveAll(ctx context.Context, batch *Batch, progress ProgressFunc) (*BulkResult, error) {
	ctx, span := s.tracer.Start(ctx, "BulkIngestionService.SaveAll",
		trace.WithAttributes(attribute.Int("batch.size", batch.Len())),
	)
	defer span.End()

	indexes := make([]int, 0, batch.Len())
	for i, item := range batch.items {
		if !item.IsDuplicate {
			indexes = append(indexes, i)
		}
	}
	if len(indexes) == 0 {
		err := errors.NewValidationError(msgAllDuplicates)
		spanError(span, err, "batch rejected")
		return nil, err
	}
	for _, i := range indexes {
		if strings.TrimSpace(batch.items[i].Title) == "" {
			err := errors.NewValidationError(msgMissingTitles)
			spanError(span, err, "batch rejected")
			return nil, err
		}
	}

	if progress == nil {
		progress = func(int, UploadState) {}
	}
	result := &BulkResult{Items: batch.items, Skipped: batch.Len() - len(indexes)}

	for n, i := range indexes {
		if ctx.Err() != nil {
			result.Cancelled = len(indexes) - n
			s.logger.Info("Bulk save cancelled", zap.Int("remaining", result.Cancelled))
			break
		}
		s.saveItem(context.WithoutCancel(ctx), batch.items[i], i, progress)

		switch batch.items[i].State {
		case StateSuccess:
			result.Uploaded++
		case StateSavedLocally:
			result.SavedLocally++
		case StateFailed:
			result.Failed++
		}
	}
	result.Saved = result.Uploaded + result.SavedLocally
	span.SetAttributes(
		attribute.Int("batch.saved", result.Saved),
		attribute.Int("batch.saved_locally", result.SavedLocally),
		attribute.Int("batch.failed", result.Failed),
		attribute.Int("batch.cancelled", result.Cancelled),
	)

	s.logger.Info("Bulk save finished",
		zap.Int("saved", result.Saved),
		zap.Int("uploaded", result.Uploaded),
		zap.Int("savedLocally", result.SavedLocally),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
		zap.Int("cancelled", result.Cancelled),
	)
	s.memes.publish(context.WithoutCancel(ctx), ports.EventBulkCompleted, map[string]interface{}{
		"saved":        result.Saved,
		"savedLocally": result.SavedLocally,
		"failed":       result.Failed,
	})
	return result, nil
}

func (s *BulkIngestionService) saveItem(ctx context.Context, item *BulkCandidate, index int, progress ProgressFunc) {
	ctx, span := s.tracer.Start(ctx, "BulkIngestionService.saveItem",
		trace.WithAttributes(
			attribute.Int("item.index", index),
			attribute.String("file.name", item.File.Name),
		),
	)
	defer span.End()

	setState := func(state UploadState) {
		item.State = state
		span.SetAttributes(attribute.String("item.state", string(state)))
		progress(index, state)
	}
	setState(StateUploading)

	draft := s.memes.draft(strings.TrimSpace(item.Title), entities.ParseKeywords(item.Keywords), item.File)

	saved, err := s.memes.storeRemote(ctx, draft, item.File)
	if err == nil {
		item.Meme = saved
		s.memes.metrics.RecordUpload(uploadModeBulk, "remote")
		s.memes.publish(ctx, ports.EventMemeCreated, map[string]interface{}{"memeId": saved.ID, "title": saved.Title})
		setState(StateSuccess)
		return
	}

	span.RecordError(err)
	s.logger.Warn("Remote upload failed, saving bulk item locally",
		zap.String("fileName", item.File.Name),
		zap.Error(err),
	)
	local, lerr := s.memes.storeLocal(ctx, draft, item.File)
	if lerr != nil {
		item.Error = lerr.Error()
		spanError(span, lerr, "local save failed")
		s.memes.metrics.RecordUpload(uploadModeBulk, "failed")
		s.logger.Error("Failed to save bulk item locally",
			zap.String("fileName", item.File.Name),
			zap.Error(lerr),
		)
		setState(StateFailed)
		return
	}
	item.Meme = &local
	s.memes.metrics.RecordUpload(uploadModeBulk, "local")
	setState(StateSavedLocally)
}

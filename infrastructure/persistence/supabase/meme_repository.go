package supabase

import (
	"context"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/domain/core/entities"
	appErrors "github.com/Jabramco/memebase/pkg/errors"
)

// Querier opens a query on a table. *supabase.Client and *postgrest.Client
// both satisfy it.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

// memeRow is the table row for a catalog entry
type memeRow struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Keywords  []string  `json:"keywords"`
	ImageURL  string    `json:"image_url"`
	FileName  string    `json:"file_name"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

func fromEntity(m *entities.Meme) memeRow {
	return memeRow{
		ID:        m.ID,
		Title:     m.Title,
		Keywords:  m.Keywords,
		ImageURL:  m.ImageURL,
		FileName:  m.FileName,
		FileSize:  m.FileSize,
		CreatedAt: m.CreatedAt,
	}
}

func (r memeRow) toEntity() entities.Meme {
	return entities.Meme{
		ID:        r.ID,
		Title:     r.Title,
		Keywords:  r.Keywords,
		ImageURL:  r.ImageURL,
		FileName:  r.FileName,
		FileSize:  r.FileSize,
		CreatedAt: r.CreatedAt,
	}
}

// MemeRepository implements ports.MemeRepository on a PostgREST table
type MemeRepository struct {
	db     Querier
	table  string
	logger *zap.Logger
}

// NewMemeRepository creates a new MemeRepository
func NewMemeRepository(db Querier, table string, logger *zap.Logger) *MemeRepository {
	return &MemeRepository{
		db:     db,
		table:  table,
		logger: logger,
	}
}

// Insert adds a row and returns it as stored
func (r *MemeRepository) Insert(ctx context.Context, meme *entities.Meme) (*entities.Meme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []memeRow
	if _, err := r.db.From(r.table).
		Insert(fromEntity(meme), false, "", "representation", "").
		ExecuteTo(&rows); err != nil {
		r.logger.Error("Failed to insert meme", zap.String("title", meme.Title), zap.Error(err))
		return nil, appErrors.NewExternalError("supabase", err)
	}
	if len(rows) == 0 {
		return nil, appErrors.NewInternalError("insert returned no rows")
	}

	saved := rows[0].toEntity()
	return &saved, nil
}

// ListAll selects every row ordered by created_at descending
func (r *MemeRepository) ListAll(ctx context.Context) ([]entities.Meme, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []memeRow
	if _, err := r.db.From(r.table).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows); err != nil {
		return nil, appErrors.NewExternalError("supabase", err)
	}

	memes := make([]entities.Meme, 0, len(rows))
	for _, row := range rows {
		memes = append(memes, row.toEntity())
	}
	return memes, nil
}

// Delete removes the row with id
func (r *MemeRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, _, err := r.db.From(r.table).
		Delete("minimal", "").
		Eq("id", id).
		Execute(); err != nil {
		return appErrors.NewExternalError("supabase", err)
	}
	return nil
}

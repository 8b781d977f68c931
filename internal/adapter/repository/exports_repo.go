package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"resume-builder/internal/domain"
)

// ExportsRepo persists export attempts in the export_jobs table. A repo
// without a pool is a no-op so the service runs without a database.
type ExportsRepo struct {
	pool *pgxpool.Pool
}

func NewExportsRepo(pool *pgxpool.Pool) *ExportsRepo {
	return &ExportsRepo{pool: pool}
}

func (r *ExportsRepo) Save(ctx context.Context, j *domain.ExportJob) error {
	if r == nil || r.pool == nil {
		return nil
	}
	metaB, err := encodeMetadata(j.Metadata)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO export_jobs (id, document_id, backend, template_id, filename, status, error, size_bytes, cache_hit, metadata, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, error = EXCLUDED.error, size_bytes = EXCLUDED.size_bytes, cache_hit = EXCLUDED.cache_hit, metadata = EXCLUDED.metadata, updated_at = EXCLUDED.updated_at`,
		j.ID, j.DocumentID, j.Backend, j.TemplateID, j.Filename, j.Status, j.Error, j.SizeBytes, j.CacheHit, metaB, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("exports_repo: upsert %s: %w", j.ID, err)
	}
	return nil
}

// Get loads one export record.
func (r *ExportsRepo) Get(ctx context.Context, id uuid.UUID) (*domain.ExportJob, error) {
	if r == nil || r.pool == nil {
		return nil, ErrNoDatabase
	}
	return getJob(r.pool.QueryRow(ctx, `SELECT `+exportColumns+` FROM export_jobs WHERE id = $1`, id))
}

// ListByDocument returns the most recent exports of a document, newest first.
func (r *ExportsRepo) ListByDocument(ctx context.Context, documentID string, limit int) ([]domain.ExportJob, error) {
	if r == nil || r.pool == nil {
		return nil, ErrNoDatabase
	}
	rows, err := r.pool.Query(ctx, `SELECT `+exportColumns+` FROM export_jobs WHERE document_id = $1 ORDER BY created_at DESC LIMIT $2`, documentID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("exports_repo: list %s: %w", documentID, err)
	}
	defer rows.Close()

	var out []domain.ExportJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// List limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return DefaultListLimit
	}
	return limit
}

func encodeMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("exports_repo: marshal metadata: %w", err)
	}
	return b, nil
}

const exportColumns = `id, document_id, backend, template_id, filename, status, error, size_bytes, cache_hit, metadata, created_at, updated_at`

func getJob(row pgx.Row) (*domain.ExportJob, error) {
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return j, err
}

func scanJob(row pgx.Row) (*domain.ExportJob, error) {
	var (
		j     domain.ExportJob
		metaB []byte
	)
	err := row.Scan(&j.ID, &j.DocumentID, &j.Backend, &j.TemplateID, &j.Filename, &j.Status, &j.Error,
		&j.SizeBytes, &j.CacheHit, &metaB, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(metaB) > 0 {
		if err := json.Unmarshal(metaB, &j.Metadata); err != nil {
			return nil, fmt.Errorf("exports_repo: metadata of %s: %w", j.ID, err)
		}
	}
	return &j, nil
}

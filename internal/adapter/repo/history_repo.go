// Package repo contains the persistence adapters.
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
)

// HistoryRepository persists completed generations in the generations table.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a repository backed by the given database.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// createdAtFormat is fixed-width so lexicographic comparison in SQL equals
// chronological comparison. RFC3339Nano would trim trailing zeros and break
// that equivalence.
const createdAtFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SaveGeneration inserts one history row and returns its new ID.
func (r *HistoryRepository) SaveGeneration(ctx context.Context, input domain.SaveGenerationInput) (string, error) {
	id := uuid.NewString()

	var metadata any
	if len(input.Metadata) > 0 {
		b, err := json.Marshal(input.Metadata)
		if err != nil {
			return "", fmt.Errorf("history: encode metadata: %w", err)
		}
		metadata = string(b)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO generations (
  id, type, prompt, source_file_path, media_file_path,
  media_type, status, error_message, metadata, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
		id,
		string(input.Kind),
		input.Prompt,
		nullableString(input.SourceFilePath),
		input.MediaFilePath,
		input.MediaType,
		string(input.Status),
		nullableString(input.ErrorMessage),
		metadata,
		time.Now().UTC().Format(createdAtFormat),
	)
	if err != nil {
		return "", fmt.Errorf("history: insert generation: %w", err)
	}
	return id, nil
}

// GetHistory returns up to limit records, most recent first.
func (r *HistoryRepository) GetHistory(ctx context.Context, limit, offset int) ([]domain.HistoryRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, type, prompt, source_file_path, media_file_path, media_type, status, error_message, metadata, created_at
FROM generations
ORDER BY created_at DESC
LIMIT ? OFFSET ?;
`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("history: list generations: %w", err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetByID fetches a single record, or domain.ErrNotFound.
func (r *HistoryRepository) GetByID(ctx context.Context, id string) (*domain.HistoryRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, type, prompt, source_file_path, media_file_path, media_type, status, error_message, metadata, created_at
FROM generations
WHERE id = ?;
`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// DeleteByID removes a record and reports whether a row was deleted.
func (r *HistoryRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM generations WHERE id = ?;`, id)
	if err != nil {
		return false, fmt.Errorf("history: delete generation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the total number of history rows.
func (r *HistoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM generations;`).Scan(&count); err != nil {
		return 0, fmt.Errorf("history: count generations: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes records created before the retention window and
// returns how many were dropped.
func (r *HistoryRepository) DeleteOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-age).Format(createdAtFormat)
	res, err := r.db.ExecContext(ctx, `DELETE FROM generations WHERE created_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("history: delete old generations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (domain.HistoryRecord, error) {
	var (
		record     domain.HistoryRecord
		kind       string
		status     string
		sourcePath sql.NullString
		mediaPath  string
		errMsg     sql.NullString
		metadata   sql.NullString
		createdAt  string
	)
	if err := row.Scan(&record.ID, &kind, &record.Prompt, &sourcePath, &mediaPath,
		&record.MediaType, &status, &errMsg, &metadata, &createdAt); err != nil {
		return domain.HistoryRecord{}, err
	}
	record.Kind = domain.GenerationKind(kind)
	record.Status = domain.GenerationStatus(status)
	record.MediaURL = mediaURL(mediaPath)
	if sourcePath.Valid && sourcePath.String != "" {
		record.SourceFileURL = mediaURL(sourcePath.String)
	}
	if errMsg.Valid {
		record.ErrorMessage = errMsg.String
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &record.Metadata); err != nil {
			return domain.HistoryRecord{}, fmt.Errorf("history: decode metadata: %w", err)
		}
	}
	if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		record.CreatedAt = ts
	}
	return record, nil
}

// mediaURL maps a stored file path to its servable URL path.
func mediaURL(filePath string) string {
	base := path.Base(strings.ReplaceAll(filePath, "\\", "/"))
	return "/api/media/" + base
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

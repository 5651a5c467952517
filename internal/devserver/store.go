package devserver

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"courseplay/internal/platform/apiclient"
	"courseplay/internal/platform/sqlitedb"
	"courseplay/internal/platform/tx"
)

// Store keeps per-viewer progress and acknowledged sections.
type Store struct {
	db *sqlx.DB
}

type progressRow struct {
	ViewerID     string  `db:"viewer_id"`
	VideoID      string  `db:"video_id"`
	Completed    bool    `db:"completed"`
	LastPosition float64 `db:"last_position"`
	Percentage   float64 `db:"percentage"`
	UpdatedAt    string  `db:"updated_at"`
}

func NewStore(ctx context.Context, db *sqlx.DB) (*Store, error) {
	err := sqlitedb.InitSchema(ctx, db,
		`CREATE TABLE IF NOT EXISTS viewer_progress (
viewer_id TEXT NOT NULL,
video_id TEXT NOT NULL,
completed BOOLEAN NOT NULL DEFAULT 0,
last_position REAL NOT NULL DEFAULT 0,
percentage REAL NOT NULL DEFAULT 0,
updated_at TEXT NOT NULL,
PRIMARY KEY (viewer_id, video_id));`,
		`CREATE TABLE IF NOT EXISTS viewer_sections_seen (
viewer_id TEXT NOT NULL,
section_id TEXT NOT NULL,
seen_at TEXT NOT NULL,
PRIMARY KEY (viewer_id, section_id));`,
	)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Progress(ctx context.Context, viewerID string) (map[string]apiclient.ProgressDoc, error) {
	var rows []progressRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT viewer_id, video_id, completed, last_position, percentage, updated_at
FROM viewer_progress WHERE viewer_id = ?`, viewerID); err != nil {
		return nil, err
	}
	out := make(map[string]apiclient.ProgressDoc, len(rows))
	for _, row := range rows {
		out[row.VideoID] = apiclient.ProgressDoc{Completed: row.Completed, LastPosition: row.LastPosition, Percentage: row.Percentage}
	}
	return out, nil
}

// SaveProgress applies an update. Completion sticks unless the update sets it
// explicitly.
func (s *Store) SaveProgress(ctx context.Context, viewerID, videoID string, update apiclient.ProgressUpdateDoc, now time.Time) (apiclient.ProgressDoc, error) {
	var saved apiclient.ProgressDoc
	err := tx.Within(ctx, s.db, func(txn *sqlx.Tx) error {
		row := progressRow{}
		err := txn.GetContext(ctx, &row,
			`SELECT viewer_id, video_id, completed, last_position, percentage, updated_at
FROM viewer_progress WHERE viewer_id = ? AND video_id = ?`, viewerID, videoID)
		if err != nil && !isNoRows(err) {
			return err
		}
		row.ViewerID = viewerID
		row.VideoID = videoID
		row.LastPosition = update.LastPosition
		row.Percentage = update.Percentage
		row.UpdatedAt = now.UTC().Format(time.RFC3339Nano)
		if update.Completed != nil {
			row.Completed = *update.Completed
		}
		if _, err := txn.NamedExecContext(ctx, `INSERT INTO viewer_progress
(viewer_id, video_id, completed, last_position, percentage, updated_at)
VALUES (:viewer_id, :video_id, :completed, :last_position, :percentage, :updated_at)
ON CONFLICT(viewer_id, video_id) DO UPDATE SET
completed = excluded.completed,
last_position = excluded.last_position,
percentage = excluded.percentage,
updated_at = excluded.updated_at`, row); err != nil {
			return err
		}
		saved = apiclient.ProgressDoc{Completed: row.Completed, LastPosition: row.LastPosition, Percentage: row.Percentage}
		return nil
	})
	return saved, err
}

func (s *Store) SeenSections(ctx context.Context, viewerID string) (map[string]bool, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids,
		`SELECT section_id FROM viewer_sections_seen WHERE viewer_id = ?`, viewerID); err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *Store) MarkSeen(ctx context.Context, viewerID, sectionID string, now time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO viewer_sections_seen (viewer_id, section_id, seen_at) VALUES (?, ?, ?)`,
		viewerID, sectionID, now.UTC().Format(time.RFC3339Nano))
	return err
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

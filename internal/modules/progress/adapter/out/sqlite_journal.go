package out

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"courseplay/internal/modules/progress/domain"
	progressout "courseplay/internal/modules/progress/port/out"
	"courseplay/internal/platform/sqlitedb"
)

var journalSchema = []string{
	`CREATE TABLE IF NOT EXISTS progress_journal (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  target_id TEXT NOT NULL,
  last_position REAL NOT NULL,
  percentage REAL NOT NULL,
  completed INTEGER NOT NULL,
  outcome TEXT NOT NULL,
  error TEXT NOT NULL,
  created_at TEXT NOT NULL
);`,
	`CREATE INDEX IF NOT EXISTS progress_journal_created_idx ON progress_journal (created_at);`,
}

type SQLiteJournal struct {
	db *sqlx.DB
}

type journalRow struct {
	ID           string  `db:"id"`
	Kind         string  `db:"kind"`
	TargetID     string  `db:"target_id"`
	LastPosition float64 `db:"last_position"`
	Percentage   float64 `db:"percentage"`
	Completed    bool    `db:"completed"`
	Outcome      string  `db:"outcome"`
	Error        string  `db:"error"`
	CreatedAt    string  `db:"created_at"`
}

func NewSQLiteJournal(ctx context.Context, db *sqlx.DB) (progressout.Journal, error) {
	if err := sqlitedb.InitSchema(ctx, db, journalSchema...); err != nil {
		return nil, fmt.Errorf("progress journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) Append(ctx context.Context, entry domain.JournalEntry) error {
	const stmt = `
INSERT INTO progress_journal (id, kind, target_id, last_position, percentage, completed, outcome, error, created_at)
VALUES (:id, :kind, :target_id, :last_position, :percentage, :completed, :outcome, :error, :created_at);`
	row := journalRow{
		ID:           entry.ID,
		Kind:         entry.Kind,
		TargetID:     entry.TargetID,
		LastPosition: entry.Update.LastPosition,
		Percentage:   entry.Update.Percentage,
		Completed:    entry.Update.Completed,
		Outcome:      string(entry.Outcome),
		Error:        entry.Error,
		CreatedAt:    entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if _, err := j.db.NamedExecContext(ctx, stmt, row); err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first, by insertion order.
func (j *SQLiteJournal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	rows := []journalRow{}
	const query = `
SELECT id, kind, target_id, last_position, percentage, completed, outcome, error, created_at
FROM progress_journal
ORDER BY rowid DESC
LIMIT ?`
	if err := j.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("select journal: %w", err)
	}
	out := make([]domain.JournalEntry, 0, len(rows))
	for _, row := range rows {
		createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse journal time: %w", err)
		}
		out = append(out, domain.JournalEntry{
			ID:       row.ID,
			Kind:     row.Kind,
			TargetID: row.TargetID,
			Update: domain.Update{
				VideoID:      videoIDOf(row),
				LastPosition: row.LastPosition,
				Percentage:   row.Percentage,
				Completed:    row.Completed,
			},
			Outcome:   domain.Outcome(row.Outcome),
			Error:     row.Error,
			CreatedAt: createdAt,
		})
	}
	return out, nil
}

func videoIDOf(row journalRow) string {
	if row.Kind == domain.KindProgress {
		return row.TargetID
	}
	return ""
}

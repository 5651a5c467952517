package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"courseplay/internal/modules/course/domain"
	courseout "courseplay/internal/modules/course/port/out"
	"courseplay/internal/platform/apiclient"
	apperrors "courseplay/internal/platform/errors"
	"courseplay/internal/platform/sqlitedb"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS course_snapshots (
  course_id TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  fetched_at TEXT NOT NULL
);`

type SQLiteSnapshotStore struct {
	db *sqlx.DB
}

type snapshotRow struct {
	CourseID  string `db:"course_id"`
	Payload   string `db:"payload"`
	FetchedAt string `db:"fetched_at"`
}

func NewSQLiteSnapshotStore(ctx context.Context, db *sqlx.DB) (courseout.SnapshotStore, error) {
	if err := sqlitedb.InitSchema(ctx, db, snapshotSchema); err != nil {
		return nil, fmt.Errorf("course snapshot schema: %w", err)
	}
	return &SQLiteSnapshotStore{db: db}, nil
}

func (s *SQLiteSnapshotStore) Save(ctx context.Context, course domain.Course, fetchedAt time.Time) error {
	payload, err := json.Marshal(toCourseDoc(course))
	if err != nil {
		return fmt.Errorf("marshal course snapshot: %w", err)
	}
	const stmt = `
INSERT INTO course_snapshots (course_id, payload, fetched_at)
VALUES (:course_id, :payload, :fetched_at)
ON CONFLICT(course_id) DO UPDATE SET
  payload=excluded.payload,
  fetched_at=excluded.fetched_at;`
	row := snapshotRow{
		CourseID:  course.ID,
		Payload:   string(payload),
		FetchedAt: fetchedAt.UTC().Format(time.RFC3339Nano),
	}
	if _, err := s.db.NamedExecContext(ctx, stmt, row); err != nil {
		return fmt.Errorf("upsert course snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotStore) Load(ctx context.Context, courseID string) (domain.Course, time.Time, error) {
	row := snapshotRow{}
	err := s.db.GetContext(ctx, &row, `SELECT course_id, payload, fetched_at FROM course_snapshots WHERE course_id = ?`, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Course{}, time.Time{}, apperrors.ErrNotFound
		}
		return domain.Course{}, time.Time{}, fmt.Errorf("select course snapshot: %w", err)
	}
	doc := apiclient.CourseDoc{}
	if err := json.Unmarshal([]byte(row.Payload), &doc); err != nil {
		return domain.Course{}, time.Time{}, fmt.Errorf("decode course snapshot: %w", err)
	}
	fetchedAt, err := time.Parse(time.RFC3339Nano, row.FetchedAt)
	if err != nil {
		return domain.Course{}, time.Time{}, fmt.Errorf("parse snapshot time: %w", err)
	}
	return fromCourseDoc(doc), fetchedAt, nil
}

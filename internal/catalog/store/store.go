// Package store keeps the course catalog in PostgreSQL. The table preserves
// load order so an engine built from it ranks ties the same way as one built
// from the original corpus.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/postgres"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS courses (
    id          TEXT PRIMARY KEY,
    position    INTEGER NOT NULL UNIQUE,
    title       TEXT NOT NULL,
    category    TEXT NOT NULL,
    instructor  TEXT NOT NULL,
    duration    TEXT NOT NULL,
    thumbnail   TEXT NOT NULL DEFAULT '',
    view_count  TEXT NOT NULL DEFAULT ''
);`

var columns = []string{
	"id", "position", "title", "category", "instructor", "duration", "thumbnail", "view_count",
}

type CourseStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

func New(db *postgres.Client) *CourseStore {
	return &CourseStore{
		db:     db,
		logger: slog.Default().With("component", "course-store"),
	}
}

// EnsureSchema creates the courses table if it does not exist.
func (s *CourseStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating courses schema: %w", err)
	}
	return nil
}

// List returns every course in load order.
func (s *CourseStore) List(ctx context.Context) ([]catalog.Course, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, title, category, instructor, duration, thumbnail, view_count
		 FROM courses ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	courses := []catalog.Course{}
	for rows.Next() {
		var c catalog.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Category, &c.Instructor, &c.Duration, &c.Thumbnail, &c.ViewCount); err != nil {
			return nil, fmt.Errorf("scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}
	return courses, nil
}

func (s *CourseStore) Get(ctx context.Context, id string) (catalog.Course, error) {
	var c catalog.Course
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, title, category, instructor, duration, thumbnail, view_count
		 FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Category, &c.Instructor, &c.Duration, &c.Thumbnail, &c.ViewCount)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Course{}, pkgerrors.Newf(pkgerrors.ErrCourseNotFound, 404, "no course with id %q", id)
	}
	if err != nil {
		return catalog.Course{}, fmt.Errorf("loading course %q: %w", id, err)
	}
	return c, nil
}

func (s *CourseStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting courses: %w", err)
	}
	return n, nil
}

// ReplaceAll swaps the stored catalog for courses in one transaction. The
// corpus is validated first so a bad file never empties the table.
func (s *CourseStore) ReplaceAll(ctx context.Context, courses []catalog.Course) error {
	if err := catalog.ValidateCorpus(courses); err != nil {
		return fmt.Errorf("validating corpus: %w", err)
	}
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM courses`); err != nil {
			return fmt.Errorf("clearing courses: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("courses", columns...))
		if err != nil {
			return fmt.Errorf("preparing copy: %w", err)
		}
		for i, c := range courses {
			if _, err := stmt.ExecContext(ctx, c.ID, i, c.Title, c.Category, c.Instructor, c.Duration, c.Thumbnail, c.ViewCount); err != nil {
				stmt.Close()
				return fmt.Errorf("copying course %q: %w", c.ID, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			stmt.Close()
			return fmt.Errorf("flushing copy: %w", err)
		}
		return stmt.Close()
	})
	if err != nil {
		return err
	}
	s.logger.Info("catalog replaced", "courses", len(courses))
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/resilience"
)

// Load reads the corpus from the configured source. File and database reads
// are retried with backoff; invalid corpora fail immediately.
func Load(ctx context.Context, cfg *config.Config) ([]catalog.Course, error) {
	logger := slog.Default().With("component", "catalog-loader", "source", cfg.Catalog.Source)
	retryCfg := resilience.RetryConfig{
		MaxAttempts:  cfg.Catalog.LoadAttempts,
		InitialDelay: cfg.Catalog.LoadBackoff,
	}

	var (
		courses []catalog.Course
		err     error
	)
	switch cfg.Catalog.Source {
	case config.SourceSample:
		courses = catalog.SampleCourses()
	case config.SourceFile:
		courses, err = resilience.RetryValue(ctx, "load catalog file", retryCfg, func(context.Context) ([]catalog.Course, error) {
			return loadFile(cfg.Catalog.Path)
		})
		if err != nil {
			return nil, fmt.Errorf("loading catalog from %s: %w", cfg.Catalog.Path, err)
		}
	case config.SourcePostgres:
		courses, err = resilience.RetryValue(ctx, "load catalog table", retryCfg, func(ctx context.Context) ([]catalog.Course, error) {
			return loadTable(ctx, cfg.Postgres)
		})
		if err != nil {
			return nil, fmt.Errorf("loading catalog from postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	logger.Info("catalog loaded", "courses", len(courses))
	return courses, nil
}

func loadFile(path string) ([]catalog.Course, error) {
	courses, err := catalog.LoadFile(path)
	if err == nil {
		err = catalog.ValidateCorpus(courses)
	}
	if isInvalid(err) {
		return nil, resilience.Permanent(err)
	}
	return courses, err
}

func loadTable(ctx context.Context, pgCfg config.PostgresConfig) ([]catalog.Course, error) {
	db, err := postgres.New(pgCfg)
	if err == nil {
		defer db.Close()
		var courses []catalog.Course
		if courses, err = New(db).List(ctx); err == nil {
			return courses, nil
		}
	}
	if !postgres.IsTransient(err) {
		return nil, resilience.Permanent(err)
	}
	return nil, err
}

func isInvalid(err error) bool {
	return errors.Is(err, pkgerrors.ErrInvalidInput) ||
		errors.Is(err, pkgerrors.ErrDuplicateDocumentID) ||
		errors.Is(err, pkgerrors.ErrMalformedDuration)
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/config"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadConfig(source, path string) *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{
			Source:       source,
			Path:         path,
			LoadAttempts: 2,
			LoadBackoff:  time.Millisecond,
		},
	}
}

func TestLoadSample(t *testing.T) {
	courses, err := Load(context.Background(), loadConfig(config.SourceSample, ""))
	require.NoError(t, err)
	assert.Len(t, courses, catalog.SampleSize)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"c1","title":"Curso Básico de Excel","category":"Ofimática","instructor":"Ana López","duration":"1:15"}
	]`), 0o644))

	courses, err := Load(context.Background(), loadConfig(config.SourceFile, path))
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "c1", courses[0].ID)
}

func TestLoadFileDuplicateIsNotRetried(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- {id: c1, title: A, category: X, instructor: Y, duration: "1:00"}
- {id: c1, title: B, category: X, instructor: Y, duration: "2:00"}
`), 0o644))

	_, err := Load(context.Background(), loadConfig(config.SourceFile, path))
	assert.ErrorIs(t, err, pkgerrors.ErrDuplicateDocumentID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), loadConfig(config.SourceFile, filepath.Join(t.TempDir(), "nope.json")))
	assert.Error(t, err)
}

func TestLoadUnknownSource(t *testing.T) {
	_, err := Load(context.Background(), loadConfig("s3", ""))
	assert.Error(t, err)
}

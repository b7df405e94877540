package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltersCanonicalIgnoresOrderAndRepeats(t *testing.T) {
	a := Filters{Categories: []string{"justicia", "sanidad", "justicia"}, Levels: []string{"beginner"}}
	b := Filters{Categories: []string{"sanidad", "justicia"}, Levels: []string{"beginner"}}
	assert.Equal(t, a.Canonical(), b.Canonical())

	c := Filters{Durations: []string{"beginner"}}
	assert.NotEqual(t, b.Canonical(), c.Canonical())
}

func TestFiltersNormalized(t *testing.T) {
	f := Filters{Categories: []string{"sanidad", "justicia", "sanidad"}, Levels: []string{}}
	n := f.Normalized()
	assert.Equal(t, []string{"justicia", "sanidad"}, n.Categories)
	assert.Nil(t, n.Durations)
	assert.Nil(t, n.Levels)
	assert.Equal(t, []string{"sanidad", "justicia", "sanidad"}, f.Categories)
}

func TestFiltersActiveAndClear(t *testing.T) {
	f := Filters{Durations: []string{"short"}}
	assert.True(t, f.Active())
	assert.False(t, f.Clear().Active())
	assert.False(t, Filters{}.Active())
}

func TestSampleCourses(t *testing.T) {
	courses := SampleCourses()
	require.Len(t, courses, SampleSize)
	require.NoError(t, ValidateCorpus(courses))

	first := courses[0]
	assert.Equal(t, "course_1", first.ID)
	assert.Equal(t, "Derecho Constitucional para TAI (Edición 1)", first.Title)
	assert.Equal(t, "Administración General del Estado", first.Category)
	assert.Equal(t, "María García", first.Instructor)
	assert.Equal(t, "3:45", first.Duration)
	assert.Equal(t, "1.2K", first.ViewCount)
	assert.Equal(t, "https://picsum.photos/id/101/320/180", first.Thumbnail)

	last := courses[SampleSize-1]
	assert.Equal(t, "course_100", last.ID)
	assert.Equal(t, "Pruebas Físicas Policía Local (Edición 5)", last.Title)
	assert.Equal(t, "https://picsum.photos/id/100/320/180", last.Thumbnail)

	for _, c := range courses {
		require.NoError(t, ValidateCourse(c))
	}
}

func TestValidateCorpusDuplicate(t *testing.T) {
	courses := []Course{{ID: "a"}, {ID: "b"}, {ID: "a"}}
	err := ValidateCorpus(courses)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateDocumentID))
}

func TestValidateCourse(t *testing.T) {
	err := ValidateCourse(Course{ID: "x"})
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "duration")
	assert.NotContains(t, verr.Fields, "id")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestValidationErrorMessageIsStable(t *testing.T) {
	err := &ValidationError{CourseID: "x", Fields: map[string]string{
		"title":    "title is required",
		"duration": "duration is required",
		"category": "category is required",
	}}
	want := `course "x": category:category is required; duration:duration is required; title:title is required`
	for i := 0; i < 20; i++ {
		require.Equal(t, want, err.Error())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "courses.yaml")
	yamlData := `
- id: d1
  title: Programación Avanzada
  category: Informática
  instructor: Ana López
  duration: "5:00"
  viewCount: "1K"
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlData), 0o644))
	courses, err := LoadFile(yamlPath)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Programación Avanzada", courses[0].Title)
	assert.Equal(t, "1K", courses[0].ViewCount)

	jsonPath := filepath.Join(dir, "courses.json")
	jsonData := `[{"id":"d2","title":"Curso Básico de Excel","category":"Ofimática","instructor":"Ana López","duration":"1:15"}]`
	require.NoError(t, os.WriteFile(jsonPath, []byte(jsonData), 0o644))
	courses, err = LoadFile(jsonPath)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Ofimática", courses[0].Category)

	_, err = LoadFile(filepath.Join(dir, "courses.csv"))
	assert.Error(t, err)

	_, err = Decode([]byte(`[{"id":"d3"}]`), ".json")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

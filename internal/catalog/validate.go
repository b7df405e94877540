package catalog

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/Course-Catalog-Search/pkg/errors"
)

const maxTitleLength = 1024

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	CourseID string
	Fields   map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s:%s", field, e.Fields[field]))
	}
	return fmt.Sprintf("course %q: %s", e.CourseID, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// ValidateCourse checks the fields a loader must supply for a course to be
// usable by the engine.
func ValidateCourse(c Course) error {
	errs := make(map[string]string)
	if strings.TrimSpace(c.ID) == "" {
		errs["id"] = "id is required"
	}
	title := strings.TrimSpace(c.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if strings.TrimSpace(c.Duration) == "" {
		errs["duration"] = "duration is required"
	}
	if len(errs) > 0 {
		return &ValidationError{CourseID: c.ID, Fields: errs}
	}
	return nil
}

// ValidateCorpus rejects a corpus in which two courses share an id.
func ValidateCorpus(courses []Course) error {
	seen := make(map[string]int, len(courses))
	for i, c := range courses {
		if first, dup := seen[c.ID]; dup {
			return apperrors.DuplicateID(c.ID, first, i)
		}
		seen[c.ID] = i
	}
	return nil
}

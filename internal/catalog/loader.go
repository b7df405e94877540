package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a corpus from a JSON or YAML file holding an array of
// courses. Each course is validated; duplicate ids are left to the engine.
func LoadFile(path string) ([]Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}
	courses, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing catalog file %s: %w", path, err)
	}
	return courses, nil
}

// Decode parses a course array. ext selects the format (".json", ".yaml"
// or ".yml").
func Decode(data []byte, ext string) ([]Course, error) {
	var courses []Course
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &courses); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &courses); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", ext)
	}
	for _, c := range courses {
		if err := ValidateCourse(c); err != nil {
			return nil, err
		}
	}
	return courses, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"dial failure", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{"canceled", fmt.Errorf("listing courses: %w", context.Canceled), false},
		{"connection failure", &pq.Error{Code: "08006"}, true},
		{"serialization failure", &pq.Error{Code: "40001"}, true},
		{"too many connections", &pq.Error{Code: "53300"}, true},
		{"admin shutdown", &pq.Error{Code: "57P01"}, true},
		{"undefined table", fmt.Errorf("listing courses: %w", &pq.Error{Code: "42P01"}), false},
		{"unique violation", &pq.Error{Code: "23505"}, false},
		{"bad password", &pq.Error{Code: "28P01"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

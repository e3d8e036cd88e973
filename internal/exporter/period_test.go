package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sumocli/pkg/contracts/domain"
)

func TestPeriodFor(t *testing.T) {
	tests := []struct {
		now   time.Time
		label string
	}{
		{time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), "2024.01"},
		{time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC), "2024.03"},
		{time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC), "2024.09"},
		{time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), "2024.11"},
		{time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), "2025.01"},
	}
	for _, tt := range tests {
		t.Run(tt.now.Format("Jan"), func(t *testing.T) {
			assert.Equal(t, tt.label, PeriodFor(tt.now).Label())
		})
	}
}

func TestNormalizeBirthDate(t *testing.T) {
	tests := []struct {
		name   string
		raw    domain.Nullable[string]
		want   domain.Nullable[string]
		failed bool
	}{
		{"long month", domain.Some("May 22, 1999"), domain.Some("1999-05-22"), false},
		{"short month", domain.Some("Mar 5, 2000"), domain.Some("2000-03-05"), false},
		{"slashes", domain.Some("1999/05/22"), domain.Some("1999-05-22"), false},
		{"iso with spaces", domain.Some(" 1999-05-22 "), domain.Some("1999-05-22"), false},
		{"null", domain.Null[string](), domain.Null[string](), false},
		{"blank", domain.Some(""), domain.Null[string](), false},
		{"garbage", domain.Some("sometime in spring"), domain.Null[string](), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBirthDate(tt.raw)
			assert.Equal(t, tt.want, got.Nullable)
			assert.Equal(t, tt.failed, got.Failed())
		})
	}
}

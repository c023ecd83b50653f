package utils

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimeRange(t *testing.T) {
	start := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "05.02.2026 10:00 - 11:30", FormatTimeRange(start, start.Add(90*time.Minute)))
	// Переход через полночь показывает только время окончания.
	assert.Equal(t, "05.02.2026 22:00 - 02:00", FormatTimeRange(start.Add(12*time.Hour), start.Add(16*time.Hour)))
}

func TestFormatTimeUntil(t *testing.T) {
	now := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		at       time.Time
		expected string
	}{
		{"часы и минуты", now.Add(80 * time.Minute), "через 1 ч. 20 мин."},
		{"только минуты", now.Add(45 * time.Minute), "через 45 мин."},
		{"ровно сейчас", now, "через 0 мин."},
		{"момент уже прошел", now.Add(-10 * time.Minute), "через 0 мин."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatTimeUntil(tc.at, now))
		})
	}
}

func TestParseFilterFromQuery(t *testing.T) {
	t.Run("значения по умолчанию", func(t *testing.T) {
		filter := ParseFilterFromQuery(url.Values{})
		assert.Equal(t, DefaultLimit, filter.Limit)
		assert.Equal(t, 1, filter.Page)
		assert.Equal(t, 0, filter.Offset)
	})

	t.Run("страница пересчитывается в offset", func(t *testing.T) {
		values := url.Values{"page": {"3"}, "limit": {"20"}}
		filter := ParseFilterFromQuery(values)
		assert.Equal(t, 20, filter.Limit)
		assert.Equal(t, 40, filter.Offset)
	})

	t.Run("limit ограничен сверху", func(t *testing.T) {
		values := url.Values{"limit": {"5000"}}
		filter := ParseFilterFromQuery(values)
		assert.Equal(t, MaxLimit, filter.Limit)
	})

	t.Run("поиск, сортировка и фильтры", func(t *testing.T) {
		values := url.Values{
			"search":         {"осциллограф"},
			"sort[name]":     {"asc"},
			"sort[id]":       {"wat"},
			"filter[status]": {"approved"},
		}
		filter := ParseFilterFromQuery(values)
		assert.Equal(t, "осциллограф", filter.Search)
		assert.Equal(t, map[string]string{"name": "asc"}, filter.Sort, "неизвестное направление отбрасывается")
		assert.Equal(t, "approved", filter.Filter["status"])
	})
}

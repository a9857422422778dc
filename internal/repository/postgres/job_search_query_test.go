package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-trades-backend/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestBuildJobSearchQuery(t *testing.T) {
	t.Run("no criteria orders by recency and searches active jobs only", func(t *testing.T) {
		q := buildJobSearchQuery(domain.SearchFilter{})

		assert.Contains(t, q.SQL, "WHERE j.status = 'active'")
		assert.Contains(t, q.SQL, "NULL::float8 AS distance_miles")
		assert.Contains(t, q.SQL, "ORDER BY s.created_at DESC, s.id DESC")
		assert.NotContains(t, q.SQL, "acos")
		assert.Contains(t, q.SQL, "LIMIT $1 OFFSET $2")
		assert.Equal(t, []any{10, 0}, q.Args)
		assert.Empty(t, q.CountArgs)
		assert.True(t, strings.HasPrefix(q.CountSQL, "SELECT COUNT(*) FROM ("))
		assert.NotContains(t, q.CountSQL, "LIMIT")
	})

	t.Run("reference point adds distance bound and distance order", func(t *testing.T) {
		q := buildJobSearchQuery(domain.SearchFilter{
			Location: &domain.SearchLocation{Latitude: 37.7749, Longitude: -122.4194},
		})

		assert.Contains(t, q.SQL, "3959 * acos(LEAST(1.0, GREATEST(-1.0,")
		assert.Contains(t, q.SQL, "s.distance_miles <= $3")
		assert.Contains(t, q.SQL, "ORDER BY s.distance_miles ASC, s.id ASC")
		assert.Equal(t, []any{37.7749, -122.4194, 25.0, 10, 0}, q.Args)
		assert.Equal(t, []any{37.7749, -122.4194, 25.0}, q.CountArgs)
	})

	t.Run("predicates follow the filter order", func(t *testing.T) {
		start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
		unit := domain.PayUnitHour
		q := buildJobSearchQuery(domain.SearchFilter{
			Skill:             "plumbing",
			AvailabilityToday: ptr(true),
			Location:          &domain.SearchLocation{Name: "Downtown", Latitude: 37.7749, Longitude: -122.4194},
			RadiusMiles:       ptr(30.0),
			StartDate:         &domain.Date{Time: start},
			DurationMonths:    ptr(3),
			MinimumPayRate:    ptr(20.0),
			PayUnit:           &unit,
			Page:              ptr(2),
			Limit:             ptr(5),
		})

		order := []string{
			"s.title ILIKE '%' || $3 || '%'",
			"s.available_today = TRUE",
			"s.distance_miles <= $4",
			"s.start_date >= $5::date",
			"s.duration_unit = 'months' AND s.duration_value >= $6",
			"s.pay_rate_amount >= $7",
			"s.pay_rate_type = $8",
			"LIMIT $9 OFFSET $10",
		}
		last := -1
		for _, frag := range order {
			idx := strings.Index(q.SQL, frag)
			require.GreaterOrEqual(t, idx, 0, frag)
			assert.Greater(t, idx, last, frag)
			last = idx
		}

		assert.Equal(t, []any{37.7749, -122.4194, "plumbing", 30.0, start, 3, 20.0, "hour", 5, 5}, q.Args)
		assert.Len(t, q.CountArgs, 8)
	})

	t.Run("availability false does not restrict", func(t *testing.T) {
		q := buildJobSearchQuery(domain.SearchFilter{AvailabilityToday: ptr(false)})
		assert.NotContains(t, q.SQL, "available_today = TRUE")
	})

	t.Run("keyword wildcards are escaped", func(t *testing.T) {
		q := buildJobSearchQuery(domain.SearchFilter{Skill: `50%_off\`})
		assert.Equal(t, `50\%\_off\\`, q.Args[0])
	})

	t.Run("limit is clamped", func(t *testing.T) {
		q := buildJobSearchQuery(domain.SearchFilter{Page: ptr(3), Limit: ptr(500)})
		assert.Equal(t, []any{100, 200}, q.Args)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "carpentry", escapeLike("carpentry"))
	assert.Equal(t, `a\%b\_c`, escapeLike("a%b_c"))
}

package domain_test

import (
	"encoding/json"
	"testing"

	"go-trades-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSearch(t *testing.T, body string) domain.SearchRequest {
	t.Helper()
	var req domain.SearchRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return req
}

func TestSearchRequestToFilter(t *testing.T) {
	t.Run("full request", func(t *testing.T) {
		req := decodeSearch(t, `{
			"skill": " plumbing ",
			"availability_today": true,
			"location": {"name": "Downtown", "latitude": 37.7749, "longitude": -122.4194},
			"search_radius_miles": 25,
			"filters": {"start_date": "2025-01-10", "duration_months": 3, "minimum_pay_rate": 20, "pay_unit": "hour"},
			"pagination": {"page": 2, "limit": 10}
		}`)

		f, errs := req.ToFilter()
		require.Nil(t, errs)
		assert.Equal(t, "plumbing", f.Skill)
		require.NotNil(t, f.Location)
		assert.Equal(t, 37.7749, f.Location.Latitude)
		assert.Equal(t, 25.0, f.EffectiveRadius())
		assert.Equal(t, "2025-01-10", f.StartDate.String())
		assert.Equal(t, 3, *f.DurationMonths)
		assert.Equal(t, domain.PayUnitHour, *f.PayUnit)
		assert.Equal(t, 2, f.EffectivePage())
		assert.Equal(t, 10, f.Offset())
	})

	t.Run("defaults", func(t *testing.T) {
		f, errs := decodeSearch(t, `{}`).ToFilter()
		require.Nil(t, errs)
		assert.Nil(t, f.Location)
		assert.Equal(t, 1, f.EffectivePage())
		assert.Equal(t, 10, f.EffectiveLimit())
		assert.Equal(t, 25.0, f.EffectiveRadius())
	})

	t.Run("numeric strings are accepted", func(t *testing.T) {
		f, errs := decodeSearch(t, `{"location": {"latitude": "37.5", "longitude": "-122"}, "pagination": {"limit": "20"}}`).ToFilter()
		require.Nil(t, errs)
		assert.Equal(t, 37.5, f.Location.Latitude)
		assert.Equal(t, 20, f.EffectiveLimit())
	})

	t.Run("limit above cap is clamped", func(t *testing.T) {
		f, errs := decodeSearch(t, `{"pagination": {"limit": 500}}`).ToFilter()
		require.Nil(t, errs)
		assert.Equal(t, 100, f.EffectiveLimit())
	})

	t.Run("every malformed field is reported", func(t *testing.T) {
		_, errs := decodeSearch(t, `{
			"location": {"latitude": "north", "longitude": 200},
			"search_radius_miles": -5,
			"filters": {"start_date": "10/01/2025", "duration_months": 0, "minimum_pay_rate": -1, "pay_unit": "year"},
			"pagination": {"page": 0, "limit": 1.5}
		}`).ToFilter()

		require.NotNil(t, errs)
		for _, field := range []string{
			"location.latitude",
			"search_radius_miles",
			"filters.start_date",
			"filters.duration_months",
			"filters.minimum_pay_rate",
			"filters.pay_unit",
			"pagination.page",
			"pagination.limit",
		} {
			assert.Contains(t, errs, field)
		}
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, errs := decodeSearch(t, `{"location": {"latitude": 91, "longitude": 0}}`).ToFilter()
		assert.Equal(t, []string{"must be between -90 and 90"}, errs["location.latitude"])
	})

	t.Run("latitude without longitude", func(t *testing.T) {
		_, errs := decodeSearch(t, `{"location": {"latitude": 10}}`).ToFilter()
		assert.Contains(t, errs, "location.longitude")
	})

	t.Run("name only location is ignored", func(t *testing.T) {
		f, errs := decodeSearch(t, `{"location": {"name": "Austin"}}`).ToFilter()
		require.Nil(t, errs)
		assert.Nil(t, f.Location)
	})
}

func TestHaversineMiles(t *testing.T) {
	sf := domain.GeoPoint{Latitude: 37.7749, Longitude: -122.4194}
	oakland := domain.GeoPoint{Latitude: 37.8044, Longitude: -122.2712}

	assert.InDelta(t, 0, domain.HaversineMiles(sf, sf), 1e-9)
	assert.InDelta(t, 8.3, domain.HaversineMiles(sf, oakland), 0.3)
	assert.InDelta(t, domain.HaversineMiles(sf, oakland), domain.HaversineMiles(oakland, sf), 1e-9)
}

func TestWholeMiles(t *testing.T) {
	assert.Nil(t, domain.WholeMiles(nil))

	d := 2.5
	require.NotNil(t, domain.WholeMiles(&d))
	assert.Equal(t, 3, *domain.WholeMiles(&d))

	d = 29.49
	assert.Equal(t, 29, *domain.WholeMiles(&d))
}

func TestJobStatusTransitions(t *testing.T) {
	assert.True(t, domain.JobStatusPending.CanTransitionTo(domain.JobStatusActive))
	assert.True(t, domain.JobStatusActive.CanTransitionTo(domain.JobStatusCompleted))
	assert.True(t, domain.JobStatusPending.CanTransitionTo(domain.JobStatusCancelled))
	assert.True(t, domain.JobStatusActive.CanTransitionTo(domain.JobStatusCancelled))

	assert.False(t, domain.JobStatusPending.CanTransitionTo(domain.JobStatusCompleted))
	assert.False(t, domain.JobStatusCompleted.CanTransitionTo(domain.JobStatusActive))
	assert.False(t, domain.JobStatusCancelled.CanTransitionTo(domain.JobStatusActive))
	assert.False(t, domain.JobStatusActive.CanTransitionTo(domain.JobStatusActive))
}

func TestPaginationHelpers(t *testing.T) {
	assert.Equal(t, 3, domain.TotalPages(27, 10))
	assert.Equal(t, 1, domain.TotalPages(10, 10))
	assert.Equal(t, 0, domain.TotalPages(0, 10))

	page, limit := domain.NormalizePage(0, 500)
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, limit)

	assert.Equal(t, 0.0, domain.RoundTo1(0))
	assert.Equal(t, 4.3, domain.RoundTo1(4.333))
}

func TestDateJSON(t *testing.T) {
	var d domain.Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-01-10"`), &d))
	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-01-10"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"Jan 10"`), &d))
}

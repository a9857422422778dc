package domain

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	EarthRadiusMiles         = 3959.0
	DefaultSearchRadiusMiles = 25.0
	MinSearchRadiusMiles     = 1.0
)

type SearchLocation struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchFilter is the validated input of a job search. Nil pointers mean
// the criterion was not supplied.
type SearchFilter struct {
	Skill             string
	AvailabilityToday *bool
	Location          *SearchLocation
	RadiusMiles       *float64
	StartDate         *Date
	DurationMonths    *int
	MinimumPayRate    *float64
	PayUnit           *PayUnit
	Page              *int
	Limit             *int
}

// Validate reports range problems per field. It does not apply defaults.
func (f SearchFilter) Validate() map[string][]string {
	errs := map[string][]string{}
	add := func(field, msg string) {
		errs[field] = append(errs[field], msg)
	}

	if f.Location != nil {
		if f.Location.Latitude < -90 || f.Location.Latitude > 90 {
			add("location.latitude", "must be between -90 and 90")
		}
		if f.Location.Longitude < -180 || f.Location.Longitude > 180 {
			add("location.longitude", "must be between -180 and 180")
		}
	}
	if f.RadiusMiles != nil && *f.RadiusMiles < MinSearchRadiusMiles {
		add("search_radius_miles", "must be at least 1")
	}
	if f.DurationMonths != nil && *f.DurationMonths < 1 {
		add("filters.duration_months", "must be at least 1")
	}
	if f.MinimumPayRate != nil && *f.MinimumPayRate < 0 {
		add("filters.minimum_pay_rate", "must not be negative")
	}
	if f.PayUnit != nil && !f.PayUnit.Valid() {
		add("filters.pay_unit", "must be one of hour, day, week, month")
	}
	if f.Page != nil && *f.Page < 1 {
		add("pagination.page", "must be at least 1")
	}
	if f.Limit != nil && *f.Limit < 1 {
		add("pagination.limit", "must be at least 1")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (f SearchFilter) EffectivePage() int {
	if f.Page == nil {
		return 1
	}
	return *f.Page
}

// EffectiveLimit applies the default and clamps to MaxPageLimit.
func (f SearchFilter) EffectiveLimit() int {
	if f.Limit == nil {
		return DefaultPageLimit
	}
	if *f.Limit > MaxPageLimit {
		return MaxPageLimit
	}
	return *f.Limit
}

func (f SearchFilter) EffectiveRadius() float64 {
	if f.RadiusMiles == nil {
		return DefaultSearchRadiusMiles
	}
	return *f.RadiusMiles
}

func (f SearchFilter) Offset() int {
	return Offset(f.EffectivePage(), f.EffectiveLimit())
}

// SearchRequest is the wire form of a search. Numeric fields are kept raw so
// that every malformed value can be reported instead of only the first.
type SearchRequest struct {
	Skill             string                  `json:"skill"`
	AvailabilityToday *bool                   `json:"availability_today"`
	Location          *SearchLocationRequest  `json:"location"`
	SearchRadiusMiles json.RawMessage         `json:"search_radius_miles" swaggertype:"number"`
	Filters           SearchFiltersRequest    `json:"filters"`
	Pagination        SearchPaginationRequest `json:"pagination"`
}

type SearchLocationRequest struct {
	Name      string          `json:"name"`
	Latitude  json.RawMessage `json:"latitude" swaggertype:"number"`
	Longitude json.RawMessage `json:"longitude" swaggertype:"number"`
}

type SearchFiltersRequest struct {
	StartDate      string          `json:"start_date"`
	DurationMonths json.RawMessage `json:"duration_months" swaggertype:"integer"`
	MinimumPayRate json.RawMessage `json:"minimum_pay_rate" swaggertype:"number"`
	PayUnit        string          `json:"pay_unit"`
}

type SearchPaginationRequest struct {
	Page  json.RawMessage `json:"page" swaggertype:"integer"`
	Limit json.RawMessage `json:"limit" swaggertype:"integer"`
}

var (
	errNotNumber  = errors.New("must be a number")
	errNotInteger = errors.New("must be an integer")
)

// parseNumber accepts a JSON number or a numeric string. Absent, null and
// empty values report present=false.
func parseNumber(raw json.RawMessage) (float64, bool, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false, nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, true, errNotNumber
		}
		s = strings.TrimSpace(str)
		if s == "" {
			return 0, false, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, errNotNumber
	}
	return v, true, nil
}

func parseInteger(raw json.RawMessage) (int, bool, error) {
	v, ok, err := parseNumber(raw)
	if err != nil || !ok {
		return 0, ok, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, true, errNotInteger
	}
	return int(v), true, nil
}

// ToFilter parses the request and validates it. The returned map lists every
// offending field and is nil when the filter is usable.
func (r SearchRequest) ToFilter() (SearchFilter, map[string][]string) {
	errs := map[string][]string{}
	add := func(field string, err error) {
		errs[field] = append(errs[field], err.Error())
	}

	f := SearchFilter{
		Skill:             strings.TrimSpace(r.Skill),
		AvailabilityToday: r.AvailabilityToday,
	}

	if r.Location != nil {
		lat, hasLat, latErr := parseNumber(r.Location.Latitude)
		lng, hasLng, lngErr := parseNumber(r.Location.Longitude)
		if latErr != nil {
			add("location.latitude", latErr)
		}
		if lngErr != nil {
			add("location.longitude", lngErr)
		}
		switch {
		case latErr != nil || lngErr != nil:
		case hasLat && hasLng:
			f.Location = &SearchLocation{Name: strings.TrimSpace(r.Location.Name), Latitude: lat, Longitude: lng}
		case hasLat:
			add("location.longitude", errors.New("is required with latitude"))
		case hasLng:
			add("location.latitude", errors.New("is required with longitude"))
		}
	}

	if v, ok, err := parseNumber(r.SearchRadiusMiles); err != nil {
		add("search_radius_miles", err)
	} else if ok {
		f.RadiusMiles = &v
	}

	if s := strings.TrimSpace(r.Filters.StartDate); s != "" {
		d, err := ParseDate(s)
		if err != nil {
			add("filters.start_date", errors.New("must be a date in YYYY-MM-DD format"))
		} else {
			f.StartDate = &d
		}
	}
	if v, ok, err := parseInteger(r.Filters.DurationMonths); err != nil {
		add("filters.duration_months", err)
	} else if ok {
		f.DurationMonths = &v
	}
	if v, ok, err := parseNumber(r.Filters.MinimumPayRate); err != nil {
		add("filters.minimum_pay_rate", err)
	} else if ok {
		f.MinimumPayRate = &v
	}
	if s := strings.TrimSpace(r.Filters.PayUnit); s != "" {
		u := PayUnit(strings.ToLower(s))
		f.PayUnit = &u
	}

	if v, ok, err := parseInteger(r.Pagination.Page); err != nil {
		add("pagination.page", err)
	} else if ok {
		f.Page = &v
	}
	if v, ok, err := parseInteger(r.Pagination.Limit); err != nil {
		add("pagination.limit", err)
	} else if ok {
		f.Limit = &v
	}

	for field, msgs := range f.Validate() {
		errs[field] = append(errs[field], msgs...)
	}
	if len(errs) == 0 {
		return f, nil
	}
	return f, errs
}

// JobSearchRow is a matched posting as read from storage.
type JobSearchRow struct {
	JobPost
	DistanceMiles *float64
}

type SearchPay struct {
	Amount float64 `json:"amount"`
	Unit   PayUnit `json:"unit"`
}

type SearchResult struct {
	JobID         string          `json:"job_id"`
	Title         string          `json:"title"`
	DistanceMiles *int            `json:"distance_miles"`
	Pay           SearchPay       `json:"pay"`
	Duration      Duration        `json:"duration"`
	StartDate     Date            `json:"start_date"`
	IsFeatured    bool            `json:"is_featured"`
	QuickApply    bool            `json:"quick_apply"`
	Owner         RatingAggregate `json:"owner"`
}

type SearchLocationEcho struct {
	Name              string  `json:"name"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	SearchRadiusMiles float64 `json:"search_radius_miles"`
}

type SearchPagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	TotalJobs  int64 `json:"total_jobs"`
}

type SearchPage struct {
	Location   *SearchLocationEcho `json:"location"`
	Jobs       []SearchResult      `json:"jobs"`
	Pagination SearchPagination    `json:"pagination"`
}

// HaversineMiles returns the great-circle distance between two points using
// the same formula the search query computes in SQL.
func HaversineMiles(a, b GeoPoint) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	cosC := math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLng) + math.Sin(lat1)*math.Sin(lat2)
	cosC = math.Max(-1, math.Min(1, cosC))
	return EarthRadiusMiles * math.Acos(cosC)
}

// WholeMiles rounds a computed distance to the whole miles shown to clients.
func WholeMiles(d *float64) *int {
	if d == nil {
		return nil
	}
	v := int(math.Round(*d))
	return &v
}

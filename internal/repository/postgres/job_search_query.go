package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"go-trades-backend/internal/domain"
)

// jobSearchQuery is a page query and its matching count query. Both share
// the filter arguments; the page query appends LIMIT and OFFSET.
type jobSearchQuery struct {
	SQL       string
	CountSQL  string
	Args      []any
	CountArgs []any
}

// buildJobSearchQuery composes the active-job search. Predicates are appended
// in a fixed order: keyword, availability, distance, start date, duration,
// pay floor, pay unit.
func buildJobSearchQuery(f domain.SearchFilter) jobSearchQuery {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	distance := "NULL::float8"
	if f.Location != nil {
		arg(f.Location.Latitude)
		arg(f.Location.Longitude)
		distance = haversineSQL("j.location_lat", "j.location_lng", "$1", "$2")
	}

	inner := `SELECT j.id, j.job_code, j.user_id, j.specialization_id, COALESCE(j.title, '') AS title,
			j.company_name, j.start_date, j.duration_value, j.duration_unit,
			j.pay_rate_amount::float8 AS pay_rate_amount, j.pay_rate_currency, j.pay_rate_type,
			j.location_lat::float8 AS location_lat, j.location_lng::float8 AS location_lng,
			j.city, j.description, j.is_featured, j.status, j.created_at, j.updated_at,
			u.available_today,
			` + distance + ` AS distance_miles
		FROM job_posts j
		JOIN users u ON u.id = j.user_id
		WHERE j.status = 'active'`

	var where []string
	if f.Skill != "" {
		where = append(where, `s.title ILIKE '%' || `+arg(escapeLike(f.Skill))+` || '%'`)
	}
	if f.AvailabilityToday != nil && *f.AvailabilityToday {
		where = append(where, `s.available_today = TRUE`)
	}
	if f.Location != nil {
		where = append(where, `s.distance_miles <= `+arg(f.EffectiveRadius()))
	}
	if f.StartDate != nil {
		where = append(where, `s.start_date >= `+arg(f.StartDate.Time)+`::date`)
	}
	if f.DurationMonths != nil {
		where = append(where, `s.duration_unit = 'months' AND s.duration_value >= `+arg(*f.DurationMonths))
	}
	if f.MinimumPayRate != nil {
		where = append(where, `s.pay_rate_amount >= `+arg(*f.MinimumPayRate))
	}
	if f.PayUnit != nil {
		where = append(where, `s.pay_rate_type = `+arg(string(*f.PayUnit)))
	}

	from := "FROM (" + inner + ") s"
	if len(where) > 0 {
		from += "\n\t\tWHERE " + strings.Join(where, "\n\t\t  AND ")
	}

	order := "ORDER BY s.created_at DESC, s.id DESC"
	if f.Location != nil {
		order = "ORDER BY s.distance_miles ASC, s.id ASC"
	}

	countArgs := append([]any(nil), args...)
	limit := arg(f.EffectiveLimit())
	offset := arg(f.Offset())

	return jobSearchQuery{
		SQL:       fmt.Sprintf("SELECT s.* %s\n\t\t%s\n\t\tLIMIT %s OFFSET %s", from, order, limit, offset),
		CountSQL:  "SELECT COUNT(*) " + from,
		Args:      args,
		CountArgs: countArgs,
	}
}

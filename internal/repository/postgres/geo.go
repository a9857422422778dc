package postgres

import (
	"strconv"

	"go-trades-backend/internal/domain"
)

// haversineSQL renders the great-circle distance in miles between the row's
// coordinate columns and a reference point given as two placeholders. The
// acos argument is clamped so identical points never produce NaN.
func haversineSQL(latCol, lngCol, latParam, lngParam string) string {
	radius := strconv.FormatFloat(domain.EarthRadiusMiles, 'f', -1, 64)
	return `(` + radius + ` * acos(LEAST(1.0, GREATEST(-1.0,
			cos(radians(` + latParam + `::float8)) * cos(radians(` + latCol + `::float8))
			* cos(radians(` + lngCol + `::float8) - radians(` + lngParam + `::float8))
			+ sin(radians(` + latParam + `::float8)) * sin(radians(` + latCol + `::float8))))))`
}

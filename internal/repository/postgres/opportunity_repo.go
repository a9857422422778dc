package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"go-trades-backend/internal/domain"
)

type opportunityRepo struct {
	db *pgxpool.Pool
}

func NewOpportunityRepository(db *pgxpool.Pool) domain.OpportunityRepository {
	return &opportunityRepo{db: db}
}

const opportunityColumns = `o.id, o.opportunity_code, o.user_id, o.title, o.skills_needed, o.start_date,
	o.duration_weeks, o.compensation_paid, o.total_pay_offering::float8,
	o.latitude::float8, o.longitude::float8, o.city, o.description, o.created_at, o.updated_at`

func opportunityScanTargets(o *domain.Opportunity) []any {
	return []any{
		&o.ID, &o.Code, &o.UserID, &o.Title, &o.SkillsNeeded, &o.StartDate.Time,
		&o.DurationWeeks, &o.CompensationPaid, &o.TotalPayOffering,
		&o.Location.Latitude, &o.Location.Longitude, &o.City, &o.Description, &o.CreatedAt, &o.UpdatedAt,
	}
}

func (r *opportunityRepo) Create(ctx context.Context, o *domain.Opportunity) error {
	query := `INSERT INTO opportunities (user_id, title, skills_needed, start_date, duration_weeks,
	              compensation_paid, total_pay_offering, latitude, longitude, city, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
	          RETURNING id, opportunity_code`
	now := time.Now().UTC()
	if err := r.db.QueryRow(ctx, query,
		o.UserID, o.Title, pq.Array(o.SkillsNeeded), o.StartDate.Time, o.DurationWeeks,
		o.CompensationPaid, o.TotalPayOffering, o.Location.Latitude, o.Location.Longitude, o.City, o.Description, now,
	).Scan(&o.ID, &o.Code); err != nil {
		return err
	}
	o.CreatedAt, o.UpdatedAt = now, now
	return nil
}

func (r *opportunityRepo) GetByCode(ctx context.Context, code string) (*domain.Opportunity, error) {
	var o domain.Opportunity
	err := r.db.QueryRow(ctx, `SELECT `+opportunityColumns+` FROM opportunities o
		WHERE o.opportunity_code = $1 AND o.deleted_at IS NULL`, code).Scan(opportunityScanTargets(&o)...)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// List returns live opportunities newest first. With near set, rows farther
// than the radius are dropped and each row carries its distance.
func (r *opportunityRepo) List(ctx context.Context, near *domain.NearbyFilter, limit, offset int) ([]domain.Opportunity, int64, error) {
	if near == nil {
		out, err := r.query(ctx, false, `SELECT `+opportunityColumns+` FROM opportunities o
			WHERE o.deleted_at IS NULL
			ORDER BY o.created_at DESC, o.id DESC LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		var total int64
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM opportunities WHERE deleted_at IS NULL`).Scan(&total); err != nil {
			return nil, 0, err
		}
		return out, total, nil
	}

	inner := `SELECT ` + opportunityColumns + `, ` + haversineSQL("o.latitude", "o.longitude", "$1", "$2") + ` AS distance_miles
		FROM opportunities o WHERE o.deleted_at IS NULL`
	out, err := r.query(ctx, true, `SELECT * FROM (`+inner+`) s
		WHERE s.distance_miles <= $3
		ORDER BY s.created_at DESC, s.id DESC LIMIT $4 OFFSET $5`,
		near.Origin.Latitude, near.Origin.Longitude, near.RadiusMiles, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM (`+inner+`) s WHERE s.distance_miles <= $3`,
		near.Origin.Latitude, near.Origin.Longitude, near.RadiusMiles,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *opportunityRepo) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Opportunity, int64, error) {
	out, err := r.query(ctx, false, `SELECT `+opportunityColumns+` FROM opportunities o
		WHERE o.user_id = $1 AND o.deleted_at IS NULL
		ORDER BY o.created_at DESC, o.id DESC LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM opportunities WHERE user_id = $1 AND deleted_at IS NULL`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *opportunityRepo) query(ctx context.Context, withDistance bool, query string, args ...any) ([]domain.Opportunity, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Opportunity{}
	for rows.Next() {
		var (
			o        domain.Opportunity
			distance *float64
		)
		targets := opportunityScanTargets(&o)
		if withDistance {
			targets = append(targets, &distance)
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		o.DistanceMiles = domain.WholeMiles(distance)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *opportunityRepo) Update(ctx context.Context, o *domain.Opportunity) error {
	query := `UPDATE opportunities SET
		title = $2,
		skills_needed = $3,
		start_date = $4,
		duration_weeks = $5,
		compensation_paid = $6,
		total_pay_offering = $7,
		latitude = $8,
		longitude = $9,
		city = $10,
		description = $11,
		updated_at = now()
	WHERE id = $1 AND deleted_at IS NULL
	RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		o.ID, o.Title, pq.Array(o.SkillsNeeded), o.StartDate.Time, o.DurationWeeks,
		o.CompensationPaid, o.TotalPayOffering, o.Location.Latitude, o.Location.Longitude, o.City, o.Description,
	).Scan(&o.UpdatedAt)
	return notFound(err)
}

func (r *opportunityRepo) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE opportunities SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

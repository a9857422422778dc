package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
)

type apprenticeProfileRepo struct {
	db *pgxpool.Pool
}

func NewApprenticeProfileRepository(db *pgxpool.Pool) domain.ApprenticeProfileRepository {
	return &apprenticeProfileRepo{db: db}
}

const apprenticeProfileColumns = `p.id, p.profile_code, p.user_id, u.name, p.position_seeking, p.age,
	p.latitude::float8, p.longitude::float8, p.city, p.location_text, p.education_experience,
	p.trade_school, p.about_me, p.resume_url, p.profile_visible, p.created_at, p.updated_at`

func apprenticeProfileTargets(p *domain.ApprenticeProfile) []any {
	return []any{
		&p.ID, &p.Code, &p.UserID, &p.Name, &p.PositionSeeking, &p.Age,
		&p.Latitude, &p.Longitude, &p.City, &p.LocationText, &p.EducationExperience,
		&p.TradeSchool, &p.AboutMe, &p.ResumeURL, &p.ProfileVisible, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *apprenticeProfileRepo) Create(ctx context.Context, p *domain.ApprenticeProfile) error {
	query := `INSERT INTO apprentice_profiles (user_id, position_seeking, age, latitude, longitude, city,
	              location_text, education_experience, trade_school, about_me, resume_url, profile_visible,
	              created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	          RETURNING id, profile_code`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		p.UserID, p.PositionSeeking, p.Age, p.Latitude, p.Longitude, p.City,
		p.LocationText, p.EducationExperience, p.TradeSchool, p.AboutMe, p.ResumeURL, p.ProfileVisible, now,
	).Scan(&p.ID, &p.Code)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Profile already exists")
		}
		return err
	}
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

func (r *apprenticeProfileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.ApprenticeProfile, error) {
	var p domain.ApprenticeProfile
	err := r.db.QueryRow(ctx, `SELECT `+apprenticeProfileColumns+`
		FROM apprentice_profiles p JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1 AND p.deleted_at IS NULL`, userID).Scan(apprenticeProfileTargets(&p)...)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *apprenticeProfileRepo) Update(ctx context.Context, p *domain.ApprenticeProfile) error {
	query := `UPDATE apprentice_profiles SET
		position_seeking = $2,
		age = $3,
		latitude = $4,
		longitude = $5,
		city = $6,
		location_text = $7,
		education_experience = $8,
		trade_school = $9,
		about_me = $10,
		resume_url = $11,
		profile_visible = $12,
		updated_at = now()
	WHERE id = $1 AND deleted_at IS NULL
	RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		p.ID, p.PositionSeeking, p.Age, p.Latitude, p.Longitude, p.City,
		p.LocationText, p.EducationExperience, p.TradeSchool, p.AboutMe, p.ResumeURL, p.ProfileVisible,
	).Scan(&p.UpdatedAt)
	return notFound(err)
}

func (r *apprenticeProfileRepo) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE apprentice_profiles SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListVisible returns visible live profiles newest first. With near set,
// profiles without coordinates or beyond the radius are dropped.
func (r *apprenticeProfileRepo) ListVisible(ctx context.Context, near *domain.NearbyFilter, limit, offset int) ([]domain.ApprenticeProfile, int64, error) {
	base := `FROM apprentice_profiles p JOIN users u ON u.id = p.user_id
		WHERE p.deleted_at IS NULL AND p.profile_visible = TRUE`

	if near == nil {
		out, err := r.query(ctx, false, `SELECT `+apprenticeProfileColumns+` `+base+`
			ORDER BY p.created_at DESC, p.id DESC LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		var total int64
		if err := r.db.QueryRow(ctx, `SELECT COUNT(*) `+base).Scan(&total); err != nil {
			return nil, 0, err
		}
		return out, total, nil
	}

	inner := `SELECT ` + apprenticeProfileColumns + `, ` +
		haversineSQL("p.latitude", "p.longitude", "$1", "$2") + ` AS distance_miles ` +
		base + ` AND p.latitude IS NOT NULL AND p.longitude IS NOT NULL`
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

func (r *apprenticeProfileRepo) query(ctx context.Context, withDistance bool, query string, args ...any) ([]domain.ApprenticeProfile, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ApprenticeProfile{}
	for rows.Next() {
		var (
			p        domain.ApprenticeProfile
			distance *float64
		)
		targets := apprenticeProfileTargets(&p)
		if withDistance {
			targets = append(targets, &distance)
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		p.DistanceMiles = domain.WholeMiles(distance)
		out = append(out, p)
	}
	return out, rows.Err()
}

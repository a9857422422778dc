package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
)

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, name, email, password_hash, user_type, phone, profile_image_url,
	latitude::float8, longitude::float8, city, state, country,
	available_today, notification_status, fcm_token, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.UserType, &u.Phone, &u.ProfileImageURL,
		&u.Latitude, &u.Longitude, &u.City, &u.State, &u.Country,
		&u.AvailableToday, &u.NotificationStatus, &u.FCMToken, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (name, email, password_hash, user_type, phone, latitude, longitude,
	                             available_today, notification_status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	          RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.UserType, user.Phone,
		user.Latitude, user.Longitude, user.AvailableToday, user.NotificationStatus, now,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User with this email already exists")
		}
		return err
	}
	user.CreatedAt, user.UpdatedAt = now, now
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// exec runs a single-row update and reports ErrNotFound when nothing matched.
func (r *userRepo) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdateLocation(ctx context.Context, id int64, loc domain.UserLocation) error {
	return r.exec(ctx, `UPDATE users SET latitude = $2, longitude = $3,
		city = COALESCE($4, city), state = COALESCE($5, state), country = COALESCE($6, country),
		updated_at = now() WHERE id = $1`,
		id, loc.Latitude, loc.Longitude, loc.City, loc.State, loc.Country)
}

func (r *userRepo) UpdateAvailability(ctx context.Context, id int64, available bool) error {
	return r.exec(ctx, `UPDATE users SET available_today = $2, updated_at = now() WHERE id = $1`, id, available)
}

func (r *userRepo) UpdateNotificationStatus(ctx context.Context, id int64, enabled bool) error {
	return r.exec(ctx, `UPDATE users SET notification_status = $2, updated_at = now() WHERE id = $1`, id, enabled)
}

func (r *userRepo) UpdateFCMToken(ctx context.Context, id int64, token string) error {
	return r.exec(ctx, `UPDATE users SET fcm_token = NULLIF($2, ''), updated_at = now() WHERE id = $1`, id, token)
}

func (r *userRepo) UpdateProfileImage(ctx context.Context, id int64, url string) error {
	return r.exec(ctx, `UPDATE users SET profile_image_url = $2, updated_at = now() WHERE id = $1`, id, url)
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
}

// Delete removes the user; owned rows go with it through ON DELETE CASCADE.
func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM users WHERE id = $1`, id)
}

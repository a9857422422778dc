package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-trades-backend/internal/domain"
)

type passwordResetRepo struct {
	db *pgxpool.Pool
}

func NewPasswordResetRepository(db *pgxpool.Pool) domain.PasswordResetRepository {
	return &passwordResetRepo{db: db}
}

// Upsert replaces any pending OTP for the email and invalidates an issued reset token.
func (r *passwordResetRepo) Upsert(ctx context.Context, email, otpHash string, expiresAt time.Time) error {
	query := `INSERT INTO password_resets (email, otp_hash, otp_expires_at, created_at)
	          VALUES ($1, $2, $3, now())
	          ON CONFLICT (email) DO UPDATE
	          SET otp_hash = EXCLUDED.otp_hash,
	              otp_expires_at = EXCLUDED.otp_expires_at,
	              reset_token_hash = NULL,
	              reset_token_expires_at = NULL,
	              failed_attempts = 0,
	              created_at = now()`
	_, err := r.db.Exec(ctx, query, email, otpHash, expiresAt)
	return err
}

const passwordResetColumns = `email, otp_hash, otp_expires_at, reset_token_hash, reset_token_expires_at, failed_attempts, created_at`

func scanPasswordReset(row interface{ Scan(...any) error }) (*domain.PasswordReset, error) {
	var p domain.PasswordReset
	if err := row.Scan(&p.Email, &p.OTPHash, &p.OTPExpiresAt, &p.ResetTokenHash, &p.ResetTokenExpiresAt, &p.FailedAttempts, &p.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *passwordResetRepo) GetByEmail(ctx context.Context, email string) (*domain.PasswordReset, error) {
	return scanPasswordReset(r.db.QueryRow(ctx,
		`SELECT `+passwordResetColumns+` FROM password_resets WHERE email = $1`, email))
}

func (r *passwordResetRepo) SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE password_resets SET reset_token_hash = $2, reset_token_expires_at = $3 WHERE email = $1`,
		email, tokenHash, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *passwordResetRepo) GetByResetToken(ctx context.Context, tokenHash string) (*domain.PasswordReset, error) {
	return scanPasswordReset(r.db.QueryRow(ctx,
		`SELECT `+passwordResetColumns+` FROM password_resets WHERE reset_token_hash = $1`, tokenHash))
}

func (r *passwordResetRepo) RecordOTPFailure(ctx context.Context, email string) (int, error) {
	var attempts int
	err := r.db.QueryRow(ctx,
		`UPDATE password_resets SET failed_attempts = failed_attempts + 1 WHERE email = $1 RETURNING failed_attempts`,
		email).Scan(&attempts)
	if err != nil {
		return 0, notFound(err)
	}
	return attempts, nil
}

func (r *passwordResetRepo) Delete(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM password_resets WHERE email = $1`, email)
	return err
}

// PurgeExpired drops rows whose OTP and reset token have both lapsed.
func (r *passwordResetRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_resets
		WHERE otp_expires_at < $1
		  AND (reset_token_expires_at IS NULL OR reset_token_expires_at < $1)`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

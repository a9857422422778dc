package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/logger"
	"go-trades-backend/pkg/security"
)

// maxOTPAttempts wrong codes discard the pending reset; the user has to
// request a new OTP.
const maxOTPAttempts = 5

// AuthConfig holds the password reset lifetimes.
type AuthConfig struct {
	OTPTTL        time.Duration
	ResetTokenTTL time.Duration
}

type authUsecase struct {
	userRepo  domain.UserRepository
	resetRepo domain.PasswordResetRepository
	tokens    domain.TokenIssuer
	mailer    domain.Mailer
	guard     domain.LoginGuard
	secLog    *security.SecurityLogger
	cfg       AuthConfig

	now        func() time.Time
	newOTP     func() (string, error)
	newToken   func() (string, error)
	bcryptCost int
}

func NewAuthUsecase(
	userRepo domain.UserRepository,
	resetRepo domain.PasswordResetRepository,
	tokens domain.TokenIssuer,
	mailer domain.Mailer,
	guard domain.LoginGuard,
	secLog *security.SecurityLogger,
	cfg AuthConfig,
) domain.AuthUsecase {
	if secLog == nil {
		secLog = security.NopLogger()
	}
	return &authUsecase{
		userRepo:   userRepo,
		resetRepo:  resetRepo,
		tokens:     tokens,
		mailer:     mailer,
		guard:      guard,
		secLog:     secLog,
		cfg:        cfg,
		now:        time.Now,
		newOTP:     randomOTP,
		newToken:   randomToken,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *authUsecase) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error) {
	if !input.UserType.Valid() {
		return nil, apperror.Validation(map[string][]string{"user_type": {"must be one of contractor, subcontractor, laborer, apprentice"}})
	}
	if input.Location != nil && !input.Location.Valid() {
		return nil, apperror.Validation(map[string][]string{"location": {"latitude must be between -90 and 90 and longitude between -180 and 180"}})
	}

	email := normalizeEmail(input.Email)
	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("User with this email already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), u.bcryptCost)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Name:               strings.TrimSpace(input.Name),
		Email:              email,
		PasswordHash:       string(hash),
		UserType:           input.UserType,
		Phone:              input.Phone,
		NotificationStatus: true,
	}
	if input.Location != nil {
		lat, lng := input.Location.Latitude, input.Location.Longitude
		user.Latitude, user.Longitude = &lat, &lng
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return u.issue(user)
}

func (u *authUsecase) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	email := normalizeEmail(input.Email)

	if u.guard != nil {
		blocked, err := u.guard.IsBlocked(ctx, email, input.IPAddress)
		if err != nil {
			logger.Log.Warn("login guard unavailable", "error", err)
		} else if blocked {
			u.secLog.LogLoginBlocked(ctx, email, input.IPAddress, input.UserAgent, input.RequestID)
			return nil, apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
		}
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		reason := "invalid_password"
		if user == nil {
			reason = "unknown_email"
		}
		return nil, u.loginFailed(ctx, email, input, reason)
	}

	if u.guard != nil {
		if err := u.guard.Clear(ctx, email, input.IPAddress); err != nil {
			logger.Log.Warn("failed to clear login attempts", "error", err)
		}
	}

	if input.Location != nil {
		if !input.Location.Valid() {
			return nil, apperror.Validation(map[string][]string{"location": {"latitude must be between -90 and 90 and longitude between -180 and 180"}})
		}
		lat, lng := input.Location.Latitude, input.Location.Longitude
		if err := u.userRepo.UpdateLocation(ctx, user.ID, domain.UserLocation{Latitude: &lat, Longitude: &lng}); err != nil {
			return nil, err
		}
		user.Latitude, user.Longitude = &lat, &lng
	}
	if input.AvailableToday != nil {
		if err := u.userRepo.UpdateAvailability(ctx, user.ID, *input.AvailableToday); err != nil {
			return nil, err
		}
		user.AvailableToday = *input.AvailableToday
	}
	if input.FCMToken != nil {
		if err := u.userRepo.UpdateFCMToken(ctx, user.ID, *input.FCMToken); err != nil {
			return nil, err
		}
	}

	return u.issue(user)
}

func (u *authUsecase) loginFailed(ctx context.Context, email string, input domain.LoginInput, reason string) error {
	u.secLog.LogLoginFailed(ctx, email, input.IPAddress, input.UserAgent, input.RequestID, reason)
	if u.guard != nil {
		blocked, err := u.guard.RecordFailure(ctx, email, input.IPAddress, input.UserAgent, input.RequestID)
		if err != nil {
			logger.Log.Warn("failed to record login failure", "error", err)
		} else if blocked {
			return apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
		}
	}
	return apperror.Unauthorized("Invalid email or password")
}

func (u *authUsecase) issue(user *domain.User) (*domain.AuthResult, error) {
	token, expiresAt, err := u.tokens.Issue(user.ID, user.Email, string(user.UserType))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthResult{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// ForgotPassword stores a fresh OTP for a registered email and mails it.
// Calling it again replaces the previous OTP.
func (u *authUsecase) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	user, err := u.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.Validation(map[string][]string{"email": {"The selected email is invalid."}})
	}
	if err != nil {
		return err
	}

	otp, err := u.newOTP()
	if err != nil {
		return apperror.Internal(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(otp), u.bcryptCost)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := u.resetRepo.Upsert(ctx, email, string(hash), u.now().Add(u.cfg.OTPTTL)); err != nil {
		return err
	}
	if err := u.mailer.SendPasswordResetOTP(ctx, email, user.Name, otp, u.cfg.OTPTTL); err != nil {
		return apperror.Unavailable("Failed to send OTP email", err)
	}
	u.secLog.LogPasswordReset(ctx, security.EventPasswordResetSent, email)
	return nil
}

// VerifyResetOTP trades a valid OTP for a single-use reset token. Only the
// token's hash is stored.
func (u *authUsecase) VerifyResetOTP(ctx context.Context, email, otp string) (string, error) {
	email = normalizeEmail(email)
	reset, err := u.resetRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", apperror.BadRequest("Invalid OTP")
	}
	if err != nil {
		return "", err
	}
	if reset.FailedAttempts >= maxOTPAttempts {
		return "", u.lockReset(ctx, email)
	}
	if bcrypt.CompareHashAndPassword([]byte(reset.OTPHash), []byte(strings.TrimSpace(otp))) != nil {
		attempts, err := u.resetRepo.RecordOTPFailure(ctx, email)
		if errors.Is(err, domain.ErrNotFound) {
			return "", apperror.BadRequest("Invalid OTP")
		}
		if err != nil {
			return "", err
		}
		if attempts >= maxOTPAttempts {
			return "", u.lockReset(ctx, email)
		}
		return "", apperror.BadRequest("Invalid OTP")
	}
	if u.now().After(reset.OTPExpiresAt) {
		return "", apperror.BadRequest("OTP expired")
	}

	token, err := u.newToken()
	if err != nil {
		return "", apperror.Internal(err)
	}
	if err := u.resetRepo.SetResetToken(ctx, email, hashToken(token), u.now().Add(u.cfg.ResetTokenTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func (u *authUsecase) lockReset(ctx context.Context, email string) error {
	if err := u.resetRepo.Delete(ctx, email); err != nil {
		return err
	}
	u.secLog.LogPasswordReset(ctx, security.EventResetOTPLocked, email)
	return apperror.TooManyRequests("Too many invalid OTP attempts. Please request a new code.")
}

func (u *authUsecase) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	hashed := hashToken(strings.TrimSpace(resetToken))
	reset, err := u.resetRepo.GetByResetToken(ctx, hashed)
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.BadRequest("Reset token expired")
	}
	if err != nil {
		return err
	}
	if reset.ResetTokenHash == nil || subtle.ConstantTimeCompare([]byte(*reset.ResetTokenHash), []byte(hashed)) != 1 ||
		reset.ResetTokenExpiresAt == nil || u.now().After(*reset.ResetTokenExpiresAt) {
		_ = u.resetRepo.Delete(ctx, reset.Email)
		return apperror.BadRequest("Reset token expired")
	}

	user, err := u.userRepo.GetByEmail(ctx, reset.Email)
	if errors.Is(err, domain.ErrNotFound) {
		_ = u.resetRepo.Delete(ctx, reset.Email)
		return apperror.BadRequest("Reset token expired")
	}
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), u.bcryptCost)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := u.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	if err := u.resetRepo.Delete(ctx, reset.Email); err != nil {
		return err
	}
	u.secLog.LogPasswordReset(ctx, security.EventPasswordReset, reset.Email)
	return nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	return user, err
}

// randomOTP returns a uniformly random 4-digit code.
func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()+1000), nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

package domain

import (
	"context"
	"time"
)

type UserType string

const (
	UserTypeContractor    UserType = "contractor"
	UserTypeSubcontractor UserType = "subcontractor"
	UserTypeLaborer       UserType = "laborer"
	UserTypeApprentice    UserType = "apprentice"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeContractor, UserTypeSubcontractor, UserTypeLaborer, UserTypeApprentice:
		return true
	}
	return false
}

// IsHirer reports whether the user type posts work.
func (t UserType) IsHirer() bool {
	return t == UserTypeContractor || t == UserTypeSubcontractor
}

// IsWorker reports whether the user type looks for work.
func (t UserType) IsWorker() bool {
	return t == UserTypeLaborer || t == UserTypeApprentice
}

type User struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	UserType           UserType  `json:"user_type"`
	Phone              *string   `json:"phone"`
	ProfileImageURL    *string   `json:"profile_image_url"`
	Latitude           *float64  `json:"latitude"`
	Longitude          *float64  `json:"longitude"`
	City               *string   `json:"city"`
	State              *string   `json:"state"`
	Country            *string   `json:"country"`
	AvailableToday     bool      `json:"available_today"`
	NotificationStatus bool      `json:"notification_status"`
	FCMToken           *string   `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Location returns the stored coordinates, nil when the user never shared them.
func (u *User) Location() *GeoPoint {
	if u.Latitude == nil || u.Longitude == nil {
		return nil
	}
	return &GeoPoint{Latitude: *u.Latitude, Longitude: *u.Longitude}
}

type UserLocation struct {
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
	City      *string  `json:"city" binding:"omitempty,max=100"`
	State     *string  `json:"state" binding:"omitempty,max=100"`
	Country   *string  `json:"country" binding:"omitempty,max=100"`
}

type UserSettings struct {
	NotificationStatus bool     `json:"notification_status"`
	AvailableToday     bool     `json:"available_today"`
	UserType           UserType `json:"user_type"`
	ProfileImageURL    *string  `json:"profile_image_url"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateLocation(ctx context.Context, id int64, loc UserLocation) error
	UpdateAvailability(ctx context.Context, id int64, available bool) error
	UpdateNotificationStatus(ctx context.Context, id int64, enabled bool) error
	UpdateFCMToken(ctx context.Context, id int64, token string) error
	UpdateProfileImage(ctx context.Context, id int64, url string) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	Delete(ctx context.Context, id int64) error
}

type RegisterInput struct {
	Name     string    `json:"name" binding:"required,min=2,max=100,no_emoji"`
	Email    string    `json:"email" binding:"required,email,max=255"`
	Password string    `json:"password" binding:"required,min=8,max=72"`
	UserType UserType  `json:"user_type" binding:"required,oneof=contractor subcontractor laborer apprentice"`
	Phone    *string   `json:"phone" binding:"omitempty,valid_phone"`
	Location *GeoPoint `json:"location"`
}

type LoginInput struct {
	Email          string    `json:"email" binding:"required,email"`
	Password       string    `json:"password" binding:"required"`
	Location       *GeoPoint `json:"location"`
	AvailableToday *bool     `json:"available_today"`
	FCMToken       *string   `json:"fcm_token" binding:"omitempty,max=4096"`

	// Filled from the request, not the body.
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
	RequestID string `json:"-"`
}

type AuthResult struct {
	User        *User     `json:"user"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type PasswordReset struct {
	Email               string
	OTPHash             string
	OTPExpiresAt        time.Time
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
	FailedAttempts      int
	CreatedAt           time.Time
}

type PasswordResetRepository interface {
	Upsert(ctx context.Context, email, otpHash string, expiresAt time.Time) error
	GetByEmail(ctx context.Context, email string) (*PasswordReset, error)
	SetResetToken(ctx context.Context, email, tokenHash string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, tokenHash string) (*PasswordReset, error)
	// RecordOTPFailure bumps the wrong-code counter and returns the new count.
	RecordOTPFailure(ctx context.Context, email string) (int, error)
	Delete(ctx context.Context, email string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, email, otp string) (string, error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	GetCurrentUser(ctx context.Context, id int64) (*User, error)
}

type UserUsecase interface {
	GetSettings(ctx context.Context, userID int64) (*UserSettings, error)
	UpdateLocation(ctx context.Context, userID int64, loc UserLocation) error
	UpdateAvailability(ctx context.Context, userID int64, available bool) error
	UpdateNotificationStatus(ctx context.Context, userID int64, enabled bool) error
	UpdateFCMToken(ctx context.Context, userID int64, token string) error
	UpdateProfileImage(ctx context.Context, userID int64, file FileUpload) (string, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

// FileStorage persists uploaded objects and returns their public URL.
type FileStorage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Mailer sends transactional email.
type Mailer interface {
	SendContactEmail(ctx context.Context, req *ContactRequest) error
	SendPasswordResetOTP(ctx context.Context, to, name, otp string, ttl time.Duration) error
}

// TokenIssuer mints signed access tokens.
type TokenIssuer interface {
	Issue(userID int64, email, userType string) (string, time.Time, error)
}

// LoginGuard counts failed logins per email and client address and reports
// active blocks.
type LoginGuard interface {
	IsBlocked(ctx context.Context, email, ip string) (bool, error)
	RecordFailure(ctx context.Context, email, ip, userAgent, requestID string) (bool, error)
	Clear(ctx context.Context, email, ip string) error
}

// UploadGuard caps how many files one user may upload per day.
type UploadGuard interface {
	Allow(ctx context.Context, userID string) (bool, error)
}

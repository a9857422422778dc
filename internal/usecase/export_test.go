package usecase

import (
	"time"

	"go-trades-backend/internal/domain"
)

// Test hooks for unexported collaborators.

func SetAuthInternals(uc domain.AuthUsecase, now func() time.Time, otp func() (string, error), token func() (string, error), bcryptCost int) {
	a := uc.(*authUsecase)
	if now != nil {
		a.now = now
	}
	if otp != nil {
		a.newOTP = otp
	}
	if token != nil {
		a.newToken = token
	}
	a.bcryptCost = bcryptCost
}

func SetReviewClock(uc domain.ReviewUsecase, now func() time.Time) {
	uc.(*reviewUsecase).now = now
}

var (
	RandomOTP = randomOTP
	HashToken = hashToken
)

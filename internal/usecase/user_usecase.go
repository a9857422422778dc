package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/security"
	"go-trades-backend/pkg/security/antivirus"
)

type userUsecase struct {
	userRepo domain.UserRepository
	files    fileStore
}

func NewUserUsecase(
	userRepo domain.UserRepository,
	storage domain.FileStorage,
	guard domain.UploadGuard,
	scanner antivirus.Scanner,
) domain.UserUsecase {
	return &userUsecase{userRepo: userRepo, files: newFileStore(storage, guard, scanner)}
}

func (u *userUsecase) user(ctx context.Context, id int64) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	return user, err
}

func (u *userUsecase) GetSettings(ctx context.Context, userID int64) (*domain.UserSettings, error) {
	user, err := u.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.UserSettings{
		NotificationStatus: user.NotificationStatus,
		AvailableToday:     user.AvailableToday,
		UserType:           user.UserType,
		ProfileImageURL:    user.ProfileImageURL,
	}, nil
}

func notFoundAs(err error, message string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(message)
	}
	return err
}

func (u *userUsecase) UpdateLocation(ctx context.Context, userID int64, loc domain.UserLocation) error {
	return notFoundAs(u.userRepo.UpdateLocation(ctx, userID, loc), "User not found")
}

func (u *userUsecase) UpdateAvailability(ctx context.Context, userID int64, available bool) error {
	return notFoundAs(u.userRepo.UpdateAvailability(ctx, userID, available), "User not found")
}

func (u *userUsecase) UpdateNotificationStatus(ctx context.Context, userID int64, enabled bool) error {
	return notFoundAs(u.userRepo.UpdateNotificationStatus(ctx, userID, enabled), "User not found")
}

func (u *userUsecase) UpdateFCMToken(ctx context.Context, userID int64, token string) error {
	return notFoundAs(u.userRepo.UpdateFCMToken(ctx, userID, token), "User not found")
}

func (u *userUsecase) UpdateProfileImage(ctx context.Context, userID int64, file domain.FileUpload) (string, error) {
	if err := u.files.allow(ctx, userID, 1); err != nil {
		return "", err
	}
	stored, err := u.files.save(ctx, fmt.Sprintf("profile-images/%d", userID), "profile_image", file, security.KindImage)
	if err != nil {
		return "", err
	}
	if err := u.userRepo.UpdateProfileImage(ctx, userID, stored.URL); err != nil {
		u.files.remove(context.WithoutCancel(ctx), stored.Key)
		return "", notFoundAs(err, "User not found")
	}
	return stored.URL, nil
}

// DeleteAccount removes the user and, through cascades, everything they own.
func (u *userUsecase) DeleteAccount(ctx context.Context, userID int64) error {
	return notFoundAs(u.userRepo.Delete(ctx, userID), "User not found")
}

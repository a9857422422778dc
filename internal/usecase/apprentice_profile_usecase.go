package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/security"
	"go-trades-backend/pkg/security/antivirus"
)

type apprenticeProfileUsecase struct {
	userRepo    domain.UserRepository
	profileRepo domain.ApprenticeProfileRepository
	files       fileStore
}

func NewApprenticeProfileUsecase(
	userRepo domain.UserRepository,
	profileRepo domain.ApprenticeProfileRepository,
	storage domain.FileStorage,
	guard domain.UploadGuard,
	scanner antivirus.Scanner,
) domain.ApprenticeProfileUsecase {
	return &apprenticeProfileUsecase{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		files:       newFileStore(storage, guard, scanner),
	}
}

func (u *apprenticeProfileUsecase) worker(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	if !user.UserType.IsWorker() {
		return nil, apperror.Forbidden("Only laborers and apprentices can manage an apprentice profile")
	}
	return user, nil
}

func (u *apprenticeProfileUsecase) CreateProfile(ctx context.Context, userID int64, input domain.ApprenticeProfileInput, resume *domain.FileUpload) (*domain.ApprenticeProfile, error) {
	user, err := u.worker(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.PositionSeeking == nil || strings.TrimSpace(*input.PositionSeeking) == "" {
		return nil, apperror.Validation(map[string][]string{"position_seeking": {"is required"}})
	}

	_, err = u.profileRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		return nil, apperror.Conflict("Profile already exists")
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	p := &domain.ApprenticeProfile{UserID: userID, Name: user.Name, ProfileVisible: true}
	if err := applyApprenticeInput(p, input); err != nil {
		return nil, err
	}

	var uploaded storedFile
	if resume != nil {
		if uploaded, err = u.storeResume(ctx, userID, *resume); err != nil {
			return nil, err
		}
		p.ResumeURL = &uploaded.URL
	}

	if err := u.profileRepo.Create(ctx, p); err != nil {
		u.files.remove(context.WithoutCancel(ctx), uploaded.Key)
		return nil, err
	}
	return p, nil
}

func (u *apprenticeProfileUsecase) UpdateProfile(ctx context.Context, userID int64, input domain.ApprenticeProfileInput, resume *domain.FileUpload) (*domain.ApprenticeProfile, error) {
	if _, err := u.worker(ctx, userID); err != nil {
		return nil, err
	}
	p, err := u.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "Profile not found")
	}
	if err := applyApprenticeInput(p, input); err != nil {
		return nil, err
	}

	var uploaded storedFile
	previous := p.ResumeURL
	if resume != nil {
		if uploaded, err = u.storeResume(ctx, userID, *resume); err != nil {
			return nil, err
		}
		p.ResumeURL = &uploaded.URL
	}

	if err := u.profileRepo.Update(ctx, p); err != nil {
		u.files.remove(context.WithoutCancel(ctx), uploaded.Key)
		return nil, notFoundAs(err, "Profile not found")
	}
	if uploaded.Key != "" && previous != nil {
		u.files.removeURL(context.WithoutCancel(ctx), *previous)
	}
	return p, nil
}

func (u *apprenticeProfileUsecase) storeResume(ctx context.Context, userID int64, f domain.FileUpload) (storedFile, error) {
	if err := u.files.allow(ctx, userID, 1); err != nil {
		return storedFile{}, err
	}
	return u.files.save(ctx, fmt.Sprintf("resumes/%d", userID), "resume", f, security.KindDocument)
}

// applyApprenticeInput copies the supplied fields and checks that
// coordinates arrive as a pair.
func applyApprenticeInput(p *domain.ApprenticeProfile, in domain.ApprenticeProfileInput) error {
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return apperror.Validation(map[string][]string{"location": {"latitude and longitude must be sent together"}})
	}
	if in.PositionSeeking != nil {
		s := strings.TrimSpace(*in.PositionSeeking)
		if s == "" {
			return apperror.Validation(map[string][]string{"position_seeking": {"must not be empty"}})
		}
		p.PositionSeeking = s
	}
	if in.Age != nil {
		p.Age = in.Age
	}
	if in.Latitude != nil {
		p.Latitude, p.Longitude = in.Latitude, in.Longitude
	}
	if in.City != nil {
		p.City = trimmedOrNil(*in.City)
	}
	if in.LocationText != nil {
		p.LocationText = trimmedOrNil(*in.LocationText)
	}
	if in.EducationExperience != nil {
		p.EducationExperience = trimmedOrNil(*in.EducationExperience)
	}
	if in.TradeSchool != nil {
		p.TradeSchool = trimmedOrNil(*in.TradeSchool)
	}
	if in.AboutMe != nil {
		p.AboutMe = trimmedOrNil(*in.AboutMe)
	}
	if in.ProfileVisible != nil {
		p.ProfileVisible = *in.ProfileVisible
	}
	return nil
}

func (u *apprenticeProfileUsecase) GetMyProfile(ctx context.Context, userID int64) (*domain.ApprenticeProfile, error) {
	p, err := u.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "Profile not found")
	}
	return p, nil
}

func (u *apprenticeProfileUsecase) DeleteProfile(ctx context.Context, userID int64) error {
	p, err := u.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return notFoundAs(err, "Profile not found")
	}
	return notFoundAs(u.profileRepo.SoftDelete(ctx, p.ID), "Profile not found")
}

// ListProfiles shows visible profiles to hirers. A radius filters around the
// hirer's stored location.
func (u *apprenticeProfileUsecase) ListProfiles(ctx context.Context, hirerID int64, radiusMiles *float64, page, limit int) ([]domain.ApprenticeProfile, domain.Pagination, error) {
	hirer, err := u.userRepo.GetByID(ctx, hirerID)
	if err != nil {
		return nil, domain.Pagination{}, notFoundAs(err, "User not found")
	}
	if !hirer.UserType.IsHirer() {
		return nil, domain.Pagination{}, apperror.Forbidden("Only contractors and subcontractors can browse apprentice profiles")
	}

	var near *domain.NearbyFilter
	if radiusMiles != nil {
		if *radiusMiles < domain.MinSearchRadiusMiles {
			return nil, domain.Pagination{}, apperror.Validation(map[string][]string{"radius_miles": {"must be at least 1"}})
		}
		origin := hirer.Location()
		if origin == nil {
			return nil, domain.Pagination{}, apperror.Unprocessable("Set your location before filtering by distance")
		}
		near = &domain.NearbyFilter{Origin: *origin, RadiusMiles: *radiusMiles}
	}

	page, limit = domain.NormalizePage(page, limit)
	profiles, total, err := u.profileRepo.ListVisible(ctx, near, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if profiles == nil {
		profiles = []domain.ApprenticeProfile{}
	}
	return profiles, domain.NewPagination(page, limit, total), nil
}

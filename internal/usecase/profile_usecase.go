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

type profileUsecase struct {
	userRepo    domain.UserRepository
	profileRepo domain.ProfileRepository
	catalogRepo domain.CatalogRepository
	files       fileStore
}

func NewProfileUsecase(
	userRepo domain.UserRepository,
	profileRepo domain.ProfileRepository,
	catalogRepo domain.CatalogRepository,
	storage domain.FileStorage,
	guard domain.UploadGuard,
	scanner antivirus.Scanner,
) domain.ProfileUsecase {
	return &profileUsecase{
		userRepo:    userRepo,
		profileRepo: profileRepo,
		catalogRepo: catalogRepo,
		files:       newFileStore(storage, guard, scanner),
	}
}

// requireType loads the caller and rejects any other user type.
func (u *profileUsecase) requireType(ctx context.Context, userID int64, want domain.UserType) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	if user.UserType != want {
		return nil, apperror.Forbidden(fmt.Sprintf("Only %ss can update these details", want))
	}
	return user, nil
}

func (u *profileUsecase) GetMyProfile(ctx context.Context, userID int64) (*domain.RoleProfile, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	out := &domain.RoleProfile{User: user}

	switch user.UserType {
	case domain.UserTypeLaborer:
		out.Laborer, err = u.laborer(ctx, userID)
	case domain.UserTypeContractor:
		out.Contractor, err = u.contractor(ctx, userID)
	case domain.UserTypeSubcontractor:
		out.Subcontractor, err = u.subcontractor(ctx, userID)
	case domain.UserTypeApprentice:
		out.Apprentice, err = u.apprentice(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// The getters below return an empty record when none was saved yet.

func (u *profileUsecase) laborer(ctx context.Context, userID int64) (*domain.LaborerDetails, error) {
	d, err := u.profileRepo.GetLaborer(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.LaborerDetails{UserID: userID}, nil
	}
	return d, err
}

func (u *profileUsecase) contractor(ctx context.Context, userID int64) (*domain.ContractorDetails, error) {
	d, err := u.profileRepo.GetContractor(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ContractorDetails{UserID: userID, JobRequirements: []string{}}, nil
	}
	return d, err
}

func (u *profileUsecase) subcontractor(ctx context.Context, userID int64) (*domain.SubcontractorDetails, error) {
	d, err := u.profileRepo.GetSubcontractor(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.SubcontractorDetails{UserID: userID}, nil
	}
	return d, err
}

func (u *profileUsecase) apprentice(ctx context.Context, userID int64) (*domain.ApprenticeDetails, error) {
	d, err := u.profileRepo.GetApprentice(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ApprenticeDetails{UserID: userID}, nil
	}
	return d, err
}

func (u *profileUsecase) UpdateLaborer(ctx context.Context, userID int64, input domain.UpdateLaborerInput) (*domain.LaborerDetails, error) {
	if _, err := u.requireType(ctx, userID, domain.UserTypeLaborer); err != nil {
		return nil, err
	}
	d, err := u.laborer(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.SpecializationID != nil {
		ok, err := u.catalogRepo.SpecializationExists(ctx, *input.SpecializationID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.Validation(map[string][]string{"specialization_id": {"does not exist"}})
		}
		d.SpecializationID = input.SpecializationID
	}
	if input.CustomSpecialization != nil {
		d.CustomSpecialization = trimmedOrNil(*input.CustomSpecialization)
	}
	if input.ExperienceLevel != nil {
		d.ExperienceLevel = trimmedOrNil(*input.ExperienceLevel)
	}
	if input.Age != nil {
		d.Age = input.Age
	}
	if input.Gender != nil {
		d.Gender = input.Gender
	}
	if input.HasInsurance != nil {
		d.HasInsurance = *input.HasInsurance
	}
	if input.BackgroundCheckCompleted != nil {
		d.BackgroundCheckCompleted = *input.BackgroundCheckCompleted
	}
	if input.LookingForApprenticeship != nil {
		d.LookingForApprenticeship = *input.LookingForApprenticeship
	}
	if input.TradeSchoolName != nil {
		d.TradeSchoolName = trimmedOrNil(*input.TradeSchoolName)
	}
	if input.TradeSchoolProgramYear != nil {
		d.TradeSchoolProgramYear = trimmedOrNil(*input.TradeSchoolProgramYear)
	}
	d.UserID = userID
	d.ProfileCompletion = true

	if err := u.profileRepo.UpsertLaborer(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (u *profileUsecase) SetLaborerFlag(ctx context.Context, userID int64, flag domain.LaborerFlag, value bool) (*domain.LaborerDetails, error) {
	if !flag.Valid() {
		return nil, apperror.BadRequest("Unknown laborer flag")
	}
	if _, err := u.requireType(ctx, userID, domain.UserTypeLaborer); err != nil {
		return nil, err
	}
	d, err := u.laborer(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch flag {
	case domain.FlagHasInsurance:
		d.HasInsurance = value
	case domain.FlagBackgroundCheckCompleted:
		d.BackgroundCheckCompleted = value
	case domain.FlagLookingForApprenticeship:
		d.LookingForApprenticeship = value
	}
	d.UserID = userID
	if err := u.profileRepo.UpsertLaborer(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (u *profileUsecase) UpdateContractor(ctx context.Context, userID int64, input domain.UpdateContractorInput, insurance *domain.FileUpload) (*domain.ContractorDetails, error) {
	if _, err := u.requireType(ctx, userID, domain.UserTypeContractor); err != nil {
		return nil, err
	}
	d, err := u.contractor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.JobRequirements != nil {
		reqs, err := u.checkJobRequirements(ctx, input.JobRequirements)
		if err != nil {
			return nil, err
		}
		d.JobRequirements = reqs
	}

	var uploaded storedFile
	if insurance != nil {
		if uploaded, err = u.storeInsurance(ctx, userID, "contractors", *insurance); err != nil {
			return nil, err
		}
		d.InsuranceFileURL = &uploaded.URL
	}
	d.UserID = userID
	d.ProfileCompletion = true

	if err := u.profileRepo.UpsertContractor(ctx, d); err != nil {
		u.files.remove(context.WithoutCancel(ctx), uploaded.Key)
		return nil, err
	}
	return d, nil
}

// checkJobRequirements de-duplicates slugs and rejects any not in the catalog.
func (u *profileUsecase) checkJobRequirements(ctx context.Context, slugs []string) ([]string, error) {
	known, err := u.catalogRepo.JobRequirements(ctx)
	if err != nil {
		return nil, err
	}
	valid := make(map[string]bool, len(known))
	for _, r := range known {
		valid[r.Slug] = true
	}

	out := []string{}
	seen := map[string]bool{}
	var unknown []string
	for _, s := range slugs {
		s = strings.TrimSpace(s)
		if seen[s] {
			continue
		}
		seen[s] = true
		if !valid[s] {
			unknown = append(unknown, s)
			continue
		}
		out = append(out, s)
	}
	if len(unknown) > 0 {
		return nil, apperror.Validation(map[string][]string{
			"job_requirements": {"unknown requirement: " + strings.Join(unknown, ", ")},
		})
	}
	return out, nil
}

func (u *profileUsecase) storeInsurance(ctx context.Context, userID int64, role string, f domain.FileUpload) (storedFile, error) {
	if err := u.files.allow(ctx, userID, 1); err != nil {
		return storedFile{}, err
	}
	return u.files.save(ctx, fmt.Sprintf("insurance/%s/%d", role, userID), "insurance_file", f, security.KindImageOrDocument)
}

func (u *profileUsecase) UpdateSubcontractor(ctx context.Context, userID int64, insurance *domain.FileUpload) (*domain.SubcontractorDetails, error) {
	if _, err := u.requireType(ctx, userID, domain.UserTypeSubcontractor); err != nil {
		return nil, err
	}
	d, err := u.subcontractor(ctx, userID)
	if err != nil {
		return nil, err
	}

	var uploaded storedFile
	if insurance != nil {
		if uploaded, err = u.storeInsurance(ctx, userID, "subcontractors", *insurance); err != nil {
			return nil, err
		}
		d.InsuranceFileURL = &uploaded.URL
	}
	d.UserID = userID
	d.ProfileCompletion = d.InsuranceFileURL != nil

	if err := u.profileRepo.UpsertSubcontractor(ctx, d); err != nil {
		u.files.remove(context.WithoutCancel(ctx), uploaded.Key)
		return nil, err
	}
	return d, nil
}

func (u *profileUsecase) UpdateApprentice(ctx context.Context, userID int64, input domain.UpdateApprenticeInput) (*domain.ApprenticeDetails, error) {
	if _, err := u.requireType(ctx, userID, domain.UserTypeApprentice); err != nil {
		return nil, err
	}
	d, err := u.apprentice(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.TradeInterestID != nil {
		if err := u.checkTradeInterest(ctx, *input.TradeInterestID); err != nil {
			return nil, err
		}
		d.TradeInterestID = input.TradeInterestID
	}
	if input.TradeSchoolName != nil {
		d.TradeSchoolName = trimmedOrNil(*input.TradeSchoolName)
	}
	if input.CurrentProgramYear != nil {
		d.CurrentProgramYear = trimmedOrNil(*input.CurrentProgramYear)
	}
	if input.ExperienceLevel != nil {
		d.ExperienceLevel = trimmedOrNil(*input.ExperienceLevel)
	}
	d.UserID = userID
	d.ProfileCompletion = d.TradeInterestID != nil

	if err := u.profileRepo.UpsertApprentice(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (u *profileUsecase) checkTradeInterest(ctx context.Context, id int64) error {
	interests, err := u.catalogRepo.TradeInterests(ctx)
	if err != nil {
		return err
	}
	for _, ti := range interests {
		if ti.ID == id {
			return nil
		}
	}
	return apperror.Validation(map[string][]string{"trade_interest_id": {"does not exist"}})
}

func (u *profileUsecase) UpdateExperienceLevel(ctx context.Context, userID int64, level string) (*domain.ApprenticeDetails, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		return nil, apperror.Validation(map[string][]string{"experience_level": {"is required"}})
	}
	return u.UpdateApprentice(ctx, userID, domain.UpdateApprenticeInput{ExperienceLevel: &level})
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-trades-backend/internal/domain"
	"go-trades-backend/internal/usecase"
)

type profileDeps struct {
	users    *MockUserRepo
	profiles *MockProfileRepo
	catalog  *MockCatalogRepo
	storage  *MockStorage
}

func newProfileUsecase() (domain.ProfileUsecase, profileDeps) {
	d := profileDeps{new(MockUserRepo), new(MockProfileRepo), new(MockCatalogRepo), new(MockStorage)}
	return usecase.NewProfileUsecase(d.users, d.profiles, d.catalog, d.storage, nil, nil), d
}

func TestGetMyProfile(t *testing.T) {
	uc, d := newProfileUsecase()
	d.users.On("GetByID", mock.Anything, int64(1)).Return(&domain.User{ID: 1, UserType: domain.UserTypeContractor}, nil)
	d.profiles.On("GetContractor", mock.Anything, int64(1)).Return(nil, domain.ErrNotFound)

	p, err := uc.GetMyProfile(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, p.Contractor)
	assert.Equal(t, []string{}, p.Contractor.JobRequirements)
	assert.Nil(t, p.Laborer)
}

func TestUpdateLaborer(t *testing.T) {
	ctx := context.Background()

	t.Run("marks the profile complete", func(t *testing.T) {
		uc, d := newProfileUsecase()
		d.users.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, UserType: domain.UserTypeLaborer}, nil)
		d.profiles.On("GetLaborer", mock.Anything, int64(2)).Return(nil, domain.ErrNotFound)
		d.catalog.On("SpecializationExists", mock.Anything, int64(4)).Return(true, nil)
		d.profiles.On("UpsertLaborer", mock.Anything, mock.AnythingOfType("*domain.LaborerDetails")).Return(nil)

		out, err := uc.UpdateLaborer(ctx, 2, domain.UpdateLaborerInput{SpecializationID: ptr(int64(4)), HasInsurance: ptr(true)})
		require.NoError(t, err)
		assert.True(t, out.ProfileCompletion)
		assert.True(t, out.HasInsurance)
		assert.Equal(t, int64(4), *out.SpecializationID)
	})

	t.Run("other user types are forbidden", func(t *testing.T) {
		uc, d := newProfileUsecase()
		d.users.On("GetByID", mock.Anything, int64(3)).Return(&domain.User{ID: 3, UserType: domain.UserTypeApprentice}, nil)

		_, err := uc.UpdateLaborer(ctx, 3, domain.UpdateLaborerInput{})
		assert.Equal(t, http.StatusForbidden, appCode(t, err))
	})

	t.Run("unknown specialization", func(t *testing.T) {
		uc, d := newProfileUsecase()
		d.users.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, UserType: domain.UserTypeLaborer}, nil)
		d.profiles.On("GetLaborer", mock.Anything, int64(2)).Return(&domain.LaborerDetails{UserID: 2}, nil)
		d.catalog.On("SpecializationExists", mock.Anything, int64(99)).Return(false, nil)

		_, err := uc.UpdateLaborer(ctx, 2, domain.UpdateLaborerInput{SpecializationID: ptr(int64(99))})
		assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))
	})
}

func TestSetLaborerFlag(t *testing.T) {
	uc, d := newProfileUsecase()
	d.users.On("GetByID", mock.Anything, int64(2)).Return(&domain.User{ID: 2, UserType: domain.UserTypeLaborer}, nil)
	d.profiles.On("GetLaborer", mock.Anything, int64(2)).Return(&domain.LaborerDetails{UserID: 2}, nil)
	d.profiles.On("UpsertLaborer", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.SetLaborerFlag(context.Background(), 2, domain.FlagLookingForApprenticeship, true)
	require.NoError(t, err)
	assert.True(t, out.LookingForApprenticeship)

	_, err = uc.SetLaborerFlag(context.Background(), 2, domain.LaborerFlag("is_admin"), true)
	assert.Equal(t, http.StatusBadRequest, appCode(t, err))
}

func TestUpdateContractor(t *testing.T) {
	ctx := context.Background()
	reqs := []domain.JobRequirement{{ID: 1, Slug: "osha-10"}, {ID: 2, Slug: "own-tools"}}

	t.Run("requirements and insurance document", func(t *testing.T) {
		uc, d := newProfileUsecase()
		d.users.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5, UserType: domain.UserTypeContractor}, nil)
		d.profiles.On("GetContractor", mock.Anything, int64(5)).Return(nil, domain.ErrNotFound)
		d.catalog.On("JobRequirements", mock.Anything).Return(reqs, nil)
		d.storage.On("Put", mock.Anything, mock.Anything, "application/pdf", mock.Anything).Return("https://cdn.example.com/ins.pdf", nil)
		d.profiles.On("UpsertContractor", mock.Anything, mock.Anything).Return(nil)

		doc := domain.FileUpload{Filename: "insurance.pdf", Data: []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")}
		out, err := uc.UpdateContractor(ctx, 5, domain.UpdateContractorInput{JobRequirements: []string{"osha-10", "osha-10", "own-tools"}}, &doc)
		require.NoError(t, err)
		assert.Equal(t, []string{"osha-10", "own-tools"}, out.JobRequirements)
		require.NotNil(t, out.InsuranceFileURL)
		assert.Equal(t, "https://cdn.example.com/ins.pdf", *out.InsuranceFileURL)
		assert.True(t, out.ProfileCompletion)
	})

	t.Run("unknown requirement slug", func(t *testing.T) {
		uc, d := newProfileUsecase()
		d.users.On("GetByID", mock.Anything, int64(5)).Return(&domain.User{ID: 5, UserType: domain.UserTypeContractor}, nil)
		d.profiles.On("GetContractor", mock.Anything, int64(5)).Return(&domain.ContractorDetails{UserID: 5}, nil)
		d.catalog.On("JobRequirements", mock.Anything).Return(reqs, nil)

		_, err := uc.UpdateContractor(ctx, 5, domain.UpdateContractorInput{JobRequirements: []string{"jetpack"}}, nil)
		assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))
	})
}

func TestUpdateApprentice(t *testing.T) {
	uc, d := newProfileUsecase()
	d.users.On("GetByID", mock.Anything, int64(6)).Return(&domain.User{ID: 6, UserType: domain.UserTypeApprentice}, nil)
	d.profiles.On("GetApprentice", mock.Anything, int64(6)).Return(nil, domain.ErrNotFound)
	d.catalog.On("TradeInterests", mock.Anything).Return([]domain.TradeInterest{{ID: 2, Name: "Welding"}}, nil)
	d.profiles.On("UpsertApprentice", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.UpdateApprentice(context.Background(), 6, domain.UpdateApprenticeInput{TradeInterestID: ptr(int64(9))})
	assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))

	out, err := uc.UpdateExperienceLevel(context.Background(), 6, " Beginner ")
	require.NoError(t, err)
	assert.Equal(t, "Beginner", *out.ExperienceLevel)
}

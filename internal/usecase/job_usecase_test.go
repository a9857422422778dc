package usecase_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-trades-backend/internal/domain"
	"go-trades-backend/internal/usecase"
	"go-trades-backend/pkg/apperror"
)

func appCode(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func createJobInput() domain.CreateJobInput {
	return domain.CreateJobInput{
		SkillCodes:       []string{"skl001", "SKL002", "SKL001"},
		SpecializationID: 3,
		Title:            " Framing crew ",
		StartDate:        &domain.Date{Time: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)},
		Duration:         domain.DurationInput{Value: 2, Unit: domain.DurationMonths},
		Pay:              domain.PayInput{Amount: ptr(32.5), Unit: domain.PayUnitHour},
		Location:         domain.JobLocationInput{Latitude: ptr(40.7), Longitude: ptr(-74.0)},
		Description:      "Two month framing job",
	}
}

func TestCreateJob(t *testing.T) {
	ctx := context.Background()

	t.Run("stores an active job with resolved skills", func(t *testing.T) {
		jobs, catalog := new(MockJobRepo), new(MockCatalogRepo)
		uc := usecase.NewJobUsecase(jobs, catalog, &fakeRatings{})

		skills := []domain.Skill{{ID: 1, Code: "SKL001", Name: "Framing"}, {ID: 2, Code: "SKL002", Name: "Drywall"}}
		catalog.On("SkillsByCodes", mock.Anything, []string{"SKL001", "SKL002"}).Return(skills, nil)
		catalog.On("SpecializationExists", mock.Anything, int64(3)).Return(true, nil)
		jobs.On("Create", mock.Anything, mock.AnythingOfType("*domain.JobPost"), []int64{1, 2}).Return(nil)

		job, err := uc.CreateJob(ctx, 9, createJobInput())
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusActive, job.Status)
		assert.Equal(t, "USD", job.Pay.Currency)
		assert.Equal(t, "Framing crew", job.Title)
		assert.Equal(t, int64(9), job.UserID)
		assert.Len(t, job.Skills, 2)
		jobs.AssertExpectations(t)
	})

	t.Run("unknown skill code is rejected", func(t *testing.T) {
		jobs, catalog := new(MockJobRepo), new(MockCatalogRepo)
		uc := usecase.NewJobUsecase(jobs, catalog, &fakeRatings{})

		catalog.On("SkillsByCodes", mock.Anything, mock.Anything).
			Return([]domain.Skill{{ID: 1, Code: "SKL001"}}, nil)

		_, err := uc.CreateJob(ctx, 9, createJobInput())
		assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))
		jobs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("negative pay is rejected before any lookup", func(t *testing.T) {
		jobs, catalog := new(MockJobRepo), new(MockCatalogRepo)
		uc := usecase.NewJobUsecase(jobs, catalog, &fakeRatings{})

		in := createJobInput()
		in.Pay.Amount = ptr(-1.0)
		_, err := uc.CreateJob(ctx, 9, in)
		assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))
		catalog.AssertNotCalled(t, "SkillsByCodes", mock.Anything, mock.Anything)
	})
}

func TestUpdateJobStatus(t *testing.T) {
	ctx := context.Background()
	owned := func(status domain.JobStatus) *domain.JobPost {
		return &domain.JobPost{ID: 4, Code: "JOB10004", UserID: 9, Status: status}
	}

	t.Run("active to completed", func(t *testing.T) {
		jobs := new(MockJobRepo)
		uc := usecase.NewJobUsecase(jobs, nil, &fakeRatings{})
		jobs.On("GetByCode", mock.Anything, "JOB10004").Return(owned(domain.JobStatusActive), nil)
		jobs.On("UpdateStatus", mock.Anything, int64(4), domain.JobStatusCompleted).Return(nil)

		job, err := uc.UpdateStatus(ctx, 9, "job10004", domain.JobStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusCompleted, job.Status)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		jobs := new(MockJobRepo)
		uc := usecase.NewJobUsecase(jobs, nil, &fakeRatings{})
		jobs.On("GetByCode", mock.Anything, "JOB10004").Return(owned(domain.JobStatusCompleted), nil)

		_, err := uc.UpdateStatus(ctx, 9, "JOB10004", domain.JobStatusActive)
		assert.Equal(t, http.StatusUnprocessableEntity, appCode(t, err))
		jobs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("only the owner may change it", func(t *testing.T) {
		jobs := new(MockJobRepo)
		uc := usecase.NewJobUsecase(jobs, nil, &fakeRatings{})
		jobs.On("GetByCode", mock.Anything, "JOB10004").Return(owned(domain.JobStatusActive), nil)

		_, err := uc.UpdateStatus(ctx, 10, "JOB10004", domain.JobStatusCancelled)
		assert.Equal(t, http.StatusForbidden, appCode(t, err))
	})

	t.Run("missing job", func(t *testing.T) {
		jobs := new(MockJobRepo)
		uc := usecase.NewJobUsecase(jobs, nil, &fakeRatings{})
		jobs.On("GetByCode", mock.Anything, "JOB99999").Return(nil, domain.ErrNotFound)

		_, err := uc.UpdateStatus(ctx, 9, "JOB99999", domain.JobStatusCancelled)
		assert.Equal(t, http.StatusNotFound, appCode(t, err))
	})
}

func TestListMyJobsDefaults(t *testing.T) {
	jobs := new(MockJobRepo)
	uc := usecase.NewJobUsecase(jobs, nil, &fakeRatings{})
	var status *domain.JobStatus
	jobs.On("ListByOwner", mock.Anything, int64(9), status, 10, 0).Return([]domain.JobPost(nil), int64(0), nil)

	list, page, err := uc.ListMyJobs(context.Background(), 9, nil, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 10}, page)
}

func TestExportMyJobs(t *testing.T) {
	jobs := new(MockJobRepo)
	uc := usecase.NewJobUsecase(jobs, nil, &fakeRatings{})
	city := "Newark"
	rows := []domain.JobPost{{
		Code:      "JOB10001",
		Title:     "Framing crew",
		Status:    domain.JobStatusActive,
		StartDate: domain.Date{Time: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)},
		Duration:  domain.Duration{Value: 2, Unit: domain.DurationMonths},
		Pay:       domain.Pay{Amount: 32.5, Currency: "USD", Unit: domain.PayUnitHour},
		City:      &city,
		Skills:    []domain.Skill{{Name: "Framing"}, {Name: "Drywall"}},
	}}
	var status *domain.JobStatus
	jobs.On("ListByOwner", mock.Anything, int64(9), status, 100, 0).Return(rows, int64(1), nil)

	data, err := uc.ExportMyJobs(context.Background(), 9)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Jobs", "A1")
	require.NoError(t, err)
	assert.Equal(t, "JOB ID", header)

	code, _ := f.GetCellValue("Jobs", "A2")
	skills, _ := f.GetCellValue("Jobs", "H2")
	pay, _ := f.GetCellValue("Jobs", "F2")
	assert.Equal(t, "JOB10001", code)
	assert.Equal(t, "Framing, Drywall", skills)
	assert.Equal(t, "32.50 USD / hour", pay)
}

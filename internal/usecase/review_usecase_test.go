package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-trades-backend/internal/domain"
	"go-trades-backend/internal/usecase"
)

func reviewInput() domain.SubmitReviewInput {
	return domain.SubmitReviewInput{
		JobCode:        "job10001",
		OverallRating:  4,
		Recommendation: domain.Recommended,
		Ratings: domain.SubReviewRatings{
			Communication:   ptr(4.0),
			JobQuality:      ptr(5.0),
			Professionalism: ptr(4.5),
		},
	}
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()
	completed := &domain.JobPost{ID: 1, Code: "JOB10001", UserID: 20, Title: "Deck build", Status: domain.JobStatusCompleted}

	t.Run("stores the review and notifies the owner", func(t *testing.T) {
		reviews, jobs, notifier := new(MockReviewRepo), new(MockJobRepo), new(MockNotifier)
		uc := usecase.NewReviewUsecase(reviews, jobs, new(MockUserRepo), notifier)
		jobs.On("GetByCode", mock.Anything, "JOB10001").Return(completed, nil)
		reviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Review")).Return(nil)
		notifier.On("Notify", mock.Anything, int64(20), "New review", mock.Anything, domain.NotificationTypeReview).Return(errors.New("fcm down"))

		review, err := uc.SubmitReview(ctx, 30, reviewInput())
		require.NoError(t, err, "notification failures do not fail the review")
		assert.Equal(t, int64(20), review.RevieweeID)
		assert.Equal(t, 4.5, review.AverageRating)
		notifier.AssertExpectations(t)
	})

	t.Run("job must be completed", func(t *testing.T) {
		reviews, jobs, users := new(MockReviewRepo), new(MockJobRepo), new(MockUserRepo)
		uc := usecase.NewReviewUsecase(reviews, jobs, users, nil)
		active := *completed
		active.Status = domain.JobStatusActive
		jobs.On("GetByCode", mock.Anything, "JOB10001").Return(&active, nil)

		_, err := uc.SubmitReview(ctx, 30, reviewInput())
		assert.Equal(t, http.StatusBadRequest, appCode(t, err))
	})

	t.Run("owners cannot review their own job", func(t *testing.T) {
		reviews, jobs, users := new(MockReviewRepo), new(MockJobRepo), new(MockUserRepo)
		uc := usecase.NewReviewUsecase(reviews, jobs, users, nil)
		jobs.On("GetByCode", mock.Anything, "JOB10001").Return(completed, nil)

		_, err := uc.SubmitReview(ctx, 20, reviewInput())
		assert.Equal(t, http.StatusForbidden, appCode(t, err))
		reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown job", func(t *testing.T) {
		reviews, jobs, users := new(MockReviewRepo), new(MockJobRepo), new(MockUserRepo)
		uc := usecase.NewReviewUsecase(reviews, jobs, users, nil)
		jobs.On("GetByCode", mock.Anything, "JOB10001").Return(nil, domain.ErrNotFound)

		_, err := uc.SubmitReview(ctx, 30, reviewInput())
		assert.Equal(t, http.StatusNotFound, appCode(t, err))
	})
}

func TestListReviewsForUser(t *testing.T) {
	ctx := context.Background()
	var noJob *int64

	t.Run("profile summary with recent badge", func(t *testing.T) {
		reviews, jobs, users := new(MockReviewRepo), new(MockJobRepo), new(MockUserRepo)
		uc := usecase.NewReviewUsecase(reviews, jobs, users, nil)
		usecase.SetReviewClock(uc, func() time.Time { return fixedNow })
		users.On("GetByID", mock.Anything, int64(20)).Return(&domain.User{ID: 20}, nil)

		latest := fixedNow.Add(-48 * time.Hour)
		reviews.On("ListByReviewee", mock.Anything, int64(20), noJob, 10, 0).Return([]domain.ReviewView{{}}, int64(1), nil)
		reviews.On("AggregateForUsers", mock.Anything, []int64{20}).Return(map[int64]domain.RatingAggregate{
			20: {UserID: 20, Rating: 4.7, TotalReviews: 6},
		}, nil)
		reviews.On("LatestForReviewee", mock.Anything, int64(20)).Return(&latest, nil)

		page, err := uc.ListForUser(ctx, 20, "", 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 4.7, page.Profile.AverageRating)
		assert.Equal(t, int64(6), page.Profile.TotalReviews)
		assert.True(t, page.Profile.RecentlyReviewed)
	})

	t.Run("no reviews yet", func(t *testing.T) {
		reviews, jobs, users := new(MockReviewRepo), new(MockJobRepo), new(MockUserRepo)
		uc := usecase.NewReviewUsecase(reviews, jobs, users, nil)
		users.On("GetByID", mock.Anything, int64(21)).Return(&domain.User{ID: 21}, nil)
		reviews.On("ListByReviewee", mock.Anything, int64(21), noJob, 10, 0).Return([]domain.ReviewView(nil), int64(0), nil)
		reviews.On("AggregateForUsers", mock.Anything, []int64{21}).Return(map[int64]domain.RatingAggregate{}, nil)
		reviews.On("LatestForReviewee", mock.Anything, int64(21)).Return(nil, nil)

		page, err := uc.ListForUser(ctx, 21, "", 0, 0)
		require.NoError(t, err)
		assert.NotNil(t, page.Reviews)
		assert.Equal(t, 0.0, page.Profile.AverageRating)
		assert.False(t, page.Profile.RecentlyReviewed)
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		reviews, jobs, users := new(MockReviewRepo), new(MockJobRepo), new(MockUserRepo)
		uc := usecase.NewReviewUsecase(reviews, jobs, users, nil)
		users.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

		_, err := uc.ListForUser(ctx, 99, "", 1, 10)
		assert.Equal(t, http.StatusNotFound, appCode(t, err))
		assert.EqualError(t, err, "User not found")
		reviews.AssertNotCalled(t, "ListByReviewee", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown job code returns an empty page with the profile", func(t *testing.T) {
		reviews, jobs, users := new(MockReviewRepo), new(MockJobRepo), new(MockUserRepo)
		uc := usecase.NewReviewUsecase(reviews, jobs, users, nil)
		users.On("GetByID", mock.Anything, int64(20)).Return(&domain.User{ID: 20}, nil)
		jobs.On("GetByCode", mock.Anything, "JOB404").Return(nil, domain.ErrNotFound)
		reviews.On("AggregateForUsers", mock.Anything, []int64{20}).Return(map[int64]domain.RatingAggregate{
			20: {UserID: 20, Rating: 4.2, TotalReviews: 3},
		}, nil)
		reviews.On("LatestForReviewee", mock.Anything, int64(20)).Return(nil, nil)

		page, err := uc.ListForUser(ctx, 20, "job404", 1, 10)
		require.NoError(t, err)
		assert.Empty(t, page.Reviews)
		assert.NotNil(t, page.Reviews)
		assert.Equal(t, int64(0), page.Pagination.TotalRecords)
		assert.Equal(t, 4.2, page.Profile.AverageRating)
		reviews.AssertNotCalled(t, "ListByReviewee", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

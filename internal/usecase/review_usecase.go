package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/logger"
)

type reviewUsecase struct {
	reviewRepo domain.ReviewRepository
	jobRepo    domain.JobRepository
	userRepo   domain.UserRepository
	notifier   domain.Notifier
	now        func() time.Time
}

func NewReviewUsecase(
	reviewRepo domain.ReviewRepository,
	jobRepo domain.JobRepository,
	userRepo domain.UserRepository,
	notifier domain.Notifier,
) domain.ReviewUsecase {
	return &reviewUsecase{
		reviewRepo: reviewRepo,
		jobRepo:    jobRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		now:        time.Now,
	}
}

func (u *reviewUsecase) SubmitReview(ctx context.Context, reviewerID int64, input domain.SubmitReviewInput) (*domain.Review, error) {
	r := input.Ratings
	if r.Communication == nil || r.JobQuality == nil || r.Professionalism == nil {
		return nil, apperror.Validation(map[string][]string{"ratings": {"communication, job_quality and professionalism are required"}})
	}

	job, err := u.jobRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(input.JobCode)))
	if err != nil {
		return nil, notFoundAs(err, "Job not found")
	}
	if job.Status != domain.JobStatusCompleted {
		return nil, apperror.BadRequest("Only completed jobs can be reviewed")
	}
	if job.UserID == reviewerID {
		return nil, apperror.Forbidden("You cannot review your own job")
	}

	review := &domain.Review{
		JobPostID:               job.ID,
		JobCode:                 job.Code,
		ReviewerID:              reviewerID,
		RevieweeID:              job.UserID,
		OverallRating:           input.OverallRating,
		Recommendation:          input.Recommendation,
		CommunicationRating:     *r.Communication,
		JobQualityRating:        *r.JobQuality,
		ProfessionalismRating:   *r.Professionalism,
		JobCompleteSatisfaction: input.JobCompleteSatisfaction,
		Comment:                 input.Comment,
		AverageRating:           domain.RoundTo1((*r.Communication + *r.JobQuality + *r.Professionalism) / 3),
	}
	if err := u.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	if u.notifier != nil {
		msg := "You received a new review for " + job.Title
		if err := u.notifier.Notify(ctx, job.UserID, "New review", msg, domain.NotificationTypeReview); err != nil {
			logger.Log.Warn("review notification failed", "review_id", review.Code, "error", err)
		}
	}
	return review, nil
}

// ListForUser pages the reviews a user received. An unknown job code yields
// an empty page, not an error, so the profile block is still returned.
func (u *reviewUsecase) ListForUser(ctx context.Context, userID int64, jobCode string, page, limit int) (*domain.ReviewPage, error) {
	if _, err := u.userRepo.GetByID(ctx, userID); err != nil {
		return nil, notFoundAs(err, "User not found")
	}
	page, limit = domain.NormalizePage(page, limit)

	var jobPostID *int64
	if code := strings.TrimSpace(jobCode); code != "" {
		job, err := u.jobRepo.GetByCode(ctx, strings.ToUpper(code))
		if errors.Is(err, domain.ErrNotFound) {
			return u.reviewPage(ctx, userID, nil, page, limit, 0)
		}
		if err != nil {
			return nil, err
		}
		jobPostID = &job.ID
	}

	reviews, total, err := u.reviewRepo.ListByReviewee(ctx, userID, jobPostID, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, err
	}
	return u.reviewPage(ctx, userID, reviews, page, limit, total)
}

func (u *reviewUsecase) reviewPage(ctx context.Context, userID int64, reviews []domain.ReviewView, page, limit int, total int64) (*domain.ReviewPage, error) {
	if reviews == nil {
		reviews = []domain.ReviewView{}
	}
	profile, err := u.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.ReviewPage{
		Profile:    profile,
		Reviews:    reviews,
		Pagination: domain.NewPagination(page, limit, total),
	}, nil
}

func (u *reviewUsecase) profile(ctx context.Context, userID int64) (domain.ReviewProfile, error) {
	out := domain.ReviewProfile{UserID: userID}

	aggs, err := u.reviewRepo.AggregateForUsers(ctx, []int64{userID})
	if err != nil {
		return out, err
	}
	if agg, ok := aggs[userID]; ok {
		out.AverageRating = agg.Rating
		out.TotalReviews = agg.TotalReviews
	}

	latest, err := u.reviewRepo.LatestForReviewee(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return out, err
	}
	out.RecentlyReviewed = latest != nil && u.now().Sub(*latest) <= domain.RecentReviewWindow
	return out, nil
}

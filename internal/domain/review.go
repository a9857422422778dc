package domain

import (
	"context"
	"time"
)

type Recommendation string

const (
	Recommended    Recommendation = "recommended"
	NotRecommended Recommendation = "not_recommended"
)

// RecentReviewWindow decides the recently_reviewed badge.
const RecentReviewWindow = 30 * 24 * time.Hour

type Review struct {
	ID                      int64          `json:"-"`
	Code                    string         `json:"review_id"`
	JobPostID               int64          `json:"-"`
	JobCode                 string         `json:"job_id"`
	ReviewerID              int64          `json:"reviewer_id"`
	RevieweeID              int64          `json:"reviewee_id"`
	OverallRating           int            `json:"overall_rating"`
	Recommendation          Recommendation `json:"recommendation"`
	CommunicationRating     float64        `json:"communication_rating"`
	JobQualityRating        float64        `json:"job_quality_rating"`
	ProfessionalismRating   float64        `json:"professionalism_rating"`
	JobCompleteSatisfaction bool           `json:"job_complete_satisfaction"`
	Comment                 *string        `json:"comment"`
	AverageRating           float64        `json:"average_rating"`
	CreatedAt               time.Time      `json:"created_at"`
}

// ReviewView is a review with the reviewer and job it refers to.
type ReviewView struct {
	Review
	ReviewerName     string  `json:"reviewer_name"`
	ReviewerImageURL *string `json:"reviewer_image_url"`
	JobTitle         string  `json:"job_title"`
}

// RatingAggregate is derived from reviews and never stored.
type RatingAggregate struct {
	UserID       int64   `json:"user_id"`
	Rating       float64 `json:"rating"`
	TotalReviews int64   `json:"total_reviews"`
}

type ReviewProfile struct {
	UserID           int64   `json:"user_id"`
	AverageRating    float64 `json:"average_rating"`
	TotalReviews     int64   `json:"total_reviews"`
	RecentlyReviewed bool    `json:"recently_reviewed"`
}

type ReviewPage struct {
	Profile    ReviewProfile `json:"profile"`
	Reviews    []ReviewView  `json:"reviews"`
	Pagination Pagination    `json:"pagination"`
}

type SubReviewRatings struct {
	Communication   *float64 `json:"communication" binding:"required,gte=0,lte=5"`
	JobQuality      *float64 `json:"job_quality" binding:"required,gte=0,lte=5"`
	Professionalism *float64 `json:"professionalism" binding:"required,gte=0,lte=5"`
}

type SubmitReviewInput struct {
	JobCode                 string           `json:"job_id" binding:"required"`
	OverallRating           int              `json:"overall_rating" binding:"required,min=1,max=5"`
	Recommendation          Recommendation   `json:"recommendation" binding:"required,oneof=recommended not_recommended"`
	Ratings                 SubReviewRatings `json:"ratings"`
	JobCompleteSatisfaction bool             `json:"job_complete_satisfaction"`
	Comment                 *string          `json:"comment" binding:"omitempty,max=2000"`
}

// RatingLookup batches rating aggregates by user id.
type RatingLookup interface {
	AggregateForUsers(ctx context.Context, userIDs []int64) (map[int64]RatingAggregate, error)
}

type ReviewRepository interface {
	RatingLookup
	Create(ctx context.Context, review *Review) error
	ListByReviewee(ctx context.Context, revieweeID int64, jobPostID *int64, limit, offset int) ([]ReviewView, int64, error)
	LatestForReviewee(ctx context.Context, revieweeID int64) (*time.Time, error)
}

type ReviewUsecase interface {
	SubmitReview(ctx context.Context, reviewerID int64, input SubmitReviewInput) (*Review, error)
	ListForUser(ctx context.Context, userID int64, jobCode string, page, limit int) (*ReviewPage, error)
}

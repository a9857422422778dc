package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
)

type reviewRepo struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) domain.ReviewRepository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	query := `INSERT INTO reviews (job_post_id, reviewer_id, reviewee_id, overall_rating, recommendation,
	              communication_rating, job_quality_rating, professionalism_rating,
	              job_complete_satisfaction, comment, average_rating, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id, review_code`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		rv.JobPostID, rv.ReviewerID, rv.RevieweeID, rv.OverallRating, rv.Recommendation,
		rv.CommunicationRating, rv.JobQualityRating, rv.ProfessionalismRating,
		rv.JobCompleteSatisfaction, rv.Comment, rv.AverageRating, now,
	).Scan(&rv.ID, &rv.Code)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("You have already reviewed this job")
		}
		return err
	}
	rv.CreatedAt = now
	return nil
}

func (r *reviewRepo) ListByReviewee(ctx context.Context, revieweeID int64, jobPostID *int64, limit, offset int) ([]domain.ReviewView, int64, error) {
	query := `SELECT rv.id, rv.review_code, rv.job_post_id, j.job_code, rv.reviewer_id, rv.reviewee_id,
	                 rv.overall_rating, rv.recommendation,
	                 rv.communication_rating::float8, rv.job_quality_rating::float8, rv.professionalism_rating::float8,
	                 rv.job_complete_satisfaction, rv.comment, rv.average_rating::float8, rv.created_at,
	                 u.name, u.profile_image_url, COALESCE(j.title, '')
	          FROM reviews rv
	          JOIN job_posts j ON j.id = rv.job_post_id
	          JOIN users u ON u.id = rv.reviewer_id
	          WHERE rv.reviewee_id = $1 AND ($2::bigint IS NULL OR rv.job_post_id = $2)
	          ORDER BY rv.created_at DESC, rv.id DESC
	          LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, revieweeID, jobPostID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reviews := []domain.ReviewView{}
	for rows.Next() {
		var v domain.ReviewView
		if err := rows.Scan(
			&v.ID, &v.Code, &v.JobPostID, &v.JobCode, &v.ReviewerID, &v.RevieweeID,
			&v.OverallRating, &v.Recommendation,
			&v.CommunicationRating, &v.JobQualityRating, &v.ProfessionalismRating,
			&v.JobCompleteSatisfaction, &v.Comment, &v.AverageRating, &v.CreatedAt,
			&v.ReviewerName, &v.ReviewerImageURL, &v.JobTitle,
		); err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM reviews WHERE reviewee_id = $1 AND ($2::bigint IS NULL OR job_post_id = $2)`,
		revieweeID, jobPostID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepo) LatestForReviewee(ctx context.Context, revieweeID int64) (*time.Time, error) {
	var latest *time.Time
	err := r.db.QueryRow(ctx, `SELECT MAX(created_at) FROM reviews WHERE reviewee_id = $1`, revieweeID).Scan(&latest)
	return latest, err
}

// AggregateForUsers computes every requested user's rating in one grouped
// scan. Users without reviews are absent from the map.
func (r *reviewRepo) AggregateForUsers(ctx context.Context, userIDs []int64) (map[int64]domain.RatingAggregate, error) {
	out := make(map[int64]domain.RatingAggregate, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT reviewee_id, AVG(overall_rating)::float8, COUNT(*)
		FROM reviews
		WHERE reviewee_id = ANY($1)
		GROUP BY reviewee_id`, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var agg domain.RatingAggregate
		if err := rows.Scan(&agg.UserID, &agg.Rating, &agg.TotalReviews); err != nil {
			return nil, err
		}
		agg.Rating = domain.RoundTo1(agg.Rating)
		out[agg.UserID] = agg
	}
	return out, rows.Err()
}

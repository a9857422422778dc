package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

const jobColumns = `j.id, j.job_code, j.user_id, j.specialization_id, COALESCE(j.title, ''),
	j.company_name, j.start_date, j.duration_value, j.duration_unit,
	j.pay_rate_amount::float8, j.pay_rate_currency, j.pay_rate_type,
	j.location_lat::float8, j.location_lng::float8,
	j.city, j.description, j.is_featured, j.status, j.created_at, j.updated_at`

func jobScanTargets(j *domain.JobPost) []any {
	return []any{
		&j.ID, &j.Code, &j.UserID, &j.SpecializationID, &j.Title,
		&j.CompanyName, &j.StartDate.Time, &j.Duration.Value, &j.Duration.Unit,
		&j.Pay.Amount, &j.Pay.Currency, &j.Pay.Unit,
		&j.Location.Latitude, &j.Location.Longitude,
		&j.City, &j.Description, &j.IsFeatured, &j.Status, &j.CreatedAt, &j.UpdatedAt,
	}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.JobPost, skillIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO job_posts (user_id, specialization_id, title, company_name, start_date,
	              duration_value, duration_unit, pay_rate_amount, pay_rate_currency, pay_rate_type,
	              location_lat, location_lng, city, description, is_featured, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
	          RETURNING id, job_code`
	now := time.Now().UTC()
	err = tx.QueryRow(ctx, query,
		job.UserID, job.SpecializationID, job.Title, job.CompanyName, job.StartDate.Time,
		job.Duration.Value, job.Duration.Unit, job.Pay.Amount, job.Pay.Currency, job.Pay.Unit,
		job.Location.Latitude, job.Location.Longitude, job.City, job.Description, job.IsFeatured, job.Status, now,
	).Scan(&job.ID, &job.Code)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.Unprocessable("Specialization does not exist")
		}
		return err
	}
	if err := replaceJobSkills(ctx, tx, job.ID, skillIDs); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	job.CreatedAt, job.UpdatedAt = now, now
	return nil
}

func replaceJobSkills(ctx context.Context, tx pgx.Tx, jobID int64, skillIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM job_post_skills WHERE job_post_id = $1`, jobID); err != nil {
		return err
	}
	if len(skillIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `INSERT INTO job_post_skills (job_post_id, skill_id)
		SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, jobID, skillIDs)
	return err
}

func (r *jobRepo) GetByCode(ctx context.Context, code string) (*domain.JobPost, error) {
	var job domain.JobPost
	err := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM job_posts j WHERE j.job_code = $1`, code).
		Scan(jobScanTargets(&job)...)
	if err != nil {
		return nil, notFound(err)
	}
	skills, err := r.skillsFor(ctx, []int64{job.ID})
	if err != nil {
		return nil, err
	}
	job.Skills = nonNilSkills(skills[job.ID])
	return &job, nil
}

// skillsFor loads the skills of several postings in one query.
func (r *jobRepo) skillsFor(ctx context.Context, jobIDs []int64) (map[int64][]domain.Skill, error) {
	out := make(map[int64][]domain.Skill, len(jobIDs))
	if len(jobIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT js.job_post_id, s.id, s.code, s.name, s.specialization_id
		FROM job_post_skills js
		JOIN skills s ON s.id = js.skill_id
		WHERE js.job_post_id = ANY($1)
		ORDER BY s.name`, jobIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			jobID int64
			s     domain.Skill
		)
		if err := rows.Scan(&jobID, &s.ID, &s.Code, &s.Name, &s.SpecializationID); err != nil {
			return nil, err
		}
		out[jobID] = append(out[jobID], s)
	}
	return out, rows.Err()
}

func nonNilSkills(s []domain.Skill) []domain.Skill {
	if s == nil {
		return []domain.Skill{}
	}
	return s
}

func (r *jobRepo) ListByOwner(ctx context.Context, ownerID int64, status *domain.JobStatus, limit, offset int) ([]domain.JobPost, int64, error) {
	query := `SELECT ` + jobColumns + ` FROM job_posts j
	          WHERE j.user_id = $1 AND ($2::text IS NULL OR j.status = $2)
	          ORDER BY j.created_at DESC, j.id DESC
	          LIMIT $3 OFFSET $4`

	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.db.Query(ctx, query, ownerID, statusArg, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs := []domain.JobPost{}
	var ids []int64
	for rows.Next() {
		var job domain.JobPost
		if err := rows.Scan(jobScanTargets(&job)...); err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
		ids = append(ids, job.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	skills, err := r.skillsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range jobs {
		jobs[i].Skills = nonNilSkills(skills[jobs[i].ID])
	}

	var total int64
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_posts WHERE user_id = $1 AND ($2::text IS NULL OR status = $2)`,
		ownerID, statusArg,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// Update writes every editable column. A nil skillIDs leaves tags untouched.
func (r *jobRepo) Update(ctx context.Context, job *domain.JobPost, skillIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `UPDATE job_posts SET
		specialization_id = $2,
		title = $3,
		company_name = $4,
		start_date = $5,
		duration_value = $6,
		duration_unit = $7,
		pay_rate_amount = $8,
		pay_rate_currency = $9,
		pay_rate_type = $10,
		location_lat = $11,
		location_lng = $12,
		city = $13,
		description = $14,
		is_featured = $15,
		updated_at = now()
	WHERE id = $1
	RETURNING updated_at`
	err = tx.QueryRow(ctx, query,
		job.ID, job.SpecializationID, job.Title, job.CompanyName, job.StartDate.Time,
		job.Duration.Value, job.Duration.Unit, job.Pay.Amount, job.Pay.Currency, job.Pay.Unit,
		job.Location.Latitude, job.Location.Longitude, job.City, job.Description, job.IsFeatured,
	).Scan(&job.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.Unprocessable("Specialization does not exist")
		}
		return notFound(err)
	}
	if skillIDs != nil {
		if err := replaceJobSkills(ctx, tx, job.ID, skillIDs); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *jobRepo) UpdateStatus(ctx context.Context, id int64, status domain.JobStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE job_posts SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM job_posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *jobRepo) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.JobSearchRow, int64, error) {
	q := buildJobSearchQuery(filter)

	var total int64
	if err := r.db.QueryRow(ctx, q.CountSQL, q.CountArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []domain.JobSearchRow{}
	for rows.Next() {
		var (
			row       domain.JobSearchRow
			available bool
		)
		targets := append(jobScanTargets(&row.JobPost), &available, &row.DistanceMiles)
		if err := rows.Scan(targets...); err != nil {
			return nil, 0, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

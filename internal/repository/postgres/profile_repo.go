package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetLaborer(ctx context.Context, userID int64) (*domain.LaborerDetails, error) {
	var d domain.LaborerDetails
	err := r.db.QueryRow(ctx, `SELECT user_id, specialization_id, custom_specialization, experience_level,
		age, gender, has_insurance, background_check_completed, looking_for_apprenticeship,
		trade_school_name, trade_school_program_year, profile_completion, updated_at
		FROM laborers WHERE user_id = $1`, userID,
	).Scan(&d.UserID, &d.SpecializationID, &d.CustomSpecialization, &d.ExperienceLevel,
		&d.Age, &d.Gender, &d.HasInsurance, &d.BackgroundCheckCompleted, &d.LookingForApprenticeship,
		&d.TradeSchoolName, &d.TradeSchoolProgramYear, &d.ProfileCompletion, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *profileRepo) UpsertLaborer(ctx context.Context, d *domain.LaborerDetails) error {
	query := `INSERT INTO laborers (user_id, specialization_id, custom_specialization, experience_level,
	              age, gender, has_insurance, background_check_completed, looking_for_apprenticeship,
	              trade_school_name, trade_school_program_year, profile_completion)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          ON CONFLICT (user_id) DO UPDATE SET
	              specialization_id = EXCLUDED.specialization_id,
	              custom_specialization = EXCLUDED.custom_specialization,
	              experience_level = EXCLUDED.experience_level,
	              age = EXCLUDED.age,
	              gender = EXCLUDED.gender,
	              has_insurance = EXCLUDED.has_insurance,
	              background_check_completed = EXCLUDED.background_check_completed,
	              looking_for_apprenticeship = EXCLUDED.looking_for_apprenticeship,
	              trade_school_name = EXCLUDED.trade_school_name,
	              trade_school_program_year = EXCLUDED.trade_school_program_year,
	              profile_completion = EXCLUDED.profile_completion,
	              updated_at = now()
	          RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		d.UserID, d.SpecializationID, d.CustomSpecialization, d.ExperienceLevel,
		d.Age, d.Gender, d.HasInsurance, d.BackgroundCheckCompleted, d.LookingForApprenticeship,
		d.TradeSchoolName, d.TradeSchoolProgramYear, d.ProfileCompletion,
	).Scan(&d.UpdatedAt)
	if err != nil && isForeignKeyViolation(err) {
		return apperror.Unprocessable("Specialization does not exist")
	}
	return err
}

func (r *profileRepo) GetContractor(ctx context.Context, userID int64) (*domain.ContractorDetails, error) {
	var d domain.ContractorDetails
	err := r.db.QueryRow(ctx, `SELECT user_id, insurance_file_url, job_requirements, profile_completion, updated_at
		FROM contractors WHERE user_id = $1`, userID,
	).Scan(&d.UserID, &d.InsuranceFileURL, &d.JobRequirements, &d.ProfileCompletion, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *profileRepo) UpsertContractor(ctx context.Context, d *domain.ContractorDetails) error {
	reqs := d.JobRequirements
	if reqs == nil {
		reqs = []string{}
	}
	query := `INSERT INTO contractors (user_id, insurance_file_url, job_requirements, profile_completion)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id) DO UPDATE SET
	              insurance_file_url = EXCLUDED.insurance_file_url,
	              job_requirements = EXCLUDED.job_requirements,
	              profile_completion = EXCLUDED.profile_completion,
	              updated_at = now()
	          RETURNING updated_at`
	return r.db.QueryRow(ctx, query, d.UserID, d.InsuranceFileURL, pq.Array(reqs), d.ProfileCompletion).
		Scan(&d.UpdatedAt)
}

func (r *profileRepo) GetSubcontractor(ctx context.Context, userID int64) (*domain.SubcontractorDetails, error) {
	var d domain.SubcontractorDetails
	err := r.db.QueryRow(ctx, `SELECT user_id, insurance_file_url, profile_completion, updated_at
		FROM subcontractors WHERE user_id = $1`, userID,
	).Scan(&d.UserID, &d.InsuranceFileURL, &d.ProfileCompletion, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *profileRepo) UpsertSubcontractor(ctx context.Context, d *domain.SubcontractorDetails) error {
	query := `INSERT INTO subcontractors (user_id, insurance_file_url, profile_completion)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (user_id) DO UPDATE SET
	              insurance_file_url = EXCLUDED.insurance_file_url,
	              profile_completion = EXCLUDED.profile_completion,
	              updated_at = now()
	          RETURNING updated_at`
	return r.db.QueryRow(ctx, query, d.UserID, d.InsuranceFileURL, d.ProfileCompletion).Scan(&d.UpdatedAt)
}

func (r *profileRepo) GetApprentice(ctx context.Context, userID int64) (*domain.ApprenticeDetails, error) {
	var d domain.ApprenticeDetails
	err := r.db.QueryRow(ctx, `SELECT user_id, trade_interest_id, trade_school_name, current_program_year,
		experience_level, profile_completion, updated_at
		FROM apprentices WHERE user_id = $1`, userID,
	).Scan(&d.UserID, &d.TradeInterestID, &d.TradeSchoolName, &d.CurrentProgramYear,
		&d.ExperienceLevel, &d.ProfileCompletion, &d.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (r *profileRepo) UpsertApprentice(ctx context.Context, d *domain.ApprenticeDetails) error {
	query := `INSERT INTO apprentices (user_id, trade_interest_id, trade_school_name, current_program_year,
	              experience_level, profile_completion)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (user_id) DO UPDATE SET
	              trade_interest_id = EXCLUDED.trade_interest_id,
	              trade_school_name = EXCLUDED.trade_school_name,
	              current_program_year = EXCLUDED.current_program_year,
	              experience_level = EXCLUDED.experience_level,
	              profile_completion = EXCLUDED.profile_completion,
	              updated_at = now()
	          RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		d.UserID, d.TradeInterestID, d.TradeSchoolName, d.CurrentProgramYear, d.ExperienceLevel, d.ProfileCompletion,
	).Scan(&d.UpdatedAt)
	if err != nil && isForeignKeyViolation(err) {
		return apperror.Unprocessable("Trade interest does not exist")
	}
	return err
}

package domain

import (
	"context"
	"time"
)

type LaborerDetails struct {
	UserID                   int64     `json:"user_id"`
	SpecializationID         *int64    `json:"specialization_id"`
	CustomSpecialization     *string   `json:"custom_specialization"`
	ExperienceLevel          *string   `json:"experience_level"`
	Age                      *int      `json:"age"`
	Gender                   *string   `json:"gender"`
	HasInsurance             bool      `json:"has_insurance"`
	BackgroundCheckCompleted bool      `json:"background_check_completed"`
	LookingForApprenticeship bool      `json:"looking_for_apprenticeship"`
	TradeSchoolName          *string   `json:"trade_school_name"`
	TradeSchoolProgramYear   *string   `json:"trade_school_program_year"`
	ProfileCompletion        bool      `json:"profile_completion"`
	UpdatedAt                time.Time `json:"updated_at"`
}

type ContractorDetails struct {
	UserID            int64     `json:"user_id"`
	InsuranceFileURL  *string   `json:"insurance_file_url"`
	JobRequirements   []string  `json:"job_requirements"`
	ProfileCompletion bool      `json:"profile_completion"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type SubcontractorDetails struct {
	UserID            int64     `json:"user_id"`
	InsuranceFileURL  *string   `json:"insurance_file_url"`
	ProfileCompletion bool      `json:"profile_completion"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ApprenticeDetails struct {
	UserID             int64     `json:"user_id"`
	TradeInterestID    *int64    `json:"trade_interest_id"`
	TradeSchoolName    *string   `json:"trade_school_name"`
	CurrentProgramYear *string   `json:"current_program_year"`
	ExperienceLevel    *string   `json:"experience_level"`
	ProfileCompletion  bool      `json:"profile_completion"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// RoleProfile carries exactly one populated detail record, matching the
// user's type.
type RoleProfile struct {
	User          *User                 `json:"user"`
	Laborer       *LaborerDetails       `json:"laborer,omitempty"`
	Contractor    *ContractorDetails    `json:"contractor,omitempty"`
	Subcontractor *SubcontractorDetails `json:"subcontractor,omitempty"`
	Apprentice    *ApprenticeDetails    `json:"apprentice,omitempty"`
}

type UpdateLaborerInput struct {
	SpecializationID         *int64  `json:"specialization_id" binding:"omitempty,gt=0"`
	CustomSpecialization     *string `json:"custom_specialization" binding:"omitempty,max=100"`
	ExperienceLevel          *string `json:"experience_level" binding:"omitempty,max=50"`
	Age                      *int    `json:"age" binding:"omitempty,min=14,max=100"`
	Gender                   *string `json:"gender" binding:"omitempty,oneof=male female other"`
	HasInsurance             *bool   `json:"has_insurance"`
	BackgroundCheckCompleted *bool   `json:"background_check_completed"`
	LookingForApprenticeship *bool   `json:"looking_for_apprenticeship"`
	TradeSchoolName          *string `json:"trade_school_name" binding:"omitempty,max=150"`
	TradeSchoolProgramYear   *string `json:"trade_school_program_year" binding:"omitempty,max=50"`
}

// LaborerFlag names a single boolean toggle on the laborer record.
type LaborerFlag string

const (
	FlagHasInsurance             LaborerFlag = "has_insurance"
	FlagBackgroundCheckCompleted LaborerFlag = "background_check_completed"
	FlagLookingForApprenticeship LaborerFlag = "looking_for_apprenticeship"
)

func (f LaborerFlag) Valid() bool {
	switch f {
	case FlagHasInsurance, FlagBackgroundCheckCompleted, FlagLookingForApprenticeship:
		return true
	}
	return false
}

type UpdateContractorInput struct {
	JobRequirements []string `form:"job_requirements" binding:"omitempty,dive,required,max=100"`
}

type UpdateApprenticeInput struct {
	TradeInterestID    *int64  `json:"trade_interest_id" binding:"omitempty,gt=0"`
	TradeSchoolName    *string `json:"trade_school_name" binding:"omitempty,max=150"`
	CurrentProgramYear *string `json:"current_program_year" binding:"omitempty,max=50"`
	ExperienceLevel    *string `json:"experience_level" binding:"omitempty,max=50"`
}

type ProfileRepository interface {
	GetLaborer(ctx context.Context, userID int64) (*LaborerDetails, error)
	UpsertLaborer(ctx context.Context, d *LaborerDetails) error
	GetContractor(ctx context.Context, userID int64) (*ContractorDetails, error)
	UpsertContractor(ctx context.Context, d *ContractorDetails) error
	GetSubcontractor(ctx context.Context, userID int64) (*SubcontractorDetails, error)
	UpsertSubcontractor(ctx context.Context, d *SubcontractorDetails) error
	GetApprentice(ctx context.Context, userID int64) (*ApprenticeDetails, error)
	UpsertApprentice(ctx context.Context, d *ApprenticeDetails) error
}

type ProfileUsecase interface {
	GetMyProfile(ctx context.Context, userID int64) (*RoleProfile, error)
	UpdateLaborer(ctx context.Context, userID int64, input UpdateLaborerInput) (*LaborerDetails, error)
	SetLaborerFlag(ctx context.Context, userID int64, flag LaborerFlag, value bool) (*LaborerDetails, error)
	UpdateContractor(ctx context.Context, userID int64, input UpdateContractorInput, insurance *FileUpload) (*ContractorDetails, error)
	UpdateSubcontractor(ctx context.Context, userID int64, insurance *FileUpload) (*SubcontractorDetails, error)
	UpdateApprentice(ctx context.Context, userID int64, input UpdateApprenticeInput) (*ApprenticeDetails, error)
	UpdateExperienceLevel(ctx context.Context, userID int64, level string) (*ApprenticeDetails, error)
}

// ApprenticeProfile is the public card a worker shows to hirers.
type ApprenticeProfile struct {
	ID                  int64     `json:"-"`
	Code                string    `json:"profile_id"`
	UserID              int64     `json:"user_id"`
	Name                string    `json:"name"`
	PositionSeeking     string    `json:"position_seeking"`
	Age                 *int      `json:"age"`
	Latitude            *float64  `json:"latitude"`
	Longitude           *float64  `json:"longitude"`
	City                *string   `json:"city"`
	LocationText        *string   `json:"location_text"`
	EducationExperience *string   `json:"education_experience"`
	TradeSchool         *string   `json:"trade_school"`
	AboutMe             *string   `json:"about_me"`
	ResumeURL           *string   `json:"resume_url"`
	ProfileVisible      bool      `json:"profile_visible"`
	DistanceMiles       *int      `json:"distance_miles,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type ApprenticeProfileInput struct {
	PositionSeeking     *string  `form:"position_seeking" binding:"omitempty,min=1,max=150"`
	Age                 *int     `form:"age" binding:"omitempty,min=14,max=100"`
	Latitude            *float64 `form:"latitude" binding:"omitempty,latitude"`
	Longitude           *float64 `form:"longitude" binding:"omitempty,longitude"`
	City                *string  `form:"city" binding:"omitempty,max=100"`
	LocationText        *string  `form:"location_text" binding:"omitempty,max=150"`
	EducationExperience *string  `form:"education_experience" binding:"omitempty,max=255"`
	TradeSchool         *string  `form:"trade_school" binding:"omitempty,max=150"`
	AboutMe             *string  `form:"about_me" binding:"omitempty,max=5000"`
	ProfileVisible      *bool    `form:"profile_visible"`
}

type ApprenticeProfileRepository interface {
	Create(ctx context.Context, p *ApprenticeProfile) error
	GetByUserID(ctx context.Context, userID int64) (*ApprenticeProfile, error)
	Update(ctx context.Context, p *ApprenticeProfile) error
	SoftDelete(ctx context.Context, id int64) error
	ListVisible(ctx context.Context, near *NearbyFilter, limit, offset int) ([]ApprenticeProfile, int64, error)
}

type ApprenticeProfileUsecase interface {
	CreateProfile(ctx context.Context, userID int64, input ApprenticeProfileInput, resume *FileUpload) (*ApprenticeProfile, error)
	UpdateProfile(ctx context.Context, userID int64, input ApprenticeProfileInput, resume *FileUpload) (*ApprenticeProfile, error)
	GetMyProfile(ctx context.Context, userID int64) (*ApprenticeProfile, error)
	DeleteProfile(ctx context.Context, userID int64) error
	ListProfiles(ctx context.Context, hirerID int64, radiusMiles *float64, page, limit int) ([]ApprenticeProfile, Pagination, error)
}

package domain

import (
	"context"
	"time"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusActive, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusActive, JobStatusCancelled},
	JobStatusActive:  {JobStatusCompleted, JobStatusCancelled},
}

// CanTransitionTo reports whether a posting may move from s to next.
// Completed and cancelled are terminal.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PayUnit string

const (
	PayUnitHour  PayUnit = "hour"
	PayUnitDay   PayUnit = "day"
	PayUnitWeek  PayUnit = "week"
	PayUnitMonth PayUnit = "month"
)

func (u PayUnit) Valid() bool {
	switch u {
	case PayUnitHour, PayUnitDay, PayUnitWeek, PayUnitMonth:
		return true
	}
	return false
}

type DurationUnit string

const (
	DurationDays   DurationUnit = "days"
	DurationWeeks  DurationUnit = "weeks"
	DurationMonths DurationUnit = "months"
)

func (u DurationUnit) Valid() bool {
	switch u {
	case DurationDays, DurationWeeks, DurationMonths:
		return true
	}
	return false
}

const DefaultCurrency = "USD"

type Pay struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Unit     PayUnit `json:"unit"`
}

type Duration struct {
	Value int          `json:"value"`
	Unit  DurationUnit `json:"unit"`
}

type JobPost struct {
	ID               int64     `json:"-"`
	Code             string    `json:"job_id"`
	UserID           int64     `json:"owner_id"`
	SpecializationID int64     `json:"specialization_id"`
	Title            string    `json:"title"`
	CompanyName      *string   `json:"company_name"`
	StartDate        Date      `json:"start_date"`
	Duration         Duration  `json:"duration"`
	Pay              Pay       `json:"pay"`
	Location         GeoPoint  `json:"location"`
	City             *string   `json:"city"`
	Description      string    `json:"description"`
	IsFeatured       bool      `json:"is_featured"`
	Status           JobStatus `json:"status"`
	Skills           []Skill   `json:"skills"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type PayInput struct {
	Amount   *float64 `json:"amount" binding:"required,gte=0"`
	Currency string   `json:"currency" binding:"omitempty,iso4217"`
	Unit     PayUnit  `json:"unit" binding:"required,pay_unit"`
}

type DurationInput struct {
	Value int          `json:"value" binding:"required,min=1,max=520"`
	Unit  DurationUnit `json:"unit" binding:"required,duration_unit"`
}

type JobLocationInput struct {
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
	City      *string  `json:"city" binding:"omitempty,max=100"`
}

type CreateJobInput struct {
	SkillCodes       []string         `json:"skills" binding:"required,min=1,dive,required"`
	SpecializationID int64            `json:"specialization_id" binding:"required,gt=0"`
	Title            string           `json:"title" binding:"required,max=150"`
	CompanyName      *string          `json:"company_name" binding:"omitempty,max=150"`
	StartDate        *Date            `json:"start_date" binding:"required"`
	Duration         DurationInput    `json:"duration"`
	Pay              PayInput         `json:"pay"`
	Location         JobLocationInput `json:"location"`
	Description      string           `json:"description" binding:"required,max=5000"`
	IsFeatured       bool             `json:"is_featured"`
}

// UpdateJobInput is a partial edit; nil fields are left unchanged.
type UpdateJobInput struct {
	SkillCodes       []string          `json:"skills" binding:"omitempty,min=1,dive,required"`
	SpecializationID *int64            `json:"specialization_id" binding:"omitempty,gt=0"`
	Title            *string           `json:"title" binding:"omitempty,min=1,max=150"`
	CompanyName      *string           `json:"company_name" binding:"omitempty,max=150"`
	StartDate        *Date             `json:"start_date"`
	Duration         *DurationInput    `json:"duration"`
	Pay              *PayInput         `json:"pay"`
	Location         *JobLocationInput `json:"location"`
	Description      *string           `json:"description" binding:"omitempty,min=1,max=5000"`
	IsFeatured       *bool             `json:"is_featured"`
}

type JobRepository interface {
	Create(ctx context.Context, job *JobPost, skillIDs []int64) error
	GetByCode(ctx context.Context, code string) (*JobPost, error)
	ListByOwner(ctx context.Context, ownerID int64, status *JobStatus, limit, offset int) ([]JobPost, int64, error)
	Update(ctx context.Context, job *JobPost, skillIDs []int64) error
	UpdateStatus(ctx context.Context, id int64, status JobStatus) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter SearchFilter) ([]JobSearchRow, int64, error)
}

type JobUsecase interface {
	CreateJob(ctx context.Context, ownerID int64, input CreateJobInput) (*JobPost, error)
	GetJob(ctx context.Context, code string) (*JobPost, error)
	ListMyJobs(ctx context.Context, ownerID int64, status *JobStatus, page, limit int) ([]JobPost, Pagination, error)
	UpdateJob(ctx context.Context, ownerID int64, code string, input UpdateJobInput) (*JobPost, error)
	UpdateStatus(ctx context.Context, ownerID int64, code string, status JobStatus) (*JobPost, error)
	DeleteJob(ctx context.Context, ownerID int64, code string) error
	SearchJobs(ctx context.Context, filter SearchFilter) (*SearchPage, error)
	ExportMyJobs(ctx context.Context, ownerID int64) ([]byte, error)
}

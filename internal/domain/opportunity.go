package domain

import (
	"context"
	"time"
)

type Opportunity struct {
	ID               int64     `json:"-"`
	Code             string    `json:"opportunity_id"`
	UserID           int64     `json:"owner_id"`
	Title            string    `json:"title"`
	SkillsNeeded     []string  `json:"skills_needed"`
	StartDate        Date      `json:"start_date"`
	DurationWeeks    int       `json:"duration_weeks"`
	CompensationPaid bool      `json:"compensation_paid"`
	TotalPayOffering *float64  `json:"total_pay_offering"`
	Location         GeoPoint  `json:"location"`
	City             string    `json:"city"`
	Description      string    `json:"description"`
	DistanceMiles    *int      `json:"distance_miles,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CreateOpportunityInput struct {
	SkillsNeeded     []string         `json:"skills_needed" binding:"required,min=1,dive,required,max=100"`
	StartDate        *Date            `json:"start_date" binding:"required"`
	DurationWeeks    int              `json:"duration_weeks" binding:"required,min=1,max=260"`
	CompensationPaid bool             `json:"compensation_paid"`
	TotalPayOffering *float64         `json:"total_pay_offering"`
	Location         JobLocationInput `json:"location"`
	Description      string           `json:"description" binding:"required,max=5000"`
}

type UpdateOpportunityInput struct {
	SkillsNeeded     []string          `json:"skills_needed" binding:"omitempty,min=1,dive,required,max=100"`
	StartDate        *Date             `json:"start_date"`
	DurationWeeks    *int              `json:"duration_weeks" binding:"omitempty,min=1,max=260"`
	CompensationPaid *bool             `json:"compensation_paid"`
	TotalPayOffering *float64          `json:"total_pay_offering" binding:"omitempty,gte=0"`
	Location         *JobLocationInput `json:"location"`
	Description      *string           `json:"description" binding:"omitempty,min=1,max=5000"`
}

// NearbyFilter restricts a listing to rows within RadiusMiles of Origin.
type NearbyFilter struct {
	Origin      GeoPoint
	RadiusMiles float64
}

type OpportunityRepository interface {
	Create(ctx context.Context, o *Opportunity) error
	GetByCode(ctx context.Context, code string) (*Opportunity, error)
	List(ctx context.Context, near *NearbyFilter, limit, offset int) ([]Opportunity, int64, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]Opportunity, int64, error)
	Update(ctx context.Context, o *Opportunity) error
	SoftDelete(ctx context.Context, id int64) error
}

type OpportunityUsecase interface {
	PostOpportunity(ctx context.Context, ownerID int64, input CreateOpportunityInput) (*Opportunity, error)
	ListOpportunities(ctx context.Context, near *NearbyFilter, page, limit int) ([]Opportunity, Pagination, error)
	ListMyOpportunities(ctx context.Context, ownerID int64, page, limit int) ([]Opportunity, Pagination, error)
	UpdateOpportunity(ctx context.Context, ownerID int64, code string, input UpdateOpportunityInput) (*Opportunity, error)
	DeleteOpportunity(ctx context.Context, ownerID int64, code string) error
}

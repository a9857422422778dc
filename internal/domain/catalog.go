package domain

import (
	"context"
	"time"
)

const CatalogCacheTTL = 10 * time.Minute

type Specialization struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Skill struct {
	ID               int64  `json:"-"`
	Code             string `json:"skill_id"`
	Name             string `json:"name"`
	SpecializationID *int64 `json:"specialization_id,omitempty"`
}

type JobRequirement struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type TradeInterest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CatalogItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CatalogRepository interface {
	Specializations(ctx context.Context) ([]Specialization, error)
	SpecializationExists(ctx context.Context, id int64) (bool, error)
	Skills(ctx context.Context, specializationID *int64) ([]Skill, error)
	SkillsByCodes(ctx context.Context, codes []string) ([]Skill, error)
	JobRequirements(ctx context.Context) ([]JobRequirement, error)
	TradeInterests(ctx context.Context) ([]TradeInterest, error)
	ListingCategories(ctx context.Context) ([]CatalogItem, error)
	ListingConditions(ctx context.Context) ([]CatalogItem, error)
}

// Cache stores JSON-serializable values with a TTL. A miss is (false, nil).
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type CatalogUsecase interface {
	Specializations(ctx context.Context) ([]Specialization, error)
	Skills(ctx context.Context, specializationID *int64) ([]Skill, error)
	JobRequirements(ctx context.Context) ([]JobRequirement, error)
	TradeInterests(ctx context.Context) ([]TradeInterest, error)
	ListingCategories(ctx context.Context) ([]CatalogItem, error)
	ListingConditions(ctx context.Context) ([]CatalogItem, error)
}

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100,no_emoji"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

type ContactUsecase interface {
	SendContactMessage(ctx context.Context, req *ContactRequest) error
}

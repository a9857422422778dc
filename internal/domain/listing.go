package domain

import (
	"context"
	"time"
)

type ListingStatus string

const (
	ListingStatusActive   ListingStatus = "active"
	ListingStatusInactive ListingStatus = "inactive"
	ListingStatusSold     ListingStatus = "sold"
)

const MaxListingImages = 5

type Listing struct {
	ID            int64          `json:"-"`
	Code          string         `json:"listing_id"`
	UserID        int64          `json:"seller_id"`
	Title         string         `json:"title"`
	CategoryID    int64          `json:"category_id"`
	CategoryName  string         `json:"category"`
	ConditionID   int64          `json:"condition_id"`
	ConditionName string         `json:"condition"`
	Price         float64        `json:"price"`
	Currency      string         `json:"currency"`
	LocationName  string         `json:"location"`
	Latitude      *float64       `json:"latitude"`
	Longitude     *float64       `json:"longitude"`
	Description   *string        `json:"description"`
	Status        ListingStatus  `json:"status"`
	IsFeatured    bool           `json:"is_featured"`
	SellerName    string         `json:"-"`
	Images        []ListingImage `json:"images"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type ListingImage struct {
	ID         int64  `json:"-"`
	Code       string `json:"image_id"`
	ListingID  int64  `json:"-"`
	StorageKey string `json:"-"`
	URL        string `json:"url"`
	SortOrder  int    `json:"-"`
}

type Seller struct {
	UserID       int64   `json:"user_id"`
	Name         string  `json:"name"`
	Rating       float64 `json:"rating"`
	TotalReviews int64   `json:"total_reviews"`
}

type ListingView struct {
	Listing
	Seller Seller `json:"seller"`
}

type ListingFilter struct {
	Search      string   `form:"search" binding:"omitempty,max=100"`
	CategoryID  *int64   `form:"category_id" binding:"omitempty,gt=0"`
	ConditionID *int64   `form:"condition_id" binding:"omitempty,gt=0"`
	MinPrice    *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice    *float64 `form:"max_price" binding:"omitempty,gte=0"`
	Page        int      `form:"page" binding:"omitempty,min=1"`
	Limit       int      `form:"limit" binding:"omitempty,min=1"`
}

type CreateListingInput struct {
	Title        string   `form:"title" binding:"required,max=150"`
	CategoryID   int64    `form:"category_id" binding:"required,gt=0"`
	ConditionID  int64    `form:"condition_id" binding:"required,gt=0"`
	Price        *float64 `form:"price" binding:"required,gte=0"`
	LocationName string   `form:"location" binding:"required,max=150"`
	Latitude     *float64 `form:"latitude" binding:"omitempty,latitude"`
	Longitude    *float64 `form:"longitude" binding:"omitempty,longitude"`
	Description  *string  `form:"description" binding:"omitempty,max=5000"`
}

// UpdateListingInput is a partial edit; RemoveImageIDs drops existing images
// before new uploads are appended.
type UpdateListingInput struct {
	Title          *string        `form:"title" binding:"omitempty,min=1,max=150"`
	CategoryID     *int64         `form:"category_id" binding:"omitempty,gt=0"`
	ConditionID    *int64         `form:"condition_id" binding:"omitempty,gt=0"`
	Price          *float64       `form:"price" binding:"omitempty,gte=0"`
	LocationName   *string        `form:"location" binding:"omitempty,min=1,max=150"`
	Latitude       *float64       `form:"latitude" binding:"omitempty,latitude"`
	Longitude      *float64       `form:"longitude" binding:"omitempty,longitude"`
	Description    *string        `form:"description" binding:"omitempty,max=5000"`
	Status         *ListingStatus `form:"status" binding:"omitempty,oneof=active inactive sold"`
	RemoveImageIDs []string       `form:"remove_image_ids"`
}

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	GetByCode(ctx context.Context, code string) (*Listing, error)
	List(ctx context.Context, filter ListingFilter, limit, offset int) ([]Listing, int64, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]Listing, int64, error)
	Update(ctx context.Context, listing *Listing) error
	AddImages(ctx context.Context, listingID int64, images []ListingImage) error
	RemoveImages(ctx context.Context, listingID int64, imageCodes []string) ([]ListingImage, error)
	Delete(ctx context.Context, id int64) error
}

type ListingUsecase interface {
	CreateListing(ctx context.Context, userID int64, input CreateListingInput, images []FileUpload) (*Listing, error)
	UpdateListing(ctx context.Context, userID int64, code string, input UpdateListingInput, images []FileUpload) (*Listing, error)
	DeleteListing(ctx context.Context, userID int64, code string) error
	ListListings(ctx context.Context, filter ListingFilter) ([]ListingView, Pagination, error)
	ListMyListings(ctx context.Context, userID int64, page, limit int) ([]Listing, Pagination, error)
	GetListing(ctx context.Context, code string) (*ListingView, error)
}

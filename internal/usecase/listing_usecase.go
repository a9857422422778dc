package usecase

import (
	"context"
	"fmt"
	"strings"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
	"go-trades-backend/pkg/logger"
	"go-trades-backend/pkg/security"
	"go-trades-backend/pkg/security/antivirus"
)

type listingUsecase struct {
	listingRepo domain.ListingRepository
	ratings     domain.RatingLookup
	files       fileStore
}

func NewListingUsecase(
	listingRepo domain.ListingRepository,
	ratings domain.RatingLookup,
	storage domain.FileStorage,
	guard domain.UploadGuard,
	scanner antivirus.Scanner,
) domain.ListingUsecase {
	return &listingUsecase{
		listingRepo: listingRepo,
		ratings:     ratings,
		files:       newFileStore(storage, guard, scanner),
	}
}

func checkListingLocation(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return apperror.Validation(map[string][]string{"location": {"latitude and longitude must be sent together"}})
	}
	return nil
}

func (u *listingUsecase) CreateListing(ctx context.Context, userID int64, input domain.CreateListingInput, images []domain.FileUpload) (*domain.Listing, error) {
	if len(images) > domain.MaxListingImages {
		return nil, apperror.Validation(map[string][]string{"images": {fmt.Sprintf("at most %d images are allowed", domain.MaxListingImages)}})
	}
	if input.Price == nil || *input.Price < 0 {
		return nil, apperror.Validation(map[string][]string{"price": {"must be zero or more"}})
	}
	if err := checkListingLocation(input.Latitude, input.Longitude); err != nil {
		return nil, err
	}

	stored, err := u.upload(ctx, userID, images)
	if err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		UserID:       userID,
		Title:        strings.TrimSpace(input.Title),
		CategoryID:   input.CategoryID,
		ConditionID:  input.ConditionID,
		Price:        *input.Price,
		Currency:     domain.DefaultCurrency,
		LocationName: strings.TrimSpace(input.LocationName),
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Description:  input.Description,
		Status:       domain.ListingStatusActive,
	}
	if err := u.listingRepo.Create(ctx, listing); err != nil {
		u.discard(ctx, stored)
		return nil, err
	}

	listing.Images = imagesFrom(stored)
	if err := u.listingRepo.AddImages(ctx, listing.ID, listing.Images); err != nil {
		u.discard(ctx, stored)
		if delErr := u.listingRepo.Delete(context.WithoutCancel(ctx), listing.ID); delErr != nil {
			logger.Log.Error("failed to roll back listing", "listing_id", listing.Code, "error", delErr)
		}
		return nil, err
	}
	return listing, nil
}

func (u *listingUsecase) upload(ctx context.Context, userID int64, images []domain.FileUpload) ([]storedFile, error) {
	if len(images) == 0 {
		return nil, nil
	}
	if err := u.files.allow(ctx, userID, len(images)); err != nil {
		return nil, err
	}
	return u.files.saveAll(ctx, fmt.Sprintf("listings/%d", userID), "images", images, security.KindImage)
}

func (u *listingUsecase) discard(ctx context.Context, stored []storedFile) {
	for _, f := range stored {
		u.files.remove(context.WithoutCancel(ctx), f.Key)
	}
}

func imagesFrom(stored []storedFile) []domain.ListingImage {
	out := make([]domain.ListingImage, len(stored))
	for i, f := range stored {
		out[i] = domain.ListingImage{StorageKey: f.Key, URL: f.URL}
	}
	return out
}

func (u *listingUsecase) owned(ctx context.Context, userID int64, code string) (*domain.Listing, error) {
	listing, err := u.listingRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, notFoundAs(err, "Listing not found")
	}
	if listing.UserID != userID {
		return nil, apperror.Forbidden("You do not own this listing")
	}
	return listing, nil
}

func (u *listingUsecase) UpdateListing(ctx context.Context, userID int64, code string, input domain.UpdateListingInput, images []domain.FileUpload) (*domain.Listing, error) {
	listing, err := u.owned(ctx, userID, code)
	if err != nil {
		return nil, err
	}
	if err := checkListingLocation(input.Latitude, input.Longitude); err != nil {
		return nil, err
	}

	removing := 0
	current := map[string]bool{}
	for _, img := range listing.Images {
		current[img.Code] = true
	}
	for _, id := range input.RemoveImageIDs {
		if current[id] {
			removing++
		}
	}
	if len(listing.Images)-removing+len(images) > domain.MaxListingImages {
		return nil, apperror.Validation(map[string][]string{"images": {fmt.Sprintf("a listing can have at most %d images", domain.MaxListingImages)}})
	}

	if input.Title != nil {
		listing.Title = strings.TrimSpace(*input.Title)
	}
	if input.CategoryID != nil {
		listing.CategoryID = *input.CategoryID
	}
	if input.ConditionID != nil {
		listing.ConditionID = *input.ConditionID
	}
	if input.Price != nil {
		listing.Price = *input.Price
	}
	if input.LocationName != nil {
		listing.LocationName = strings.TrimSpace(*input.LocationName)
	}
	if input.Latitude != nil {
		listing.Latitude, listing.Longitude = input.Latitude, input.Longitude
	}
	if input.Description != nil {
		listing.Description = trimmedOrNil(*input.Description)
	}
	if input.Status != nil {
		listing.Status = *input.Status
	}

	stored, err := u.upload(ctx, userID, images)
	if err != nil {
		return nil, err
	}
	if err := u.listingRepo.Update(ctx, listing); err != nil {
		u.discard(ctx, stored)
		return nil, notFoundAs(err, "Listing not found")
	}

	removed, err := u.listingRepo.RemoveImages(ctx, listing.ID, input.RemoveImageIDs)
	if err != nil {
		u.discard(ctx, stored)
		return nil, err
	}
	for _, img := range removed {
		u.files.remove(context.WithoutCancel(ctx), img.StorageKey)
	}

	added := imagesFrom(stored)
	if err := u.listingRepo.AddImages(ctx, listing.ID, added); err != nil {
		u.discard(ctx, stored)
		return nil, err
	}

	kept := make([]domain.ListingImage, 0, len(listing.Images)+len(added))
	gone := map[int64]bool{}
	for _, img := range removed {
		gone[img.ID] = true
	}
	for _, img := range listing.Images {
		if !gone[img.ID] {
			kept = append(kept, img)
		}
	}
	listing.Images = append(kept, added...)
	return listing, nil
}

func (u *listingUsecase) DeleteListing(ctx context.Context, userID int64, code string) error {
	listing, err := u.owned(ctx, userID, code)
	if err != nil {
		return err
	}
	if err := u.listingRepo.Delete(ctx, listing.ID); err != nil {
		return notFoundAs(err, "Listing not found")
	}
	for _, img := range listing.Images {
		u.files.remove(context.WithoutCancel(ctx), img.StorageKey)
	}
	return nil
}

func (u *listingUsecase) ListListings(ctx context.Context, filter domain.ListingFilter) ([]domain.ListingView, domain.Pagination, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MaxPrice < *filter.MinPrice {
		return nil, domain.Pagination{}, apperror.Validation(map[string][]string{"max_price": {"must not be below min_price"}})
	}
	page, limit := domain.NormalizePage(filter.Page, filter.Limit)
	filter.Search = strings.TrimSpace(filter.Search)

	listings, total, err := u.listingRepo.List(ctx, filter, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	views, err := u.withSellers(ctx, listings)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return views, domain.NewPagination(page, limit, total), nil
}

// withSellers attaches seller ratings fetched once for the page's distinct sellers.
func (u *listingUsecase) withSellers(ctx context.Context, listings []domain.Listing) ([]domain.ListingView, error) {
	ids := make([]int64, 0, len(listings))
	seen := map[int64]bool{}
	for _, l := range listings {
		if !seen[l.UserID] {
			seen[l.UserID] = true
			ids = append(ids, l.UserID)
		}
	}
	aggs := map[int64]domain.RatingAggregate{}
	if len(ids) > 0 {
		var err error
		if aggs, err = u.ratings.AggregateForUsers(ctx, ids); err != nil {
			return nil, err
		}
	}

	views := make([]domain.ListingView, len(listings))
	for i, l := range listings {
		agg := aggs[l.UserID]
		views[i] = domain.ListingView{
			Listing: l,
			Seller: domain.Seller{
				UserID:       l.UserID,
				Name:         l.SellerName,
				Rating:       agg.Rating,
				TotalReviews: agg.TotalReviews,
			},
		}
	}
	return views, nil
}

func (u *listingUsecase) ListMyListings(ctx context.Context, userID int64, page, limit int) ([]domain.Listing, domain.Pagination, error) {
	page, limit = domain.NormalizePage(page, limit)
	listings, total, err := u.listingRepo.ListByOwner(ctx, userID, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	return listings, domain.NewPagination(page, limit, total), nil
}

func (u *listingUsecase) GetListing(ctx context.Context, code string) (*domain.ListingView, error) {
	listing, err := u.listingRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, notFoundAs(err, "Listing not found")
	}
	views, err := u.withSellers(ctx, []domain.Listing{*listing})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

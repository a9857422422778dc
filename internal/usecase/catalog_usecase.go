package usecase

import (
	"context"
	"strconv"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/logger"
)

type catalogUsecase struct {
	repo  domain.CatalogRepository
	cache domain.Cache
}

func NewCatalogUsecase(repo domain.CatalogRepository, cache domain.Cache) domain.CatalogUsecase {
	return &catalogUsecase{repo: repo, cache: cache}
}

// cached serves key from the cache and falls back to load on a miss. Cache
// errors are logged and never fail the request.
func cached[T any](ctx context.Context, c domain.Cache, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	var out []T
	if c != nil {
		hit, err := c.Get(ctx, key, &out)
		if err != nil {
			logger.Log.Warn("catalog cache read failed", "key", key, "error", err)
		}
		if hit {
			return out, nil
		}
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	if c != nil {
		if err := c.Set(ctx, key, out, domain.CatalogCacheTTL); err != nil {
			logger.Log.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

func (u *catalogUsecase) Specializations(ctx context.Context) ([]domain.Specialization, error) {
	return cached(ctx, u.cache, "catalog:specializations", u.repo.Specializations)
}

func (u *catalogUsecase) Skills(ctx context.Context, specializationID *int64) ([]domain.Skill, error) {
	key := "catalog:skills:all"
	if specializationID != nil {
		key = "catalog:skills:" + strconv.FormatInt(*specializationID, 10)
	}
	return cached(ctx, u.cache, key, func(ctx context.Context) ([]domain.Skill, error) {
		return u.repo.Skills(ctx, specializationID)
	})
}

func (u *catalogUsecase) JobRequirements(ctx context.Context) ([]domain.JobRequirement, error) {
	return cached(ctx, u.cache, "catalog:job_requirements", u.repo.JobRequirements)
}

func (u *catalogUsecase) TradeInterests(ctx context.Context) ([]domain.TradeInterest, error) {
	return cached(ctx, u.cache, "catalog:trade_interests", u.repo.TradeInterests)
}

func (u *catalogUsecase) ListingCategories(ctx context.Context) ([]domain.CatalogItem, error) {
	return cached(ctx, u.cache, "catalog:listing_categories", u.repo.ListingCategories)
}

func (u *catalogUsecase) ListingConditions(ctx context.Context) ([]domain.CatalogItem, error) {
	return cached(ctx, u.cache, "catalog:listing_conditions", u.repo.ListingConditions)
}

package usecase

import (
	"context"
	"strings"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
)

type opportunityUsecase struct {
	repo domain.OpportunityRepository
}

func NewOpportunityUsecase(repo domain.OpportunityRepository) domain.OpportunityUsecase {
	return &opportunityUsecase{repo: repo}
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// checkCompensation requires a non-negative offer on paid opportunities.
func checkCompensation(paid bool, offer *float64) error {
	if !paid {
		return nil
	}
	if offer == nil {
		return apperror.Validation(map[string][]string{"total_pay_offering": {"is required when compensation is paid"}})
	}
	if *offer < 0 {
		return apperror.Validation(map[string][]string{"total_pay_offering": {"must not be negative"}})
	}
	return nil
}

func (u *opportunityUsecase) PostOpportunity(ctx context.Context, ownerID int64, input domain.CreateOpportunityInput) (*domain.Opportunity, error) {
	skills := cleanSkills(input.SkillsNeeded)
	errs := apperror.FieldErrors{}
	if len(skills) == 0 {
		errs.Add("skills_needed", "at least one skill is required")
	}
	if input.DurationWeeks < 1 {
		errs.Add("duration_weeks", "must be at least 1")
	}
	if input.StartDate == nil || input.StartDate.IsZero() {
		errs.Add("start_date", "is required")
	}
	if input.Location.Latitude == nil || input.Location.Longitude == nil {
		errs.Add("location", "latitude and longitude are required")
	}
	if input.Location.City == nil || strings.TrimSpace(*input.Location.City) == "" {
		errs.Add("location.city", "is required")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	if err := checkCompensation(input.CompensationPaid, input.TotalPayOffering); err != nil {
		return nil, err
	}

	o := &domain.Opportunity{
		UserID:           ownerID,
		Title:            skills[0],
		SkillsNeeded:     skills,
		StartDate:        *input.StartDate,
		DurationWeeks:    input.DurationWeeks,
		CompensationPaid: input.CompensationPaid,
		Location:         domain.GeoPoint{Latitude: *input.Location.Latitude, Longitude: *input.Location.Longitude},
		City:             strings.TrimSpace(*input.Location.City),
		Description:      strings.TrimSpace(input.Description),
	}
	if input.CompensationPaid {
		o.TotalPayOffering = input.TotalPayOffering
	}
	if err := u.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (u *opportunityUsecase) ListOpportunities(ctx context.Context, near *domain.NearbyFilter, page, limit int) ([]domain.Opportunity, domain.Pagination, error) {
	if near != nil {
		errs := apperror.FieldErrors{}
		if !near.Origin.Valid() {
			errs.Add("location", "latitude must be between -90 and 90 and longitude between -180 and 180")
		}
		if near.RadiusMiles < domain.MinSearchRadiusMiles {
			errs.Add("radius_miles", "must be at least 1")
		}
		if err := errs.Err(); err != nil {
			return nil, domain.Pagination{}, err
		}
	}
	page, limit = domain.NormalizePage(page, limit)
	items, total, err := u.repo.List(ctx, near, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if items == nil {
		items = []domain.Opportunity{}
	}
	return items, domain.NewPagination(page, limit, total), nil
}

func (u *opportunityUsecase) ListMyOpportunities(ctx context.Context, ownerID int64, page, limit int) ([]domain.Opportunity, domain.Pagination, error) {
	page, limit = domain.NormalizePage(page, limit)
	items, total, err := u.repo.ListByOwner(ctx, ownerID, limit, domain.Offset(page, limit))
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if items == nil {
		items = []domain.Opportunity{}
	}
	return items, domain.NewPagination(page, limit, total), nil
}

func (u *opportunityUsecase) owned(ctx context.Context, ownerID int64, code string) (*domain.Opportunity, error) {
	o, err := u.repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, notFoundAs(err, "Opportunity not found")
	}
	if o.UserID != ownerID {
		return nil, apperror.Forbidden("You do not own this opportunity")
	}
	return o, nil
}

func (u *opportunityUsecase) UpdateOpportunity(ctx context.Context, ownerID int64, code string, input domain.UpdateOpportunityInput) (*domain.Opportunity, error) {
	o, err := u.owned(ctx, ownerID, code)
	if err != nil {
		return nil, err
	}

	if input.SkillsNeeded != nil {
		skills := cleanSkills(input.SkillsNeeded)
		if len(skills) == 0 {
			return nil, apperror.Validation(map[string][]string{"skills_needed": {"at least one skill is required"}})
		}
		o.SkillsNeeded = skills
		o.Title = skills[0]
	}
	if input.StartDate != nil && !input.StartDate.IsZero() {
		o.StartDate = *input.StartDate
	}
	if input.DurationWeeks != nil {
		o.DurationWeeks = *input.DurationWeeks
	}
	if input.CompensationPaid != nil {
		o.CompensationPaid = *input.CompensationPaid
	}
	if input.TotalPayOffering != nil {
		o.TotalPayOffering = input.TotalPayOffering
	}
	if input.Location != nil {
		if input.Location.Latitude == nil || input.Location.Longitude == nil {
			return nil, apperror.Validation(map[string][]string{"location": {"latitude and longitude are required"}})
		}
		o.Location = domain.GeoPoint{Latitude: *input.Location.Latitude, Longitude: *input.Location.Longitude}
		if input.Location.City != nil {
			o.City = strings.TrimSpace(*input.Location.City)
		}
	}
	if input.Description != nil {
		o.Description = strings.TrimSpace(*input.Description)
	}

	if err := checkCompensation(o.CompensationPaid, o.TotalPayOffering); err != nil {
		return nil, err
	}
	if !o.CompensationPaid {
		o.TotalPayOffering = nil
	}

	if err := u.repo.Update(ctx, o); err != nil {
		return nil, notFoundAs(err, "Opportunity not found")
	}
	return o, nil
}

func (u *opportunityUsecase) DeleteOpportunity(ctx context.Context, ownerID int64, code string) error {
	o, err := u.owned(ctx, ownerID, code)
	if err != nil {
		return err
	}
	return notFoundAs(u.repo.SoftDelete(ctx, o.ID), "Opportunity not found")
}

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-trades-backend/internal/domain"
)

type catalogRepo struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) domain.CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) Specializations(ctx context.Context) ([]domain.Specialization, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug FROM specializations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Specialization, error) {
		var s domain.Specialization
		err := row.Scan(&s.ID, &s.Name, &s.Slug)
		return s, err
	})
}

func (r *catalogRepo) SpecializationExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM specializations WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func scanSkill(row pgx.CollectableRow) (domain.Skill, error) {
	var s domain.Skill
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.SpecializationID)
	return s, err
}

func (r *catalogRepo) Skills(ctx context.Context, specializationID *int64) ([]domain.Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, specialization_id FROM skills
		WHERE $1::bigint IS NULL OR specialization_id = $1
		ORDER BY name`, specializationID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSkill)
}

func (r *catalogRepo) SkillsByCodes(ctx context.Context, codes []string) ([]domain.Skill, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name, specialization_id FROM skills
		WHERE code = ANY($1) ORDER BY code`, codes)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSkill)
}

func (r *catalogRepo) JobRequirements(ctx context.Context) ([]domain.JobRequirement, error) {
	rows, err := r.db.Query(ctx, `SELECT id, slug, name FROM job_requirements ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.JobRequirement, error) {
		var j domain.JobRequirement
		err := row.Scan(&j.ID, &j.Slug, &j.Name)
		return j, err
	})
}

func (r *catalogRepo) TradeInterests(ctx context.Context) ([]domain.TradeInterest, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM trade_interests ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TradeInterest, error) {
		var t domain.TradeInterest
		err := row.Scan(&t.ID, &t.Name)
		return t, err
	})
}

func (r *catalogRepo) ListingCategories(ctx context.Context) ([]domain.CatalogItem, error) {
	return r.items(ctx, `SELECT id, name FROM listing_categories ORDER BY id`)
}

func (r *catalogRepo) ListingConditions(ctx context.Context) ([]domain.CatalogItem, error) {
	return r.items(ctx, `SELECT id, name FROM listing_conditions ORDER BY id`)
}

func (r *catalogRepo) items(ctx context.Context, query string) ([]domain.CatalogItem, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CatalogItem, error) {
		var c domain.CatalogItem
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

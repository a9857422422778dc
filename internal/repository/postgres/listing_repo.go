package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-trades-backend/internal/domain"
	"go-trades-backend/pkg/apperror"
)

type listingRepo struct {
	db *pgxpool.Pool
}

func NewListingRepository(db *pgxpool.Pool) domain.ListingRepository {
	return &listingRepo{db: db}
}

const listingSelect = `SELECT l.id, l.listing_code, l.user_id, l.title,
	l.category_id, c.name, l.condition_id, cn.name,
	l.price::float8, l.currency, l.location, l.latitude::float8, l.longitude::float8,
	l.description, l.status, l.is_featured, u.name, l.created_at, l.updated_at
	FROM listings l
	JOIN listing_categories c ON c.id = l.category_id
	JOIN listing_conditions cn ON cn.id = l.condition_id
	JOIN users u ON u.id = l.user_id`

func listingScanTargets(l *domain.Listing) []any {
	return []any{
		&l.ID, &l.Code, &l.UserID, &l.Title,
		&l.CategoryID, &l.CategoryName, &l.ConditionID, &l.ConditionName,
		&l.Price, &l.Currency, &l.LocationName, &l.Latitude, &l.Longitude,
		&l.Description, &l.Status, &l.IsFeatured, &l.SellerName, &l.CreatedAt, &l.UpdatedAt,
	}
}

func (r *listingRepo) Create(ctx context.Context, l *domain.Listing) error {
	query := `INSERT INTO listings (user_id, title, category_id, condition_id, price, currency, location,
	              latitude, longitude, description, status, is_featured, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	          RETURNING id, listing_code`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		l.UserID, l.Title, l.CategoryID, l.ConditionID, l.Price, l.Currency, l.LocationName,
		l.Latitude, l.Longitude, l.Description, l.Status, l.IsFeatured, now,
	).Scan(&l.ID, &l.Code)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.Unprocessable("Unknown category or condition")
		}
		return err
	}
	l.CreatedAt, l.UpdatedAt = now, now
	return nil
}

func (r *listingRepo) GetByCode(ctx context.Context, code string) (*domain.Listing, error) {
	var l domain.Listing
	if err := r.db.QueryRow(ctx, listingSelect+` WHERE l.listing_code = $1`, code).
		Scan(listingScanTargets(&l)...); err != nil {
		return nil, notFound(err)
	}
	images, err := r.imagesFor(ctx, []int64{l.ID})
	if err != nil {
		return nil, err
	}
	l.Images = nonNilImages(images[l.ID])
	return &l, nil
}

// listingWhere builds the public marketplace predicates, starting at $1.
func listingWhere(f domain.ListingFilter) (string, []any) {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	conds := []string{"l.status = 'active'"}
	if s := strings.TrimSpace(f.Search); s != "" {
		p := arg(escapeLike(s))
		conds = append(conds, "(l.title ILIKE '%' || "+p+" || '%' OR l.description ILIKE '%' || "+p+" || '%')")
	}
	if f.CategoryID != nil {
		conds = append(conds, "l.category_id = "+arg(*f.CategoryID))
	}
	if f.ConditionID != nil {
		conds = append(conds, "l.condition_id = "+arg(*f.ConditionID))
	}
	if f.MinPrice != nil {
		conds = append(conds, "l.price >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		conds = append(conds, "l.price <= "+arg(*f.MaxPrice))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *listingRepo) List(ctx context.Context, f domain.ListingFilter, limit, offset int) ([]domain.Listing, int64, error) {
	where, args := listingWhere(f)
	n := len(args)
	query := listingSelect + where +
		" ORDER BY l.is_featured DESC, l.created_at DESC, l.id DESC" +
		" LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)

	listings, err := r.query(ctx, query, append(append([]any(nil), args...), limit, offset)...)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM listings l`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepo) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Listing, int64, error) {
	listings, err := r.query(ctx, listingSelect+` WHERE l.user_id = $1
		ORDER BY l.created_at DESC, l.id DESC LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM listings WHERE user_id = $1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

func (r *listingRepo) query(ctx context.Context, query string, args ...any) ([]domain.Listing, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []domain.Listing{}
	var ids []int64
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(listingScanTargets(&l)...); err != nil {
			return nil, err
		}
		listings = append(listings, l)
		ids = append(ids, l.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	images, err := r.imagesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		listings[i].Images = nonNilImages(images[listings[i].ID])
	}
	return listings, nil
}

func (r *listingRepo) imagesFor(ctx context.Context, listingIDs []int64) (map[int64][]domain.ListingImage, error) {
	out := make(map[int64][]domain.ListingImage, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, image_code, listing_id, storage_key, url, sort_order
		FROM listing_images WHERE listing_id = ANY($1)
		ORDER BY listing_id, sort_order, id`, listingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var img domain.ListingImage
		if err := rows.Scan(&img.ID, &img.Code, &img.ListingID, &img.StorageKey, &img.URL, &img.SortOrder); err != nil {
			return nil, err
		}
		out[img.ListingID] = append(out[img.ListingID], img)
	}
	return out, rows.Err()
}

func nonNilImages(imgs []domain.ListingImage) []domain.ListingImage {
	if imgs == nil {
		return []domain.ListingImage{}
	}
	return imgs
}

func (r *listingRepo) Update(ctx context.Context, l *domain.Listing) error {
	query := `UPDATE listings SET
		title = $2,
		category_id = $3,
		condition_id = $4,
		price = $5,
		location = $6,
		latitude = $7,
		longitude = $8,
		description = $9,
		status = $10,
		updated_at = now()
	WHERE id = $1
	RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		l.ID, l.Title, l.CategoryID, l.ConditionID, l.Price, l.LocationName,
		l.Latitude, l.Longitude, l.Description, l.Status,
	).Scan(&l.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.Unprocessable("Unknown category or condition")
		}
		return notFound(err)
	}
	return nil
}

// AddImages appends images after the listing's current last position.
func (r *listingRepo) AddImages(ctx context.Context, listingID int64, images []domain.ListingImage) error {
	if len(images) == 0 {
		return nil
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var next int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM listing_images WHERE listing_id = $1`, listingID,
	).Scan(&next); err != nil {
		return err
	}
	for i := range images {
		images[i].ListingID = listingID
		images[i].SortOrder = next + i
		if err := tx.QueryRow(ctx, `INSERT INTO listing_images (listing_id, storage_key, url, sort_order)
			VALUES ($1, $2, $3, $4) RETURNING id, image_code`,
			listingID, images[i].StorageKey, images[i].URL, images[i].SortOrder,
		).Scan(&images[i].ID, &images[i].Code); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// RemoveImages deletes the named images of one listing and returns what was
// removed so the caller can drop the stored objects.
func (r *listingRepo) RemoveImages(ctx context.Context, listingID int64, imageCodes []string) ([]domain.ListingImage, error) {
	if len(imageCodes) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `DELETE FROM listing_images
		WHERE listing_id = $1 AND image_code = ANY($2)
		RETURNING id, image_code, listing_id, storage_key, url, sort_order`, listingID, imageCodes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var removed []domain.ListingImage
	for rows.Next() {
		var img domain.ListingImage
		if err := rows.Scan(&img.ID, &img.Code, &img.ListingID, &img.StorageKey, &img.URL, &img.SortOrder); err != nil {
			return nil, err
		}
		removed = append(removed, img)
	}
	return removed, rows.Err()
}

func (r *listingRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

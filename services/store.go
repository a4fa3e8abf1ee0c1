package services

import (
	"context"
	"errors"
	"strings"

	"food-storefront/db"
	"food-storefront/metrics"
	"food-storefront/models"

	"github.com/jackc/pgx/v5"
)

const storeColumns = `id, name, COALESCE(image_url, ''), COALESCE(category, ''), COALESCE(rating, 0), COALESCE(description, ''), latitude, longitude`

func scanStores(rows pgx.Rows) ([]models.Store, error) {
	defer rows.Close()
	var res []models.Store
	for rows.Next() {
		var s models.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Image, &s.Category, &s.Rating, &s.Description, &s.Lat, &s.Lon); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func fetchStores(ctx context.Context, sql string, args ...any) ([]models.Store, error) {
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("stores").Inc()
		return nil, &FetchError{Resource: "stores", Err: err}
	}
	stores, err := scanStores(rows)
	if err != nil {
		metrics.FetchErrors.WithLabelValues("stores").Inc()
		return nil, &FetchError{Resource: "stores", Err: err}
	}
	return stores, nil
}

// ListStores returns the whole restaurant directory.
func ListStores(ctx context.Context) ([]models.Store, error) {
	return fetchStores(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY id`)
}

// ListStoresByCategory returns up to limit stores of a category.
func ListStoresByCategory(ctx context.Context, category string, limit int) ([]models.Store, error) {
	if limit <= 0 {
		limit = 50
	}
	return fetchStores(ctx, `
		SELECT `+storeColumns+` FROM stores
		WHERE category = $1
		ORDER BY id
		LIMIT $2`,
		category, limit,
	)
}

// ListStoresWithCoords returns stores that can be placed on a map.
func ListStoresWithCoords(ctx context.Context) ([]models.Store, error) {
	return fetchStores(ctx, `
		SELECT `+storeColumns+` FROM stores
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		ORDER BY id`,
	)
}

// GetStore looks up one store by id.
func GetStore(ctx context.Context, id int64) (*models.Store, error) {
	var s models.Store
	err := db.Pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Image, &s.Category, &s.Rating, &s.Description, &s.Lat, &s.Lon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &FetchError{Resource: "store", Err: ErrNoRows}
		}
		metrics.FetchErrors.WithLabelValues("store").Inc()
		return nil, &FetchError{Resource: "store", Err: err}
	}
	return &s, nil
}

// SearchStores filters stores whose name contains query, ignoring case.
// A blank query matches nothing.
func SearchStores(stores []models.Store, query string) []models.Store {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var res []models.Store
	for _, s := range stores {
		if strings.Contains(strings.ToLower(s.Name), q) {
			res = append(res, s)
		}
	}
	return res
}

// GroupStores splits stores into rows of size for grid display.
func GroupStores(stores []models.Store, size int) [][]models.Store {
	if size <= 0 {
		size = 5
	}
	var grouped [][]models.Store
	for i := 0; i < len(stores); i += size {
		end := i + size
		if end > len(stores) {
			end = len(stores)
		}
		grouped = append(grouped, stores[i:end])
	}
	return grouped
}

// ToFeedItem keeps the fields a discovery card shows.
func ToFeedItem(s models.Store) models.FeedItem {
	return models.FeedItem{
		ID:          s.ID,
		Name:        s.Name,
		Image:       s.Image,
		Rating:      s.Rating,
		Description: s.Description,
	}
}

// Directory adapts the store queries to the discovery feed.
type Directory struct{}

func (Directory) FetchCandidates(ctx context.Context, category string, limit int) ([]models.FeedItem, error) {
	stores, err := ListStoresByCategory(ctx, category, limit)
	if err != nil {
		return nil, err
	}
	out := make([]models.FeedItem, len(stores))
	for i, s := range stores {
		out[i] = ToFeedItem(s)
	}
	return out, nil
}

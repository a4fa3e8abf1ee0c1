package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"food-storefront/db"
	"food-storefront/models"

	"github.com/jackc/pgx/v5"
)

// Aggregate groups menu rows into sections by category. Sections appear in the
// order their category is first seen; rows keep their source order. Rows with a
// blank category go to the Uncategorized section.
func Aggregate(rows []models.MenuRow) []models.MenuSection {
	sections := make([]models.MenuSection, 0)
	index := make(map[string]int)
	for _, r := range rows {
		title := strings.TrimSpace(r.Category)
		if title == "" {
			title = models.UncategorizedTitle
		}
		i, ok := index[title]
		if !ok {
			i = len(sections)
			index[title] = i
			sections = append(sections, models.MenuSection{Title: title})
		}
		sections[i].Rows = append(sections[i].Rows, r)
	}
	return sections
}

// ListMenu returns the menu rows of a store in table order.
func ListMenu(ctx context.Context, storeID int64) ([]models.MenuRow, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, store_id, name, COALESCE(category, ''), price, COALESCE(description, '')
		FROM menu_items
		WHERE store_id = $1
		ORDER BY id`,
		storeID,
	)
	if err != nil {
		return nil, &FetchError{Resource: "menu", Err: err}
	}
	defer rows.Close()

	var items []models.MenuRow
	for rows.Next() {
		var id int64
		var r models.MenuRow
		if err := rows.Scan(&id, &r.StoreID, &r.Name, &r.Category, &r.Price, &r.Description); err != nil {
			return nil, &FetchError{Resource: "menu", Err: err}
		}
		r.ID = strconv.FormatInt(id, 10)
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &FetchError{Resource: "menu", Err: err}
	}
	if len(items) == 0 {
		return nil, &FetchError{Resource: "menu", Err: ErrNoRows}
	}
	return items, nil
}

// LoadMenuSections fetches a store's menu and groups it for display.
func LoadMenuSections(ctx context.Context, storeID int64) ([]models.MenuSection, error) {
	rows, err := ListMenu(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return Aggregate(rows), nil
}

// GetMenuItem looks up a single menu row by id.
func GetMenuItem(ctx context.Context, idStr string) (*models.MenuRow, error) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, &ValidationError{Field: "menu item id", Reason: err.Error()}
	}
	r := models.MenuRow{ID: idStr}
	err = db.Pool.QueryRow(ctx, `
		SELECT store_id, name, COALESCE(category, ''), price, COALESCE(description, '')
		FROM menu_items WHERE id = $1`,
		id,
	).Scan(&r.StoreID, &r.Name, &r.Category, &r.Price, &r.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &FetchError{Resource: "menu item", Err: ErrNoRows}
		}
		return nil, &FetchError{Resource: "menu item", Err: err}
	}
	return &r, nil
}

package models

// MenuRow is one dish from a restaurant's menu table.
type MenuRow struct {
	ID          string
	StoreID     int64
	Name        string
	Category    string
	Price       float64
	Description string
}

// MenuSection groups menu rows sharing a category, in fetch order.
type MenuSection struct {
	Title string
	Rows  []MenuRow
}

const UncategorizedTitle = "Uncategorized"

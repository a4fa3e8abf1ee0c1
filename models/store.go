package models

// Store is a row of the restaurant directory.
type Store struct {
	ID          int64
	Name        string
	Image       string
	Category    string
	Rating      float64
	Description string
	Lat         *float64
	Lon         *float64
}

// HasCoords reports whether the store can be placed on a map.
func (s Store) HasCoords() bool {
	return s.Lat != nil && s.Lon != nil
}

// FeedItem is a discovery candidate built from a Store.
type FeedItem struct {
	ID          int64
	Name        string
	Image       string
	Rating      float64
	Description string
}

// NavigationSignal asks the router to open the menu of the given store.
type NavigationSignal struct {
	ID    int64
	Name  string
	Image string
}

const (
	CategoryFastFood   = "Fast Food"
	CategoryRestaurant = "Restaurant"
	CategoryCafe       = "Cafe"
)

// StoreCategories lists the categories offered in discovery, in display order.
var StoreCategories = []string{CategoryFastFood, CategoryRestaurant, CategoryCafe}

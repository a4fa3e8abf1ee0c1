package models

// PastOrder is a checked-out cart kept in the user's order history.
type PastOrder struct {
	ID         string   `json:"id"`
	Restaurant string   `json:"restaurant"`
	Items      []string `json:"items"`
	Total      float64  `json:"total"`
	Date       string   `json:"date"`
}

// Settings holds the per-user account toggles.
type Settings struct {
	DarkMode      bool `json:"darkMode"`
	Notifications bool `json:"notifications"`
}

func DefaultSettings() Settings {
	return Settings{DarkMode: false, Notifications: true}
}

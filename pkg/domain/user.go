package domain

import "time"

// User is the account profile returned by /auth/me.
type User struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	ThemePreference string    `json:"themePreference,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitempty"`
}

// Theme preference values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ValidTheme returns true if the given string is a known theme name.
func ValidTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark
}

package domain

import (
	"regexp"
	"time"
)

// CategoryNameMaxLength bounds category names after trimming, in runes.
const CategoryNameMaxLength = 100

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Category is a user-defined label attached to tasks. Deleting a category
// detaches its tasks instead of deleting them.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ValidHexColor reports whether color is a #RRGGBB string. Empty means unset.
func ValidHexColor(color string) bool {
	return color == "" || hexColorPattern.MatchString(color)
}

package model

import "time"

type User struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Session is what a successful login leaves in storage. It never expires.
type Session struct {
	Token     string    `json:"token,omitempty"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggled returns the opposite theme; anything unknown counts as light.
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

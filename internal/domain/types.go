package domain

import "strings"

// Session identifies the signed-in user for one request. It replaces any
// process-wide "current user" state and travels with the request.
type Session struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Anonymous reports whether no user is signed in.
func (s Session) Anonymous() bool {
	return strings.TrimSpace(s.Email) == ""
}

// Limit clamps a requested row limit into [1, max]; zero or negative means max.
func Limit(requested, max int) int {
	if requested <= 0 || requested > max {
		return max
	}
	return requested
}

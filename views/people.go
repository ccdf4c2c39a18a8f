package views

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf16"

	"checklistapp/model"
)

var AvatarColors = []string{"#4A6572", "#344955", "#5D8AA8", "#7F8C8D", "#B2BEC3"}

func SearchUsers(users []model.User, query string) []model.User {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if q == "" || strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	return out
}

func SearchTeams(teams []model.Team, query string) []model.Team {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Team, 0, len(teams))
	for _, t := range teams {
		if q == "" || strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// Initials takes the first letter of the first and last words: "Juan Carlos
// Pérez García" is "JG". An empty name is "?".
func Initials(fullName string) string {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "?"
	case 1:
		return firstUpper(parts[0])
	}
	return firstUpper(parts[0]) + firstUpper(parts[len(parts)-1])
}

func firstUpper(s string) string {
	for _, r := range s {
		return string(unicode.ToUpper(r))
	}
	return ""
}

// AvatarColor picks a stable color for id. The hash matches the one the
// mobile clients use, so the same person gets the same color everywhere.
func AvatarColor(id string, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	var hash int64
	for _, unit := range utf16.Encode([]rune(id)) {
		// the shift wraps at 32 bits, the subtraction does not
		hash = int64(unit) + (int64(int32(hash)<<5) - hash)
	}
	abs := int64(math.Abs(float64(hash)))
	return pool[abs%int64(len(pool))]
}

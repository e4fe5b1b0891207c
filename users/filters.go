package users

import (
	"strings"
	"time"
)

// Filters narrows a user listing. Empty fields match everything.
type Filters struct {
	Nome     string
	Email    string
	Login    string
	FlAtivo  *bool
	Expirado *bool
}

func (f Filters) Match(u Usuario, now time.Time) bool {
	if f.Nome != "" && !containsFold(u.Nome, f.Nome) {
		return false
	}
	if f.Email != "" && !containsFold(u.Email, f.Email) {
		return false
	}
	if f.Login != "" && !containsFold(u.Login, f.Login) {
		return false
	}
	if f.FlAtivo != nil && u.FlAtivo != *f.FlAtivo {
		return false
	}
	if f.Expirado != nil && IsExpired(u.DtExpiracao, now) != *f.Expirado {
		return false
	}
	return true
}

func (f Filters) Apply(list []Usuario, now time.Time) []Usuario {
	out := make([]Usuario, 0, len(list))
	for _, u := range list {
		if f.Match(u, now) {
			out = append(out, u)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

package auth

// User is the authenticated principal as returned by the login endpoint.
type User struct {
	ID         string `json:"id"`
	Nome       string `json:"nome"`
	Login      string `json:"login"`
	Email      string `json:"email,omitempty"`
	Perfil     string `json:"perfil,omitempty"`
	CdTpAcesso int    `json:"cdTpAcesso"`
}

// AccessCode returns the user's classified access code. Unknown or missing
// codes report false and must be treated as non-privileged.
func (u *User) AccessCode() (AccessCode, bool) {
	if u == nil {
		return accessUndefined, false
	}
	code, err := ParseAccessCode(u.CdTpAcesso)
	if err != nil {
		return accessUndefined, false
	}
	return code, true
}

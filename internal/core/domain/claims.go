package domain

// Claims is the authenticated caller as seen by the core. It is produced per
// request by the token verifier and never persisted.
type Claims struct {
	SubjectID string `json:"sub"`
	Role      Role   `json:"role"`
	IsAdmin   bool   `json:"is_admin"`
}

// Authenticated reports whether the claims identify a caller.
func (c Claims) Authenticated() bool {
	return c.SubjectID != ""
}

// ClaimsFor returns the claims a token for u should carry.
func ClaimsFor(u *User) Claims {
	return Claims{SubjectID: u.ID, Role: u.Role, IsAdmin: u.IsAdmin}
}

package domain

// Identity is the authenticated caller. Role checks go through the access package.
type Identity struct {
	UserID       string
	Username     string
	District     string
	IsMainOffice bool
}

// IsZero reports whether no caller was resolved.
func (i Identity) IsZero() bool {
	return i.Username == "" && i.UserID == ""
}

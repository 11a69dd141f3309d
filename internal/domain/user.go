package domain

import "time"

// MainOfficeDistrict is the district label reserved for main-office accounts.
const MainOfficeDistrict = "Main Office"

// User is a provisioned account for a district office or the main office.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	District     string
	IsMainOffice bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the caller view of the user used for authorization.
func (u *User) Identity() Identity {
	return Identity{
		UserID:       u.ID,
		Username:     u.Username,
		District:     u.District,
		IsMainOffice: u.IsMainOffice,
	}
}

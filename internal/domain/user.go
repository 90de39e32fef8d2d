package domain

import "time"

type User struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Password   string    `json:"-"`
	DateJoined time.Time `json:"date_joined"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserPatch carries the fields of a profile update; nil means unchanged.
// Password holds the plain text value until the service hashes it.
type UserPatch struct {
	Username *string
	Email    *string
	Password *string
}

func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
}

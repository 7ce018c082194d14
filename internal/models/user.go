package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that can authenticate with a password, a federated
// identity, or both. Email is the join key between the two.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(24)"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"`
	FederatedID  *string   `json:"-" gorm:"type:varchar(128);uniqueIndex"`
	AvatarURL    string    `json:"avatar" gorm:"type:varchar(512)"`
	Role         string    `json:"role" gorm:"type:varchar(20);not null;default:user"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the view of a User returned to clients.
type PublicUser struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

// Public strips credentials from u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Avatar: u.AvatarURL,
		Role:   u.Role,
	}
}

// HasPassword reports whether u can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

package models

import "strings"

// RegisterInput is the payload of a password registration.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Normalize trims name and email. The password is taken verbatim.
func (in *RegisterInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
}

// LoginInput is the payload of a password login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims the email the same way RegisterInput does. The password is
// taken verbatim.
func (in *LoginInput) Normalize() {
	in.Email = strings.TrimSpace(in.Email)
}

// FederatedInput is the profile asserted by the federated identity provider.
type FederatedInput struct {
	FederatedID string `json:"federatedId" validate:"required"`
	Name        string `json:"name"`
	Email       string `json:"email" validate:"required,email"`
	Avatar      string `json:"avatar" validate:"omitempty,max=512"`
}

// Normalize trims every field.
func (in *FederatedInput) Normalize() {
	in.FederatedID = strings.TrimSpace(in.FederatedID)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Avatar = strings.TrimSpace(in.Avatar)
}

// AuthResult is returned by every successful enrollment or login.
type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

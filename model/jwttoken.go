package model

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the payload of the access tokens issued at sign-in.
type AccessClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Credential is the sign-in record kept in the credentials collection,
// keyed by the user's uid.
type Credential struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

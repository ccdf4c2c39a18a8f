package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checklistapp/model"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "checklistapp"

var ErrInvalidToken = errors.New("token is expired or invalid")

// TokenIssuer signs and checks the HS256 access tokens handed out at sign-in.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *TokenIssuer) CreateAccessToken(user model.User) (string, error) {
	now := t.now()
	claims := &model.AccessClaims{
		UserID: user.UID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *TokenIssuer) ParseAccessToken(tokenString string) (*model.AccessClaims, error) {
	claims := &model.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyToken returns the uid a bearer token was issued to.
func (t *TokenIssuer) VerifyToken(_ context.Context, tokenString string) (string, error) {
	claims, err := t.ParseAccessToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

package middleware

import (
	"context"
	"fmt"

	"firebase.google.com/go/auth"
)

// FirebaseVerifier accepts Firebase ID tokens, so clients signed in with the
// Firebase SDK can call the API directly.
type FirebaseVerifier struct {
	Client *auth.Client
}

func (f FirebaseVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	t, err := f.Client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("verify id token: %w", err)
	}
	return t.UID, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"checklistapp/model"
	"checklistapp/repository"
	"checklistapp/store"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
)

type SignUpInput struct {
	Email    string
	Password string
	Name     string
	Role     model.Role
	Captcha  *CaptchaRequest
}

// AuthService is the email and password boundary. Profiles live in users,
// password hashes in credentials, both keyed by uid.
type AuthService struct {
	store   store.Store
	users   *repository.UserRepository
	tokens  *TokenIssuer
	captcha CaptchaVerifier
}

// NewAuthService wires sign-up and sign-in. captcha may be nil.
func NewAuthService(s store.Store, users *repository.UserRepository, tokens *TokenIssuer, captcha CaptchaVerifier) *AuthService {
	return &AuthService{store: s, users: users, tokens: tokens, captcha: captcha}
}

func (a *AuthService) SignUp(ctx context.Context, in SignUpInput) (model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = model.RoleWorker
	}
	user := model.User{
		UID:   uuid.NewString(),
		Email: in.Email,
		Name:  strings.TrimSpace(in.Name),
		Role:  in.Role,
	}
	if err := repository.ValidateUser(user); err != nil {
		return model.User{}, err
	}
	if len(in.Password) < MinPasswordLength {
		return model.User{}, &repository.ValidationError{Fields: map[string]string{
			"Password": fmt.Sprintf("needs at least %d characters", MinPasswordLength),
		}}
	}

	if a.captcha != nil {
		if in.Captcha == nil || in.Captcha.Token == "" {
			return model.User{}, ErrCaptchaRejected
		}
		if _, err := a.captcha.Verify(ctx, *in.Captcha); err != nil {
			return model.User{}, err
		}
	}

	_, err := a.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return model.User{}, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	err = a.store.Set(ctx, store.CollectionCredentials, user.UID, map[string]interface{}{
		"uid":          user.UID,
		"email":        strings.ToLower(user.Email),
		"passwordHash": string(hash),
	})
	if err != nil {
		return model.User{}, err
	}
	created, err := a.users.Create(ctx, user)
	if err != nil {
		if derr := a.store.Delete(ctx, store.CollectionCredentials, user.UID); derr != nil {
			glog.Errorf("[auth]drop credential %s: %s\n", user.UID, derr)
		}
		return model.User{}, err
	}
	return created, nil
}

// SignIn checks the password and returns a fresh access token.
func (a *AuthService) SignIn(ctx context.Context, email, password string) (string, model.User, error) {
	cred, err := a.credential(ctx, email)
	if err != nil {
		return "", model.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", model.User{}, ErrInvalidCredentials
	}
	user, err := a.users.GetByID(ctx, cred.UID)
	if errors.Is(err, store.ErrNotFound) {
		return "", model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", model.User{}, err
	}
	token, err := a.tokens.CreateAccessToken(user)
	if err != nil {
		return "", model.User{}, fmt.Errorf("create access token: %w", err)
	}
	return token, user, nil
}

func (a *AuthService) credential(ctx context.Context, email string) (model.Credential, error) {
	docs, err := a.store.GetAll(ctx, store.CollectionCredentials)
	if err != nil {
		return model.Credential{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, doc := range docs {
		if e, _ := doc.Data["email"].(string); e != email {
			continue
		}
		hash, _ := doc.Data["passwordHash"].(string)
		return model.Credential{UID: doc.ID, Email: email, PasswordHash: hash}, nil
	}
	return model.Credential{}, ErrInvalidCredentials
}

package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"checklistapp/model"
	"checklistapp/repository"
	"checklistapp/store"
	"checklistapp/views"

	"github.com/go-playground/assert/v2"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.CreateAccessToken(model.User{UID: "u1", Email: "a@b.com", Role: model.RoleManager})
	assert.Equal(t, err, nil)

	claims, err := issuer.ParseAccessToken(token)
	assert.Equal(t, err, nil)
	assert.Equal(t, claims.UserID, "u1")
	assert.Equal(t, claims.Role, model.RoleManager)

	uid, err := issuer.VerifyToken(context.Background(), token)
	assert.Equal(t, err, nil)
	assert.Equal(t, uid, "u1")
}

func TestAccessTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, _ := issuer.CreateAccessToken(model.User{UID: "u1"})

	_, err := NewTokenIssuer("other", time.Hour).ParseAccessToken(token)
	assert.Equal(t, errors.Is(err, ErrInvalidToken), true)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.ParseAccessToken(token)
	assert.Equal(t, errors.Is(err, ErrInvalidToken), true)

	_, err = issuer.ParseAccessToken("garbage")
	assert.Equal(t, errors.Is(err, ErrInvalidToken), true)
}

type stubCaptcha struct{ err error }

func (s stubCaptcha) Verify(ctx context.Context, req CaptchaRequest) (*Assessment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &Assessment{Score: 0.9, Action: req.Action}, nil
}

func setupAuth(t *testing.T, captcha CaptchaVerifier) (*AuthService, *repository.UserRepository) {
	t.Helper()
	s := store.NewMemoryStore()
	users := repository.NewUserRepository(s)
	return NewAuthService(s, users, NewTokenIssuer("secret", time.Hour), captcha), users
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	auth, users := setupAuth(t, nil)

	user, err := auth.SignUp(ctx, SignUpInput{Email: "ana@empresa.com", Password: "secret1", Name: "Ana", Role: model.RoleManager})
	assert.Equal(t, err, nil)
	assert.NotEqual(t, user.UID, "")

	stored, err := users.GetByID(ctx, user.UID)
	assert.Equal(t, err, nil)
	assert.Equal(t, stored.Role, model.RoleManager)

	token, signedIn, err := auth.SignIn(ctx, "ANA@empresa.com", "secret1")
	assert.Equal(t, err, nil)
	assert.NotEqual(t, token, "")
	assert.Equal(t, signedIn.UID, user.UID)

	_, _, err = auth.SignIn(ctx, "ana@empresa.com", "wrong")
	assert.Equal(t, errors.Is(err, ErrInvalidCredentials), true)
	_, _, err = auth.SignIn(ctx, "ghost@empresa.com", "secret1")
	assert.Equal(t, errors.Is(err, ErrInvalidCredentials), true)
}

func TestSignUpRules(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuth(t, nil)

	_, err := auth.SignUp(ctx, SignUpInput{Email: "a@empresa.com", Password: "123", Name: "A"})
	assert.Equal(t, repository.IsValidation(err), true)

	_, err = auth.SignUp(ctx, SignUpInput{Email: "not-an-email", Password: "123456", Name: "A"})
	assert.Equal(t, repository.IsValidation(err), true)

	_, err = auth.SignUp(ctx, SignUpInput{Email: "a@empresa.com", Password: "123456", Name: "A"})
	assert.Equal(t, err, nil)
	_, err = auth.SignUp(ctx, SignUpInput{Email: "a@empresa.com", Password: "123456", Name: "B"})
	assert.Equal(t, errors.Is(err, ErrEmailTaken), true)
}

func TestSignUpCaptcha(t *testing.T) {
	ctx := context.Background()
	auth, _ := setupAuth(t, stubCaptcha{err: ErrCaptchaRejected})
	in := SignUpInput{Email: "a@empresa.com", Password: "123456", Name: "A"}

	_, err := auth.SignUp(ctx, in)
	assert.Equal(t, errors.Is(err, ErrCaptchaRejected), true)

	in.Captcha = &CaptchaRequest{Token: "tok", Action: "signup"}
	_, err = auth.SignUp(ctx, in)
	assert.Equal(t, errors.Is(err, ErrCaptchaRejected), true)

	auth, _ = setupAuth(t, stubCaptcha{})
	_, err = auth.SignUp(ctx, in)
	assert.Equal(t, err, nil)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		kind AlertKind
	}{
		{fmt.Errorf("write: %w", store.ErrConnectivity), AlertConnectivity},
		{&repository.ValidationError{Fields: map[string]string{"Title": "is required"}}, AlertValidation},
		{ErrInvalidCredentials, AlertCredentials},
		{fmt.Errorf("tasks/x: %w", store.ErrNotFound), AlertNotFound},
		{views.ErrUnknownView, AlertNotFound},
		{errors.New("boom"), AlertGeneric},
	}
	for _, tt := range tests {
		assert.Equal(t, Describe(tt.err).Kind, tt.kind)
	}
	assert.NotEqual(t, Describe(store.ErrConnectivity).Message, Describe(ErrInvalidCredentials).Message)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	users := repository.NewUserRepository(s)
	seeder := &Seeder{
		Auth:  NewAuthService(s, users, NewTokenIssuer("secret", time.Hour), nil),
		Users: users,
		Teams: repository.NewTeamRepository(s),
		Tasks: repository.NewTaskRepository(s),
	}

	result, err := seeder.Seed(ctx)
	assert.Equal(t, err, nil)
	assert.Equal(t, result, SeedResult{Users: 5, Teams: 3, Tasks: 6})

	all, _ := users.GetAll(ctx)
	memberships := 0
	for _, u := range all {
		memberships += len(u.TeamUIDs)
	}
	assert.Equal(t, memberships, 6)

	again, err := seeder.Seed(ctx)
	assert.Equal(t, err, nil)
	assert.Equal(t, again, SeedResult{})
	tasks, _ := seeder.Tasks.GetAll(ctx)
	assert.Equal(t, len(tasks), 6)
}

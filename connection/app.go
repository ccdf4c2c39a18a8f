package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checklistapp/config"
	"checklistapp/controller/view"
	"checklistapp/middleware"
	"checklistapp/repository"
	"checklistapp/services"
	"checklistapp/store"

	"github.com/golang/glog"
)

// App holds everything built from a Config.
type App struct {
	Config   *config.Config
	Store    store.Store
	Repos    view.Repositories
	Tokens   *services.TokenIssuer
	Auth     *services.AuthService
	Verifier middleware.TokenVerifier
	Captcha  services.CaptchaVerifier

	closers []func() error
}

// NewApp opens the configured store and wires the services on top of it.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{Config: cfg}

	switch cfg.StoreBackend {
	case config.BackendFirestore:
		fbApp, client, err := FBConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		fs := store.NewFirestoreStore(client)
		a.closers = append(a.closers, fs.Close)
		a.Store = fs

		if cfg.AuthProvider == config.AuthFirebase {
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				a.Close()
				return nil, fmt.Errorf("error getting Auth client: %w", err)
			}
			a.Verifier = middleware.FirebaseVerifier{Client: authClient}
		}
	default:
		mem := store.NewMemoryStore()
		a.closers = append(a.closers, mem.Close)
		a.Store = mem
	}

	if cfg.CachePath != "" {
		cached, err := store.OpenCache(cfg.CachePath, a.Store)
		if err != nil {
			a.Close()
			return nil, err
		}
		// closed before the remote store
		a.closers = append([]func() error{cached.Close}, a.closers...)
		a.Store = cached
	}

	a.Repos = view.Repositories{
		Tasks: repository.NewTaskRepository(a.Store),
		Teams: repository.NewTeamRepository(a.Store),
		Users: repository.NewUserRepository(a.Store),
	}
	a.Tokens = services.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if cfg.CaptchaEnabled() {
		a.Captcha = &services.Recaptcha{
			ProjectID:       cfg.ProjectID,
			SiteKey:         cfg.RecaptchaSiteKey,
			CredentialsFile: cfg.RecaptchaCredentialsFile,
		}
	}
	a.Auth = services.NewAuthService(a.Store, a.Repos.Users, a.Tokens, a.Captcha)
	if a.Verifier == nil {
		a.Verifier = a.Tokens
	}

	glog.Infof("[connection]store=%s auth=%s cache=%q captcha=%t\n",
		cfg.StoreBackend, cfg.AuthProvider, cfg.CachePath, cfg.CaptchaEnabled())
	return a, nil
}

// Seeder returns a seeder writing through the app's repositories.
func (a *App) Seeder() *services.Seeder {
	return &services.Seeder{
		Auth:  a.Auth,
		Users: a.Repos.Users,
		Teams: a.Repos.Teams,
		Tasks: a.Repos.Tasks,
		Now:   time.Now,
	}
}

func (a *App) LiveSettings() view.LiveSettings {
	settings := view.DefaultLiveSettings()
	settings.Rollback = a.Config.OptimisticRollback
	return settings
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

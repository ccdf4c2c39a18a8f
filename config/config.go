// Package config loads server settings from an optional TOML file, a .env
// file and the environment, in that order of increasing precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"

	AuthJWT      = "jwt"
	AuthFirebase = "firebase"
)

type Config struct {
	Port         string `toml:"port"`
	StoreBackend string `toml:"store-backend"`
	AuthProvider string `toml:"auth-provider"`

	// Firestore and Firebase Auth
	CredentialsFile string `toml:"credentials-file"`
	ProjectID       string `toml:"project-id"`

	JWTSecret string        `toml:"jwt-secret"`
	TokenTTL  time.Duration `toml:"-"`

	// CachePath is the sqlite offline cache; empty disables it.
	CachePath string `toml:"cache-path"`

	OptimisticRollback bool `toml:"optimistic-rollback"`

	// sign-up captcha, enabled when the site key is set
	RecaptchaSiteKey         string `toml:"recaptcha-site-key"`
	RecaptchaCredentialsFile string `toml:"recaptcha-credentials-file"`
}

func Default() *Config {
	return &Config{
		Port:               "8080",
		StoreBackend:       BackendMemory,
		AuthProvider:       AuthJWT,
		TokenTTL:           60 * time.Minute,
		OptimisticRollback: true,
	}
}

// Load reads path if it is set and exists, then the .env file, then the
// environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil {
		glog.Infof("[config]no .env file loaded: %s\n", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	vars := map[string]*string{
		"PORT":                             &cfg.Port,
		"STORE_BACKEND":                    &cfg.StoreBackend,
		"AUTH_PROVIDER":                    &cfg.AuthProvider,
		"GOOGLE_APPLICATION_CREDENTIALS":   &cfg.CredentialsFile,
		"GOOGLE_CLOUD_PROJECT_ID":          &cfg.ProjectID,
		"JWT_SECRET_KEY":                   &cfg.JWTSecret,
		"CACHE_PATH":                       &cfg.CachePath,
		"RECAPTCHA_SITE_KEY":               &cfg.RecaptchaSiteKey,
		"GOOGLE_APPLICATION_CREDENTIALS_2": &cfg.RecaptchaCredentialsFile,
	}
	for key, dst := range vars {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("OPTIMISTIC_ROLLBACK"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("OPTIMISTIC_ROLLBACK: %w", err)
		}
		cfg.OptimisticRollback = b
	}
	if v, ok := os.LookupEnv("TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}
	return nil
}

// Validate checks the settings the server needs to start.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendFirestore, BackendMemory:
	default:
		return fmt.Errorf("store backend %q: want %s or %s", c.StoreBackend, BackendFirestore, BackendMemory)
	}
	switch c.AuthProvider {
	case AuthJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET_KEY is not set")
		}
	case AuthFirebase:
		if c.StoreBackend != BackendFirestore {
			return fmt.Errorf("auth provider %s needs the %s backend", AuthFirebase, BackendFirestore)
		}
	default:
		return fmt.Errorf("auth provider %q: want %s or %s", c.AuthProvider, AuthJWT, AuthFirebase)
	}
	if c.Port == "" {
		return fmt.Errorf("port is empty")
	}
	return nil
}

func (c *Config) CaptchaEnabled() bool {
	return c.RecaptchaSiteKey != ""
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"checklistapp/config"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	return cfg
}

func TestNewAppRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	_, err := NewApp(context.Background(), cfg)
	assert.NotEqual(t, nil, err)

	cfg = memoryConfig()
	cfg.AuthProvider = config.AuthFirebase
	_, err = NewApp(context.Background(), cfg)
	assert.NotEqual(t, nil, err)
}

func TestRouterEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := memoryConfig()
	cfg.CachePath = filepath.Join(t.TempDir(), "cache.db")
	app, err := NewApp(context.Background(), cfg)
	assert.Equal(t, nil, err)
	defer app.Close()

	res, err := app.Seeder().Seed(context.Background())
	assert.Equal(t, nil, err)
	assert.Equal(t, 5, res.Users)

	r := NewRouter(app)
	call := func(method, path, token string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/tasks", "", nil).Code)

	w := call(http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "new@example.com", "password": "secret1", "name": "New Worker",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = call(http.MethodPost, "/auth/signin", "", map[string]string{"email": "new@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, w.Code)
	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	json.Unmarshal(w.Body.Bytes(), &tokens)

	w = call(http.MethodGet, "/tasks", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var tasks []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &tasks)
	assert.Equal(t, 6, len(tasks))

	w = call(http.MethodGet, "/views/dashboard", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

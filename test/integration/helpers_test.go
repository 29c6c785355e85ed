//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/mattn/go-sqlite3"

	"querygate/internal/app"
	"querygate/internal/config"
	internaldb "querygate/internal/db"
	"querygate/internal/db/repository"
	"querygate/internal/domain"
)

const testJWTSecret = "integration-test-secret"

// testEnv wires the full application over a temp SQLite database and serves
// it from an httptest server.
type testEnv struct {
	t      *testing.T
	server *httptest.Server
	users  *repository.UserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "integration.sqlite")
	writeDB, readDB, err := internaldb.OpenSQLitePair(path, 4)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = readDB.Close()
		_ = writeDB.Close()
	})
	if err := internaldb.RunMigrations(writeDB); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:          testJWTSecret,
		ReviewsRequired:    1,
		AuthorCanExecute:   true,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		CORSAllowedOrigins: []string{"*"},
	}
	a := app.New(app.Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	server := httptest.NewServer(a.Router(cfg))
	t.Cleanup(server.Close)

	return &testEnv{
		t:      t,
		server: server,
		users:  repository.NewUserRepo(writeDB),
	}
}

// createUser registers a user directly in storage and returns a bearer token
// for them.
func (env *testEnv) createUser(email string, isAdmin bool) (userID, token string) {
	env.t.Helper()

	u, err := domain.NewUser(email, "", isAdmin, time.Now())
	if err != nil {
		env.t.Fatalf("new user: %v", err)
	}
	if err := env.users.Create(context.Background(), u); err != nil {
		env.t.Fatalf("create user: %v", err)
	}

	claims := jwt.MapClaims{
		"sub": u.ID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		env.t.Fatalf("sign token: %v", err)
	}
	return u.ID, signed
}

// call issues an authenticated JSON request and decodes the response into out
// (when non-nil). It returns the HTTP status code.
func (env *testEnv) call(token, method, path string, body, out interface{}) int {
	env.t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			env.t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, env.server.URL+path, reader)
	if err != nil {
		env.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			env.t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

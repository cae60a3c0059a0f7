//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/gatehouse/apiserver/config"
	"github.com/gatehouse/apiserver/internal/db"
	"github.com/gatehouse/apiserver/internal/server"
)

const serverPort = 18080

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestAuthLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	email := fmt.Sprintf("jonas_%d@x.com", time.Now().UnixNano())
	password := "Passw0rd1"

	status, body := postJSON(t, baseURL+"/auth/signup", map[string]string{
		"fullName":    "Jonas Kahnwald",
		"dateOfBirth": "1995-03-02",
		"email":       email,
		"password":    password,
	})
	if status != http.StatusCreated {
		t.Fatalf("signup status = %d, body %v", status, body)
	}
	signupUser := body["user"].(map[string]any)
	userID, _ := signupUser["id"].(string)
	if userID == "" {
		t.Fatal("signup returned no user id")
	}

	status, body = postJSON(t, baseURL+"/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
	if status != http.StatusOK {
		t.Fatalf("signin status = %d, body %v", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("signin returned no token")
	}

	status, body = getJSON(t, baseURL+"/auth/verify", "Bearer "+token)
	if status != http.StatusOK {
		t.Fatalf("verify status = %d, body %v", status, body)
	}
	verified := body["user"].(map[string]any)
	if verified["id"] != userID {
		t.Fatalf("verify user id = %v, want %v", verified["id"], userID)
	}
}

func TestSigninUnknownEmail(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)

	status, body := postJSON(t, baseURL+"/auth/signin", map[string]string{
		"email":    fmt.Sprintf("nobody_%d@x.com", time.Now().UnixNano()),
		"password": "Passw0rd1",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("signin status = %d, want 401", status)
	}
	message, _ := body["message"].(string)
	if strings.Contains(strings.ToLower(message), "email") && strings.Contains(strings.ToLower(message), "not") {
		t.Fatalf("signin failure leaks email existence: %q", message)
	}
}

func TestVerifyRejections(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)

	status, _ := getJSON(t, baseURL+"/auth/verify", "")
	if status != http.StatusUnauthorized {
		t.Fatalf("verify without header status = %d, want 401", status)
	}

	status, _ = getJSON(t, baseURL+"/auth/verify", "Bearer garbage")
	if status != http.StatusUnauthorized {
		t.Fatalf("verify with garbage token status = %d, want 401", status)
	}
}

func postJSON(t *testing.T, url string, payload any) (int, map[string]any) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	body := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, body
}

func getJSON(t *testing.T, url, authorization string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, body
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = root
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func waitForPostgres(ctx context.Context) error {
	cfg := testConfig()
	dsn := db.DSN(cfg)
	for {
		conn, err := sql.Open("postgres", dsn)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err = conn.PingContext(pingCtx)
			cancel()
			_ = conn.Close()
			if err == nil {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func runMigrations(root string) error {
	migrationsURL := "file://" + filepath.Join(root, "internal", "db", "migrations")
	migrator, err := migrate.New(migrationsURL, db.DSN(testConfig()))
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func startServer() (*server.Server, error) {
	os.Setenv("JWT_SECRET", "e2e-test-secret")
	os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))

	srv, err := server.New(context.Background(), testConfig(), nil)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "server stopped: %v\n", err)
		}
	}()
	return srv, nil
}

func testConfig() config.Config {
	cfg := config.LoadConfig()
	cfg.ServerPort = serverPort
	cfg.Auth.JWTSecret = "e2e-test-secret"
	return cfg
}

func waitForHealth(ctx context.Context, url string) error {
	for {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

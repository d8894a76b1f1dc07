package console_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailadmin/apiclient"
	"retailadmin/console"
	"retailadmin/database"
	"retailadmin/handlers"
	"retailadmin/metrics"
	"retailadmin/routes"
	"retailadmin/session"
)

var _ console.API = (*apiclient.Client)(nil)

// startSandbox serves the real API over HTTP with an in-memory store and a seeded admin.
func startSandbox(t *testing.T) (string, database.Store) {
	t.Helper()
	store := database.NewMemoryStore()
	secret := []byte("sandbox-secret")
	uploads := t.TempDir()
	m := metrics.New("sandbox_test")

	h := handlers.New(handlers.Options{Store: store, JWTSecret: secret, UploadDir: uploads, Metrics: m})
	created, err := h.EnsureAdmin(context.Background(), "admin@example.com", "admin-pass")
	require.NoError(t, err)
	require.True(t, created)

	app := routes.NewApp(h, routes.Config{JWTSecret: secret, UploadDir: uploads, Metrics: m})
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv.URL, store
}

func TestConsoleAgainstSandbox(t *testing.T) {
	baseURL, store := startSandbox(t)
	ctx := context.Background()

	sessions, err := session.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	var out bytes.Buffer
	client := apiclient.New(baseURL+"/api", sessions)
	app := console.NewApp(client, sessions, &out, 10)
	shell := console.NewShell(app, &out)

	logo := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("\x89PNG fake"), 0o600))

	script := strings.Join([]string{
		"new",
		"login admin@example.com admin-pass",
		"new",
		"set brandName=Acme",
		"set brandCode=AC-1",
		"upload logoImage " + logo,
		"submit",
		"search acme",
		"quit",
	}, "\n")
	require.NoError(t, shell.Run(ctx, strings.NewReader(script), "/brands"))

	text := out.String()
	assert.Contains(t, text, "Login required")
	assert.Contains(t, text, "[success] Login successful!")
	assert.Contains(t, text, "[success] Image uploaded successfully")
	assert.Contains(t, text, "[success] Brand created successfully!")
	assert.Contains(t, text, "AC-1")
	assert.Equal(t, "/brands", app.Location())

	counts, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["brands"])

	tok, ok := sessions.Token()
	require.True(t, ok)
	assert.NotEmpty(t, tok)

	brand, err := store.Get(ctx, "brands", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(brand.Text("logoImage"), "/uploads/"))

	out.Reset()
	require.NoError(t, shell.Run(ctx, strings.NewReader("delete 1\ny\nquit\n"), "/brands"))
	assert.Contains(t, out.String(), "Are you sure you want to delete this brand? [y/N]")
	assert.Contains(t, out.String(), "[success] Brand deleted successfully!")

	counts, err = store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, counts["brands"])
}

func TestConsoleRejectedLoginStaysOnLoginScreen(t *testing.T) {
	baseURL, _ := startSandbox(t)
	ctx := context.Background()

	sessions := session.NewMemoryStore()
	var out bytes.Buffer
	app := console.NewApp(apiclient.New(baseURL+"/api", sessions), sessions, &out, 10)
	shell := console.NewShell(app, &out)

	require.NoError(t, app.Open(ctx, "/stores"))
	assert.Equal(t, "/login", app.Location())

	err := shell.Exec(ctx, "login admin@example.com wrong-pass")
	require.Error(t, err)
	assert.Contains(t, out.String(), "[error] Invalid credentials")
	assert.Equal(t, "/login", app.Location())

	_, ok := sessions.Token()
	assert.False(t, ok)
}

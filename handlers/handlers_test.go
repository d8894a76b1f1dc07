package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailadmin/database"
	"retailadmin/handlers"
	"retailadmin/metrics"
	"retailadmin/models"
	"retailadmin/routes"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass"
)

type testServer struct {
	app       *fiber.App
	store     *database.MemoryStore
	uploadDir string
	token     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := database.NewMemoryStore()
	uploadDir := t.TempDir()
	secret := []byte("test-secret")
	m := metrics.New("test")
	h := handlers.New(handlers.Options{
		Store:     store,
		JWTSecret: secret,
		TokenTTL:  time.Hour,
		UploadDir: uploadDir,
		Metrics:   m,
	})
	created, err := h.EnsureAdmin(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	require.True(t, created)

	ts := &testServer{
		app:       routes.NewApp(h, routes.Config{JWTSecret: secret, UploadDir: uploadDir, Metrics: m}),
		store:     store,
		uploadDir: uploadDir,
	}
	resp, body := ts.do(t, "POST", "/api/auth/login", map[string]string{"identifier": adminEmail, "password": adminPassword})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(body, &login))
	ts.token = login.Token
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)
	assert.NotEmpty(t, ts.token)

	ts.token = ""
	resp, body := ts.do(t, "POST", "/api/auth/login", map[string]string{"identifier": adminEmail, "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", decode(t, body)["message"])

	resp, _ = ts.do(t, "POST", "/api/auth/login", map[string]string{"identifier": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin_ResponseHidesPasswordHash(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""
	_, body := ts.do(t, "POST", "/api/auth/login", map[string]string{"identifier": adminEmail, "password": adminPassword})
	user := decode(t, body)["user"].(map[string]interface{})
	assert.NotContains(t, user, "passwordHash")
	assert.Equal(t, "admin", user["userRole"])
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""
	for _, path := range []string{"/api/stores", "/api/inventory", "/api/dashboard/stats"} {
		resp, _ := ts.do(t, "GET", path, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)
	user := map[string]interface{}{
		"firstName":   "Sam",
		"lastName":    "Staff",
		"email":       "Sam@Example.com",
		"password":    "secret1",
		"phoneNumber": "555-0111",
	}
	resp, body := ts.do(t, "POST", "/api/auth/register", user)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	data := decode(t, body)["data"].(map[string]interface{})
	assert.Equal(t, "staff", data["userRole"])
	assert.Equal(t, "sam@example.com", data["email"])
	assert.Equal(t, "Sam Staff", data["fullName"])
	assert.NotContains(t, data, "passwordHash")

	resp, body = ts.do(t, "POST", "/api/auth/register", user)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Email already exists", decode(t, body)["message"])

	user["email"] = "boss@example.com"
	user["userRole"] = "admin"
	resp, _ = ts.do(t, "POST", "/api/auth/register", user)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ts.token = ""
	resp, body = ts.do(t, "POST", "/api/auth/login", map[string]string{"identifier": "555-0111", "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	ts.token = decode(t, body)["token"].(string)

	resp, _ = ts.do(t, "GET", "/api/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "staff cannot manage users")
}

func TestRefresh(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, "POST", "/api/auth/refresh", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.NotEmpty(t, decode(t, body)["token"])
}

func TestResourceCRUD(t *testing.T) {
	ts := newTestServer(t)
	store := map[string]interface{}{
		"storeName":     "Main",
		"storeCode":     "S1",
		"location":      "Downtown",
		"contactNumber": "555",
		"status":        "active",
	}

	resp, body := ts.do(t, "POST", "/api/stores", store)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	id := models.FormatID(decode(t, body)["data"].(map[string]interface{})["id"])
	assert.Equal(t, "1", id)

	resp, body = ts.do(t, "GET", "/api/stores/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Main", decode(t, body)["data"].(map[string]interface{})["storeName"])

	store["storeName"] = "Main Street"
	resp, _ = ts.do(t, "PUT", "/api/stores/"+id, store)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = ts.do(t, "GET", "/api/stores?page=1&limit=10&search=street", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode(t, body)
	assert.Equal(t, float64(1), list["total"])
	assert.Len(t, list["data"], 1)

	resp, _ = ts.do(t, "DELETE", "/api/stores/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = ts.do(t, "GET", "/api/stores/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Store not found", decode(t, body)["message"])
}

func TestCreateValidates(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, "POST", "/api/items", map[string]interface{}{"itemName": "Widget", "costPrice": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	msg := decode(t, body)["message"].(string)
	assert.Contains(t, msg, "itemCode: Item Code is required")
	assert.Contains(t, msg, "costPrice: Cost Price must be at least 0")
}

func TestUserUpdateKeepsPassword(t *testing.T) {
	ts := newTestServer(t)
	admin, err := ts.store.FindBy(context.Background(), "users", "email", adminEmail)
	require.NoError(t, err)

	resp, body := ts.do(t, "PUT", "/api/users/"+admin.ID(), map[string]interface{}{
		"fullName":    "Chief Admin",
		"email":       adminEmail,
		"phoneNumber": "555-0001",
		"userRole":    "admin",
		"status":      "active",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	ts.token = ""
	resp, _ = ts.do(t, "POST", "/api/auth/login", map[string]string{"identifier": adminEmail, "password": adminPassword})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInventoryResolvesNames(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	brand, _ := ts.store.Insert(ctx, "brands", models.Record{"brandName": "Acme"})
	group, _ := ts.store.Insert(ctx, "item-groups", models.Record{"groupName": "Tools"})
	_, err := ts.store.Insert(ctx, "items", models.Record{
		"itemName":    "Hammer",
		"brandId":     brand["id"],
		"itemGroupId": group["id"],
		"supplierId":  json.Number("404"),
	})
	require.NoError(t, err)

	resp, body := ts.do(t, "GET", "/api/inventory", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	rows := decode(t, body)["data"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "Acme", row["brandName"])
	assert.Equal(t, "Tools", row["groupName"])
	assert.Equal(t, "", row["supplierName"])
}

func TestDashboardStats(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.store.Insert(context.Background(), "brands", models.Record{"brandName": "Acme"})
	require.NoError(t, err)

	resp, body := ts.do(t, "GET", "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats models.StatsResponse
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.Counts["brands"])
	assert.Equal(t, 1, stats.Counts["users"])
	assert.Equal(t, 0, stats.Counts["items"])
	assert.Len(t, stats.Counts, 7)
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)

	upload := func(filename string) (*http.Response, []byte) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, _ = part.Write([]byte("image-bytes"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest("POST", "/api/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+ts.token)
		resp, err := ts.app.Test(req, -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		return resp, body
	}

	resp, body := upload("logo.PNG")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out models.UploadResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.True(t, strings.HasPrefix(out.URL, "/uploads/"))
	assert.True(t, strings.HasSuffix(out.URL, ".png"))

	stored, err := os.ReadFile(filepath.Join(ts.uploadDir, strings.TrimPrefix(out.URL, "/uploads/")))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(stored))

	resp, _ = ts.do(t, "GET", out.URL, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = upload("script.sh")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "test_auth_attempts_total")
}

func TestHealthAndVersion(t *testing.T) {
	ts := newTestServer(t)
	resp, body := ts.do(t, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode(t, body)["message"])

	resp, _ = ts.do(t, "GET", "/version", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterOnEmptyStoreMakesOneAdmin(t *testing.T) {
	store := database.NewMemoryStore()
	m := metrics.New("register")
	h := handlers.New(handlers.Options{Store: store, JWTSecret: []byte("test-secret"), Metrics: m})
	app := routes.NewApp(h, routes.Config{JWTSecret: []byte("test-secret"), UploadDir: t.TempDir(), Metrics: m})

	const n = 6
	statuses := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, _ := json.Marshal(map[string]string{
				"firstName":   "User",
				"lastName":    fmt.Sprint(i),
				"email":       fmt.Sprintf("user%d@example.com", i),
				"password":    "secret1",
				"phoneNumber": fmt.Sprintf("555-010%d", i),
			})
			req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, -1)
			if err != nil {
				statuses <- 0
				return
			}
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)
	for status := range statuses {
		assert.Equal(t, http.StatusCreated, status)
	}

	users, total, err := store.List(context.Background(), "users", database.ListQuery{})
	require.NoError(t, err)
	require.Equal(t, n, total)
	admins := 0
	for _, u := range users {
		if u.Text("userRole") == "admin" {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
}

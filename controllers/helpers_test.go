package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/niccoates/dail/controllers"
	"github.com/niccoates/dail/routes"
	"github.com/niccoates/dail/storage"
	"github.com/niccoates/dail/uploads"
)

const appSecret = "тестовая-соль"

// newTestApp собирает приложение на хранилище в памяти.
func newTestApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()
	t.Setenv("JWT_SECRET", "access-секрет")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-секрет")

	store := storage.NewMemoryStore()
	uploader, err := uploads.NewLocalUploader(t.TempDir(), "")
	require.NoError(t, err)
	controllers.Setup(store, appSecret, uploader)

	app := fiber.New()
	routes.Setup(app)
	return app, store
}

// doJSON выполняет запрос с JSON-телом через app.Test.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func signup(t *testing.T, app *fiber.App, email, password string) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// login возвращает access токен и refresh cookie.
func login(t *testing.T, app *fiber.App, email, password string) (string, *http.Cookie) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/auth/session", "", fiber.Map{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refresh *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			refresh = c
		}
	}

	body := decodeBody(t, resp)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token, refresh
}

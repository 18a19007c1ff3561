package controllers_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{
		"email":    "a@x.com",
		"password": "секретный-пароль",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "a@x.com", body["email"])
}

func TestSignupDuplicate(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "a@x.com", "пароль-1")

	resp := doJSON(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{
		"email":    "a@x.com",
		"password": "пароль-2",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["error"])
}

func TestSignupMissingFields(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/auth/signup", "", fiber.Map{"password": "п"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestLogin(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "a@x.com", "секретный-пароль")

	token, refresh := login(t, app, "a@x.com", "секретный-пароль")
	assert.NotEmpty(t, token)
	require.NotNil(t, refresh, "refresh токен выдается в httpOnly cookie")
	assert.True(t, refresh.HttpOnly)
	assert.NotEmpty(t, refresh.Value)
}

// Неверный пароль и несуществующий аккаунт дают одинаковый ответ:
// по нему нельзя понять, какая из причин сработала.
func TestLoginUniformFailure(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "a@x.com", "правильный-пароль")

	wrongPass := doJSON(t, app, http.MethodPost, "/auth/session", "", fiber.Map{
		"email":    "a@x.com",
		"password": "неправильный",
	})
	noAccount := doJSON(t, app, http.MethodPost, "/auth/session", "", fiber.Map{
		"email":    "nobody@x.com",
		"password": "любой",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPass.StatusCode)
	require.Equal(t, http.StatusUnauthorized, noAccount.StatusCode)

	b1, _ := io.ReadAll(wrongPass.Body)
	b2, _ := io.ReadAll(noAccount.Body)
	wrongPass.Body.Close()
	noAccount.Body.Close()
	assert.Equal(t, string(b1), string(b2))
}

func TestRefresh(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "a@x.com", "пароль")
	_, refresh := login(t, app, "a@x.com", "пароль")
	require.NotNil(t, refresh)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(refresh)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["access_token"])
}

func TestRefreshWithoutCookie(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// После logout сохраненная сессия отозвана: refresh тем же токеном не проходит.
func TestLogoutRevokesRefresh(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "a@x.com", "пароль")
	_, refresh := login(t, app, "a@x.com", "пароль")
	require.NotNil(t, refresh)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(refresh)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(refresh)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

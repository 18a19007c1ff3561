package controllers_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niccoates/dail/models"
	"github.com/niccoates/dail/storage"
	"github.com/niccoates/dail/uploads"
)

func TestUpdateProfileName(t *testing.T) {
	app, store := newTestApp(t)
	signup(t, app, "a@x.com", "пароль")
	token, _ := login(t, app, "a@x.com", "пароль")

	resp := doJSON(t, app, http.MethodPut, "/user/profile", token, fiber.Map{
		"name":  "Ника",
		"email": "a@x.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	users := storage.NewUserStore(store, appSecret)
	got, err := users.Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ника", got.Name)
}

// Смена email: после переноса достижима ровно одна запись — под новым ключом.
func TestUpdateProfileRename(t *testing.T) {
	app, store := newTestApp(t)
	signup(t, app, "old@x.com", "пароль")
	token, _ := login(t, app, "old@x.com", "пароль")

	resp := doJSON(t, app, http.MethodPut, "/user/profile", token, fiber.Map{
		"name":  "Ника",
		"email": "new@x.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["access_token"], "после смены email выдается новая пара токенов")

	users := storage.NewUserStore(store, appSecret)
	got, err := users.Get(context.Background(), "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", got.Email)
	assert.NotEmpty(t, got.Password, "хеш пароля переносится")

	_, err = users.Get(context.Background(), "old@x.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Новый access токен действует от имени нового email
	newToken, _ := body["access_token"].(string)
	month := doJSON(t, app, http.MethodGet, "/calendar?year=2024&month=03", newToken, nil)
	assert.Equal(t, http.StatusOK, month.StatusCode)
	month.Body.Close()
}

func TestUpdateProfileValidation(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "a@x.com", "пароль")
	token, _ := login(t, app, "a@x.com", "пароль")

	for _, body := range []fiber.Map{
		{"name": "", "email": "a@x.com"},
		{"name": "Ника", "email": ""},
		{"name": "Ника", "email": "не-email"},
	} {
		resp := doJSON(t, app, http.MethodPut, "/user/profile", token, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestUpdateProfileRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodPut, "/user/profile", "", fiber.Map{"name": "Ника", "email": "a@x.com"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

// photoRequest собирает multipart-запрос с полем photo.
func photoRequest(t *testing.T, token, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="photo"; filename="avatar"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/user/photo", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// Удаление учетной записи убирает запись, календарные корзины и сессию.
func TestDeleteAccount(t *testing.T) {
	app, store := newTestApp(t)
	signup(t, app, "a@x.com", "пароль")
	token, refresh := login(t, app, "a@x.com", "пароль")

	resp := doJSON(t, app, http.MethodPost, "/calendar", token, fiber.Map{
		"date": "2024-03-05",
		"type": "event",
		"data": fiber.Map{"startTime": "09:00", "endTime": "10:00", "title": "Встреча"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/user/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	users := storage.NewUserStore(store, appSecret)
	_, err := users.Get(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	calendar := storage.NewCalendarStore(store, appSecret)
	events, err := calendar.Events(context.Background(), "a@x.com", "2024-03")
	require.NoError(t, err)
	assert.Empty(t, events)

	// Сессия отозвана: refresh токен больше не принимается
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(refresh)
	refreshResp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, refreshResp.StatusCode)
	refreshResp.Body.Close()
}

func TestDeleteAccountRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, http.MethodDelete, "/user/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadPhoto(t *testing.T) {
	app, store := newTestApp(t)
	signup(t, app, "a@x.com", "пароль")
	token, _ := login(t, app, "a@x.com", "пароль")

	resp, err := app.Test(photoRequest(t, token, "image/png", []byte("png-байты")))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	url, _ := body["image"].(string)
	require.NotEmpty(t, url)

	users := storage.NewUserStore(store, appSecret)
	got, err := users.Get(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, url, got.Image, "ссылка на аватар сохраняется в профиле")
}

func TestUploadPhotoRejectsType(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "a@x.com", "пароль")
	token, _ := login(t, app, "a@x.com", "пароль")

	resp, err := app.Test(photoRequest(t, token, "application/pdf", []byte("pdf")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadPhotoRejectsOversize(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "a@x.com", "пароль")
	token, _ := login(t, app, "a@x.com", "пароль")

	big := make([]byte, uploads.MaxAvatarSize+1)
	resp, err := app.Test(photoRequest(t, token, "image/png", big))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUploadPhotoMissingFile(t *testing.T) {
	app, _ := newTestApp(t)
	signup(t, app, "a@x.com", "пароль")
	token, _ := login(t, app, "a@x.com", "пароль")

	resp := doJSON(t, app, http.MethodPost, "/user/photo", token, fiber.Map{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

package handler

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer_Open(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/customers", "", map[string]any{
		"name":  "Carol",
		"email": "carol@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got := decodeBody[customerJSON](t, resp)
	assert.NotZero(t, got.ID)
	assert.Equal(t, []string{"CUSTOMER"}, got.Roles)
}

func TestCreateCustomer_EmailTaken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/customers", "", map[string]any{
		"name":  "Impostor",
		"email": "alice@example.com",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCreateCustomer_MissingFields(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/customers", "", map[string]any{"name": "NoMail"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateCustomer_Self(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPut, "/customers/1", "alice-key", map[string]any{
		"name":  "Alicia",
		"email": "alicia@example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody[customerJSON](t, resp)
	assert.Equal(t, "Alicia", got.Name)
}

func TestDeleteCustomer_AdminOnly(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodDelete, "/customers/2", "alice-key", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/customers/2", "admin-key", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestGetCustomerByEmail(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/customers/by-email?value=alice@example.com", "admin-key", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decodeBody[customerJSON](t, resp)
	assert.Equal(t, int64(1), got.ID)

	resp = env.do(t, http.MethodGet, "/customers/by-email?value=nobody@example.com", "admin-key", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func pngUpload(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	img.Set(0, 0, color.White)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(part, img))
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadCustomerPicture(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := pngUpload(t)
	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/customers/1/picture", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(APIKeyHeader, "alice-key")

	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"cp1.jpg"}, env.blobs.keys)

	stored, err := env.customers.GetByID(req.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "/media/cp1.jpg", stored.PictureURL)
}

func TestUploadCustomerPicture_OtherCustomerForbidden(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := pngUpload(t)
	req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/customers/2/picture", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(APIKeyHeader, "alice-key")

	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, env.blobs.keys, "rejected upload must not reach the blob store")
}

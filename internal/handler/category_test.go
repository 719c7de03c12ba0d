package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_ReadPublic(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]categoryJSON](t, resp), 1)

	resp = env.do(t, http.MethodGet, "/categories/1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Computers", decodeBody[categoryJSON](t, resp).Name)
}

func TestCategories_WriteAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{"name": "Audio"}

	resp := env.do(t, http.MethodPost, "/categories", "", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/categories", "alice-key", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/categories", "admin-key", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[categoryJSON](t, resp)
	assert.NotZero(t, created.ID)

	resp = env.do(t, http.MethodPut, "/categories/1", "admin-key", map[string]any{"name": "Hardware"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hardware", decodeBody[categoryJSON](t, resp).Name)

	resp = env.do(t, http.MethodDelete, "/categories/1", "admin-key", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestProducts_Read(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]productJSON](t, resp), 2)

	resp = env.do(t, http.MethodGet, "/products/7", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Gaming laptop", decodeBody[productJSON](t, resp).Name)

	resp = env.do(t, http.MethodGet, "/products/404", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

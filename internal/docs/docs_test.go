package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONDocument(t *testing.T) {
	raw, err := JSON()
	require.NoError(t, err)

	var doc struct {
		OpenAPI string                            `json:"openapi"`
		Paths   map[string]map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	for _, p := range []string{"/auth/login", "/auth/register", "/customers/{id}", "/invoices/{id}/status", "/services/search", "/users"} {
		assert.Contains(t, doc.Paths, p)
	}
	assert.Contains(t, doc.Paths["/invoices/{id}/status"], "patch")
}

func TestStringKeys(t *testing.T) {
	in := map[interface{}]interface{}{200: "ok", "nested": []interface{}{map[interface{}]interface{}{true: 1}}}
	out := stringKeys(in)
	_, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.(map[string]interface{})["200"])
}

func TestRegister(t *testing.T) {
	e := echo.New()
	require.NoError(t, Register(e))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, json.Valid(rec.Body.Bytes()))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api-docs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/swagger.json")
}

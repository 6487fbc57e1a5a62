package routes

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-hull/inventory-console/internal/credentials"
	"github.com/rm-hull/inventory-console/internal/dashboard"
	"github.com/rm-hull/inventory-console/internal/gateway"
	"github.com/rm-hull/inventory-console/internal/inventory"
	"github.com/rm-hull/inventory-console/internal/mockapi"
	"github.com/rm-hull/inventory-console/internal/models"
	"github.com/rm-hull/inventory-console/internal/notify"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newConsole(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api, err := mockapi.New(mockapi.Config{Username: "admin", Password: "hunter2"})
	require.NoError(t, err)
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)

	feed := notify.NewFeed(0)
	gw := gateway.New(gateway.Config{BaseURL: ts.URL}, credentials.NewMemoryStore(models.Credential{}), feed)
	client := inventory.NewClient(gw)

	r := gin.New()
	Register(r.Group("/v1"), Console{
		Collections: client,
		Dashboard:   dashboard.NewService(client, time.Minute),
		Feed:        feed,
		Session:     gw,
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func TestSessionRoutes(t *testing.T) {
	h := newConsole(t)

	status, body := do(t, h, http.MethodGet, "/v1/session", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["loggedIn"])

	status, body = do(t, h, http.MethodPost, "/v1/session/login", `{"username": "admin"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "username and password are required", body["error"])

	status, body = do(t, h, http.MethodPost, "/v1/session/login", `{"username": "admin", "password": "guess"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid username or password", body["error"])

	status, _ = do(t, h, http.MethodPost, "/v1/session/login", `{"username": "admin", "password": "hunter2"}`)
	require.Equal(t, http.StatusOK, status)

	status, body = do(t, h, http.MethodGet, "/v1/session", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["loggedIn"])

	status, _ = do(t, h, http.MethodPost, "/v1/session/logout", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, body = do(t, h, http.MethodGet, "/v1/resources/units", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Session expired, please log in again", body["error"])
}

func TestResourceRoutes(t *testing.T) {
	h := newConsole(t)
	status, _ := do(t, h, http.MethodPost, "/v1/session/login", `{"username": "admin", "password": "hunter2"}`)
	require.Equal(t, http.StatusOK, status)

	status, body := do(t, h, http.MethodGet, "/v1/dashboard", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0.0, body["counts"].(map[string]any)["products"])

	status, created := do(t, h, http.MethodPost, "/v1/resources/products",
		`{"name": "Hammer", "sku": "TL-001", "price": "12.50", "quantity": 2, "reorderLevel": 5}`)
	require.Equal(t, http.StatusCreated, status)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)

	t.Run("Writes invalidate the dashboard", func(t *testing.T) {
		status, body := do(t, h, http.MethodGet, "/v1/dashboard", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 1.0, body["counts"].(map[string]any)["products"])
		assert.Len(t, body["lowStock"], 1)
	})

	t.Run("Validation happens before the upstream call", func(t *testing.T) {
		status, body := do(t, h, http.MethodPost, "/v1/resources/products", `{"name": "Nameless"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid sku: is required", body["error"])

		status, _ = do(t, h, http.MethodPost, "/v1/resources/products", `{"name": `)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("Unknown kind", func(t *testing.T) {
		status, _ := do(t, h, http.MethodGet, "/v1/resources/orders", "")
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("List with query", func(t *testing.T) {
		status, body := do(t, h, http.MethodGet, "/v1/resources/units?q=metre&sort=name&desc=true&page_size=1", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 2.0, body["total"])
		assert.Equal(t, 2.0, body["totalPages"])

		items := body["items"].([]any)
		require.Len(t, items, 1)
		assert.Equal(t, "Square metre", items[0].(map[string]any)["name"])

		status, body = do(t, h, http.MethodGet, "/v1/resources/units?page=184467440737095516", "")
		require.Equal(t, http.StatusOK, status)
		assert.Empty(t, body["items"])

		status, body = do(t, h, http.MethodGet, "/v1/resources/units?page=zero", "")
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid page parameter", body["error"])
	})

	t.Run("Update, get and delete", func(t *testing.T) {
		status, body := do(t, h, http.MethodPut, "/v1/resources/products/"+id,
			`{"name": "Claw hammer", "sku": "TL-001", "price": "13.00", "quantity": 8, "reorderLevel": 5}`)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Claw hammer", body["name"])

		status, body = do(t, h, http.MethodGet, "/v1/resources/products/"+id, "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, 8.0, body["quantity"])

		status, _ = do(t, h, http.MethodDelete, "/v1/resources/products/"+id, "")
		assert.Equal(t, http.StatusNoContent, status)

		status, body = do(t, h, http.MethodGet, "/v1/resources/products/"+id, "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "Product not found", body["error"])
	})

	t.Run("Notifications", func(t *testing.T) {
		status, body := do(t, h, http.MethodGet, "/v1/notifications?all=true", "")
		require.Equal(t, http.StatusOK, status)

		var messages []string
		for _, n := range body["notifications"].([]any) {
			messages = append(messages, n.(map[string]any)["message"].(string))
		}
		assert.Equal(t, []string{
			"Welcome back, admin",
			"Product created",
			"Product updated",
			"Product deleted",
			"Product not found",
		}, messages)
	})
}

package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-hull/inventory-console/internal/inventory"
	"github.com/rm-hull/inventory-console/internal/mockapi"
)

func newOptions(t *testing.T) (Options, *mockapi.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api, err := mockapi.New(mockapi.Config{Username: "admin", Password: "hunter2"})
	require.NoError(t, err)
	ts := httptest.NewServer(api.Handler())
	t.Cleanup(ts.Close)

	return Options{
		SessionDB: filepath.Join(t.TempDir(), "session.db"),
		BaseURL:   ts.URL,
	}, api
}

func TestSessionCommands(t *testing.T) {
	ctx := context.Background()
	opts, api := newOptions(t)

	var out bytes.Buffer
	require.NoError(t, Status(&out, opts))
	assert.Equal(t, "Not logged in\n", out.String())

	require.Error(t, Login(ctx, opts, "admin", ""))
	require.Error(t, Login(ctx, opts, "admin", "wrong"))
	require.NoError(t, Login(ctx, opts, "admin", "hunter2"))

	out.Reset()
	require.NoError(t, Status(&out, opts))
	assert.Equal(t, "Logged in to "+opts.BaseURL+"\n", out.String())

	t.Run("Saved session is refreshed across invocations", func(t *testing.T) {
		api.RevokeAccessTokens()

		out.Reset()
		require.NoError(t, List(ctx, &out, opts, "units", inventory.Query{Search: "gram", SortBy: "name"}))
		assert.Contains(t, out.String(), `"Gram"`)
		assert.Contains(t, out.String(), `"Kilogram"`)
		assert.Equal(t, 1, api.RefreshCount())

		out.Reset()
		require.NoError(t, List(ctx, &out, opts, "units", inventory.Query{}))
		assert.Equal(t, 1, api.RefreshCount())
	})

	require.NoError(t, Logout(opts))
	out.Reset()
	require.NoError(t, Status(&out, opts))
	assert.Equal(t, "Not logged in\n", out.String())
}

func TestResourceCommands(t *testing.T) {
	ctx := context.Background()
	opts, _ := newOptions(t)
	require.NoError(t, Login(ctx, opts, "admin", "hunter2"))

	err := List(ctx, &bytes.Buffer{}, opts, "orders", inventory.Query{})
	assert.True(t, errors.Is(err, inventory.ErrUnknownKind))

	sess, err := bootstrap(opts, nil)
	require.NoError(t, err)
	created, err := sess.client.Vendors.Create(ctx, inventory.Vendor{Name: "Acme", Email: "sales@acme.test"})
	sess.Close()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Get(ctx, &out, opts, "Vendors", created.ID))
	assert.Contains(t, out.String(), `"sales@acme.test"`)

	require.NoError(t, Delete(ctx, opts, "vendors", created.ID))
	assert.Error(t, Get(ctx, &out, opts, "vendors", created.ID))
}

package mockapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
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

// barrier holds the first n resource requests until all of them have
// arrived, and slows the refresh endpoint down so that every held request
// sees its 401 while the refresh is still underway.
type barrier struct {
	next    http.Handler
	mu      sync.Mutex
	waiting int
	release chan struct{}
}

func newBarrier(next http.Handler, n int) *barrier {
	return &barrier{next: next, waiting: n, release: make(chan struct{})}
}

func (b *barrier) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/auth/") {
		if r.URL.Path == "/auth/refresh" {
			time.Sleep(200 * time.Millisecond)
		}
		b.next.ServeHTTP(w, r)
		return
	}

	b.mu.Lock()
	held := b.waiting > 0
	if held {
		b.waiting--
		if b.waiting == 0 {
			close(b.release)
		}
	}
	b.mu.Unlock()

	if held {
		select {
		case <-b.release:
		case <-time.After(5 * time.Second):
		}
	}
	b.next.ServeHTTP(w, r)
}

type harness struct {
	api   *mockapi.Server
	store credentials.Store
	feed  *notify.Feed
	gw    *gateway.Gateway
}

func newHarness(t *testing.T, wrap func(http.Handler) http.Handler) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api, err := mockapi.New(mockapi.Config{Username: "admin", Password: "hunter2", AccessTokenTTL: time.Minute})
	require.NoError(t, err)

	handler := api.Handler()
	if wrap != nil {
		handler = wrap(handler)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	store := credentials.NewMemoryStore(models.Credential{})
	feed := notify.NewFeed(0)
	gw := gateway.New(gateway.Config{BaseURL: ts.URL, RefreshTimeout: 5 * time.Second}, store, feed)

	return &harness{api: api, store: store, feed: feed, gw: gw}
}

func messages(feed *notify.Feed) []string {
	var out []string
	for _, n := range feed.All() {
		out = append(out, string(n.Severity)+": "+n.Message)
	}
	return out
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	client := inventory.NewClient(h.gw)

	require.NoError(t, h.gw.Login(ctx, "admin", "hunter2"))
	assert.True(t, h.store.State().LoggedIn())

	product, err := client.Products.Create(ctx, inventory.Product{
		Name:     "Hammer",
		SKU:      "TL-001",
		Price:    decimal.RequireFromString("12.50"),
		Quantity: 3,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.True(t, decimal.RequireFromString("12.5").Equal(product.Price))

	units, err := client.Units.List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, units)

	assert.Equal(t, []string{
		"success: Welcome back, admin",
		"success: Product created",
	}, messages(h.feed))

	t.Run("Upstream errors are surfaced", func(t *testing.T) {
		err := client.Products.Delete(ctx, "missing")
		assert.Equal(t, http.StatusNotFound, gateway.StatusCode(err))
		assert.Contains(t, messages(h.feed), "error: Product not found")
	})

	t.Run("Bad password", func(t *testing.T) {
		err := h.gw.Login(ctx, "admin", "wrong")
		assert.Equal(t, http.StatusUnauthorized, gateway.StatusCode(err))
	})

	require.NoError(t, h.gw.Logout())
	assert.False(t, h.store.State().LoggedIn())
}

func TestExpiredSessionIsRefreshedOnce(t *testing.T) {
	ctx := context.Background()
	var gate *barrier
	h := newHarness(t, func(next http.Handler) http.Handler {
		gate = newBarrier(next, len(inventory.Kinds))
		return gate
	})

	require.NoError(t, h.gw.Login(ctx, "admin", "hunter2"))
	before := h.store.State()
	h.api.RevokeAccessTokens()

	svc := dashboard.NewService(inventory.NewClient(h.gw), time.Minute)
	summary, err := svc.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, h.api.RefreshCount())
	assert.Equal(t, 10, summary.Counts[inventory.Units])

	after := h.store.State()
	assert.NotEqual(t, before.AccessToken, after.AccessToken)
	assert.NotEqual(t, before.RefreshToken, after.RefreshToken)
}

func TestRejectedRefreshEndsTheSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, nil)
	client := inventory.NewClient(h.gw)

	require.NoError(t, h.gw.Login(ctx, "admin", "hunter2"))
	require.NoError(t, h.store.SetRefreshToken("not-a-real-refresh-token"))
	h.api.RevokeAccessTokens()

	_, err := client.Categories.List(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrRefreshFailed))
	assert.False(t, h.store.State().LoggedIn())
	assert.Equal(t, 1, h.api.RefreshCount())

	t.Run("Without a refresh token no refresh call is made", func(t *testing.T) {
		require.NoError(t, h.gw.Login(ctx, "admin", "hunter2"))
		require.NoError(t, h.store.SetRefreshToken(""))
		h.api.RevokeAccessTokens()

		_, err := client.Categories.List(ctx)
		assert.True(t, errors.Is(err, gateway.ErrRefreshFailed))
		assert.Equal(t, 1, h.api.RefreshCount())
	})
}

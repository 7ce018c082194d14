package metrics

import (
	"io"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct{ up atomic.Bool }

func (f *fakeStore) Available() bool { return f.up.Load() }

func TestMiddlewareRecordsRenderedStatus(t *testing.T) {
	store := &fakeStore{}
	m := New(store)

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	for _, path := range []string{"/ok", "/ok", "/teapot"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	text := scrape(t, m)
	assert.Contains(t, text, `inventory_http_requests_total{method="GET",route="/ok",status="200"} 2`)
	assert.Contains(t, text, `inventory_http_requests_total{method="GET",route="/teapot",status="418"} 1`)
	assert.Contains(t, text, "inventory_http_requests_in_flight 0")
	assert.Contains(t, text, "inventory_store_up 0")
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHandlerExposesStoreAndMutations(t *testing.T) {
	store := &fakeStore{}
	store.up.Store(true)
	m := New(store)
	m.ObserveProductMutation("product.created")

	text := scrape(t, m)
	assert.Contains(t, text, "inventory_store_up 1")
	assert.Contains(t, text, `inventory_products_mutations_total{event="product.created"} 1`)
}

package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamewishlabs/gamewish-backend/pkg/config"
	pkgerrors "github.com/gamewishlabs/gamewish-backend/pkg/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.ITADConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
}

func TestResolveFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/lookup/v1", r.URL.Path)
		assert.Equal(t, "Portal 2", r.URL.Query().Get("title"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		json.NewEncoder(w).Encode(map[string]any{
			"found": true,
			"game":  map[string]any{"id": "018d937e-0001", "title": "Portal 2"},
		})
	}))

	game, err := client.Resolve(context.Background(), "Portal 2")
	require.NoError(t, err)
	assert.Equal(t, "018d937e-0001", game.ID)
	assert.Equal(t, "Portal 2", game.Title)
}

func TestResolveNumericID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"found": true,
			"game":  map[string]any{"id": 18705, "title": "Portal 2"},
		})
	}))

	game, err := client.Resolve(context.Background(), "Portal 2")
	require.NoError(t, err)
	assert.Equal(t, "18705", game.ID)
}

func TestResolveNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"found": false})
	}))

	_, err := client.Resolve(context.Background(), "Portal 7")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestResolveServiceError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Resolve(context.Background(), "Portal 2")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCurrentPrice(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/overview/v2", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var ids []string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ids))
		assert.Equal(t, []string{"018d937e-0001"}, ids)

		json.NewEncoder(w).Encode(map[string]any{
			"prices": []map[string]any{{
				"current": map[string]any{
					"price":   map[string]any{"amount": 4.99},
					"regular": map[string]any{"amount": 19.99},
					"shop":    map[string]any{"name": "Steam"},
				},
			}},
		})
	}))

	quote, err := client.CurrentPrice(context.Background(), "018d937e-0001")
	require.NoError(t, err)
	assert.Equal(t, "4.99", quote.Deal.String())
	assert.Equal(t, "19.99", quote.Regular.String())
	assert.Equal(t, "Steam", quote.Shop)
	assert.True(t, quote.IsDeal())
}

func TestCurrentPriceUnavailable(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"prices": []map[string]any{}})
	}))

	_, err := client.CurrentPrice(context.Background(), "018d937e-0001")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestIsDealEqualPricesIsNotADeal(t *testing.T) {
	quote := Quote{
		Deal:    decimal.RequireFromString("19.99"),
		Regular: decimal.RequireFromString("19.99"),
	}
	assert.False(t, quote.IsDeal())
}

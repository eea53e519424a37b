package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchProductsSendsQueryAndAuth(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[{"id":"p-1","title":"Wireless Headset","price_cents":14900,"brand":"Acme"}],"total":1}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, WithAPIKey("test-key"))
	products, err := client.SearchProducts(context.Background(), "headset", 200, 5)
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, "p-1", products[0].ID)
	assert.Equal(t, "Wireless Headset", products[0].Title)

	assert.Equal(t, "/v1/products/search", gotPath)
	assert.Equal(t, []string{"headset"}, gotQuery["q"])
	assert.Equal(t, []string{"200"}, gotQuery["max_price"])
	assert.Equal(t, []string{"5"}, gotQuery["offset"])
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestSearchProductsOmitsOptionalParams(t *testing.T) {
	var gotQuery map[string][]string
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"products":[],"total":0}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.SearchProducts(context.Background(), "headset", 0, 0)
	require.NoError(t, err)

	assert.NotContains(t, gotQuery, "max_price")
	assert.NotContains(t, gotQuery, "offset")
	assert.Empty(t, gotAuth)
}

func TestSearchProductsEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"total":0}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	products, err := client.SearchProducts(context.Background(), "headset", 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestSearchProductsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 500)))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.SearchProducts(context.Background(), "headset", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	// Long provider bodies are truncated in the error message.
	assert.Contains(t, err.Error(), "...")
	assert.Less(t, len(err.Error()), 300)
}

func TestSearchProductsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.SearchProducts(context.Background(), "headset", 0, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestSearchProductsMissingBaseURL(t *testing.T) {
	client := NewClient("", nil)
	_, err := client.SearchProducts(context.Background(), "headset", 0, 0)
	require.Error(t, err)
}

package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/iyhunko/catalogo-prodotti/internal/gateway"
	"github.com/iyhunko/catalogo-prodotti/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// newBackend starts a test server that records every request and answers with status and body.
func newBackend(t *testing.T, status int, body string) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(raw)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), requests...)
	}
}

func TestClient_List(t *testing.T) {
	t.Run("decodes the product list", func(t *testing.T) {
		// given
		srv, recorded := newBackend(t, http.StatusOK,
			`[{"id":1,"nome":"Pen","prezzo":2,"disponibile":true},{"id":2,"nome":"Mug","prezzo":10.5,"disponibile":false}]`)
		client := gateway.New(srv.URL, "prodotti")

		// when
		products, err := client.List(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, []model.Product{
			{ID: 1, Name: "Pen", Price: 2, Available: true},
			{ID: 2, Name: "Mug", Price: 10.5, Available: false},
		}, products)
		requests := recorded()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodGet, requests[0].Method)
		assert.Equal(t, "/prodotti", requests[0].Path)
	})

	t.Run("server error is a StatusError", func(t *testing.T) {
		// given
		srv, _ := newBackend(t, http.StatusInternalServerError, `{"error":"down"}`)
		client := gateway.New(srv.URL, "prodotti")

		// when
		products, err := client.List(context.Background())

		// then
		require.Error(t, err)
		assert.Nil(t, products)
		var statusErr *gateway.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Equal(t, http.MethodGet, statusErr.Method)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		client := gateway.New(url, "prodotti")

		_, err := client.List(context.Background())
		assert.Error(t, err)
	})
}

func TestClient_Create(t *testing.T) {
	// given
	srv, recorded := newBackend(t, http.StatusCreated, `{"id":7,"nome":"Mug","prezzo":10,"disponibile":true}`)
	client := gateway.New(srv.URL, "prodotti")

	// when
	created, err := client.Create(context.Background(), model.NewProduct{Name: "Mug", Price: 10, Available: true})

	// then
	require.NoError(t, err)
	assert.Equal(t, model.Product{ID: 7, Name: "Mug", Price: 10, Available: true}, created)
	requests := recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].Method)
	assert.Equal(t, "/prodotti", requests[0].Path)
	assert.JSONEq(t, `{"nome":"Mug","prezzo":10,"disponibile":true}`, requests[0].Body)
}

func TestClient_Update(t *testing.T) {
	t.Run("sends only the patched field", func(t *testing.T) {
		// given
		srv, recorded := newBackend(t, http.StatusOK, `{"id":1,"nome":"Pen","prezzo":2,"disponibile":false}`)
		client := gateway.New(srv.URL, "prodotti")

		// when
		err := client.Update(context.Background(), 1, model.AvailabilityPatch(false))

		// then
		require.NoError(t, err)
		requests := recorded()
		require.Len(t, requests, 1)
		assert.Equal(t, http.MethodPatch, requests[0].Method)
		assert.Equal(t, "/prodotti/1", requests[0].Path)

		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(requests[0].Body), &body))
		assert.Equal(t, map[string]any{"disponibile": false}, body)
	})

	t.Run("not found", func(t *testing.T) {
		srv, _ := newBackend(t, http.StatusNotFound, `{}`)
		client := gateway.New(srv.URL, "prodotti")

		err := client.Update(context.Background(), 99, model.AvailabilityPatch(true))

		var statusErr *gateway.StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Equal(t, "/prodotti/99", statusErr.Path)
	})
}

func TestClient_Delete(t *testing.T) {
	// given
	srv, recorded := newBackend(t, http.StatusOK, `{}`)
	client := gateway.New(srv.URL, "prodotti")

	// when
	err := client.Delete(context.Background(), 3)

	// then
	require.NoError(t, err)
	requests := recorded()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodDelete, requests[0].Method)
	assert.Equal(t, "/prodotti/3", requests[0].Path)
	assert.Empty(t, requests[0].Body)
}

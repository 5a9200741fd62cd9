package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	client.SetTokenSource(func() string { return "tok123" })

	require.NoError(t, client.request(context.Background(), http.MethodGet, "/x", nil, nil))
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestClientNoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	require.NoError(t, client.request(context.Background(), http.MethodGet, "/x", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestClientErrorShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"amount must be positive","field":"amount"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.request(context.Background(), http.MethodPost, "/x", map[string]int{"amount": -1}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "amount must be positive", apiErr.Detail)
	assert.Equal(t, "amount", apiErr.Fields["field"])
	assert.Contains(t, apiErr.Error(), "amount must be positive")
}

func TestClientErrorEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.request(context.Background(), http.MethodGet, "/x", nil, nil)

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Detail)
	assert.Empty(t, apiErr.Fields)
}

func TestClientErrorNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream maintenance"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.request(context.Background(), http.MethodGet, "/x", nil, nil)

	apiErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "upstream maintenance", apiErr.Detail)
}

func TestClientUnauthorizedHookFiresOncePerResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"expired"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	calls := 0
	client.OnUnauthorized(func() { calls++ })

	err := client.request(context.Background(), http.MethodGet, "/x", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	err = client.request(context.Background(), http.MethodGet, "/x", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestClientUnauthorizedHookNotFiredOnOtherErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	calls := 0
	client.OnUnauthorized(func() { calls++ })

	require.Error(t, client.request(context.Background(), http.MethodGet, "/x", nil, nil))
	assert.Zero(t, calls)
}

func TestClientEmptySuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	var out struct {
		Value string `json:"value"`
	}
	require.NoError(t, client.request(context.Background(), http.MethodGet, "/x", nil, &out))
	assert.Empty(t, out.Value)
}

func TestClientMultipartEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "120.50", r.FormValue("amount"))

		file, header, err := r.FormFile("screenshot")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "receipt.png", header.Filename)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	err := client.requestMultipart(context.Background(), http.MethodPost, "/x",
		map[string]string{"amount": "120.50"},
		map[string]File{"screenshot": {Name: "receipt.png", Content: []byte{0x89, 'P', 'N', 'G'}}},
		nil)
	require.NoError(t, err)
}

func TestParseLoose(t *testing.T) {
	assert.Empty(t, parseLoose(nil))
	assert.Empty(t, parseLoose([]byte("  \n")))
	assert.Equal(t, map[string]interface{}{"detail": "plain text"}, parseLoose([]byte("plain text")))
	assert.Equal(t, map[string]interface{}{"detail": "null"}, parseLoose([]byte("null")))
	assert.Equal(t, map[string]interface{}{"a": "b"}, parseLoose([]byte(`{"a":"b"}`)))
}

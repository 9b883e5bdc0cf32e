package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0.5,"IDR":15000}}`))
	}))
	defer server.Close()

	converter := NewConverter(server.URL, time.Second)

	got := converter.Convert(context.Background(), 100, "USD", "EUR")
	require.NotNil(t, got)
	assert.Equal(t, 50.0, *got)
}

func TestConvert_SameCurrency(t *testing.T) {
	// No server: a same-currency conversion must not make a request
	converter := NewConverter("http://127.0.0.1:0", time.Second)

	got := converter.Convert(context.Background(), 42.5, "USD", "USD")
	require.NotNil(t, got)
	assert.Equal(t, 42.5, *got)
}

func TestConvert_UnknownTargetCurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0.5}}`))
	}))
	defer server.Close()

	converter := NewConverter(server.URL, time.Second)

	got := converter.Convert(context.Background(), 100, "USD", "XXX")
	assert.Nil(t, got)
}

func TestConvert_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	converter := NewConverter(server.URL, time.Second)

	got := converter.Convert(context.Background(), 100, "USD", "EUR")
	assert.Nil(t, got)
}

func TestConvert_Unreachable(t *testing.T) {
	converter := NewConverter("http://127.0.0.1:1", 100*time.Millisecond)

	got := converter.Convert(context.Background(), 100, "USD", "EUR")
	assert.Nil(t, got)
}

func TestConvert_Rounding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0.333333}}`))
	}))
	defer server.Close()

	converter := NewConverter(server.URL, time.Second)

	got := converter.Convert(context.Background(), 100, "USD", "EUR")
	require.NotNil(t, got)
	assert.Equal(t, 33.33, *got)
}

package credentials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testEndpoint = Endpoint{
	Region: "ap-south-1",
	Host:   "db.local",
	Port:   "5432",
	User:   "orders",
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	token, err := NewStatic("fixed").Token(context.Background(), testEndpoint)
	require.NoError(t, err)
	require.Equal(t, Token("fixed"), token)

	_, err = NewStatic("").Token(context.Background(), testEndpoint)
	require.ErrorIs(t, err, ErrEmptyToken)
}

func TestVendorClient(t *testing.T) {
	t.Parallel()

	t.Run("fetches token with endpoint parameters", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/token", r.URL.Path)
			require.Equal(t, "ap-south-1", r.URL.Query().Get("region"))
			require.Equal(t, "db.local", r.URL.Query().Get("hostname"))
			require.Equal(t, "5432", r.URL.Query().Get("port"))
			require.Equal(t, "orders", r.URL.Query().Get("username"))
			_, _ = w.Write([]byte("signed-token\n"))
		}))
		defer srv.Close()

		client := NewVendorClient(srv.URL, time.Second, zap.NewNop())
		token, err := client.Token(context.Background(), testEndpoint)
		require.NoError(t, err)
		require.Equal(t, Token("signed-token"), token)
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "denied", http.StatusForbidden)
		}))
		defer srv.Close()

		client := NewVendorClient(srv.URL, time.Second, zap.NewNop())
		_, err := client.Token(context.Background(), testEndpoint)
		require.Error(t, err)
		require.Contains(t, err.Error(), "403")
	})

	t.Run("empty body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("  \n"))
		}))
		defer srv.Close()

		client := NewVendorClient(srv.URL, time.Second, zap.NewNop())
		_, err := client.Token(context.Background(), testEndpoint)
		require.ErrorIs(t, err, ErrEmptyToken)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer srv.Close()

		client := NewVendorClient(srv.URL, time.Minute, zap.NewNop())
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Token(ctx, testEndpoint)
		require.Error(t, err)
	})
}

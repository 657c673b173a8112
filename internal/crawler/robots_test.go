package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRobotsEnforcer(t *testing.T) {
	var robotsFetches atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/robots.txt", r.URL.Path)
		robotsFetches.Add(1)
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	policy := NewRobotsPolicy(true, "test-agent", zap.NewNop())
	ctx := context.Background()

	require.True(t, policy.Allowed(ctx, srv.URL+"/guide/page"))
	require.False(t, policy.Allowed(ctx, srv.URL+"/private/page"))
	require.True(t, policy.Allowed(ctx, srv.URL+"/guide/other"))
	require.Equal(t, int32(1), robotsFetches.Load(), "robots.txt should be fetched once per host")
}

func TestRobotsEnforcerFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	host := srv.URL
	srv.Close() // unreachable from here on

	policy := NewRobotsPolicy(true, "test-agent", zap.NewNop())
	require.True(t, policy.Allowed(context.Background(), host+"/guide/page"))
}

func TestAllowAllPolicy(t *testing.T) {
	policy := NewRobotsPolicy(false, "test-agent", zap.NewNop())
	require.True(t, policy.Allowed(context.Background(), "https://docs.example.com/private/"))
}

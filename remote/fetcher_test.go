package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sv "github.com/reoring/schemavalidator"
	"github.com/reoring/schemavalidator/remote"
	"github.com/reoring/schemavalidator/remote/memory"
)

func schemaServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/person.json":
			w.Header().Set("Content-Type", "application/schema+json")
			_, _ = w.Write([]byte(`{"type":"object"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFetcher_CachesDocuments(t *testing.T) {
	srv, hits := schemaServer(t)
	cache, err := memory.New(4)
	require.NoError(t, err)
	f := remote.NewFetcher(time.Second, cache)

	for i := 0; i < 3; i++ {
		doc, err := f.Fetch(context.Background(), srv.URL+"/person.json")
		require.NoError(t, err)
		require.JSONEq(t, `{"type":"object"}`, string(doc))
	}
	require.EqualValues(t, 1, hits.Load())
	require.Equal(t, 1, cache.Len())
}

func TestFetcher_Errors(t *testing.T) {
	srv, _ := schemaServer(t)
	f := remote.NewFetcher(0, nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/missing.json")
	require.ErrorContains(t, err, "returned status code 404")

	_, err = f.Fetch(context.Background(), "ftp://example.com/s.json")
	require.ErrorIs(t, err, remote.ErrUnsupportedScheme)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, srv.URL+"/person.json")
	require.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	f, err := remote.FromConfig(sv.RemoteConfig{})
	require.NoError(t, err)
	require.Nil(t, f)

	f, err = remote.FromConfig(sv.RemoteConfig{Enabled: true, Cache: "memory", Timeout: 2 * time.Second})
	require.NoError(t, err)
	require.NotNil(t, f.Cache)
	require.Equal(t, 2*time.Second, f.Client.Timeout)

	_, err = remote.FromConfig(sv.RemoteConfig{Enabled: true, Cache: "disk"})
	require.ErrorContains(t, err, `unknown remote cache "disk"`)

	_, err = remote.FromConfig(sv.RemoteConfig{Enabled: true, Cache: "redis"})
	require.ErrorContains(t, err, "redis address is required")
}

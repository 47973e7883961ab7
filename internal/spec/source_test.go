package spec

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceURL(t *testing.T) {
	abs, err := filepath.Abs("testdata/minimal.yaml")
	require.NoError(t, err)
	colon, err := filepath.Abs("zz:missing.yaml")
	require.NoError(t, err)
	ftp, err := filepath.Abs("ftp://example.com/spec.yaml")
	require.NoError(t, err)

	tests := []struct {
		src    Source
		scheme string
		path   string
		remote bool
	}{
		{"testdata/minimal.yaml", "file", filepath.ToSlash(abs), false},
		{"file:///tmp/spec.yaml", "file", "/tmp/spec.yaml", false},
		{"https://example.com/openapi.yaml", "https", "/openapi.yaml", true},
		{"http://localhost:8080/spec.json", "http", "/spec.json", true},
		{"zz:missing.yaml", "file", filepath.ToSlash(colon), false},
		{"ftp://example.com/spec.yaml", "file", filepath.ToSlash(ftp), false},
	}

	for _, tt := range tests {
		u, err := tt.src.URL()
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.scheme, u.Scheme, tt.src)
		assert.Equal(t, tt.path, u.Path, tt.src)
		assert.Equal(t, tt.remote, tt.src.IsRemote(), tt.src)
	}
}

func TestReaderFile(t *testing.T) {
	r := NewReader(nil)
	ctx := context.Background()

	data, err := r.Read(ctx, "testdata/minimal.yaml")
	require.NoError(t, err)
	assert.Equal(t, "openapi: \"3.0.0\"\n", string(data))

	_, err = r.Read(ctx, "missing.yaml")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Read(ctx, "testdata")
	assert.ErrorIs(t, err, ErrIO)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = r.Read(ctx, "")
	assert.ErrorIs(t, err, ErrEmptySource)

	_, err = r.Read(ctx, "ftp://example.com/spec.yaml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReaderColonPath(t *testing.T) {
	data, err := os.ReadFile("testdata/minimal.yaml")
	require.NoError(t, err)
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("ab:c.yaml", data, 0o644))

	got, err := NewReader(nil).Read(context.Background(), "ab:c.yaml")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestReaderUnsupportedScheme(t *testing.T) {
	u, err := url.Parse("ftp://example.com/spec.yaml")
	require.NoError(t, err)

	_, err = NewReader(nil).readURL(context.Background(), Source(u.String()), u)
	assert.ErrorIs(t, err, ErrIO)
}

func TestReaderHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`openapi: "3.0.0"`))
	})
	mux.HandleFunc("/gone.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	mux.HandleFunc("/broken.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/slow.yaml", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	r := NewReader(srv.Client())
	ctx := context.Background()

	data, err := r.Read(ctx, Source(srv.URL+"/openapi.yaml"))
	require.NoError(t, err)
	assert.Equal(t, `openapi: "3.0.0"`, string(data))

	_, err = r.Read(ctx, Source(srv.URL+"/missing.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Read(ctx, Source(srv.URL+"/gone.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Read(ctx, Source(srv.URL+"/broken.yaml"))
	assert.ErrorIs(t, err, ErrIO)
	assert.Contains(t, err.Error(), "500")

	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = r.Read(timeoutCtx, Source(srv.URL+"/slow.yaml"))
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReaderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader(nil).Read(ctx, "testdata/minimal.yaml")
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrTimeout)
}

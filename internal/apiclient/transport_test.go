package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examshare/examshare-client/internal/credentials"
	"github.com/examshare/examshare-client/internal/model"
)

func TestNewTransport(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := NewTransport(TransportConfig{Timeout: 5 * time.Second})
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, c.Timeout)
	})

	t.Run("missing ca file", func(t *testing.T) {
		_, err := NewTransport(TransportConfig{CAFile: filepath.Join(t.TempDir(), "nope.pem")})
		assert.Error(t, err)
	})

	t.Run("ca file without certificates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a cert"), 0o600))

		_, err := NewTransport(TransportConfig{CAFile: path})
		assert.Error(t, err)
	})
}

func TestTransport_Redirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/epreuves/7/download/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/files/7.pdf", http.StatusFound)
	})
	mux.HandleFunc("/files/7.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	httpClient, err := NewTransport(TransportConfig{})
	require.NoError(t, err)

	session := credentials.NewSession(credentials.NewMemoryStore(), "")
	require.NoError(t, session.Save(context.Background(), model.Credentials{AccessToken: "A1", RefreshToken: "R1"}))

	c, err := New(srv.URL+"/api", session, WithHTTPClient(httpClient))
	require.NoError(t, err)

	t.Run("followed by default", func(t *testing.T) {
		resp, err := c.Get(context.Background(), "/epreuves/7/download/")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "%PDF-1.4", string(resp.Body))
	})

	t.Run("returned when disabled", func(t *testing.T) {
		resp, err := c.Get(context.Background(), "/epreuves/7/download/", WithoutRedirects())
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.True(t, resp.IsRedirect())
		assert.Equal(t, "/files/7.pdf", resp.Header.Get("Location"))
	})
}

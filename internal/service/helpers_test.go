package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/examshare/examshare-client/internal/apiclient"
	"github.com/examshare/examshare-client/internal/credentials"
	"github.com/examshare/examshare-client/internal/model"
	"github.com/examshare/examshare-client/internal/navigation"
	"github.com/examshare/examshare-client/internal/testutil"
)

type testEnv struct {
	server  *httptest.Server
	client  *apiclient.Client
	session *credentials.Session
	nav     *navigation.Recorder
}

// newTestEnv starts handler under /api and returns a client logged in as A1/R1.
func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", handler))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	session := credentials.NewSession(credentials.NewMemoryStore(), "")
	require.NoError(t, session.Save(context.Background(), model.Credentials{AccessToken: "A1", RefreshToken: "R1"}))

	httpClient, err := apiclient.NewTransport(apiclient.TransportConfig{})
	require.NoError(t, err)

	nav := &navigation.Recorder{}
	c, err := apiclient.New(srv.URL+"/api", session,
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithNavigator(nav),
		apiclient.WithLogger(testutil.MakeNoopLogger()))
	require.NoError(t, err)

	return &testEnv{server: srv, client: c, session: session, nav: nav}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

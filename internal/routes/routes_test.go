package routes_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/matrix-org/gomatrixserverlib/spec"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/beeper/wellknownserv/internal/config"
	"github.com/beeper/wellknownserv/internal/routes"
)

const wellKnownPath = "/.well-known/matrix/server"

func newTestServer(t *testing.T, server spec.ServerName) *httptest.Server {
	rt := routes.NewRoutes(config.WellKnownConfig{Server: server}, zerolog.Nop(), "")
	srv := httptest.NewServer(rt.MakeHandler())
	t.Cleanup(srv.Close)
	return srv
}

func doRequest(t *testing.T, srv *httptest.Server, method, path string) (*http.Response, string) {
	req, err := http.NewRequest(method, srv.URL+path, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestWellKnownServer(t *testing.T) {
	srv := newTestServer(t, "server.example.com:5050")

	resp, body := doRequest(t, srv, http.MethodGet, wellKnownPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.Equal(t, `{"m.server":"server.example.com:5050"}`, body)
}

func TestWellKnownServerFromEnv(t *testing.T) {
	t.Setenv(config.ServerNameEnv, "server.example.com")
	t.Setenv(config.ServerPortEnv, "")

	// No port
	require.NoError(t, os.Unsetenv(config.ServerPortEnv))
	cfg, err := config.NewWellKnownConfigFromEnv()
	require.NoError(t, err)
	srv := newTestServer(t, cfg.Server)
	resp, body := doRequest(t, srv, http.MethodGet, wellKnownPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"m.server":"server.example.com"}`, body)

	// With port
	require.NoError(t, os.Setenv(config.ServerPortEnv, "5050"))
	cfg, err = config.NewWellKnownConfigFromEnv()
	require.NoError(t, err)
	srv = newTestServer(t, cfg.Server)
	resp, body = doRequest(t, srv, http.MethodGet, wellKnownPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"m.server":"server.example.com:5050"}`, body)
}

func TestWellKnownServerEscaping(t *testing.T) {
	server := spec.ServerName(`we"ird\server:12`)
	srv := newTestServer(t, server)

	resp, body := doRequest(t, srv, http.MethodGet, wellKnownPath)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"m.server":"we\"ird\\server:12"}`, body)
	assert.Equal(t, string(server), gjson.Get(body, `m\.server`).String())
}

func TestWellKnownServerIdempotent(t *testing.T) {
	srv := newTestServer(t, "server.example.com")

	_, first := doRequest(t, srv, http.MethodGet, wellKnownPath)

	var wg sync.WaitGroup
	bodies := make([]string, 20)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := srv.Client().Get(srv.URL + wellKnownPath)
			if err != nil {
				return
			}
			defer resp.Body.Close()
			b, _ := io.ReadAll(resp.Body)
			bodies[i] = string(b)
		}(i)
	}
	wg.Wait()

	for _, body := range bodies {
		assert.Equal(t, first, body)
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, "server.example.com")

	for _, path := range []string{"/", "/.well-known/matrix/client", wellKnownPath + "/extra"} {
		resp, body := doRequest(t, srv, http.MethodGet, path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Equal(t, "M_NOT_FOUND", gjson.Get(body, "errcode").String(), path)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, "server.example.com")

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		resp, body := doRequest(t, srv, method, wellKnownPath)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, method)
		assert.Equal(t, "M_METHOD_NOT_ALLOWED", gjson.Get(body, "errcode").String(), method)
		assert.False(t, strings.Contains(body, "m.server"), method)
	}
}

func TestStartStop(t *testing.T) {
	rt := routes.NewRoutes(config.WellKnownConfig{Server: "server.example.com"}, zerolog.Nop(), "127.0.0.1:0")
	rt.Start()
	rt.Stop()
}

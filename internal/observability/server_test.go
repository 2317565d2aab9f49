// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/holomush/holoauth/internal/auth"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func startServer(t *testing.T, checker ReadinessChecker) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", checker, nil)
	_, err := server.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, server.Stop(ctx))
	})
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	server := startServer(t, nil)

	server.Metrics().ObserveOperation(auth.OpRegister, auth.OutcomeSuccess)
	server.Metrics().ObserveRequest("/users", http.StatusOK)

	status, body := get(t, "http://"+server.Addr()+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "# HELP")
	assert.Contains(t, body, "go_")
	assert.Contains(t, body, "process_")
	assert.Contains(t, body, `holoauth_auth_operations_total{operation="register",outcome="success"} 1`)
	assert.Contains(t, body, `holoauth_http_requests_total{route="/users",status="200"} 1`)
}

func TestServer_Liveness(t *testing.T) {
	server := startServer(t, func(context.Context) bool { return false })

	status, body := get(t, "http://"+server.Addr()+"/healthz/liveness")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok\n", body)
}

func TestServer_Readiness(t *testing.T) {
	tests := []struct {
		name    string
		checker ReadinessChecker
		status  int
		body    string
	}{
		{"nil checker", nil, http.StatusOK, "ok\n"},
		{"ready", func(context.Context) bool { return true }, http.StatusOK, "ok\n"},
		{"not ready", func(context.Context) bool { return false }, http.StatusServiceUnavailable, "not ready\n"},
		{"store reachable", StoreReadiness(stubPinger{}), http.StatusOK, "ok\n"},
		{"store down", StoreReadiness(stubPinger{err: errors.New("refused")}), http.StatusServiceUnavailable, "not ready\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := NewServer("127.0.0.1:0", tt.checker, nil)
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/readiness", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestStoreReadiness_NilPinger(t *testing.T) {
	assert.Nil(t, StoreReadiness(nil))
}

func TestServer_DoubleStartFails(t *testing.T) {
	server := startServer(t, nil)

	_, err := server.Start()
	assert.Error(t, err)
}

func TestServer_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	server := NewServer(ln.Addr().String(), nil, nil)
	_, err = server.Start()
	require.Error(t, err)
	assert.Empty(t, server.Addr())

	// A failed start leaves the server startable.
	assert.NoError(t, server.Stop(context.Background()))
}

func TestServer_StopIdempotent(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, nil)
	assert.NoError(t, server.Stop(context.Background()))

	_, err := server.Start()
	require.NoError(t, err)
	assert.NoError(t, server.Stop(context.Background()))
	assert.NoError(t, server.Stop(context.Background()))
}

func TestServer_ErrorChannelClosesOnShutdown(t *testing.T) {
	server := NewServer("127.0.0.1:0", nil, nil)
	errCh, err := server.Start()
	require.NoError(t, err)

	require.NoError(t, server.Stop(context.Background()))

	select {
	case serveErr, ok := <-errCh:
		assert.False(t, ok, "unexpected serve error: %v", serveErr)
	case <-time.After(5 * time.Second):
		t.Fatal("error channel was not closed")
	}
}

func TestMetrics_ObserveOperation(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveOperation(auth.OpValidateLogin, auth.OutcomeRejected)
	m.ObserveOperation(auth.OpValidateLogin, auth.OutcomeRejected)
	m.ObserveRequest("/sessions", http.StatusUnauthorized)

	assert.InDelta(t, 2, testutil.ToFloat64(m.AuthOperationsTotal.WithLabelValues("validate_login", "rejected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("/sessions", "401")), 0)
}

package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/users"
	"github.com/stretchr/testify/require"
)

type staticTokens string

func (s staticTokens) BearerToken(_ context.Context) (string, bool) {
	if s == "" {
		return "", false
	}
	return "Bearer " + string(s), true
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL, time.Second, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAuthorizationHeaderOnlyOnProtectedPaths(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path] = r.Header.Get("Authorization")
		mu.Unlock()
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		switch r.URL.Path {
		case apiclient.EndpointLogin:
			writeJSON(w, http.StatusOK, apiclient.LoginResponse{Token: "abc", CdUsuario: 7, Nome: "Ana", CdTpAcesso: 1, TipoAcesso: "Administrador"})
		default:
			writeJSON(w, http.StatusOK, []users.Usuario{{CdUsuario: 1, Login: "ana"}})
		}
	}).For(staticTokens("tok"), nil)

	resp, err := c.Login(context.Background(), apiclient.LoginCredentials{Login: "ana", Senha: "x"})
	require.NoError(t, err)
	require.Equal(t, "abc", resp.Token)

	list, err := c.ListUsuarios(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, "", seen[apiclient.EndpointLogin])
	require.Equal(t, "Bearer tok", seen[apiclient.EndpointUsuarios])
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	var header atomic.Value
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		header.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []users.Usuario{})
	}).For(staticTokens(""), nil)

	_, err := c.ListUsuarios(context.Background())
	require.NoError(t, err)
	require.Equal(t, "", header.Load())
}

func TestUnauthorizedTriggersCallbackExceptOnLogin(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Login ou senha inválidos."})
	}).For(staticTokens("tok"), func(context.Context) { calls++ })

	_, err := c.Login(context.Background(), apiclient.LoginCredentials{Login: "a", Senha: "b"})
	require.Error(t, err)
	require.Equal(t, 0, calls)
	require.Equal(t, "Login ou senha inválidos.", apiclient.BackendMessage(err))

	_, err = c.ListUsuarios(context.Background())
	require.Error(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))
	require.True(t, apiclient.IsClientError(err))
	require.Equal(t, apiclient.MsgUnauthorized, apiclient.Message(err))
}

func TestRetryRecoversFromServerErrors(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "busy"})
			return
		}
		writeJSON(w, http.StatusOK, []users.Usuario{{CdUsuario: 2}})
	}, apiclient.WithRetry(3, time.Millisecond))

	list, err := c.ListUsuarios(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, int32(3), hits.Load())
}

func TestRetryStopsOnClientError(t *testing.T) {
	var hits atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusNotFound, map[string]string{})
	}, apiclient.WithRetry(3, time.Millisecond))

	_, err := c.GetUsuario(context.Background(), 99)
	require.Error(t, err)
	require.Equal(t, int32(1), hits.Load())
	require.Equal(t, apiclient.MsgNotFound, apiclient.Message(err))
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	_, err := apiclient.Retry(ctx, 5, time.Hour, func(context.Context) (int, error) {
		attempts++
		cancel()
		return 0, &apiclient.APIError{Status: http.StatusBadGateway}
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, attempts)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := apiclient.New(url, time.Second)
	err := apiclient.Delete(context.Background(), c, apiclient.UsuarioPath(1))
	require.Error(t, err)
	require.True(t, apiclient.IsNetworkError(err))
	require.False(t, apiclient.IsServerError(err))
	require.Equal(t, apiclient.MsgNetworkError, apiclient.Message(err))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"bad request with message", &apiclient.APIError{Status: 400, Message: "Login já existe no sistema."}, "Login já existe no sistema."},
		{"bad request", &apiclient.APIError{Status: 400}, apiclient.MsgBadRequest},
		{"forbidden", &apiclient.APIError{Status: 403, Message: "x"}, apiclient.MsgForbidden},
		{"server", &apiclient.APIError{Status: 500}, apiclient.MsgServerError},
		{"conflict with message", &apiclient.APIError{Status: 409, Message: "E-mail já existe no sistema."}, "E-mail já existe no sistema."},
		{"other status", &apiclient.APIError{Status: 418, StatusText: "I'm a teapot"}, "Erro 418: I'm a teapot"},
		{"plain error", context.DeadlineExceeded, context.DeadlineExceeded.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, apiclient.Message(tt.err))
		})
	}
}

func TestLoginResponseUser(t *testing.T) {
	u := apiclient.LoginResponse{CdUsuario: 42, Login: "ana", Nome: "Ana", Email: "a@x.com", CdTpAcesso: 3, TipoAcesso: "Atleta"}.User()
	require.Equal(t, "42", u.ID)
	require.Equal(t, "Atleta", u.Perfil)
	require.Equal(t, 3, u.CdTpAcesso)
}

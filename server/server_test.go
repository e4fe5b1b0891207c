package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/jrsteele09/fedteam/auth"
	"github.com/jrsteele09/fedteam/internal/config"
	"github.com/jrsteele09/fedteam/internal/limiter"
	"github.com/jrsteele09/fedteam/mockapi"
	"github.com/jrsteele09/fedteam/plugin"
	"github.com/jrsteele09/fedteam/server"
	"github.com/jrsteele09/fedteam/sessions"
	fakesessionrepo "github.com/jrsteele09/fedteam/sessions/repofakes"
	"github.com/jrsteele09/fedteam/token"
	faketreinorepo "github.com/jrsteele09/fedteam/trainings/repofake"
	fakeuserrepo "github.com/jrsteele09/fedteam/users/repofake"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	url      string
	users    *fakeuserrepo.FakeUserRepo
	sessions *fakesessionrepo.FakeSessionRepo
	client   *http.Client
}

type fixtureOptions struct {
	repo    sessions.Repo
	limiter limiter.Limiter
}

// unreachableRepo is a session store whose backend is down.
type unreachableRepo struct {
	*fakesessionrepo.FakeSessionRepo
}

func (unreachableRepo) Ping(context.Context) error {
	return errors.New("connection refused")
}

func setupTestFixture(t *testing.T, opts ...func(*fixtureOptions)) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("SESSION_SECRET", "server-test-secret")

	userRepo := fakeuserrepo.NewFakeUserRepo()
	treinoRepo := faketreinorepo.NewFakeTreinoRepo()
	require.NoError(t, mockapi.Seed(userRepo, treinoRepo, time.Now()))
	backend := httptest.NewServer(mockapi.New(userRepo, treinoRepo, token.NewIssuer(token.NewHMACSigner("test-secret"))))
	t.Cleanup(backend.Close)

	sessionRepo := fakesessionrepo.NewFakeSessionRepo()
	o := fixtureOptions{repo: sessionRepo, limiter: limiter.NewMemory(10, time.Minute)}
	for _, opt := range opts {
		opt(&o)
	}

	s, err := server.New(
		config.New(),
		o.repo,
		apiclient.New(backend.URL, 5*time.Second),
		plugin.New(backend.URL, 5*time.Second),
		o.limiter,
	)
	require.NoError(t, err)
	app := httptest.NewServer(s)
	t.Cleanup(app.Close)

	return &testFixture{
		url:      app.URL,
		users:    userRepo,
		sessions: sessionRepo,
		client:   newBrowser(t),
	}
}

// newBrowser keeps cookies and stops at every redirect so tests can inspect them.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar:     jar,
		Timeout: 10 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type response struct {
	status int
	header http.Header
	body   string
}

func (f *testFixture) do(t *testing.T, method, path string, form url.Values, header map[string]string) response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, f.url+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, header: resp.Header, body: string(raw)}
}

func (f *testFixture) get(t *testing.T, path string) response {
	t.Helper()
	return f.do(t, http.MethodGet, path, nil, nil)
}

func (f *testFixture) post(t *testing.T, path string, form url.Values) response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	return f.do(t, http.MethodPost, path, form, nil)
}

// login signs in with the seeded account of code and lands on the home page.
func (f *testFixture) login(t *testing.T, code auth.AccessCode) {
	t.Helper()
	resp := f.post(t, server.RouteAuth, url.Values{
		"login": {mockapi.SeedLogins[code]},
		"senha": {mockapi.SeedPassword},
	})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteAuth, resp.header.Get("Location"))

	resp = f.get(t, server.RouteAuth)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteHome, resp.header.Get("Location"))
}

func TestAnonymousIsSentToLogin(t *testing.T) {
	f := setupTestFixture(t)

	for _, path := range []string{server.RouteUsuarios, server.RouteTreinos + "?tab=biblioteca", server.RoutePlugins} {
		resp := f.get(t, path)
		require.Equal(t, http.StatusSeeOther, resp.status, path)
		require.Equal(t, server.RedirectState{From: path}.LoginURL(), resp.header.Get("Location"), path)
	}

	resp := f.get(t, server.RouteHome)
	require.Equal(t, http.StatusOK, resp.status)
	require.NotContains(t, resp.body, `data-testid="current-user"`)
}

func TestLoginReturnsToRequestedPage(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, server.RouteUsuarios)
	require.Equal(t, "/auth?from=%2Fusuarios", resp.header.Get("Location"))

	resp = f.get(t, "/auth?from=%2Fusuarios")
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, `value="/usuarios"`)

	resp = f.post(t, server.RouteAuth, url.Values{
		"login": {"admin"},
		"senha": {mockapi.SeedPassword},
		"from":  {"/usuarios"},
	})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, "/auth?from=%2Fusuarios", resp.header.Get("Location"))

	resp = f.get(t, "/auth?from=%2Fusuarios")
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteUsuarios, resp.header.Get("Location"))

	resp = f.get(t, server.RouteUsuarios)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, `data-testid="current-user"`)
	require.Contains(t, resp.body, `data-testid="novo-usuario"`)
	require.Contains(t, resp.body, "Bem-vindo, Administrador Fed Team!")

	// the welcome is shown once
	resp = f.get(t, server.RouteUsuarios)
	require.NotContains(t, resp.body, "Bem-vindo")
}

func TestLoginFailures(t *testing.T) {
	f := setupTestFixture(t)

	tests := []struct {
		name   string
		form   url.Values
		status int
		msg    string
	}{
		{"missing fields", url.Values{"login": {"admin"}}, http.StatusBadRequest, "Informe login e senha."},
		{"wrong password", url.Values{"login": {"admin"}, "senha": {"errada"}}, http.StatusUnauthorized, apiclient.MsgInvalidCredentials},
		{"inactive", url.Values{"login": {"inativo"}, "senha": {mockapi.SeedPassword}}, http.StatusForbidden, apiclient.MsgUserInactive},
		{"expired", url.Values{"login": {"expirado"}, "senha": {mockapi.SeedPassword}}, http.StatusForbidden, apiclient.MsgUserExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.post(t, server.RouteAuth, tt.form)
			require.Equal(t, tt.status, resp.status)
			require.Contains(t, resp.body, tt.msg)
			require.Contains(t, resp.body, `value="`+tt.form.Get("login")+`"`)
		})
	}

	resp := f.get(t, server.RouteUsuarios)
	require.Equal(t, http.StatusSeeOther, resp.status)
}

func TestLoginRateLimited(t *testing.T) {
	f := setupTestFixture(t, func(o *fixtureOptions) {
		o.limiter = limiter.NewMemory(2, time.Hour)
	})

	bad := url.Values{"login": {"admin"}, "senha": {"errada"}}
	require.Equal(t, http.StatusUnauthorized, f.post(t, server.RouteAuth, bad).status)
	require.Equal(t, http.StatusUnauthorized, f.post(t, server.RouteAuth, bad).status)

	resp := f.post(t, server.RouteAuth, url.Values{"login": {"admin"}, "senha": {mockapi.SeedPassword}})
	require.Equal(t, http.StatusTooManyRequests, resp.status)
	require.NotEmpty(t, resp.header.Get("Retry-After"))
	require.Contains(t, resp.body, "Muitas tentativas de login")
}

func TestLoginRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	f := setupTestFixture(t, func(o *fixtureOptions) {
		o.limiter = limiter.NewMemory(2, time.Hour)
	})

	bad := url.Values{"login": {"admin"}, "senha": {"errada"}}
	var statuses []int
	for i := 1; i <= 4; i++ {
		resp := f.do(t, http.MethodPost, server.RouteAuth, bad, map[string]string{
			"X-Forwarded-For": "10.0.0." + strconv.Itoa(i),
		})
		statuses = append(statuses, resp.status)
	}
	require.Equal(t, []int{http.StatusUnauthorized, http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusTooManyRequests}, statuses)
}

func TestLoginRateLimitBehindTrustedProxy(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "127.0.0.1")
	f := setupTestFixture(t, func(o *fixtureOptions) {
		o.limiter = limiter.NewMemory(1, time.Hour)
	})

	bad := url.Values{"login": {"admin"}, "senha": {"errada"}}
	from := func(xff string) int {
		return f.do(t, http.MethodPost, server.RouteAuth, bad, map[string]string{"X-Forwarded-For": xff}).status
	}

	require.Equal(t, http.StatusUnauthorized, from("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	// a client supplied left-most entry does not change the hop the proxy saw
	require.Equal(t, http.StatusTooManyRequests, from("192.0.2.50, 10.0.0.1"))
	require.Equal(t, http.StatusUnauthorized, from("10.0.0.2"))
}

func TestLoginIssuesFreshSessionID(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, server.RouteAuth)
	require.Equal(t, http.StatusOK, resp.status)

	appURL, err := url.Parse(f.url)
	require.NoError(t, err)
	planted := f.client.Jar.Cookies(appURL)
	require.NotEmpty(t, planted)

	other := &testFixture{url: f.url, client: newBrowser(t)}
	other.client.Jar.SetCookies(appURL, planted)

	f.login(t, auth.AccessAdmin)
	require.Equal(t, http.StatusOK, f.get(t, server.RouteUsuarios).status)

	resp = other.get(t, server.RouteUsuarios)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, "/auth?from=%2Fusuarios", resp.header.Get("Location"))
}

func TestOpenRedirectsAreDropped(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, auth.AccessAdmin)

	for _, from := range []string{"//evil.example", "https://evil.example/x", "/\\evil.example", "javascript:alert(1)"} {
		resp := f.get(t, "/auth?"+url.Values{"from": {from}}.Encode())
		require.Equal(t, http.StatusSeeOther, resp.status, from)
		require.Equal(t, server.RouteHome, resp.header.Get("Location"), from)
	}
}

func TestHTMXRedirects(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.do(t, http.MethodGet, server.RouteTreinos, nil, map[string]string{"HX-Request": "true"})
	require.Equal(t, http.StatusNoContent, resp.status)
	require.Equal(t, "/auth?from=%2Ftreinos", resp.header.Get("HX-Redirect"))
	require.Empty(t, resp.header.Get("Location"))
}

func TestPostFromAnonymousUsesReferer(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.do(t, http.MethodPost, server.RouteTreinos, url.Values{}, map[string]string{
		"Referer": f.url + "/treinos?tab=cadastro",
	})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, "/auth?from=%2Ftreinos%3Ftab%3Dcadastro", resp.header.Get("Location"))

	resp = f.do(t, http.MethodPost, server.RouteTreinos, url.Values{}, map[string]string{
		"Referer": "https://evil.example/treinos",
	})
	require.Equal(t, server.RouteAuth, resp.header.Get("Location"))
}

func TestReadOnlyProfile(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, auth.AccessStandard)

	resp := f.get(t, server.RouteTreinos)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, `data-testid="read-only-notice"`)

	resp = f.post(t, server.RouteTreinos, url.Values{"dsTreino": {"Treino"}})
	require.Equal(t, http.StatusForbidden, resp.status)
	require.Contains(t, resp.body, "Acesso negado")

	resp = f.get(t, server.RouteUsuarioNovo)
	require.Equal(t, http.StatusForbidden, resp.status)

	resp = f.get(t, server.RouteUsuarios)
	require.Equal(t, http.StatusOK, resp.status)
	require.NotContains(t, resp.body, `data-testid="novo-usuario"`)
}

func TestCreateTreino(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, auth.AccessAdmin)

	admin, err := f.users.GetByLogin("admin")
	require.NoError(t, err)
	atleta, err := f.users.GetByLogin("atleta")
	require.NoError(t, err)

	resp := f.get(t, server.RouteTreinos+"?tab="+server.TabCadastro)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, `name="dsTreino"`)

	today := time.Now()
	form := url.Values{
		"dsTreino":       {"Força máxima"},
		"dtInicio":       {today.Format("2006-01-02")},
		"dtFinal":        {today.AddDate(0, 0, 14).Format("2006-01-02")},
		"cdProfissional": {itoa(admin.CdUsuario)},
		"cdAtleta":       {itoa(atleta.CdUsuario)},
	}
	resp = f.post(t, server.RouteTreinos, form)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteTreinos+"?tab="+server.TabMeus, resp.header.Get("Location"))

	resp = f.get(t, server.RouteTreinos+"?tab="+server.TabMeus)
	require.Contains(t, resp.body, "Treino Força máxima cadastrado.")

	form.Set("dtFinal", today.AddDate(0, 0, -1).Format("2006-01-02"))
	resp = f.post(t, server.RouteTreinos, form)
	require.Equal(t, http.StatusUnprocessableEntity, resp.status)
	require.Contains(t, resp.body, `value="Força máxima"`)
}

func TestCreateUsuario(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, auth.AccessAdmin)

	form := url.Values{
		"login":      {"novo.atleta"},
		"nome":       {"Novo Atleta"},
		"email":      {"novo.atleta@fedteam.local"},
		"senha":      {"Forte123"},
		"cdTpAcesso": {"3"},
		"flAtivo":    {"on"},
	}

	weak := url.Values{}
	for k, v := range form {
		weak[k] = v
	}
	weak.Set("senha", "fraca")
	resp := f.post(t, server.RouteUsuarioNovo, weak)
	require.Equal(t, http.StatusUnprocessableEntity, resp.status)
	_, err := f.users.GetByLogin("novo.atleta")
	require.Error(t, err)

	resp = f.post(t, server.RouteUsuarioNovo, form)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteUsuarios, resp.header.Get("Location"))

	created, err := f.users.GetByLogin("novo.atleta")
	require.NoError(t, err)
	require.True(t, created.FlAtivo)

	resp = f.get(t, server.RouteUsuarios)
	require.Contains(t, resp.body, `data-testid="usuario-`+itoa(created.CdUsuario)+`"`)

	// duplicate login is reported by the backend
	resp = f.post(t, server.RouteUsuarioNovo, form)
	require.Equal(t, http.StatusUnprocessableEntity, resp.status)
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, auth.AccessAdmin)

	admin, err := f.users.GetByLogin("admin")
	require.NoError(t, err)

	resp := f.post(t, "/usuarios/"+itoa(admin.CdUsuario)+"/excluir", nil)
	require.Equal(t, http.StatusSeeOther, resp.status)

	_, err = f.users.GetByID(admin.CdUsuario)
	require.NoError(t, err)
	resp = f.get(t, server.RouteUsuarios)
	require.Contains(t, resp.body, "Você não pode excluir o próprio usuário.")
}

func TestBackendRejectionLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, auth.AccessStandard)

	u, err := f.users.GetByLogin(mockapi.SeedLogins[auth.AccessStandard])
	require.NoError(t, err)
	u.FlAtivo = false
	_, err = f.users.Update(u)
	require.NoError(t, err)

	resp := f.get(t, server.RouteTreinos)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, "/auth?from=%2Ftreinos", resp.header.Get("Location"))

	resp = f.get(t, "/auth?from=%2Ftreinos")
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, "Sua sessão expirou")

	resp = f.get(t, server.RouteUsuarios)
	require.Equal(t, http.StatusSeeOther, resp.status)
}

func TestLoadingWhileSessionStoreIsDown(t *testing.T) {
	f := setupTestFixture(t, func(o *fixtureOptions) {
		o.repo = unreachableRepo{fakesessionrepo.NewFakeSessionRepo()}
	})

	for _, path := range []string{server.RouteUsuarios, server.RouteAuth} {
		resp := f.get(t, path)
		require.Equal(t, http.StatusOK, resp.status, path)
		require.Equal(t, "2", resp.header.Get("Refresh"), path)
		require.Contains(t, resp.body, "Verificando autenticação...", path)
	}

	resp := f.get(t, server.RouteHealth)
	require.Equal(t, http.StatusServiceUnavailable, resp.status)
}

// countingRepo counts store pings.
type countingRepo struct {
	*fakesessionrepo.FakeSessionRepo
	pings *atomic.Int32
}

func (c countingRepo) Ping(context.Context) error {
	c.pings.Add(1)
	return nil
}

func TestSessionStorePingIsCached(t *testing.T) {
	pings := &atomic.Int32{}
	f := setupTestFixture(t, func(o *fixtureOptions) {
		o.repo = countingRepo{FakeSessionRepo: fakesessionrepo.NewFakeSessionRepo(), pings: pings}
	})

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, f.get(t, server.RouteHome).status)
	}
	require.Equal(t, int32(1), pings.Load())

	require.Equal(t, http.StatusOK, f.get(t, server.RouteHealth).status)
	require.Equal(t, int32(2), pings.Load())
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, auth.AccessAdmin)
	require.Equal(t, 1, f.sessions.Len())

	resp := f.post(t, server.RouteAuthLogout, nil)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteAuth, resp.header.Get("Location"))
	require.Equal(t, 0, f.sessions.Len())

	resp = f.get(t, server.RouteAuth)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, "Sessão encerrada.")

	resp = f.get(t, server.RouteUsuarios)
	require.Equal(t, http.StatusSeeOther, resp.status)
}

func TestThemeToggle(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, server.RouteHome)
	require.Contains(t, resp.body, `data-theme="light"`)

	resp = f.post(t, server.RouteTheme, nil)
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, server.RouteHome, resp.header.Get("Location"))

	resp = f.get(t, server.RouteHome)
	require.Contains(t, resp.body, `data-theme="dark"`)

	f.post(t, server.RouteTheme, url.Values{"theme": {"light"}})
	resp = f.get(t, server.RouteHome)
	require.Contains(t, resp.body, `data-theme="light"`)
}

func TestPluginPanel(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, auth.AccessAdmin)

	resp := f.get(t, server.RoutePlugins)
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, `data-testid="plugin-status"`)
	require.Contains(t, resp.body, `data-testid="device-hr-01"`)

	resp = f.post(t, server.RoutePluginCommand, url.Values{"command": {string(plugin.CommandSystemInfo)}})
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.body, `data-testid="command-result"`)

	resp = f.post(t, "/plugins/devices/hr-01/connect", nil)
	require.Equal(t, http.StatusSeeOther, resp.status)
	resp = f.get(t, server.RoutePlugins)
	require.Contains(t, resp.body, "Dispositivo conectado.")

	resp = f.post(t, "/plugins/devices/hr-01/explode", nil)
	require.Equal(t, http.StatusNotFound, resp.status)
}

func TestPluginAdminActionsForbidden(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t, auth.AccessAthlete)

	resp := f.post(t, server.RoutePluginRestart, nil)
	require.Equal(t, http.StatusForbidden, resp.status)
	resp = f.post(t, server.RoutePluginCommand, url.Values{"command": {string(plugin.CommandSystemInfo)}})
	require.Equal(t, http.StatusForbidden, resp.status)
}

func TestHealthAndNotFound(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.get(t, server.RouteHealth)
	require.Equal(t, http.StatusOK, resp.status)
	var health map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.body), &health))
	require.Equal(t, "ok", health["status"])
	require.Equal(t, "ok", health["sessionStore"])
	require.Equal(t, "ok", health["plugin"])

	resp = f.get(t, "/nao-existe")
	require.Equal(t, http.StatusNotFound, resp.status)
	require.Contains(t, resp.body, "/nao-existe")

	resp = f.get(t, "/static/css/app.css")
	require.Equal(t, http.StatusOK, resp.status)
	require.Contains(t, resp.header.Get("Content-Type"), "text/css")
}

func TestRedirectState(t *testing.T) {
	require.Equal(t, "/auth", server.RedirectState{}.LoginURL())
	require.Equal(t, "/", server.RedirectState{}.Target())
	require.Equal(t, "/auth?from=%2Ftreinos%3Ftab%3Dhistorico", server.RedirectState{From: "/treinos?tab=historico"}.LoginURL())
	require.Equal(t, "/treinos", server.RedirectState{From: "/treinos"}.Target())
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/activity-dashboard/internal/storage"
)

func (e *testEnv) loginForm(t *testing.T) {
	t.Helper()
	w := e.form(t, "/login", url.Values{"email": {"admin@demo.com"}, "password": {"admin123"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
}

func TestDashboard_RedirectsWithoutSession(t *testing.T) {
	for _, stored := range []string{"", "{broken"} {
		t.Run("stored="+stored, func(t *testing.T) {
			env := setupEnv(t)
			ctx := context.Background()
			if stored != "" {
				require.NoError(t, env.store.Set(ctx, storage.SessionKey, stored))
			}

			w := env.do(t, http.MethodGet, "/dashboard", nil, nil)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))

			_, err := env.store.Get(ctx, storage.SessionKey)
			assert.ErrorIs(t, err, storage.ErrKeyNotFound)
		})
	}
}

func TestLoginPage(t *testing.T) {
	env := setupEnv(t)
	require.NoError(t, env.store.Set(context.Background(), storage.RememberKey, "user@demo.com"))

	w := env.do(t, http.MethodGet, "/?notice=logout", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `value="user@demo.com"`)
	assert.Contains(t, w.Body.String(), "Sessão encerrada.")
}

func TestSubmitLogin(t *testing.T) {
	tests := []struct {
		name         string
		values       url.Values
		wantCode     int
		wantLocation string
		wantBody     string
	}{
		{
			name:         "success",
			values:       url.Values{"email": {"admin@demo.com"}, "password": {"admin123"}},
			wantCode:     http.StatusSeeOther,
			wantLocation: "/dashboard?notice=welcome",
		},
		{
			name:     "wrong password",
			values:   url.Values{"email": {"admin@demo.com"}, "password": {"nope"}},
			wantCode: http.StatusUnauthorized,
			wantBody: "Senha inválida.",
		},
		{
			name:     "unknown user",
			values:   url.Values{"email": {"x@demo.com"}, "password": {"nope"}},
			wantCode: http.StatusUnauthorized,
			wantBody: "Usuário não encontrado.",
		},
		{
			name:     "invalid form",
			values:   url.Values{"email": {"not-an-email"}},
			wantCode: http.StatusBadRequest,
			wantBody: "Revise os campos do formulário.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupEnv(t)
			w := env.form(t, "/login", tt.values)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			}
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestSubmitLogin_Remember(t *testing.T) {
	env := setupEnv(t)
	w := env.form(t, "/login", url.Values{"email": {"user@demo.com"}, "password": {"user1234"}, "remember": {"on"}})
	require.Equal(t, http.StatusSeeOther, w.Code)

	v, err := env.store.Get(context.Background(), storage.RememberKey)
	require.NoError(t, err)
	assert.Equal(t, "user@demo.com", v)
}

func TestDashboard_SeedsAndRenders(t *testing.T) {
	env := setupEnv(t)
	env.loginForm(t)

	w := env.do(t, http.MethodGet, "/dashboard?notice=welcome", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Revisar pendências")
	assert.Contains(t, body, "Organizar checklist")
	assert.Contains(t, body, "Bem-vindo, Admin.")
	assert.Contains(t, body, `<div id="kpiActivities" class="fs-4">4</div>`)
	assert.Contains(t, env.clock.Sleeps(), 650*time.Millisecond)
}

func TestDashboard_Filter(t *testing.T) {
	env := setupEnv(t)
	env.loginForm(t)

	w := env.do(t, http.MethodGet, "/dashboard?q=checklist&status=done", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Organizar checklist")
	assert.NotContains(t, body, "Validar acessos")
	// KPIs still count the whole collection
	assert.Contains(t, body, `<div id="kpiActivities" class="fs-4">4</div>`)
}

func TestDashboard_Actions(t *testing.T) {
	env := setupEnv(t)
	env.loginForm(t)
	// first visit seeds
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/dashboard", nil, nil).Code)

	tests := []struct {
		name         string
		target       string
		values       url.Values
		wantLocation string
	}{
		{name: "create", target: "/dashboard/items", values: url.Values{"title": {"Nova tarefa"}}, wantLocation: "/dashboard?notice=created"},
		{name: "short title", target: "/dashboard/items", values: url.Values{"title": {"ab"}}, wantLocation: "/dashboard?notice=short_title"},
		{name: "toggle", target: "/dashboard/items/5/toggle", wantLocation: "/dashboard?notice=toggled"},
		{name: "delete", target: "/dashboard/items/5/delete", wantLocation: "/dashboard?notice=deleted"},
		{name: "delete missing", target: "/dashboard/items/5/delete", wantLocation: "/dashboard?notice=not_found"},
		{name: "logout", target: "/logout", wantLocation: "/?notice=logout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.form(t, tt.target, tt.values)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
		})
	}

	w := env.do(t, http.MethodGet, "/dashboard", nil, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestDashboard_ActionsKeepFilter(t *testing.T) {
	env := setupEnv(t)
	env.loginForm(t)

	w := env.do(t, http.MethodGet, "/dashboard?q=checklist&status=done", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `<input type="hidden" name="q" value="checklist">`)
	assert.Contains(t, body, `<input type="hidden" name="status" value="done">`)

	filter := url.Values{"q": {"checklist"}, "status": {"done"}}
	tests := []struct {
		name         string
		target       string
		values       url.Values
		wantLocation string
	}{
		{name: "toggle", target: "/dashboard/items/4/toggle", values: filter, wantLocation: "/dashboard?notice=toggled&q=checklist&status=done"},
		{name: "short title", target: "/dashboard/items", values: url.Values{"title": {"x"}, "q": {"checklist"}, "status": {"done"}}, wantLocation: "/dashboard?notice=short_title&q=checklist&status=done"},
		{name: "missing item", target: "/dashboard/items/99/delete", values: filter, wantLocation: "/dashboard?notice=not_found&q=checklist&status=done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.form(t, tt.target, tt.values)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
		})
	}

	// the toggled record now pending, so the done filter shows nothing
	w = env.do(t, http.MethodGet, "/dashboard?notice=toggled&q=checklist&status=done", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="checklist"`)
	assert.Contains(t, w.Body.String(), "Nenhum registro encontrado.")
}

func TestDashboard_LoadingDelayOnlyOnInitialView(t *testing.T) {
	env := setupEnv(t)
	env.loginForm(t)

	countLoading := func() int {
		n := 0
		for _, d := range env.clock.Sleeps() {
			if d == 650*time.Millisecond {
				n++
			}
		}
		return n
	}

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/dashboard?notice=welcome", nil, nil).Code)
	assert.Equal(t, 1, countLoading())

	for _, target := range []string{
		"/dashboard?notice=toggled",
		"/dashboard?q=rev&status=all",
		"/dashboard?notice=refreshed",
		"/dashboard?notice=soon_reports",
	} {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, target, nil, nil).Code, target)
	}
	assert.Equal(t, 1, countLoading())

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/dashboard", nil, nil).Code)
	assert.Equal(t, 2, countLoading())
}

func TestDashboard_ComingSoonLinks(t *testing.T) {
	env := setupEnv(t)
	env.loginForm(t)

	w := env.do(t, http.MethodGet, "/dashboard?notice=welcome", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="btnFakePage1"`)
	assert.Contains(t, w.Body.String(), `id="btnFakePage2"`)

	w = env.do(t, http.MethodGet, "/dashboard?notice=soon_users", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Em breve")
	assert.Contains(t, w.Body.String(), "Gestão de usuários seria um módulo futuro.")
}

func TestSubmitLogin_Throttled(t *testing.T) {
	env := setupEnvWithLimit(t, 1)
	values := url.Values{"email": {"admin@demo.com"}, "password": {"nope"}}

	w := env.form(t, "/login", values)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.form(t, "/login", values)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Muitas tentativas de login.")
	assert.Contains(t, w.Body.String(), `value="admin@demo.com"`)
}

func TestRecover(t *testing.T) {
	env := setupEnv(t)

	w := env.form(t, "/recover", url.Values{"email": {"someone@demo.com"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?notice=recovered", w.Header().Get("Location"))

	w = env.form(t, "/recover", url.Values{"email": {"nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Digite um e-mail válido")
}

func TestToggleTheme(t *testing.T) {
	env := setupEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/theme", nil)
	req.Header.Set("Referer", "http://example.com/dashboard?q=abc&notice=created")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard?q=abc", w.Header().Get("Location"))

	v, err := env.store.Get(context.Background(), storage.ThemeKey)
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
}

func TestBackTo(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{"", "/"},
		{"http://example.com/dashboard", "/dashboard"},
		{"http://evil.test/dashboard", "/"},
		{"http://example.com/?notice=logout", "/"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/theme", nil)
		req.Header.Set("Referer", tt.referer)
		assert.Equal(t, tt.want, backTo(req), tt.referer)
	}
}

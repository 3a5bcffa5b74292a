package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/auth"
	"github.com/BuzzLyutic/activity-dashboard/internal/model"
	"github.com/BuzzLyutic/activity-dashboard/internal/repo"
	"github.com/BuzzLyutic/activity-dashboard/internal/service"
	"github.com/BuzzLyutic/activity-dashboard/internal/session"
	"github.com/BuzzLyutic/activity-dashboard/internal/view"
	"github.com/BuzzLyutic/activity-dashboard/pkg/respond"
)

const (
	loginPath     = "/"
	dashboardPath = "/dashboard"
)

func withNotice(path, notice string) string {
	return path + "?notice=" + url.QueryEscape(notice)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	remembered, err := h.login.RememberedEmail(r.Context())
	if err != nil {
		h.pageError(w, err)
		return
	}

	page := view.LoginPage{
		Email:    remembered,
		Remember: remembered != "",
	}
	if t, ok := view.NoticeToast(r.URL.Query().Get("notice"), ""); ok {
		page.Toast = &t
	}
	h.renderLogin(w, r, http.StatusOK, page)
}

func (h *Handler) SubmitLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid form")
		return
	}

	req := auth.LoginRequest{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		Remember: r.PostFormValue("remember") != "",
	}

	_, err := h.login.Login(r.Context(), req)
	if err == nil {
		respond.Redirect(w, r, view.DashboardURL(model.RecordFilter{}, view.NoticeWelcome))
		return
	}

	page := view.LoginPage{Email: strings.TrimSpace(req.Email), Remember: req.Remember}
	switch {
	case errors.Is(err, auth.ErrValidation):
		t := view.InvalidFormToast()
		page.Toast = &t
		h.renderLogin(w, r, http.StatusBadRequest, page)
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrWrongPassword):
		t := view.LoginFailedToast(auth.Message(err))
		page.Toast = &t
		h.renderLogin(w, r, http.StatusUnauthorized, page)
	default:
		h.pageError(w, err)
	}
}

func (h *Handler) Recover(w http.ResponseWriter, r *http.Request) {
	if err := h.login.RecoverPassword(r.FormValue("email")); err != nil {
		t := view.InvalidRecoveryToast()
		h.renderLogin(w, r, http.StatusBadRequest, view.LoginPage{Toast: &t})
		return
	}
	respond.Redirect(w, r, withNotice(loginPath, view.NoticeRecovered))
}

func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	if _, err := h.themes.Toggle(r.Context()); err != nil {
		h.pageError(w, err)
		return
	}
	respond.Redirect(w, r, backTo(r))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.login.Logout(r.Context()); err != nil {
		h.pageError(w, err)
		return
	}
	respond.Redirect(w, r, withNotice(loginPath, view.NoticeLogout))
}

// LoginThrottled re-renders the login page when the rate limiter rejects a
// form submission.
func (h *Handler) LoginThrottled(w http.ResponseWriter, r *http.Request) {
	t := view.ThrottledToast()
	page := view.LoginPage{Email: strings.TrimSpace(r.PostFormValue("email")), Toast: &t}
	h.renderLogin(w, r, http.StatusTooManyRequests, page)
}

// Dashboard seeds the demo records on first visit, waits the simulated
// loading delay on an initial view and renders the filtered table.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)

	if _, err := h.records.Seed(ctx); err != nil {
		h.pageError(w, err)
		return
	}
	if isInitialView(r.URL.Query()) {
		if err := h.clock.Sleep(ctx, h.loadingDelay); err != nil {
			return
		}
	}

	filter := filterFrom(r.URL.Query())
	rows, stats, err := h.records.List(ctx, filter)
	if err != nil {
		h.pageError(w, err)
		return
	}

	page := view.DashboardPage{
		Email:  sess.User.Email,
		Role:   sess.User.Role,
		Stats:  stats,
		Rows:   rows,
		Filter: filter,
	}
	if t, ok := view.NoticeToast(r.URL.Query().Get("notice"), sess.User.Role); ok {
		page.Toast = &t
	}

	theme, err := h.themes.Current(ctx)
	if err != nil {
		h.pageError(w, err)
		return
	}
	page.Theme = theme

	var buf bytes.Buffer
	if err := h.renderer.Dashboard(&buf, page); err != nil {
		h.pageError(w, err)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// isInitialView reports whether the dashboard is being opened rather than
// re-rendered: right after login, or with no filter and no notice at all.
// Re-renders after an action or a filter change skip the loading pause.
func isInitialView(q url.Values) bool {
	if q.Get("notice") == view.NoticeWelcome {
		return true
	}
	return !q.Has("notice") && !q.Has("q") && !q.Has("status")
}

func filterFrom(v url.Values) model.RecordFilter {
	return model.RecordFilter{Text: v.Get("q"), Status: v.Get("status")}
}

func (h *Handler) SubmitItem(w http.ResponseWriter, r *http.Request) {
	_, err := h.records.Create(r.Context(), r.FormValue("title"), "")
	filter := filterFrom(formValues(r))
	switch {
	case err == nil:
		respond.Redirect(w, r, view.DashboardURL(filter, view.NoticeCreated))
	case errors.Is(err, service.ErrValidation):
		respond.Redirect(w, r, view.DashboardURL(filter, view.NoticeShortTitle))
	default:
		h.pageError(w, err)
	}
}

func (h *Handler) SubmitToggle(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, view.NoticeToggled, func(id int64) error {
		_, err := h.records.Toggle(r.Context(), id)
		return err
	})
}

func (h *Handler) SubmitDelete(w http.ResponseWriter, r *http.Request) {
	h.itemAction(w, r, view.NoticeDeleted, func(id int64) error {
		return h.records.Delete(r.Context(), id)
	})
}

func (h *Handler) itemAction(w http.ResponseWriter, r *http.Request, notice string, action func(id int64) error) {
	id, err := parseID(r)
	if err == nil {
		err = action(id)
	}
	filter := filterFrom(formValues(r))
	switch {
	case err == nil:
		respond.Redirect(w, r, view.DashboardURL(filter, notice))
	case errors.Is(err, errBadID), errors.Is(err, repo.ErrNotFound):
		respond.Redirect(w, r, view.DashboardURL(filter, view.NoticeNotFound))
	default:
		h.pageError(w, err)
	}
}

// formValues returns the posted form merged with the query string.
func formValues(r *http.Request) url.Values {
	if err := r.ParseForm(); err != nil {
		return url.Values{}
	}
	return r.Form
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, code int, page view.LoginPage) {
	theme, err := h.themes.Current(r.Context())
	if err != nil {
		h.pageError(w, err)
		return
	}
	page.Theme = theme

	var buf bytes.Buffer
	if err := h.renderer.Login(&buf, page); err != nil {
		h.pageError(w, err)
		return
	}
	writeHTML(w, code, buf.Bytes())
}

func (h *Handler) pageError(w http.ResponseWriter, err error) {
	h.logger.Error("page error", zap.Error(err))
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(body)
}

// backTo returns the local path of the Referer, or the login page.
func backTo(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return loginPath
	}
	if ref.Host != "" && ref.Host != r.Host {
		return loginPath
	}
	q := ref.Query()
	q.Del("notice")
	if len(q) == 0 {
		return ref.Path
	}
	return fmt.Sprintf("%s?%s", ref.Path, q.Encode())
}

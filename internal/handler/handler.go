package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/auth"
	"github.com/BuzzLyutic/activity-dashboard/internal/clock"
	"github.com/BuzzLyutic/activity-dashboard/internal/repo"
	"github.com/BuzzLyutic/activity-dashboard/internal/service"
	"github.com/BuzzLyutic/activity-dashboard/internal/session"
	"github.com/BuzzLyutic/activity-dashboard/internal/view"
	"github.com/BuzzLyutic/activity-dashboard/pkg/respond"
)

var errBadID = errors.New("bad id")

// Handler serves both the HTML pages and the JSON API.
type Handler struct {
	records      *service.RecordService
	themes       *service.ThemeService
	login        *auth.LoginService
	guard        *session.Guard
	renderer     *view.Renderer
	clock        clock.Clock
	loadingDelay time.Duration
	logger       *zap.Logger
}

type Deps struct {
	Records      *service.RecordService
	Themes       *service.ThemeService
	Login        *auth.LoginService
	Guard        *session.Guard
	Renderer     *view.Renderer
	Clock        clock.Clock
	LoadingDelay time.Duration
	Logger       *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		records:      d.Records,
		themes:       d.Themes,
		login:        d.Login,
		guard:        d.Guard,
		renderer:     d.Renderer,
		clock:        d.Clock,
		loadingDelay: d.LoadingDelay,
		logger:       d.Logger,
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// handleErrors maps domain errors to JSON responses.
func (h *Handler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadID):
		respond.Error(w, r, http.StatusBadRequest, "invalid id")
	case errors.Is(err, repo.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	case errors.Is(err, auth.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, auth.Message(err))
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrWrongPassword):
		respond.Error(w, r, http.StatusUnauthorized, auth.Message(err))
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrCorruptSession):
		respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

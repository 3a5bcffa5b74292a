package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/auth"
	"github.com/BuzzLyutic/activity-dashboard/internal/model"
	"github.com/BuzzLyutic/activity-dashboard/internal/session"
	"github.com/BuzzLyutic/activity-dashboard/pkg/respond"
)

type createRequest struct {
	Title string `json:"title"`
}

type themeResponse struct {
	Theme model.Theme `json:"theme"`
}

func (h *Handler) APILogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	sess, err := h.login.Login(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, sess)
}

func (h *Handler) APILogout(w http.ResponseWriter, r *http.Request) {
	if err := h.login.Logout(r.Context()); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) APISession(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		h.handleErrors(w, r, session.ErrNoSession)
		return
	}
	respond.JSON(w, r, http.StatusOK, sess)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	filter := model.RecordFilter{
		Text:   r.URL.Query().Get("q"),
		Status: r.URL.Query().Get("status"),
	}

	rows, _, err := h.records.List(r.Context(), filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, rows)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	rec, err := h.records.Create(r.Context(), req.Title, r.Header.Get("Idempotency-Key"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/items/%d", rec.ID))
	respond.JSON(w, r, http.StatusCreated, rec)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	rec, err := h.records.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, rec)
}

func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	rec, err := h.records.Toggle(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, rec)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	if err := h.records.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.records.Stats(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.themes.Current(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, themeResponse{Theme: theme})
}

func (h *Handler) APIToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.themes.Toggle(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, themeResponse{Theme: theme})
}

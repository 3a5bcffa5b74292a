// Package session reads the stored login session and protects the dashboard.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/model"
	"github.com/BuzzLyutic/activity-dashboard/internal/storage"
	"github.com/BuzzLyutic/activity-dashboard/pkg/respond"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrCorruptSession = errors.New("corrupt session")
)

type contextKey struct{}

type Guard struct {
	store  storage.Storage
	logger *zap.Logger
}

func NewGuard(store storage.Storage, logger *zap.Logger) *Guard {
	return &Guard{store: store, logger: logger}
}

// Current returns the stored session. Only text that is not JSON at all is
// corrupt: it is removed before ErrCorruptSession is returned. Well-formed JSON
// of an unexpected shape yields whatever fields could be read.
func (g *Guard) Current(ctx context.Context) (model.Session, error) {
	raw, err := g.store.Get(ctx, storage.SessionKey)
	if errors.Is(err, storage.ErrKeyNotFound) || (err == nil && raw == "") {
		return model.Session{}, ErrNoSession
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("read session: %w", err)
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		g.logger.Warn("dropping unparsable session", zap.Error(err))
		if rmErr := g.store.Remove(ctx, storage.SessionKey); rmErr != nil {
			return model.Session{}, fmt.Errorf("clear session: %w", rmErr)
		}
		return model.Session{}, ErrCorruptSession
	}
	return decodeLoose(doc), nil
}

// decodeLoose picks the known fields out of an arbitrary JSON value.
// Missing or mistyped fields stay zero and render as a dash.
func decodeLoose(doc any) model.Session {
	var sess model.Session
	obj, ok := doc.(map[string]any)
	if !ok {
		return sess
	}
	sess.Token, _ = obj["token"].(string)
	if user, ok := obj["user"].(map[string]any); ok {
		sess.User.Email, _ = user["email"].(string)
		sess.User.Role, _ = user["role"].(string)
	}
	switch v := obj["createdAt"].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			sess.CreatedAt = t
		}
	case float64:
		sess.CreatedAt = time.UnixMilli(int64(v))
	}
	return sess
}

// Redirect sends visitors without a valid session to loginPath.
func (g *Guard) Redirect(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := g.Current(r.Context())
			if err != nil {
				g.logFailure(err)
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
		})
	}
}

// Require answers 401 to API calls without a valid session.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := g.Current(r.Context())
		if err != nil {
			g.logFailure(err)
			respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))
	})
}

func (g *Guard) logFailure(err error) {
	if errors.Is(err, ErrNoSession) || errors.Is(err, ErrCorruptSession) {
		g.logger.Debug("no valid session", zap.Error(err))
		return
	}
	g.logger.Error("session lookup failed", zap.Error(err))
}

func NewContext(ctx context.Context, sess model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

func FromContext(ctx context.Context) (model.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(model.Session)
	return sess, ok
}

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/model"
	"github.com/BuzzLyutic/activity-dashboard/internal/storage"
)

const validSession = `{"token":"t-1","user":{"email":"admin@demo.com","role":"Admin"},"createdAt":"2024-05-01T08:00:00Z"}`

func TestGuard_Current(t *testing.T) {
	tests := []struct {
		name        string
		stored      *string
		wantErr     error
		wantCleared bool
	}{
		{name: "absent", stored: nil, wantErr: ErrNoSession},
		{name: "corrupt", stored: ptr("{oops"), wantErr: ErrCorruptSession, wantCleared: true},
		{name: "valid", stored: ptr(validSession)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemory()
			if tt.stored != nil {
				require.NoError(t, store.Set(ctx, storage.SessionKey, *tt.stored))
			}

			sess, err := NewGuard(store, zap.NewNop()).Current(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, model.User{Email: "admin@demo.com", Role: "Admin"}, sess.User)
			}

			if tt.wantCleared {
				_, err := store.Get(ctx, storage.SessionKey)
				assert.ErrorIs(t, err, storage.ErrKeyNotFound)
			}
		})
	}
}

func TestGuard_CurrentToleratesOddShapes(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   model.Session
	}{
		{name: "array", stored: `[]`},
		{name: "null", stored: `null`},
		{name: "user is a string", stored: `{"user":"admin"}`},
		{name: "missing role", stored: `{"user":{"email":"admin@demo.com"}}`, want: model.Session{User: model.User{Email: "admin@demo.com"}}},
		{
			name:   "numeric createdAt",
			stored: `{"token":"t","user":{"email":"a@b.co","role":"Admin"},"createdAt":1714550400000}`,
			want: model.Session{
				Token:     "t",
				User:      model.User{Email: "a@b.co", Role: "Admin"},
				CreatedAt: time.UnixMilli(1714550400000),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemory()
			require.NoError(t, store.Set(ctx, storage.SessionKey, tt.stored))

			sess, err := NewGuard(store, zap.NewNop()).Current(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Token, sess.Token)
			assert.Equal(t, tt.want.User, sess.User)
			assert.True(t, tt.want.CreatedAt.Equal(sess.CreatedAt))

			stored, err := store.Get(ctx, storage.SessionKey)
			require.NoError(t, err)
			assert.Equal(t, tt.stored, stored)
		})
	}
}

func TestGuard_Redirect(t *testing.T) {
	for _, stored := range []string{"", "not-json"} {
		t.Run("redirects on "+stored, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemory()
			if stored != "" {
				require.NoError(t, store.Set(ctx, storage.SessionKey, stored))
			}

			called := false
			h := NewGuard(store, zap.NewNop()).Redirect("/")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

			assert.False(t, called)
			assert.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, "/", w.Header().Get("Location"))

			_, err := store.Get(ctx, storage.SessionKey)
			assert.ErrorIs(t, err, storage.ErrKeyNotFound)
		})
	}
}

func TestGuard_PassesSessionThrough(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, storage.SessionKey, validSession))

	var got model.Session
	h := NewGuard(store, zap.NewNop()).Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "t-1", got.Token)
}

func TestGuard_RequireUnauthorized(t *testing.T) {
	h := NewGuard(storage.NewMemory(), zap.NewNop()).Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/items", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func ptr(s string) *string { return &s }

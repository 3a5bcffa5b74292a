package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/clock"
	"github.com/BuzzLyutic/activity-dashboard/internal/model"
	"github.com/BuzzLyutic/activity-dashboard/internal/storage"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// AttemptRecorder counts login attempts by outcome.
type AttemptRecorder interface {
	RecordLogin(outcome string)
}

type nopAttempts struct{}

func (nopAttempts) RecordLogin(string) {}

// LoginService runs the login workflow and owns the session and
// remembered-email keys.
type LoginService struct {
	store   storage.Storage
	auth    *Authenticator
	clock   clock.Clock
	delay   time.Duration
	logger  *zap.Logger
	metrics AttemptRecorder
}

func NewLoginService(store storage.Storage, auth *Authenticator, clk clock.Clock, delay time.Duration, logger *zap.Logger, metrics AttemptRecorder) *LoginService {
	if metrics == nil {
		metrics = nopAttempts{}
	}
	return &LoginService{
		store:   store,
		auth:    auth,
		clock:   clk,
		delay:   delay,
		logger:  logger,
		metrics: metrics,
	}
}

// Login validates the form, updates the remembered e-mail, waits the
// simulated network delay and, on success, stores a new session.
func (s *LoginService) Login(ctx context.Context, req LoginRequest) (model.Session, error) {
	email := strings.TrimSpace(req.Email)
	if err := validateCredentials(email, req.Password); err != nil {
		s.metrics.RecordLogin("invalid")
		return model.Session{}, err
	}

	if req.Remember {
		if err := s.store.Set(ctx, storage.RememberKey, email); err != nil {
			return model.Session{}, fmt.Errorf("remember email: %w", err)
		}
	} else if err := s.store.Remove(ctx, storage.RememberKey); err != nil {
		return model.Session{}, fmt.Errorf("forget email: %w", err)
	}

	if err := s.clock.Sleep(ctx, s.delay); err != nil {
		return model.Session{}, err
	}

	user, err := s.auth.Authenticate(email, req.Password)
	if err != nil {
		outcome := "user_not_found"
		if errors.Is(err, ErrWrongPassword) {
			outcome = "wrong_password"
		}
		s.metrics.RecordLogin(outcome)
		s.logger.Info("login failed", zap.String("email", email), zap.String("reason", outcome))
		return model.Session{}, err
	}

	sess := model.Session{
		Token:     uuid.NewString(),
		User:      user,
		CreatedAt: s.clock.Now(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return model.Session{}, fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, storage.SessionKey, string(data)); err != nil {
		return model.Session{}, fmt.Errorf("store session: %w", err)
	}

	s.metrics.RecordLogin("success")
	s.logger.Info("login succeeded", zap.String("email", user.Email), zap.String("role", user.Role))
	return sess, nil
}

func (s *LoginService) Logout(ctx context.Context) error {
	return s.store.Remove(ctx, storage.SessionKey)
}

// RememberedEmail returns "" when nothing is remembered.
func (s *LoginService) RememberedEmail(ctx context.Context) (string, error) {
	v, err := s.store.Get(ctx, storage.RememberKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return "", nil
	}
	return v, err
}

// RecoverPassword pretends to send a recovery link. Nothing is stored or sent.
func (s *LoginService) RecoverPassword(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return ErrValidation
	}
	s.logger.Info("simulated password recovery", zap.String("email", email))
	return nil
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return ErrValidation
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrValidation
	}
	return nil
}

// Package auth simulates a login against a fixed list of demo accounts.
//
// The authenticator tells "unknown e-mail" apart from "wrong password" so
// the login page can show either message. A real system must not do that.
package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/BuzzLyutic/activity-dashboard/internal/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
	ErrValidation    = errors.New("validation error")
)

// Message is the text the login page shows for a failed attempt.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return "Usuário não encontrado."
	case errors.Is(err, ErrWrongPassword):
		return "Senha inválida."
	case errors.Is(err, ErrValidation):
		return "Revise os campos do formulário."
	default:
		return "Não foi possível entrar."
	}
}

// DemoAccount is one entry of the fixed account list.
type DemoAccount struct {
	Email    string
	Password string
	Role     string
}

// DemoAccounts are the accounts the login screen accepts.
var DemoAccounts = []DemoAccount{
	{Email: "admin@demo.com", Password: "admin123", Role: "Admin"},
	{Email: "user@demo.com", Password: "user1234", Role: "Usuário"},
}

type account struct {
	email string
	hash  []byte
	role  string
}

type Authenticator struct {
	accounts []account
}

// NewAuthenticator hashes the plain demo passwords once at startup.
func NewAuthenticator(accounts []DemoAccount) (*Authenticator, error) {
	a := &Authenticator{accounts: make([]account, 0, len(accounts))}
	for _, acc := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.MinCost)
		if err != nil {
			return nil, err
		}
		a.accounts = append(a.accounts, account{email: acc.Email, hash: hash, role: acc.Role})
	}
	return a, nil
}

// Authenticate matches the e-mail case-insensitively and checks the password.
func (a *Authenticator) Authenticate(email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	for _, acc := range a.accounts {
		if !strings.EqualFold(acc.email, email) {
			continue
		}
		if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
			return model.User{}, ErrWrongPassword
		}
		return model.User{Email: acc.email, Role: acc.role}, nil
	}
	return model.User{}, ErrUserNotFound
}

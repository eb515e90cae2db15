// Package auth implements demo-account login and signed session cookies.
package auth

import (
	"crypto/subtle"
	"strings"

	apperrors "github.com/gpad1234/light-octo/backend/pkg/errors"
)

const (
	// RoleUser can browse and edit the graph
	RoleUser = "user"
	// RoleAdmin can additionally use the LLM query and Neo4j export
	RoleAdmin = "admin"
)

// Account is an authenticated principal
type Account struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the account carries the admin role
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CredentialStore checks a username/password pair
type CredentialStore interface {
	Authenticate(username, password string) (Account, error)
}

type credential struct {
	password string
	role     string
}

// StaticCredentials is a fixed in-memory account table
type StaticCredentials struct {
	accounts map[string]credential
}

// DemoAccounts returns the built-in demonstration accounts
func DemoAccounts() *StaticCredentials {
	return &StaticCredentials{
		accounts: map[string]credential{
			"user":  {password: "user123", role: RoleUser},
			"admin": {password: "admin123", role: RoleAdmin},
		},
	}
}

// Authenticate returns the account for a matching username/password pair.
// Surrounding whitespace is ignored.
func (s *StaticCredentials) Authenticate(username, password string) (Account, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return Account{}, apperrors.NewInvalidInput("Username and password required")
	}

	cred, ok := s.accounts[username]
	if !ok || subtle.ConstantTimeCompare([]byte(cred.password), []byte(password)) != 1 {
		return Account{}, apperrors.NewUnauthorized("Invalid username or password")
	}
	return Account{Username: username, Role: cred.role}, nil
}

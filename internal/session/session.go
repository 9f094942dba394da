// Package session loads the desk operator's login from disk.
//
// Two file shapes exist in the wild: {"token": "..."} and
// {"user": {"jwt": "..."}} (or "token" under user). Both are normalised into
// Session when the file is read; nothing else looks at the raw shape.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/imrishuroy/go-tailor-orderflow/internal/apperr"
	"github.com/imrishuroy/go-tailor-orderflow/internal/auth"
)

var (
	ErrNoToken = errors.New("no session token")
	ErrExpired = errors.New("session token expired")
)

// User is the logged-in operator.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Session is a normalised login.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

type rawFile struct {
	Token string `json:"token"`
	User  *struct {
		User
		JWT   string `json:"jwt"`
		Token string `json:"token"`
	} `json:"user"`
}

// Parse normalises a session document.
func Parse(data []byte) (*Session, error) {
	var raw rawFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s := &Session{Token: strings.TrimSpace(raw.Token)}
	if raw.User != nil {
		s.User = raw.User.User
		if s.Token == "" {
			s.Token = strings.TrimSpace(raw.User.JWT)
		}
		if s.Token == "" {
			s.Token = strings.TrimSpace(raw.User.Token)
		}
	}
	if s.Token == "" {
		return nil, ErrNoToken
	}
	// opaque tokens carry no expiry; the backend decides
	if exp, err := auth.ExpiresAt(s.Token); err == nil {
		s.ExpiresAt = exp
	}
	return s, nil
}

// Check returns ErrExpired when the token's exp is before now.
func (s *Session) Check(now time.Time) error {
	if s.Token == "" {
		return ErrNoToken
	}
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

// Store reads the session file on every call so a fresh login is picked up
// without restarting the desk.
type Store struct {
	path    string
	nowFunc func() time.Time
}

func NewStore(path string) *Store {
	return &Store{path: path, nowFunc: time.Now}
}

// Load reads and checks the session. Any failure is an *apperr.AuthError.
func (st *Store) Load() (*Session, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &apperr.AuthError{Reason: ErrNoToken.Error()}
		}
		return nil, &apperr.AuthError{Reason: fmt.Sprintf("read session: %v", err)}
	}
	s, err := Parse(data)
	if err != nil {
		return nil, &apperr.AuthError{Reason: err.Error()}
	}
	if err := s.Check(st.nowFunc()); err != nil {
		return nil, &apperr.AuthError{Reason: err.Error()}
	}
	return s, nil
}

// Token returns the bearer token of a valid session.
func (st *Store) Token() (string, error) {
	s, err := st.Load()
	if err != nil {
		return "", err
	}
	return s.Token, nil
}

// Save writes s in the top-level token shape.
func (st *Store) Save(s Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(st.path, data, 0o600)
}

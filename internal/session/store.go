// Package session owns the authentication lifecycle and the user's
// theme preference. All remote access goes through the API client it
// wires up; views read session state instead of tracking tokens.
package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/sahilbajaj/khata/pkg/client"
	"github.com/sahilbajaj/khata/pkg/domain"
)

// State is the session lifecycle phase.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Store tracks who is logged in. The mutex guards field access only;
// it is never held across a network call, so the client's token
// callback can read the current token without deadlocking.
type Store struct {
	mu    sync.Mutex
	files *FileStore
	cli   *client.Client
	log   *zap.Logger

	state         State
	user          *domain.User
	theme         string
	tokenOverride string
}

// New builds a store talking to the API at apiURL. tokenOverride, when
// non-empty, takes precedence over the persisted token and is not
// written back to disk.
func New(apiURL, tokenOverride string, files *FileStore, log *zap.Logger) *Store {
	s := &Store{
		files:         files,
		log:           log,
		state:         StateUninitialized,
		theme:         domain.ThemeLight,
		tokenOverride: tokenOverride,
	}
	s.cli = client.New(apiURL, s.token)
	s.cli.OnUnauthorized(s.evict)
	return s
}

// Client exposes the wired API client for views.
func (s *Store) Client() *client.Client {
	return s.cli
}

// State returns the current lifecycle phase.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the authenticated profile, nil otherwise.
func (s *Store) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Theme returns the active theme name.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Store) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokenOverride != "" {
		return s.tokenOverride
	}
	return s.files.Token()
}

// evict drops the local session after the server rejects the token.
// Runs from inside the client's 401 hook, so no network calls here.
func (s *Store) evict() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenOverride = ""
	if err := s.files.ClearToken(); err != nil {
		s.log.Warn("clear token after 401", zap.Error(err))
	}
	s.state = StateUnauthenticated
	s.user = nil
	s.log.Info("session evicted on 401")
}

// Initialize restores the persisted session. Without a token it goes
// straight to unauthenticated with no network traffic; with one it
// probes the profile endpoint and fails closed, clearing a token the
// server no longer accepts.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if theme := s.files.Theme(); domain.ValidTheme(theme) {
		s.theme = theme
	}
	s.state = StateLoading
	s.mu.Unlock()

	if s.token() == "" {
		s.mu.Lock()
		s.state = StateUnauthenticated
		s.mu.Unlock()
		return nil
	}

	user, err := s.cli.Me(ctx)
	if err != nil {
		// evict already ran on a 401; clear anyway for network errors
		// so a flaky startup never leaves a half-open session.
		s.mu.Lock()
		s.tokenOverride = ""
		if clearErr := s.files.ClearToken(); clearErr != nil {
			s.log.Warn("clear token after failed probe", zap.Error(clearErr))
		}
		s.state = StateUnauthenticated
		s.user = nil
		s.mu.Unlock()
		s.log.Info("session probe failed", zap.Error(err))
		return err
	}

	s.adoptUser(user)
	s.log.Info("session restored", zap.String("email", user.Email))
	return nil
}

// Login authenticates and loads the profile. The token is persisted
// before the profile probe so the probe request carries it; a failed
// probe rolls the persisted token back.
func (s *Store) Login(ctx context.Context, email, password string) error {
	token, err := s.cli.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(ctx, token)
}

// Register creates an account and logs into it.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	token, err := s.cli.Register(ctx, name, email, password)
	if err != nil {
		return err
	}
	return s.establish(ctx, token)
}

func (s *Store) establish(ctx context.Context, token string) error {
	s.mu.Lock()
	s.tokenOverride = ""
	if err := s.files.SaveToken(token); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	user, err := s.cli.Me(ctx)
	if err != nil {
		s.mu.Lock()
		if clearErr := s.files.ClearToken(); clearErr != nil {
			s.log.Warn("clear token after failed probe", zap.Error(clearErr))
		}
		s.state = StateUnauthenticated
		s.user = nil
		s.mu.Unlock()
		return err
	}

	s.adoptUser(user)
	s.log.Info("logged in", zap.String("email", user.Email))
	return nil
}

// adoptUser flips to authenticated and reconciles the theme, with the
// server-side preference winning over the local file.
func (s *Store) adoptUser(user *domain.User) {
	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = user
	if domain.ValidTheme(user.ThemePreference) && user.ThemePreference != s.theme {
		s.theme = user.ThemePreference
		if err := s.files.SaveTheme(s.theme); err != nil {
			s.log.Warn("persist theme", zap.Error(err))
		}
	}
	s.mu.Unlock()
}

// Logout ends the session. The remote call is best effort; local
// state is wiped no matter what the server says.
func (s *Store) Logout(ctx context.Context) {
	if err := s.cli.Logout(ctx); err != nil {
		s.log.Warn("remote logout failed", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenOverride = ""
	if err := s.files.ClearToken(); err != nil {
		s.log.Warn("clear token on logout", zap.Error(err))
	}
	if err := s.files.ClearTheme(); err != nil {
		s.log.Warn("clear theme on logout", zap.Error(err))
	}
	s.state = StateUnauthenticated
	s.user = nil
	s.theme = domain.ThemeLight
	s.log.Info("logged out")
}

// ToggleTheme flips the theme. The new theme applies locally and is
// persisted immediately; when authenticated it is also synced to the
// server, and a sync failure is reported without reverting the flip.
func (s *Store) ToggleTheme(ctx context.Context) (string, error) {
	s.mu.Lock()
	next := domain.ThemeDark
	if s.theme == domain.ThemeDark {
		next = domain.ThemeLight
	}
	s.theme = next
	if err := s.files.SaveTheme(next); err != nil {
		s.log.Warn("persist theme", zap.Error(err))
	}
	if s.user != nil {
		s.user.ThemePreference = next
	}
	authenticated := s.state == StateAuthenticated
	s.mu.Unlock()

	if !authenticated {
		return next, nil
	}
	if err := s.cli.UpdateTheme(ctx, next); err != nil {
		s.log.Warn("theme sync failed", zap.Error(err))
		return next, err
	}
	return next, nil
}

// UpdateProfile changes the user's name and email.
func (s *Store) UpdateProfile(ctx context.Context, name, email string) error {
	if name == "" || email == "" {
		return errors.New("name and email are required")
	}
	user, err := s.cli.UpdateDetails(ctx, name, email)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.log.Info("profile updated", zap.String("email", user.Email))
	return nil
}

// ChangePassword rotates the password and swaps in the fresh token the
// server issues, so the session survives the old token's invalidation.
func (s *Store) ChangePassword(ctx context.Context, current, newPassword, confirm string) error {
	if len(newPassword) < 6 {
		return errors.New("new password must be at least 6 characters")
	}
	if newPassword != confirm {
		return errors.New("passwords do not match")
	}
	token, err := s.cli.UpdatePassword(ctx, current, newPassword)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tokenOverride = ""
	if err := s.files.SaveToken(token); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()
	s.log.Info("password changed")
	return nil
}

// Package usermanager binds the user registry and the session table behind
// a single mutex and exposes the three operations the transport composes:
// SignUp, LogIn, and CurrentUser.
//
// A single mutex covers both structures. No filesystem work happens under
// the lock; the argon2 derivation and all file streaming run with the lock
// released.
package usermanager

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/filehost/internal/common"
	"github.com/dmitrijs2005/filehost/internal/logging"
	"github.com/dmitrijs2005/filehost/internal/server/files"
	"github.com/dmitrijs2005/filehost/internal/server/sessions"
	"github.com/dmitrijs2005/filehost/internal/server/users"
)

// Manager owns the registry and the session table. All access to either
// goes through the mutex; operations are linearizable in lock order.
type Manager struct {
	mu       sync.Mutex
	registry *users.Registry
	table    *sessions.Table
	logger   logging.Logger
}

// New assembles a Manager over an already-loaded registry and a session
// table.
func New(registry *users.Registry, table *sessions.Table, logger logging.Logger) *Manager {
	return &Manager{
		registry: registry,
		table:    table,
		logger:   logger.With("module", "usermanager"),
	}
}

// SignUp creates a new account. The name must be a safe path component
// because it becomes the user's directory name. The new user is not logged
// in. The password slice is wiped before returning.
func (m *Manager) SignUp(name string, password []byte) error {
	defer common.WipeByteArray(password)

	if err := files.ValidateName(name); err != nil {
		return err
	}

	u := users.User{Name: name, Digest: users.Digest(name, password)}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.Add(u)
}

// LogIn verifies the credentials and, on success, installs a session and
// returns its token. An unknown name and a wrong password are deliberately
// indistinguishable: both come back as ErrAuthFailed. The password slice is
// wiped before returning.
func (m *Manager) LogIn(name string, password []byte) (string, error) {
	defer common.WipeByteArray(password)

	// derive outside the lock; argon2id takes tens of milliseconds
	candidate := users.Digest(name, password)

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.registry.FindByName(name)
	if !ok || !users.MatchDigest(u, candidate) {
		return "", common.ErrAuthFailed
	}

	s, err := m.table.Create(u.Name)
	if err != nil {
		return "", err
	}
	return s.Token, nil
}

// CurrentUser resolves a session token to a copy of the owning user. The
// copy is the caller's to keep for the request's duration; registry state
// cannot change underneath it.
func (m *Manager) CurrentUser(ctx context.Context, token string) (users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, err := m.table.Resolve(token)
	if err != nil {
		return users.User{}, err
	}

	u, ok := m.registry.FindByName(name)
	if !ok {
		// every live session must point at a registered user; a miss here
		// means the invariant broke
		m.logger.Error(ctx, "session resolved to unknown user", "user", name)
		m.table.Invalidate(name)
		return users.User{}, fmt.Errorf("orphaned session for %q: %w", name, common.ErrInternal)
	}

	return *u, nil
}

// Flush persists the registry. Called from the shutdown path.
func (m *Manager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.Flush()
}

// Package sessions tracks live authenticated sessions. The table is purely
// in-memory: every restart starts with an empty table and all clients must
// log in again.
package sessions

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/filehost/internal/common"
)

// tokenBytes is the amount of entropy behind a session token. 32 random
// bytes, hex-encoded; the token carries no user identity.
const tokenBytes = 32

// Session binds an opaque token to a logged-in user.
type Session struct {
	Token     string
	UserName  string
	CreatedAt time.Time
	LastSeen  time.Time
}

// Table maps tokens to sessions. It is not synchronized; usermanager
// serializes all access behind its mutex.
type Table struct {
	ttl      time.Duration
	sessions map[string]*Session

	// now is a test seam for time.Time.
	now func() time.Time
}

// NewTable creates an empty session table. ttl is the idle timeout applied
// on Resolve; 0 keeps sessions alive until restart.
func NewTable(ttl time.Duration) *Table {
	return &Table{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create installs a fresh session for userName, superseding any session the
// user already holds. The returned session carries the new token.
func (t *Table) Create(userName string) (*Session, error) {
	t.Invalidate(userName)

	var token string
	for {
		var err error
		token, err = common.MakeRandHexString(tokenBytes)
		if err != nil {
			return nil, fmt.Errorf("generate session token: %v: %w", err, common.ErrInternal)
		}
		if _, taken := t.sessions[token]; !taken {
			break
		}
	}

	now := t.now()
	s := &Session{Token: token, UserName: userName, CreatedAt: now, LastSeen: now}
	t.sessions[token] = s
	return s, nil
}

// Resolve returns the user name owning the token. Unknown and idle-expired
// tokens both come back as ErrSessionMissing; a successful resolve advances
// LastSeen.
func (t *Table) Resolve(token string) (string, error) {
	s, ok := t.sessions[token]
	if !ok {
		return "", common.ErrSessionMissing
	}

	now := t.now()
	if t.ttl > 0 && now.Sub(s.LastSeen) > t.ttl {
		delete(t.sessions, token)
		return "", common.ErrSessionMissing
	}

	s.LastSeen = now
	return s.UserName, nil
}

// Invalidate drops every session belonging to userName.
func (t *Table) Invalidate(userName string) {
	for token, s := range t.sessions {
		if s.UserName == userName {
			delete(t.sessions, token)
		}
	}
}

// Len reports the number of live sessions.
func (t *Table) Len() int {
	return len(t.sessions)
}

// Package users maintains the registry of known accounts: the argon2id
// password digest scheme and the journal that persists users across
// restarts.
//
// The journal is a flat file at <root>/user-data.txt holding one JSON
// record {"name":…,"digest":…} per user, records separated by CRLF. There
// is no header and no schema version; the format is inherited and kept
// compatible.
package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/filehost/internal/common"
)

const (
	journalName     = "user-data.txt"
	recordSeparator = "\r\n"
)

// Registry holds every known user in memory. It is not synchronized;
// usermanager serializes all access behind its mutex.
type Registry struct {
	path  string
	users []User
}

// OpenRegistry loads the journal under root, creating both the directory
// and an empty journal when absent. A record that fails to parse yields
// ErrStorageCorrupt and the caller is expected to abort startup; I/O
// failures yield ErrStorageUnavailable.
func OpenRegistry(root string) (*Registry, error) {
	if err := os.MkdirAll(root, 0o770); err != nil {
		return nil, fmt.Errorf("create storage root: %v: %w", err, common.ErrStorageUnavailable)
	}

	path := filepath.Join(root, journalName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read user journal: %v: %w", err, common.ErrStorageUnavailable)
		}
		if err := os.WriteFile(path, nil, 0o660); err != nil {
			return nil, fmt.Errorf("create user journal: %v: %w", err, common.ErrStorageUnavailable)
		}
		data = nil
	}

	r := &Registry{path: path}

	content := strings.TrimSuffix(string(data), recordSeparator)
	if content == "" {
		return r, nil
	}

	for _, record := range strings.Split(content, recordSeparator) {
		var u User
		if err := json.Unmarshal([]byte(record), &u); err != nil {
			return nil, fmt.Errorf("parse user record: %v: %w", err, common.ErrStorageCorrupt)
		}
		r.users = append(r.users, u)
	}

	return r, nil
}

// Add registers a new user. Durability is deferred to Flush: a crash before
// shutdown loses users added since startup.
func (r *Registry) Add(u User) error {
	if _, ok := r.FindByName(u.Name); ok {
		return fmt.Errorf("user %q: %w", u.Name, common.ErrUserExists)
	}
	r.users = append(r.users, u)
	return nil
}

// FindByName returns the user with the given name. The registry is a plain
// slice; a linear scan is fine for the expected account counts.
func (r *Registry) FindByName(name string) (*User, bool) {
	for i := range r.users {
		if r.users[i].Name == name {
			return &r.users[i], true
		}
	}
	return nil, false
}

// Len reports the number of registered users.
func (r *Registry) Len() int {
	return len(r.users)
}

// All returns a copy of the registered users.
func (r *Registry) All() []User {
	out := make([]User, len(r.users))
	copy(out, r.users)
	return out
}

// Flush rewrites the journal atomically: serialize every user, write to a
// temp file next to the journal, rename over it.
func (r *Registry) Flush() error {
	records := make([]string, 0, len(r.users))
	for _, u := range r.users {
		b, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("serialize user %q: %w", u.Name, err)
		}
		records = append(records, string(b))
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), journalName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create journal temp file: %v: %w", err, common.ErrStorageUnavailable)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strings.Join(records, recordSeparator)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write journal: %v: %w", err, common.ErrStorageUnavailable)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close journal temp file: %v: %w", err, common.ErrStorageUnavailable)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace journal: %v: %w", err, common.ErrStorageUnavailable)
	}

	return nil
}

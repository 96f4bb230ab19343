// Package files projects an authenticated user onto a private directory
// under the storage root and exposes list/save/open/remove over the files
// inside it.
//
// The store never sees session tokens. Every operation takes a user name
// that the caller has already authenticated; the authority boundary lives
// in usermanager.
package files

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/filehost/internal/common"
)

// uploadTempPrefix marks files still being streamed to disk; they are
// hidden from List and renamed away on completion.
const uploadTempPrefix = ".upload-"

// Entry describes one file in a user's namespace.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store is the per-user file namespace rooted at a single directory.
// Operations on distinct users touch disjoint subtrees.
type Store struct {
	root string
}

// NewStore creates a Store over the given storage root. The root itself is
// created lazily by Save.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// ValidateName rejects anything that is not a safe single path component:
// empty strings, dot and dot-dot, and names containing path separators.
// Both user names and file names go through this check.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%q: %w", name, common.ErrInvalidFilename)
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%q: %w", name, common.ErrInvalidFilename)
	}
	return nil
}

func (s *Store) dir(userName string) string {
	return filepath.Join(s.root, userName)
}

// List enumerates the regular files in the user's directory. A directory
// that does not exist yet reads as an empty namespace. The snapshot is
// best-effort: files removed externally between readdir and stat are
// skipped.
func (s *Store) List(userName string) ([]Entry, error) {
	if err := ValidateName(userName); err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(s.dir(userName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("list %q: %v: %w", userName, err, common.ErrStorageUnavailable)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		// in-flight uploads waiting for their rename
		if strings.HasPrefix(de.Name(), uploadTempPrefix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return entries, nil
}

// Save streams r into the user's directory under filename, creating the
// directory when absent. An existing file is overwritten. The bytes go to a
// temp file first and are renamed into place, so a cancelled upload never
// leaves a partial target behind.
func (s *Store) Save(userName string, r io.Reader, filename string) error {
	if err := ValidateName(userName); err != nil {
		return err
	}
	if err := ValidateName(filename); err != nil {
		return err
	}

	dir := s.dir(userName)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("create user dir: %v: %w", err, common.ErrStorageUnavailable)
	}

	tmp, err := os.CreateTemp(dir, uploadTempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create upload temp file: %v: %w", err, common.ErrStorageUnavailable)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write upload: %v: %w", err, common.ErrStorageUnavailable)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close upload: %v: %w", err, common.ErrStorageUnavailable)
	}

	if err := os.Rename(tmpName, filepath.Join(dir, filename)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("place upload: %v: %w", err, common.ErrStorageUnavailable)
	}
	return nil
}

// Open returns a read handle and metadata for one of the user's files. The
// caller owns the handle and must close it.
func (s *Store) Open(userName, filename string) (*os.File, fs.FileInfo, error) {
	if err := ValidateName(userName); err != nil {
		return nil, nil, err
	}
	if err := ValidateName(filename); err != nil {
		return nil, nil, err
	}

	f, err := os.Open(filepath.Join(s.dir(userName), filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%q: %w", filename, common.ErrFileMissing)
		}
		return nil, nil, fmt.Errorf("open %q: %v: %w", filename, err, common.ErrStorageUnavailable)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %q: %v: %w", filename, err, common.ErrStorageUnavailable)
	}
	return f, info, nil
}

// Remove deletes one of the user's files.
func (s *Store) Remove(userName, filename string) error {
	if err := ValidateName(userName); err != nil {
		return err
	}
	if err := ValidateName(filename); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(s.dir(userName), filename))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%q: %w", filename, common.ErrFileMissing)
		}
		return fmt.Errorf("remove %q: %v: %w", filename, err, common.ErrStorageUnavailable)
	}
	return nil
}

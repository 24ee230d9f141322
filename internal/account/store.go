// Package account persists user records for the realm. The store owns
// everything about a user except external credentials: profile fields, the
// session cookie, the local password and the local/external origin flag.
package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/realmkit/htrealm/internal/auth"
)

type state struct {
	UpdatedAt time.Time              `json:"updated_at"`
	Users     map[string]*UserRecord `json:"users"`
}

// FileStore keeps user records in a single JSON file, rewritten atomically
// on every update.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

// Ensure creates the backing directory and an empty users file if missing.
func (s *FileStore) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.saveLocked(state{Users: map[string]*UserRecord{}})
		}
		return err
	}
	return nil
}

// IsLocalAccount reports whether username has a record whose authentication
// this store owns. Records stamped external belong to another realm.
func (s *FileStore) IsLocalAccount(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return false
	}
	rec, ok := st.Users[username]
	return ok && !rec.IsExternal()
}

// GetUserModel returns the record for username, or nil when absent.
func (s *FileStore) GetUserModel(username string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	rec, ok := st.Users[username]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// UpdateUserModel inserts or replaces the record keyed by its username.
func (s *FileStore) UpdateUserModel(rec *UserRecord) error {
	if rec == nil || rec.Username == "" {
		return fmt.Errorf("account: record needs a username")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return err
	}
	cp := *rec
	cp.UpdatedAt = time.Now().UTC()
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = cp.UpdatedAt
	}
	st.Users[cp.Username] = &cp
	st.UpdatedAt = cp.UpdatedAt
	return s.saveLocked(st)
}

// Authenticate verifies username/password against the locally stored
// password. Returns nil for unknown users, external records and mismatches.
// If the record has no session cookie yet, one is assigned and persisted.
func (s *FileStore) Authenticate(username, password string) (*UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	rec, ok := st.Users[username]
	if !ok || rec.IsExternal() || rec.Password == "" {
		return nil, nil
	}
	if !auth.VerifyPassword(rec.Password, password) {
		return nil, nil
	}
	if rec.Cookie == "" && password != "" {
		rec.Cookie = auth.UserCookie(username, password)
		rec.UpdatedAt = time.Now().UTC()
		st.UpdatedAt = rec.UpdatedAt
		if err := s.saveLocked(st); err != nil {
			return nil, err
		}
	}
	cp := *rec
	return &cp, nil
}

// Usernames lists all known usernames, for logging and admin surfaces.
func (s *FileStore) Usernames() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(st.Users))
	for name := range st.Users {
		names = append(names, name)
	}
	return names, nil
}

func (s *FileStore) loadLocked() (state, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return state{Users: map[string]*UserRecord{}}, nil
		}
		return state{}, err
	}
	if len(b) == 0 {
		return state{Users: map[string]*UserRecord{}}, nil
	}
	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		return state{}, err
	}
	if st.Users == nil {
		st.Users = map[string]*UserRecord{}
	}
	return st, nil
}

func (s *FileStore) saveLocked(st state) error {
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

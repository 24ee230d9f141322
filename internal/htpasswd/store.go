// Package htpasswd caches the contents of an Apache htpasswd credential
// file. The file is read-only to this process; the in-memory mapping is an
// immutable snapshot replaced wholesale whenever the file's modification
// time changes.
package htpasswd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// entryPattern matches one htpasswd line: username, colon, secret.
var entryPattern = regexp.MustCompile(`^([^:]+):(.+)$`)

// snapshot is the complete state of the credential file as of one parse.
// Never mutated after publication.
type snapshot struct {
	users   map[string]string
	modTime time.Time
}

type Store struct {
	path     string
	reloadMu sync.Mutex // serializes reloads; readers go through snap only
	snap     atomic.Pointer[snapshot]
}

func NewStore(path string) *Store {
	s := &Store{path: path}
	s.snap.Store(&snapshot{users: map[string]string{}})
	return s
}

func (s *Store) Path() string { return s.path }

// EnsureFresh re-reads the credential file if its modification time differs
// from the cached one. A missing file is a silent no-op: stale data is
// preferred over wiping state while the file is briefly absent. On a read
// failure the previous snapshot and timestamp are both kept, so the next
// call retries; the error is returned for the caller to log.
func (s *Store) EnsureFresh() error {
	st, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	if st.ModTime().Equal(s.snap.Load().modTime) {
		return nil
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	// Re-check under the lock; a concurrent caller may have finished the
	// reload while we waited.
	st, err = os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	if st.ModTime().Equal(s.snap.Load().modTime) {
		return nil
	}

	users, err := parseFile(s.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	s.snap.Store(&snapshot{users: users, modTime: st.ModTime()})
	return nil
}

// Lookup returns the stored secret for username from the current snapshot.
// It never triggers a reload.
func (s *Store) Lookup(username string) (string, bool) {
	secret, ok := s.snap.Load().users[username]
	return secret, ok
}

func (s *Store) Contains(username string) bool {
	_, ok := s.snap.Load().users[username]
	return ok
}

// Len reports the number of cached credential entries.
func (s *Store) Len() int {
	return len(s.snap.Load().users)
}

func parseFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	users := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(b))
	buf := make([]byte, 0, 64*1024)
	sc.Buffer(buf, 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := entryPattern.FindStringSubmatch(line)
		if m == nil {
			// Not an entry; htpasswd files carry no other syntax, so
			// skip rather than fail.
			continue
		}
		// Last occurrence wins for duplicate usernames.
		users[m[1]] = m[2]
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

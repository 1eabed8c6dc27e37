package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gatherctl/pkg/logger"

	"github.com/google/uuid"
)

const stateFileName = "session.json"

// stateFile is the on-disk layout. The four credential keys are always
// written together; isAdmin stays a boolean-as-string for compatibility with
// the other clients of this service. Origin identifies the process that
// performed the last write so the watcher can ignore its own changes, the
// same way a browser tab never sees its own storage events.
type stateFile struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	IsAdmin      string `json:"isAdmin"`
	FullName     string `json:"fullName"`
	Origin       string `json:"origin"`
}

// Store is the single authoritative holder of the Session. Reads are
// lock-guarded snapshots and never observe a half-written session.
type Store struct {
	mu      sync.RWMutex
	current Session

	path   string
	origin string
	bus    *Bus
	log    *logger.Logger
}

func NewStore(stateDir string, bus *Bus, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	s := &Store{
		path:   filepath.Join(stateDir, stateFileName),
		origin: uuid.NewString(),
		bus:    bus,
		log:    log,
	}

	if err := s.restore(); err != nil {
		return nil, err
	}
	return s, nil
}

// restore loads whatever session the last process left behind. A restored
// token that is already past its expiry is discarded up front instead of
// waiting for the first 401.
func (s *Store) restore() error {
	state, err := readStateFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		s.log.Warn("Discarding unreadable session state", "path", s.path, "error", err)
		return nil
	}

	if state.Token != "" && tokenExpired(state.Token, time.Now()) {
		s.log.Info("Stored session has expired, starting anonymous")
		if err := s.persistLocked(Session{}); err != nil {
			s.log.Warn("Failed to clear expired session state", "error", err)
		}
		return nil
	}

	s.current = sessionFromState(state)
	return nil
}

// Set replaces the whole session in one step and notifies subscribers.
func (s *Store) Set(sess Session) error {
	s.mu.Lock()
	s.current = sess
	err := s.persistLocked(sess)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.bus.Publish()
	return nil
}

// Clear drops every session field and notifies subscribers. Clearing an
// already-anonymous session is a no-op so that a burst of 401 failures after
// logout does not ripple into repeated notifications.
func (s *Store) Clear() error {
	s.mu.Lock()
	if !s.current.Authenticated() {
		s.mu.Unlock()
		return nil
	}
	s.current = Session{}
	err := s.persistLocked(Session{})
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.bus.Publish()
	return nil
}

// Get returns the current snapshot. Never blocks on I/O.
func (s *Store) Get() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	return s.Get().Token
}

// persistLocked writes the state file atomically: full payload to a temp
// file, then rename over the live one. Readers in other processes see either
// the old or the new session, never a torn write.
func (s *Store) persistLocked(sess Session) error {
	state := stateFile{
		Token:        sess.Token,
		RefreshToken: sess.RefreshToken,
		IsAdmin:      fmt.Sprintf("%t", sess.IsAdmin),
		FullName:     sess.DisplayName,
		Origin:       s.origin,
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace session state: %w", err)
	}
	return nil
}

// reloadFromDisk is called by the watcher when another process touched the
// state file. Reports whether the session actually changed.
func (s *Store) reloadFromDisk() bool {
	state, err := readStateFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn("Failed to reload session state", "error", err)
			return false
		}
		state = stateFile{Origin: ""}
	}

	if state.Origin == s.origin {
		// Our own write echoed back through the filesystem.
		return false
	}

	next := sessionFromState(state)

	s.mu.Lock()
	changed := next != s.current
	s.current = next
	s.mu.Unlock()
	return changed
}

func readStateFile(path string) (stateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return stateFile{}, err
	}
	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return stateFile{}, fmt.Errorf("corrupt session state: %w", err)
	}
	return state, nil
}

func sessionFromState(state stateFile) Session {
	return Session{
		Token:        state.Token,
		RefreshToken: state.RefreshToken,
		IsAdmin:      state.IsAdmin == "true",
		DisplayName:  state.FullName,
	}
}

package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/occlusion/pkg/domain"
)

const ext = ".jsonl"

// ErrInvalidSessionID is returned for IDs that cannot be used as a file name.
var ErrInvalidSessionID = errors.New("invalid session id")

// Store implements ports.ResultStore on the local filesystem.
// Each session is a JSON Lines file, one record per line, in a configured directory.
type Store struct {
	BasePath string

	mu sync.Mutex
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".occlusion/results".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".occlusion", "results")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(sessionID string) (string, error) {
	if sessionID == "" || sessionID == "." || sessionID == ".." ||
		strings.ContainsAny(sessionID, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return filepath.Join(s.BasePath, sessionID+ext), nil
}

// Append writes the record as one line at the end of the session file and syncs it.
func (s *Store) Append(ctx context.Context, sessionID string, result domain.TrialResult) (err error) {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure results directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open session file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close session file: %w", cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to fsync session file: %w", err)
	}
	return nil
}

// List reads the session file back in append order.
func (s *Store) List(ctx context.Context, sessionID string) ([]domain.TrialResult, error) {
	path, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	defer f.Close()

	var results []domain.TrialResult
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; sc.Scan(); line++ {
		if len(strings.TrimSpace(sc.Text())) == 0 {
			continue
		}
		var r domain.TrialResult
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		results = append(results, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan session file: %w", err)
	}
	if len(results) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return results, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// Sessions returns the IDs of all session files, sorted.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filepath.Ext(name) == ext {
			sessions = append(sessions, strings.TrimSuffix(name, ext))
		}
	}
	slices.Sort(sessions)
	return sessions, nil
}

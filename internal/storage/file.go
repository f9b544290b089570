package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/yourname/studyhabits/internal"
)

// FileStore keeps sessions in memory, indexed per user newest-first,
// and persists the full set to a JSON file through a debounced save
// worker. Writes go to a temp file and are renamed into place.
type FileStore struct {
	sessions  map[int64]*internal.StudySession
	userIndex map[string][]*internal.StudySession // newest first
	nextID    int64
	mu        sync.RWMutex

	path         string
	saveChan     chan struct{}
	shutdownChan chan struct{}
	saveDelay    time.Duration
	now          func() time.Time
	logger       internal.Logger
}

func NewFileStore(path string, logger internal.Logger) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	s := &FileStore{
		sessions:     make(map[int64]*internal.StudySession),
		userIndex:    make(map[string][]*internal.StudySession),
		nextID:       1,
		path:         path,
		saveChan:     make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
		saveDelay:    500 * time.Millisecond,
		now:          time.Now,
		logger:       logger,
	}

	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load sessions: %v", err)
		return nil, err
	}

	go s.saveWorker()

	return s, nil
}

func (s *FileStore) load() error {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var sessions []*internal.StudySession
	if err := json.NewDecoder(file).Decode(&sessions); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range sessions {
		sess.RiskLevel = ""
		s.sessions[sess.ID] = sess
		s.userIndex[sess.Username] = append(s.userIndex[sess.Username], sess)
		if sess.ID >= s.nextID {
			s.nextID = sess.ID + 1
		}
	}

	// Sort each user's sessions descending by timestamp
	for username := range s.userIndex {
		sort.Slice(s.userIndex[username], func(i, j int) bool {
			return s.userIndex[username][i].Timestamp.After(s.userIndex[username][j].Timestamp)
		})
	}

	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStore) save() error {
	s.mu.RLock()
	sessions := make([]*internal.StudySession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return atomicWriteFileJSON(s.path, sessions)
}

func (s *FileStore) saveWorker() {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-s.saveChan:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := s.save(); err != nil {
				s.logger.Errorf("storage: error saving sessions: %v", err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func (s *FileStore) Close() error {
	close(s.shutdownChan)

	// Flush pending data synchronously on shutdown
	return s.save()
}

func (s *FileStore) AppendSession(ctx context.Context, session *internal.StudySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Keep an internal copy so later caller mutations don't leak into
	// the persisted record.
	stored := *session
	stored.ID = s.nextID
	stored.Timestamp = s.now().UTC()
	stored.RiskLevel = ""
	s.nextID++

	s.sessions[stored.ID] = &stored
	index := s.userIndex[stored.Username]
	inserted := false
	for i, existing := range index {
		if existing.Timestamp.Before(stored.Timestamp) {
			index = append(index[:i], append([]*internal.StudySession{&stored}, index[i:]...)...)
			inserted = true
			break
		}
	}
	if !inserted {
		index = append(index, &stored)
	}
	s.userIndex[stored.Username] = index

	session.ID = stored.ID
	session.Timestamp = stored.Timestamp

	select {
	case s.saveChan <- struct{}{}:
	default:
	}
	return nil
}

func (s *FileStore) ListSessions(ctx context.Context, username string, window internal.Window) ([]internal.StudySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff, bounded := window.Cutoff(s.now().UTC())

	index := s.userIndex[username]
	sessions := make([]internal.StudySession, 0, len(index))
	for _, sess := range index {
		if bounded && sess.Timestamp.Before(cutoff) {
			// Index is newest-first, everything past here is older.
			break
		}
		copy := *sess
		copy.RiskLevel = internal.RiskLevelFor(copy.RiskScore)
		sessions = append(sessions, copy)
	}
	return sessions, nil
}

func (s *FileStore) ClearSessions(ctx context.Context, username string, window internal.Window) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff, bounded := window.Cutoff(s.now().UTC())

	index := s.userIndex[username]
	kept := index[:0:0]
	var deleted int64
	for _, sess := range index {
		if !bounded || !sess.Timestamp.Before(cutoff) {
			delete(s.sessions, sess.ID)
			deleted++
			continue
		}
		kept = append(kept, sess)
	}
	if len(kept) == 0 {
		delete(s.userIndex, username)
	} else {
		s.userIndex[username] = kept
	}

	if deleted > 0 {
		select {
		case s.saveChan <- struct{}{}:
		default:
		}
	}
	return deleted, nil
}

func (s *FileStore) DistinctUsernames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usernames := make([]string, 0, len(s.userIndex))
	for username, index := range s.userIndex {
		if len(index) > 0 {
			usernames = append(usernames, username)
		}
	}
	sort.Strings(usernames)
	return usernames, nil
}

// --- Compile-time assertions ---
var _ SessionRepository = (*FileStore)(nil)

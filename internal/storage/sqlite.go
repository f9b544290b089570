package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yourname/studyhabits/internal"
)

// Fixed-width UTC layout so lexicographic comparison in SQL matches
// chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStore struct {
	db     *sql.DB
	logger internal.Logger
	now    func() time.Time
}

func NewSQLiteStore(path string, logger internal.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Errorf("storage: failed to open sqlite: %v", err)
		return nil, err
	}
	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS study_sessions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL,
  timestamp TEXT NOT NULL,
  study_hours REAL NOT NULL,
  sleep_hours REAL NOT NULL,
  break_frequency INTEGER NOT NULL,
  concentration_level INTEGER NOT NULL,
  risk_score REAL
);
CREATE INDEX IF NOT EXISTS idx_study_sessions_username ON study_sessions (username);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("storage: create study_sessions table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendSession(ctx context.Context, session *internal.StudySession) error {
	ts := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO study_sessions (username, timestamp, study_hours, sleep_hours, break_frequency, concentration_level, risk_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.Username, ts.Format(sqliteTimeLayout), session.StudyHours, session.SleepHours,
		session.BreakFrequency, session.ConcentrationLevel, nullableScore(session.RiskScore))
	if err != nil {
		s.logger.Errorf("storage: failed to insert session: %v", err)
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id
	session.Timestamp = ts
	return nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, username string, window internal.Window) ([]internal.StudySession, error) {
	query := `SELECT id, username, timestamp, study_hours, sleep_hours, break_frequency, concentration_level, risk_score
		FROM study_sessions WHERE username = ?`
	args := []any{username}
	if cutoff, bounded := window.Cutoff(s.now().UTC()); bounded {
		query += ` AND timestamp >= ?`
		args = append(args, cutoff.UTC().Format(sqliteTimeLayout))
	}
	query += ` ORDER BY timestamp DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("storage: failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []internal.StudySession{}
	for rows.Next() {
		var (
			sess internal.StudySession
			ts   string
			risk sql.NullFloat64
		)
		if err := rows.Scan(&sess.ID, &sess.Username, &ts, &sess.StudyHours, &sess.SleepHours,
			&sess.BreakFrequency, &sess.ConcentrationLevel, &risk); err != nil {
			s.logger.Errorf("storage: failed to scan session: %v", err)
			return nil, err
		}
		sess.Timestamp, err = time.Parse(sqliteTimeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("storage: corrupt timestamp %q: %w", ts, err)
		}
		if risk.Valid {
			score := risk.Float64
			sess.RiskScore = &score
		}
		sess.RiskLevel = internal.RiskLevelFor(sess.RiskScore)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) ClearSessions(ctx context.Context, username string, window internal.Window) (int64, error) {
	query := `DELETE FROM study_sessions WHERE username = ?`
	args := []any{username}
	if cutoff, bounded := window.Cutoff(s.now().UTC()); bounded {
		query += ` AND timestamp >= ?`
		args = append(args, cutoff.UTC().Format(sqliteTimeLayout))
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("storage: failed to clear sessions: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) DistinctUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT username FROM study_sessions ORDER BY username`)
	if err != nil {
		s.logger.Errorf("storage: failed to query usernames: %v", err)
		return nil, err
	}
	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		usernames = append(usernames, username)
	}
	return usernames, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullableScore(score *float64) any {
	if score == nil {
		return nil
	}
	return *score
}

// --- Compile-time assertions ---
var _ SessionRepository = (*SQLiteStore)(nil)

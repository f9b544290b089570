package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourname/studyhabits/internal"
)

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger internal.Logger
	now    func() time.Time
}

func NewPostgresStore(dsn string, logger internal.Logger) (*PostgresStore, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("storage: failed to connect to postgres: %v", err)
		return nil, err
	}
	s := &PostgresStore{pool: pool, logger: logger, now: time.Now}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS study_sessions (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL,
    timestamp TIMESTAMPTZ NOT NULL,
    study_hours DOUBLE PRECISION NOT NULL,
    sleep_hours DOUBLE PRECISION NOT NULL,
    break_frequency INTEGER NOT NULL,
    concentration_level INTEGER NOT NULL,
    risk_score DOUBLE PRECISION
);
CREATE INDEX IF NOT EXISTS idx_study_sessions_username_ts ON study_sessions (username, timestamp DESC);
`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("storage: create study_sessions table: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendSession(ctx context.Context, session *internal.StudySession) error {
	ts := s.now().UTC()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO study_sessions (username, timestamp, study_hours, sleep_hours, break_frequency, concentration_level, risk_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		session.Username, ts, session.StudyHours, session.SleepHours,
		session.BreakFrequency, session.ConcentrationLevel, session.RiskScore).Scan(&session.ID)
	if err != nil {
		s.logger.Errorf("storage: failed to insert session: %v", err)
		return err
	}
	session.Timestamp = ts
	return nil
}

func (s *PostgresStore) ListSessions(ctx context.Context, username string, window internal.Window) ([]internal.StudySession, error) {
	query := `SELECT id, username, timestamp, study_hours, sleep_hours, break_frequency, concentration_level, risk_score
		FROM study_sessions WHERE username = $1`
	args := []any{username}
	if cutoff, bounded := window.Cutoff(s.now().UTC()); bounded {
		query += ` AND timestamp >= $2`
		args = append(args, cutoff)
	}
	query += ` ORDER BY timestamp DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("storage: failed to query sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []internal.StudySession{}
	for rows.Next() {
		var sess internal.StudySession
		if err := rows.Scan(&sess.ID, &sess.Username, &sess.Timestamp, &sess.StudyHours, &sess.SleepHours,
			&sess.BreakFrequency, &sess.ConcentrationLevel, &sess.RiskScore); err != nil {
			s.logger.Errorf("storage: failed to scan session: %v", err)
			return nil, err
		}
		sess.RiskLevel = internal.RiskLevelFor(sess.RiskScore)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *PostgresStore) ClearSessions(ctx context.Context, username string, window internal.Window) (int64, error) {
	query := `DELETE FROM study_sessions WHERE username = $1`
	args := []any{username}
	if cutoff, bounded := window.Cutoff(s.now().UTC()); bounded {
		query += ` AND timestamp >= $2`
		args = append(args, cutoff)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("storage: failed to clear sessions: %v", err)
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) DistinctUsernames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT username FROM study_sessions ORDER BY username`)
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

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// --- Compile-time assertions ---
var _ SessionRepository = (*PostgresStore)(nil)

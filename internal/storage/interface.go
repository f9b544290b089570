package storage

import (
	"context"

	"github.com/yourname/studyhabits/internal"
)

// SessionRepository exclusively owns the lifecycle of stored study
// sessions. AppendSession assigns the id and timestamp and fills them
// in on the passed record. ListSessions returns newest-first with the
// derived risk level attached. ClearSessions deletes the matching rows
// and reports how many were removed; count and delete come from the
// same snapshot.
type SessionRepository interface {
	AppendSession(ctx context.Context, session *internal.StudySession) error
	ListSessions(ctx context.Context, username string, window internal.Window) ([]internal.StudySession, error)
	ClearSessions(ctx context.Context, username string, window internal.Window) (int64, error)
	DistinctUsernames(ctx context.Context) ([]string, error)
	Close() error
}

package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityRecorder is the append-only audit trail. Recording is best-effort:
// losing an audit line must never fail the transition that triggered it, so
// Record has no error return — failures are logged and swallowed.
type ActivityRecorder interface {
	Record(ctx context.Context, docID, actorID string, typ ActivityType, description, reason string)
	List(ctx context.Context, docID string) ([]Activity, error)
}

type ActivityRecorderImpl struct {
	Repo   ActivityRepository
	Logger *zap.Logger
}

func NewActivityRecorder(repo ActivityRepository, logger *zap.Logger) ActivityRecorder {
	return &ActivityRecorderImpl{
		Repo:   repo,
		Logger: logger,
	}
}

func (r *ActivityRecorderImpl) Record(ctx context.Context, docID, actorID string, typ ActivityType, description, reason string) {
	activity := Activity{
		ID:          uuid.NewString(),
		DocumentID:  docID,
		Type:        typ,
		ActorID:     actorID,
		Description: description,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}

	if err := r.Repo.Insert(ctx, activity); err != nil {
		r.Logger.Warn("failed to record activity",
			zap.String("document", docID),
			zap.String("actor", actorID),
			zap.String("type", string(typ)),
			zap.Error(err))
	}
}

func (r *ActivityRecorderImpl) List(ctx context.Context, docID string) ([]Activity, error) {
	return r.Repo.ListByDocument(ctx, docID)
}

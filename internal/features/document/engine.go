package document

import (
	"context"
	"fmt"
	"time"

	"go-docflow/pkg/apperrors"
)

// Engine is the approval state machine. It is the only code allowed to mutate
// Status, CurrentStage and target approval fields. All methods operate on the
// in-memory graph; persisting the result atomically is the caller's job, under
// the per-document critical section the service holds.
type Engine struct {
	resolver Resolver
}

func NewEngine(resolver Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// Submit moves a draft into the approval chain: IN_PROGRESS, currentStage 1.
// Stages whose targets are all informational are satisfied immediately, so a
// document with no blocking targets at all lands directly on APPROVED.
func (e *Engine) Submit(doc *Document, actorID string) error {
	if doc.AuthorID != actorID {
		return fmt.Errorf("only the author may submit: %w", apperrors.ErrForbidden)
	}
	if doc.Status != StatusDraft {
		return fmt.Errorf("submit requires DRAFT, document is %s: %w", doc.Status, apperrors.ErrInvalidState)
	}

	now := time.Now()
	doc.Status = StatusInProgress
	doc.CurrentStage = 1
	doc.SubmittedAt = &now
	doc.UpdatedAt = now

	e.advance(doc, now)
	return nil
}

// Approve marks the target at (stageOrder, targetID) approved by the actor
// and advances the chain if the active stage became satisfied. The triggering
// approval and any advancement are one unit; the caller persists them together.
//
// A target that is already approved always yields ErrAlreadyApproved, even if
// the stage has since advanced or the document reached a terminal status: a
// caller racing its own duplicate must learn its approval was spent, not get a
// misleading state error.
func (e *Engine) Approve(ctx context.Context, doc *Document, actorID string, stageOrder int, targetID string) error {
	if stage := doc.StageAt(stageOrder); stage != nil {
		if target := stage.TargetByID(targetID); target != nil && target.IsApproved {
			return fmt.Errorf("target %s: %w", targetID, apperrors.ErrAlreadyApproved)
		}
	}

	target, err := e.authorize(ctx, doc, actorID, stageOrder, targetID)
	if err != nil {
		return err
	}

	now := time.Now()
	target.IsApproved = true
	target.ApprovedBy = actorID
	target.ApprovedAt = &now
	doc.UpdatedAt = now

	e.advance(doc, now)
	return nil
}

// Reject ends the document immediately: status REJECTED, currentStage frozen
// at the blocking stage. Remaining targets are never consulted again.
func (e *Engine) Reject(ctx context.Context, doc *Document, actorID string, stageOrder int, targetID string) error {
	if _, err := e.authorize(ctx, doc, actorID, stageOrder, targetID); err != nil {
		return err
	}

	now := time.Now()
	doc.Status = StatusRejected
	doc.UpdatedAt = now
	return nil
}

// authorize runs the shared approve/reject preconditions in order: document
// status, stage order, target existence, then actor membership in the
// target's resolved set.
func (e *Engine) authorize(ctx context.Context, doc *Document, actorID string, stageOrder int, targetID string) (*Target, error) {
	if doc.Status != StatusInProgress {
		return nil, fmt.Errorf("document is %s: %w", doc.Status, apperrors.ErrInvalidState)
	}
	if stageOrder != doc.CurrentStage {
		return nil, fmt.Errorf("stage %d is not active (current %d): %w", stageOrder, doc.CurrentStage, apperrors.ErrInvalidState)
	}

	stage := doc.StageAt(stageOrder)
	if stage == nil {
		return nil, fmt.Errorf("stage %d: %w", stageOrder, apperrors.ErrNotFound)
	}
	target := stage.TargetByID(targetID)
	if target == nil {
		return nil, fmt.Errorf("target %s: %w", targetID, apperrors.ErrNotFound)
	}

	actors, err := e.resolver.Resolve(ctx, target.Definition)
	if err != nil {
		// Fail closed: an unreachable directory never authorizes anyone.
		return nil, err
	}
	for _, id := range actors {
		if id == actorID {
			return target, nil
		}
	}
	return nil, fmt.Errorf("actor %s is not a resolved target: %w", actorID, apperrors.ErrForbidden)
}

// advance walks the chain forward while the active stage is satisfied,
// terminating on APPROVED after the last stage. Looping handles consecutive
// informational-only stages without special-casing callers.
func (e *Engine) advance(doc *Document, now time.Time) {
	last := doc.lastStageOrder()
	if last == 0 {
		// No stages at all: nothing can block.
		doc.Status = StatusApproved
		doc.ApprovedAt = &now
		return
	}

	for doc.Status == StatusInProgress {
		stage := doc.StageAt(doc.CurrentStage)
		if stage == nil || !stage.Satisfied() {
			return
		}
		if doc.CurrentStage == last {
			doc.Status = StatusApproved
			doc.ApprovedAt = &now
			return
		}
		doc.CurrentStage++
	}
}

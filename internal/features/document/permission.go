package document

import (
	"context"
)

// PermissionEvaluator answers (document, actor, action) questions without
// side effects. It never mutates approval state; services consult it before
// every viewing or mutating operation.
type PermissionEvaluator struct {
	resolver Resolver
}

func NewPermissionEvaluator(resolver Resolver) *PermissionEvaluator {
	return &PermissionEvaluator{resolver: resolver}
}

// CanView allows admins, the author, and anyone a stage or reference target
// resolves to. A target that fails to resolve is skipped (fail closed).
func (p *PermissionEvaluator) CanView(ctx context.Context, doc *Document, userID string, isAdmin bool) bool {
	if isAdmin || doc.AuthorID == userID {
		return true
	}

	for i := range doc.Stages {
		for j := range doc.Stages[i].Targets {
			if p.resolvesTo(ctx, &doc.Stages[i].Targets[j], userID) {
				return true
			}
		}
	}
	for i := range doc.ReferenceTargets {
		if p.resolvesTo(ctx, &doc.ReferenceTargets[i], userID) {
			return true
		}
	}
	return false
}

// CanEdit allows only the author. The DRAFT-only restriction is the engine's
// business, enforced by the service, not here.
func (p *PermissionEvaluator) CanEdit(doc *Document, userID string) bool {
	return doc.AuthorID == userID
}

// CanApprove reports whether the user resolves into some still-unapproved
// non-reference target of the stage at stageOrder.
func (p *PermissionEvaluator) CanApprove(ctx context.Context, doc *Document, userID string, stageOrder int) bool {
	stage := doc.StageAt(stageOrder)
	if stage == nil {
		return false
	}
	for i := range stage.Targets {
		t := &stage.Targets[i]
		if t.Definition.IsReference || t.IsApproved {
			continue
		}
		if p.resolvesTo(ctx, t, userID) {
			return true
		}
	}
	return false
}

func (p *PermissionEvaluator) resolvesTo(ctx context.Context, target *Target, userID string) bool {
	actors, err := p.resolver.Resolve(ctx, target.Definition)
	if err != nil {
		return false
	}
	for _, id := range actors {
		if id == userID {
			return true
		}
	}
	return false
}

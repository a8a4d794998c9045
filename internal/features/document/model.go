package document

import (
	"time"

	"go-docflow/internal/features/template"
)

type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusInProgress Status = "IN_PROGRESS"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
)

type ActivityType string

const (
	ActivityCreate  ActivityType = "CREATE"
	ActivityUpdate  ActivityType = "UPDATE"
	ActivitySubmit  ActivityType = "SUBMIT"
	ActivityApprove ActivityType = "APPROVE"
	ActivityReject  ActivityType = "REJECT"
)

// Target is a frozen copy of a template target definition bound to one
// document, plus its approval state. The definition never changes after
// instantiation; the approval fields are set at most once.
type Target struct {
	ID         string                      `bson:"id" json:"id"`
	Definition template.TargetDefinition   `bson:"definition" json:"definition"`
	IsApproved bool                        `bson:"is_approved" json:"is_approved"`
	ApprovedBy string                      `bson:"approved_by,omitempty" json:"approved_by,omitempty"`
	ApprovedAt *time.Time                  `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
}

// Stage is one frozen step of a document's approval chain.
type Stage struct {
	Order   int      `bson:"order" json:"order"`
	Name    string   `bson:"name" json:"name"`
	Targets []Target `bson:"targets" json:"targets"`
}

// Document is the engine's aggregate. The whole graph (stages owning targets)
// is embedded in one record; ownership is one-directional, back-navigation is
// a lookup by order/id. Once submitted, only the progression engine mutates
// Status, CurrentStage and target approval fields.
type Document struct {
	ID               string     `bson:"_id" json:"id"`
	TemplateID       string     `bson:"template_id" json:"template_id"`
	AuthorID         string     `bson:"author_id" json:"author_id"`
	Title            string     `bson:"title" json:"title"`
	Content          string     `bson:"content,omitempty" json:"content,omitempty"`
	Status           Status     `bson:"status" json:"status"`
	CurrentStage     int        `bson:"current_stage" json:"current_stage"` // 0 while DRAFT, 1..N while IN_PROGRESS
	Stages           []Stage    `bson:"stages" json:"stages"`
	ReferenceTargets []Target   `bson:"reference_targets,omitempty" json:"reference_targets,omitempty"`
	SubmittedAt      *time.Time `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	ApprovedAt       *time.Time `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	Version          int64      `bson:"version" json:"-"` // optimistic concurrency stamp
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at" json:"updated_at"`
}

// Activity is one append-only audit line. Never updated or deleted except by
// the cascade of an explicit document deletion.
type Activity struct {
	ID          string       `bson:"_id" json:"id"`
	DocumentID  string       `bson:"document_id" json:"document_id"`
	Type        ActivityType `bson:"type" json:"type"`
	ActorID     string       `bson:"actor_id" json:"actor_id"`
	Description string       `bson:"description" json:"description"`
	Reason      string       `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
}

// StageAt returns the stage with the given order, or nil.
func (d *Document) StageAt(order int) *Stage {
	for i := range d.Stages {
		if d.Stages[i].Order == order {
			return &d.Stages[i]
		}
	}
	return nil
}

// TargetByID returns the target with the given id within the stage, or nil.
func (s *Stage) TargetByID(id string) *Target {
	for i := range s.Targets {
		if s.Targets[i].ID == id {
			return &s.Targets[i]
		}
	}
	return nil
}

// Satisfied reports whether every non-reference target of the stage is
// approved. A stage with no non-reference targets is satisfied immediately.
func (s *Stage) Satisfied() bool {
	for _, t := range s.Targets {
		if t.Definition.IsReference {
			continue
		}
		if !t.IsApproved {
			return false
		}
	}
	return true
}

// lastStageOrder returns the highest stage order, or 0 for a stageless document.
func (d *Document) lastStageOrder() int {
	last := 0
	for _, s := range d.Stages {
		if s.Order > last {
			last = s.Order
		}
	}
	return last
}

package document

import (
	"time"

	"go-docflow/internal/features/template"

	"github.com/google/uuid"
)

// Instantiate snapshots a template's approval chain onto a new draft document.
// Every stage and target definition is copied verbatim with a fresh instance
// id and a cleared approval state, so later template edits cannot alter this
// document's chain. The returned graph is unsaved; persistence is the
// caller's responsibility.
func Instantiate(tpl *template.Template, authorID, title, content string) *Document {
	now := time.Now()

	stages := make([]Stage, 0, len(tpl.Stages))
	for _, def := range tpl.Stages {
		stages = append(stages, Stage{
			Order:   def.Order,
			Name:    def.Name,
			Targets: copyTargets(def.Targets),
		})
	}

	return &Document{
		ID:               uuid.NewString(),
		TemplateID:       tpl.ID.Hex(),
		AuthorID:         authorID,
		Title:            title,
		Content:          content,
		Status:           StatusDraft,
		CurrentStage:     0,
		Stages:           stages,
		ReferenceTargets: copyTargets(tpl.ReferenceTargets),
		Version:          0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func copyTargets(defs []template.TargetDefinition) []Target {
	targets := make([]Target, 0, len(defs))
	for _, def := range defs {
		targets = append(targets, Target{
			ID:         uuid.NewString(),
			Definition: def,
			IsApproved: false,
		})
	}
	return targets
}

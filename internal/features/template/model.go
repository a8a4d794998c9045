package template

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetKind selects how a target definition expands into acting users.
type TargetKind string

const (
	TargetKindUser              TargetKind = "USER"
	TargetKindOrganization      TargetKind = "ORGANIZATION"
	TargetKindOrgManagerAtLevel TargetKind = "ORGANIZATION_MANAGER_AT_LEVEL"
)

// TargetDefinition names a person or role that must act (or be informed) at a
// stage. Reference targets are informational only and never block progression.
type TargetDefinition struct {
	Kind           TargetKind `bson:"kind" json:"kind"`
	UserID         string     `bson:"user_id,omitempty" json:"user_id,omitempty"`                 // USER
	OrganizationID string     `bson:"organization_id,omitempty" json:"organization_id,omitempty"` // ORGANIZATION / manager kinds
	ManagerLevel   int        `bson:"manager_level,omitempty" json:"manager_level,omitempty"`     // 1 = direct manager
	IsReference    bool       `bson:"is_reference" json:"is_reference"`
}

// StageDefinition is one ordered step of a template's approval chain.
type StageDefinition struct {
	Order   int                `bson:"order" json:"order"` // 1-based, contiguous within a template
	Name    string             `bson:"name" json:"name"`
	Targets []TargetDefinition `bson:"targets" json:"targets"`
}

// Template is the reusable definition of a document's approval chain.
// Documents copy it at creation time, so editing a template never touches
// in-flight documents.
type Template struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Stages           []StageDefinition  `bson:"stages" json:"stages"`
	ReferenceTargets []TargetDefinition `bson:"reference_targets,omitempty" json:"reference_targets,omitempty"` // template-level informational recipients
	CreatedBy        string             `bson:"created_by" json:"created_by"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

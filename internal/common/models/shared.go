package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Username  string              `bson:"username" json:"username"`
	Password  string              `bson:"password" json:"-"`
	Email     string              `bson:"email" json:"email"`
	OrgID     *primitive.ObjectID `bson:"org_id,omitempty" json:"org_id,omitempty"`
	IsAdmin   bool                `bson:"is_admin" json:"is_admin"`
	Status    string              `bson:"status" json:"status"` // active, inactive, suspended
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// Organization is one node of the reporting hierarchy. LeaderIDs hold the
// user ids acting as managers of this organization; ParentID points one
// level up the chain.
type Organization struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name"`
	ParentID  *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	LeaderIDs []string            `bson:"leader_ids" json:"leader_ids"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
}

// Log is the record shape the async zap sink writes to the logs collection.
type Log struct {
	Message      string    `bson:"message" json:"message"`
	Level        string    `bson:"level" json:"level"`
	ActorID      string    `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	DocumentID   string    `bson:"document_id,omitempty" json:"document_id,omitempty"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	AppId        string    `bson:"app_id" json:"app_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMode controls whether the bot answers a user's messages itself or stays
// silent while a human operator handles the conversation.
type ChatMode string

const (
	ModeAutomated ChatMode = "automated"
	ModeHuman     ChatMode = "human"
)

// Valid reports whether m is one of the known chat modes.
func (m ChatMode) Valid() bool {
	return m == ModeAutomated || m == ModeHuman
}

// ChatState holds the per-user handoff state. At most one document exists per
// user, and a missing document is equivalent to ModeAutomated.
type ChatState struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID              string             `bson:"user_id" json:"user_id"` // LINE user ID
	Mode                ChatMode           `bson:"mode" json:"mode"`
	LastHumanActivityAt *time.Time         `bson:"last_human_activity_at,omitempty" json:"last_human_activity_at,omitempty"` // stamped on every switch to human mode
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time          `bson:"updated_at" json:"updated_at"`
}

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Note represents a single note owned by a user.
type Note struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Title     string        `bson:"title"`
	Content   string        `bson:"content"`
	UserID    bson.ObjectID `bson:"user_id"`
	CreatedAt time.Time     `bson:"created_at"`
	UpdatedAt time.Time     `bson:"updated_at"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxCommentTextLength = 300
	MaxPostTitleLength   = 100
	MaxPostBodyLength    = 2000
	MinPasswordLength    = 8
)

type User struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
}

// Post owns the ordering of its comments: Comments holds comment ids in
// creation order. Version is bumped on every save and is used to detect
// concurrent writers.
type Post struct {
	ID       primitive.ObjectID   `bson:"_id" json:"_id"`
	Title    string               `bson:"title" json:"title"`
	Body     string               `bson:"body" json:"body"`
	Author   primitive.ObjectID   `bson:"author" json:"author"`
	Date     time.Time            `bson:"date" json:"date"`
	Comments []primitive.ObjectID `bson:"comments" json:"comments"`
	Version  int64                `bson:"__v" json:"-"`
}

// Comment does not reference its post; the post holds the link.
type Comment struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Author primitive.ObjectID `bson:"author" json:"author"`
	Text   string             `bson:"text" json:"text"`
}

package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/models"
)

var (
	ErrConnectDB       = fmt.Errorf("unable to establish DB connection")
	ErrDBNotResponding = fmt.Errorf("DB not responding")

	ErrUserNotFound    = fmt.Errorf("user not found")
	ErrPostNotFound    = fmt.Errorf("post not found")
	ErrCommentNotFound = fmt.Errorf("comment not found")
	ErrEmailInUse      = fmt.Errorf("email already in use")
	ErrInvalidComment  = fmt.Errorf("comment requires author and text")
	ErrWriteConflict   = fmt.Errorf("post was modified concurrently")
)

type Users interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

type Posts interface {
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	Posts(ctx context.Context) ([]models.Post, error)
	PostByID(ctx context.Context, id primitive.ObjectID) (models.Post, error)
	PostsByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error)
	SearchPosts(ctx context.Context, keywords string) ([]models.Post, error)

	// SavePost replaces the stored post if its version still equals
	// post.Version and returns the post with the incremented version.
	// ErrWriteConflict is returned when another writer saved first.
	SavePost(ctx context.Context, post models.Post) (models.Post, error)
}

type Comments interface {
	CreateComment(ctx context.Context, author primitive.ObjectID, text string) (models.Comment, error)
	CommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id primitive.ObjectID) error
	CountComments(ctx context.Context) (int64, error)
}

// Storage is the entity store consumed by validators, services and handlers.
type Storage interface {
	Users
	Posts
	Comments
}

// OrderComments arranges comments in the order of ids, skipping ids with
// no matching comment.
func OrderComments(ids []primitive.ObjectID, comments []models.Comment) []models.Comment {
	byID := make(map[primitive.ObjectID]models.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	ordered := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

package memdb

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/models"
	"blog/pkg/storage"
)

// Store is an in-memory storage.Storage. Posts keep insertion order.
type Store struct {
	mu        sync.Mutex
	users     map[primitive.ObjectID]models.User
	posts     map[primitive.ObjectID]models.Post
	postOrder []primitive.ObjectID
	comments  map[primitive.ObjectID]models.Comment
}

func New() *Store {
	db := Store{
		users:    make(map[primitive.ObjectID]models.User),
		posts:    make(map[primitive.ObjectID]models.Post),
		comments: make(map[primitive.ObjectID]models.Comment),
	}

	return &db
}

func (db *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return models.User{}, storage.ErrEmailInUse
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	db.users[user.ID] = user

	return user, nil
}

func (db *Store) UserByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	user, ok := db.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return user, nil
}

func (db *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (db *Store) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Date.IsZero() {
		post.Date = time.Now().UTC()
	}
	post.Comments = cloneIDs(post.Comments)
	post.Version = 0

	db.posts[post.ID] = post
	db.postOrder = append(db.postOrder, post.ID)

	return copyPost(post), nil
}

func (db *Store) Posts(ctx context.Context) ([]models.Post, error) {
	return db.filterPosts(func(models.Post) bool { return true }), nil
}

func (db *Store) PostByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	post, ok := db.posts[id]
	if !ok {
		return models.Post{}, storage.ErrPostNotFound
	}

	return copyPost(post), nil
}

func (db *Store) PostsByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error) {
	return db.filterPosts(func(p models.Post) bool { return p.Author == author }), nil
}

// SearchPosts matches posts whose title or body contains any of the
// keywords, ignoring case.
func (db *Store) SearchPosts(ctx context.Context, keywords string) ([]models.Post, error) {
	terms := strings.Fields(strings.ToLower(keywords))
	if len(terms) == 0 {
		return []models.Post{}, nil
	}

	return db.filterPosts(func(p models.Post) bool {
		text := strings.ToLower(p.Title + " " + p.Body)
		for _, term := range terms {
			if strings.Contains(text, term) {
				return true
			}
		}
		return false
	}), nil
}

func (db *Store) SavePost(ctx context.Context, post models.Post) (models.Post, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored, ok := db.posts[post.ID]
	if !ok {
		return models.Post{}, storage.ErrPostNotFound
	}
	if stored.Version != post.Version {
		return models.Post{}, storage.ErrWriteConflict
	}

	post.Version++
	post.Comments = cloneIDs(post.Comments)
	db.posts[post.ID] = post

	return copyPost(post), nil
}

func (db *Store) CreateComment(ctx context.Context, author primitive.ObjectID, text string) (models.Comment, error) {
	if author.IsZero() || text == "" {
		return models.Comment{}, storage.ErrInvalidComment
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	c := models.Comment{ID: primitive.NewObjectID(), Author: author, Text: text}
	db.comments[c.ID] = c

	return c, nil
}

func (db *Store) CommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	comments := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		if c, ok := db.comments[id]; ok {
			comments = append(comments, c)
		}
	}

	return comments, nil
}

func (db *Store) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.comments[id]; !ok {
		return storage.ErrCommentNotFound
	}
	delete(db.comments, id)

	return nil
}

func (db *Store) CountComments(ctx context.Context) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	return int64(len(db.comments)), nil
}

func (db *Store) filterPosts(match func(models.Post) bool) []models.Post {
	db.mu.Lock()
	defer db.mu.Unlock()

	posts := make([]models.Post, 0, len(db.postOrder))
	for _, id := range db.postOrder {
		if p := db.posts[id]; match(p) {
			posts = append(posts, copyPost(p))
		}
	}

	return posts
}

func copyPost(p models.Post) models.Post {
	p.Comments = cloneIDs(p.Comments)
	return p
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	return slices.Clone(ids)
}

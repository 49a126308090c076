package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"blog/pkg/models"
	"blog/pkg/storage"
)

const (
	usersColl    = "users"
	postsColl    = "posts"
	commentsColl = "comments"
)

type Storage struct {
	client *mongo.Client
	dbName string
}

// New connects to Mongo and makes sure the collections and indexes the
// store relies on exist: a unique index on users.email and a text index
// over posts.title and posts.body.
func New(ctx context.Context, conf *Config) (*Storage, error) {
	client, err := mongo.Connect(ctx, conf.Options())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrConnectDB, err)
	}

	s := Storage{client: client, dbName: conf.DBName}
	for _, name := range []string{usersColl, postsColl, commentsColl} {
		if err := s.createCollection(ctx, name); err != nil {
			return nil, err
		}
	}
	if err := s.createIndexes(ctx); err != nil {
		return nil, err
	}

	return &s, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Storage) coll(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

func (s *Storage) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}

	_, err := s.coll(usersColl).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, storage.ErrEmailInUse
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *Storage) UserByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.coll(usersColl).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, storage.ErrUserNotFound
	}

	return user, err
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.coll(usersColl).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, storage.ErrUserNotFound
	}

	return user, err
}

func (s *Storage) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if post.Date.IsZero() {
		post.Date = time.Now()
	}
	// Mongo keeps millisecond precision.
	post.Date = post.Date.UTC().Truncate(time.Millisecond)
	if post.Comments == nil {
		post.Comments = []primitive.ObjectID{}
	}
	post.Version = 0

	_, err := s.coll(postsColl).InsertOne(ctx, post)
	if err != nil {
		return models.Post{}, err
	}

	return post, nil
}

func (s *Storage) Posts(ctx context.Context) ([]models.Post, error) {
	return s.findPosts(ctx, bson.M{})
}

func (s *Storage) PostByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var post models.Post
	err := s.coll(postsColl).FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Post{}, storage.ErrPostNotFound
		}
		return models.Post{}, err
	}

	return normalizePost(post), nil
}

func (s *Storage) PostsByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error) {
	return s.findPosts(ctx, bson.M{"author": author})
}

// SearchPosts runs a full-text query against the posts text index.
func (s *Storage) SearchPosts(ctx context.Context, keywords string) ([]models.Post, error) {
	if strings.TrimSpace(keywords) == "" {
		return []models.Post{}, nil
	}
	return s.findPosts(ctx, bson.M{"$text": bson.M{"$search": keywords}})
}

// SavePost replaces the post only if the stored version matches, so two
// writers that read the same version cannot both succeed.
func (s *Storage) SavePost(ctx context.Context, post models.Post) (models.Post, error) {
	filter := bson.M{"_id": post.ID, "__v": post.Version}

	next := post
	next.Version++
	if next.Comments == nil {
		next.Comments = []primitive.ObjectID{}
	}

	res, err := s.coll(postsColl).ReplaceOne(ctx, filter, next)
	if err != nil {
		return models.Post{}, err
	}
	if res.MatchedCount == 1 {
		return next, nil
	}

	cnt, err := s.coll(postsColl).CountDocuments(ctx, bson.M{"_id": post.ID})
	if err != nil {
		return models.Post{}, err
	}
	if cnt == 0 {
		return models.Post{}, storage.ErrPostNotFound
	}

	return models.Post{}, storage.ErrWriteConflict
}

func (s *Storage) CreateComment(ctx context.Context, author primitive.ObjectID, text string) (models.Comment, error) {
	if author.IsZero() || text == "" {
		return models.Comment{}, storage.ErrInvalidComment
	}

	comment := models.Comment{ID: primitive.NewObjectID(), Author: author, Text: text}
	_, err := s.coll(commentsColl).InsertOne(ctx, comment)
	if err != nil {
		return models.Comment{}, err
	}

	return comment, nil
}

func (s *Storage) CommentsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return []models.Comment{}, nil
	}

	cur, err := s.coll(commentsColl).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	comments := []models.Comment{}
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}

	return comments, nil
}

func (s *Storage) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll(commentsColl).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return storage.ErrCommentNotFound
	}

	return nil
}

func (s *Storage) CountComments(ctx context.Context) (int64, error) {
	return s.coll(commentsColl).CountDocuments(ctx, bson.M{})
}

func (s *Storage) findPosts(ctx context.Context, filter bson.M) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := s.coll(postsColl).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	posts := []models.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i] = normalizePost(posts[i])
	}

	return posts, nil
}

func normalizePost(p models.Post) models.Post {
	if p.Comments == nil {
		p.Comments = []primitive.ObjectID{}
	}
	p.Date = p.Date.UTC()
	return p
}

func (s *Storage) createIndexes(ctx context.Context) error {
	_, err := s.coll(usersColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create users email index: %w", err)
	}

	_, err = s.coll(postsColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "title", Value: "text"}, {Key: "body", Value: "text"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create posts text index: %w", err)
	}

	return nil
}

// createCollection creates a collection with the given name in the database if it doesn't already exist.
func (s *Storage) createCollection(ctx context.Context, collName string) error {
	collExists, err := collectionExists(ctx, s.client.Database(s.dbName), collName)
	if err != nil {
		return err
	}

	if !collExists {
		err := s.client.Database(s.dbName).CreateCollection(ctx, collName)
		if err != nil {
			return err
		}
	}

	return nil
}

// collectionExists checks if a collection with the given name exists in the database.
func collectionExists(ctx context.Context, db *mongo.Database, collName string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return false, fmt.Errorf("failed to list collection names: %w", err)
	}

	for _, name := range names {
		if name == collName {
			return true, nil
		}
	}

	return false, nil
}

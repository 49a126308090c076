package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/models"
	"blog/pkg/storage"
)

type NewPost struct {
	Title  string
	Body   string
	Author primitive.ObjectID
}

// PostWithComments is a post whose comment ids were replaced by the comments.
type PostWithComments struct {
	models.Post
	Comments []models.Comment `json:"comments"`
}

type PostService struct {
	store storage.Storage
}

func NewPostService(store storage.Storage) *PostService {
	return &PostService{store: store}
}

func (s *PostService) Create(ctx context.Context, np NewPost) (models.Post, error) {
	return s.store.CreatePost(ctx, models.Post{
		Title:  np.Title,
		Body:   np.Body,
		Author: np.Author,
	})
}

func (s *PostService) All(ctx context.Context) ([]models.Post, error) {
	return s.store.Posts(ctx)
}

func (s *PostService) ByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Post, error) {
	return s.store.PostsByAuthor(ctx, author)
}

func (s *PostService) Search(ctx context.Context, keywords string) ([]models.Post, error) {
	return s.store.SearchPosts(ctx, keywords)
}

// ByID returns the post with its comments in the order they were added.
func (s *PostService) ByID(ctx context.Context, id primitive.ObjectID) (PostWithComments, error) {
	post, err := s.store.PostByID(ctx, id)
	if err != nil {
		return PostWithComments{}, err
	}

	comments, err := s.store.CommentsByIDs(ctx, post.Comments)
	if err != nil {
		return PostWithComments{}, fmt.Errorf("failed to load comments of post %s: %w", id.Hex(), err)
	}

	return PostWithComments{Post: post, Comments: storage.OrderComments(post.Comments, comments)}, nil
}

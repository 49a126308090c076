package memdb

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/models"
	"blog/pkg/storage"
)

func TestStore_CreateUser(t *testing.T) {
	db := New()
	ctx := context.Background()

	user, err := db.CreateUser(ctx, models.User{Email: "john@example.com", Password: "hash"})
	if err != nil {
		t.Fatalf("unexpected error creating user: %v", err)
	}
	if user.ID.IsZero() {
		t.Errorf("want generated user ID, got zero value")
	}

	_, err = db.CreateUser(ctx, models.User{Email: "JOHN@example.com"})
	if !errors.Is(err, storage.ErrEmailInUse) {
		t.Errorf("want error %v, got %v", storage.ErrEmailInUse, err)
	}

	got, err := db.UserByEmail(ctx, "john@example.com")
	if err != nil {
		t.Fatalf("unexpected error retrieving user: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("want user ID %v, got %v", user.ID, got.ID)
	}

	_, err = db.UserByID(ctx, primitive.NewObjectID())
	if !errors.Is(err, storage.ErrUserNotFound) {
		t.Errorf("want error %v, got %v", storage.ErrUserNotFound, err)
	}
}

func TestStore_SavePost(t *testing.T) {
	db := New()
	ctx := context.Background()

	post, err := db.CreatePost(ctx, models.Post{Title: "Title", Body: "Body", Author: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("unexpected error creating post: %v", err)
	}
	if post.Comments == nil || len(post.Comments) != 0 {
		t.Errorf("want empty comments, got %v", post.Comments)
	}
	if post.Date.IsZero() {
		t.Errorf("post date has zero time value")
	}

	commentID := primitive.NewObjectID()
	first := post
	first.Comments = append(first.Comments, commentID)
	saved, err := db.SavePost(ctx, first)
	if err != nil {
		t.Fatalf("unexpected error saving post: %v", err)
	}
	if saved.Version != post.Version+1 {
		t.Errorf("want version %d, got %d", post.Version+1, saved.Version)
	}

	// A writer holding the old version must not overwrite the first save.
	stale := post
	stale.Comments = append(stale.Comments, primitive.NewObjectID())
	_, err = db.SavePost(ctx, stale)
	if !errors.Is(err, storage.ErrWriteConflict) {
		t.Errorf("want error %v, got %v", storage.ErrWriteConflict, err)
	}

	got, err := db.PostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("unexpected error retrieving post: %v", err)
	}
	want := []primitive.ObjectID{commentID}
	if !reflect.DeepEqual(got.Comments, want) {
		t.Errorf("want comments %v, got %v", want, got.Comments)
	}

	_, err = db.SavePost(ctx, models.Post{ID: primitive.NewObjectID()})
	if !errors.Is(err, storage.ErrPostNotFound) {
		t.Errorf("want error %v, got %v", storage.ErrPostNotFound, err)
	}
}

func TestStore_PostByIDReturnsCopy(t *testing.T) {
	db := New()
	ctx := context.Background()

	post, err := db.CreatePost(ctx, models.Post{Title: "Title", Author: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("unexpected error creating post: %v", err)
	}

	got, _ := db.PostByID(ctx, post.ID)
	got.Comments = append(got.Comments, primitive.NewObjectID())

	again, _ := db.PostByID(ctx, post.ID)
	if len(again.Comments) != 0 {
		t.Errorf("want stored comments untouched, got %v", again.Comments)
	}
}

func TestStore_Comments(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := primitive.NewObjectID()

	_, err := db.CreateComment(ctx, author, "")
	if !errors.Is(err, storage.ErrInvalidComment) {
		t.Errorf("want error %v, got %v", storage.ErrInvalidComment, err)
	}
	_, err = db.CreateComment(ctx, primitive.NilObjectID, "text")
	if !errors.Is(err, storage.ErrInvalidComment) {
		t.Errorf("want error %v, got %v", storage.ErrInvalidComment, err)
	}

	first, err := db.CreateComment(ctx, author, "first")
	if err != nil {
		t.Fatalf("unexpected error creating comment: %v", err)
	}
	second, err := db.CreateComment(ctx, author, "second")
	if err != nil {
		t.Fatalf("unexpected error creating comment: %v", err)
	}

	n, _ := db.CountComments(ctx)
	if n != 2 {
		t.Errorf("want 2 comments, got %d", n)
	}

	ids := []primitive.ObjectID{second.ID, first.ID}
	found, err := db.CommentsByIDs(ctx, ids)
	if err != nil {
		t.Fatalf("unexpected error retrieving comments: %v", err)
	}
	ordered := storage.OrderComments(ids, found)
	want := []models.Comment{second, first}
	if !reflect.DeepEqual(ordered, want) {
		t.Errorf("want comments\n%+v\n\ngot comments\n%+v\n", want, ordered)
	}

	if err := db.DeleteComment(ctx, first.ID); err != nil {
		t.Errorf("unexpected error deleting comment: %v", err)
	}
	if err := db.DeleteComment(ctx, first.ID); !errors.Is(err, storage.ErrCommentNotFound) {
		t.Errorf("want error %v, got %v", storage.ErrCommentNotFound, err)
	}
}

func TestStore_SearchPosts(t *testing.T) {
	db := New()
	ctx := context.Background()
	author := primitive.NewObjectID()

	testPosts := []models.Post{
		{Title: "Go concurrency", Body: "Channels and goroutines", Author: author},
		{Title: "Cooking", Body: "Pasta with tomatoes", Author: author},
		{Title: "Gardening", Body: "Growing TOMATOES at home", Author: primitive.NewObjectID()},
	}
	for _, p := range testPosts {
		if _, err := db.CreatePost(ctx, p); err != nil {
			t.Fatalf("unexpected error creating post: %v", err)
		}
	}

	tests := []struct {
		name       string
		keywords   string
		wantTitles []string
	}{
		{name: "single keyword", keywords: "goroutines", wantTitles: []string{"Go concurrency"}},
		{name: "case insensitive", keywords: "tomatoes", wantTitles: []string{"Cooking", "Gardening"}},
		{name: "any keyword", keywords: "pasta channels", wantTitles: []string{"Go concurrency", "Cooking"}},
		{name: "no match", keywords: "kafka", wantTitles: []string{}},
		{name: "blank", keywords: "   ", wantTitles: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := db.SearchPosts(ctx, tt.keywords)
			if err != nil {
				t.Fatalf("SearchPosts returned error: %v", err)
			}
			gotTitles := []string{}
			for _, p := range posts {
				gotTitles = append(gotTitles, p.Title)
			}
			if !reflect.DeepEqual(gotTitles, tt.wantTitles) {
				t.Errorf("want titles %v, got %v", tt.wantTitles, gotTitles)
			}
		})
	}

	byAuthor, err := db.PostsByAuthor(ctx, author)
	if err != nil {
		t.Fatalf("PostsByAuthor returned error: %v", err)
	}
	if len(byAuthor) != 2 {
		t.Errorf("want 2 posts by author, got %d", len(byAuthor))
	}
}

package validation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/errcodes"
	"blog/pkg/models"
	"blog/pkg/storage"
	"blog/pkg/storage/memdb"
)

var errStore = errors.New("store unavailable")

// brokenUsers fails every lookup.
type brokenUsers struct{ storage.Storage }

func (brokenUsers) UserByID(context.Context, primitive.ObjectID) (models.User, error) {
	return models.User{}, errStore
}

type wordChecker string

func (w wordChecker) Banned(_ context.Context, text string) (bool, error) {
	return strings.Contains(text, string(w)), nil
}

func fixtures(t *testing.T) (*memdb.Store, models.User, models.Post) {
	t.Helper()
	ctx := context.Background()
	db := memdb.New()

	user, err := db.CreateUser(ctx, models.User{Email: "u@example.com"})
	if err != nil {
		t.Fatalf("unexpected error creating user: %v", err)
	}
	post, err := db.CreatePost(ctx, models.Post{Title: "T", Body: "B", Author: user.ID})
	if err != nil {
		t.Fatalf("unexpected error creating post: %v", err)
	}
	return db, user, post
}

func codes(errs Errors) map[string]errcodes.Code {
	got := make(map[string]errcodes.Code, len(errs))
	for _, fe := range errs {
		got[fe.Param] = fe.Code
	}
	return got
}

func TestPayload_Lookup(t *testing.T) {
	p := Payload{"comment": map[string]any{"text": "hi"}, "postId": nil}

	if v, ok := p.Lookup("comment.text"); !ok || v != "hi" {
		t.Errorf("want (hi, true), got (%v, %v)", v, ok)
	}
	if _, ok := p.Lookup("postId"); !ok {
		t.Errorf("want null field reported as present")
	}
	if _, ok := p.Lookup("comment.author"); ok {
		t.Errorf("want missing nested field reported as absent")
	}
	if _, ok := p.Lookup("postId.inner"); ok {
		t.Errorf("want path through non-object reported as absent")
	}
}

func TestCommentRules(t *testing.T) {
	db, user, post := fixtures(t)
	author, postID := user.ID.Hex(), post.ID.Hex()

	tests := []struct {
		name    string
		payload Payload
		want    map[string]errcodes.Code
	}{
		{
			name:    "empty body",
			payload: Payload{},
			want: map[string]errcodes.Code{
				"comment":        errcodes.CommentRequired,
				"comment.author": errcodes.PostAuthorInvalid,
				"comment.text":   errcodes.CommentTextRequired,
				"postId":         errcodes.PostIDInvalid,
			},
		},
		{
			name: "valid",
			payload: Payload{
				"comment": map[string]any{"author": author, "text": "hello"},
				"postId":  postID,
			},
			want: map[string]errcodes.Code{},
		},
		{
			name: "text too long",
			payload: Payload{
				"comment": map[string]any{"author": author, "text": strings.Repeat("a", models.MaxCommentTextLength+1)},
				"postId":  postID,
			},
			want: map[string]errcodes.Code{"comment.text": errcodes.MaxLength},
		},
		{
			name: "text at limit counts runes",
			payload: Payload{
				"comment": map[string]any{"author": author, "text": strings.Repeat("é", models.MaxCommentTextLength)},
				"postId":  postID,
			},
			want: map[string]errcodes.Code{},
		},
		{
			name: "empty text",
			payload: Payload{
				"comment": map[string]any{"author": author, "text": ""},
				"postId":  postID,
			},
			want: map[string]errcodes.Code{"comment.text": errcodes.CommentTextRequired},
		},
		{
			name: "whitespace-only text",
			payload: Payload{
				"comment": map[string]any{"author": author, "text": " \t\n "},
				"postId":  postID,
			},
			want: map[string]errcodes.Code{"comment.text": errcodes.CommentTextRequired},
		},
		{
			name: "uppercase ids of existing entities",
			payload: Payload{
				"comment": map[string]any{"author": strings.ToUpper(author), "text": "hello"},
				"postId":  strings.ToUpper(postID),
			},
			want: map[string]errcodes.Code{},
		},
		{
			name: "text not a string",
			payload: Payload{
				"comment": map[string]any{"author": author, "text": 42.0},
				"postId":  postID,
			},
			want: map[string]errcodes.Code{"comment.text": errcodes.CommentTextRequired},
		},
		{
			name: "unknown author and post",
			payload: Payload{
				"comment": map[string]any{"author": primitive.NewObjectID().Hex(), "text": "hello"},
				"postId":  primitive.NewObjectID().Hex(),
			},
			want: map[string]errcodes.Code{
				"comment.author": errcodes.UserNotExists,
				"postId":         errcodes.PostNotExists,
			},
		},
		{
			name: "malformed ids",
			payload: Payload{
				"comment": map[string]any{"author": "nope", "text": "hello"},
				"postId":  strings.ToUpper(postID) + "0",
			},
			want: map[string]errcodes.Code{
				"comment.author": errcodes.PostAuthorInvalid,
				"postId":         errcodes.PostIDInvalid,
			},
		},
		{
			name:    "comment not an object",
			payload: Payload{"comment": "hello", "postId": postID},
			want: map[string]errcodes.Code{
				"comment":        errcodes.CommentRequired,
				"comment.author": errcodes.PostAuthorInvalid,
				"comment.text":   errcodes.CommentTextRequired,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := Run(context.Background(), tt.payload, CommentRules(db, nil)...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := codes(errs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("want errors %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCommentRules_Order(t *testing.T) {
	db := memdb.New()

	errs, err := Run(context.Background(), Payload{}, CommentRules(db, nil)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, fe := range errs {
		got = append(got, fe.Param)
		if fe.Location != Body {
			t.Errorf("want location %q for %s, got %q", Body, fe.Param, fe.Location)
		}
	}
	want := []string{"comment", "comment.author", "comment.text", "postId"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want params %v, got %v", want, got)
	}
}

func TestCommentRules_MaxLengthMessage(t *testing.T) {
	db, user, post := fixtures(t)
	p := Payload{
		"comment": map[string]any{"author": user.ID.Hex(), "text": strings.Repeat("a", 301)},
		"postId":  post.ID.Hex(),
	}

	errs, err := Run(context.Background(), p, CommentRules(db, nil)...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Msg, "300") {
		t.Errorf("want message mentioning 300, got %q", errs[0].Msg)
	}
}

func TestCommentRules_Banned(t *testing.T) {
	db, user, post := fixtures(t)
	p := Payload{
		"comment": map[string]any{"author": user.ID.Hex(), "text": "buy cheap pills"},
		"postId":  post.ID.Hex(),
	}

	errs, err := Run(context.Background(), p, CommentRules(db, wordChecker("pills"))...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := codes(errs); got["comment.text"] != errcodes.CommentTextBanned {
		t.Errorf("want %s on comment.text, got %v", errcodes.CommentTextBanned, got)
	}
}

func TestCommentRules_StoreFailure(t *testing.T) {
	db, user, post := fixtures(t)
	p := Payload{
		"comment": map[string]any{"author": user.ID.Hex(), "text": "hello"},
		"postId":  post.ID.Hex(),
	}

	_, err := Run(context.Background(), p, CommentRules(brokenUsers{db}, nil)...)
	if !errors.Is(err, errStore) {
		t.Errorf("want error %v, got %v", errStore, err)
	}
}

func TestPostRules(t *testing.T) {
	db, user, _ := fixtures(t)
	other, _ := db.CreateUser(context.Background(), models.User{Email: "other@example.com"})

	tests := []struct {
		name    string
		payload Payload
		want    map[string]errcodes.Code
	}{
		{
			name:    "valid",
			payload: Payload{"title": "Title", "body": "Body", "author": user.ID.Hex()},
			want:    map[string]errcodes.Code{},
		},
		{
			name:    "empty",
			payload: Payload{},
			want: map[string]errcodes.Code{
				"title":  errcodes.PostTitleInvalid,
				"body":   errcodes.PostBodyInvalid,
				"author": errcodes.PostAuthorInvalid,
			},
		},
		{
			name: "too long",
			payload: Payload{
				"title":  strings.Repeat("t", models.MaxPostTitleLength+1),
				"body":   strings.Repeat("b", models.MaxPostBodyLength+1),
				"author": user.ID.Hex(),
			},
			want: map[string]errcodes.Code{
				"title": errcodes.PostTitleInvalidLength,
				"body":  errcodes.PostBodyInvalidLength,
			},
		},
		{
			name:    "author is not the caller",
			payload: Payload{"title": "Title", "body": "Body", "author": other.ID.Hex()},
			want:    map[string]errcodes.Code{"author": errcodes.InvalidUser},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := Run(context.Background(), tt.payload, PostRules(db, user.ID)...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := codes(errs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("want errors %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRegisterRules(t *testing.T) {
	db, _, _ := fixtures(t)

	tests := []struct {
		name    string
		payload Payload
		want    map[string]errcodes.Code
	}{
		{
			name:    "valid",
			payload: Payload{"email": "new@example.com", "password": "12345678"},
			want:    map[string]errcodes.Code{},
		},
		{
			name:    "taken email ignores case",
			payload: Payload{"email": "U@example.com", "password": "12345678"},
			want:    map[string]errcodes.Code{"email": errcodes.EmailAlreadyInUse},
		},
		{
			name:    "bad email and short password",
			payload: Payload{"email": "not-an-email", "password": "123"},
			want: map[string]errcodes.Code{
				"email":    errcodes.EmailNotValid,
				"password": errcodes.PasswordInvalidLength,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, err := Run(context.Background(), tt.payload, RegisterRules(db)...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := codes(errs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("want errors %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParamAndQueryRules(t *testing.T) {
	ctx := context.Background()

	errs, _ := Run(ctx, Payload{"id": "123"}, IDParamRules("id")...)
	if len(errs) != 1 || errs[0].Code != errcodes.InvalidID || errs[0].Location != Params {
		t.Errorf("want one %s error in params, got %v", errcodes.InvalidID, errs)
	}

	errs, _ = Run(ctx, Payload{"id": primitive.NewObjectID().Hex()}, IDParamRules("id")...)
	if len(errs) != 0 {
		t.Errorf("want no errors, got %v", errs)
	}

	errs, _ = Run(ctx, Payload{"id": strings.ToUpper(primitive.NewObjectID().Hex())}, IDParamRules("id")...)
	if len(errs) != 0 {
		t.Errorf("want uppercase id accepted, got %v", errs)
	}

	errs, _ = Run(ctx, Payload{"id": "0x" + strings.Repeat("a", 22)}, IDParamRules("id")...)
	if len(errs) != 1 || errs[0].Code != errcodes.InvalidID {
		t.Errorf("want one %s error for 0x-prefixed hex, got %v", errcodes.InvalidID, errs)
	}

	errs, _ = Run(ctx, Payload{}, KeywordsRules()...)
	if got := codes(errs); got["keywords"] != errcodes.KeywordsNotExists {
		t.Errorf("want %s, got %v", errcodes.KeywordsNotExists, got)
	}

	errs, _ = Run(ctx, Payload{"keywords": "  "}, KeywordsRules()...)
	if got := codes(errs); got["keywords"] != errcodes.KeywordsIsEmpty {
		t.Errorf("want %s, got %v", errcodes.KeywordsIsEmpty, got)
	}
}

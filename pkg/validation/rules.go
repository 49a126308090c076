package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/errcodes"
	"blog/pkg/models"
	"blog/pkg/storage"
)

// TextChecker decides whether a text contains forbidden content.
type TextChecker interface {
	Banned(ctx context.Context, text string) (bool, error)
}

// CommentRules returns the chains for POST /comments/add. The existence
// checks only run after the identifier format has been accepted. checker
// may be nil.
func CommentRules(store storage.Storage, checker TextChecker) []*Chain {
	text := Field("comment.text").
		Exists(errcodes.CommentTextRequired).
		IsString(errcodes.CommentTextRequired).
		NotEmpty(errcodes.CommentTextRequired).
		Tag(fmt.Sprintf("max=%d", models.MaxCommentTextLength), errcodes.MaxLength, models.MaxCommentTextLength)
	if checker != nil {
		text.Custom(errcodes.CommentTextBanned, NotBanned(checker))
	}

	return []*Chain{
		Field("comment").
			Exists(errcodes.CommentRequired).
			IsObject(errcodes.CommentRequired),
		Field("comment.author").
			Tag("objectid", errcodes.PostAuthorInvalid).
			Custom(errcodes.UserNotExists, UserExists(store)),
		text,
		Field("postId").
			Tag("objectid", errcodes.PostIDInvalid).
			Custom(errcodes.PostNotExists, PostExists(store)),
	}
}

// PostRules returns the chains for POST /posts. The author has to be the
// authenticated caller.
func PostRules(users storage.Users, caller primitive.ObjectID) []*Chain {
	return []*Chain{
		Field("title").
			Exists(errcodes.PostTitleInvalid).
			NotEmpty(errcodes.PostTitleInvalid).
			Tag(fmt.Sprintf("max=%d", models.MaxPostTitleLength), errcodes.PostTitleInvalidLength, models.MaxPostTitleLength),
		Field("body").
			Exists(errcodes.PostBodyInvalid).
			NotEmpty(errcodes.PostBodyInvalid).
			Tag(fmt.Sprintf("max=%d", models.MaxPostBodyLength), errcodes.PostBodyInvalidLength, models.MaxPostBodyLength),
		Field("author").
			Tag("objectid", errcodes.PostAuthorInvalid).
			Custom(errcodes.UserNotExists, UserExists(users)).
			Custom(errcodes.InvalidUser, SameID(caller)),
	}
}

// RegisterRules returns the chains for POST /users.
func RegisterRules(users storage.Users) []*Chain {
	return []*Chain{
		Field("email").
			Tag("required,email", errcodes.EmailNotValid).
			Custom(errcodes.EmailAlreadyInUse, EmailAvailable(users)),
		Field("password").
			Tag(fmt.Sprintf("min=%d", models.MinPasswordLength), errcodes.PasswordInvalidLength, models.MinPasswordLength),
	}
}

// IDParamRules validates a route variable holding an identifier.
func IDParamRules(name string) []*Chain {
	return []*Chain{
		Param(name).Tag("objectid", errcodes.InvalidID),
	}
}

func KeywordsRules() []*Chain {
	return []*Chain{
		QueryParam("keywords").
			Exists(errcodes.KeywordsNotExists).
			NotEmpty(errcodes.KeywordsIsEmpty),
	}
}

// UserExists passes when value is the id of a stored user.
func UserExists(users storage.Users) CheckFunc {
	return func(ctx context.Context, value any) (bool, error) {
		id, err := objectID(value)
		if err != nil {
			return false, nil
		}
		_, err = users.UserByID(ctx, id)
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, nil
		}
		return err == nil, err
	}
}

// PostExists passes when value is the id of a stored post.
func PostExists(posts storage.Posts) CheckFunc {
	return func(ctx context.Context, value any) (bool, error) {
		id, err := objectID(value)
		if err != nil {
			return false, nil
		}
		_, err = posts.PostByID(ctx, id)
		if errors.Is(err, storage.ErrPostNotFound) {
			return false, nil
		}
		return err == nil, err
	}
}

func EmailAvailable(users storage.Users) CheckFunc {
	return func(ctx context.Context, value any) (bool, error) {
		email, _ := value.(string)
		_, err := users.UserByEmail(ctx, strings.ToLower(email))
		if errors.Is(err, storage.ErrUserNotFound) {
			return true, nil
		}
		return false, err
	}
}

// SameID passes when value is the hex form of id.
func SameID(id primitive.ObjectID) CheckFunc {
	return func(_ context.Context, value any) (bool, error) {
		got, err := objectID(value)
		return err == nil && got == id, nil
	}
}

func NotBanned(checker TextChecker) CheckFunc {
	return func(ctx context.Context, value any) (bool, error) {
		text, _ := value.(string)
		banned, err := checker.Banned(ctx, text)
		if err != nil {
			return false, err
		}
		return !banned, nil
	}
}

func objectID(value any) (primitive.ObjectID, error) {
	s, ok := value.(string)
	if !ok {
		return primitive.NilObjectID, primitive.ErrInvalidHex
	}
	return primitive.ObjectIDFromHex(s)
}

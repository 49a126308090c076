package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/models"
	"blog/pkg/storage"
)

// ErrCommentNotLinked is returned when the comment was written but could not
// be appended to its post.
var ErrCommentNotLinked = fmt.Errorf("comment not linked to post")

// maxLinkAttempts bounds the read-append-save loop when other writers keep
// updating the same post.
const maxLinkAttempts = 3

type NewComment struct {
	Author primitive.ObjectID
	Text   string
	PostID primitive.ObjectID
}

type CommentService struct {
	store storage.Storage
}

func NewCommentService(store storage.Storage) *CommentService {
	return &CommentService{store: store}
}

// Add creates the comment and appends its id to the post's comment list.
//
// When linking fails for a definite reason (the post is gone or the post kept
// changing under us) the comment is deleted again. Otherwise the outcome of
// the save is unknown, so the comment is kept: a comment without a post is
// harmless, a post pointing to a missing comment is not.
func (s *CommentService) Add(ctx context.Context, nc NewComment) (models.Comment, error) {
	comment, err := s.store.CreateComment(ctx, nc.Author, nc.Text)
	if err != nil {
		return models.Comment{}, fmt.Errorf("failed to create comment: %w", err)
	}

	err = s.link(ctx, nc.PostID, comment.ID)
	if err == nil {
		return comment, nil
	}

	if errors.Is(err, storage.ErrPostNotFound) || errors.Is(err, storage.ErrWriteConflict) {
		if delErr := s.store.DeleteComment(ctx, comment.ID); delErr != nil {
			log.Errorf("[CommentService] unable to remove unlinked comment %s: %v", comment.ID.Hex(), delErr)
		} else {
			log.Warnf("[CommentService] removed comment %s: post %s not updated: %v", comment.ID.Hex(), nc.PostID.Hex(), err)
		}
	} else {
		log.Errorf("[CommentService] comment %s left without post %s: %v", comment.ID.Hex(), nc.PostID.Hex(), err)
	}

	return models.Comment{}, fmt.Errorf("%w: comment %s, post %s: %w", ErrCommentNotLinked, comment.ID.Hex(), nc.PostID.Hex(), err)
}

func (s *CommentService) link(ctx context.Context, postID, commentID primitive.ObjectID) error {
	var err error
	for attempt := 1; attempt <= maxLinkAttempts; attempt++ {
		var post models.Post
		post, err = s.store.PostByID(ctx, postID)
		if err != nil {
			return err
		}

		post.Comments = append(post.Comments, commentID)
		_, err = s.store.SavePost(ctx, post)
		if !errors.Is(err, storage.ErrWriteConflict) {
			return err
		}
		log.Debugf("[CommentService] write conflict on post %s, attempt %d", postID.Hex(), attempt)
	}

	return err
}

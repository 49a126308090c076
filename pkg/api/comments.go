package api

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/errcodes"
	"blog/pkg/service"
	"blog/pkg/validation"
)

func (api *API) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())
	sID := shorten(reqID)

	payload, err := decodePayload(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		log.Debugf("[createCommentHandler][%s] failed to decode request body: %v", sID, err)
		return
	}

	errs, err := validation.Run(r.Context(), payload, validation.CommentRules(api.db, api.checker)...)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[createCommentHandler][%s] validation could not run: %v", sID, err)
		return
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		log.Debugf("[createCommentHandler][%s] %v", sID, errs)
		return
	}

	nc := newComment(payload)
	comment, err := api.svc.Comments.Add(r.Context(), nc)
	if errors.Is(err, service.ErrCommentNotLinked) {
		writeCode(w, http.StatusInternalServerError, errcodes.CommentNotLinked)
		log.Errorf("[createCommentHandler][%s] %v", sID, err)
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[createCommentHandler][%s] Add() returned error: %v", sID, err)
		return
	}

	writeJSON(w, http.StatusOK, comment)
	log.Debugf("[createCommentHandler][%s] comment %s added to post %s", sID, comment.ID.Hex(), nc.PostID.Hex())
}

// newComment reads a payload that already passed validation.CommentRules.
func newComment(p validation.Payload) service.NewComment {
	author, _ := p.Lookup("comment.author")
	text, _ := p.Lookup("comment.text")
	postID, _ := p.Lookup("postId")

	var nc service.NewComment
	nc.Author, _ = primitive.ObjectIDFromHex(author.(string))
	nc.Text = text.(string)
	nc.PostID, _ = primitive.ObjectIDFromHex(postID.(string))

	return nc
}

package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/errcodes"
	"blog/pkg/service"
	"blog/pkg/storage"
	"blog/pkg/validation"
)

func (api *API) createPostHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))
	caller, _ := GetUserID(r.Context())

	payload, err := decodePayload(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		log.Debugf("[createPostHandler][%s] failed to decode request body: %v", sID, err)
		return
	}

	errs, err := validation.Run(r.Context(), payload, validation.PostRules(api.db, caller)...)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[createPostHandler][%s] validation could not run: %v", sID, err)
		return
	}
	if len(errs) > 0 {
		writeValidation(w, errs)
		log.Debugf("[createPostHandler][%s] %v", sID, errs)
		return
	}

	title, _ := payload.Lookup("title")
	body, _ := payload.Lookup("body")
	post, err := api.svc.Posts.Create(r.Context(), service.NewPost{
		Title:  title.(string),
		Body:   body.(string),
		Author: caller,
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[createPostHandler][%s] Create() returned error: %v", sID, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (api *API) postsHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	posts, err := api.svc.Posts.All(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[postsHandler][%s] All() returned error: %v", sID, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (api *API) searchPostsHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	payload := validation.Payload{}
	if q := r.URL.Query(); q.Has("keywords") {
		payload["keywords"] = q.Get("keywords")
	}

	errs, _ := validation.Run(r.Context(), payload, validation.KeywordsRules()...)
	if len(errs) > 0 {
		writeValidation(w, errs)
		log.Debugf("[searchPostsHandler][%s] %v", sID, errs)
		return
	}

	posts, err := api.svc.Posts.Search(r.Context(), payload["keywords"].(string))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[searchPostsHandler][%s] Search() returned error: %v", sID, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

func (api *API) postHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	id, ok := api.idParam(w, r, "postHandler")
	if !ok {
		return
	}

	post, err := api.svc.Posts.ByID(r.Context(), id)
	if errors.Is(err, storage.ErrPostNotFound) {
		writeMessage(w, http.StatusNotFound, errcodes.PostNotExists.Message())
		log.Debugf("[postHandler][%s] post %s not found", sID, id.Hex())
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[postHandler][%s] ByID() returned error: %v", sID, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

func (api *API) postsByAuthorHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	id, ok := api.idParam(w, r, "postsByAuthorHandler")
	if !ok {
		return
	}

	posts, err := api.svc.Posts.ByAuthor(r.Context(), id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
		log.Errorf("[postsByAuthorHandler][%s] ByAuthor() returned error: %v", sID, err)
		return
	}

	writeJSON(w, http.StatusOK, posts)
}

// idParam validates the {id} route variable and writes the 422 response
// itself when it is malformed.
func (api *API) idParam(w http.ResponseWriter, r *http.Request, handler string) (primitive.ObjectID, bool) {
	payload := validation.Payload{"id": mux.Vars(r)["id"]}

	errs, _ := validation.Run(r.Context(), payload, validation.IDParamRules("id")...)
	if len(errs) > 0 {
		writeValidation(w, errs)
		log.Debugf("[%s][%s] %v", handler, shorten(GetRequestID(r.Context())), errs)
		return primitive.NilObjectID, false
	}

	id, _ := primitive.ObjectIDFromHex(payload["id"].(string))
	return id, true
}

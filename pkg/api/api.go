package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blog/pkg/logship"
	"blog/pkg/service"
	"blog/pkg/storage"
	"blog/pkg/validation"
)

// TokenVerifier resolves a bearer token to the id of the user it was issued for.
type TokenVerifier interface {
	Verify(token string) (primitive.ObjectID, error)
}

// Issuer signs and verifies access tokens.
type Issuer interface {
	TokenVerifier
	service.TokenSigner
}

type API struct {
	ServiceName string

	r       *mux.Router
	db      storage.Storage
	svc     *service.Services
	tokens  TokenVerifier
	checker validation.TextChecker
	kw      logship.Writer
}

// New builds the API over db. checker and kafkaWriter are optional and must be
// passed as untyped nil when not configured.
func New(name string, db storage.Storage, issuer Issuer, checker validation.TextChecker, kafkaWriter logship.Writer) *API {
	api := API{
		ServiceName: name,
		r:           mux.NewRouter(),
		db:          db,
		svc:         service.New(db, issuer),
		tokens:      issuer,
		checker:     checker,
		kw:          kafkaWriter,
	}
	api.endpoints()

	return &api
}

func (api *API) Router() *mux.Router {
	return api.r
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	api.r.Use(api.headerMiddleware)

	if api.kw != nil {
		api.r.Use(api.loggingMiddleware(api.kw))
	}

	api.r.HandleFunc("/users", api.registerHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/auth/login", api.loginHandler).Methods(http.MethodPost)

	api.r.Handle("/comments/add", api.authorized(api.createCommentHandler)).Methods(http.MethodPost)

	api.r.Handle("/posts", api.authorized(api.createPostHandler)).Methods(http.MethodPost)
	api.r.Handle("/posts", api.authorized(api.postsHandler)).Methods(http.MethodGet)
	api.r.Handle("/posts/search", api.authorized(api.searchPostsHandler)).Methods(http.MethodGet)
	api.r.Handle("/posts/author/{id}", api.authorized(api.postsByAuthorHandler)).Methods(http.MethodGet)
	api.r.Handle("/posts/{id}", api.authorized(api.postHandler)).Methods(http.MethodGet)

	// CORS preflight for every route.
	api.r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// GetUserID returns the authenticated caller set by the authorized middleware.
func GetUserID(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(UserIDKey).(primitive.ObjectID)
	return id, ok
}

// shorten truncates a string to 6 characters if it is longer than 6, appends '...' at the end,
// otherwise it returns the string unchanged.
func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}

// Package service holds the operations behind the API handlers. Request
// payloads reach it already validated.
package service

import "blog/pkg/storage"

type Services struct {
	Comments *CommentService
	Posts    *PostService
	Users    *UserService
}

func New(store storage.Storage, signer TokenSigner) *Services {
	return &Services{
		Comments: NewCommentService(store),
		Posts:    NewPostService(store),
		Users:    NewUserService(store, signer),
	}
}

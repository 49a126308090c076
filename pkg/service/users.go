package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"blog/pkg/models"
	"blog/pkg/storage"
)

var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// TokenSigner issues an access token for a user.
type TokenSigner interface {
	Sign(userID primitive.ObjectID) (string, error)
}

type UserService struct {
	users  storage.Users
	signer TokenSigner
	cost   int
}

func NewUserService(users storage.Users, signer TokenSigner) *UserService {
	return &UserService{users: users, signer: signer, cost: bcrypt.DefaultCost}
}

// Register stores a new user with a bcrypt hash of the password. Emails are
// kept in lower case.
func (s *UserService) Register(ctx context.Context, email, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	return s.users.CreateUser(ctx, models.User{
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hash),
	})
}

// Login returns a signed token when the password matches the stored hash.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.signer.Sign(user.ID)
}

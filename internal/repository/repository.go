// Package repository declares the storage interfaces of the development API.
// The sqlite subpackage implements them; the service layer depends only on
// these interfaces.
package repository

import (
	"context"

	"github.com/sakif/storyblog/internal/model"
)

// ListOptions narrows a post listing. A zero Limit means "everything": the
// client's profile page loads the full collection and filters locally.
type ListOptions struct {
	Query  string
	Limit  int
	Offset int
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context, opts ListOptions) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
	AddComment(ctx context.Context, postID, text string) error
	IncrementLikes(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

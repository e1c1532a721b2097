// Package service holds the business rules of the development API.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → validates, enforces rules, orchestrates
//	Repository (data layer)  → reads/writes SQLite
//
// Services take repository interfaces, never *sqlite.DB, so tests run them
// against in-memory fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/repository"
	"github.com/sakif/storyblog/internal/validation"
)

const (
	MaxTitleLength   = 200
	MaxContentLength = 100000
	MaxCommentLength = 2000
)

// PostService handles posts, comments and likes.
type PostService struct {
	repo     repository.PostRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(repo repository.PostRepository, validate *validator.Validate, logger *slog.Logger) *PostService {
	return &PostService{repo: repo, validate: validate, logger: logger}
}

// List returns posts newest first, optionally filtered by q.
func (s *PostService) List(ctx context.Context, q string) ([]model.Post, error) {
	posts, err := s.repo.List(ctx, repository.ListOptions{Query: q})
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Get returns one post or apperror.ErrNotFound.
func (s *PostService) Get(ctx context.Context, id string) (*model.Post, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new post.
func (s *PostService) Create(ctx context.Context, in model.PostInput) (*model.Post, error) {
	in, err := s.checkInput(in)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Title:    in.Title,
		Content:  in.Content,
		Author:   in.Author,
		ImageURL: in.ImageURL,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("author", post.Author),
	)
	return post, nil
}

// Update replaces the four editable fields and returns the stored post.
func (s *PostService) Update(ctx context.Context, id string, in model.PostInput) (*model.Post, error) {
	in, err := s.checkInput(in)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:       id,
		Title:    in.Title,
		Content:  in.Content,
		Author:   in.Author,
		ImageURL: in.ImageURL,
	}
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Info("post updated", slog.String("id", id))
	return s.repo.GetByID(ctx, id)
}

// Delete removes a post and its comments.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", slog.String("id", id))
	return nil
}

// AddComment appends a comment. Blank text is rejected.
func (s *PostService) AddComment(ctx context.Context, id, text string) error {
	if strings.TrimSpace(text) == "" {
		return apperror.ValidationFailed("text", "comment text is required")
	}
	if len(text) > MaxCommentLength {
		return apperror.ValidationFailed("text",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}
	return s.repo.AddComment(ctx, id, text)
}

// Like adds one like. Repeated likes keep counting.
func (s *PostService) Like(ctx context.Context, id string) error {
	return s.repo.IncrementLikes(ctx, id)
}

// checkInput trims the single-line fields and enforces required/length
// rules. Content is kept verbatim so newlines survive.
func (s *PostService) checkInput(in model.PostInput) (model.PostInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ImageURL = strings.TrimSpace(in.ImageURL)

	if err := s.validate.Struct(in); err != nil {
		return in, validation.Error(err)
	}
	if strings.TrimSpace(in.Content) == "" {
		return in, apperror.ValidationFailed("content", "content is required")
	}
	if len(in.Title) > MaxTitleLength {
		return in, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if len(in.Content) > MaxContentLength {
		return in, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	return in, nil
}

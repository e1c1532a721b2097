package view

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/route"
	"github.com/sakif/storyblog/internal/session"
	"github.com/sakif/storyblog/internal/validation"
)

// Messages shown by the editors.
const (
	LoginRequiredMessage = "You must be logged in to write a story!"
	CreatedNotice        = "Success! Post created."
	UpdatedNotice        = "Story updated."
	NotAuthorMessage     = "Only the author can edit this story."
)

// checkDraft applies the editor's required-field rules. Title and content
// must hold more than whitespace; image_url is optional.
func checkDraft(validate *validator.Validate, draft model.PostInput) error {
	if err := validate.Struct(draft); err != nil {
		return validation.Error(err)
	}
	if strings.TrimSpace(draft.Title) == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if strings.TrimSpace(draft.Content) == "" {
		return apperror.ValidationFailed("content", "content is required")
	}
	return nil
}

// Create is the "write a story" page.
//
// The author field is always the session's username. It is shown read-only
// and whatever the form submits for it is ignored, so a logged-in user
// cannot publish as someone else.
type Create struct {
	posts    Posts
	sessions session.Reader
	validate *validator.Validate
	logger   *slog.Logger

	Draft model.PostInput
}

// NewCreate creates the page controller.
func NewCreate(posts Posts, sessions session.Reader, validate *validator.Validate, logger *slog.Logger) *Create {
	return &Create{posts: posts, sessions: sessions, validate: validate, logger: logger}
}

// Mount checks for a session and pre-fills the author. Without one it
// returns apperror.ErrUnauthenticated carrying LoginRequiredMessage; the
// shell sends the user to the login page with that message.
func (c *Create) Mount(ctx context.Context) error {
	sess := c.sessions.Current(ctx)
	if !sess.Authenticated() {
		return apperror.Unauthenticated(LoginRequiredMessage)
	}
	c.Draft.Author = sess.Username
	return nil
}

// Submit publishes draft. On failure the draft is kept for the re-rendered
// form.
func (c *Create) Submit(ctx context.Context, draft model.PostInput) (Outcome, error) {
	if err := c.Mount(ctx); err != nil {
		return Outcome{}, err
	}
	draft.Author = c.Draft.Author
	c.Draft = draft

	if err := checkDraft(c.validate, draft); err != nil {
		return Outcome{}, err
	}

	post, err := c.posts.CreatePost(ctx, draft)
	if err != nil {
		return Outcome{}, err
	}

	c.logger.Info("story published", slog.String("id", post.ID), slog.String("author", post.Author))
	return Outcome{Redirect: route.Home, Notice: CreatedNotice}, nil
}

// Edit is the edit form of an existing post.
//
// Load refuses sessions that did not write the post. That only decides
// whether the form is shown; the API itself is not asked to enforce it.
type Edit struct {
	posts    Posts
	sessions session.Reader
	validate *validator.Validate
	logger   *slog.Logger

	id    string
	Draft model.PostInput
}

// NewEdit creates the edit controller for post id.
func NewEdit(posts Posts, sessions session.Reader, validate *validator.Validate, logger *slog.Logger, id string) *Edit {
	return &Edit{posts: posts, sessions: sessions, validate: validate, logger: logger, id: id}
}

// ID is the post being edited.
func (e *Edit) ID() string { return e.id }

// Load fills the draft with the post's four editable fields.
func (e *Edit) Load(ctx context.Context) error {
	post, err := e.posts.GetPost(ctx, e.id)
	if err != nil {
		e.logger.Warn("loading story for edit failed",
			slog.String("id", e.id),
			slog.String("error", err.Error()),
		)
		return err
	}

	if !isAuthor(e.sessions.Current(ctx), post) {
		return apperror.Forbidden(NotAuthorMessage)
	}

	e.Draft = model.PostInput{
		Title:    post.Title,
		Content:  post.Content,
		Author:   post.Author,
		ImageURL: post.ImageURL,
	}
	return nil
}

// Submit sends the full replacement of title, content and image_url. The
// author is the one loaded with the post. Call Load first.
func (e *Edit) Submit(ctx context.Context, title, content, imageURL string) (Outcome, error) {
	e.Draft.Title = title
	e.Draft.Content = content
	e.Draft.ImageURL = imageURL

	if err := checkDraft(e.validate, e.Draft); err != nil {
		return Outcome{}, err
	}
	if _, err := e.posts.UpdatePost(ctx, e.id, e.Draft); err != nil {
		return Outcome{}, err
	}

	e.logger.Info("story updated", slog.String("id", e.id))
	return Outcome{Redirect: route.Post(e.id), Notice: UpdatedNotice}, nil
}

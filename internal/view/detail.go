package view

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/route"
	"github.com/sakif/storyblog/internal/session"
)

// DeleteConfirmation is the question shown before a post is deleted.
const DeleteConfirmation = "Are you sure? This cannot be undone."

// Shown instead of an error when the action went through but the reload
// after it did not.
const (
	LikedNotRefreshedNotice     = "Liked! The count will catch up when the story reloads."
	CommentedNotRefreshedNotice = "Comment posted! It will appear when the story reloads."
)

// Detail is a single post with its comments, like button and, for the
// author, edit and delete controls.
type Detail struct {
	posts    Posts
	sessions session.Reader
	logger   *slog.Logger

	id   string
	post *model.Post

	// CommentDraft is the text in the comment box. It survives a failed
	// submission so the user can retry.
	CommentDraft string
}

// NewDetail creates a Detail for post id. Call Load before rendering.
func NewDetail(posts Posts, sessions session.Reader, logger *slog.Logger, id string) *Detail {
	return &Detail{posts: posts, sessions: sessions, logger: logger, id: id}
}

// ID is the post id from the path.
func (d *Detail) ID() string { return d.id }

// Post returns the loaded post, or nil before a successful Load.
func (d *Detail) Post() *model.Post { return d.post }

// Load fetches the post. On failure the post is cleared and the error
// returned; the page shows its loading state.
func (d *Detail) Load(ctx context.Context) error {
	post, err := d.posts.GetPost(ctx, d.id)
	if err != nil {
		d.logger.Warn("loading story failed",
			slog.String("id", d.id),
			slog.String("error", err.Error()),
		)
		d.post = nil
		return err
	}
	d.post = post
	return nil
}

// IsAuthor reports whether the current session wrote this post. Edit and
// delete controls are shown only when it is true.
func (d *Detail) IsAuthor(ctx context.Context) bool {
	return isAuthor(d.sessions.Current(ctx), d.post)
}

func isAuthor(sess session.Session, post *model.Post) bool {
	return post != nil && sess.Authenticated() && sess.Username == post.Author
}

// Like adds one like and reloads the post to show the server's count.
func (d *Detail) Like(ctx context.Context) error {
	if err := d.posts.LikePost(ctx, d.id); err != nil {
		return err
	}
	return d.reload(ctx)
}

// AddComment posts text as a comment and reloads the post.
//
// Blank text is a no-op. If the request fails the draft keeps the text.
func (d *Detail) AddComment(ctx context.Context, text string) error {
	d.CommentDraft = text
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if err := d.posts.AddComment(ctx, d.id, text); err != nil {
		return err
	}
	d.CommentDraft = ""
	return d.reload(ctx)
}

// Delete removes the post once the user has confirmed. Without
// confirmation no request is made and ErrConfirmationRequired comes back.
func (d *Detail) Delete(ctx context.Context, confirmed bool) (Outcome, error) {
	if !confirmed {
		return Outcome{}, ErrConfirmationRequired
	}
	if err := d.posts.DeletePost(ctx, d.id); err != nil {
		return Outcome{}, err
	}

	d.logger.Info("story deleted", slog.String("id", d.id))
	d.post = nil
	return Outcome{Redirect: route.Home}, nil
}

// reload re-fetches after a mutation that already succeeded. A failure here
// means the mutation happened but we can't show it yet, so it comes back as
// ErrRefreshFailed.
func (d *Detail) reload(ctx context.Context) error {
	if err := d.Load(ctx); err != nil {
		return fmt.Errorf("view: reloading story %s: %w: %w", d.id, ErrRefreshFailed, err)
	}
	return nil
}

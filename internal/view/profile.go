package view

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/storyblog/internal/model"
)

// Profile lists one author's posts.
//
// The API has no filter-by-author endpoint, so Load fetches every post and
// keeps the ones whose author matches exactly. That is O(all posts) per
// profile view.
type Profile struct {
	posts  Posts
	logger *slog.Logger

	username string
	items    []model.Post
}

// NewProfile creates the profile page for username.
func NewProfile(posts Posts, logger *slog.Logger, username string) *Profile {
	return &Profile{posts: posts, logger: logger, username: username}
}

func (p *Profile) Username() string { return p.username }

// Load fetches and filters. On failure the list stays empty.
func (p *Profile) Load(ctx context.Context) error {
	all, err := p.posts.ListPosts(ctx, "")
	if err != nil {
		p.logger.Warn("loading profile failed",
			slog.String("username", p.username),
			slog.String("error", err.Error()),
		)
		p.items = nil
		return err
	}

	p.items = p.items[:0]
	for _, post := range all {
		if post.Author == p.username {
			p.items = append(p.items, post)
		}
	}
	return nil
}

func (p *Profile) Posts() []model.Post { return p.items }

func (p *Profile) Count() int { return len(p.items) }

// Summary is the line under the username, e.g. "Has written 3 stories".
func (p *Profile) Summary() string {
	return fmt.Sprintf("Has written %d stories", p.Count())
}

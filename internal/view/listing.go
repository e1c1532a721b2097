package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sakif/storyblog/internal/model"
)

// Listing is the home page: every post, or the posts matching a search.
//
// Each Search replaces the whole list. Searches can overlap (the user keeps
// typing while an earlier request is in flight), so every call takes a
// sequence number and a response is kept only if no later search started
// after it. Without that, a slow "g" response could overwrite the results
// for "go".
type Listing struct {
	posts  Posts
	logger *slog.Logger

	mu    sync.Mutex
	seq   uint64
	query string
	items []model.Post
}

// NewListing creates an empty Listing.
func NewListing(posts Posts, logger *slog.Logger) *Listing {
	return &Listing{posts: posts, logger: logger}
}

// Load fetches the unfiltered list.
func (l *Listing) Load(ctx context.Context) error {
	return l.Search(ctx, "")
}

// Search fetches the posts matching text; empty text means all posts.
//
// A failed fetch is logged and leaves the list empty. A response that lost
// the race to a newer search is dropped and Search returns nil.
func (l *Listing) Search(ctx context.Context, text string) error {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.mu.Unlock()

	posts, err := l.posts.ListPosts(ctx, text)

	l.mu.Lock()
	defer l.mu.Unlock()

	if seq != l.seq {
		l.logger.Debug("discarding superseded search", slog.String("query", text))
		return nil
	}

	l.query = text
	if err != nil {
		l.logger.Warn("loading stories failed",
			slog.String("query", text),
			slog.String("error", err.Error()),
		)
		l.items = nil
		return err
	}
	l.items = posts
	return nil
}

// Query is the search text of the list currently held.
func (l *Listing) Query() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.query
}

// Posts returns the list currently held.
func (l *Listing) Posts() []model.Post {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items
}

// Empty reports whether there is nothing to show.
func (l *Listing) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items) == 0
}

// Package view holds one controller per page of the client.
//
// A controller owns the page's display state and drafts, loads them through
// the blog API and re-loads them after every mutation. Nothing is updated
// optimistically: a like or comment only shows up once the post has been
// fetched again.
//
// Controllers know nothing about HTTP. The routing shell builds a fresh one
// per request, calls it, and renders what it holds, so no view state
// outlives a navigation.
package view

import (
	"context"
	"errors"

	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/session"
)

// ErrConfirmationRequired is returned by destructive actions invoked without
// the user's explicit confirmation. Nothing has been sent to the API.
var ErrConfirmationRequired = errors.New("view: confirmation required")

// ErrRefreshFailed is returned when a like or comment was saved but the
// post could not be fetched again to show it. Repeating the action would
// apply it twice.
var ErrRefreshFailed = errors.New("view: saved but not refreshed")

// Posts is the part of the blog API the views read and mutate.
// *blogapi.Client satisfies it.
type Posts interface {
	ListPosts(ctx context.Context, filter string) ([]model.Post, error)
	GetPost(ctx context.Context, id string) (*model.Post, error)
	CreatePost(ctx context.Context, in model.PostInput) (*model.Post, error)
	UpdatePost(ctx context.Context, id string, in model.PostInput) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error
	AddComment(ctx context.Context, id, text string) error
	LikePost(ctx context.Context, id string) error
}

// Accounts is the part of the blog API the login page uses.
type Accounts interface {
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

// Sessions is the session store as the login page sees it.
// *session.Store satisfies it.
type Sessions interface {
	session.Reader
	Login(ctx context.Context, username, token string) error
}

// Outcome is what a successful action asks the shell to do next.
type Outcome struct {
	Redirect string // path to navigate to; empty means stay on the page
	Notice   string // one-shot message for the next page
}

// Navbar is the session-dependent part of every page. It is derived fresh
// on every request, so a login or logout is visible on the next navigation.
type Navbar struct {
	LoggedIn bool
	Username string
}

// NewNavbar reads the current session.
func NewNavbar(ctx context.Context, sessions session.Reader) Navbar {
	sess := sessions.Current(ctx)
	return Navbar{LoggedIn: sess.Authenticated(), Username: sess.Username}
}

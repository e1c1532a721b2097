package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/session"
)

// =========================================================================
// FAKE BLOG API
// =========================================================================
//
// fakeAPI implements Posts and Accounts in memory. Calls are counted so
// tests can assert that an action did or did not reach the API.

type fakeAPI struct {
	mu     sync.Mutex
	posts  []*model.Post
	users  map[string]string
	nextID int
	calls  map[string]int

	failNext error            // returned (once) by the next call
	failOn   map[string]error // returned (once) by the next call of that op
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{users: map[string]string{}, calls: map[string]int{}}
}

func (f *fakeAPI) called(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	if err, ok := f.failOn[op]; ok {
		delete(f.failOn, op)
		return err
	}
	if err := f.failNext; err != nil {
		f.failNext = nil
		return err
	}
	return nil
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) find(id string) (*model.Post, error) {
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (f *fakeAPI) ListPosts(_ context.Context, filter string) ([]model.Post, error) {
	if err := f.called("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Post{}
	for i := len(f.posts) - 1; i >= 0; i-- {
		p := f.posts[i]
		if filter == "" || strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeAPI) GetPost(_ context.Context, id string) (*model.Post, error) {
	if err := f.called("get"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.find(id)
	if err != nil {
		return nil, err
	}
	cp := *p
	cp.Comments = append([]model.Comment(nil), p.Comments...)
	return &cp, nil
}

func (f *fakeAPI) CreatePost(_ context.Context, in model.PostInput) (*model.Post, error) {
	if err := f.called("create"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	now := time.Now()
	p := &model.Post{
		ID: fmt.Sprintf("p%d", f.nextID), Title: in.Title, Content: in.Content,
		Author: in.Author, ImageURL: in.ImageURL, CreatedAt: &now, Comments: []model.Comment{},
	}
	f.posts = append(f.posts, p)
	cp := *p
	return &cp, nil
}

func (f *fakeAPI) UpdatePost(_ context.Context, id string, in model.PostInput) (*model.Post, error) {
	if err := f.called("update"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.find(id)
	if err != nil {
		return nil, err
	}
	p.Title, p.Content, p.Author, p.ImageURL = in.Title, in.Content, in.Author, in.ImageURL
	cp := *p
	return &cp, nil
}

func (f *fakeAPI) DeletePost(_ context.Context, id string) error {
	if err := f.called("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.posts {
		if p.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("post", id)
}

func (f *fakeAPI) AddComment(_ context.Context, id, text string) error {
	if err := f.called("comment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.find(id)
	if err != nil {
		return err
	}
	p.Comments = append(p.Comments, model.Comment{Text: text})
	return nil
}

func (f *fakeAPI) LikePost(_ context.Context, id string) error {
	if err := f.called("like"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.find(id)
	if err != nil {
		return err
	}
	p.Likes++
	return nil
}

func (f *fakeAPI) Register(_ context.Context, username, password string) error {
	if err := f.called("register"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[username]; ok {
		return apperror.Unauthorized()
	}
	f.users[username] = password
	return nil
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (string, error) {
	if err := f.called("login"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.users[username]; !ok || pw != password {
		return "", apperror.Unauthorized()
	}
	return "token-" + username, nil
}

// =========================================================================
// HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sessionAs returns a store logged in as username, or an empty one when
// username is "".
func sessionAs(t *testing.T, username string) *session.Store {
	t.Helper()
	store := session.NewStore(session.NewMemoryBackend(), discardLogger())
	if username != "" {
		require.NoError(t, store.Login(context.Background(), username, "t-"+username))
	}
	return store
}

func seedPost(t *testing.T, api *fakeAPI, title, author string) *model.Post {
	t.Helper()
	p, err := api.CreatePost(context.Background(), model.PostInput{Title: title, Content: "body", Author: author})
	require.NoError(t, err)
	return p
}

package blogapi_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/blogapi"
	"github.com/sakif/storyblog/internal/config"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/server"
	"github.com/sakif/storyblog/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newDevAPI starts the development API on an in-memory database and
// returns a client pointed at it.
func newDevAPI(t *testing.T, opts ...blogapi.Option) *blogapi.Client {
	t.Helper()
	srv, err := server.New(config.DevAPI{
		Port:      8000,
		DBPath:    ":memory:",
		JWTSecret: "test-secret-at-least-16-chars!!",
		TokenTTL:  time.Hour,
	}, discardLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	opts = append([]blogapi.Option{blogapi.WithHTTPClient(ts.Client())}, opts...)
	c, err := blogapi.New(ts.URL, discardLogger(), opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := blogapi.New("ftp://example.com", discardLogger())
	assert.Error(t, err)

	_, err = blogapi.New("localhost:8000", discardLogger())
	assert.Error(t, err)
}

func TestPosts_RoundTrip(t *testing.T) {
	c := newDevAPI(t)
	ctx := context.Background()

	created, err := c.CreatePost(ctx, model.PostInput{Title: "Hi", Content: "World", Author: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := c.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", got.Title)
	assert.Equal(t, "alice", got.Author)
	assert.Equal(t, 0, got.Likes)

	updated, err := c.UpdatePost(ctx, created.ID, model.PostInput{Title: "Hi again", Content: "World", Author: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "Hi again", updated.Title)
}

func TestLikePost_IncrementsByOne(t *testing.T) {
	c := newDevAPI(t)
	ctx := context.Background()
	p, err := c.CreatePost(ctx, model.PostInput{Title: "t", Content: "c", Author: "a"})
	require.NoError(t, err)

	before, err := c.GetPost(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, c.LikePost(ctx, p.ID))
	after, err := c.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Likes+1, after.Likes)

	require.NoError(t, c.LikePost(ctx, p.ID))
	again, err := c.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Likes+2, again.Likes, "likes are not idempotent")
}

func TestAddComment_AppendsLast(t *testing.T) {
	c := newDevAPI(t)
	ctx := context.Background()
	p, err := c.CreatePost(ctx, model.PostInput{Title: "t", Content: "c", Author: "a"})
	require.NoError(t, err)
	require.NoError(t, c.AddComment(ctx, p.ID, "first"))

	before, err := c.GetPost(ctx, p.ID)
	require.NoError(t, err)

	require.NoError(t, c.AddComment(ctx, p.ID, "hello"))
	after, err := c.GetPost(ctx, p.ID)
	require.NoError(t, err)

	require.Len(t, after.Comments, len(before.Comments)+1)
	assert.Equal(t, "hello", after.Comments[len(after.Comments)-1].Text)
}

func TestDeletePost_GoneFromList(t *testing.T) {
	c := newDevAPI(t)
	ctx := context.Background()
	p, err := c.CreatePost(ctx, model.PostInput{Title: "t", Content: "c", Author: "a"})
	require.NoError(t, err)

	require.NoError(t, c.DeletePost(ctx, p.ID))

	posts, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	for _, got := range posts {
		assert.NotEqual(t, p.ID, got.ID)
	}

	_, err = c.GetPost(ctx, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListPosts_Filter(t *testing.T) {
	c := newDevAPI(t)
	ctx := context.Background()
	_, err := c.CreatePost(ctx, model.PostInput{Title: "Go tips", Content: "c", Author: "a"})
	require.NoError(t, err)

	all, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := c.ListPosts(ctx, "zzz_no_match")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRegisterAndLogin(t *testing.T) {
	c := newDevAPI(t)
	ctx := context.Background()

	require.NoError(t, c.Register(ctx, "alice", "pw"))

	token, err := c.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, wrongPassword := c.Login(ctx, "alice", "nope")
	_, unknownUser := c.Login(ctx, "bob", "pw")
	assert.True(t, errors.Is(wrongPassword, apperror.ErrUnauthorized))
	assert.True(t, errors.Is(unknownUser, apperror.ErrUnauthorized))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())

	dup := c.Register(ctx, "alice", "other")
	assert.True(t, errors.Is(dup, apperror.ErrUnauthorized), "register rejection is one undifferentiated signal")
}

// =========================================================================
// WIRE-LEVEL TESTS (hand-written upstream)
// =========================================================================

func newStubClient(t *testing.T, h http.HandlerFunc, opts ...blogapi.Option) *blogapi.Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	opts = append([]blogapi.Option{blogapi.WithHTTPClient(ts.Client())}, opts...)
	c, err := blogapi.New(ts.URL, discardLogger(), opts...)
	require.NoError(t, err)
	return c
}

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	h := func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}

	store := session.NewStore(session.NewMemoryBackend(), discardLogger())
	c := newStubClient(t, h, blogapi.WithSession(store))
	ctx := context.Background()

	_, err := c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no header without a session")

	require.NoError(t, store.Login(ctx, "alice", "t1"))
	_, err = c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", gotAuth)

	require.NoError(t, store.Logout(ctx))
	_, err = c.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "logout takes effect on the next request")
}

func TestPostRoutes_EscapeIDOnce(t *testing.T) {
	ids := []string{"a b", "a/b", "50%", "x?y#z"}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			var paths, rawPaths []string
			h := func(w http.ResponseWriter, r *http.Request) {
				paths = append(paths, r.URL.Path)
				rawPaths = append(rawPaths, r.URL.EscapedPath())
				if r.Method == http.MethodGet {
					_, _ = w.Write([]byte(`{"_id":"x","title":"t","content":"c","author":"a"}`))
					return
				}
				w.WriteHeader(http.StatusNoContent)
			}

			c := newStubClient(t, h)
			ctx := context.Background()
			_, err := c.GetPost(ctx, id)
			require.NoError(t, err)
			require.NoError(t, c.LikePost(ctx, id))
			require.NoError(t, c.AddComment(ctx, id, "hi"))

			want := "/posts/" + id
			wantRaw := "/posts/" + url.PathEscape(id)
			assert.Equal(t, []string{want, want + "/like", want + "/comments"}, paths)
			assert.Equal(t, []string{wantRaw, wantRaw + "/like", wantRaw + "/comments"}, rawPaths)
		})
	}
}

func TestLogin_SendsFormBody(t *testing.T) {
	var contentType, username string
	h := func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		username = r.PostForm.Get("username")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer"}`))
	}

	token, err := newStubClient(t, h).Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "alice", username)
}

func TestLogin_EmptyTokenIsUnauthorized(t *testing.T) {
	h := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}

	_, err := newStubClient(t, h).Login(context.Background(), "alice", "pw")
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		call   func(*blogapi.Client) error
		want   error
	}{
		{"get 404", http.StatusNotFound, func(c *blogapi.Client) error {
			_, err := c.GetPost(context.Background(), "x")
			return err
		}, apperror.ErrNotFound},
		{"get 500", http.StatusInternalServerError, func(c *blogapi.Client) error {
			_, err := c.GetPost(context.Background(), "x")
			return err
		}, apperror.ErrRequestFailed},
		{"like 404", http.StatusNotFound, func(c *blogapi.Client) error {
			return c.LikePost(context.Background(), "x")
		}, apperror.ErrNotFound},
		{"list 404", http.StatusNotFound, func(c *blogapi.Client) error {
			_, err := c.ListPosts(context.Background(), "")
			return err
		}, apperror.ErrRequestFailed},
		{"login 401", http.StatusUnauthorized, func(c *blogapi.Client) error {
			_, err := c.Login(context.Background(), "a", "b")
			return err
		}, apperror.ErrUnauthorized},
		{"login 400", http.StatusBadRequest, func(c *blogapi.Client) error {
			_, err := c.Login(context.Background(), "a", "b")
			return err
		}, apperror.ErrUnauthorized},
		{"login 502", http.StatusBadGateway, func(c *blogapi.Client) error {
			_, err := c.Login(context.Background(), "a", "b")
			return err
		}, apperror.ErrRequestFailed},
		{"register 409", http.StatusConflict, func(c *blogapi.Client) error {
			return c.Register(context.Background(), "a", "b")
		}, apperror.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newStubClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"x"}`, tt.status)
			})
			err := tt.call(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c, err := blogapi.New(url, discardLogger())
	require.NoError(t, err)

	_, err = c.ListPosts(context.Background(), "")
	assert.True(t, errors.Is(err, apperror.ErrRequestFailed))
}

func TestUpdatePost_EmptyBody(t *testing.T) {
	h := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	post, err := newStubClient(t, h).UpdatePost(context.Background(), "p1", model.PostInput{Title: "t", Content: "c", Author: "a"})
	require.NoError(t, err)
	assert.Equal(t, "p1", post.ID)
	assert.Equal(t, "t", post.Title)
}

package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/repository"
)

// newTestDB gives each test its own in-memory database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestPost(t *testing.T, db *DB, title, content, author string) *model.Post {
	t.Helper()
	p := &model.Post{Title: title, Content: content, Author: author}
	require.NoError(t, db.Create(context.Background(), p))
	return p
}

func TestCreate_AssignsServerFields(t *testing.T) {
	db := newTestDB(t)

	p := createTestPost(t, db, "Hi", "World", "alice")

	assert.Len(t, p.ID, 20, "xid ids are 20 characters")
	require.NotNil(t, p.CreatedAt)
	assert.Zero(t, p.Likes)
	assert.Empty(t, p.Comments)
}

func TestGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestPost(t, db, "Hi", "line one\nline two", "alice")

	found, err := db.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "line one\nline two", found.Content)
	assert.Equal(t, "alice", found.Author)
	assert.NotNil(t, found.Comments, "comments is an empty list, not null")
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestList_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	first := createTestPost(t, db, "first", "a", "alice")
	second := createTestPost(t, db, "second", "b", "bob")

	posts, err := db.List(context.Background(), repository.ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
}

func TestList_Query(t *testing.T) {
	db := newTestDB(t)
	createTestPost(t, db, "Go channels", "pipes", "alice")
	createTestPost(t, db, "Gardening", "tomatoes", "bob")
	createTestPost(t, db, "100% done", "finished", "carol")

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"go", 1},     // case-insensitive title match
		{"TOMATO", 1}, // content match
		{"carol", 1},  // author match
		{"zzz_no_match", 0},
		{"%", 1}, // literal percent, not a wildcard
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			posts, err := db.List(context.Background(), repository.ListOptions{Query: tt.query})
			require.NoError(t, err)
			assert.Len(t, posts, tt.want)
		})
	}
}

func TestList_LimitOffset(t *testing.T) {
	db := newTestDB(t)
	for _, title := range []string{"a", "b", "c"} {
		createTestPost(t, db, title, "x", "alice")
	}

	page, err := db.List(context.Background(), repository.ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "b", page[0].Title)
	assert.Equal(t, "a", page[1].Title)
}

func TestUpdate_ReplacesEditableFields(t *testing.T) {
	db := newTestDB(t)
	p := createTestPost(t, db, "old", "old body", "alice")
	p.ImageURL = "https://example.com/a.png"
	require.NoError(t, db.IncrementLikes(context.Background(), p.ID))

	err := db.Update(context.Background(), &model.Post{
		ID: p.ID, Title: "new", Content: "new body", Author: "alice", ImageURL: "",
	})
	require.NoError(t, err)

	got, err := db.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, "new body", got.Content)
	assert.Empty(t, got.ImageURL)
	assert.Equal(t, 1, got.Likes, "likes survive an update")
}

func TestUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Update(context.Background(), &model.Post{ID: "missing", Title: "t", Content: "c", Author: "a"})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestDelete_RemovesPostAndComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := createTestPost(t, db, "doomed", "x", "alice")
	require.NoError(t, db.AddComment(ctx, p.ID, "bye"))

	require.NoError(t, db.Delete(ctx, p.ID))

	_, err := db.GetByID(ctx, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	var n int
	require.NoError(t, db.conn.QueryRow(`SELECT COUNT(*) FROM comments WHERE post_id = ?`, p.ID).Scan(&n))
	assert.Zero(t, n)

	assert.True(t, errors.Is(db.Delete(ctx, p.ID), apperror.ErrNotFound), "second delete is NotFound")
}

func TestAddComment_AppendsInOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := createTestPost(t, db, "chatty", "x", "alice")

	require.NoError(t, db.AddComment(ctx, p.ID, "first"))
	require.NoError(t, db.AddComment(ctx, p.ID, "hello"))

	got, err := db.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Comment{{Text: "first"}, {Text: "hello"}}, got.Comments)

	listed, err := db.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, got.Comments, listed[0].Comments)
}

func TestAddComment_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.AddComment(context.Background(), "missing", "hello")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestIncrementLikes_NotIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	p := createTestPost(t, db, "popular", "x", "alice")

	require.NoError(t, db.IncrementLikes(ctx, p.ID))
	require.NoError(t, db.IncrementLikes(ctx, p.ID))

	got, err := db.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Likes)

	assert.True(t, errors.Is(db.IncrementLikes(ctx, "missing"), apperror.ErrNotFound))
}

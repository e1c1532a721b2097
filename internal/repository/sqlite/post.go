package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/repository"
)

// compile-time check that *DB implements repository.PostRepository
var _ repository.PostRepository = (*DB)(nil)

const postColumns = `id, title, content, author, image_url, likes, created_at`

// Create inserts a new post. It assigns the id (an xid: 20 URL-safe chars,
// sortable by creation time) and created_at, and starts likes at zero.
func (db *DB) Create(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	post.ID = xid.New().String()
	post.CreatedAt = &now
	post.Likes = 0
	post.Comments = []model.Comment{}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, author, image_url, likes, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		post.ID, post.Title, post.Content, post.Author, post.ImageURL, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}
	return nil
}

// GetByID returns the post with its comments in insertion order.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Post, error) {
	post, err := scanPost(db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	byPost, err := db.commentsFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	post.Comments = byPost[id]
	return post, nil
}

// List returns posts newest first. A non-empty Query matches title, content
// or author, case-insensitively, as a substring.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	var (
		where string
		args  []any
	)
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		where = `WHERE title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\' OR author LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern, pattern)
	}

	// LIMIT -1 is SQLite for "no limit".
	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := max(opts.Offset, 0)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts `+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}

	posts := []model.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	// Close before the comments query: the pool has a single connection.
	rows.Close()

	ids := make([]string, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	byPost, err := db.commentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Comments = byPost[posts[i].ID]
	}

	return posts, nil
}

// Update replaces the four editable fields. id, created_at, likes and
// comments are untouched.
func (db *DB) Update(ctx context.Context, post *model.Post) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, author = ?, image_url = ?
		 WHERE id = ?`,
		post.Title, post.Content, post.Author, post.ImageURL, post.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating post %s: %w", post.ID, err)
	}
	return expectOneRow(result, "post", post.ID)
}

// Delete removes the post and its comments in one transaction.
func (db *DB) Delete(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete of %s: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting comments of %s: %w", id, err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}
	if err := expectOneRow(result, "post", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of %s: %w", id, err)
	}
	return nil
}

// AddComment appends a comment to post postID.
func (db *DB) AddComment(ctx context.Context, postID, text string) error {
	var exists int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts WHERE id = ?`, postID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: checking post %s: %w", postID, err)
	}
	if exists == 0 {
		return apperror.NotFound("post", postID)
	}

	if _, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, text, created_at) VALUES (?, ?, ?)`,
		postID, text, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("sqlite: adding comment to %s: %w", postID, err)
	}
	return nil
}

// IncrementLikes adds exactly one like. The increment happens inside SQLite
// so concurrent likes never lose an update.
func (db *DB) IncrementLikes(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `UPDATE posts SET likes = likes + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: liking post %s: %w", id, err)
	}
	return expectOneRow(result, "post", id)
}

// commentsFor loads the comments of several posts in one query. Every id in
// ids gets a non-nil (possibly empty) slice.
func (db *DB) commentsFor(ctx context.Context, ids []string) (map[string][]model.Comment, error) {
	out := make(map[string][]model.Comment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
		out[id] = []model.Comment{}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := db.conn.QueryContext(ctx,
		`SELECT post_id, text FROM comments WHERE post_id IN (`+placeholders+`) ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID string
		var c model.Comment
		if err := rows.Scan(&postID, &c.Text); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		out[postID] = append(out[postID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(s rowScanner) (*model.Post, error) {
	var (
		p         model.Post
		createdAt time.Time
	)
	if err := s.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &p.ImageURL, &p.Likes, &createdAt); err != nil {
		return nil, err
	}
	p.CreatedAt = &createdAt
	return &p, nil
}

func expectOneRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// escapeLike escapes LIKE wildcards so a search for "50%" means the literal
// text.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

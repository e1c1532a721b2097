package blogapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/model"
)

// postPath is the path of post id, plus any trailing elements. Ids are
// opaque, so they are escaped as a single element whatever they contain.
func postPath(id string, rest ...string) []string {
	return append([]string{"posts", id}, rest...)
}

// ListPosts returns the posts in server order. A non-empty filter is sent as
// ?q= and the server decides what matches.
func (c *Client) ListPosts(ctx context.Context, filter string) ([]model.Post, error) {
	req := request{method: http.MethodGet, segments: []string{"posts"}}
	if filter != "" {
		req.query = url.Values{"q": {filter}}
	}

	var posts []model.Post
	if err := c.do(ctx, req, &posts); err != nil {
		return nil, apperror.RequestFailed("loading stories", err)
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}

// GetPost returns one post or apperror.ErrNotFound.
func (c *Client) GetPost(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := c.do(ctx, request{method: http.MethodGet, segments: postPath(id)}, &post); err != nil {
		return nil, mapPostError("loading story", id, err)
	}
	return &post, nil
}

// CreatePost publishes a new post. The server assigns the id and created_at.
func (c *Client) CreatePost(ctx context.Context, in model.PostInput) (*model.Post, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}

	var post model.Post
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		segments:    []string{"posts"},
		body:        body,
		contentType: "application/json",
	}, &post); err != nil {
		return nil, apperror.RequestFailed("publishing story", err)
	}
	return &post, nil
}

// UpdatePost replaces title, content, author and image_url of post id.
func (c *Client) UpdatePost(ctx context.Context, id string, in model.PostInput) (*model.Post, error) {
	body, err := jsonBody(in)
	if err != nil {
		return nil, err
	}

	var post model.Post
	if err := c.do(ctx, request{
		method:      http.MethodPut,
		segments:    postPath(id),
		body:        body,
		contentType: "application/json",
	}, &post); err != nil {
		return nil, mapPostError("updating story", id, err)
	}

	// Some deployments answer PUT with an empty body.
	if post.ID == "" {
		post = model.Post{ID: id, Title: in.Title, Content: in.Content, Author: in.Author, ImageURL: in.ImageURL}
	}
	return &post, nil
}

// DeletePost removes post id and its comments.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	if err := c.do(ctx, request{method: http.MethodDelete, segments: postPath(id)}, nil); err != nil {
		return mapPostError("deleting story", id, err)
	}
	return nil
}

// AddComment appends a comment. Re-fetch the post to see it.
func (c *Client) AddComment(ctx context.Context, id, text string) error {
	body, err := jsonBody(model.CommentInput{Text: text})
	if err != nil {
		return err
	}

	if err := c.do(ctx, request{
		method:      http.MethodPost,
		segments:    postPath(id, "comments"),
		body:        body,
		contentType: "application/json",
	}, nil); err != nil {
		return mapPostError("posting comment", id, err)
	}
	return nil
}

// LikePost adds one like. Re-fetch the post to see the new count.
func (c *Client) LikePost(ctx context.Context, id string) error {
	if err := c.do(ctx, request{method: http.MethodPost, segments: postPath(id, "like")}, nil); err != nil {
		return mapPostError("liking story", id, err)
	}
	return nil
}

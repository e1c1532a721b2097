// Package model defines the data structures shared by the blog client and the
// development API.
//
// The JSON shape follows the remote blog API: posts are identified by "_id",
// the cover image lives in "image_url" and timestamps in "created_at".
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Post is one story. The server owns it; the client only ever holds a copy
// taken from the last response it saw.
//
// CreatedAt is a pointer because older posts on the remote API have no
// timestamp at all, and the views render "Today" / "Just now" for those.
type Post struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Author    string     `json:"author"`
	ImageURL  string     `json:"image_url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Likes     int        `json:"likes"`
	Comments  []Comment  `json:"comments"`
}

// Comment is the minimal comment entity: text only, no id, author or time.
type Comment struct {
	Text string `json:"text"`
}

// UnmarshalJSON accepts both {"text": "..."} objects and bare strings.
// Early posts on the remote API stored comments as plain strings.
func (c *Comment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}

	// alias drops the method set so Unmarshal doesn't recurse.
	type alias Comment
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("model: decoding comment: %w", err)
	}
	*c = Comment(a)
	return nil
}

// PostInput is the full replacement tuple sent by create and update.
// Update is not a merge: every field is written, empty or not.
type PostInput struct {
	Title    string `json:"title"    validate:"required"`
	Content  string `json:"content"  validate:"required"`
	Author   string `json:"author"   validate:"required"`
	ImageURL string `json:"image_url"`
}

// CommentInput is the request body of POST /posts/{id}/comments.
type CommentInput struct {
	Text string `json:"text" validate:"required"`
}

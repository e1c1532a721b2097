// Package handler holds the devapi's JSON endpoints.
//
// HANDLER RESPONSIBILITIES:
//  1. Parse the request (path params, query, body)
//  2. Call the service
//  3. Write the response via writeJSON / writeError
//
// Handlers contain no business rules; those live in internal/service.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/storyblog/internal/auth"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/service"
)

// PostHandler serves /posts and its sub-resources.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleList returns every post, newest first.
//
// HTTP: GET /posts?q=text
//
// An absent or empty q means no filter. The body is always a JSON array,
// never null, so clients can iterate without a nil check.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// HandleGet returns one post with its comments.
//
// HTTP: GET /posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleCreate stores a new post.
//
// HTTP: POST /posts
// BODY: {"title": "...", "content": "...", "author": "...", "image_url": "..."}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logCaller(r, "create")
	post, err := h.posts.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// HandleUpdate replaces the editable fields of a post.
//
// HTTP: PUT /posts/{id}
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in model.PostInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	h.logCaller(r, "update")
	post, err := h.posts.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// HandleDelete removes a post and its comments.
//
// HTTP: DELETE /posts/{id}
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	h.logCaller(r, "delete")
	if err := h.posts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddComment appends a comment.
//
// HTTP: POST /posts/{id}/comments
// BODY: {"text": "..."}
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	var in model.CommentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.posts.AddComment(r.Context(), id, in.Text); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.Comment{Text: in.Text})
}

// HandleLike adds one like.
//
// HTTP: POST /posts/{id}/like
func (h *PostHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	if err := h.posts.Like(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// logCaller records who issued a write. Tokens are optional here; a
// missing one is logged as anonymous, not rejected.
func (h *PostHandler) logCaller(r *http.Request, action string) {
	caller, ok := auth.UsernameFromContext(r.Context())
	if !ok {
		caller = "anonymous"
	}
	h.logger.Debug("post write",
		slog.String("action", action),
		slog.String("caller", caller),
	)
}

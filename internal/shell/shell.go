// Package shell is the client's routing shell: it maps each navigable path
// to a view controller, renders the result as HTML and handles navigation
// after mutations.
//
// ROUTES:
//
//	GET  /                    → listing (?q= searches)
//	GET  /create, POST        → create form (session required)
//	GET  /post/{id}           → detail
//	POST /post/{id}/like      → like, then back to detail
//	POST /post/{id}/comments  → comment, then back to detail
//	GET  /post/{id}/delete    → confirmation step
//	POST /post/{id}/delete    → delete, then home
//	GET  /edit/{id}, POST     → edit form
//	GET  /login, POST         → log in / sign up
//	GET  /profile/{username}  → an author's posts
//	POST /logout              → clear session, then home
//
// Every request builds fresh controllers, so nothing a previous page loaded
// can leak into the next one. Successful mutations answer with a 303
// redirect (Post/Redirect/Get); failed ones re-render the page with the
// error and the user's draft.
package shell

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/middleware"
	"github.com/sakif/storyblog/internal/model"
	"github.com/sakif/storyblog/internal/route"
	"github.com/sakif/storyblog/internal/view"
)

// Sessions is the session store as the shell uses it. *session.Store
// satisfies it.
type Sessions interface {
	view.Sessions
	Logout(ctx context.Context) error
}

// Deps are the collaborators the shell hands to its controllers.
type Deps struct {
	Posts    view.Posts
	Accounts view.Accounts
	Sessions Sessions
	Validate *validator.Validate
}

// Shell is the client's HTTP front end.
type Shell struct {
	router   *chi.Mux
	posts    view.Posts
	accounts view.Accounts
	sessions Sessions
	validate *validator.Validate
	pages    map[string]*template.Template
	logger   *slog.Logger
}

// New parses the templates and builds the router.
func New(deps Deps, logger *slog.Logger) (*Shell, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Shell{
		router:   chi.NewRouter(),
		posts:    deps.Posts,
		accounts: deps.Accounts,
		sessions: deps.Sessions,
		validate: deps.Validate,
		pages:    pages,
		logger:   logger,
	}
	s.setupRoutes()
	return s, nil
}

// Handler exposes the router.
func (s *Shell) Handler() http.Handler {
	return s.router
}

func (s *Shell) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(csrfProtect)

	s.router.Get(route.Home, s.handleListing)

	s.router.Get(route.Create, s.handleCreateForm)
	s.router.Post(route.Create, s.handleCreate)

	s.router.Route("/post/{id}", func(r chi.Router) {
		r.Get("/", s.handleDetail)
		r.Post("/like", s.handleLike)
		r.Post("/comments", s.handleComment)
		r.Get("/delete", s.handleDeleteConfirm)
		r.Post("/delete", s.handleDelete)
	})

	s.router.Get("/edit/{id}", s.handleEditForm)
	s.router.Post("/edit/{id}", s.handleEdit)

	s.router.Get(route.Login, s.handleLoginForm)
	s.router.Post(route.Login, s.handleLogin)
	s.router.Post(route.Logout, s.handleLogout)

	s.router.Get("/profile/{username}", s.handleProfile)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusNotFound, "error", "Not found",
			struct{ Heading string }{"Page not found."}, nil)
	})
}

// urlParam returns the decoded value of a route parameter. chi matches on
// the escaped path when the request has one (an id or username holding
// "/"), and the parameter is then still escaped.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

// redirect finishes a successful action: the notice is kept for the next
// page and the browser is sent there with a GET.
func redirect(w http.ResponseWriter, r *http.Request, out view.Outcome) {
	setFlash(w, out.Notice)
	http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
}

// =========================================================================
// LISTING
// =========================================================================

func (s *Shell) handleListing(w http.ResponseWriter, r *http.Request) {
	listing := view.NewListing(s.posts, s.logger)
	// A failed load is logged by the controller and renders as empty.
	_ = listing.Search(r.Context(), r.URL.Query().Get("q"))
	s.render(w, r, http.StatusOK, "listing", "Stories", listing, nil)
}

// =========================================================================
// DETAIL
// =========================================================================

type detailData struct {
	ID           string
	Post         *model.Post
	IsAuthor     bool
	CommentDraft string
}

func (s *Shell) newDetail(r *http.Request) *view.Detail {
	return view.NewDetail(s.posts, s.sessions, s.logger, urlParam(r, "id"))
}

func (s *Shell) renderDetail(w http.ResponseWriter, r *http.Request, status int, d *view.Detail, actionErr error) {
	title := "Story"
	if p := d.Post(); p != nil {
		title = p.Title
	}
	s.render(w, r, status, "detail", title, detailData{
		ID:           d.ID(),
		Post:         d.Post(),
		IsAuthor:     d.IsAuthor(r.Context()),
		CommentDraft: d.CommentDraft,
	}, actionErr)
}

func (s *Shell) handleDetail(w http.ResponseWriter, r *http.Request) {
	d := s.newDetail(r)
	if err := d.Load(r.Context()); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.renderError(w, r, err)
			return
		}
		// Left in its loading state.
		s.renderDetail(w, r, http.StatusBadGateway, d, nil)
		return
	}
	s.renderDetail(w, r, http.StatusOK, d, nil)
}

func (s *Shell) handleLike(w http.ResponseWriter, r *http.Request) {
	d := s.newDetail(r)
	err := d.Like(r.Context())
	if errors.Is(err, view.ErrRefreshFailed) {
		redirect(w, r, view.Outcome{Redirect: route.Post(d.ID()), Notice: view.LikedNotRefreshedNotice})
		return
	}
	if err != nil {
		_ = d.Load(r.Context())
		s.renderDetail(w, r, statusFor(err), d, err)
		return
	}
	redirect(w, r, view.Outcome{Redirect: route.Post(d.ID())})
}

func (s *Shell) handleComment(w http.ResponseWriter, r *http.Request) {
	d := s.newDetail(r)
	err := d.AddComment(r.Context(), r.PostFormValue("text"))
	if errors.Is(err, view.ErrRefreshFailed) {
		redirect(w, r, view.Outcome{Redirect: route.Post(d.ID()), Notice: view.CommentedNotRefreshedNotice})
		return
	}
	if err != nil {
		draft := d.CommentDraft
		_ = d.Load(r.Context())
		d.CommentDraft = draft
		s.renderDetail(w, r, statusFor(err), d, err)
		return
	}
	redirect(w, r, view.Outcome{Redirect: route.Post(d.ID())})
}

type confirmData struct {
	ID       string
	Post     *model.Post
	Question string
}

func (s *Shell) handleDeleteConfirm(w http.ResponseWriter, r *http.Request) {
	d := s.newDetail(r)
	if err := d.Load(r.Context()); err != nil {
		s.renderError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "confirm", "Delete story",
		confirmData{ID: d.ID(), Post: d.Post(), Question: view.DeleteConfirmation}, nil)
}

func (s *Shell) handleDelete(w http.ResponseWriter, r *http.Request) {
	d := s.newDetail(r)
	out, err := d.Delete(r.Context(), r.PostFormValue("confirm") == "yes")
	switch {
	case errors.Is(err, view.ErrConfirmationRequired):
		http.Redirect(w, r, route.Delete(d.ID()), http.StatusSeeOther)
		return
	case err != nil:
		_ = d.Load(r.Context())
		s.render(w, r, statusFor(err), "confirm", "Delete story",
			confirmData{ID: d.ID(), Post: d.Post(), Question: view.DeleteConfirmation}, err)
		return
	}
	redirect(w, r, out)
}

// =========================================================================
// CREATE / EDIT
// =========================================================================

type editorData struct {
	Editing bool
	Action  string
	Draft   model.PostInput
}

// requireLogin sends the user to the login page with the controller's
// message. It reports whether it did.
func requireLogin(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		return false
	}
	redirect(w, r, view.Outcome{Redirect: route.Login, Notice: noticeFor(err)})
	return true
}

func (s *Shell) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	c := view.NewCreate(s.posts, s.sessions, s.validate, s.logger)
	if err := c.Mount(r.Context()); err != nil {
		if !requireLogin(w, r, err) {
			s.renderError(w, r, err)
		}
		return
	}
	s.render(w, r, http.StatusOK, "editor", "Write a story",
		editorData{Action: route.Create, Draft: c.Draft}, nil)
}

func (s *Shell) handleCreate(w http.ResponseWriter, r *http.Request) {
	c := view.NewCreate(s.posts, s.sessions, s.validate, s.logger)
	out, err := c.Submit(r.Context(), model.PostInput{
		Title:    r.PostFormValue("title"),
		Content:  r.PostFormValue("content"),
		ImageURL: r.PostFormValue("image_url"),
	})
	if err != nil {
		if requireLogin(w, r, err) {
			return
		}
		s.render(w, r, statusFor(err), "editor", "Write a story",
			editorData{Action: route.Create, Draft: c.Draft}, err)
		return
	}
	redirect(w, r, out)
}

// loadEdit loads the post and applies the author check. When it fails it
// has already responded.
func (s *Shell) loadEdit(w http.ResponseWriter, r *http.Request) (*view.Edit, bool) {
	e := view.NewEdit(s.posts, s.sessions, s.validate, s.logger, urlParam(r, "id"))
	if err := e.Load(r.Context()); err != nil {
		if errors.Is(err, apperror.ErrForbidden) {
			redirect(w, r, view.Outcome{Redirect: route.Post(e.ID()), Notice: noticeFor(err)})
			return nil, false
		}
		s.renderError(w, r, err)
		return nil, false
	}
	return e, true
}

func (s *Shell) handleEditForm(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEdit(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "editor", "Edit story",
		editorData{Editing: true, Action: route.Edit(e.ID()), Draft: e.Draft}, nil)
}

func (s *Shell) handleEdit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEdit(w, r)
	if !ok {
		return
	}
	out, err := e.Submit(r.Context(),
		r.PostFormValue("title"),
		r.PostFormValue("content"),
		r.PostFormValue("image_url"),
	)
	if err != nil {
		s.render(w, r, statusFor(err), "editor", "Edit story",
			editorData{Editing: true, Action: route.Edit(e.ID()), Draft: e.Draft}, err)
		return
	}
	redirect(w, r, out)
}

// =========================================================================
// LOGIN / LOGOUT
// =========================================================================

type loginData struct {
	Mode        string
	Registering bool
	Username    string
}

func (s *Shell) renderLogin(w http.ResponseWriter, r *http.Request, status int, l *view.Login, err error) {
	title := "Log in"
	if l.Mode() == view.ModeRegister {
		title = "Sign up"
	}
	s.render(w, r, status, "login", title, loginData{
		Mode:        l.Mode().String(),
		Registering: l.Mode() == view.ModeRegister,
		Username:    l.Username,
	}, err)
}

func (s *Shell) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	l := view.NewLogin(s.accounts, s.sessions, s.logger, view.ParseMode(r.URL.Query().Get("mode")))
	s.renderLogin(w, r, http.StatusOK, l, nil)
}

func (s *Shell) handleLogin(w http.ResponseWriter, r *http.Request) {
	l := view.NewLogin(s.accounts, s.sessions, s.logger, view.ParseMode(r.PostFormValue("mode")))

	if r.PostFormValue("action") == "toggle" {
		l.Toggle()
		l.Username = r.PostFormValue("username")
		s.renderLogin(w, r, http.StatusOK, l, nil)
		return
	}

	out, err := l.Submit(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		s.renderLogin(w, r, statusFor(err), l, err)
		return
	}
	if out.Redirect == "" {
		// Registered: back to the login form, in login mode.
		out.Redirect = route.Login
	}
	redirect(w, r, out)
}

// handleLogout clears the session and sends the browser home. The redirect
// is a fresh request, so every view is rebuilt without the old session.
func (s *Shell) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		s.logger.Error("logout failed", slog.String("error", err.Error()))
		s.renderError(w, r, fmt.Errorf("shell: logging out: %w", err))
		return
	}
	http.Redirect(w, r, route.Home, http.StatusSeeOther)
}

// =========================================================================
// PROFILE
// =========================================================================

func (s *Shell) handleProfile(w http.ResponseWriter, r *http.Request) {
	p := view.NewProfile(s.posts, s.logger, urlParam(r, "username"))
	_ = p.Load(r.Context())
	s.render(w, r, http.StatusOK, "profile", p.Username(), p, nil)
}

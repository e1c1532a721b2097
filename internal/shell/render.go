package shell

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"listing", "detail", "confirm", "editor", "login", "profile", "error"}

// parseTemplates builds one template set per page: base.html plus the
// page's "content" definition. Each page gets its own clone so the
// "content" blocks don't overwrite each other.
func parseTemplates() (map[string]*template.Template, error) {
	base, err := template.New("base").Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if pages[name], err = clone.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
	}
	return pages, nil
}

// pageData is what every template receives.
type pageData struct {
	Title string
	Nav   view.Navbar
	CSRF  string
	Flash string // one-shot notice carried over a redirect
	Error string // blocking notice for a failed action on this page
	Data  any
}

// render executes page into a buffer first so a template error becomes a
// clean 500 instead of half a page.
func (s *Shell) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any, actionErr error) {
	pd := pageData{
		Title: title,
		Nav:   view.NewNavbar(r.Context(), s.sessions),
		CSRF:  csrfToken(r),
		Flash: popFlash(w, r),
		Data:  data,
	}
	if actionErr != nil {
		pd.Error = noticeFor(actionErr)
	}

	tmpl, ok := s.pages[page]
	if !ok {
		s.logger.Error("unknown page template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", pd); err != nil {
		s.logger.Error("rendering page failed",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError shows a page-level failure (missing post, forbidden edit).
func (s *Shell) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	heading := "Something went wrong."
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		heading = "Story not found."
	case errors.Is(err, apperror.ErrForbidden):
		heading = noticeFor(err)
	}
	s.render(w, r, status, "error", heading, struct{ Heading string }{heading}, nil)
}

// noticeFor is the text shown to the user for a failed action. AppError
// messages are written for users; anything else is not.
func noticeFor(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "Something went wrong, please try again."
}

// statusFor maps an action failure to the status of the re-rendered page.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrUnauthorized), errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrRequestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

package shell

import (
	"html/template"
	"net/url"
	"strconv"
	"time"

	"github.com/sakif/storyblog/internal/route"
)

// gradientCount must match the .cover-gradient-N classes in base.html.
const gradientCount = 4

var templateFuncs = template.FuncMap{
	"avatar":      avatarURL,
	"gradient":    gradientClass,
	"shortDate":   shortDate,
	"longDate":    longDate,
	"profileDate": profileDate,

	"postPath":     route.Post,
	"editPath":     route.Edit,
	"profilePath":  route.Profile,
	"likePath":     route.Like,
	"commentsPath": route.Comments,
	"deletePath":   route.Delete,
}

// avatarURL is a generated placeholder avatar for name. size 0 leaves the
// service's default.
func avatarURL(name string, size int) string {
	q := url.Values{"name": {name}, "background": {"random"}}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	return "https://ui-avatars.com/api/?" + q.Encode()
}

// gradientClass picks the placeholder cover for a post without an image.
// It depends only on the id's last byte, so a post keeps its colour.
func gradientClass(id string) string {
	idx := 0
	if id != "" {
		idx = int(id[len(id)-1]) % gradientCount
	}
	return "cover-gradient-" + strconv.Itoa(idx)
}

// Dates are rendered in UTC.

func shortDate(t *time.Time) string {
	if t == nil {
		return "Today"
	}
	return t.UTC().Format("Jan 2")
}

func longDate(t *time.Time) string {
	if t == nil {
		return "Just now"
	}
	return t.UTC().Format("January 2, 2006")
}

func profileDate(t *time.Time) string {
	if t == nil {
		return "Just now"
	}
	return t.UTC().Format("Jan 2, 2006")
}

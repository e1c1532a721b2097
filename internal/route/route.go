// Package route builds the client's navigable paths. Handlers, views and
// templates all go through these helpers so a path is spelled in one place.
package route

import "net/url"

const (
	Home   = "/"
	Create = "/create"
	Login  = "/login"
	Logout = "/logout"
)

// Post is the detail page of post id.
func Post(id string) string {
	return "/post/" + url.PathEscape(id)
}

// Edit is the edit form of post id.
func Edit(id string) string {
	return "/edit/" + url.PathEscape(id)
}

// Profile lists the posts written by username.
func Profile(username string) string {
	return "/profile/" + url.PathEscape(username)
}

// Like, Comments and Delete are the form targets on a post's detail page.
func Like(id string) string     { return Post(id) + "/like" }
func Comments(id string) string { return Post(id) + "/comments" }
func Delete(id string) string   { return Post(id) + "/delete" }

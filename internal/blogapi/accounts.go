package blogapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/model"
)

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) error {
	body, err := jsonBody(model.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}

	if err := c.do(ctx, request{
		method:      http.MethodPost,
		segments:    []string{"register"},
		body:        body,
		contentType: "application/json",
	}, nil); err != nil {
		return mapAuthError("creating account", err)
	}
	return nil
}

// Login exchanges credentials for an access token. The body is form-encoded,
// which is what the API's OAuth2 password flow expects.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{
		"username": {username},
		"password": {password},
	}

	var tok model.TokenResponse
	if err := c.do(ctx, request{
		method:      http.MethodPost,
		segments:    []string{"login"},
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &tok); err != nil {
		return "", mapAuthError("logging in", err)
	}

	if tok.AccessToken == "" {
		return "", apperror.Unauthorized()
	}
	return tok.AccessToken, nil
}

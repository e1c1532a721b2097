package view

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/storyblog/internal/apperror"
	"github.com/sakif/storyblog/internal/route"
)

// Mode is which form the login page shows.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// ParseMode reads the mode a form was rendered in. Anything but "register"
// is ModeLogin.
func ParseMode(s string) Mode {
	if s == "register" {
		return ModeRegister
	}
	return ModeLogin
}

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

const (
	RegisteredNotice = "Account created! Now please log in."
	LoggedInNotice   = "Logged in successfully!"
)

// Login is the combined log in / sign up page.
type Login struct {
	accounts Accounts
	sessions Sessions
	logger   *slog.Logger

	mode     Mode
	Username string
	Notice   string
}

// NewLogin creates the page in the given mode.
func NewLogin(accounts Accounts, sessions Sessions, logger *slog.Logger, mode Mode) *Login {
	return &Login{accounts: accounts, sessions: sessions, logger: logger, mode: mode}
}

func (l *Login) Mode() Mode { return l.mode }

// Toggle switches between log in and sign up.
func (l *Login) Toggle() {
	if l.mode == ModeLogin {
		l.mode = ModeRegister
	} else {
		l.mode = ModeLogin
	}
}

// Submit registers or logs in depending on the mode.
//
// A successful registration switches the page to ModeLogin and sets Notice;
// it does not log in. A successful login persists the session and
// redirects home. Rejected credentials, in either mode, come back as
// apperror.Unauthorized() with its single message. Username is kept for the
// re-rendered form; the password never is.
func (l *Login) Submit(ctx context.Context, username, password string) (Outcome, error) {
	l.Username = strings.TrimSpace(username)
	if l.Username == "" || password == "" {
		return Outcome{}, apperror.Unauthorized()
	}

	if l.mode == ModeRegister {
		if err := l.accounts.Register(ctx, l.Username, password); err != nil {
			return Outcome{}, err
		}
		l.logger.Info("account created", slog.String("username", l.Username))
		l.mode = ModeLogin
		l.Notice = RegisteredNotice
		return Outcome{Notice: RegisteredNotice}, nil
	}

	token, err := l.accounts.Login(ctx, l.Username, password)
	if err != nil {
		return Outcome{}, err
	}
	if err := l.sessions.Login(ctx, l.Username, token); err != nil {
		return Outcome{}, err
	}
	return Outcome{Redirect: route.Home, Notice: LoggedInNotice}, nil
}

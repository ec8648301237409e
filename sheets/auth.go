package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/etnz/tradelog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// AuthMode selects how the spreadsheet is accessed.
type AuthMode string

const (
	// OAuth acts as the user, with a token obtained once with Authorize.
	OAuth AuthMode = "oauth"
	// ServiceAccount acts as a service account, for unattended runs.
	ServiceAccount AuthMode = "service_account"
)

// ParseAuthMode reads a mode, empty is OAuth.
func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(s) {
	case "", OAuth:
		return OAuth, nil
	case ServiceAccount:
		return ServiceAccount, nil
	}
	return "", fmt.Errorf("unknown auth mode %q, want %q or %q", s, OAuth, ServiceAccount)
}

// Auth locates the Google credentials.
type Auth struct {
	Mode            AuthMode
	CredentialsFile string // OAuth client secrets, or the service account key
	TokenFile       string // OAuth user token, refreshed in place
}

// DefaultAuth uses credentials.json and token.json in the working directory.
var DefaultAuth = Auth{Mode: OAuth, CredentialsFile: "credentials.json", TokenFile: "token.json"}

func authError(err error) error {
	return &tradelog.AuthenticationError{Service: service, Err: err}
}

// HTTPClient returns a client authorized to read and write spreadsheets.
func (a Auth) HTTPClient(ctx context.Context) (*http.Client, error) {
	data, err := os.ReadFile(a.CredentialsFile)
	if err != nil {
		return nil, authError(err)
	}
	switch a.Mode {
	case ServiceAccount:
		cfg, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, authError(fmt.Errorf("invalid service account key %s: %w", a.CredentialsFile, err))
		}
		return cfg.Client(ctx), nil
	case OAuth, "":
		cfg, err := google.ConfigFromJSON(data, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, authError(fmt.Errorf("invalid client secrets %s: %w", a.CredentialsFile, err))
		}
		tok, err := readToken(a.TokenFile)
		if err != nil {
			return nil, authError(fmt.Errorf("%w: authorize first", err))
		}
		src := &savingTokenSource{base: cfg.TokenSource(ctx, tok), path: a.TokenFile, last: tok.AccessToken}
		return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
	}
	return nil, fmt.Errorf("unknown auth mode %q", a.Mode)
}

// Authorize runs the OAuth consent flow: the user opens the printed link and
// pastes back the authorization code. The token is saved to TokenFile.
func (a Auth) Authorize(ctx context.Context, in io.Reader, out io.Writer) error {
	data, err := os.ReadFile(a.CredentialsFile)
	if err != nil {
		return authError(err)
	}
	cfg, err := google.ConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return authError(fmt.Errorf("invalid client secrets %s: %w", a.CredentialsFile, err))
	}
	link := cfg.AuthCodeURL("tlog", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Go to the following link in your browser, then type the authorization code:\n%v\n", link)

	var code string
	if _, err := fmt.Fscan(in, &code); err != nil {
		return fmt.Errorf("cannot read authorization code: %w", err)
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return authError(fmt.Errorf("cannot exchange authorization code: %w", err))
	}
	return writeToken(a.TokenFile, tok)
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no token in %s", path)
	}
	if err != nil {
		return nil, err
	}
	tok := new(oauth2.Token)
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("invalid token %s: %w", path, err)
	}
	return tok, nil
}

func writeToken(path string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// savingTokenSource saves refreshed tokens.
type savingTokenSource struct {
	base oauth2.TokenSource
	path string
	last string // access token last saved
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, authError(fmt.Errorf("cannot refresh token: %w", err))
	}
	// a token that cannot be saved is refreshed again on the next run
	if tok.AccessToken != s.last && writeToken(s.path, tok) == nil {
		s.last = tok.AccessToken
	}
	return tok, nil
}

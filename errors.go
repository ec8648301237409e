package tradelog

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPrice is returned by a PriceSource when no closing price is known for a symbol.
	ErrNoPrice = errors.New("no closing price available")
	// ErrBadPassword is returned when a statement cannot be decrypted with the given password.
	ErrBadPassword = errors.New("invalid statement password")
	// ErrNotOptionSymbol is returned when a string is not in the OCC option symbol format.
	ErrNotOptionSymbol = errors.New("not an option symbol")
)

// ParseError reports a statement whose layout does not match the expected grammar.
//
// It is not retryable: the statement needs a manual inspection.
type ParseError struct {
	Statement string // statement identity, usually the attachment name
	Page      int    // 1-based, 0 when unknown
	Line      int    // 1-based, 0 when unknown
	Reason    string
	Err       error
}

func (e *ParseError) Error() string {
	msg := "parse"
	if e.Statement != "" {
		msg += " " + e.Statement
	}
	if e.Page > 0 {
		msg += fmt.Sprintf(" page %d", e.Page)
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" line %d", e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExternalServiceError reports a failure of a remote collaborator (mail, sheets, market data, calendar).
//
// It is retryable.
type ExternalServiceError struct {
	Service string // e.g. "eodhd", "sheets", "imap"
	Op      string // e.g. "closing price AAPL 2025-01-02"
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// AuthenticationError reports a credential failure. It is fatal for the run.
type AuthenticationError struct {
	Service string
	Err     error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Service, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// IsFatal reports whether err must stop the whole run.
func IsFatal(err error) bool {
	var auth *AuthenticationError
	return errors.As(err, &auth)
}

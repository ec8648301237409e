// Package mailbox retrieves the statements emailed by the broker.
package mailbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/etnz/tradelog"
	"github.com/rs/zerolog"
)

const service = "imap"

// Defaults of the broker's confirmation emails.
const (
	DefaultServer  = "imap.gmail.com:993"
	DefaultSender  = "no-reply@dime.co.th"
	DefaultSubject = "Confirmation Note"
)

// Mailbox searches an IMAP inbox for statements. It implements tradelog.DocumentSource.
type Mailbox struct {
	Server   string // host:port, TLS
	Username string
	Password string // an app password for Gmail
	Sender   string
	Subject  string
	Log      zerolog.Logger
}

// New returns a Gmail mailbox searching the broker's confirmation emails.
func New(username, password string, log zerolog.Logger) *Mailbox {
	return &Mailbox{
		Server:   DefaultServer,
		Username: username,
		Password: password,
		Sender:   DefaultSender,
		Subject:  DefaultSubject,
		Log:      log,
	}
}

// FetchStatements returns the PDF attachments of the emails received in r.
func (m *Mailbox) FetchStatements(ctx context.Context, r tradelog.Range) ([]tradelog.Document, error) {
	m.Log.Debug().Str("server", m.Server).Msg("connecting to mail server")
	c, err := client.DialTLS(m.Server, nil)
	if err != nil {
		return nil, &tradelog.ExternalServiceError{Service: service, Op: "dial " + m.Server, Err: err}
	}
	defer c.Logout()

	if err := c.Login(m.Username, m.Password); err != nil {
		return nil, &tradelog.AuthenticationError{Service: service, Err: err}
	}
	if _, err := c.Select(imap.InboxName, true); err != nil {
		return nil, &tradelog.ExternalServiceError{Service: service, Op: "select inbox", Err: err}
	}

	ids, err := c.Search(m.criteria(r))
	if err != nil {
		return nil, &tradelog.ExternalServiceError{Service: service, Op: "search", Err: err}
	}
	m.Log.Info().Int("emails", len(ids)).Stringer("from", r.From).Stringer("to", r.To).Msg("matching emails found")
	if len(ids) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	section := &imap.BodySectionName{Peek: true}
	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	var docs []tradelog.Document
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			m.Log.Warn().Uint32("seq", msg.SeqNum).Msg("email without body")
			continue
		}
		found, err := Attachments(body)
		if err != nil {
			// one unreadable email does not hide the others
			m.Log.Warn().Err(err).Uint32("seq", msg.SeqNum).Msg("cannot read email")
			continue
		}
		for _, d := range found {
			m.Log.Info().Str("attachment", d.Name).Msg("downloaded attachment")
		}
		docs = append(docs, found...)
	}
	if err := <-done; err != nil {
		return nil, &tradelog.ExternalServiceError{Service: service, Op: "fetch", Err: err}
	}
	return docs, nil
}

// criteria selects the broker emails received in r, boundaries included.
func (m *Mailbox) criteria(r tradelog.Range) *imap.SearchCriteria {
	sc := imap.NewSearchCriteria()
	sc.Since = time.Date(r.From.Year(), r.From.Month(), r.From.Day(), 0, 0, 0, 0, time.UTC)
	to := r.To.Add(1)
	sc.Before = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	if m.Subject != "" {
		sc.Header.Add("Subject", m.Subject)
	}
	if m.Sender != "" {
		sc.Header.Add("From", m.Sender)
	}
	return sc
}

// Attachments returns the PDF attachments of an RFC 822 message, renamed
// with AttachmentName.
func Attachments(msg io.Reader) ([]tradelog.Document, error) {
	mr, err := mail.CreateReader(msg)
	if err != nil {
		return nil, fmt.Errorf("cannot read email: %w", err)
	}
	defer mr.Close()

	var docs []tradelog.Document
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return docs, fmt.Errorf("cannot read email part: %w", err)
		}
		h, ok := p.Header.(*mail.AttachmentHeader)
		if !ok {
			continue
		}
		filename, _ := h.Filename()
		if !isPDF(h, filename) {
			continue
		}
		data, err := io.ReadAll(p.Body)
		if err != nil {
			return docs, fmt.Errorf("cannot read attachment %q: %w", filename, err)
		}
		docs = append(docs, tradelog.Document{Name: AttachmentName(filename), Data: data})
	}
	return docs, nil
}

func isPDF(h *mail.AttachmentHeader, filename string) bool {
	if t, _, err := mime.ParseMediaType(h.Get("Content-Type")); err == nil && t == "application/pdf" {
		return true
	}
	return strings.EqualFold(path.Ext(filename), ".pdf")
}

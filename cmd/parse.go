package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/tradelog"
	"github.com/etnz/tradelog/renderer"
	"github.com/etnz/tradelog/statement"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
)

// parseCmd reads statements from local files.
type parseCmd struct {
	password string
	layout   string
}

func (*parseCmd) Name() string     { return "parse" }
func (*parseCmd) Synopsis() string { return "display the transactions of statement files" }
func (*parseCmd) Usage() string {
	return `tlog parse [-password <password>] [-layout 2024|legacy] <statement.pdf>...

  Decrypts and parses confirmation notes saved locally, and displays their
  transactions. Nothing is written.

  The password defaults to the PDF_PASSWORD variable.
`
}

func (c *parseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.password, "password", "", "Statement password, takes precedence over "+EnvPDFPassword)
	f.StringVar(&c.layout, "layout", "", "Force the statement layout (2024, legacy), detected by default")
}

func (*parseCmd) args() complete.Predictor { return predict.Files("*.pdf") }

func (c *parseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no statement file")
		return subcommands.ExitUsageError
	}
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	layout, err := parseLayout(c.layout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	password := c.password
	if password == "" {
		password = a.cfg.PDFPassword
	}

	status := subcommands.ExitSuccess
	reader := newReader(layout, a.log)
	for _, name := range f.Args() {
		data, err := os.ReadFile(name)
		if err != nil {
			status = a.fail(err, "cannot read statement")
			continue
		}
		doc := tradelog.Document{Name: filepath.Base(name), Data: data}
		res, err := reader.ReadStatement(doc, password)
		if err != nil {
			status = a.fail(err, "cannot parse statement")
			continue
		}
		printMarkdown(renderer.StatementMarkdown(doc.Name, res))
	}
	return status
}

// newReader returns a PDF statement reader, with a forced layout if not nil.
func newReader(layout *statement.Layout, log zerolog.Logger) *statement.Reader {
	return &statement.Reader{
		Extractor: statement.PDF{},
		Parser:    statement.Parser{Layout: layout, Log: log},
	}
}

// parseLayout finds a layout by name, empty means detected.
func parseLayout(name string) (*statement.Layout, error) {
	if name == "" {
		return nil, nil
	}
	var names []string
	for _, l := range statement.Layouts {
		if strings.EqualFold(l.Name, name) {
			return &l, nil
		}
		names = append(names, l.Name)
	}
	return nil, fmt.Errorf("unknown layout %q, want one of %s", name, strings.Join(names, ", "))
}

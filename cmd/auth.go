package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/tradelog/sheets"
	"github.com/google/subcommands"
)

// authCmd obtains the OAuth token used to access the spreadsheet.
type authCmd struct{}

func (*authCmd) Name() string     { return "auth" }
func (*authCmd) Synopsis() string { return "authorize access to the spreadsheet" }
func (*authCmd) Usage() string {
	return `tlog auth [-credentials <file>] [-token <file>]

  Prints the Google consent page URL, reads the authorization code and saves
  the token. Only needed once with GOOGLE_AUTH_MODE=oauth, the token is then
  refreshed automatically.
`
}

func (*authCmd) SetFlags(*flag.FlagSet) {}

func (*authCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if a.cfg.AuthMode != sheets.OAuth {
		fmt.Fprintf(os.Stderr, "Error: %s=%s does not need authorization\n", EnvAuthMode, a.cfg.AuthMode)
		return subcommands.ExitUsageError
	}
	auth := sheets.Auth{Mode: sheets.OAuth, CredentialsFile: *credFile, TokenFile: *tokFile}
	if err := auth.Authorize(ctx, os.Stdin, os.Stdout); err != nil {
		return a.fail(err, "authorization failed")
	}
	a.log.Info().Str("token", *tokFile).Msg("token saved")
	return subcommands.ExitSuccess
}

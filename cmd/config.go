package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/etnz/tradelog/mailbox"
	"github.com/etnz/tradelog/sheets"
	"github.com/joho/godotenv"
)

// Environment variables read by the configuration.
const (
	EnvEmail         = "EMAIL"
	EnvAppPassword   = "APP_PASSWORD"
	EnvIMAPServer    = "IMAP_SERVER"
	EnvPDFPassword   = "PDF_PASSWORD"
	EnvSpreadsheetID = "SPREADSHEET_ID"
	EnvLedgerRange   = "INVEST_LOG_RANGE_NAME"
	EnvAssetRange    = "ASSET_TRACKING_RANGE_NAME"
	EnvMarkerRange   = "LAST_UPDATE_RANGE_NAME"
	EnvEODHDKey      = "EODHD_API_KEY"
	EnvBOTClientID   = "BOT_CLIENT_ID"
	EnvAuthMode      = "GOOGLE_AUTH_MODE"
	EnvTimezone      = "USER_TIMEZONE"
)

// Config holds the credentials and locations used by the commands.
type Config struct {
	Email       string
	AppPassword string
	IMAPServer  string
	PDFPassword string

	SpreadsheetID string
	LedgerRange   string
	AssetRange    string
	MarkerRange   string
	AuthMode      sheets.AuthMode

	EODHDKey    string
	BOTClientID string

	Timezone *time.Location
}

// LoadConfig reads the configuration from the environment, after loading
// envFile if it exists. Variables already set in the environment take
// precedence over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("cannot load %s: %w", envFile, err)
		}
	}
	return readConfig(os.Getenv)
}

func readConfig(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	c := Config{
		Email:         get(EnvEmail, ""),
		AppPassword:   get(EnvAppPassword, ""),
		IMAPServer:    get(EnvIMAPServer, mailbox.DefaultServer),
		PDFPassword:   get(EnvPDFPassword, ""),
		SpreadsheetID: get(EnvSpreadsheetID, ""),
		LedgerRange:   get(EnvLedgerRange, "Invest Log!A:O"),
		AssetRange:    get(EnvAssetRange, "Asset Tracking!A:M"),
		MarkerRange:   get(EnvMarkerRange, "Last Update!A1"),
		EODHDKey:      get(EnvEODHDKey, ""),
		BOTClientID:   get(EnvBOTClientID, ""),
	}
	if c.IMAPServer != "" && !strings.Contains(c.IMAPServer, ":") {
		c.IMAPServer += ":993"
	}

	var err error
	if c.AuthMode, err = sheets.ParseAuthMode(get(EnvAuthMode, "")); err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvAuthMode, err)
	}
	if c.Timezone, err = time.LoadLocation(get(EnvTimezone, "Asia/Bangkok")); err != nil {
		return Config{}, fmt.Errorf("%s: %w", EnvTimezone, err)
	}
	return c, nil
}

// require returns an error naming the variables that are not set.
func (c Config) require(keys ...string) error {
	values := map[string]string{
		EnvEmail:         c.Email,
		EnvAppPassword:   c.AppPassword,
		EnvPDFPassword:   c.PDFPassword,
		EnvSpreadsheetID: c.SpreadsheetID,
		EnvEODHDKey:      c.EODHDKey,
		EnvBOTClientID:   c.BOTClientID,
	}
	var missing []string
	for _, k := range keys {
		if values[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

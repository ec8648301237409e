package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/tradelog/sheets"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestReadConfig_defaults(t *testing.T) {
	c, err := readConfig(env(nil))
	if err != nil {
		t.Fatalf("readConfig() unexpected error: %v", err)
	}
	if c.IMAPServer != "imap.gmail.com:993" {
		t.Errorf("IMAPServer = %q, want the Gmail server", c.IMAPServer)
	}
	if c.AuthMode != sheets.OAuth {
		t.Errorf("AuthMode = %q, want %q", c.AuthMode, sheets.OAuth)
	}
	if c.Timezone.String() != "Asia/Bangkok" {
		t.Errorf("Timezone = %v, want Asia/Bangkok", c.Timezone)
	}
	if c.LedgerRange == "" || c.AssetRange == "" || c.MarkerRange == "" {
		t.Errorf("ranges = %q %q %q, want defaults", c.LedgerRange, c.AssetRange, c.MarkerRange)
	}
}

func TestReadConfig(t *testing.T) {
	c, err := readConfig(env(map[string]string{
		EnvEmail:         "me@example.com",
		EnvIMAPServer:    "imap.example.com",
		EnvSpreadsheetID: " 1abc ",
		EnvLedgerRange:   "Log!A:O",
		EnvAuthMode:      "service_account",
		EnvTimezone:      "Europe/Paris",
	}))
	if err != nil {
		t.Fatalf("readConfig() unexpected error: %v", err)
	}
	if c.Email != "me@example.com" || c.SpreadsheetID != "1abc" || c.LedgerRange != "Log!A:O" {
		t.Errorf("readConfig() = %+v", c)
	}
	if c.IMAPServer != "imap.example.com:993" {
		t.Errorf("IMAPServer = %q, want the TLS port added", c.IMAPServer)
	}
	if c.AuthMode != sheets.ServiceAccount {
		t.Errorf("AuthMode = %q, want %q", c.AuthMode, sheets.ServiceAccount)
	}
	if c.Timezone.String() != "Europe/Paris" {
		t.Errorf("Timezone = %v, want Europe/Paris", c.Timezone)
	}
}

func TestReadConfig_errors(t *testing.T) {
	tests := []struct {
		env  map[string]string
		want string
	}{
		{map[string]string{EnvAuthMode: "password"}, EnvAuthMode},
		{map[string]string{EnvTimezone: "Mars/Olympus"}, EnvTimezone},
	}
	for _, tt := range tests {
		if _, err := readConfig(env(tt.env)); err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("readConfig(%v) error = %v, want an error about %s", tt.env, err, tt.want)
		}
	}
}

func TestConfig_require(t *testing.T) {
	c := Config{Email: "me@example.com"}
	if err := c.require(EnvEmail); err != nil {
		t.Errorf("require(EMAIL) unexpected error: %v", err)
	}
	err := c.require(EnvEmail, EnvAppPassword, EnvEODHDKey)
	if err == nil {
		t.Fatal("require() expected an error")
	}
	if want := "missing configuration: APP_PASSWORD, EODHD_API_KEY"; err.Error() != want {
		t.Errorf("require() error = %q, want %q", err, want)
	}
}

func TestLoadConfig_envFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(file, []byte("BOT_CLIENT_ID=from-file\nEODHD_API_KEY=from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvEODHDKey, "from-env")
	t.Setenv(EnvBOTClientID, "")
	os.Unsetenv(EnvBOTClientID)

	c, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if c.BOTClientID != "from-file" {
		t.Errorf("BOTClientID = %q, want the file value", c.BOTClientID)
	}
	if c.EODHDKey != "from-env" {
		t.Errorf("EODHDKey = %q, want the environment to take precedence", c.EODHDKey)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadConfig() with a missing file unexpected error: %v", err)
	}
}

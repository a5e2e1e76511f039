package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server: imap.example.com
account: user@example.com
password: app-password
keyword: test123
poll_interval_seconds: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "imap.example.com", cfg.Server)
	require.Equal(t, 993, cfg.Port)
	require.Equal(t, "imap", cfg.Protocol)
	require.Equal(t, "INBOX", cfg.Mailbox)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 5*time.Second, cfg.PollInterval())
}

func TestLoadDefaultsPOP3Port(t *testing.T) {
	path := writeConfig(t, `
protocol: pop3
server: pop.example.com
account: user@example.com
password: app-password
keyword: test123
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 995, cfg.Port)
	require.Equal(t, 30*time.Second, cfg.PollInterval())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing keyword", "account: a@b.c\npassword: x\n"},
		{"placeholder account", "account: YOUR_EMAIL@gmail.com\npassword: x\nkeyword: k\n"},
		{"placeholder password", "account: a@b.c\npassword: YOUR_APP_PASSWORD\nkeyword: k\n"},
		{"placeholder keyword", "account: a@b.c\npassword: x\nkeyword: your_specific_keyword\n"},
		{"negative interval", "account: a@b.c\npassword: x\nkeyword: k\npoll_interval_seconds: -3\n"},
		{"bad protocol", "protocol: smtp\naccount: a@b.c\npassword: x\nkeyword: k\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
		})
	}
}

func TestDefaultFailsValidation(t *testing.T) {
	require.Error(t, Default().Validate())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Account = "user@example.com"
	cfg.Password = "app-password"
	cfg.Keyword = "test123"
	cfg.PollIntervalSeconds = 7
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestSaveAllowsPlaceholders(t *testing.T) {
	// A settings front end writes the starter file before the user has
	// filled anything in.
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Default().Save(path))
}

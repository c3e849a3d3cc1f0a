package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "111, 222,333")
	t.Setenv("SPREADSHEET_ID", "sheet-id")
	t.Setenv("SUPPORT_USERNAME", "helpdesk")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "123:abc", cfg.BotToken)
	require.Equal(t, []int64{111, 222, 333}, cfg.AdminIDs)
	require.Equal(t, "credentials.json", cfg.CredentialsFile)
	require.Equal(t, "@helpdesk", cfg.SupportUsername)
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "placeholder") // registers restore
	os.Unsetenv("BOT_TOKEN")
	t.Setenv("ADMIN_IDS", "1")
	t.Setenv("SPREADSHEET_ID", "sheet-id")

	_, err := Load()
	require.Error(t, err)
}

func TestParseAdminIDs(t *testing.T) {
	ids, err := parseAdminIDs("1,2, 3,")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 3}, ids)

	_, err = parseAdminIDs("1,x")
	require.Error(t, err)

	_, err = parseAdminIDs(" , ")
	require.Error(t, err)
}

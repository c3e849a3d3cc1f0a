// Package config loads the bot's runtime settings from the environment.
package config

import (
	"fmt"
	"strconv"
	"strings"

	env "github.com/Netflix/go-env"
)

type Config struct {
	BotToken        string `env:"BOT_TOKEN,required=true"`
	AdminIDsRaw     string `env:"ADMIN_IDS,required=true"`
	SpreadsheetID   string `env:"SPREADSHEET_ID,required=true"`
	CredentialsFile string `env:"CREDENTIALS_FILE,default=credentials.json"`
	SupportUsername string `env:"SUPPORT_USERNAME,default=@startupstudio"`
	PolicyURL       string `env:"POLICY_URL,default=https://example.org/personal-data-policy"`

	// Parsed from AdminIDsRaw; not read from the environment directly.
	AdminIDs []int64
}

// Load reads and validates the environment. Any failure here halts the
// process before it starts polling.
func Load() (*Config, error) {
	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, err
	}

	ids, err := parseAdminIDs(cfg.AdminIDsRaw)
	if err != nil {
		return nil, err
	}
	cfg.AdminIDs = ids

	if !strings.HasPrefix(cfg.SupportUsername, "@") {
		cfg.SupportUsername = "@" + cfg.SupportUsername
	}
	return &cfg, nil
}

func parseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("ADMIN_IDS contains no ids")
	}
	return ids, nil
}

package bot

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the [bot] section of the shared config file. The rest of the
// file is read by app.LoadConfig.
type Config struct {
	Bot struct {
		Token    string  `toml:"token"`
		OwnerIDs []int64 `toml:"owner_ids"`
	} `toml:"bot"`
}

func ReadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("Failed to load config: %v", err)
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Bot.Token = token
	}
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is not set in config or TELEGRAM_BOT_TOKEN")
	}
	if len(cfg.Bot.OwnerIDs) == 0 {
		return nil, fmt.Errorf("bot.owner_ids is empty, nobody could use the bot")
	}

	return &cfg, nil
}

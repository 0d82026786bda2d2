package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	ChatDiscord   = "discord"
	ChatWebsocket = "websocket"

	BankCSV      = "csv"
	BankPostgres = "postgres"

	ScoresMemory   = "memory"
	ScoresFile     = "file"
	ScoresSQLite   = "sqlite"
	ScoresRedis    = "redis"
	ScoresPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Schedule struct {
		Hour         int    `yaml:"hour"`
		Minute       int    `yaml:"minute"`
		Timezone     string `yaml:"timezone"`
		PollInterval string `yaml:"poll_interval"`
		CatchUp      string `yaml:"catch_up"`
		// StatePath records the last fired day for non-redis score drivers.
		StatePath string `yaml:"state_path"`
	} `yaml:"schedule"`
	Chat struct {
		Driver       string `yaml:"driver"`
		ChannelID    string `yaml:"channel_id"`
		TrialCommand string `yaml:"trial_command"`
		TokenEnv     string `yaml:"token_env"`
	} `yaml:"chat"`
	Bank struct {
		Source string   `yaml:"source"`
		Files  []string `yaml:"files"`
	} `yaml:"bank"`
	Scores struct {
		Driver  string `yaml:"driver"`
		Path    string `yaml:"path"`
		Timeout string `yaml:"timeout"`
	} `yaml:"scores"`
	Redis struct {
		Addr      string `yaml:"addr"`
		Password  string `yaml:"password"`
		DB        int    `yaml:"db"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TrialRetention int `yaml:"trial_retention"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path, applies defaults and validates it.
// A .env file next to the working directory is loaded first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Defaults fire at 15:15 Japan time, polled every minute.
func Defaults() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Schedule.Hour = 15
	cfg.Schedule.Minute = 15
	cfg.Schedule.Timezone = "Asia/Tokyo"
	cfg.Schedule.PollInterval = "1m"
	cfg.Schedule.CatchUp = "5m"
	cfg.Schedule.StatePath = "data/last_fired.json"
	cfg.Chat.Driver = ChatWebsocket
	cfg.Chat.TrialCommand = "!test"
	cfg.Chat.TokenEnv = "DISCORD_BOT_TOKEN"
	cfg.Bank.Source = BankCSV
	cfg.Scores.Driver = ScoresFile
	cfg.Scores.Path = "data/scores.json"
	cfg.Scores.Timeout = "5s"
	cfg.Redis.KeyPrefix = "quizbot:"
	cfg.Quiz.TrialRetention = 20
	return cfg
}

// Validate rejects configurations the bot cannot start with.
func (c Config) Validate() error {
	if c.Schedule.Hour < 0 || c.Schedule.Hour > 23 {
		return errors.Errorf("schedule.hour %d out of range", c.Schedule.Hour)
	}
	if c.Schedule.Minute < 0 || c.Schedule.Minute > 59 {
		return errors.Errorf("schedule.minute %d out of range", c.Schedule.Minute)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Chat.ChannelID) == "" {
		return errors.New("chat.channel_id is required")
	}
	switch c.Chat.Driver {
	case ChatDiscord:
		if c.ChatToken() == "" {
			return errors.Errorf("chat token env %s is not set", c.Chat.TokenEnv)
		}
	case ChatWebsocket:
	default:
		return errors.Errorf("unknown chat.driver %q", c.Chat.Driver)
	}
	switch c.Bank.Source {
	case BankCSV:
		if len(c.Bank.Files) == 0 {
			return errors.New("bank.files is required for csv source")
		}
	case BankPostgres:
		if c.Postgres.URL == "" {
			return errors.New("postgres.url is required for postgres bank")
		}
	default:
		return errors.Errorf("unknown bank.source %q", c.Bank.Source)
	}
	switch c.Scores.Driver {
	case ScoresMemory:
	case ScoresFile, ScoresSQLite:
		if c.Scores.Path == "" {
			return errors.Errorf("scores.path is required for %s driver", c.Scores.Driver)
		}
	case ScoresRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for redis scores")
		}
	case ScoresPostgres:
		if c.Postgres.URL == "" {
			return errors.New("postgres.url is required for postgres scores")
		}
	default:
		return errors.Errorf("unknown scores.driver %q", c.Scores.Driver)
	}
	return nil
}

// Location resolves the schedule timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "schedule.timezone %q", c.Schedule.Timezone)
	}
	return loc, nil
}

// ChatToken reads the chat platform token from the configured environment variable.
func (c Config) ChatToken() string {
	return os.Getenv(c.Chat.TokenEnv)
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

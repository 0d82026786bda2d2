package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
chat:
  channel_id: "913783197748297800"
bank:
  files: [quiz_math.csv, quiz_english.csv]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Schedule.Hour != 15 || cfg.Schedule.Minute != 15 {
		t.Fatalf("expected 15:15 default, got %02d:%02d", cfg.Schedule.Hour, cfg.Schedule.Minute)
	}
	if cfg.Scores.Driver != ScoresFile || cfg.Chat.Driver != ChatWebsocket {
		t.Fatalf("unexpected drivers %q/%q", cfg.Scores.Driver, cfg.Chat.Driver)
	}
	if cfg.Schedule.StatePath != "data/last_fired.json" {
		t.Fatalf("unexpected fire state path %q", cfg.Schedule.StatePath)
	}
	if len(cfg.Bank.Files) != 2 {
		t.Fatalf("expected 2 bank files, got %v", cfg.Bank.Files)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if _, offset := time.Date(2026, 1, 1, 0, 0, 0, 0, loc).Zone(); offset != 9*60*60 {
		t.Fatalf("expected JST offset, got %d", offset)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"hour":       func(c *Config) { c.Schedule.Hour = 24 },
		"minute":     func(c *Config) { c.Schedule.Minute = -1 },
		"timezone":   func(c *Config) { c.Schedule.Timezone = "Mars/Olympus" },
		"channel":    func(c *Config) { c.Chat.ChannelID = " " },
		"chat":       func(c *Config) { c.Chat.Driver = "irc" },
		"scores":     func(c *Config) { c.Scores.Driver = "etcd" },
		"redis addr": func(c *Config) { c.Scores.Driver = ScoresRedis },
		"pg bank":    func(c *Config) { c.Bank.Source = BankPostgres },
		"token": func(c *Config) {
			c.Chat.Driver = ChatDiscord
			c.Chat.TokenEnv = "QUIZBOT_TEST_TOKEN_UNSET"
		},
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestChatTokenFromEnv(t *testing.T) {
	t.Setenv("QUIZBOT_TEST_TOKEN", "secret")
	cfg := validConfig()
	cfg.Chat.Driver = ChatDiscord
	cfg.Chat.TokenEnv = "QUIZBOT_TEST_TOKEN"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.ChatToken() != "secret" {
		t.Fatalf("expected token from env")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Second); got != time.Second {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("bogus", time.Second); got != time.Second {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
	if got := TTLDuration("90s", time.Second); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}

func validConfig() Config {
	cfg := Defaults()
	cfg.Chat.ChannelID = "general"
	cfg.Bank.Files = []string{"quiz.csv"}
	return cfg
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

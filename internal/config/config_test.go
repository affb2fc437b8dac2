package config

import (
	"strings"
	"testing"
)

const validYAML = `
telegram:
  api_id: 12345
  api_hash: abcdef
clients:
  - id: main
    kind: user
    phone: "+15551234567"
  - id: relaybot
    kind: bot
    token: "123:abc"
`

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Telegram.APIID != 12345 {
		t.Errorf("api_id = %d, want 12345", cfg.Telegram.APIID)
	}
	if len(cfg.Clients) != 2 {
		t.Fatalf("clients = %d, want 2", len(cfg.Clients))
	}
	if cfg.Clients[1].Kind != "bot" {
		t.Errorf("clients[1].kind = %q, want bot", cfg.Clients[1].Kind)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Telegram.SessionsDir != "sessions" {
		t.Errorf("sessions_dir = %q, want sessions", cfg.Telegram.SessionsDir)
	}
	if cfg.Database.Path != "semaphore.db" {
		t.Errorf("database.path = %q, want semaphore.db", cfg.Database.Path)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("api.port = %d, want 9000", cfg.API.Port)
	}
	if cfg.Logs.RetentionDays != 30 {
		t.Errorf("retention_days = %d, want 30", cfg.Logs.RetentionDays)
	}
	if cfg.Logs.CleanupCron != "0 2 * * *" {
		t.Errorf("cleanup_cron = %q, want daily 02:00", cfg.Logs.CleanupCron)
	}
}

func TestParse_MySQLDefaults(t *testing.T) {
	yaml := strings.Replace(validYAML, "clients:", "database:\n  host: db.local\nclients:", 1)
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Database.Path != "" {
		t.Errorf("path should stay empty when host is set, got %q", cfg.Database.Path)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("port = %d, want 3306", cfg.Database.Port)
	}
	if cfg.Database.Database != "semaphore" {
		t.Errorf("database = %q, want semaphore", cfg.Database.Database)
	}
}

func TestParse_MissingCredentials(t *testing.T) {
	_, err := Parse([]byte("telegram:\n  api_id: 0\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "api_id is required") {
		t.Errorf("error = %q, want api_id complaint", err)
	}
	if !strings.Contains(err.Error(), "api_hash is required") {
		t.Errorf("error = %q, want api_hash complaint", err)
	}
}

func TestParse_ClientValidation(t *testing.T) {
	yaml := `
telegram:
  api_id: 1
  api_hash: x
clients:
  - id: a
    kind: user
  - id: a
    kind: bot
  - id: b
    kind: alien
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"phone is required", "duplicated", `must be "user" or "bot"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestParse_BadYAML(t *testing.T) {
	if _, err := Parse([]byte("telegram: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

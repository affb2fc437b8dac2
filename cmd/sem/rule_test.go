package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a minimal config pointing at a temp SQLite file
// and returns the config path.
func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "semaphore.yaml")
	content := "telegram:\n  api_id: 1\n  api_hash: x\ndatabase:\n  path: " +
		filepath.Join(dir, "test.db") + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestDBInitCmd(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCmd(t, "db", "init", "-c", cfgPath)
	if err != nil {
		t.Fatalf("db init: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Migrated 6 tables") {
		t.Errorf("output = %q, want migration summary", out)
	}
}

func TestRuleAddListDisableDelete(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCmd(t, "db", "init", "-c", cfgPath); err != nil {
		t.Fatalf("db init: %v", err)
	}

	out, err := runCmd(t, "rule", "add", "-c", cfgPath,
		"--name", "news", "--source", "-100", "--target", "-200")
	if err != nil {
		t.Fatalf("rule add: %v\n%s", err, out)
	}
	if !strings.Contains(out, `Created rule "news"`) {
		t.Errorf("add output = %q", out)
	}

	out, err = runCmd(t, "rule", "list", "-c", cfgPath)
	if err != nil {
		t.Fatalf("rule list: %v", err)
	}
	if !strings.Contains(out, "news") || !strings.Contains(out, "active") {
		t.Errorf("list output = %q", out)
	}

	out, err = runCmd(t, "rule", "disable", "1", "-c", cfgPath)
	if err != nil {
		t.Fatalf("rule disable: %v", err)
	}
	if !strings.Contains(out, "inactive") {
		t.Errorf("disable output = %q", out)
	}

	if _, err = runCmd(t, "rule", "delete", "1", "-c", cfgPath); err != nil {
		t.Fatalf("rule delete: %v", err)
	}
	out, _ = runCmd(t, "rule", "list", "-c", cfgPath)
	if !strings.Contains(out, "No rules defined") {
		t.Errorf("list after delete = %q", out)
	}
}

func TestRuleAdd_RequiresFlags(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCmd(t, "rule", "add", "-c", cfgPath, "--name", "x"); err == nil {
		t.Error("missing required flags should fail")
	}
}

func TestLogsCmd_Empty(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCmd(t, "db", "init", "-c", cfgPath); err != nil {
		t.Fatalf("db init: %v", err)
	}
	out, err := runCmd(t, "logs", "-c", cfgPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "0 of 0 entries") {
		t.Errorf("logs output = %q", out)
	}
}

func TestClientListCmd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "semaphore.yaml")
	content := `
telegram:
  api_id: 1
  api_hash: x
clients:
  - id: main
    kind: user
    phone: "+1555"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	out, err := runCmd(t, "client", "list", "-c", cfgPath)
	if err != nil {
		t.Fatalf("client list: %v", err)
	}
	if !strings.Contains(out, "main") || !strings.Contains(out, "+1555") {
		t.Errorf("client list output = %q", out)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSchema = `
devices?:   int & >0
duration_s?: int & >0
tx_mode?:   "ack" | "nack"
payload_bytes?: int & >0
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "study.yaml", "devices: 50\ntx_mode: ack\n")
	schemaPath := writeFile(t, dir, "study.cue", testSchema)

	cfg, err := Load(cfgPath, schemaPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Devices != 50 {
		t.Errorf("Devices = %d, want 50", cfg.Devices)
	}
	if !cfg.AckMode() {
		t.Error("AckMode() = false, want true for tx_mode: ack")
	}
	// Untouched fields keep the reference study defaults.
	if cfg.PayloadBytes != 51 || cfg.Gateways != 1 {
		t.Errorf("defaults not applied: payload=%d gateways=%d", cfg.PayloadBytes, cfg.Gateways)
	}
	if cfg.IMRDeadline() != 60*time.Second || cfg.PCCDeadline() != time.Second {
		t.Errorf("deadlines = %v/%v, want 60s/1s", cfg.IMRDeadline(), cfg.PCCDeadline())
	}
	if cfg.Duration() != 24*time.Hour {
		t.Errorf("Duration() = %v, want 24h", cfg.Duration())
	}
}

func TestLoadRejectsSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "study.cue", testSchema)

	cases := map[string]string{
		"zero devices": "devices: 0\n",
		"bad tx mode":  "tx_mode: maybe\n",
	}
	for name, yaml := range cases {
		cfgPath := writeFile(t, dir, "bad.yaml", yaml)
		if _, err := Load(cfgPath, schemaPath); err == nil {
			t.Errorf("%s: Load accepted invalid config", name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "study.cue", testSchema)
	if _, err := Load(filepath.Join(dir, "absent.yaml"), schemaPath); err == nil {
		t.Error("Load accepted a missing config file")
	}
}

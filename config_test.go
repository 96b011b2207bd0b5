package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Server.TemplatesDir != "templates" || cfg.Server.ChartSize != 200 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if !cfg.Tracking.Enabled || cfg.Tracking.RetentionMonths != 12 {
		t.Errorf("tracking = %+v", cfg.Tracking)
	}
	if cfg.Contact.SMTPHost != "smtp.gmail.com" || cfg.Contact.SMTPPort != "587" {
		t.Errorf("contact = %+v", cfg.Contact)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte("server:\n  port: \"7000\"\n  chart_size: 320\ntracking:\n  enabled: false\ncontact:\n  telegram_chat_id: 12345\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "7000" || cfg.Server.ChartSize != 320 || cfg.Tracking.Enabled {
		t.Errorf("config file not applied: %+v %+v", cfg.Server, cfg.Tracking)
	}
	if cfg.Contact.TelegramChatID != 12345 {
		t.Errorf("telegram chat id = %d", cfg.Contact.TelegramChatID)
	}

	t.Setenv("PORT", "7100")
	t.Setenv("SMTP_USER", "me@example.com")
	t.Setenv("PORTFOLIO_LOG_LEVEL", "debug")
	cfg, err = LoadConfig(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "7100" {
		t.Errorf("PORT env not applied: %s", cfg.Server.Port)
	}
	if cfg.Contact.SMTPUser != "me@example.com" || cfg.Contact.ToEmail != "me@example.com" {
		t.Errorf("smtp user/to = %s/%s", cfg.Contact.SMTPUser, cfg.Contact.ToEmail)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %s", cfg.Log.Level)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("port", "", "")
	if err := flags.Parse([]string{"--port", "7200"}); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(flags)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "7200" {
		t.Errorf("flag not applied: %s", cfg.Server.Port)
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	if err := flags.Parse([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(flags); err == nil {
		t.Error("an explicit config file that does not exist should be an error")
	}
}

package config

import (
	"os"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("REDIS_HOST", "localhost")
	os.Setenv("REDIS_PORT", "6379")
	os.Setenv("SERVER_PORT", "4100")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Redis.Host == "" || cfg.Server.Port != "4100" {
		t.Fatalf("unexpected config values: %+v", cfg)
	}
	if cfg.Sync.SaveAckDelay <= 0 || cfg.Sync.AutosaveInterval <= 0 {
		t.Fatalf("sync defaults not applied: %+v", cfg.Sync)
	}
	if cfg.Sync.DefaultDocTitle == "" {
		t.Fatalf("default document title should have a default")
	}
}

package config

import (
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("STORAGE_PATH", "")
	t.Setenv("IDLE_CHECK_INTERVAL", "")
	t.Setenv("METRICS_ADDR", "")
	t.Setenv("SILENT", "")
	t.Setenv("DEBUG", "")

	cfg, err := New()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoragePath != "datastore.json" {
		t.Fatalf("StoragePath = %q, want datastore.json", cfg.StoragePath)
	}
	if cfg.IdleCheckInterval != 300*time.Second {
		t.Fatalf("IdleCheckInterval = %v, want 300s", cfg.IdleCheckInterval)
	}
	if cfg.Silent || cfg.Debug {
		t.Fatal("Silent and Debug should default to false")
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := New(); err == nil {
		t.Fatal("expected an error without DISCORD_TOKEN")
	}
}

func TestNewIdleInterval(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{raw: "30", want: 30 * time.Second},
		{raw: "1", want: time.Second},
		{raw: "0", wantErr: true},
		{raw: "-5", wantErr: true},
		{raw: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Setenv("IDLE_CHECK_INTERVAL", tt.raw)
		cfg, err := New()
		if tt.wantErr {
			if err == nil {
				t.Errorf("IDLE_CHECK_INTERVAL=%q: expected an error", tt.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("IDLE_CHECK_INTERVAL=%q: %v", tt.raw, err)
			continue
		}
		if cfg.IdleCheckInterval != tt.want {
			t.Errorf("IDLE_CHECK_INTERVAL=%q: got %v, want %v", tt.raw, cfg.IdleCheckInterval, tt.want)
		}
	}
}

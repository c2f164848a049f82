package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRejectsBrokenConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero news decay", func(c *Config) { c.NewsDecayRate = 0 }},
		{"news decay above one", func(c *Config) { c.NewsDecayRate = 1.5 }},
		{"zero scandal decay", func(c *Config) { c.ScandalDecayRate = 0 }},
		{"zero scandal interval", func(c *Config) { c.ScandalDecayInterval = 0 }},
		{"zero campaign duration", func(c *Config) { c.CampaignDurationTurns = 0 }},
		{"inverted boost bounds", func(c *Config) { c.CampaignBoostMin = 6; c.CampaignBoostMax = 2 }},
		{"turnout above one", func(c *Config) { c.DefaultBaseTurnout = 1.1 }},
		{"negative turnout", func(c *Config) { c.DefaultBaseTurnout = -0.2 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := "magnitude_scalar: 8\ncampaign_duration_turns: 6\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MagnitudeScalar != 8 {
		t.Fatalf("magnitude scalar = %f, want 8", cfg.MagnitudeScalar)
	}
	if cfg.CampaignDurationTurns != 6 {
		t.Fatalf("campaign duration = %d, want 6", cfg.CampaignDurationTurns)
	}
	// Untouched fields keep their defaults.
	if cfg.NewsDecayRate != Default().NewsDecayRate {
		t.Fatalf("news decay = %f, want default", cfg.NewsDecayRate)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("news_decay_rate: 2.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for news_decay_rate 2.0")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

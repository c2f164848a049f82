// Package tuning holds the simulation constants that shape reputation
// dynamics. Values load from a YAML file so a GM can rebalance a session
// without a rebuild; Default returns the shipped baseline.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of tunable simulation constants.
type Config struct {
	// Bill actor role weights.
	ProposerWeight float64 `yaml:"proposer_weight"`
	YesVoteWeight  float64 `yaml:"yes_vote_weight"`
	NoVoteWeight   float64 `yaml:"no_vote_weight"`
	AbstainWeight  float64 `yaml:"abstain_weight"`

	// MagnitudeScalar converts an alignment score in [-1,1] into
	// approval points.
	MagnitudeScalar float64 `yaml:"magnitude_scalar"`

	// Decaying-effect handling.
	NewsDecayRate        float64 `yaml:"news_decay_rate"`         // fraction removed per turn
	ScandalDecayRate     float64 `yaml:"scandal_decay_rate"`      // fraction removed per decay step
	ScandalDecayInterval int     `yaml:"scandal_decay_interval"`  // turns between scandal decay steps
	DecayThreshold       float64 `yaml:"decay_threshold"`         // residual below this is dropped

	// Campaigns.
	CampaignDurationTurns int     `yaml:"campaign_duration_turns"`
	CampaignCostCurrency  int64   `yaml:"campaign_cost_currency"`
	CampaignCostAP        int     `yaml:"campaign_cost_ap"`
	CampaignBoostMin      float64 `yaml:"campaign_boost_min"`
	CampaignBoostMax      float64 `yaml:"campaign_boost_max"`

	// Endorsements.
	EndorsementCostAP int `yaml:"endorsement_cost_ap"`

	// Elections.
	DefaultBaseTurnout float64 `yaml:"default_base_turnout"`

	// Real-time ticker.
	TurnIntervalSeconds int `yaml:"turn_interval_seconds"`
}

// Default returns the baseline constants the engine ships with.
func Default() Config {
	return Config{
		ProposerWeight:        1.0,
		YesVoteWeight:         0.4,
		NoVoteWeight:          -0.2,
		AbstainWeight:         0.0,
		MagnitudeScalar:       5.0,
		NewsDecayRate:         0.20,
		ScandalDecayRate:      0.25,
		ScandalDecayInterval:  1,
		DecayThreshold:        0.1,
		CampaignDurationTurns: 12,
		CampaignCostCurrency:  100,
		CampaignCostAP:        1,
		CampaignBoostMin:      1,
		CampaignBoostMax:      5,
		EndorsementCostAP:     1,
		DefaultBaseTurnout:    0.5,
		TurnIntervalSeconds:   60,
	}
}

// Load reads a YAML config file. Fields omitted from the file keep their
// Default value.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("tuning: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects configs that would break engine invariants.
func (c Config) Validate() error {
	if c.NewsDecayRate <= 0 || c.NewsDecayRate > 1 {
		return fmt.Errorf("tuning: news_decay_rate %.3f outside (0,1]", c.NewsDecayRate)
	}
	if c.ScandalDecayRate <= 0 || c.ScandalDecayRate > 1 {
		return fmt.Errorf("tuning: scandal_decay_rate %.3f outside (0,1]", c.ScandalDecayRate)
	}
	if c.ScandalDecayInterval < 1 {
		return fmt.Errorf("tuning: scandal_decay_interval %d must be >= 1", c.ScandalDecayInterval)
	}
	if c.CampaignDurationTurns < 1 {
		return fmt.Errorf("tuning: campaign_duration_turns %d must be >= 1", c.CampaignDurationTurns)
	}
	if c.CampaignBoostMin > c.CampaignBoostMax {
		return fmt.Errorf("tuning: campaign boost bounds inverted [%.1f, %.1f]", c.CampaignBoostMin, c.CampaignBoostMax)
	}
	if c.DefaultBaseTurnout < 0 || c.DefaultBaseTurnout > 1 {
		return fmt.Errorf("tuning: default_base_turnout %.3f outside [0,1]", c.DefaultBaseTurnout)
	}
	return nil
}

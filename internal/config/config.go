// Package config loads the vitality TOML configuration and turns it into
// engine settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/abhisek/vitality/internal/effort"
	"github.com/abhisek/vitality/internal/energy"
	"github.com/abhisek/vitality/internal/logging"
	"github.com/abhisek/vitality/internal/progression"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/vitality"
)

// Config is the on-disk configuration.
type Config struct {
	// DBPath is the sqlite database file. Empty uses the default data dir.
	DBPath string `toml:"db_path"`
	// Timezone names the IANA zone that defines calendar days.
	Timezone string `toml:"timezone"`
	// RewardTable is an optional JSON reward table overlaying the defaults.
	RewardTable string `toml:"reward_table"`

	CatchUpOnAccess   bool `toml:"catch_up_on_access"`
	SnapshotRetention int  `toml:"snapshot_retention"`
	WindowDays        int  `toml:"window_days"`
	// RankMilestones awards a milestone activity on every rank-up.
	RankMilestones bool `toml:"rank_milestones"`

	Log       logging.Config  `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Capacity  CapacityConfig  `toml:"capacity"`
	Energy    EnergyConfig    `toml:"energy"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr           string        `toml:"addr"`
	Metrics        bool          `toml:"metrics"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// SchedulerConfig configures the background tick driver.
type SchedulerConfig struct {
	Enabled bool `toml:"enabled"`
	// Spec is a cron expression (with optional seconds field).
	Spec string `toml:"spec"`
}

// CapacityConfig tunes the capacity and burnout state machine.
type CapacityConfig struct {
	EffortTiers       []vitality.EffortTier   `toml:"effort_tiers"`
	ImbalanceRatio    float64                 `toml:"imbalance_ratio"`
	ImbalanceDecay    int                     `toml:"imbalance_decay"`
	NeglectDays       int                     `toml:"neglect_days"`
	NeglectDecay      int                     `toml:"neglect_decay"`
	RecoveryTiers     []vitality.RecoveryTier `toml:"recovery_tiers"`
	BurnoutThreshold  int                     `toml:"burnout_threshold"`
	BurnoutEntryDays  int                     `toml:"burnout_entry_days"`
	BurnoutEfficiency float64                 `toml:"burnout_efficiency"`
	BandEfficiency    map[string]float64      `toml:"band_efficiency"`
}

// EnergyConfig tunes the energy cap policy.
type EnergyConfig struct {
	Steps []energy.Step `toml:"steps"`
}

// DefaultConfig returns the standard balance, serving on localhost.
func DefaultConfig() Config {
	rules := vitality.DefaultRules()
	caps := energy.DefaultCapPolicy()

	bands := make(map[string]float64, len(rules.BandEfficiency))
	for b, m := range rules.BandEfficiency {
		bands[string(b)] = m.Float()
	}

	return Config{
		Timezone:          "UTC",
		CatchUpOnAccess:   true,
		SnapshotRetention: 50,
		WindowDays:        effort.DefaultWindowDays,
		RankMilestones:    true,
		Log:               logging.DefaultConfig(),
		Server: ServerConfig{
			Addr:           "127.0.0.1:8420",
			Metrics:        true,
			RequestTimeout: 30 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled: true,
			Spec:    "5 0 * * *",
		},
		Capacity: CapacityConfig{
			EffortTiers:       rules.EffortTiers,
			ImbalanceRatio:    float64(rules.ImbalancePermille) / 1000,
			ImbalanceDecay:    rules.ImbalanceDecay,
			NeglectDays:       int(rules.NeglectAfter / (24 * time.Hour)),
			NeglectDecay:      rules.NeglectDecay,
			RecoveryTiers:     rules.RecoveryTiers,
			BurnoutThreshold:  rules.BurnoutThreshold,
			BurnoutEntryDays:  rules.BurnoutEntryDays,
			BurnoutEfficiency: rules.BurnoutEfficiency.Float(),
			BandEfficiency:    bands,
		},
		Energy: EnergyConfig{
			Steps: caps.Steps,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// optional is true. Unknown keys are rejected.
func Load(path string, optional bool) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ApplyEnv overrides settings from VITALITY_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("VITALITY_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("VITALITY_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("VITALITY_REWARD_TABLE"); v != "" {
		c.RewardTable = v
	}
	if v := os.Getenv("VITALITY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("VITALITY_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("VITALITY_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("VITALITY_TICK_SPEC"); v != "" {
		c.Scheduler.Spec = v
	}
	if v := os.Getenv("VITALITY_CATCH_UP_ON_ACCESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VITALITY_CATCH_UP_ON_ACCESS: %w", err)
		}
		c.CatchUpOnAccess = b
	}
	return nil
}

// Validate checks settings that can be verified without building the
// engine config.
func (c Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	if c.WindowDays <= 0 {
		return errors.New("window_days must be positive")
	}
	if c.SnapshotRetention < 0 {
		return errors.New("snapshot_retention must not be negative")
	}
	if c.Scheduler.Enabled && c.Scheduler.Spec == "" {
		return errors.New("scheduler.spec is required when the scheduler is enabled")
	}
	if c.Server.RequestTimeout < 0 {
		return errors.New("server.request_timeout must not be negative")
	}
	for name := range c.Capacity.BandEfficiency {
		if !validBand(name) {
			return fmt.Errorf("capacity.band_efficiency: unknown band %q", name)
		}
	}
	if c.Capacity.NeglectDays <= 0 {
		return errors.New("capacity.neglect_days must be positive")
	}
	return nil
}

// Rules returns the state machine rules described by the capacity section.
func (c Config) Rules() vitality.Rules {
	cc := c.Capacity
	bands := make(map[vitality.Band]rewards.Multiplier, len(cc.BandEfficiency))
	for name, f := range cc.BandEfficiency {
		bands[vitality.Band(name)] = rewards.MultiplierFromFloat(f)
	}
	return vitality.Rules{
		EffortTiers:       cc.EffortTiers,
		ImbalancePermille: int(rewards.MultiplierFromFloat(cc.ImbalanceRatio)),
		ImbalanceDecay:    cc.ImbalanceDecay,
		NeglectAfter:      time.Duration(cc.NeglectDays) * 24 * time.Hour,
		NeglectDecay:      cc.NeglectDecay,
		RecoveryTiers:     cc.RecoveryTiers,
		BurnoutThreshold:  cc.BurnoutThreshold,
		BurnoutEntryDays:  cc.BurnoutEntryDays,
		BurnoutEfficiency: rewards.MultiplierFromFloat(cc.BurnoutEfficiency),
		BandEfficiency:    bands,
	}
}

// Engine builds the progression engine config, loading the reward table
// file if one is configured.
func (c Config) Engine() (progression.Config, error) {
	if err := c.Validate(); err != nil {
		return progression.Config{}, err
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return progression.Config{}, fmt.Errorf("timezone: %w", err)
	}

	table := rewards.DefaultTable()
	if c.RewardTable != "" {
		if table, err = rewards.LoadTable(c.RewardTable); err != nil {
			return progression.Config{}, err
		}
	}

	pc := progression.Config{
		Table:             table,
		Rules:             c.Rules(),
		CapPolicy:         energy.CapPolicy{Steps: c.Energy.Steps},
		WindowDays:        c.WindowDays,
		Location:          loc,
		CatchUpOnAccess:   c.CatchUpOnAccess,
		SnapshotRetention: c.SnapshotRetention,
	}
	if err := pc.Validate(); err != nil {
		return progression.Config{}, err
	}
	return pc, nil
}

func validBand(name string) bool {
	for _, b := range vitality.AllBands() {
		if string(b) == name {
			return true
		}
	}
	return false
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/vitality/internal/config"
	"github.com/abhisek/vitality/internal/logging"
	"github.com/abhisek/vitality/internal/milestones"
	"github.com/abhisek/vitality/internal/progression"
	"github.com/abhisek/vitality/internal/store"
)

const defaultConfigFile = "vitality.toml"

// runtime holds the dependencies shared by every command.
type runtime struct {
	cfg    config.Config
	log    *logrus.Logger
	store  *store.Store
	engine *progression.Engine
}

// loadConfig reads --config (required to exist) or ./vitality.toml (optional),
// then applies environment overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	optional := path == ""
	if optional {
		path = defaultConfigFile
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openRuntime opens the store and builds the engine.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	engineCfg, err := cfg.Engine()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	deps := progression.Deps{
		Snapshots: st.SnapshotRepo(),
		Events:    st.EventRepo(),
		Seasons:   progression.CalendarSeasons{Location: engineCfg.Location},
		Logger:    log,
	}
	var ms *milestones.Service
	if cfg.RankMilestones {
		ms = milestones.NewService(st.EventRepo(), log)
		deps.Milestones = ms
	}
	engine, err := progression.NewEngine(engineCfg, deps)
	if err != nil {
		st.Close()
		return nil, err
	}
	if ms != nil {
		ms.Bind(engine)
	}

	log.WithField("db", dbPath).Debug("runtime ready")
	return &runtime{cfg: cfg, log: log, store: st, engine: engine}, nil
}

func (r *runtime) Close() error {
	return r.store.Close()
}

// evalTime returns --at if set, otherwise the current time.
func evalTime(cmd *cobra.Command) (time.Time, error) {
	at, _ := cmd.Flags().GetString("at")
	if at == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: %w", at, err)
	}
	return t, nil
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

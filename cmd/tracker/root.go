package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/baiirun/tracker/internal/config"
	"github.com/baiirun/tracker/internal/db"
	"github.com/baiirun/tracker/internal/history"
	"github.com/baiirun/tracker/internal/manager"
)

// app is the state shared by every command in one invocation: the loaded
// config, the open database and a manager restored from its snapshot.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
	asJSON  bool

	cfg    *config.Config
	logger *slog.Logger
	db     *db.DB
	mgr    *manager.Manager

	// saveMu orders snapshot-then-save so a stale snapshot is never
	// written after a newer one.
	saveMu sync.Mutex
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "tracker",
		Short: "Track tasks, epics and subtasks",
		Long: `A CLI for tracking tasks and epics. An epic's status and time window are
derived from its subtasks. State is kept in a local SQLite database.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, toml or json)")
	flags.String("db", "", "database path (default ~/.tracker/tracker.db)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.asJSON, "json", false, "output as JSON")
	_ = a.v.BindPFlag(config.KeyDBPath, flags.Lookup("db"))

	root.AddCommand(
		newAddCmd(a),
		newShowCmd(a),
		newListCmd(a),
		newSubtasksCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newClearCmd(a),
		newPrioritizedCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
		newTUICmd(a),
	)
	return root
}

// open loads config, opens the database and restores the manager.
func (a *app) open() error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	tracker, err := history.New(cfg.History.Policy, cfg.History.Capacity)
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	if err := database.Init(); err != nil {
		_ = database.Close()
		return err
	}
	snap, err := database.Load()
	if err != nil {
		_ = database.Close()
		return err
	}

	mgr := manager.New(manager.WithHistory(tracker), manager.WithFirstID(cfg.IDs.Start))
	if err := mgr.Restore(snap); err != nil {
		_ = database.Close()
		return fmt.Errorf("failed to restore %s: %w", cfg.DB.Path, err)
	}
	a.logger.Debug("loaded snapshot", "path", cfg.DB.Path, "items", len(snap.Items), "history", len(snap.History))

	a.db, a.mgr = database, mgr
	return nil
}

// persist writes the manager's current state back to the database.
func (a *app) persist() error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	snap := a.mgr.Snapshot()
	if err := a.db.Save(snap); err != nil {
		return err
	}
	a.logger.Debug("saved snapshot", "items", len(snap.Items), "history", len(snap.History))
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.persist()
	if cerr := a.db.Close(); err == nil {
		err = cerr
	}
	a.db = nil
	return err
}

package main

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/nuvl/nuvlworld/world/annotations"
	"github.com/nuvl/nuvlworld/world/config"
	"github.com/nuvl/nuvlworld/world/logger"
	"github.com/nuvl/nuvlworld/world/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Global flag values
var (
	flagConfig  string
	flagVerbose bool
)

// Set by PersistentPreRunE
var (
	cfg         *config.Config
	cfgFileUsed string
	loc         *time.Location
)

// loaded is the store opened by openStore, closed after the command runs
var loaded *store.Store

var rootCmd = &cobra.Command{
	Use:   "nuvl",
	Short: "Browse a calendar of events stored as Scheme facts",
	Long: `nuvl loads triples such as (startTime e1 1700000000000) from .scm fact
files, optionally attaches labels from a wikidata TSV file, and shows the
events that fall on each calendar day in a time zone.

Configuration hierarchy (highest to lowest priority):
  1. CLI flags
  2. Environment variables (NUVL_*)
  3. Config file (~/.nuvl/config.yaml)
  4. Defaults`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.NewViper(flagConfig)
		if err != nil {
			return err
		}
		cfgFileUsed = v.ConfigFileUsed()
		if err := bindFlags(v, cmd); err != nil {
			return err
		}
		if cfg, err = config.Load(v); err != nil {
			return err
		}
		if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
			return err
		}
		loc, err = cfg.Location()
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default: $HOME/.nuvl/config.yaml)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "print load and index events")
	pf.StringSlice("facts", nil, "fact files to load, in order")
	pf.String("descriptions", "", "TSV description file, loaded after the facts")
	pf.String("timezone", "", "IANA time zone for calendar days (default: Local)")
	pf.String("data-dir", "", "directory that relative fact and description paths are resolved against")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(monthCmd)
	rootCmd.AddCommand(factsCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(frameworkCmd)
	rootCmd.AddCommand(checkCmd)
}

// flagKeys maps persistent flags to the config keys they override
var flagKeys = map[string]string{
	"facts":        "facts",
	"descriptions": "descriptions",
	"timezone":     "timezone",
	"data-dir":     "data_dir",
	"log-level":    "log.level",
}

// bindFlags makes flags the user actually set take precedence over the
// environment and the config file
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind --%s", name)
		}
	}
	return nil
}

// openStore builds the store selected by the configuration and loads every
// configured source into it
func openStore() (*store.Store, error) {
	if loaded != nil {
		return loaded, nil
	}

	opts := store.Options{
		FactProgress:        cfg.Progress.Facts,
		DescriptionProgress: cfg.Progress.Descriptions,
	}
	if flagVerbose {
		opts.Handler = annotations.ConsoleHandler()
	}
	if cfg.DescriptionsBackend == config.BackendBadger {
		table, err := store.OpenBadgerDescriptions(cfg.DescriptionsDir)
		if err != nil {
			return nil, err
		}
		opts.Descriptions = table
	}

	s := store.NewWithOptions(opts)
	if err := s.LoadSources(cfg.FactPaths(), cfg.DescriptionsPath()); err != nil {
		return nil, errors.CombineErrors(err, s.Close())
	}
	loaded = s
	return s, nil
}

// closeStore releases the store opened by openStore, if any. It also runs
// when a command fails, since cobra skips post-run hooks then.
func closeStore() error {
	defer logger.Sync()
	if loaded == nil {
		return nil
	}
	err := loaded.Close()
	loaded = nil
	return err
}

package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crosswarped.com/ravengen/internal/config"
)

// app carries what every subcommand needs once the root command has loaded it.
type app struct {
	cfgFile  string
	logLevel string
	timeout  time.Duration

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ravengen",
		Short:         "ravengen - generate abstract reasoning matrix samples",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Minute, "abort after this long")

	root.AddCommand(newInitCmd())
	root.AddCommand(newGenerateCmd(a))
	root.AddCommand(newRulesCmd(a))
	root.AddCommand(newPreviewCmd(a))
	return root
}

func (a *app) load() error {
	a.cfg = config.Default()
	if a.cfgFile != "" {
		c, err := config.Load(a.cfgFile)
		if err != nil {
			return err
		}
		a.cfg = c
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	logger, err := a.cfg.Log.Logger()
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

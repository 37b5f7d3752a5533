// Package cli implements the leadlens command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jainprashuk/LeadLens/internal/config"
	"github.com/Jainprashuk/LeadLens/internal/lead"
	"github.com/Jainprashuk/LeadLens/internal/logger"
	"github.com/Jainprashuk/LeadLens/internal/sitecheck"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// app carries state shared by every subcommand once the root has loaded it.
type app struct {
	cfg      config.Config
	log      logger.Logger
	logLevel string
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{log: logger.NewNop()}

	root := &cobra.Command{
		Use:          "leadlens",
		Short:        "Score and classify map business listings as sales leads",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(
		newRunCommand(a),
		newPlanCommand(a),
		newScoreCommand(a),
		newCheckSiteCommand(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "leadlens version %s\n", Version)
			},
		},
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logger setup failed: %v\n", err)
		log = logger.NewNop()
	}
	a.cfg, a.log = cfg, log
	return nil
}

// checker builds the site probe from configuration.
func (a *app) checker(enabled bool) sitecheck.Checker {
	if !enabled {
		return sitecheck.Disabled{}
	}
	opts := []sitecheck.Option{
		sitecheck.WithUserAgent(a.cfg.SiteCheckUA),
		sitecheck.WithMaxBytes(a.cfg.SiteCheckMaxBytes),
		sitecheck.WithRateLimit(a.cfg.SiteCheckRate),
		sitecheck.WithLogger(a.log),
	}
	if a.cfg.SiteCheckDNS {
		opts = append(opts, sitecheck.WithResolver(sitecheck.NewDNSResolver(a.cfg.DNSServers...)))
	}
	return sitecheck.New(opts...)
}

func (a *app) classifier(siteCheck bool) *lead.Classifier {
	return lead.NewClassifier(lead.NewScorer(
		lead.WithChecker(a.checker(siteCheck)),
		lead.WithSiteTimeout(a.cfg.SiteCheckTimeout),
		lead.WithScorerLogger(a.log),
	))
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Jainprashuk/LeadLens/internal/collector"
	"github.com/Jainprashuk/LeadLens/internal/jobs"
	"github.com/Jainprashuk/LeadLens/internal/lead"
	"github.com/Jainprashuk/LeadLens/internal/logger"
	"github.com/Jainprashuk/LeadLens/internal/pipeline"
	"github.com/Jainprashuk/LeadLens/internal/store"
)

type jobFlags struct {
	config  string
	search  string
	query   string
	city    string
	scrolls int
	output  string
	input   string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "searches.json", "JSON file with search jobs")
	fl.StringVar(&f.search, "search", "", "full search text (used when no job file is loaded)")
	fl.StringVar(&f.query, "query", "", "search query, e.g. 'tiles shop'")
	fl.StringVar(&f.city, "city", "", "city narrowing the search")
	fl.IntVar(&f.scrolls, "scrolls", jobs.DefaultScrolls, "result-panel scrolls per search")
	fl.StringVar(&f.output, "output", "", "output path (.csv, .json or .xlsx); overrides OUTPUT_FILE")
	fl.StringVar(&f.input, "input", "", "collected listings file for jobs that name none")
}

// load returns the job file's jobs, falling back to a single job built from
// flags when the file is missing, empty or unreadable.
func (f *jobFlags) load(log logger.Logger) ([]jobs.Job, string) {
	list, err := jobs.Load(f.config)
	if err != nil && !errors.Is(err, jobs.ErrNoJobs) {
		log.Warn("job file unreadable, using flags", logger.String("config", f.config), logger.Error(err))
	}
	source := f.config
	if len(list) == 0 {
		list = []jobs.Job{jobs.FromFlags(f.search, f.query, f.city, f.scrolls, f.output, f.input)}
		source = "flags"
	}
	for i := range list {
		if list[i].Input == "" {
			list[i].Input = f.input
		}
		if list[i].Scrolls <= 0 {
			list[i].Scrolls = f.scrolls
		}
	}
	return list, source
}

func newRunCommand(a *app) *cobra.Command {
	var (
		jf          jobFlags
		debug       bool
		workers     int
		noSiteCheck bool
		useStore    bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Collect, score and export leads for every search job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			list, source := jf.load(a.log)
			a.log.Info("loaded jobs", logger.Int("jobs", len(list)), logger.String("source", source))

			output := jf.output
			if output == "" {
				output = a.cfg.OutputFile
			}
			if workers <= 0 {
				workers = a.cfg.Workers
			}

			var opts []pipeline.Option
			opts = append(opts, pipeline.WithLogger(a.log))
			if useStore || a.cfg.StoreEnabled {
				db, err := store.Open(ctx, a.cfg.DSN(), a.log)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.EnsureSchema(ctx); err != nil {
					return err
				}
				opts = append(opts, pipeline.WithSaver(db))
			}

			runner := pipeline.New(pipeline.Options{
				DataDir:           a.cfg.DataDir,
				Output:            output,
				Workers:           workers,
				MinAggregateScore: a.cfg.MinAggregateScore,
				Debug:             debug,
			},
				collector.FileCollector{Log: a.log},
				a.classifier(a.cfg.SiteCheckEnabled && !noSiteCheck),
				opts...,
			)

			summary, err := runner.Run(ctx, list)
			if err != nil {
				return err
			}
			printSummary(cmd, summary)
			if summary.FailedJobs == summary.Jobs {
				return fmt.Errorf("all %d jobs failed", summary.Jobs)
			}
			return nil
		},
	}
	jf.register(cmd)
	cmd.Flags().BoolVar(&debug, "debug", false, "write debug_<output>.json with website candidate reasons")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent classifications (default WORKERS)")
	cmd.Flags().BoolVar(&noSiteCheck, "no-site-check", false, "skip website probes")
	cmd.Flags().BoolVar(&useStore, "store", false, "upsert leads into MySQL")
	return cmd
}

func printSummary(cmd *cobra.Command, s pipeline.Summary) {
	out := cmd.OutOrStdout()
	for _, path := range s.Outputs {
		fmt.Fprintf(out, "Leads saved to %s\n", path)
	}
	fmt.Fprintf(out, "Summary: jobs=%d, failed=%d, leads=%d, disqualified=%d, high=%d, medium=%d, low=%d\n",
		s.Jobs, s.FailedJobs, s.Leads, s.Disqualified,
		s.Tiers[lead.CategoryHighPriority], s.Tiers[lead.CategoryMediumPriority], s.Tiers[lead.CategoryLowPriority])
	fmt.Fprintf(out, "Aggregated positive leads saved to %s (count=%d)\n", s.AggregatePath, s.AggregateLeads)
}

// Package pipeline runs search jobs end to end: collect, classify, write.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Jainprashuk/LeadLens/internal/collector"
	"github.com/Jainprashuk/LeadLens/internal/export"
	"github.com/Jainprashuk/LeadLens/internal/jobs"
	"github.com/Jainprashuk/LeadLens/internal/lead"
	"github.com/Jainprashuk/LeadLens/internal/logger"
	"github.com/Jainprashuk/LeadLens/internal/store"
)

const defaultWorkers = 5

// Options tune a Runner.
type Options struct {
	DataDir           string
	Output            string // CLI-wide output path, used by jobs without their own
	Workers           int
	MinAggregateScore int
	Debug             bool
}

// Summary totals one run.
type Summary struct {
	Jobs           int
	FailedJobs     int
	Leads          int
	Disqualified   int
	Tiers          map[lead.Category]int
	Outputs        []string
	AggregatePath  string
	AggregateLeads int
	Stored         int
}

// JobResult is the outcome of a single job.
type JobResult struct {
	Job    jobs.Job
	Output string
	Leads  []lead.Lead
	Stored int
}

// Runner drives jobs through a collector and classifier.
type Runner struct {
	opts       Options
	collector  collector.Collector
	classifier *lead.Classifier
	saver      store.Saver
	log        logger.Logger
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithSaver persists every job's leads.
func WithSaver(s store.Saver) Option { return func(r *Runner) { r.saver = s } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

// WithClock overrides the time used for generated output names.
func WithClock(now func() time.Time) Option { return func(r *Runner) { r.now = now } }

// New builds a Runner. A nil classifier scores without site probes.
func New(opts Options, c collector.Collector, cl *lead.Classifier, options ...Option) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if cl == nil {
		cl = lead.NewClassifier(nil)
	}
	r := &Runner{
		opts:       opts,
		collector:  c,
		classifier: cl,
		log:        logger.NewNop(),
		now:        time.Now,
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Run expands and executes jobs in order. A failing job is logged and
// skipped; the aggregate file is written from every successful job. The
// returned error is only set for empty input, cancellation or an aggregate
// write failure.
func (r *Runner) Run(ctx context.Context, raw []jobs.Job) (Summary, error) {
	expanded := jobs.Expand(raw)
	summary := Summary{Tiers: map[lead.Category]int{}}
	if len(expanded) == 0 {
		return summary, jobs.ErrNoJobs
	}

	var all []lead.Lead
	for i, job := range expanded {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Jobs++
		jobLog := r.log.With(logger.Int("job", i+1), logger.String("search", job.SearchQuery()))

		res, err := r.RunJob(ctx, job)
		if err != nil {
			summary.FailedJobs++
			jobLog.Error("job failed", logger.Error(err))
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			continue
		}

		summary.Outputs = append(summary.Outputs, res.Output)
		summary.Stored += res.Stored
		for _, l := range res.Leads {
			summary.Leads++
			if l.Classification.Category.Disqualified() {
				summary.Disqualified++
			}
			summary.Tiers[l.Classification.Category]++
		}
		all = append(all, res.Leads...)
		jobLog.Info("job summary",
			logger.String("output", res.Output),
			logger.Int("leads", len(res.Leads)),
			logger.Int("stored", res.Stored))
	}

	path, n, err := export.WriteAggregate(r.opts.DataDir, all, r.opts.MinAggregateScore)
	if err != nil {
		return summary, fmt.Errorf("write aggregate: %w", err)
	}
	summary.AggregatePath, summary.AggregateLeads = path, n

	r.log.Info("run summary",
		logger.Int("jobs", summary.Jobs),
		logger.Int("failed_jobs", summary.FailedJobs),
		logger.Int("leads", summary.Leads),
		logger.Int("disqualified", summary.Disqualified),
		logger.Int("high", summary.Tiers[lead.CategoryHighPriority]),
		logger.Int("medium", summary.Tiers[lead.CategoryMediumPriority]),
		logger.Int("low", summary.Tiers[lead.CategoryLowPriority]),
		logger.String("aggregate", path),
		logger.Int("aggregate_leads", n))
	return summary, nil
}

// RunJob collects, classifies and writes one already-expanded job.
func (r *Runner) RunJob(ctx context.Context, job jobs.Job) (JobResult, error) {
	res := JobResult{Job: job}
	if r.collector == nil {
		return res, collector.ErrNoInput
	}
	records, err := r.collector.Collect(ctx, job)
	if err != nil {
		return res, fmt.Errorf("collect: %w", err)
	}

	res.Leads, err = r.Classify(ctx, records)
	if err != nil {
		return res, err
	}

	res.Output = job.OutputPath(r.opts.DataDir, r.opts.Output, r.now())
	if err := export.WriteResults(res.Output, res.Leads); err != nil {
		return res, err
	}

	if r.opts.Debug {
		debugPath := export.DebugPath(r.opts.DataDir, res.Output)
		if err := export.WriteDebug(debugPath, records); err != nil {
			r.log.Warn("debug report failed", logger.String("path", debugPath), logger.Error(err))
		}
	}

	if r.saver != nil {
		n, err := r.saver.SaveLeads(ctx, job.SearchQuery(), res.Leads)
		if err != nil {
			r.log.Warn("store failed", logger.String("search", job.SearchQuery()), logger.Error(err))
		} else {
			res.Stored = n
		}
	}
	return res, nil
}

// Classify scores records on a bounded worker pool. Output order matches
// input order.
func (r *Runner) Classify(ctx context.Context, records []lead.Record) ([]lead.Lead, error) {
	out := make([]lead.Lead, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = lead.Lead{Record: rec, Classification: r.classifier.Classify(rec)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

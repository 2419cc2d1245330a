// Package controler sequences a download run: a discovery phase, a
// confirmation step and a transfer phase, each phase with its own
// reactor.Phase sharing one admission gate.
package controler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/archiver"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/discoverer"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/reactor"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
	"github.com/google/uuid"
)

// Options tunes a run
type Options struct {
	DryRun           bool
	OverwriteIfNewer bool
	MaxDepth         int
}

// Config holds the collaborators of a Controler
type Config struct {
	Env       *discoverer.Env
	Archiver  *archiver.Archiver
	Gate      *reactor.Gate
	Confirmer Confirmer
	Out       io.Writer
	Options   Options
}

// Controler drives one run through its states
type Controler struct {
	mu      sync.Mutex
	state   State
	history []State
	phase   *reactor.Phase

	runID     string
	env       *discoverer.Env
	archiver  *archiver.Archiver
	gate      *reactor.Gate
	confirmer Confirmer
	out       io.Writer
	opts      Options
	logger    *log.FieldedLogger
}

// New returns an idle Controler
func New(cfg Config) *Controler {
	runID := uuid.NewString()

	c := &Controler{
		state:     StateIdle,
		history:   []State{StateIdle},
		runID:     runID,
		env:       cfg.Env,
		archiver:  cfg.Archiver,
		gate:      cfg.Gate,
		confirmer: cfg.Confirmer,
		out:       cfg.Out,
		opts:      cfg.Options,
		logger: log.NewFieldedLogger(&log.Fields{
			"component": "controler",
			"run":       runID,
		}),
	}

	if c.confirmer == nil {
		c.confirmer = AutoConfirm(true)
	}
	if c.out == nil {
		c.out = os.Stdout
	}

	return c
}

// RunID identifies the run in logs
func (c *Controler) RunID() string {
	return c.runID
}

// RunDiscoveryPhase discovers every item below roots on a fresh phase and
// returns them once its barrier fired, with one error per failed branch.
// Items sharing a target path are kept once.
func (c *Controler) RunDiscoveryPhase(ctx context.Context, roots []discoverer.Node) ([]*models.Item, []error, error) {
	if err := c.transition(StateDiscoveryRunning); err != nil {
		return nil, nil, err
	}

	c.logger.Info("discovery started", "roots", len(roots))

	phase := c.startPhase("discovery")
	d := discoverer.New(c.env, discoverer.Options{MaxDepth: c.opts.MaxDepth})
	items, errs := d.Run(ctx, phase, roots)

	if err := c.transition(StateDiscoveryBarrier); err != nil {
		return nil, nil, err
	}

	items = c.dedupe(items)
	c.logger.Info("discovery finished", "items", len(items), "failures", len(errs), "units", phase.Forked())

	return items, errs, nil
}

// RunTransferPhase transfers items on a fresh phase and returns the summary
// once its barrier fired
func (c *Controler) RunTransferPhase(ctx context.Context, items []*models.Item, opts archiver.Options) (*models.Summary, error) {
	if err := c.transition(StateTransferRunning); err != nil {
		return nil, err
	}

	c.logger.Info("transfer started", "items", len(items))

	phase := c.startPhase("transfer")
	summary, err := c.archiver.Transfer(ctx, phase, items, opts)

	if terr := c.transition(StateTransferBarrier); terr != nil {
		return nil, terr
	}

	c.logger.Info("transfer finished", "downloaded", summary.Downloaded, "failed", len(summary.Failed))

	return summary, err
}

// Run performs a full run over roots. It returns ErrTerminalFailures when a
// discovery branch or an item failed.
func (c *Controler) Run(ctx context.Context, roots []discoverer.Node) (*Report, error) {
	items, errs, err := c.RunDiscoveryPhase(ctx, roots)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: c.runID, DiscoveryErrors: errs}

	if err := ctx.Err(); err != nil {
		c.transition(StateDone)
		return report, err
	}

	if err := c.transition(StateAwaitingConfirmation); err != nil {
		return report, err
	}

	plan := c.Plan(items)
	report.Plan = plan
	PrintPlan(c.out, plan, c.opts.DryRun)

	if c.opts.DryRun {
		if err := c.transition(StateDone); err != nil {
			return report, err
		}
		return report, report.Err()
	}

	proceed := true
	if len(plan.Pending) > 0 {
		proceed, err = c.confirmer.Confirm(ctx, plan)
		if err != nil {
			c.transition(StateDone)
			return report, fmt.Errorf("confirmation failed: %w", err)
		}
	}

	if !proceed {
		c.logger.Info("transfer declined")
		if err := c.transition(StateDone); err != nil {
			return report, err
		}
		return report, report.Err()
	}

	summary, err := c.RunTransferPhase(ctx, items, archiver.Options{OverwriteIfNewer: c.opts.OverwriteIfNewer})
	report.Summary = summary

	if terr := c.transition(StateDone); terr != nil {
		return report, terr
	}
	if err != nil {
		return report, err
	}

	PrintSummary(c.out, report)

	return report, report.Err()
}

func (c *Controler) dedupe(items []*models.Item) []*models.Item {
	seen := make(map[string]struct{}, len(items))
	unique := items[:0:0]

	for _, item := range items {
		if _, ok := seen[item.TargetPath]; ok {
			c.logger.Debug("duplicate item dropped", "path", item.TargetPath)
			continue
		}
		seen[item.TargetPath] = struct{}{}
		unique = append(unique, item)
	}

	return unique
}

// Report is the outcome of a run
type Report struct {
	RunID           string
	Plan            *Plan
	DiscoveryErrors []error
	Summary         *models.Summary
}

// Failures lists discovery and transfer failures
func (r *Report) Failures() []models.Failure {
	var failures []models.Failure

	for _, err := range r.DiscoveryErrors {
		path := "discovery"
		var unitErr *reactor.UnitError
		if errors.As(err, &unitErr) {
			path = unitErr.Unit
		}
		failures = append(failures, models.Failure{Path: path, Reason: err.Error()})
	}

	if r.Summary != nil {
		failures = append(failures, r.Summary.SortedFailures()...)
	}

	return failures
}

// Err returns ErrTerminalFailures if anything failed
func (r *Report) Err() error {
	if n := len(r.Failures()); n > 0 {
		return fmt.Errorf("%w: %d", ErrTerminalFailures, n)
	}
	return nil
}

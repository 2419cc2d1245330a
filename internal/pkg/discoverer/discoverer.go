// Package discoverer walks the remote content hierarchy and collects the
// downloadable leaves. Each container is expanded in its own unit of a
// reactor.Phase; children are forked, leaves are appended to a shared
// collection that is frozen once the phase drains.
package discoverer

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/ignore"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/reactor"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

// DefaultMaxDepth bounds the number of nested containers of a branch
const DefaultMaxDepth = 64

// Options configures a Discoverer
type Options struct {
	MaxDepth int
}

// Discoverer expands nodes and accumulates the discovered items
type Discoverer struct {
	env        *Env
	maxDepth   int
	collection *models.ItemCollection
	logger     *log.FieldedLogger
}

// New returns a Discoverer with an empty item collection
func New(env *Env, opts Options) *Discoverer {
	if env.Ignore == nil {
		env.Ignore = ignore.Nothing{}
	}
	if env.Logger == nil {
		env.Logger = log.NewFieldedLogger(&log.Fields{"component": "discoverer"})
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	return &Discoverer{
		env:        env,
		maxDepth:   maxDepth,
		collection: models.NewItemCollection(),
		logger:     env.Logger,
	}
}

// Run expands roots and everything below them on phase, then freezes the
// collection. It returns the items and one error per failed branch.
// A Discoverer runs once.
func (d *Discoverer) Run(ctx context.Context, phase *reactor.Phase, roots []Node) ([]*models.Item, []error) {
	if d.collection.Frozen() {
		return nil, []error{ErrAlreadyRun}
	}

	tasks := make([]reactor.Task, 0, len(roots))
	for _, root := range roots {
		tasks = append(tasks, reactor.Task{Name: root.Key(), Unit: d.Unit(root, nil)})
	}

	var errs []error
	if err := phase.Run(ctx, tasks...); err != nil {
		errs = append(errs, err)
	}

	d.logger.Debug("discovery drained", "phase", phase.Name(), "items", d.collection.Len())

	items := d.collection.Freeze()
	for _, unitErr := range phase.Errors() {
		errs = append(errs, unitErr)
	}

	return items, errs
}

// Unit returns the reactor unit discovering node below the given ancestors
func (d *Discoverer) Unit(node Node, ancestors []string) reactor.Unit {
	return func(ctx context.Context, phase *reactor.Phase) error {
		return d.Discover(ctx, phase, node, ancestors)
	}
}

// Discover expands node, forks one unit per child container on phase and
// appends the leaves to the collection.
func (d *Discoverer) Discover(ctx context.Context, phase *reactor.Phase, node Node, ancestors []string) error {
	key := node.Key()

	if slices.Contains(ancestors, key) {
		return fmt.Errorf("%w: %s", ErrCycle, key)
	}
	if len(ancestors) >= d.maxDepth {
		return fmt.Errorf("%w: %s at depth %d", ErrMaxDepth, key, len(ancestors))
	}

	if located, ok := node.(Located); ok {
		if dir := located.Dir(); dir != "" && d.env.Ignore.Matches(dir+string(filepath.Separator)) {
			d.logger.Debug("container ignored", "node", key, "dir", dir)
			return nil
		}
	}

	expansion, err := node.Expand(ctx, d.env)
	if err != nil {
		if optional, ok := node.(Optional); ok && optional.Optional() && canvas.IsSkippable(err) {
			d.logger.Debug("section unavailable", "node", key, "err", err)
			return nil
		}
		return fmt.Errorf("expanding %s: %w", key, err)
	}

	lineage := make([]string, len(ancestors)+1)
	copy(lineage, ancestors)
	lineage[len(ancestors)] = key

	for _, child := range expansion.Children {
		phase.Fork(child.Key(), d.Unit(child, lineage))
	}

	if len(expansion.Items) > 0 {
		if err := d.collection.Append(expansion.Items...); err != nil {
			return err
		}
		stats.ItemsDiscoveredAdd(len(expansion.Items))
	}

	return nil
}

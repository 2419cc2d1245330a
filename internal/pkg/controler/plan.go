package controler

import (
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/archiver"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

// Plan is what a transfer phase would do with the discovered items
type Plan struct {
	Items    []*models.Item
	Pending  []*models.Item
	Ignored  int
	UpToDate int
	Bytes    int64
}

// Plan classifies items without any network access
func (c *Controler) Plan(items []*models.Item) *Plan {
	plan := &Plan{Items: items}
	opts := archiver.Options{OverwriteIfNewer: c.opts.OverwriteIfNewer}

	for _, item := range items {
		outcome, err := c.archiver.Decide(item, opts)
		if err != nil {
			c.logger.Warn("unable to inspect local copy", "path", item.TargetPath, "err", err)
			outcome = models.OutcomeDownloaded
		}

		switch outcome {
		case models.OutcomeSkippedIgnored:
			plan.Ignored++
		case models.OutcomeSkippedUpToDate:
			plan.UpToDate++
		default:
			plan.Pending = append(plan.Pending, item)
			plan.Bytes += item.Size
		}
	}

	return plan
}

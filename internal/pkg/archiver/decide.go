package archiver

import (
	"fmt"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/utils"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
)

// Decide returns the outcome an item gets without transferring anything.
// OutcomeDownloaded means the item has to be transferred.
func (a *Archiver) Decide(item *models.Item, opts Options) (models.Outcome, error) {
	if a.ignore.Matches(item.TargetPath) {
		return models.OutcomeSkippedIgnored, nil
	}

	local, exists, err := utils.ModTime(a.fs, item.TargetPath)
	if err != nil {
		return models.OutcomeFailed, fmt.Errorf("%w: %w", ErrLocalIO, err)
	}
	if !exists {
		return models.OutcomeDownloaded, nil
	}

	newer := !item.UpdatedAt.IsZero() && item.UpdatedAt.After(local)
	if !newer {
		return models.OutcomeSkippedUpToDate, nil
	}

	if !opts.OverwriteIfNewer {
		a.logger.Info("Found update for file, use --download-newer to update it", "path", item.TargetPath, "local", local, "remote", item.UpdatedAt)
		return models.OutcomeSkippedUpToDate, nil
	}

	return models.OutcomeDownloaded, nil
}

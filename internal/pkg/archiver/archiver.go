// Package archiver transfers discovered items to the local filesystem.
// Every item is written to a temporary file in its target directory, then
// renamed over the target with the remote modification time applied.
package archiver

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/ignore"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/reactor"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
	"github.com/canvas-downloader/canvas-downloader/pkg/models"
	"github.com/spf13/afero"
)

// Downloader opens the content stream of a remote file
type Downloader interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// Options tunes a transfer phase
type Options struct {
	// OverwriteIfNewer replaces local copies older than the remote file
	OverwriteIfNewer bool
}

// Archiver writes items to fs, fetching remote content with client
type Archiver struct {
	fs     afero.Fs
	client Downloader
	ignore ignore.Predicate
	logger *log.FieldedLogger
}

// New returns an Archiver. A nil predicate ignores nothing.
func New(fs afero.Fs, client Downloader, predicate ignore.Predicate) *Archiver {
	if predicate == nil {
		predicate = ignore.Nothing{}
	}

	return &Archiver{
		fs:     fs,
		client: client,
		ignore: predicate,
		logger: log.NewFieldedLogger(&log.Fields{
			"component": "archiver",
		}),
	}
}

// Transfer forks one unit per item on phase and returns the aggregated
// outcomes once the phase barrier fired
func (a *Archiver) Transfer(ctx context.Context, phase *reactor.Phase, items []*models.Item, opts Options) (*models.Summary, error) {
	summary := &models.Summary{}

	tasks := make([]reactor.Task, 0, len(items))
	for _, item := range items {
		tasks = append(tasks, reactor.Task{
			Name: item.TargetPath,
			Unit: func(ctx context.Context, phase *reactor.Phase) error {
				result := a.Archive(ctx, item, opts)
				summary.Record(result)
				return result.Err
			},
		})
	}

	err := phase.Run(ctx, tasks...)

	return summary, err
}

// Archive decides and performs the transfer of a single item. Admission
// of remote fetches is left to the Downloader.
func (a *Archiver) Archive(ctx context.Context, item *models.Item, opts Options) models.Result {
	logger := a.logger.With(log.Fields{"item": item.GetShortID(), "path": item.TargetPath})

	outcome, err := a.Decide(item, opts)
	if err != nil {
		return a.fail(item, err)
	}

	switch outcome {
	case models.OutcomeSkippedIgnored:
		logger.Debug("item ignored")
		stats.SkippedIgnoredIncr()
		return models.Result{Item: item, Outcome: outcome}
	case models.OutcomeSkippedUpToDate:
		logger.Debug("item up to date")
		stats.SkippedUpToDateIncr()
		return models.Result{Item: item, Outcome: outcome}
	}

	var written int64
	switch item.Kind {
	case models.ItemKindInline:
		written, err = a.write(item, bytes.NewReader(item.Content))
	case models.ItemKindFile:
		written, err = a.download(ctx, item)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownKind, item.Kind)
	}

	if err != nil {
		return a.fail(item, err)
	}

	logger.Info("item downloaded", "bytes", written)
	stats.DownloadedIncr()
	stats.BytesDownloadedAdd(written)

	return models.Result{Item: item, Outcome: models.OutcomeDownloaded, Bytes: written}
}

func (a *Archiver) download(ctx context.Context, item *models.Item) (int64, error) {
	body, err := a.client.Open(ctx, item.URL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	return a.write(item, body)
}

// fail records a failed item. The error is logged once, by the phase
// absorbing it.
func (a *Archiver) fail(item *models.Item, err error) models.Result {
	stats.FailedIncr()

	return models.Result{Item: item, Outcome: models.OutcomeFailed, Err: err}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/api"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/archiver"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/controler"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/discoverer"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/ignore"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/reactor"
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/stats"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func getCMD() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Download the content of the selected courses",
		Long: `Download the files of the courses selected with --term-ids and/or
--course-names. Without any filter, the enrolled courses are listed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd)
		},
	}

	getCMDFlags(getCmd)

	return getCmd
}

func getCMDFlags(getCmd *cobra.Command) {
	getCmd.Flags().StringP("destination-folder", "d", ".", "Folder the courses are downloaded to.")
	getCmd.Flags().IntSliceP("term-ids", "t", []int{}, "Download the courses of these enrollment terms.")
	getCmd.Flags().StringSliceP("course-names", "c", []string{}, "Download the courses with these names or course codes.")
	getCmd.Flags().String("ignore-file", "", "Gitignore-style file of paths to skip (default is ./.canvasignore when present).")
	getCmd.Flags().BoolP("download-newer", "n", false, "Overwrite local files when the remote version is newer.")
	getCmd.Flags().Bool("dry-run", false, "Only print what would be downloaded.")
	getCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation before downloading.")
	getCmd.Flags().Bool("save-json", true, "Save the raw API responses as .json files next to the content.")
	getCmd.Flags().Int64("panopto-tool-id", 0, "Id of the Panopto external tool in Canvas, enables downloading lecture recordings.")
	getCmd.Flags().Int("max-depth", discoverer.DefaultMaxDepth, "Maximum nesting depth of the course content.")

	// Monitoring flags
	getCmd.Flags().Bool("live-stats", false, "Display a live stats table. (implies --no-stdout-log)")
	getCmd.Flags().String("metrics-addr", "", "Serve /status and prometheus /metrics on this address, e.g. :9090.")
}

func runGet(cmd *cobra.Command) error {
	logger := log.NewFieldedLogger(&log.Fields{
		"component": "cmd.get",
	})

	gate := reactor.NewGate(cfg.MaxConcurrentRequests)

	client, err := newClient(cfg, gate)
	if err != nil {
		return err
	}

	ctx, cancel := controler.WatchSignals(cmd.Context())
	defer cancel()

	if err := startStats(cfg, "get"); err != nil {
		return fmt.Errorf("error initializing stats: %w", err)
	}

	user, err := client.Self(ctx)
	if err != nil {
		return err
	}
	logger.Info("logged in", "user", user.Name)

	courses, err := client.Courses(ctx)
	if err != nil {
		return err
	}

	selected := selectCourses(courses, cfg.TermIDs, cfg.CourseNames)
	if len(selected) == 0 {
		if len(cfg.TermIDs) > 0 || len(cfg.CourseNames) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No course matches the given filters.")
		}
		printCourses(cmd.OutOrStdout(), courses)
		return nil
	}

	destination, err := filepath.Abs(cfg.DestinationFolder)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return fmt.Errorf("error creating destination folder: %w", err)
	}

	predicate, err := ignore.Load(cfg.IgnoreFile, destination)
	if err != nil {
		return err
	}
	if matcher, ok := predicate.(*ignore.Matcher); ok {
		logger.Info("ignore file loaded", "path", matcher.Source())
	}

	var confirmer controler.Confirmer = controler.AutoConfirm(true)
	if !cfg.Yes {
		confirmer = &controler.PromptConfirmer{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	}

	c := controler.New(controler.Config{
		Env: &discoverer.Env{
			Client:   client,
			Ignore:   predicate,
			SaveJSON: cfg.SaveJSON,
			Panopto:  panoptoConfig(cfg, gate),
			Logger:   log.NewFieldedLogger(&log.Fields{"component": "discoverer"}),
		},
		Archiver:  archiver.New(afero.NewOsFs(), client, predicate),
		Gate:      gate,
		Confirmer: confirmer,
		Out:       cmd.OutOrStdout(),
		Options: controler.Options{
			DryRun:           cfg.DryRun,
			OverwriteIfNewer: cfg.DownloadNewer,
			MaxDepth:         cfg.MaxDepth,
		},
	})

	state := func() string { return c.Status().State }
	logger.Info("run started", "run", c.RunID(), "courses", len(selected), "destination", destination)

	if cfg.LiveStats {
		printerCtx, stopPrinter := context.WithCancel(ctx)
		defer stopPrinter()

		printer := &stats.Printer{Out: cmd.ErrOrStderr(), State: state}
		go printer.Run(printerCtx)
	}

	if cfg.MetricsAddr != "" {
		if err := api.Start(cfg.MetricsAddr, c.Status); err != nil {
			return fmt.Errorf("error starting API: %w", err)
		}
		defer api.Stop(5 * time.Second)
	}

	roots := make([]discoverer.Node, 0, len(selected))
	for _, course := range selected {
		logger.Info("selected course", "id", course.ID, "code", course.CourseCode, "name", course.Name)
		roots = append(roots, discoverer.NewCourseNode(course, destination))
	}

	_, err = c.Run(ctx, roots)

	return err
}

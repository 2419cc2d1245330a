package cmd

import (
	"github.com/canvas-downloader/canvas-downloader/internal/pkg/log"
	"github.com/spf13/cobra"
)

func listCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your enrolled courses grouped by term",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cfg, nil)
			if err != nil {
				return err
			}

			logger := log.NewFieldedLogger(&log.Fields{
				"component": "cmd.list",
			})

			user, err := client.Self(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("logged in", "user", user.Name)

			courses, err := client.Courses(cmd.Context())
			if err != nil {
				return err
			}

			printCourses(cmd.OutOrStdout(), courses)

			return nil
		},
	}
}

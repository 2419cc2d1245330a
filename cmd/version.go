package cmd

import (
	"fmt"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/utils"
	"github.com/spf13/cobra"
)

func versionCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version := utils.GetVersion()

			fmt.Fprintln(cmd.OutOrStdout(), "canvas-downloader", version.Version)
			fmt.Fprintln(cmd.OutOrStdout(), "- go/version:", version.GoVersion)
		},
	}
}

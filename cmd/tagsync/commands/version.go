package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"tagsync/internal/core/updater"
)

// NewVersionCommand creates the version command
func NewVersionCommand(appVersion string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the tagsync version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("tagsync v%s (%s/%s)\n", appVersion, runtime.GOOS, runtime.GOARCH)
			if check, _ := cmd.Flags().GetBool("check"); check {
				_, cfg := resolveConfig(cmd)
				updater.CheckForUpdates(cfg, appVersion)
			}
			return nil
		},
	}

	cmd.Flags().Bool("check", false, "Also check whether a newer version is published")

	return cmd
}

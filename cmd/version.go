package cmd

import (
	"fmt"

	"github.com/schemasync/schemasync/internal/version"
	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of schemasync",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func versionString() string {
	return fmt.Sprintf("schemasync v%s@%s %s %s", version.App(), version.GetGitCommit(), version.Platform(), version.GetBuildDate())
}

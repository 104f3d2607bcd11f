package cmd

import (
	"fmt"
	"os"

	"github.com/schemasync/schemasync/cmd/apply"
	"github.com/schemasync/schemasync/cmd/compile"
	"github.com/schemasync/schemasync/cmd/plan"
	"github.com/schemasync/schemasync/internal/logger"
	"github.com/schemasync/schemasync/internal/version"
	"github.com/spf13/cobra"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "schemasync",
	Short: "Schema change detection and DDL generation tool",
	Long: fmt.Sprintf(`schemasync compares two schema models and renders the DDL that turns one into the other.

Version: %s@%s %s %s

Commands:
  plan     Generate migration plan
  compile  Render CREATE DDL for schema models
  apply    Apply schema migrations
  version  Show version information

Use "schemasync [command] --help" for more information about a command.`,
		version.App(), version.GetGitCommit(), version.Platform(), version.GetBuildDate()),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(plan.PlanCmd)
	RootCmd.AddCommand(compile.CompileCmd)
	RootCmd.AddCommand(apply.ApplyCmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	logger.SetGlobal(logger.New(os.Stderr, Debug), Debug)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package compile

import (
	"context"
	"fmt"
	"strings"

	"github.com/schemasync/schemasync/cmd/util"
	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/internal/logger"
	"github.com/schemasync/schemasync/ir"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	compileDialect  string
	compileWithDrop bool
	compileOutput   string
)

var CompileCmd = &cobra.Command{
	Use:          "compile MODEL...",
	Short:        "Render the CREATE DDL for one or more schema models",
	Long:         "Render the complete DDL that creates every schema, table and foreign key of each model file. Models are rendered concurrently; the scripts are printed in argument order.",
	Args:         cobra.MinimumNArgs(1),
	RunE:         runCompile,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithDialect(&compileDialect),
}

func init() {
	CompileCmd.Flags().StringVar(&compileDialect, "dialect", "", "Target dialect: kinetica, mysql or postgres (env: SCHEMASYNC_DIALECT)")
	CompileCmd.Flags().BoolVar(&compileWithDrop, "with-drop", false, "Drop every table before creating it")
	CompileCmd.Flags().StringVar(&compileOutput, "output", "stdout", "Write the scripts to stdout or a file path")
}

func runCompile(cmd *cobra.Command, args []string) error {
	scripts, err := CompileFiles(cmd.Context(), compileDialect, args, compileWithDrop)
	if err != nil {
		return err
	}

	var out strings.Builder
	for i, script := range scripts {
		if len(scripts) > 1 {
			fmt.Fprintf(&out, "-- %s\n", args[i])
		}
		if script != "" {
			out.WriteString(script)
			out.WriteString("\n")
		}
		if i < len(scripts)-1 {
			out.WriteString("\n")
		}
	}
	return util.WriteOutput(cmd, compileOutput, out.String())
}

// CompileFiles renders the CREATE script of every model file. scripts[i] belongs to paths[i].
// The first failure cancels the remaining work.
func CompileFiles(ctx context.Context, dialectName string, paths []string, dropIfExists bool) ([]string, error) {
	d, err := dialect.Lookup(dialectName)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	scripts := make([]string, len(paths))
	eg, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			db, err := ir.LoadFile(path)
			if err != nil {
				return err
			}
			logger.Get().Debug("Compiling model", "path", path, "dialect", d.Name, "tables", len(db.Tables))
			scripts[i] = d.Generator.CreateDatabase(db, dropIfExists)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return scripts, nil
}

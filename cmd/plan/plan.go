package plan

import (
	"fmt"

	"github.com/schemasync/schemasync/cmd/util"
	"github.com/schemasync/schemasync/internal/dialect"
	"github.com/schemasync/schemasync/internal/ignore"
	"github.com/schemasync/schemasync/internal/logger"
	"github.com/schemasync/schemasync/internal/plan"
	"github.com/schemasync/schemasync/ir"
	"github.com/spf13/cobra"
)

var (
	planDialect  string
	planExpected string
	planActual   string
	planIgnore   string
	outputHuman  string
	outputJSON   string
	outputSQL    string
	planNoColor  bool
)

var PlanCmd = &cobra.Command{
	Use:          "plan",
	Short:        "Generate migration plan between two schema models",
	Long:         "Generate a migration plan that turns the actual schema model (--actual) into the expected one (--expected). Both models are YAML or JSON files; the DDL is rendered for --dialect.",
	RunE:         runPlan,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithDialect(&planDialect),
}

func init() {
	PlanCmd.Flags().StringVar(&planDialect, "dialect", "", "Target dialect: kinetica, mysql or postgres (env: SCHEMASYNC_DIALECT)")
	PlanCmd.Flags().StringVar(&planExpected, "expected", "", "Path to the desired schema model (required)")
	PlanCmd.Flags().StringVar(&planActual, "actual", "", "Path to the current schema model (required)")
	PlanCmd.Flags().StringVar(&planIgnore, "ignore-file", ignore.FileName, "TOML file listing table patterns to leave out of the comparison")

	// Output flags
	PlanCmd.Flags().StringVar(&outputHuman, "output-human", "", "Output human-readable format to stdout or file path")
	PlanCmd.Flags().StringVar(&outputJSON, "output-json", "", "Output JSON format to stdout or file path")
	PlanCmd.Flags().StringVar(&outputSQL, "output-sql", "", "Output SQL format to stdout or file path")
	PlanCmd.Flags().BoolVar(&planNoColor, "no-color", false, "Disable colored output")

	PlanCmd.MarkFlagRequired("expected")
	PlanCmd.MarkFlagRequired("actual")
}

func runPlan(cmd *cobra.Command, args []string) error {
	config := &PlanConfig{
		Dialect:      planDialect,
		ExpectedFile: planExpected,
		ActualFile:   planActual,
		IgnoreFile:   planIgnore,
	}

	migrationPlan, err := GeneratePlan(config)
	if err != nil {
		return err
	}

	outputs, err := determineOutputs(outputHuman, outputJSON, outputSQL)
	if err != nil {
		return err
	}

	for _, output := range outputs {
		if err := processOutput(migrationPlan, output, cmd, planNoColor); err != nil {
			return err
		}
	}
	return nil
}

// PlanConfig holds configuration for plan generation
type PlanConfig struct {
	Dialect      string
	ExpectedFile string
	ActualFile   string
	IgnoreFile   string // optional; a missing file ignores nothing
}

// GeneratePlan loads both models and computes the migration plan for the configured dialect
func GeneratePlan(config *PlanConfig) (*plan.Plan, error) {
	d, err := dialect.Lookup(config.Dialect)
	if err != nil {
		return nil, err
	}

	expected, err := ir.LoadFile(config.ExpectedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load expected model: %w", err)
	}
	actual, err := ir.LoadFile(config.ActualFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load actual model: %w", err)
	}

	if config.IgnoreFile != "" {
		ignoreConfig, err := ignore.LoadFromPath(config.IgnoreFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load ignore file: %w", err)
		}
		expected = ignoreConfig.Filter(expected)
		actual = ignoreConfig.Filter(actual)
	}

	return GeneratePlanFromModels(d, expected, actual)
}

// GeneratePlanFromModels computes the migration plan for models that are already in memory
func GeneratePlanFromModels(d *dialect.Dialect, expected, actual *ir.Database) (*plan.Plan, error) {
	logger.Get().Debug("Generating plan",
		"dialect", d.Name,
		"expected_tables", len(expected.Tables),
		"actual_tables", len(actual.Tables),
	)

	migrationPlan, err := plan.New(d, expected, actual)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	logger.Get().Debug("Plan generated", "changes", len(migrationPlan.Changes), "steps", len(migrationPlan.Steps))
	return migrationPlan, nil
}

// outputSpec represents a single output specification
type outputSpec struct {
	format string // "human", "json", or "sql"
	target string // "stdout" or file path
}

// determineOutputs parses the output flags and returns the list of outputs to generate
func determineOutputs(human, json, sql string) ([]outputSpec, error) {
	var outputs []outputSpec
	stdoutCount := 0

	for _, candidate := range []outputSpec{
		{format: "human", target: human},
		{format: "json", target: json},
		{format: "sql", target: sql},
	} {
		if candidate.target == "" {
			continue
		}
		if candidate.target == "stdout" {
			stdoutCount++
		}
		outputs = append(outputs, candidate)
	}

	if stdoutCount > 1 {
		return nil, fmt.Errorf("only one output format can use stdout")
	}

	// Default behavior: if no outputs specified, output human to stdout
	if len(outputs) == 0 {
		outputs = append(outputs, outputSpec{format: "human", target: "stdout"})
	}

	return outputs, nil
}

// processOutput writes the plan in the specified format to the target destination
func processOutput(migrationPlan *plan.Plan, output outputSpec, cmd *cobra.Command, noColor bool) error {
	var content string

	switch output.format {
	case "human":
		// Color only makes sense on a terminal
		useColor := output.target == "stdout" && !noColor
		content = migrationPlan.HumanColored(useColor)
	case "json":
		data, err := migrationPlan.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to generate JSON output: %w", err)
		}
		content = data + "\n"
	case "sql":
		content = migrationPlan.ToSQL()
		if content != "" {
			content += "\n"
		}
	default:
		return fmt.Errorf("unknown output format: %s", output.format)
	}

	if err := util.WriteOutput(cmd, output.target, content); err != nil {
		return fmt.Errorf("failed to write %s output: %w", output.format, err)
	}
	return nil
}

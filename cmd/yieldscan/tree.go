package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/yieldscan/app"
	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/config"
	"github.com/ludo-technologies/yieldscan/service"
)

// TreeCommand prints the diagnostic route tree dump of each function
type TreeCommand struct {
	functions    []string
	maxTreeNodes int
	implicitElse bool
	recursive    bool
	lowered      bool
	configFile   string
}

// NewTreeCommand creates a new tree command
func NewTreeCommand() *TreeCommand {
	return &TreeCommand{
		maxTreeNodes: domain.DefaultMaxTreeNodes,
		recursive:    true,
	}
}

// CreateCobraCommand creates the cobra command for tree dumps
func (c *TreeCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree [paths...]",
		Short: "Print the route tree dump of generator functions",
		Long: `Print the diagnostic dump of each generator function: its blocks, the
route tree built from them and the routes found.

The dump format is meant for reading, not for parsing. Use
'yieldscan routes --json --show-tree' for machine-readable trees.

Examples:
  yieldscan tree gen.py
  yieldscan tree --function 'Feed.*' src/
  yieldscan tree --lowered gen.py`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runTree,
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&c.functions, "function", "f", nil, "Only dump functions whose name matches the glob")
	flags.IntVar(&c.maxTreeNodes, "max-tree-nodes", domain.DefaultMaxTreeNodes, "Route tree size cap per function (0 = no limit)")
	flags.BoolVar(&c.implicitElse, "implicit-else", false, "Keep the fall-through path around an if without else")
	flags.BoolVar(&c.recursive, "recursive", true, "Recursively analyze subdirectories")
	flags.BoolVar(&c.lowered, "lowered", false, "Also print the lowered statement tree of each function")
	flags.StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	return cmd
}

func (c *TreeCommand) runTree(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()

	tracker := config.NewFlagTrackerFromFlagSet(cmd.Flags())
	useCase, err := app.NewRouteUseCaseBuilder().
		WithService(service.NewRouteService(service.WithLogger(logger))).
		WithFileReader(service.NewFileReader()).
		WithFormatter(service.NewRouteFormatter()).
		WithConfigLoader(service.NewConfigurationLoaderWithFlags(getTargetPathFromArgs(args), tracker)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create route use case: %w", err)
	}

	response, err := useCase.Analyze(cmd.Context(), domain.RouteRequest{
		Paths:            args,
		OutputFormat:     domain.OutputFormatText,
		OutputWriter:     cmd.OutOrStdout(),
		ShowDump:         true,
		ShowLowered:      c.lowered,
		FunctionPatterns: c.functions,
		MaxTreeNodes:     c.maxTreeNodes,
		ImplicitElse:     c.implicitElse,
		Recursive:        c.recursive,
		ConfigPath:       c.configFile,
	})
	if err != nil {
		return err
	}

	_, err = io.WriteString(cmd.OutOrStdout(), service.FormatDumps(response))
	return err
}

// NewTreeCmd creates and returns the tree cobra command
func NewTreeCmd() *cobra.Command {
	return NewTreeCommand().CreateCobraCommand()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/yieldscan/app"
	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/config"
	"github.com/ludo-technologies/yieldscan/service"
)

// RoutesCommand represents the routes command
type RoutesCommand struct {
	// Output format flags
	json bool
	yaml bool
	csv  bool
	dot  bool

	outputPath  string
	metricsPath string
	showTree    bool

	// Analysis options
	functions    []string
	maxRoutes    int
	maxTreeNodes int
	implicitElse bool

	// File selection
	recursive       bool
	includePatterns []string
	excludePatterns []string
	languages       []string

	configFile string
}

// NewRoutesCommand creates a new routes command
func NewRoutesCommand() *RoutesCommand {
	return &RoutesCommand{
		maxRoutes:    domain.DefaultMaxRoutes,
		maxTreeNodes: domain.DefaultMaxTreeNodes,
		recursive:    true,
	}
}

// CreateCobraCommand creates the cobra command for route enumeration
func (c *RoutesCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes [paths...]",
		Short: "Enumerate the routes of generator functions",
		Long: `Enumerate every route through the generator functions of Python, C# and
Go source files.

A route is one path through a function's if/else structure, from entry to
a return or the end of the body, together with the values it emits. Routes
that end in a return or yield break are marked [break].

Examples:
  yieldscan routes src/
  yieldscan routes --function 'Repo.*' pkg/repo.py
  yieldscan routes --implicit-else --show-tree feed.go
  yieldscan routes --json -o routes.json .
  yieldscan routes --dot . | dot -Tsvg > routes.svg`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runRoutes,
	}

	c.addFlags(cmd)
	return cmd
}

func (c *RoutesCommand) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.BoolVar(&c.json, "json", false, "Output as JSON")
	flags.BoolVar(&c.yaml, "yaml", false, "Output as YAML")
	flags.BoolVar(&c.csv, "csv", false, "Output as CSV, one row per route")
	flags.BoolVar(&c.dot, "dot", false, "Output the route trees as a Graphviz digraph")
	flags.StringVarP(&c.outputPath, "output", "o", "", "Write the report to a file")
	flags.StringVar(&c.metricsPath, "metrics-file", "", "Write Prometheus text metrics of the run to a file")
	flags.BoolVar(&c.showTree, "show-tree", false, "Include the route tree of each function")

	flags.StringSliceVarP(&c.functions, "function", "f", nil, "Only analyze functions whose name matches the glob")
	flags.IntVar(&c.maxRoutes, "max-routes", domain.DefaultMaxRoutes, "Route cap per function (0 = no limit)")
	flags.IntVar(&c.maxTreeNodes, "max-tree-nodes", domain.DefaultMaxTreeNodes, "Route tree size cap per function (0 = no limit)")
	flags.BoolVar(&c.implicitElse, "implicit-else", false, "Keep the fall-through path around an if without else")

	flags.BoolVar(&c.recursive, "recursive", true, "Recursively analyze subdirectories")
	flags.StringSliceVar(&c.includePatterns, "include", nil, "Include file patterns")
	flags.StringSliceVar(&c.excludePatterns, "exclude", nil, "Exclude file patterns")
	flags.StringSliceVar(&c.languages, "languages", nil, "Only analyze these languages (python, csharp, go)")

	flags.StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
}

// buildRequest turns flags and arguments into a request; config values are
// merged in by the use case
func (c *RoutesCommand) buildRequest(cmd *cobra.Command, args []string) (domain.RouteRequest, error) {
	format, err := service.NewOutputFormatResolver().Determine(c.json, c.yaml, c.csv, c.dot, "")
	if err != nil {
		return domain.RouteRequest{}, err
	}

	return domain.RouteRequest{
		Paths:            args,
		OutputFormat:     format,
		OutputWriter:     cmd.OutOrStdout(),
		OutputPath:       c.outputPath,
		ShowTree:         c.showTree,
		FunctionPatterns: c.functions,
		Languages:        c.languages,
		MaxRoutes:        c.maxRoutes,
		MaxTreeNodes:     c.maxTreeNodes,
		ImplicitElse:     c.implicitElse,
		ConfigPath:       c.configFile,
		Recursive:        c.recursive,
		IncludePatterns:  c.includePatterns,
		ExcludePatterns:  c.excludePatterns,
		MetricsPath:      c.metricsPath,
	}, nil
}

func (c *RoutesCommand) runRoutes(cmd *cobra.Command, args []string) error {
	request, err := c.buildRequest(cmd, args)
	if err != nil {
		return err
	}

	// Non-text reports without --output go to output.directory when configured
	if request.OutputPath == "" && request.OutputFormat != domain.OutputFormatText {
		path, err := generateOutputFilePath("routes", request.OutputFormat, c.configFile, getTargetPathFromArgs(args))
		if err != nil {
			return err
		}
		request.OutputPath = path
	}

	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()

	routeService := service.NewRouteService(
		service.WithLogger(logger),
		service.WithProgressManager(newProgressManager(cmd)),
	)
	tracker := config.NewFlagTrackerFromFlagSet(cmd.Flags())

	useCase, err := app.NewRouteUseCaseBuilder().
		WithService(routeService).
		WithFileReader(service.NewFileReader()).
		WithFormatter(service.NewRouteFormatter()).
		WithConfigLoader(service.NewConfigurationLoaderWithFlags(getTargetPathFromArgs(args), tracker)).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		WithMetricsWriter(routeService.Metrics()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create route use case: %w", err)
	}

	logger.Debugw("starting route analysis", "paths", args, "format", request.OutputFormat)
	return useCase.Execute(cmd.Context(), request)
}

// NewRoutesCmd creates and returns the routes cobra command
func NewRoutesCmd() *cobra.Command {
	return NewRoutesCommand().CreateCobraCommand()
}

package app

import (
	"context"
	"fmt"
	"io"

	"github.com/ludo-technologies/yieldscan/domain"
)

// MetricsWriter persists the metrics of a run
type MetricsWriter interface {
	WriteFile(path string) error
}

// RouteUseCase orchestrates the route analysis workflow
type RouteUseCase struct {
	service      domain.RouteService
	fileReader   domain.FileReader
	formatter    domain.RouteFormatter
	configLoader domain.RouteConfigurationLoader
	output       domain.ReportWriter
	metrics      MetricsWriter
}

// NewRouteUseCase creates a new route use case
func NewRouteUseCase(
	service domain.RouteService,
	fileReader domain.FileReader,
	formatter domain.RouteFormatter,
	configLoader domain.RouteConfigurationLoader,
	output domain.ReportWriter,
	metrics MetricsWriter,
) *RouteUseCase {
	return &RouteUseCase{
		service:      service,
		fileReader:   fileReader,
		formatter:    formatter,
		configLoader: configLoader,
		output:       output,
		metrics:      metrics,
	}
}

// Execute runs the analysis and writes the report
func (uc *RouteUseCase) Execute(ctx context.Context, req domain.RouteRequest) error {
	response, finalReq, err := uc.analyze(ctx, req)
	if err != nil {
		return err
	}

	format := finalReq.OutputFormat
	writeFunc := func(w io.Writer) error {
		return uc.formatter.Write(response, format, w)
	}
	if uc.output != nil {
		if err := uc.output.Write(finalReq.OutputWriter, finalReq.OutputPath, format, writeFunc); err != nil {
			return err
		}
	} else if err := writeFunc(finalReq.OutputWriter); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}

	if finalReq.MetricsPath != "" && uc.metrics != nil {
		if err := uc.metrics.WriteFile(finalReq.MetricsPath); err != nil {
			return err
		}
	}
	return nil
}

// Analyze runs the analysis and returns the response without writing it
func (uc *RouteUseCase) Analyze(ctx context.Context, req domain.RouteRequest) (*domain.RouteResponse, error) {
	response, _, err := uc.analyze(ctx, req)
	return response, err
}

func (uc *RouteUseCase) analyze(ctx context.Context, req domain.RouteRequest) (*domain.RouteResponse, domain.RouteRequest, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, req, domain.NewInvalidInputError("invalid request", err)
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, req, domain.NewConfigError("failed to load configuration", err)
	}
	if finalReq.OutputFormat == domain.OutputFormatDOT {
		// the graph is drawn from the tree
		finalReq.ShowTree = true
	}

	files, err := ResolveFilePaths(
		uc.fileReader,
		finalReq.Paths,
		finalReq.Recursive,
		finalReq.IncludePatterns,
		finalReq.ExcludePatterns,
		finalReq.Languages,
	)
	if err != nil {
		return nil, finalReq, err
	}
	if len(files) == 0 {
		return nil, finalReq, domain.NewInvalidInputError("no Python, C# or Go files found in the specified paths", nil)
	}
	finalReq.Paths = files

	response, err := uc.service.Analyze(ctx, finalReq)
	if err != nil {
		return nil, finalReq, err
	}
	return response, finalReq, nil
}

// validateRequest validates the route request
func (uc *RouteUseCase) validateRequest(req domain.RouteRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return fmt.Errorf("output writer is required")
	}
	if req.MaxRoutes < 0 {
		return fmt.Errorf("max routes cannot be negative")
	}
	if req.MaxTreeNodes < 0 {
		return fmt.Errorf("max tree nodes cannot be negative")
	}
	if req.OutputFormat != "" {
		if _, ok := domain.ParseOutputFormat(string(req.OutputFormat)); !ok {
			return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
		}
	}
	return nil
}

// loadAndMergeConfig loads configuration from file and merges with request
func (uc *RouteUseCase) loadAndMergeConfig(req domain.RouteRequest) (domain.RouteRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	var configReq *domain.RouteRequest
	if req.ConfigPath != "" {
		var err error
		configReq, err = uc.configLoader.LoadConfig(req.ConfigPath)
		if err != nil {
			return req, fmt.Errorf("failed to load config from %s: %w", req.ConfigPath, err)
		}
	} else {
		configReq = uc.configLoader.LoadDefaultConfig()
	}

	if configReq == nil {
		return req, nil
	}
	return *uc.configLoader.MergeConfig(configReq, &req), nil
}

// RouteUseCaseBuilder provides a builder pattern for creating RouteUseCase
type RouteUseCaseBuilder struct {
	service      domain.RouteService
	fileReader   domain.FileReader
	formatter    domain.RouteFormatter
	configLoader domain.RouteConfigurationLoader
	output       domain.ReportWriter
	metrics      MetricsWriter
}

// NewRouteUseCaseBuilder creates a new builder
func NewRouteUseCaseBuilder() *RouteUseCaseBuilder {
	return &RouteUseCaseBuilder{}
}

// WithService sets the route service
func (b *RouteUseCaseBuilder) WithService(service domain.RouteService) *RouteUseCaseBuilder {
	b.service = service
	return b
}

// WithFileReader sets the file reader
func (b *RouteUseCaseBuilder) WithFileReader(fileReader domain.FileReader) *RouteUseCaseBuilder {
	b.fileReader = fileReader
	return b
}

// WithFormatter sets the route formatter
func (b *RouteUseCaseBuilder) WithFormatter(formatter domain.RouteFormatter) *RouteUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *RouteUseCaseBuilder) WithConfigLoader(configLoader domain.RouteConfigurationLoader) *RouteUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithOutputWriter sets the report writer
func (b *RouteUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *RouteUseCaseBuilder {
	b.output = output
	return b
}

// WithMetricsWriter sets where --metrics-file output comes from
func (b *RouteUseCaseBuilder) WithMetricsWriter(metrics MetricsWriter) *RouteUseCaseBuilder {
	b.metrics = metrics
	return b
}

// Build creates the RouteUseCase with the configured dependencies. The
// configuration loader, report writer and metrics writer are optional.
func (b *RouteUseCaseBuilder) Build() (*RouteUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("route service is required")
	}
	if b.fileReader == nil {
		return nil, fmt.Errorf("file reader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("route formatter is required")
	}

	return NewRouteUseCase(
		b.service,
		b.fileReader,
		b.formatter,
		b.configLoader,
		b.output,
		b.metrics,
	), nil
}

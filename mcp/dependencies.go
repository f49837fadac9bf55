package mcp

import (
	"go.uber.org/zap"

	"github.com/ludo-technologies/yieldscan/app"
	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/config"
	"github.com/ludo-technologies/yieldscan/internal/logging"
	"github.com/ludo-technologies/yieldscan/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	fileReader domain.FileReader
	configPath string
	cache      *service.ParseCache
	logger     *zap.SugaredLogger
}

// NewDependencies constructs the dependency set. An empty configPath makes
// every call discover .yieldscan.toml or pyproject.toml from its target path.
func NewDependencies(configPath string, logger *zap.SugaredLogger) *Dependencies {
	return &Dependencies{
		fileReader: service.NewFileReader(),
		configPath: configPath,
		cache:      service.NewParseCache(),
		logger:     logging.OrNop(logger),
	}
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// BuildRouteUseCase assembles a fresh RouteUseCase. The parse cache is shared
// across calls so repeated requests on unchanged files skip parsing.
func (d *Dependencies) BuildRouteUseCase(targetPath string, tracker *config.FlagTracker) (*app.RouteUseCase, error) {
	svc := service.NewRouteService(
		service.WithLogger(d.logger),
		service.WithParseCache(d.cache),
	)
	return app.NewRouteUseCaseBuilder().
		WithService(svc).
		WithFileReader(d.fileReader).
		WithFormatter(service.NewRouteFormatter()).
		WithConfigLoader(service.NewConfigurationLoaderWithFlags(targetPath, tracker)).
		Build()
}

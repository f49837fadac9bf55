package service

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/ludo-technologies/yieldscan/domain"
)

// RouteMetrics collects analysis counters in its own metrics set so that
// several services in one process (tests, the MCP server) never share state.
type RouteMetrics struct {
	set *metrics.Set

	filesAnalyzed  *metrics.Counter
	parseErrors    *metrics.Counter
	routesTotal    *metrics.Counter
	breakingRoutes *metrics.Counter

	routesPerFunction *metrics.Histogram
	fileDuration      *metrics.Histogram
}

// NewRouteMetrics creates an empty metrics set
func NewRouteMetrics() *RouteMetrics {
	set := metrics.NewSet()
	return &RouteMetrics{
		set:               set,
		filesAnalyzed:     set.GetOrCreateCounter(`yieldscan_files_analyzed_total`),
		parseErrors:       set.GetOrCreateCounter(`yieldscan_parse_errors_total`),
		routesTotal:       set.GetOrCreateCounter(`yieldscan_routes_total`),
		breakingRoutes:    set.GetOrCreateCounter(`yieldscan_breaking_routes_total`),
		routesPerFunction: set.GetOrCreateHistogram(`yieldscan_routes_per_function`),
		fileDuration:      set.GetOrCreateHistogram(`yieldscan_file_analysis_duration_seconds`),
	}
}

// ObserveFile records one analyzed file and how long it took
func (m *RouteMetrics) ObserveFile(startTime time.Time) {
	m.filesAnalyzed.Inc()
	m.fileDuration.UpdateDuration(startTime)
}

// ObserveParseError records a file that could not be parsed
func (m *RouteMetrics) ObserveParseError() {
	m.parseErrors.Inc()
}

// ObserveFunction records the outcome of one function
func (m *RouteMetrics) ObserveFunction(fr *domain.FunctionRoutes) {
	m.functions(fr.Status).Inc()
	if !fr.IsAnalyzed() {
		return
	}
	m.routesTotal.Add(len(fr.Routes))
	m.routesPerFunction.Update(float64(len(fr.Routes)))
	for _, r := range fr.Routes {
		if r.HasBreak {
			m.breakingRoutes.Inc()
		}
	}
}

// FunctionCount returns the number of functions observed with status
func (m *RouteMetrics) FunctionCount(status domain.RouteStatus) uint64 {
	return m.functions(status).Get()
}

// FilesAnalyzed returns the number of observed files
func (m *RouteMetrics) FilesAnalyzed() uint64 {
	return m.filesAnalyzed.Get()
}

// RoutesTotal returns the number of routes of analyzed functions
func (m *RouteMetrics) RoutesTotal() uint64 {
	return m.routesTotal.Get()
}

func (m *RouteMetrics) functions(status domain.RouteStatus) *metrics.Counter {
	return m.set.GetOrCreateCounter(fmt.Sprintf(`yieldscan_functions_total{status=%q}`, status))
}

// WritePrometheus writes the metrics in Prometheus text exposition format
func (m *RouteMetrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}

// WriteFile writes the metrics to path, replacing the file
func (m *RouteMetrics) WriteFile(path string) error {
	var buf bytes.Buffer
	m.WritePrometheus(&buf)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to write metrics file: %s", path), err)
	}
	return nil
}

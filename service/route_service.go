package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/analyzer"
	"github.com/ludo-technologies/yieldscan/internal/logging"
	"github.com/ludo-technologies/yieldscan/internal/parser"
	"github.com/ludo-technologies/yieldscan/internal/version"
)

// RouteServiceImpl implements the RouteService interface
type RouteServiceImpl struct {
	fileReader *FileReaderImpl
	cache      *ParseCache
	metrics    *RouteMetrics
	progress   domain.ProgressManager
	logger     *zap.SugaredLogger
}

// RouteServiceOption configures a RouteServiceImpl
type RouteServiceOption func(*RouteServiceImpl)

// WithLogger sets the structured logger
func WithLogger(logger *zap.SugaredLogger) RouteServiceOption {
	return func(s *RouteServiceImpl) { s.logger = logging.OrNop(logger) }
}

// WithProgressManager sets the progress manager advanced once per file
func WithProgressManager(pm domain.ProgressManager) RouteServiceOption {
	return func(s *RouteServiceImpl) {
		if pm != nil {
			s.progress = pm
		}
	}
}

// WithMetrics sets the metrics set the service records into
func WithMetrics(m *RouteMetrics) RouteServiceOption {
	return func(s *RouteServiceImpl) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithParseCache shares a parse cache between services
func WithParseCache(c *ParseCache) RouteServiceOption {
	return func(s *RouteServiceImpl) {
		if c != nil {
			s.cache = c
		}
	}
}

// NewRouteService creates a new route service implementation
func NewRouteService(opts ...RouteServiceOption) *RouteServiceImpl {
	s := &RouteServiceImpl{
		fileReader: NewFileReader(),
		cache:      NewParseCache(),
		metrics:    NewRouteMetrics(),
		progress:   NewNoOpProgressManager(),
		logger:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the metrics set of the service
func (s *RouteServiceImpl) Metrics() *RouteMetrics {
	return s.metrics
}

// fileResult is the outcome of one file, stored by input index
type fileResult struct {
	functions []domain.FunctionRoutes
	warnings  []string
	errors    []string
}

// Analyze enumerates the routes of every generator function in the files of
// req.Paths. Files are analyzed concurrently and merged in input order.
func (s *RouteServiceImpl) Analyze(ctx context.Context, req domain.RouteRequest) (*domain.RouteResponse, error) {
	if len(req.Paths) == 0 {
		return nil, domain.NewInvalidInputError("no files to analyze", nil)
	}
	for _, pattern := range req.FunctionPatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("invalid function pattern: %s", pattern), nil)
		}
	}

	results := make([]fileResult, len(req.Paths))
	tasks := make([]domain.ExecutableTask, len(req.Paths))
	for i, path := range req.Paths {
		i, path := i, path
		tasks[i] = NewSimpleTask(path, true, func(ctx context.Context) (interface{}, error) {
			results[i] = s.analyzeFile(ctx, path, req)
			s.progress.Increment()
			return nil, nil
		})
	}

	executor := NewParallelExecutor()
	executor.SetMaxConcurrency(req.MaxGoroutines)
	executor.SetTimeout(req.Timeout)

	s.progress.Initialize(len(tasks))
	s.progress.Start()
	if err := executor.Execute(ctx, tasks); err != nil {
		s.progress.Complete(false)
		if domain.ErrorCode(err) == domain.ErrCodeTimeout {
			return nil, err
		}
		return nil, domain.NewAnalysisError("route analysis failed", err)
	}
	s.progress.Complete(true)

	var (
		functions []domain.FunctionRoutes
		warnings  = []string{}
		errs      = []string{}
	)
	filesAnalyzed := 0
	for _, r := range results {
		warnings = append(warnings, r.warnings...)
		errs = append(errs, r.errors...)
		if len(r.errors) == 0 {
			filesAnalyzed++
		}
		functions = append(functions, r.functions...)
	}

	if len(functions) == 0 {
		if len(errs) > 0 {
			return nil, domain.NewNoGeneratorsError(errors.New(errs[0]))
		}
		return nil, domain.NewNoGeneratorsError(nil)
	}

	return &domain.RouteResponse{
		Functions:   functions,
		Summary:     s.generateSummary(functions, filesAnalyzed),
		Warnings:    warnings,
		Errors:      errs,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Short(),
		Config:      s.buildConfigForResponse(req),
	}, nil
}

// AnalyzeFile analyzes a single source file
func (s *RouteServiceImpl) AnalyzeFile(ctx context.Context, filePath string, req domain.RouteRequest) (*domain.RouteResponse, error) {
	singleFileReq := req
	singleFileReq.Paths = []string{filePath}
	return s.Analyze(ctx, singleFileReq)
}

// analyzeFile parses one file with a parser owned by the calling goroutine
// and analyzes its generator functions in start line order
func (s *RouteServiceImpl) analyzeFile(ctx context.Context, filePath string, req domain.RouteRequest) fileResult {
	var result fileResult
	startTime := time.Now()

	if err := ctx.Err(); err != nil {
		result.errors = append(result.errors, fmt.Sprintf("[%s] Analysis cancelled: %v", filePath, err))
		return result
	}

	parsed, err := s.parse(ctx, filePath)
	if err != nil {
		s.metrics.ObserveParseError()
		s.logger.Warnw("failed to parse file", "path", filePath, "error", err)
		result.errors = append(result.errors, fmt.Sprintf("[%s] %v", filePath, err))
		return result
	}

	for _, fn := range parsed.Functions {
		if !matchesFunction(fn.Name, req.FunctionPatterns) {
			continue
		}

		fr, err := s.analyzeFunction(fn, filePath, req)
		if err != nil {
			result.errors = append(result.errors, fmt.Sprintf("[%s:%s] Analysis failed: %v", filePath, fn.Name, err))
			continue
		}
		if !fr.IsAnalyzed() {
			s.logger.Warnw("function declined", "path", filePath, "function", fr.Name, "status", fr.Status, "reason", fr.Reason)
			result.warnings = append(result.warnings, fmt.Sprintf("[%s:%s] %s: %s", filePath, fr.Name, fr.Status, fr.Reason))
		}
		s.metrics.ObserveFunction(&fr)
		result.functions = append(result.functions, fr)
	}

	sort.SliceStable(result.functions, func(i, j int) bool {
		return result.functions[i].StartLine < result.functions[j].StartLine
	})

	s.metrics.ObserveFile(startTime)
	s.logger.Debugw("analyzed file", "path", filePath, "language", parsed.Language,
		"functions", len(result.functions), "elapsed", time.Since(startTime))
	return result
}

// parse returns the cached parse of unchanged content or parses the file
func (s *RouteServiceImpl) parse(ctx context.Context, filePath string) (*parser.ParseResult, error) {
	lang, ok := parser.LanguageForPath(filePath)
	if !ok {
		return nil, domain.NewUnsupportedFormatError(filePath)
	}

	content, err := s.fileReader.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	hash := ContentHash(content)
	if cached, ok := s.cache.Get(filePath, hash); ok {
		return cached, nil
	}

	// tree-sitter parsers are not goroutine-safe, so every call gets its own
	p, err := parser.New(lang)
	if err != nil {
		return nil, domain.NewParseError(filePath, err)
	}
	parsed, err := p.ParseNamed(ctx, filePath, content)
	if err != nil {
		return nil, domain.NewParseError(filePath, err)
	}

	s.cache.Put(filePath, hash, parsed)
	return parsed, nil
}

// analyzeFunction maps one analyzer outcome to FunctionRoutes. Declined
// functions carry a status and reason, never an empty route list; any other
// error is returned.
func (s *RouteServiceImpl) analyzeFunction(fn *parser.Function, filePath string, req domain.RouteRequest) (domain.FunctionRoutes, error) {
	fr := domain.FunctionRoutes{
		Name:            fn.Name,
		FilePath:        filePath,
		Language:        string(fn.Language),
		StartLine:       fn.Location.StartLine,
		EndLine:         fn.Location.EndLine,
		MaxNestingDepth: analyzer.CalculateMaxNestingDepth(fn).MaxDepth,
		Routes:          []domain.RouteInfo{},
	}
	if req.ShowLowered {
		var sb strings.Builder
		fn.Node.Accept(parser.NewPrinterVisitor(&sb))
		fr.Lowered = sb.String()
	}

	a, err := analyzer.Analyze(fn, analyzer.Options{
		MaxRoutes:    req.MaxRoutes,
		MaxTreeNodes: req.MaxTreeNodes,
		ImplicitElse: req.ImplicitElse,
	})
	switch {
	case errors.Is(err, analyzer.ErrUnsupportedConstruct):
		fr.Status = domain.RouteStatusUnsupported
		fr.Reason = err.Error()
		return fr, nil
	case errors.Is(err, analyzer.ErrTooComplex):
		fr.Status = domain.RouteStatusTooComplex
		fr.Reason = err.Error()
		return fr, nil
	case err != nil:
		return fr, err
	}

	fr.Status = domain.RouteStatusAnalyzed
	fr.BlockCount = len(a.Blocks)
	fr.BranchCount = a.Tree.BranchCount()
	fr.LeafCount = len(a.Tree.Leaves())

	for i, r := range a.Routes() {
		fr.Routes = append(fr.Routes, convertRoute(i+1, r))
	}
	if req.ShowTree {
		tree := convertTreeNode(a.Tree.Root())
		fr.Tree = &tree
	}
	if req.ShowDump {
		fr.Dump = analyzer.Dump(a)
	}
	return fr, nil
}

func convertRoute(index int, r *analyzer.Route) domain.RouteInfo {
	info := domain.RouteInfo{
		Index:       index,
		Fingerprint: fmt.Sprintf("%016x", r.Fingerprint()),
		HasBreak:    r.HasBreak(),
		Length:      r.Len(),
		Emissions:   []domain.Emission{},
		Path:        make([]string, 0, r.Len()),
	}
	for _, stmt := range r.Emissions() {
		info.Emissions = append(info.Emissions, domain.Emission{Text: stmt.Text(), Line: stmt.Line()})
	}
	for _, n := range r.Nodes() {
		info.Path = append(info.Path, n.Key())
	}
	return info
}

func convertTreeNode(n *analyzer.RouteTreeNode) domain.TreeNodeInfo {
	info := domain.TreeNodeInfo{
		Kind:  n.Kind().String(),
		Key:   n.Key(),
		Label: n.Label(),
		Line:  n.Line(),
		Depth: n.Depth(),
	}
	switch {
	case n.IsBranch():
		if n.ElseClause() == nil {
			info.Flags = append(info.Flags, "no-else")
		}
	case n.IsLeaf():
		block := n.Block()
		if block.AllBreak() {
			info.Flags = append(info.Flags, "all-break")
		} else if block.HasBreak() {
			info.Flags = append(info.Flags, "break")
		}
		if block.ConstructionBound() {
			info.Flags = append(info.Flags, "construction-bound")
		}
	}
	for _, child := range n.Children() {
		info.Children = append(info.Children, convertTreeNode(child))
	}
	return info
}

// matchesFunction reports whether a qualified function name matches one of
// the patterns, or its last segment does. No patterns matches everything.
func matchesFunction(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	short := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		short = name[i+1:]
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, short); ok {
			return true
		}
	}
	return false
}

// generateSummary aggregates per-function outcomes
func (s *RouteServiceImpl) generateSummary(functions []domain.FunctionRoutes, filesAnalyzed int) domain.RouteSummary {
	summary := domain.RouteSummary{
		FilesAnalyzed:       filesAnalyzed,
		TotalFunctions:      len(functions),
		FunctionsByLanguage: make(map[string]int),
	}

	for _, fn := range functions {
		summary.FunctionsByLanguage[fn.Language]++
		switch fn.Status {
		case domain.RouteStatusAnalyzed:
			summary.AnalyzedFunctions++
		case domain.RouteStatusUnsupported:
			summary.UnsupportedFunctions++
		case domain.RouteStatusTooComplex:
			summary.TooComplexFunctions++
		}

		summary.TotalRoutes += len(fn.Routes)
		if len(fn.Routes) > summary.MaxRoutesPerFunction {
			summary.MaxRoutesPerFunction = len(fn.Routes)
		}
		for _, r := range fn.Routes {
			if r.HasBreak {
				summary.BreakingRoutes++
			}
		}
	}
	return summary
}

// buildConfigForResponse echoes the options the run used
func (s *RouteServiceImpl) buildConfigForResponse(req domain.RouteRequest) map[string]interface{} {
	return map[string]interface{}{
		"max_routes":        req.MaxRoutes,
		"max_tree_nodes":    req.MaxTreeNodes,
		"implicit_else":     req.ImplicitElse,
		"function_patterns": req.FunctionPatterns,
		"languages":         req.Languages,
	}
}

var _ domain.RouteService = (*RouteServiceImpl)(nil)

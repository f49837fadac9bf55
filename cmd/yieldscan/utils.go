package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ludo-technologies/yieldscan/domain"
	"github.com/ludo-technologies/yieldscan/internal/config"
	"github.com/ludo-technologies/yieldscan/internal/logging"
	"github.com/ludo-technologies/yieldscan/service"
)

// generateTimestampedFileName generates a filename with timestamp suffix
func generateTimestampedFileName(command, extension string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", command, timestamp, extension)
}

// resolveOutputDirectory returns output.directory of the configuration
// discovered for targetPath, or "" when reports go to stdout
func resolveOutputDirectory(configPath, targetPath string) (string, error) {
	cfg, err := config.LoadConfigWithTarget(configPath, targetPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg.Output.Directory, nil
}

// generateOutputFilePath returns a timestamped report path under the
// configured output directory, or "" when none is configured
func generateOutputFilePath(command string, format domain.OutputFormat, configPath, targetPath string) (string, error) {
	outputDir, err := resolveOutputDirectory(configPath, targetPath)
	if err != nil || outputDir == "" {
		return "", err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}
	return filepath.Join(outputDir, generateTimestampedFileName(command, format.Extension())), nil
}

// getTargetPathFromArgs extracts the first argument as target path, or returns empty string
func getTargetPathFromArgs(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// isVerbose reads the persistent --verbose flag
func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

// newLogger builds the zap logger for a command; logs go to its stderr
func newLogger(cmd *cobra.Command) *zap.SugaredLogger {
	return logging.NewWriter(cmd.ErrOrStderr(), isVerbose(cmd))
}

// newProgressManager shows a progress bar only on an interactive stderr
// and never together with verbose logs
func newProgressManager(cmd *cobra.Command) domain.ProgressManager {
	if isVerbose(cmd) || !service.IsInteractiveEnvironment() {
		return service.NewNoOpProgressManager()
	}
	pm := service.NewProgressManager()
	pm.SetWriter(cmd.ErrOrStderr())
	return pm
}

// printError prints err with its category and recovery suggestions
func printError(w io.Writer, err error) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	fmt.Fprintf(w, "Error: %v\n", err)
	if categorized.Category == domain.ErrorCategoryUnknown {
		return
	}
	fmt.Fprintf(w, "%s: %s\n", categorized.Category, categorized.Message)
	for _, suggestion := range categorizer.GetRecoverySuggestions(categorized.Category) {
		fmt.Fprintf(w, "  - %s\n", suggestion)
	}
}

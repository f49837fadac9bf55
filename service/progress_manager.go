package service

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/ludo-technologies/yieldscan/domain"
)

// ProgressManagerImpl implements the ProgressManager interface with a file
// progress bar on interactive stderr
type ProgressManagerImpl struct {
	mu          sync.Mutex
	writer      io.Writer
	progressBar *progressbar.ProgressBar
	interactive bool
	maxValue    int
	current     int
}

// NewProgressManager creates a new progress manager
func NewProgressManager() *ProgressManagerImpl {
	return &ProgressManagerImpl{
		writer:      os.Stderr,
		interactive: IsInteractiveEnvironment(),
	}
}

// IsInteractiveEnvironment reports whether stderr is a terminal and CI is not
// set
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" {
		return false
	}
	return isTerminalWriter(os.Stderr)
}

func isTerminalWriter(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// Initialize sets up progress tracking with the maximum value
func (pm *ProgressManagerImpl) Initialize(maxValue int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.maxValue = maxValue
	pm.current = 0
}

// Start starts the progress bar
func (pm *ProgressManagerImpl) Start() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.interactive && pm.progressBar == nil && pm.maxValue > 1 {
		pm.progressBar = pm.createProgressBar("Enumerating routes", pm.maxValue)
	}
}

// Increment advances the progress by one file
func (pm *ProgressManagerImpl) Increment() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.current++
	if pm.progressBar != nil {
		_ = pm.progressBar.Add(1)
	}
}

// Current returns the number of increments since Initialize
func (pm *ProgressManagerImpl) Current() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.current
}

// Complete marks the progress as completed (finishes the progress bar)
func (pm *ProgressManagerImpl) Complete(success bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.progressBar == nil {
		return
	}
	if success {
		_ = pm.progressBar.Finish()
	} else {
		_ = pm.progressBar.Exit()
	}
	pm.progressBar = nil
}

// SetWriter sets the output writer for progress bars
func (pm *ProgressManagerImpl) SetWriter(writer io.Writer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.writer = writer
	pm.interactive = isTerminalWriter(writer)
}

// IsInteractive returns true if progress bars should be shown
func (pm *ProgressManagerImpl) IsInteractive() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	return pm.interactive
}

// Close cleans up any resources
func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.progressBar != nil {
		_ = pm.progressBar.Finish()
		pm.progressBar = nil
	}
}

// createProgressBar creates a new progress bar with consistent styling
func (pm *ProgressManagerImpl) createProgressBar(description string, max int) *progressbar.ProgressBar {
	writer := pm.writer
	if writer == nil {
		writer = io.Discard
	}

	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(writer),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(writer)
		}),
	)
}

// NoOpProgressManager discards progress, used for non-interactive runs and
// the MCP server
type NoOpProgressManager struct{}

// NewNoOpProgressManager creates a progress manager that does nothing
func NewNoOpProgressManager() *NoOpProgressManager { return &NoOpProgressManager{} }

func (NoOpProgressManager) Initialize(int)      {}
func (NoOpProgressManager) Start()              {}
func (NoOpProgressManager) Complete(bool)       {}
func (NoOpProgressManager) Increment()          {}
func (NoOpProgressManager) SetWriter(io.Writer) {}
func (NoOpProgressManager) IsInteractive() bool { return false }
func (NoOpProgressManager) Close()              {}

var (
	_ domain.ProgressManager = (*ProgressManagerImpl)(nil)
	_ domain.ProgressManager = (*NoOpProgressManager)(nil)
)

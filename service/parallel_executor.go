package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ludo-technologies/yieldscan/domain"
)

// ParallelExecutorImpl implements the ParallelExecutor interface
type ParallelExecutorImpl struct {
	maxConcurrency int
	timeout        time.Duration
}

// NewParallelExecutor creates a new parallel executor
func NewParallelExecutor() *ParallelExecutorImpl {
	return &ParallelExecutorImpl{
		maxConcurrency: domain.DefaultMaxGoroutines,
		timeout:        time.Duration(domain.DefaultTimeoutSeconds) * time.Second,
	}
}

// Execute runs the enabled tasks with bounded concurrency. Tasks that have
// not started when the context is done are skipped. The first task error is
// returned after all started tasks finished; a deadline becomes a timeout
// error.
func (pe *ParallelExecutorImpl) Execute(ctx context.Context, tasks []domain.ExecutableTask) error {
	if len(tasks) == 0 {
		return nil
	}

	if pe.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pe.timeout)
		defer cancel()
	}

	var semaphore chan struct{}
	if pe.maxConcurrency > 0 {
		semaphore = make(chan struct{}, pe.maxConcurrency)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(tasks))

	for _, task := range tasks {
		if !task.IsEnabled() {
			continue
		}

		wg.Add(1)
		go func(t domain.ExecutableTask) {
			defer wg.Done()

			if semaphore != nil {
				select {
				case semaphore <- struct{}{}:
					defer func() { <-semaphore }()
				case <-ctx.Done():
					errChan <- fmt.Errorf("task %s cancelled: %w", t.Name(), ctx.Err())
					return
				}
			}

			select {
			case <-ctx.Done():
				errChan <- fmt.Errorf("task %s cancelled: %w", t.Name(), ctx.Err())
				return
			default:
			}

			if _, err := t.Execute(ctx); err != nil {
				errChan <- fmt.Errorf("task %s failed: %w", t.Name(), err)
			}
		}(task)
	}

	wg.Wait()
	close(errChan)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewTimeoutError(fmt.Sprintf("analysis timed out after %v", pe.timeout), ctx.Err())
	}

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("parallel execution failed with %d errors: %w", len(errs), errs[0])
	}
	return nil
}

// SetMaxConcurrency sets the maximum number of concurrent tasks; zero or
// less removes the bound
func (pe *ParallelExecutorImpl) SetMaxConcurrency(max int) {
	pe.maxConcurrency = max
}

// SetTimeout sets the timeout for all tasks; zero disables it
func (pe *ParallelExecutorImpl) SetTimeout(timeout time.Duration) {
	pe.timeout = timeout
}

// SimpleTask is a basic implementation of ExecutableTask
type SimpleTask struct {
	name    string
	enabled bool
	execute func(context.Context) (interface{}, error)
}

// NewSimpleTask creates a new simple task
func NewSimpleTask(name string, enabled bool, execute func(context.Context) (interface{}, error)) domain.ExecutableTask {
	return &SimpleTask{
		name:    name,
		enabled: enabled,
		execute: execute,
	}
}

// Name returns the name of the task
func (t *SimpleTask) Name() string {
	return t.name
}

// Execute runs the task and returns the result
func (t *SimpleTask) Execute(ctx context.Context) (interface{}, error) {
	if t.execute == nil {
		return nil, fmt.Errorf("task %s has no execute function", t.name)
	}
	return t.execute(ctx)
}

// IsEnabled returns whether the task should be executed
func (t *SimpleTask) IsEnabled() bool {
	return t.enabled
}

package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devicelab-dev/agent-runner/pkg/core"
	"github.com/devicelab-dev/agent-runner/pkg/logger"
)

// DefaultMaxSteps caps a run; no task may issue more instructions.
const DefaultMaxSteps = 50

// Oracle is the external decision service producing the next instruction.
// Implementations must not fail: transport or parse problems are reported
// in-band as a synthetic `{"action":"error",...}` instruction, which the
// loop treats like any other terminal error.
type Oracle interface {
	NextInstruction(ctx context.Context, task string, history []string, sourcePath, screenshotPath string, platform core.Platform) string
}

// Capturer persists the current state artifacts for one step and returns
// their paths. An error is the loop-terminating capture failure.
type Capturer interface {
	Capture(name string, platform core.Platform) (sourcePath, screenshotPath string, err error)
}

// StepRecorder persists one outcome record. Implemented by report.RunWriter.
type StepRecorder interface {
	WriteStep(index int, outcome []byte) error
}

// Termination says why a run ended.
type Termination string

// Termination reasons. Step-cap exhaustion is a normal terminal state,
// not an error.
const (
	TerminatedByAction          Termination = "action"
	TerminatedByStepCap         Termination = "step_cap"
	TerminatedByCaptureFailure  Termination = "capture_failure"
	TerminatedByUnknownPlatform Termination = "unknown_platform"
)

// StepRecord is the immutable record of one loop iteration.
type StepRecord struct {
	Index          int
	Outcome        *core.Outcome
	SourcePath     string
	ScreenshotPath string
}

// RunResult is the outcome of one task run.
type RunResult struct {
	Task        string
	Platform    core.Platform
	Steps       []StepRecord
	Termination Termination
	Duration    time.Duration
}

// RunnerConfig wires the runner's collaborators.
type RunnerConfig struct {
	Session        core.Session
	WebExecutor    core.Executor
	MobileExecutor core.Executor
	Oracle         Oracle
	Capturer       Capturer
	Recorder       StepRecorder // optional

	MaxSteps          int           // 0 = DefaultMaxSteps
	KeepAliveInterval time.Duration // 0 = 10s

	// Live progress callback (optional)
	OnStepComplete func(index int, outcome *core.Outcome)
}

// Runner drives the bounded step loop for one task at a time. It owns the
// session exclusively for the duration of a run; actions are strictly
// sequential.
type Runner struct {
	config RunnerConfig
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.KeepAliveInterval <= 0 {
		cfg.KeepAliveInterval = 10 * time.Second
	}
	return &Runner{config: cfg}
}

// Run executes one task to termination. It never returns an error: every
// failure mode is a terminal state on the result, so a flaky backend or
// oracle cannot crash a multi-task session.
func (r *Runner) Run(ctx context.Context, task string) *RunResult {
	start := time.Now()
	result := &RunResult{Task: task}

	// Keep-alive lives exactly as long as this run, whatever the exit path.
	kctx, cancel := context.WithCancel(ctx)
	g, kctx := errgroup.WithContext(kctx)
	g.Go(func() error {
		keepAlive(kctx, r.config.Session, r.config.KeepAliveInterval)
		return nil
	})
	defer func() {
		cancel()
		_ = g.Wait()
		result.Duration = time.Since(start)
	}()

	// Platform detection from the raw source decides which executor
	// handles the whole run.
	source, err := r.config.Session.Source()
	if err != nil {
		logger.Error("initial source fetch failed: %v", err)
		result.Termination = TerminatedByCaptureFailure
		return result
	}
	result.Platform = core.DetectPlatform(source)
	logger.Info("detected platform: %s", result.Platform)

	exec := r.executorFor(result.Platform)
	if exec == nil {
		result.Termination = TerminatedByUnknownPlatform
		return result
	}
	dispatcher := NewDispatcher(exec, result.Platform)

	sourcePath, screenshotPath, err := r.config.Capturer.Capture("step_0", result.Platform)
	if err != nil {
		logger.Error("initial capture failed: %v", err)
		result.Termination = TerminatedByCaptureFailure
		return result
	}

	var history []string

	for len(result.Steps) < r.config.MaxSteps {
		index := len(result.Steps) + 1

		instruction := r.config.Oracle.NextInstruction(ctx, task, history, sourcePath, screenshotPath, result.Platform)
		logger.Info("step %d: %s", index, instruction)

		outcome := dispatcher.Dispatch(instruction)

		// The degenerate invalid-JSON record has no state worth capturing;
		// every other outcome gets a fresh capture before the next ask.
		var captureErr error
		if outcome.Result != core.ResultInvalidJSON {
			sourcePath, screenshotPath, captureErr = r.config.Capturer.Capture(fmt.Sprintf("step_%d", index), result.Platform)
		}

		record := StepRecord{
			Index:          index,
			Outcome:        outcome,
			SourcePath:     sourcePath,
			ScreenshotPath: screenshotPath,
		}
		result.Steps = append(result.Steps, record)
		history = append(history, marshalOutcome(outcome))
		r.recordStep(record)

		if outcome.Action.Kind.Terminal() {
			result.Termination = TerminatedByAction
			return result
		}
		if captureErr != nil {
			logger.Error("capture failed at step %d: %v", index, captureErr)
			result.Termination = TerminatedByCaptureFailure
			return result
		}
	}

	result.Termination = TerminatedByStepCap
	return result
}

func (r *Runner) executorFor(platform core.Platform) core.Executor {
	switch {
	case platform == core.PlatformWeb:
		return r.config.WebExecutor
	case platform.IsMobile():
		return r.config.MobileExecutor
	default:
		return nil
	}
}

func (r *Runner) recordStep(record StepRecord) {
	if r.config.OnStepComplete != nil {
		r.config.OnStepComplete(record.Index, record.Outcome)
	}
	if r.config.Recorder == nil {
		return
	}
	// A failed write loses one artifact, not the run.
	if err := r.config.Recorder.WriteStep(record.Index, []byte(marshalOutcome(record.Outcome))); err != nil {
		logger.Warn("failed to record step %d: %v", record.Index, err)
	}
}

func marshalOutcome(outcome *core.Outcome) string {
	data, err := json.Marshal(outcome)
	if err != nil {
		// Outcome payloads come from json.Unmarshal, so this cannot happen
		// for real instructions.
		return `{"action":"error","result":"unserializable outcome"}`
	}
	return string(data)
}

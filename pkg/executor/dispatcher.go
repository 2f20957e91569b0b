// Package executor connects the decision oracle to the platform drivers:
// it interprets raw instructions, executes them, and drives the bounded
// step loop for one task.
package executor

import (
	"encoding/json"

	"github.com/devicelab-dev/agent-runner/pkg/core"
	"github.com/devicelab-dev/agent-runner/pkg/logger"
)

// Dispatcher parses oracle instructions and routes them to an executor.
// It holds no state between instructions; everything it mutates lives in
// the backend session.
type Dispatcher struct {
	executor core.Executor
	platform core.Platform
}

// NewDispatcher creates a dispatcher bound to one executor and platform.
func NewDispatcher(exec core.Executor, platform core.Platform) *Dispatcher {
	return &Dispatcher{executor: exec, platform: platform}
}

// Dispatch interprets one raw instruction and returns its outcome record.
// Execution failures are downgraded to a per-step error result; UI
// automation is flaky and a single failed locator must not kill the run.
// Nothing escapes as a Go error.
func (d *Dispatcher) Dispatch(raw string) *core.Outcome {
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		logger.Error("invalid JSON instruction: %s", raw)
		return core.InvalidJSONOutcome()
	}

	a := core.ParseAction(payload)

	// Terminal instructions execute nothing; observing one is itself the
	// successful path.
	if a.Kind.Terminal() {
		return core.NewOutcome(a, core.ResultSuccess)
	}

	var err error
	switch a.Kind {
	case core.KindTap:
		err = d.executor.Tap(a)
	case core.KindInput:
		err = d.executor.Input(a)
	case core.KindSwipe:
		err = d.executor.Swipe(a)
	case core.KindWait:
		err = d.executor.Wait(a)
	default:
		logger.Warn("unknown action: %s", a.Name)
		return core.NewOutcome(a, core.ResultUnknownAction)
	}

	if err != nil {
		logger.Error("action %s failed: %v", a.Kind, err)
		return core.NewOutcome(a, core.ErrorResult(err))
	}
	return core.NewOutcome(a, core.ResultSuccess)
}

// Package jsengine provides JavaScript expression evaluation for task
// definitions. Task details may embed ${...} expressions that are expanded
// against configured environment variables before the task reaches the
// decision loop.
package jsengine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// Engine wraps a goja runtime with the agent's globals.
type Engine struct {
	runtime   *goja.Runtime
	variables map[string]interface{}
	platform  string
	mu        sync.Mutex
}

// New creates a new JS engine instance.
func New() *Engine {
	e := &Engine{
		runtime:   goja.New(),
		variables: make(map[string]interface{}),
	}
	e.setupBuiltins()
	return e
}

func (e *Engine) setupBuiltins() {
	e.setupConsole()

	// agent.platform - platform of the current session
	agent := e.runtime.NewObject()
	agent.DefineAccessorProperty("platform", e.runtime.ToValue(func() string {
		return e.platform
	}), nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	e.runtime.Set("agent", agent)
}

func (e *Engine) setupConsole() {
	makeConsoleFunc := func(prefix string) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			if prefix != "" {
				fmt.Println(prefix, args)
			} else {
				fmt.Println(args...)
			}
			return goja.Undefined()
		}
	}

	console := e.runtime.NewObject()
	console.Set("log", makeConsoleFunc(""))
	console.Set("error", makeConsoleFunc("ERROR:"))
	console.Set("warn", makeConsoleFunc("WARN:"))
	e.runtime.Set("console", console)
}

// SetVariable sets a variable accessible in JS as a global.
func (e *Engine) SetVariable(name string, value interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.variables[name] = value
	e.runtime.Set(name, value)
}

// SetVariables sets multiple variables.
func (e *Engine) SetVariables(vars map[string]interface{}) {
	for k, v := range vars {
		e.SetVariable(k, v)
	}
}

// SetEnv exposes string environment values as JS globals.
func (e *Engine) SetEnv(env map[string]string) {
	for k, v := range env {
		e.SetVariable(k, v)
	}
}

// SetPlatform sets the platform reported by agent.platform.
func (e *Engine) SetPlatform(platform string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.platform = platform
}

// Eval evaluates a JavaScript expression and returns the result.
func (e *Engine) Eval(script string) (interface{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	result, err := e.runtime.RunString(script)
	if err != nil {
		return nil, fmt.Errorf("JS eval error: %w", err)
	}
	return result.Export(), nil
}

// EvalString evaluates a JavaScript expression and returns string result.
func (e *Engine) EvalString(script string) (string, error) {
	result, err := e.Eval(script)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return fmt.Sprintf("%v", result), nil
}

// ExpandVariables expands ${...} expressions in a string using JS
// evaluation. Expressions that fail to evaluate stay in place verbatim.
func (e *Engine) ExpandVariables(text string) (string, error) {
	result := text
	start := 0

	for {
		idx := strings.Index(result[start:], "${")
		if idx == -1 {
			break
		}
		idx += start

		// Find matching }
		depth := 1
		end := idx + 2
		for end < len(result) && depth > 0 {
			if result[end] == '{' {
				depth++
			} else if result[end] == '}' {
				depth--
			}
			end++
		}

		if depth != 0 {
			// Unmatched brace, skip
			start = idx + 2
			continue
		}

		expr := result[idx+2 : end-1]

		value, err := e.EvalString(expr)
		if err != nil {
			start = end
			continue
		}

		result = result[:idx] + value + result[end:]
		start = idx + len(value)
	}

	return result, nil
}

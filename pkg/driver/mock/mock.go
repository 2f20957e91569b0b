// Package mock provides an in-memory executor and session for testing
// without a real browser or device.
package mock

import (
	"fmt"
	"sync"

	"github.com/devicelab-dev/agent-runner/pkg/core"
)

// Driver is a mock implementation of core.Executor and core.Session.
type Driver struct {
	// Configuration
	Config Config

	mu        sync.Mutex
	calls     []string
	actions   []core.Action
	pingCount int
	closed    bool
}

// Config configures mock driver behavior.
type Config struct {
	// FailOnCall makes executor call N fail (1-indexed). 0 = never fail.
	FailOnCall int
	// Source is returned by Source(). Defaults to an Android hierarchy.
	Source string
	// SourceErr makes Source() fail, simulating capture failure.
	SourceErr error
}

// New creates a new mock driver.
func New(cfg Config) *Driver {
	if cfg.Source == "" {
		cfg.Source = `<hierarchy rotation="0"><node class="android.widget.FrameLayout" bounds="[0,0][1080,2400]"/></hierarchy>`
	}
	return &Driver{Config: cfg}
}

func (d *Driver) record(op string, a core.Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls = append(d.calls, op)
	d.actions = append(d.actions, a)
	if d.Config.FailOnCall > 0 && len(d.calls) == d.Config.FailOnCall {
		return fmt.Errorf("mock failure on call %d (%s)", len(d.calls), op)
	}
	return nil
}

// Tap implements core.Executor.
func (d *Driver) Tap(a core.Action) error { return d.record("tap", a) }

// Input implements core.Executor.
func (d *Driver) Input(a core.Action) error { return d.record("input", a) }

// Swipe implements core.Executor.
func (d *Driver) Swipe(a core.Action) error { return d.record("swipe", a) }

// Wait implements core.Executor. No actual delay; tests stay fast.
func (d *Driver) Wait(a core.Action) error { return d.record("wait", a) }

// Calls returns the executor operations performed, in order.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// Actions returns the actions passed to the executor, in order.
func (d *Driver) Actions() []core.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]core.Action(nil), d.actions...)
}

// Source implements core.Session.
func (d *Driver) Source() (string, error) {
	if d.Config.SourceErr != nil {
		return "", d.Config.SourceErr
	}
	return d.Config.Source, nil
}

// Screenshot implements core.Session with a 1x1 transparent PNG.
func (d *Driver) Screenshot() ([]byte, error) {
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, // PNG signature
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52, // IHDR chunk
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}, nil
}

// Ping implements core.Session.
func (d *Driver) Ping() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pingCount++
	return nil
}

// PingCount returns how many liveness probes were issued.
func (d *Driver) PingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pingCount
}

// Close implements core.Session.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Closed reports whether Close was called.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

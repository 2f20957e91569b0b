package appium

import (
	"math"
	"time"

	"github.com/devicelab-dev/agent-runner/pkg/core"
	"github.com/devicelab-dev/agent-runner/pkg/logger"
)

// focusedElementXPath locates whatever currently holds input focus.
// Bounds-addressed input taps a coordinate, so the focused field has to be
// found after the fact; the same lookup is used after xpath clicks for
// consistency across both addressing modes.
const focusedElementXPath = "//*[@focused='true']"

// Driver implements core.Executor and core.Session for Android and iOS.
// Both platforms share one implementation; the Appium server hides the
// differences behind the WebDriver protocol.
type Driver struct {
	client   *Client
	platform core.Platform
}

// NewDriver creates a mobile driver connected to an Appium server.
func NewDriver(serverURL string, capabilities map[string]interface{}) (*Driver, error) {
	client := NewClient(serverURL)
	if err := client.Connect(capabilities); err != nil {
		return nil, err
	}
	return &Driver{
		client:   client,
		platform: core.Platform(client.Platform()),
	}, nil
}

// NewDriverWithClient wraps an already connected client. Used by tests.
func NewDriverWithClient(client *Client, platform core.Platform) *Driver {
	return &Driver{client: client, platform: platform}
}

// Tap implements core.Executor. Bounds taps go to the rect center as a
// touch gesture; xpath taps click the element directly. Native drivers are
// synchronously ready, so there is no readiness wait.
func (d *Driver) Tap(a core.Action) error {
	loc, err := a.Locator(d.platform)
	if err != nil {
		return err
	}

	if loc.Kind == core.LocatorBounds {
		x, y := center(loc.Rect)
		logger.Debug("mobile tap at (%d, %d)", x, y)
		return d.client.Tap(x, y)
	}

	elemID, err := d.client.FindElement("xpath", loc.Query)
	if err != nil {
		return err
	}
	return d.client.ClickElement(elemID)
}

// Input implements core.Executor. The addressed element is tapped or
// clicked to move focus there, then the focused element receives the text.
// Keyboard dismissal afterwards is best-effort: a failure is logged and
// ignored, never fatal.
func (d *Driver) Input(a core.Action) error {
	loc, err := a.Locator(d.platform)
	if err != nil {
		return err
	}

	if loc.Kind == core.LocatorBounds {
		x, y := center(loc.Rect)
		if err := d.client.Tap(x, y); err != nil {
			return err
		}
	} else {
		elemID, err := d.client.FindElement("xpath", loc.Query)
		if err != nil {
			return err
		}
		if err := d.client.ClickElement(elemID); err != nil {
			return err
		}
	}

	focusedID, err := d.client.FindElement("xpath", focusedElementXPath)
	if err != nil {
		return err
	}
	if err := d.client.SendKeys(focusedID, a.Value); err != nil {
		return err
	}

	if err := d.client.HideKeyboard(); err != nil {
		// Ignore-and-continue: no keyboard may be shown, or the driver may
		// not support dismissal.
		logger.Debug("hide keyboard ignored: %v", err)
	}
	return nil
}

// Swipe implements core.Executor, then suspends for the gesture duration.
// Native transition animations expose no completion signal; the trailing
// settle keeps the next state capture from racing the UI.
func (d *Driver) Swipe(a core.Action) error {
	err := d.client.Swipe(a.SwipeStartX, a.SwipeStartY, a.SwipeEndX, a.SwipeEndY, a.DurationMs)
	if err != nil {
		return err
	}
	time.Sleep(time.Duration(a.DurationMs) * time.Millisecond)
	return nil
}

// Wait implements core.Executor as a plain delay.
func (d *Driver) Wait(a core.Action) error {
	time.Sleep(time.Duration(a.TimeoutMs) * time.Millisecond)
	return nil
}

// center rounds the half-pixel-precise rect center to device pixels.
func center(r core.Rect) (int, int) {
	x, y := r.Center()
	return int(math.Round(x)), int(math.Round(y))
}

// Session

// Source implements core.Session.
func (d *Driver) Source() (string, error) {
	return d.client.Source()
}

// Screenshot implements core.Session.
func (d *Driver) Screenshot() ([]byte, error) {
	return d.client.Screenshot()
}

// Ping implements core.Session. Page source is the cheapest request the
// Appium session answers without side effects.
func (d *Driver) Ping() error {
	_, err := d.client.Source()
	return err
}

// Close implements core.Session.
func (d *Driver) Close() error {
	return d.client.Disconnect()
}

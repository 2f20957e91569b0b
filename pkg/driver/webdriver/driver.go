package webdriver

import (
	"fmt"
	"time"

	"github.com/devicelab-dev/agent-runner/pkg/core"
	"github.com/devicelab-dev/agent-runner/pkg/logger"
)

// DefaultReadyTimeout is the default wait for element readiness.
const DefaultReadyTimeout = 10 * time.Second

// pollInterval between element readiness probes.
const pollInterval = 200 * time.Millisecond

// Driver implements core.Executor and core.Session for web pages.
type Driver struct {
	client       *Client
	readyTimeout time.Duration
}

// NewDriver creates a web driver connected to a WebDriver server.
func NewDriver(serverURL string, capabilities map[string]interface{}) (*Driver, error) {
	client := NewClient(serverURL)
	if err := client.Connect(capabilities); err != nil {
		return nil, err
	}
	return &Driver{client: client}, nil
}

// NewDriverWithClient wraps an already connected client. Used by tests.
func NewDriverWithClient(client *Client) *Driver {
	return &Driver{client: client}
}

// SetReadyTimeout overrides the element readiness wait.
func (d *Driver) SetReadyTimeout(timeout time.Duration) {
	d.readyTimeout = timeout
}

func (d *Driver) getReadyTimeout() time.Duration {
	if d.readyTimeout > 0 {
		return d.readyTimeout
	}
	return DefaultReadyTimeout
}

// NavigateTo loads the initial URL for the run.
func (d *Driver) NavigateTo(url string) error {
	return d.client.NavigateTo(url)
}

// Tap implements core.Executor. Selector-addressed elements are waited on
// until clickable; bounds-addressed taps go through the scripting bridge
// since there is no element handle to poll.
func (d *Driver) Tap(a core.Action) error {
	loc, err := a.Locator(core.PlatformWeb)
	if err != nil {
		return err
	}

	switch loc.Kind {
	case core.LocatorBounds:
		x, y := loc.Rect.Center()
		logger.Debug("web tap at point (%v, %v)", x, y)
		_, err := d.client.ExecuteScript(fmt.Sprintf("document.elementFromPoint(%v, %v).click();", x, y), nil)
		return err
	default:
		elemID, err := d.waitClickable(strategyFor(loc), loc.Query)
		if err != nil {
			return err
		}
		return d.client.ClickElement(elemID)
	}
}

// Input implements core.Executor: wait for presence, clear, type.
func (d *Driver) Input(a core.Action) error {
	loc, err := a.Locator(core.PlatformWeb)
	if err != nil {
		return err
	}
	if loc.Kind == core.LocatorBounds {
		return fmt.Errorf("input by bounds is not supported on web")
	}

	elemID, err := d.waitPresent(strategyFor(loc), loc.Query)
	if err != nil {
		return err
	}
	if err := d.client.ClearElement(elemID); err != nil {
		return err
	}
	return d.client.SendKeys(elemID, a.Value)
}

// Swipe implements core.Executor as a relative scroll through the
// scripting bridge. Fire-and-forget: no wait, no completion check.
func (d *Driver) Swipe(a core.Action) error {
	dx := a.SwipeEndX - a.SwipeStartX
	dy := a.SwipeEndY - a.SwipeStartY
	logger.Debug("web scroll by (%d, %d)", dx, dy)
	_, err := d.client.ExecuteScript(fmt.Sprintf("window.scrollBy(%d, %d);", dx, dy), nil)
	return err
}

// Wait implements core.Executor as a plain delay.
func (d *Driver) Wait(a core.Action) error {
	time.Sleep(time.Duration(a.TimeoutMs) * time.Millisecond)
	return nil
}

func strategyFor(loc core.Locator) string {
	if loc.Kind == core.LocatorCSS {
		return StrategyCSS
	}
	return StrategyXPath
}

// waitClickable polls until the element is found, displayed and enabled.
func (d *Driver) waitClickable(strategy, value string) (string, error) {
	deadline := time.Now().Add(d.getReadyTimeout())

	for {
		elemID, err := d.client.FindElement(strategy, value)
		if err == nil && elemID != "" {
			displayed, _ := d.client.IsElementDisplayed(elemID)
			enabled, _ := d.client.IsElementEnabled(elemID)
			if displayed && enabled {
				return elemID, nil
			}
			err = fmt.Errorf("element not clickable: %s", value)
		}

		if time.Now().After(deadline) {
			if err != nil {
				return "", err
			}
			return "", fmt.Errorf("element not clickable: %s", value)
		}
		time.Sleep(pollInterval)
	}
}

// waitPresent polls until the element is found.
func (d *Driver) waitPresent(strategy, value string) (string, error) {
	deadline := time.Now().Add(d.getReadyTimeout())

	for {
		elemID, err := d.client.FindElement(strategy, value)
		if err == nil && elemID != "" {
			return elemID, nil
		}

		if time.Now().After(deadline) {
			if err != nil {
				return "", err
			}
			return "", fmt.Errorf("element not found: %s", value)
		}
		time.Sleep(pollInterval)
	}
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

// Ping implements core.Session using the current URL endpoint.
func (d *Driver) Ping() error {
	_, err := d.client.CurrentURL()
	return err
}

// Close implements core.Session.
func (d *Driver) Close() error {
	return d.client.Disconnect()
}

package core

// Executor executes interpreted actions against one automation backend.
// Implementations: webdriver (web DOM), appium (Android/iOS).
// The step loop picks one implementation per run based on the detected
// platform; the dispatcher routes individual actions to it.
type Executor interface {
	// Tap clicks/taps the element addressed by the action's locator.
	Tap(a Action) error

	// Input focuses the addressed element and replaces its text.
	Input(a Action) error

	// Swipe performs a scroll/swipe between the action's explicit
	// coordinates. Locator fields are ignored.
	Swipe(a Action) error

	// Wait suspends for the action's timeout. A plain delay, not a
	// condition wait.
	Wait(a Action) error
}

// Session is the live backend connection owned by the step loop for the
// duration of one run. At most one action may be in flight against it.
type Session interface {
	// Source returns the current page source or view hierarchy.
	Source() (string, error)

	// Screenshot captures the current screen as PNG.
	Screenshot() ([]byte, error)

	// Ping performs a cheap liveness probe. Used by the keep-alive task
	// to prevent idle session timeouts.
	Ping() error

	// Close terminates the session.
	Close() error
}

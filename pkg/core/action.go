package core

import (
	"encoding/json"
)

// Kind is the action vocabulary produced by the decision oracle.
type Kind string

// Known action kinds. Any other value on the wire maps to KindUnknown.
const (
	KindTap     Kind = "tap"
	KindInput   Kind = "input"
	KindSwipe   Kind = "swipe"
	KindWait    Kind = "wait"
	KindFinish  Kind = "finish"
	KindError   Kind = "error"
	KindUnknown Kind = "unknown"
)

// Terminal reports whether an outcome with this kind ends the run.
func (k Kind) Terminal() bool {
	return k == KindFinish || k == KindError
}

// Default values applied while parsing instructions.
const (
	DefaultSwipeDurationMs = 500
	DefaultWaitTimeoutMs   = 5000
)

// Action is the typed view of one oracle instruction.
// The original JSON object is retained so the outcome record can be
// serialized as the same object plus a "result" key, keeping the history
// shown back to the oracle self-describing.
type Action struct {
	Kind Kind
	Name string // action string exactly as received

	// Locators (tap, input)
	XPath  string
	CSS    string
	Bounds string

	// Input
	Value string

	// Swipe
	SwipeStartX int
	SwipeStartY int
	SwipeEndX   int
	SwipeEndY   int
	DurationMs  int

	// Wait
	TimeoutMs int

	payload map[string]interface{}
}

// ParseAction builds an Action from a decoded instruction object.
// Defaults: swipe duration 500ms, wait timeout 5000ms.
func ParseAction(payload map[string]interface{}) Action {
	name, _ := payload["action"].(string)

	a := Action{
		Kind:       kindOf(name),
		Name:       name,
		DurationMs: DefaultSwipeDurationMs,
		TimeoutMs:  DefaultWaitTimeoutMs,
		payload:    payload,
	}

	a.XPath, _ = payload["xpath"].(string)
	a.CSS, _ = payload["css"].(string)
	a.Bounds, _ = payload["bounds"].(string)
	a.Value, _ = payload["value"].(string)

	a.SwipeStartX = intField(payload, "swipe_start_x", 0)
	a.SwipeStartY = intField(payload, "swipe_start_y", 0)
	a.SwipeEndX = intField(payload, "swipe_end_x", 0)
	a.SwipeEndY = intField(payload, "swipe_end_y", 0)
	a.DurationMs = intField(payload, "duration", DefaultSwipeDurationMs)
	a.TimeoutMs = intField(payload, "timeout", DefaultWaitTimeoutMs)

	return a
}

func kindOf(name string) Kind {
	switch Kind(name) {
	case KindTap, KindInput, KindSwipe, KindWait, KindFinish, KindError:
		return Kind(name)
	default:
		return KindUnknown
	}
}

// intField reads a JSON number as int, falling back to def when absent or
// not a number.
func intField(payload map[string]interface{}, key string, def int) int {
	v, ok := payload[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

// LocatorKind selects the addressing strategy for an element.
type LocatorKind int

// Locator kinds, in priority order.
const (
	LocatorXPath LocatorKind = iota
	LocatorCSS
	LocatorBounds
)

// Locator is a resolved addressing expression.
type Locator struct {
	Kind  LocatorKind
	Query string // xpath or css expression
	Rect  Rect   // for LocatorBounds
}

// Locator resolves the addressing strategy for tap/input actions on the
// given platform. The priority order XPath > CSS > Bounds is a deliberate
// tie-break policy: changing it changes which element an ambiguous
// instruction resolves to. CSS selectors are only eligible on web.
func (a Action) Locator(platform Platform) (Locator, error) {
	if a.XPath != "" {
		return Locator{Kind: LocatorXPath, Query: a.XPath}, nil
	}
	if a.CSS != "" && platform == PlatformWeb {
		return Locator{Kind: LocatorCSS, Query: a.CSS}, nil
	}
	if a.Bounds != "" {
		r, err := ParseBounds(a.Bounds)
		if err != nil {
			return Locator{}, err
		}
		return Locator{Kind: LocatorBounds, Rect: r}, nil
	}
	return Locator{}, ErrMissingLocator.WithMessage("action " + string(a.Kind) + " requires a locator but none was given")
}

// Result strings recorded per step. ResultError is a prefix; the full
// result is "error: <message>".
const (
	ResultSuccess       = "success"
	ResultUnknownAction = "unknown action"
	ResultInvalidJSON   = "Invalid JSON"
)

// ErrorResult formats a per-step execution failure result.
func ErrorResult(err error) string {
	return "error: " + err.Error()
}

// Outcome is the execution record of one instruction. It serializes back
// to the instruction's own JSON object augmented with a "result" key.
type Outcome struct {
	Action Action
	Result string
}

// NewOutcome pairs an action with its result status.
func NewOutcome(a Action, result string) *Outcome {
	return &Outcome{Action: a, Result: result}
}

// InvalidJSONOutcome is the degenerate record for unparseable instructions.
// It is the one outcome whose serialized form is not the received payload:
// there is no payload to echo, only an error marker.
func InvalidJSONOutcome() *Outcome {
	return &Outcome{
		Action: ParseAction(map[string]interface{}{"action": string(KindError)}),
		Result: ResultInvalidJSON,
	}
}

// MarshalJSON implements json.Marshaler.
func (o *Outcome) MarshalJSON() ([]byte, error) {
	payload := o.Action.payload
	if payload == nil {
		payload = map[string]interface{}{"action": o.Action.Name}
	}

	out := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	out["result"] = o.Result

	return json.Marshal(out)
}

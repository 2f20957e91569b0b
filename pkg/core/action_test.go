package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("invalid test JSON: %v", err)
	}
	return payload
}

func TestParseAction_Kinds(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"tap", KindTap},
		{"input", KindInput},
		{"swipe", KindSwipe},
		{"wait", KindWait},
		{"finish", KindFinish},
		{"error", KindError},
		{"long_press", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		a := ParseAction(map[string]interface{}{"action": tt.name})
		if a.Kind != tt.want {
			t.Errorf("kind of %q = %s, want %s", tt.name, a.Kind, tt.want)
		}
		if a.Name != tt.name {
			t.Errorf("name of %q not preserved, got %q", tt.name, a.Name)
		}
	}
}

func TestParseAction_SwipeDefaults(t *testing.T) {
	a := ParseAction(decode(t, `{"action":"swipe","swipe_start_x":100,"swipe_start_y":500,"swipe_end_x":100,"swipe_end_y":100}`))

	if a.SwipeStartX != 100 || a.SwipeStartY != 500 || a.SwipeEndX != 100 || a.SwipeEndY != 100 {
		t.Errorf("swipe coordinates not parsed: %+v", a)
	}
	if a.DurationMs != 500 {
		t.Errorf("default swipe duration = %d, want 500", a.DurationMs)
	}

	a = ParseAction(decode(t, `{"action":"swipe","duration":1200}`))
	if a.DurationMs != 1200 {
		t.Errorf("explicit duration = %d, want 1200", a.DurationMs)
	}
}

func TestParseAction_WaitDefaults(t *testing.T) {
	a := ParseAction(decode(t, `{"action":"wait"}`))
	if a.TimeoutMs != 5000 {
		t.Errorf("default wait timeout = %d, want 5000", a.TimeoutMs)
	}

	a = ParseAction(decode(t, `{"action":"wait","timeout":250}`))
	if a.TimeoutMs != 250 {
		t.Errorf("explicit timeout = %d, want 250", a.TimeoutMs)
	}
}

func TestAction_LocatorPriority(t *testing.T) {
	// XPath wins over everything
	a := ParseAction(decode(t, `{"action":"tap","xpath":"//a","css":"#b","bounds":"[0,0][10,10]"}`))
	loc, err := a.Locator(PlatformWeb)
	if err != nil {
		t.Fatalf("Locator failed: %v", err)
	}
	if loc.Kind != LocatorXPath || loc.Query != "//a" {
		t.Errorf("expected xpath locator, got %+v", loc)
	}

	// CSS beats bounds on web
	a = ParseAction(decode(t, `{"action":"tap","css":"#b","bounds":"[0,0][10,10]"}`))
	loc, err = a.Locator(PlatformWeb)
	if err != nil {
		t.Fatalf("Locator failed: %v", err)
	}
	if loc.Kind != LocatorCSS || loc.Query != "#b" {
		t.Errorf("expected css locator, got %+v", loc)
	}

	// CSS is not eligible on mobile; bounds win there
	loc, err = a.Locator(PlatformAndroid)
	if err != nil {
		t.Fatalf("Locator failed: %v", err)
	}
	if loc.Kind != LocatorBounds {
		t.Errorf("expected bounds locator on android, got %+v", loc)
	}
	if loc.Rect != (Rect{0, 0, 10, 10}) {
		t.Errorf("bounds rect = %+v", loc.Rect)
	}
}

func TestAction_LocatorMissing(t *testing.T) {
	a := ParseAction(decode(t, `{"action":"tap"}`))
	if _, err := a.Locator(PlatformWeb); !errors.Is(err, ErrMissingLocator) {
		t.Errorf("expected ErrMissingLocator, got %v", err)
	}

	// CSS-only instruction on a mobile platform has no eligible locator
	a = ParseAction(decode(t, `{"action":"input","css":"#field","value":"x"}`))
	if _, err := a.Locator(PlatformIOS); !errors.Is(err, ErrMissingLocator) {
		t.Errorf("expected ErrMissingLocator for css on ios, got %v", err)
	}
}

func TestAction_LocatorMalformedBounds(t *testing.T) {
	a := ParseAction(decode(t, `{"action":"tap","bounds":"[1,2][3"}`))
	if _, err := a.Locator(PlatformAndroid); !errors.Is(err, ErrMalformedBounds) {
		t.Errorf("expected ErrMalformedBounds, got %v", err)
	}
}

func TestOutcome_MarshalPreservesPayload(t *testing.T) {
	a := ParseAction(decode(t, `{"action":"error","reason":"cannot find login button"}`))
	data, err := json.Marshal(NewOutcome(a, ResultSuccess))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := decode(t, string(data))
	if got["action"] != "error" {
		t.Errorf("action = %v", got["action"])
	}
	if got["reason"] != "cannot find login button" {
		t.Errorf("extra payload key not preserved: %v", got)
	}
	if got["result"] != "success" {
		t.Errorf("result = %v", got["result"])
	}
}

func TestInvalidJSONOutcome(t *testing.T) {
	o := InvalidJSONOutcome()
	if o.Action.Kind != KindError {
		t.Errorf("kind = %s, want error", o.Action.Kind)
	}
	if !o.Action.Kind.Terminal() {
		t.Error("invalid JSON outcome must be terminal")
	}

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := decode(t, `{"action":"error","result":"Invalid JSON"}`)
	got := decode(t, string(data))
	if len(got) != len(want) || got["action"] != want["action"] || got["result"] != want["result"] {
		t.Errorf("serialized form = %s", data)
	}
}

func TestKind_Terminal(t *testing.T) {
	for _, k := range []Kind{KindFinish, KindError} {
		if !k.Terminal() {
			t.Errorf("%s should be terminal", k)
		}
	}
	for _, k := range []Kind{KindTap, KindInput, KindSwipe, KindWait, KindUnknown} {
		if k.Terminal() {
			t.Errorf("%s should not be terminal", k)
		}
	}
}

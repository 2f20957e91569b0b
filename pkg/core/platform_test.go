package core

import "testing"

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   Platform
	}{
		{"html doctype", "<!DOCTYPE html><html><body></body></html>", PlatformWeb},
		{"html tag only", "<HTML lang=\"en\"><head></head></HTML>", PlatformWeb},
		{"ios hierarchy", `<AppiumAUT><XCUIElementTypeApplication name="Demo"/></AppiumAUT>`, PlatformIOS},
		{"android hierarchy", `<hierarchy rotation="0"><node class="android.widget.FrameLayout"/></hierarchy>`, PlatformAndroid},
		{"android marker only", `<node package="com.android.settings"/>`, PlatformAndroid},
		{"unknown", "plain text, nothing recognizable", PlatformUnknown},
		{"empty", "", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectPlatform(tt.source); got != tt.want {
				t.Errorf("DetectPlatform = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPlatform_IsMobile(t *testing.T) {
	if !PlatformAndroid.IsMobile() || !PlatformIOS.IsMobile() {
		t.Error("android and ios are mobile platforms")
	}
	if PlatformWeb.IsMobile() || PlatformUnknown.IsMobile() {
		t.Error("web and unknown are not mobile platforms")
	}
}

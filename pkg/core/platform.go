package core

import "strings"

// Platform identifies the automation backend family a session talks to.
type Platform string

// Platform values.
const (
	PlatformWeb     Platform = "web"
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformUnknown Platform = "unknown"
)

// IsMobile returns true for the native-mobile platforms.
func (p Platform) IsMobile() bool {
	return p == PlatformAndroid || p == PlatformIOS
}

// DetectPlatform detects the platform from a raw page source.
// HTML markers win over everything; the iOS element-type marker is checked
// before the generic android/hierarchy markers because iOS sources never
// contain either, while Android sources may mention both.
func DetectPlatform(source string) Platform {
	lower := strings.ToLower(source)

	switch {
	case strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype html"):
		return PlatformWeb
	case strings.Contains(source, "XCUIElementType"):
		return PlatformIOS
	case strings.Contains(lower, "android") || strings.Contains(lower, "hierarchy"):
		return PlatformAndroid
	default:
		return PlatformUnknown
	}
}

package oracle

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/agent-runner/pkg/core"
)

// platformContext describes what kind of source dump the model is looking at.
func platformContext(platform core.Platform) string {
	switch platform {
	case core.PlatformIOS:
		return "iOS XML with XCUIElementType elements"
	case core.PlatformAndroid:
		return "Android XML with android hierarchy"
	case core.PlatformWeb:
		return "HTML DOM structure"
	default:
		return "Unknown platform"
	}
}

// platformInstructions returns per-platform guidance on element
// identification. The examples steer the model toward locators the drivers
// can actually resolve.
func platformInstructions(platform core.Platform) string {
	switch platform {
	case core.PlatformIOS:
		return `- Use iOS element types: XCUIElementTypeButton, XCUIElementTypeTextField, etc.
- Use @name, @label, @value attributes for identification
- Calculate bounds from x, y, width, height attributes: [x,y][x+width,y+height]
- Example XPath: //XCUIElementTypeButton[@name='Info'][@enabled='true']`
	case core.PlatformAndroid:
		return `- Use Android element types and attributes
- Use @text, @resource-id, @content-desc for identification
- Use bounds attribute directly: bounds='[x1,y1][x2,y2]'
- Example XPath: //*[@text='Settings'] or //*[@resource-id='com.app:id/button']`
	case core.PlatformWeb:
		return `- Use standard HTML elements: button, input, div, span, etc.
- Use id, class, name, text content for identification
- Use CSS selectors or XPath for web elements
- Example XPath: //button[text()='Submit'] or //input[@id='username']`
	default:
		return "- Platform not recognized, use generic selectors"
	}
}

func sourceFence(platform core.Platform) string {
	if platform.IsMobile() {
		return "xml"
	}
	return "html"
}

// buildPrompt assembles the full prompt: base instructions, platform
// context, task, history, and a fenced source dump.
func buildPrompt(basePrompt, task string, history []string, source string, platform core.Platform) string {
	name := strings.ToUpper(string(platform))

	return fmt.Sprintf(`%s

# Platform: %s
Current platform detected: %s

# Current Task
%s

# History of Actions
%s

# Current Page Source (%s)
`+"```%s\n%s\n```"+`

Based on the current %s screenshot and source above, determine the next action to complete the task.

IMPORTANT FOR %s:
%s

Next action:`,
		basePrompt,
		name,
		platformContext(platform),
		task,
		strings.Join(history, "\n"),
		name,
		sourceFence(platform),
		source,
		name,
		name,
		platformInstructions(platform),
	)
}

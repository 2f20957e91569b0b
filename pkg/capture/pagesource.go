package capture

import (
	"encoding/xml"
	"strings"

	"gopkg.in/yaml.v3"
)

// expectedAttrs is the attribute whitelist for the condensed source view.
// Everything else on a node is UI-framework noise that only inflates the
// prompt.
var expectedAttrs = map[string]bool{
	"index":        true,
	"package":      true,
	"class":        true,
	"text":         true,
	"resource-id":  true,
	"content-desc": true,
	"clickable":    true,
	"scrollable":   true,
	"bounds":       true,
	"name":         true,
	"label":        true,
	"value":        true,
	"enabled":      true,
	"visible":      true,
	"accessible":   true,
	"x":            true,
	"y":            true,
	"width":        true,
	"height":       true,
}

type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

// SourceToYAML condenses a mobile XML hierarchy into YAML: children are
// grouped by tag name, element text lands under "content", and only
// whitelisted attributes survive. Returns an error when the input is not
// well-formed XML.
func SourceToYAML(source string) ([]byte, error) {
	var root xmlNode
	if err := xml.Unmarshal([]byte(source), &root); err != nil {
		return nil, err
	}
	return yaml.Marshal(nodeToMap(root))
}

func nodeToMap(node xmlNode) map[string]interface{} {
	result := map[string]interface{}{}

	for _, child := range node.Children {
		childMap := nodeToMap(child)
		if len(childMap) == 0 {
			continue
		}
		tag := child.XMLName.Local
		if existing, ok := result[tag].([]interface{}); ok {
			result[tag] = append(existing, childMap)
		} else {
			result[tag] = []interface{}{childMap}
		}
	}

	if text := strings.TrimSpace(node.Text); text != "" {
		if existing, ok := result["content"].([]interface{}); ok {
			result["content"] = append(existing, text)
		} else {
			result["content"] = []interface{}{text}
		}
	}

	for _, attr := range node.Attrs {
		if expectedAttrs[attr.Name.Local] && strings.TrimSpace(attr.Value) != "" {
			result[attr.Name.Local] = attr.Value
		}
	}

	return result
}

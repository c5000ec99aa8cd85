package supplier

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// The custom adapter builds requests from operator-stored templates:
// path templates with {name} placeholders, and JSON body templates where a
// placeholder substitutes as a JSON string or a bare number depending on
// the value. Templates are parsed into a tree and substituted node by node;
// the serialized output is produced from the tree, never by string surgery
// on serialized JSON.

var (
	placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)
	numericPattern     = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// substitutePath replaces every {name} placeholder in a path template with
// the corresponding variable. Unknown placeholders substitute as empty.
func substitutePath(template string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		return vars[name]
	})
}

// evalBodyTemplate parses a JSON body template into a tree, substitutes
// placeholder values with their proper JSON type, and re-serializes.
// A string node that is exactly one placeholder becomes a bare number when
// the value looks numeric (so quantity serializes unquoted) and a JSON
// string otherwise (so an all-digits SKU stays quoted only when mixed with
// other text, never by accident: a lone numeric value is the operator's
// declared intent to send a number).
func evalBodyTemplate(template string, vars map[string]string) ([]byte, error) {
	var tree any
	if err := json.Unmarshal([]byte(template), &tree); err != nil {
		return nil, fmt.Errorf("supplier: malformed body template: %w", err)
	}
	return json.Marshal(substituteNode(tree, vars))
}

// substituteNode walks the template tree replacing placeholders in string
// leaves. Non-string leaves pass through untouched.
func substituteNode(node any, vars map[string]string) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = substituteNode(child, vars)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = substituteNode(child, vars)
		}
		return out
	case string:
		return substituteString(v, vars)
	default:
		return node
	}
}

// substituteString resolves placeholders in one string leaf.
func substituteString(s string, vars map[string]string) any {
	// A leaf that is exactly one placeholder takes the value's type
	if m := placeholderPattern.FindStringSubmatch(s); m != nil && m[0] == s {
		value := vars[m[1]]
		if numericPattern.MatchString(value) {
			return json.RawMessage(value)
		}
		return value
	}
	// Mixed text substitutes inline and stays a string
	return substitutePath(s, vars)
}

// lookupPath walks a dotted path ("data.product.sku") into parsed JSON.
// A missing segment yields nil rather than an error.
func lookupPath(doc any, path string) any {
	if path == "" {
		return nil
	}
	current := doc
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = obj[segment]
		if !ok {
			return nil
		}
	}
	return current
}

// stringAt reads a string at a dotted path, defaulting to "".
func stringAt(doc any, path string) string {
	switch v := lookupPath(doc, path).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")
	default:
		return ""
	}
}

// intAt reads an integer at a dotted path, defaulting to 0. The ok result
// distinguishes "present" from the zero default.
func intAt(doc any, path string) (int, bool) {
	switch v := lookupPath(doc, path).(type) {
	case float64:
		return int(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		return 0, false
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n, true
		}
		return 0, false
	default:
		return 0, false
	}
}

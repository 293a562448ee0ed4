// Package jsonpath resolves a small JSONPath subset against JSON documents
// using gjson. Supported: the root `$`, dotted keys, quoted bracket keys
// (`$['@scope/pkg']`) and numeric array indexes (`$.list[0]`).
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Get resolves path against json and returns the raw gjson result
func Get(json string, path string) (gjson.Result, error) {
	if json == "" {
		return gjson.Result{}, fmt.Errorf("empty JSON string")
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty JSONPath expression")
	}

	gpath, err := toGjsonPath(path)
	if err != nil {
		return gjson.Result{}, err
	}

	result := gjson.Get(json, gpath)
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return result, nil
}

// Extract extracts a value from a JSON string using a JSONPath expression.
// Objects and arrays are returned as raw JSON, null as "null".
func Extract(json string, path string) (string, error) {
	result, err := Get(json, path)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// String extracts a string value; any other JSON type is an error
func String(json string, path string) (string, error) {
	result, err := Get(json, path)
	if err != nil {
		return "", err
	}
	if result.Type != gjson.String {
		return "", fmt.Errorf("%s is not a string", path)
	}
	return result.Str, nil
}

// FirstString returns the first path that resolves to a string
func FirstString(json string, paths ...string) (string, error) {
	var tried []string
	for _, path := range paths {
		value, err := String(json, path)
		if err == nil {
			return value, nil
		}
		tried = append(tried, err.Error())
	}
	return "", fmt.Errorf("no string value found: %s", strings.Join(tried, "; "))
}

// Exists reports whether path resolves in json
func Exists(json string, path string) bool {
	_, err := Get(json, path)
	return err == nil
}

// toGjsonPath converts a JSONPath expression to gjson syntax:
// $.users[0]['first.name'] -> users.0.first\.name
func toGjsonPath(path string) (string, error) {
	if !strings.HasPrefix(path, "$") {
		return "", fmt.Errorf("JSONPath must start with $: %s", path)
	}

	rest := path[1:]
	if rest == "" {
		return "@this", nil
	}

	var parts []string
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end == -1 {
				end = len(rest)
			}
			if end == 0 {
				return "", fmt.Errorf("empty key in JSONPath: %s", path)
			}
			parts = append(parts, escapeKey(rest[:end]))
			rest = rest[end:]

		case '[':
			end := strings.Index(rest, "]")
			if end == -1 {
				return "", fmt.Errorf("unterminated bracket in JSONPath: %s", path)
			}
			inner := rest[1:end]
			rest = rest[end+1:]

			if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
				parts = append(parts, escapeKey(inner[1:len(inner)-1]))
				continue
			}
			if inner == "" || strings.Trim(inner, "0123456789") != "" {
				return "", fmt.Errorf("invalid index %q in JSONPath: %s", inner, path)
			}
			parts = append(parts, inner)

		default:
			return "", fmt.Errorf("unexpected %q in JSONPath: %s", rest[0], path)
		}
	}

	return strings.Join(parts, "."), nil
}

// escapeKey escapes the characters gjson gives a meaning to.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(`.*?@|#\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

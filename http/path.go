package http

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Path extracts a value from the JSON body with a JSONPath expression such
// as $.users[0].name. Scalars are returned in their text form, objects and
// arrays as raw JSON, and null as "null".
func (r *Response) Path(expr string) (string, error) {
	if len(r.result.Body) == 0 {
		return "", fmt.Errorf("empty response body")
	}
	if expr == "" {
		return "", fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.ValidBytes(r.result.Body) {
		return "", newJSONDecodeError(fmt.Errorf("invalid JSON"), r.result.Status, r.result.Body)
	}

	result := gjson.GetBytes(r.result.Body, toGJSONPath(expr))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", expr)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// Extract evaluates several named JSONPath expressions. Every expression is
// attempted; failures are collected into one error alongside the values
// that did resolve.
func (r *Response) Extract(paths map[string]string) (map[string]string, error) {
	values := make(map[string]string, len(paths))
	var failures []string

	for _, name := range sortedKeys(paths) {
		v, err := r.Path(paths[name])
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		values[name] = v
	}

	if len(failures) > 0 {
		return values, fmt.Errorf("extraction errors: %s", strings.Join(failures, "; "))
	}
	return values, nil
}

// toGJSONPath converts the supported JSONPath subset to gjson syntax:
// $.users[0].name becomes users.0.name and $['a'] becomes a.
func toGJSONPath(expr string) string {
	path := strings.TrimPrefix(strings.TrimSpace(expr), "$")
	if path == "" {
		return "@this"
	}

	path = strings.NewReplacer("['", ".", "']", "", `["`, ".", `"]`, "", "[", ".", "]", "").Replace(path)
	return strings.TrimPrefix(path, ".")
}

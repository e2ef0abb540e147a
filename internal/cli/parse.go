package cli

import (
	"fmt"
	"strings"
)

// parseHeader splits a "Name: Value" argument.
func parseHeader(arg string) (string, string, error) {
	name, value, ok := strings.Cut(arg, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q: expected \"Name: Value\"", arg)
	}
	return name, strings.TrimSpace(value), nil
}

// parseHeaders collects repeated header arguments. Later values for the
// same name win.
func parseHeaders(args []string) (map[string]string, error) {
	headers := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, err := parseHeader(arg)
		if err != nil {
			return nil, err
		}
		headers[name] = value
	}
	return headers, nil
}

// parsePairs collects repeated "key=value" arguments. The value may itself
// contain '='.
func parsePairs(args []string, what string) (map[string]string, error) {
	pairs := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid %s %q: expected key=value", what, arg)
		}
		pairs[key] = value
	}
	return pairs, nil
}

// hasHeader reports whether headers has name, ignoring case.
func hasHeader(headers map[string]string, name string) bool {
	for k := range headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

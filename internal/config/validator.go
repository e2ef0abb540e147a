package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

var validMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true, "HEAD": true,
}

// ValidateConfig validates the configuration. Errors are reported in a
// stable order.
func ValidateConfig(config *Config) []ValidationError {
	var errors []ValidationError

	for _, name := range sortedKeys(config.Environments) {
		env := config.Environments[name]
		if env.BaseURL != "" && !strings.Contains(env.BaseURL, "{{") {
			if u, err := url.Parse(env.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("environments.%s.baseUrl", name),
					Message: fmt.Sprintf("baseUrl must be an absolute URL: %s", env.BaseURL),
				})
			}
		}
	}

	if len(config.Requests) == 0 {
		errors = append(errors, ValidationError{
			Path:    "requests",
			Message: "at least one request is required",
		})
	}

	for _, name := range sortedKeys(config.Requests) {
		req := config.Requests[name]

		if req.URL == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.url", name),
				Message: "url is required",
			})
		}

		if req.Method == "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.method", name),
				Message: "method is required",
			})
		} else if !validMethods[strings.ToUpper(req.Method)] {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.method", name),
				Message: fmt.Sprintf("invalid method: %s", req.Method),
			})
		}

		if req.Timeout < 0 {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.timeout", name),
				Message: "timeout cannot be negative",
			})
		}

		if req.Schema != nil && req.SchemaFile != "" {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.schema", name),
				Message: "cannot specify both schema and schemaFile",
			})
		}

		if len(req.Files) > 0 && !hasMultipartContentType(req.Headers) {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("requests.%s.files", name),
				Message: "files require a multipart/form-data Content-Type header",
			})
		}

		for _, varName := range sortedKeys(req.Extract) {
			if req.Extract[varName] == "" {
				errors = append(errors, ValidationError{
					Path:    fmt.Sprintf("requests.%s.extract.%s", name, varName),
					Message: "extract path cannot be empty",
				})
			}
		}
	}

	return errors
}

// ValidateEnvironment validates that an environment exists
func ValidateEnvironment(config *Config, envName string) error {
	if _, ok := config.Environments[envName]; !ok {
		return fmt.Errorf("environment not found: %s", envName)
	}
	return nil
}

// ValidateRequest validates that a request exists
func ValidateRequest(config *Config, reqName string) error {
	if _, ok := config.Requests[reqName]; !ok {
		return fmt.Errorf("request not found: %s", reqName)
	}
	return nil
}

func hasMultipartContentType(headers map[string]string) bool {
	for name, value := range headers {
		if strings.EqualFold(name, "Content-Type") {
			return strings.HasPrefix(strings.ToLower(strings.TrimSpace(value)), "multipart/form-data")
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Resolved is a collection request with its environment applied: variables
// substituted, headers merged and the URL made absolute.
type Resolved struct {
	Name           string
	Method         string
	URL            string
	Headers        map[string]string
	QueryParams    map[string]string
	Body           interface{}
	Files          map[string]string
	Timeout        int
	Insecure       bool
	NoFollow       bool
	Extract        map[string]string
	Schema         string
	ExpectedStatus int
}

// Resolve prepares the named request for execution in the named
// environment. An empty environment name applies no environment. vars
// override the environment's variables.
func (c *Config) Resolve(requestName, envName string, vars map[string]string) (*Resolved, error) {
	if err := ValidateRequest(c, requestName); err != nil {
		return nil, err
	}

	var env Environment
	if envName != "" {
		if err := ValidateEnvironment(c, envName); err != nil {
			return nil, err
		}
		env = c.Environments[envName]
	}

	values := MergeEnvironments(env.Vars, vars)
	req := c.Requests[requestName]

	schema, err := resolveSchema(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", requestName, err)
	}

	return &Resolved{
		Name:           requestName,
		Method:         strings.ToUpper(req.Method),
		URL:            JoinURL(ProcessEnvironment(env.BaseURL, values), ProcessEnvironment(req.URL, values)),
		Headers:        MergeEnvironments(ProcessEnvironmentInMap(env.Headers, values), ProcessEnvironmentInMap(req.Headers, values)),
		QueryParams:    ProcessEnvironmentInMap(req.QueryParams, values),
		Body:           ProcessEnvironmentInValue(req.Body, values),
		Files:          ProcessEnvironmentInMap(req.Files, values),
		Timeout:        req.Timeout,
		Insecure:       req.Insecure,
		NoFollow:       req.NoFollow,
		Extract:        req.Extract,
		Schema:         ProcessEnvironment(schema, values),
		ExpectedStatus: req.ExpectedStatus,
	}, nil
}

// resolveSchema returns the request's JSON Schema as text, from the inline
// schema or the schema file.
func resolveSchema(req Request) (string, error) {
	if req.SchemaFile != "" {
		data, err := os.ReadFile(req.SchemaFile)
		if err != nil {
			return "", fmt.Errorf("error reading schema file: %w", err)
		}
		return string(data), nil
	}
	if req.Schema == nil {
		return "", nil
	}
	if s, ok := req.Schema.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(req.Schema)
	if err != nil {
		return "", fmt.Errorf("error encoding inline schema: %w", err)
	}
	return string(data), nil
}

// JoinURL resolves target against baseURL. Absolute targets are returned
// unchanged, and an empty target yields the base URL.
func JoinURL(baseURL, target string) string {
	if target == "" {
		return baseURL
	}
	if isAbsoluteURL(target) || baseURL == "" {
		return target
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(target, "/")
}

// isAbsoluteURL checks if a URL is absolute (has a scheme and host)
func isAbsoluteURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

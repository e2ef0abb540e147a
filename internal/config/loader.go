package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is a request collection: named environments plus named requests.
type Config struct {
	Environments map[string]Environment `json:"environments" yaml:"environments"`
	Requests     map[string]Request     `json:"requests" yaml:"requests"`
}

// Environment represents an environment configuration
type Environment struct {
	BaseURL string            `json:"baseUrl" yaml:"baseUrl"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Vars    map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Request represents a request configuration
type Request struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	QueryParams    map[string]string `json:"queryParams,omitempty" yaml:"queryParams,omitempty"`
	Body           interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Files          map[string]string `json:"files,omitempty" yaml:"files,omitempty"`
	Timeout        int               `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Insecure       bool              `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	NoFollow       bool              `json:"noFollow,omitempty" yaml:"noFollow,omitempty"`
	Extract        map[string]string `json:"extract,omitempty" yaml:"extract,omitempty"`
	Schema         interface{}       `json:"schema,omitempty" yaml:"schema,omitempty"`
	SchemaFile     string            `json:"schemaFile,omitempty" yaml:"schemaFile,omitempty"`
	ExpectedStatus int               `json:"expectStatus,omitempty" yaml:"expectStatus,omitempty"`
}

// LoadConfig loads a collection file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON.
func LoadConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// relative file references resolve against the collection's directory
	dir := GetConfigDir(path)
	for name, req := range config.Requests {
		if req.SchemaFile != "" && !filepath.IsAbs(req.SchemaFile) {
			req.SchemaFile = filepath.Join(dir, req.SchemaFile)
		}
		if len(req.Files) > 0 {
			files := make(map[string]string, len(req.Files))
			for field, p := range req.Files {
				if !filepath.IsAbs(p) && !strings.Contains(p, "{{") {
					p = filepath.Join(dir, p)
				}
				files[field] = p
			}
			req.Files = files
		}
		config.Requests[name] = req
	}

	return &config, nil
}

// ProcessEnvironment processes environment variables in a string
func ProcessEnvironment(input string, env map[string]string) string {
	result := input

	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}

	return result
}

// ProcessEnvironmentInMap processes environment variables in a map
func ProcessEnvironmentInMap(input map[string]string, env map[string]string) map[string]string {
	if input == nil {
		return nil
	}

	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessEnvironment(value, env)
	}

	return result
}

// ProcessEnvironmentInValue substitutes variables in every string inside a
// decoded JSON or YAML value. Map keys are left untouched.
func ProcessEnvironmentInValue(input interface{}, env map[string]string) interface{} {
	switch v := input.(type) {
	case string:
		return ProcessEnvironment(v, env)
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[key] = ProcessEnvironmentInValue(value, env)
		}
		return result
	case map[string]string:
		return ProcessEnvironmentInMap(v, env)
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, value := range v {
			result[i] = ProcessEnvironmentInValue(value, env)
		}
		return result
	default:
		return input
	}
}

// MergeEnvironments merges two environments, with the second taking precedence
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	maps.Copy(result, base)
	maps.Copy(result, override)
	return result
}

// GetConfigDir returns the directory containing the config file
func GetConfigDir(configPath string) string {
	return filepath.Dir(configPath)
}

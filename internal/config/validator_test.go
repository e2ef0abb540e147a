package config

import (
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Path: "requests.getUser.url", Message: "url is required"}
	if err.Error() != "requests.getUser.url: url is required" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected []ValidationError
	}{
		{
			name: "valid collection",
			config: &Config{
				Environments: map[string]Environment{"dev": {BaseURL: "https://api.example.com"}},
				Requests: map[string]Request{
					"list": {URL: "/items", Method: "get"},
					"upload": {
						URL:     "/upload",
						Method:  "POST",
						Headers: map[string]string{"content-type": "multipart/form-data"},
						Files:   map[string]string{"doc": "a.txt"},
					},
				},
			},
		},
		{
			name:   "no requests",
			config: &Config{},
			expected: []ValidationError{
				{Path: "requests", Message: "at least one request is required"},
			},
		},
		{
			name: "templated baseUrl is not checked",
			config: &Config{
				Environments: map[string]Environment{"dev": {BaseURL: "{{scheme}}://host"}},
				Requests:     map[string]Request{"r": {URL: "/", Method: "GET"}},
			},
		},
		{
			name: "invalid entries",
			config: &Config{
				Environments: map[string]Environment{"dev": {BaseURL: "api.example.com"}},
				Requests: map[string]Request{
					"a": {Method: "OPTIONS", Timeout: -1},
					"b": {URL: "/b", Files: map[string]string{"f": "x"}, Extract: map[string]string{"id": ""}},
					"c": {URL: "/c", Method: "GET", Schema: map[string]interface{}{}, SchemaFile: "s.json"},
				},
			},
			expected: []ValidationError{
				{Path: "environments.dev.baseUrl", Message: "baseUrl must be an absolute URL: api.example.com"},
				{Path: "requests.a.url", Message: "url is required"},
				{Path: "requests.a.method", Message: "invalid method: OPTIONS"},
				{Path: "requests.a.timeout", Message: "timeout cannot be negative"},
				{Path: "requests.b.method", Message: "method is required"},
				{Path: "requests.b.files", Message: "files require a multipart/form-data Content-Type header"},
				{Path: "requests.b.extract.id", Message: "extract path cannot be empty"},
				{Path: "requests.c.schema", Message: "cannot specify both schema and schemaFile"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateConfig(tt.config)
			if len(errors) != len(tt.expected) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.expected), len(errors), errors)
			}
			for i := range errors {
				if errors[i] != tt.expected[i] {
					t.Errorf("Error %d: expected %v, got %v", i, tt.expected[i], errors[i])
				}
			}
		})
	}
}

func TestValidateLookups(t *testing.T) {
	config := &Config{
		Environments: map[string]Environment{"dev": {}},
		Requests:     map[string]Request{"r": {}},
	}

	if err := ValidateEnvironment(config, "dev"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateEnvironment(config, "prod"); err == nil {
		t.Error("Expected error for unknown environment")
	}
	if err := ValidateRequest(config, "r"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := ValidateRequest(config, "missing"); err == nil {
		t.Error("Expected error for unknown request")
	}
}

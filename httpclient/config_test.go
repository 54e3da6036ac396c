package httpclient

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/restdemo/errors"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 0 {
		t.Errorf("expected no default timeout, got %v", cfg.Timeout)
	}
	if cfg.Headers == nil {
		t.Error("expected headers map to be initialized")
	}
}

func TestConfig_ApplyDefaults_PreservesExisting(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:8080", Timeout: 10 * time.Second}
	cfg.ApplyDefaults()
	if cfg.BaseURL != "http://localhost:8080" {
		t.Errorf("expected base URL preserved, got %q", cfg.BaseURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Timeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{BaseURL: "https://jsonplaceholder.typicode.com"}, ""},
		{"valid with timeout", Config{BaseURL: "http://127.0.0.1:8080", Timeout: time.Second}, ""},
		{"missing base url", Config{}, "base_url: is required"},
		{"bad base url", Config{BaseURL: "not a url"}, "base_url: must be a valid URL"},
		{"negative timeout", Config{BaseURL: "https://x.example", Timeout: -1}, "timeout"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected %q in %q", tc.wantErr, err.Error())
			}
			if !errors.IsAppError(err) {
				t.Error("expected an AppError")
			}
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{BaseURL: "::nope"}); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
}

func TestNew_DisableHTTP2(t *testing.T) {
	c, err := New(Config{BaseURL: "https://api.example.com", DisableHTTP2: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Unwrap() == nil {
		t.Fatal("expected client")
	}
}

package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestExtractConfig_Converter(t *testing.T) {
	cfg := ExtractConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty converter should default: %v", err)
	}
	if cfg.Converter != ConverterBuiltin {
		t.Errorf("converter = %q, want %q", cfg.Converter, ConverterBuiltin)
	}

	cfg = ExtractConfig{Converter: ConverterCommonMark}
	if err := cfg.Validate(); err != nil {
		t.Errorf("commonmark should pass: %v", err)
	}

	cfg = ExtractConfig{Converter: "pandoc"}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown converter should fail")
	}
}

func TestTemplatesConfig_WatchRequiresDir(t *testing.T) {
	cfg := TemplatesConfig{SQLitePath: "x.db", Watch: true}
	if err := cfg.Validate(); err == nil {
		t.Fatal("watch without dir should fail")
	}
	cfg.Dir = "templates"
	if err := cfg.Validate(); err != nil {
		t.Errorf("watch with dir should pass: %v", err)
	}
}

func TestFetchConfig_Bounds(t *testing.T) {
	cfg := FetchConfig{Timeout: 10 * time.Millisecond, MaxBodyBytes: 1 << 20}
	if err := cfg.Validate(); err == nil {
		t.Error("sub-second timeout should fail")
	}
	cfg = FetchConfig{Timeout: 5 * time.Second, MaxBodyBytes: 10}
	if err := cfg.Validate(); err == nil {
		t.Error("tiny body cap should fail")
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	cfg := HTTPConfig{Port: 9090}
	if got := cfg.Address(); got != ":9090" {
		t.Errorf("Address() = %q", got)
	}
}

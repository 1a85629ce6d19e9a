package common

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "SESSION_SECRET", "LLM_MODEL", "GROQ_API_KEY", "GROQ_BASE_URL", "LLM_TEMPERATURE", "LLM_TIMEOUT", "HISTORY_DB_PATH"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	if cfg.Server.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.LLM.Model != "llama-3.3-70b-versatile" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("BaseURL = %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Temperature != 0 {
		t.Errorf("Temperature = %v, want 0", cfg.LLM.Temperature)
	}
	if cfg.LLM.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 (no timeout)", cfg.LLM.Timeout)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LLM_MODEL", "llama-3.1-8b-instant")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("LLM_TIMEOUT", "45s")

	cfg := LoadConfig()
	if cfg.Server.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.LLM.Model != "llama-3.1-8b-instant" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("Temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v", cfg.LLM.Timeout)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		cli     bool
	}{
		{name: "daemon without key is fine", mutate: func(c *Config) { c.LLM.APIKey = "" }},
		{name: "cli without key fails", mutate: func(c *Config) { c.LLM.APIKey = "" }, cli: true, wantErr: true},
		{name: "missing addr fails", mutate: func(c *Config) { c.Server.HTTPAddr = "" }, wantErr: true},
		{name: "missing model fails", mutate: func(c *Config) { c.LLM.Model = "" }, wantErr: true},
		{name: "missing base url fails", mutate: func(c *Config) { c.LLM.BaseURL = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Server: ServerConfig{HTTPAddr: ":8080"},
				LLM: LLMConfig{
					Model:   "llama-3.3-70b-versatile",
					BaseURL: "https://api.groq.com/openai/v1",
					APIKey:  "key",
				},
			}
			tt.mutate(cfg)
			var err error
			if tt.cli {
				err = cfg.ValidateForCLI()
			} else {
				err = cfg.Validate()
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("validate error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

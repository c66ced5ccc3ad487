package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o" {
		t.Fatalf("unexpected LLM defaults: %+v", cfg.LLM)
	}
	if cfg.Weather.DefaultUnit != "celsius" {
		t.Fatalf("unexpected default unit %q", cfg.Weather.DefaultUnit)
	}
	if cfg.Stream.MaxPendingSpan != 16*1024 {
		t.Fatalf("unexpected pending span cap %d", cfg.Stream.MaxPendingSpan)
	}
}

func TestLoadProviderSelection(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_MODEL", "claude-haiku-4-5")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Model != "claude-haiku-4-5" {
		t.Fatalf("provider selection failed: %+v", cfg.LLM)
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "cohere")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadInvalidUnit(t *testing.T) {
	t.Setenv("WEATHER_DEFAULT_UNIT", "kelvin")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid unit")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("STREAM_MAX_PENDING_SPAN", "4096")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port override failed: %q", cfg.Server.Port)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Fatalf("temperature override failed: %v", cfg.LLM.Temperature)
	}
	if cfg.Stream.MaxPendingSpan != 4096 {
		t.Fatalf("pending span override failed: %d", cfg.Stream.MaxPendingSpan)
	}
}

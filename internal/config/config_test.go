package config

import "testing"

func TestLoadServerDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "OWNER_NAME", "LYRA_PROVIDER", "GROQ_API_KEY",
		"CORS_ALLOWED_ORIGINS", "LYRA_AUTH_SECRET", "LYRA_HISTORY_PATH", "LYRA_HISTORY_KEEP",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadServer()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Provider != ProviderGroq {
		t.Errorf("Provider = %q, want groq", cfg.Provider)
	}
	if cfg.HistoryPath != "data/history.jsonl" {
		t.Errorf("HistoryPath = %q", cfg.HistoryPath)
	}
	if cfg.HistoryKeep != 0 {
		t.Errorf("HistoryKeep = %d, want 0", cfg.HistoryKeep)
	}
}

func TestLoadServerFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("OWNER_NAME", "Chaitu")
	t.Setenv("LYRA_PROVIDER", "gemini")
	t.Setenv("LYRA_HISTORY_KEEP", "250")
	t.Setenv("LYRA_AUTH_SECRET", "s3cret")

	cfg := LoadServer()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Owner != "Chaitu" {
		t.Errorf("Owner = %q", cfg.Owner)
	}
	if cfg.Provider != ProviderGemini {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.HistoryKeep != 250 {
		t.Errorf("HistoryKeep = %d", cfg.HistoryKeep)
	}
	if cfg.AuthSecret != "s3cret" {
		t.Errorf("AuthSecret = %q", cfg.AuthSecret)
	}
}

func TestLoadServerReadsCORSAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://trusted.example")

	cfg := LoadServer()
	if cfg.CORSOrigins != "http://trusted.example" {
		t.Errorf("CORSOrigins = %q, want the CORS_ALLOWED_ORIGINS value", cfg.CORSOrigins)
	}
}

func TestLoadServerIgnoresBadInt(t *testing.T) {
	t.Setenv("LYRA_HISTORY_KEEP", "lots")

	cfg := LoadServer()
	if cfg.HistoryKeep != 0 {
		t.Errorf("HistoryKeep = %d, want fallback 0", cfg.HistoryKeep)
	}
}

func TestLoadAssistant(t *testing.T) {
	t.Setenv("LYRA_API_URL", "http://backend:8080")
	t.Setenv("LYRA_LOCALE", "")
	t.Setenv("LYRA_MOCK", "true")

	cfg := LoadAssistant()
	if cfg.BackendURL != "http://backend:8080" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.Locale != "en-IN" {
		t.Errorf("Locale = %q, want en-IN default", cfg.Locale)
	}
	if !cfg.Mock {
		t.Error("Mock should be true")
	}
}

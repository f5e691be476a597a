package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "experiment-api" {
		t.Errorf("service name = %s", cfg.ServiceName)
	}
	if cfg.MemoryWindow != 20 {
		t.Errorf("memory window = %d, want 20", cfg.MemoryWindow)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("addr = %s, want :8080", cfg.Addr())
	}
}

func TestLoadAcceptsAbsoluteRedirectBase(t *testing.T) {
	t.Setenv("SURVEY_REDIRECT_BASE_URL", "https://survey.example.com/done?src=chat")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SurveyRedirectBaseURL != "https://survey.example.com/done?src=chat" {
		t.Errorf("redirect base = %s", cfg.SurveyRedirectBaseURL)
	}
}

func TestLoadRejectsRelativeRedirectBase(t *testing.T) {
	t.Setenv("SURVEY_REDIRECT_BASE_URL", "survey.example.com/done")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-absolute redirect base")
	}
}

func TestLoadRejectsUnparseableRedirectBase(t *testing.T) {
	t.Setenv("SURVEY_REDIRECT_BASE_URL", "://no-scheme")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable redirect base")
	}
}
